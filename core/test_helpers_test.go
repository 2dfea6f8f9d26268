package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

type fakeProvider struct {
	mu sync.Mutex

	session      HandshakeSession
	initiateErr  error
	initiateURLs []string

	creds       AccessCredentials
	exchangeErr error
	exchanged   []string

	profile    Profile
	profileErr error
	fetches    int

	mediaIDPrefix string
	uploadErrAt   map[int]error
	uploads       []string

	post    PostResult
	postErr error
	posted  []postCall
}

type postCall struct {
	text     string
	mediaIDs []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		session: HandshakeSession{
			AuthorizationURL: "https://api.twitter.com/oauth/authenticate?oauth_token=req-token",
			RequestToken:     "req-token",
			RequestSecret:    "req-secret",
		},
		creds: AccessCredentials{Token: "access-token", Secret: "access-secret"},
		profile: Profile{
			DisplayName: "Display Name",
			Handle:      "handle",
			AvatarURL:   "https://pbs.twimg.com/profile_images/1/avatar.jpg",
		},
		mediaIDPrefix: "media",
		post:          PostResult{StatusID: "111222333", Handle: "handle"},
	}
}

func (p *fakeProvider) InitiateHandshake(_ context.Context, callbackURL string) (HandshakeSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.initiateURLs = append(p.initiateURLs, callbackURL)
	if p.initiateErr != nil {
		return HandshakeSession{}, p.initiateErr
	}
	return p.session, nil
}

func (p *fakeProvider) ExchangeVerifier(_ context.Context, requestToken string, requestSecret string, verifier string) (AccessCredentials, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exchanged = append(p.exchanged, requestToken+"|"+requestSecret+"|"+verifier)
	if p.exchangeErr != nil {
		return AccessCredentials{}, p.exchangeErr
	}
	return p.creds, nil
}

func (p *fakeProvider) FetchProfile(context.Context, AccessCredentials) (Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fetches++
	if p.profileErr != nil {
		return Profile{}, p.profileErr
	}
	return p.profile, nil
}

func (p *fakeProvider) UploadMedia(_ context.Context, _ AccessCredentials, media Media) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	index := len(p.uploads)
	p.uploads = append(p.uploads, media.FileName)
	if err, ok := p.uploadErrAt[index]; ok {
		return "", err
	}
	return fmt.Sprintf("%s-%s", p.mediaIDPrefix, media.FileName), nil
}

func (p *fakeProvider) PostStatus(_ context.Context, _ AccessCredentials, text string, mediaIDs []string) (PostResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.posted = append(p.posted, postCall{text: text, mediaIDs: append([]string(nil), mediaIDs...)})
	if p.postErr != nil {
		return PostResult{}, p.postErr
	}
	return p.post, nil
}

func (p *fakeProvider) uploadCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.uploads)
}

type memoryAccountStore struct {
	mu   sync.Mutex
	next int
	byID map[string]SocialAccount

	createErr error
	saveErr   error
	deleteErr error
}

func newMemoryAccountStore() *memoryAccountStore {
	return &memoryAccountStore{byID: map[string]SocialAccount{}}
}

func (s *memoryAccountStore) Create(_ context.Context, account SocialAccount) (SocialAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return SocialAccount{}, s.createErr
	}
	s.next++
	account.ID = fmt.Sprintf("acct_%d", s.next)
	s.byID[account.ID] = account
	return account, nil
}

func (s *memoryAccountStore) GetByRequestToken(_ context.Context, requestToken string) (SocialAccount, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, account := range s.byID {
		if account.Status == AccountStatusPending && account.AccessToken == requestToken {
			return account, true, nil
		}
	}
	return SocialAccount{}, false, nil
}

func (s *memoryAccountStore) FindLinked(_ context.Context, ownerUserID string, handle string) (SocialAccount, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, account := range s.byID {
		if account.Status == AccountStatusLinked &&
			account.OwnerUserID == strings.TrimSpace(ownerUserID) &&
			account.Handle == strings.TrimSpace(handle) {
			return account, true, nil
		}
	}
	return SocialAccount{}, false, nil
}

func (s *memoryAccountStore) ListLinkedByOwner(_ context.Context, ownerUserID string) ([]SocialAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []SocialAccount{}
	for _, account := range s.byID {
		if account.Status == AccountStatusLinked && account.OwnerUserID == strings.TrimSpace(ownerUserID) {
			out = append(out, account)
		}
	}
	return out, nil
}

func (s *memoryAccountStore) ListLinked(context.Context) ([]SocialAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []SocialAccount{}
	for _, account := range s.byID {
		if account.Status == AccountStatusLinked {
			out = append(out, account)
		}
	}
	return out, nil
}

func (s *memoryAccountStore) Save(_ context.Context, account SocialAccount) (SocialAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return SocialAccount{}, s.saveErr
	}
	if account.ID == "" {
		s.next++
		account.ID = fmt.Sprintf("acct_%d", s.next)
	}
	s.byID[account.ID] = account
	return account, nil
}

func (s *memoryAccountStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.byID[id]; !ok {
		return fmt.Errorf("memory store: no account %q", id)
	}
	delete(s.byID, id)
	return nil
}

func (s *memoryAccountStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

func (s *memoryAccountStore) mustSeedLinked(owner string, handle string) SocialAccount {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	account := SocialAccount{
		ID:                fmt.Sprintf("acct_%d", s.next),
		OwnerUserID:       owner,
		DisplayName:       "Seeded " + handle,
		Handle:            handle,
		AvatarURL:         "https://pbs.twimg.com/profile_images/9/" + handle + ".jpg",
		AccessToken:       "seed-token-" + handle,
		AccessTokenSecret: "seed-secret-" + handle,
		Status:            AccountStatusLinked,
	}
	s.byID[account.ID] = account
	return account
}

func testConfig() Config {
	return Config{
		ServiceName:    "social-link-test",
		RedirectHubURL: "https://hub.example.com/redirect/twitter",
		ServerBaseURL:  "https://server.example.com",
		SettingsPath:   "/settings/twitter",
	}
}

func mustNewService(t interface {
	Helper()
	Fatalf(format string, args ...any)
}, provider Provider, store AccountStore) *Service {
	t.Helper()
	service, err := NewService(testConfig(),
		WithProvider(provider),
		WithAccountStore(store),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return service
}
