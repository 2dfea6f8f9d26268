package twitter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dghubble/oauth1"

	"github.com/goliatone/go-social-link/core"
)

func newTestProvider(t *testing.T, handler http.Handler) (*Provider, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider, err := New(Config{
		ConsumerKey:    "consumer-key",
		ConsumerSecret: "consumer-secret",
		Endpoint: oauth1.Endpoint{
			RequestTokenURL: server.URL + "/oauth/request_token",
			AuthorizeURL:    server.URL + "/oauth/authenticate",
			AccessTokenURL:  server.URL + "/oauth/access_token",
		},
		APIBaseURL:    server.URL + "/1.1",
		UploadBaseURL: server.URL + "/upload/1.1",
	})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return provider, server
}

func TestNewValidatesConsumerCredentials(t *testing.T) {
	if _, err := New(Config{ConsumerSecret: "s"}); err == nil {
		t.Fatal("expected error without consumer key")
	}
	if _, err := New(Config{ConsumerKey: "k"}); err == nil {
		t.Fatal("expected error without consumer secret")
	}
}

func TestInitiateHandshake(t *testing.T) {
	var gotCallback string
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/request_token", func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "OAuth ") {
			t.Errorf("missing oauth authorization header: %q", auth)
		}
		if decoded, err := url.QueryUnescape(auth); err == nil {
			if idx := strings.Index(decoded, "oauth_callback=\""); idx >= 0 {
				rest := decoded[idx+len("oauth_callback=\""):]
				gotCallback = rest[:strings.Index(rest, "\"")]
			}
		}
		w.Header().Set("Content-Type", "application/x-www-form-urlencoded")
		fmt.Fprint(w, "oauth_token=req-token&oauth_token_secret=req-secret&oauth_callback_confirmed=true")
	})
	provider, _ := newTestProvider(t, mux)

	session, err := provider.InitiateHandshake(context.Background(), "https://hub.example.com/callback?server=a&client=b")
	if err != nil {
		t.Fatalf("initiate handshake: %v", err)
	}
	if session.RequestToken != "req-token" || session.RequestSecret != "req-secret" {
		t.Fatalf("session = %+v", session)
	}
	if !strings.Contains(session.AuthorizationURL, "/oauth/authenticate?oauth_token=req-token") {
		t.Fatalf("authorization url = %q", session.AuthorizationURL)
	}
	if gotCallback != "https://hub.example.com/callback?server=a&client=b" {
		t.Fatalf("callback forwarded = %q", gotCallback)
	}
}

func TestInitiateHandshakeRequestTokenFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/request_token", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "consumer key rejected", http.StatusUnauthorized)
	})
	provider, _ := newTestProvider(t, mux)

	if _, err := provider.InitiateHandshake(context.Background(), "https://hub.example.com"); err == nil {
		t.Fatal("expected error")
	}
}

func TestExchangeVerifier(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-www-form-urlencoded")
		fmt.Fprint(w, "oauth_token=access-token&oauth_token_secret=access-secret")
	})
	provider, _ := newTestProvider(t, mux)

	creds, err := provider.ExchangeVerifier(context.Background(), "req-token", "req-secret", "verifier")
	if err != nil {
		t.Fatalf("exchange verifier: %v", err)
	}
	if creds.Token != "access-token" || creds.Secret != "access-secret" {
		t.Fatalf("creds = %+v", creds)
	}
}

func TestFetchProfileNormalizesAvatar(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/1.1/account/verify_credentials.json", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "OAuth ") {
			t.Errorf("request not signed")
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id_str": "42",
			"screen_name": "acme_tv",
			"name": "Acme",
			"profile_image_url_https": "https://pbs.twimg.com/profile_images/1/a_normal.jpg"
		}`)
	})
	provider, _ := newTestProvider(t, mux)

	profile, err := provider.FetchProfile(context.Background(), core.AccessCredentials{Token: "at", Secret: "as"})
	if err != nil {
		t.Fatalf("fetch profile: %v", err)
	}
	if profile.Handle != "acme_tv" || profile.DisplayName != "Acme" {
		t.Fatalf("profile = %+v", profile)
	}
	if profile.AvatarURL != "https://pbs.twimg.com/profile_images/1/a.jpg" {
		t.Fatalf("avatar = %q", profile.AvatarURL)
	}
}

func TestUploadMedia(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/upload/1.1/media/upload.json", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		file, header, err := r.FormFile("media")
		if err != nil {
			t.Errorf("media part: %v", err)
		} else {
			defer file.Close()
			if header.Filename != "shot.png" {
				t.Errorf("filename = %q", header.Filename)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"media_id": 710511363345354753, "media_id_string": "710511363345354753"}`)
	})
	provider, _ := newTestProvider(t, mux)

	mediaID, err := provider.UploadMedia(context.Background(), core.AccessCredentials{Token: "at", Secret: "as"}, core.Media{
		FileName: "shot.png",
		Data:     []byte{0x89, 0x50, 0x4e, 0x47},
	})
	if err != nil {
		t.Fatalf("upload media: %v", err)
	}
	if mediaID != "710511363345354753" {
		t.Fatalf("media id = %q", mediaID)
	}
}

func TestPostStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/1.1/statuses/update.json", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostFormValue("status"); got != "hello world" {
			t.Errorf("status = %q", got)
		}
		if got := r.PostFormValue("media_ids"); got != "1,2" {
			t.Errorf("media_ids = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id_str": "111222333", "user": {"screen_name": "acme_tv"}}`)
	})
	provider, _ := newTestProvider(t, mux)

	result, err := provider.PostStatus(context.Background(), core.AccessCredentials{Token: "at", Secret: "as"}, "hello world", []string{"1", "2"})
	if err != nil {
		t.Fatalf("post status: %v", err)
	}
	if result.StatusID != "111222333" || result.Handle != "acme_tv" {
		t.Fatalf("result = %+v", result)
	}
}

func TestPostStatusStructuredError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/1.1/statuses/update.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"errors": [{"code": 187, "message": "Status is a duplicate."}]}`)
	})
	provider, _ := newTestProvider(t, mux)

	_, err := provider.PostStatus(context.Background(), core.AccessCredentials{Token: "at", Secret: "as"}, "dup", nil)
	var providerErr *core.ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if providerErr.HTTPStatus != http.StatusForbidden {
		t.Fatalf("status = %d", providerErr.HTTPStatus)
	}
	if len(providerErr.Codes) != 1 || providerErr.Codes[0].Code != 187 {
		t.Fatalf("codes = %+v", providerErr.Codes)
	}
	if providerErr.Codes[0].Message != "Status is a duplicate." {
		t.Fatalf("message = %q", providerErr.Codes[0].Message)
	}
}

func TestPostStatusUnstructuredError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/1.1/statuses/update.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "over capacity")
	})
	provider, _ := newTestProvider(t, mux)

	_, err := provider.PostStatus(context.Background(), core.AccessCredentials{Token: "at", Secret: "as"}, "x", nil)
	var providerErr *core.ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if len(providerErr.Codes) != 0 {
		t.Fatalf("codes = %+v", providerErr.Codes)
	}
	if providerErr.RawMessage != "over capacity" {
		t.Fatalf("raw message = %q", providerErr.RawMessage)
	}
}

func TestDecodeProviderErrorSingleErrorField(t *testing.T) {
	err := decodeProviderError(http.StatusUnauthorized, []byte(`{"error": "Invalid or expired token."}`))
	var providerErr *core.ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if providerErr.RawMessage != "Invalid or expired token." {
		t.Fatalf("raw message = %q", providerErr.RawMessage)
	}
}
