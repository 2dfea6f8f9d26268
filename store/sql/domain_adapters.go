package sqlstore

import (
	"time"

	"github.com/goliatone/go-social-link/core"
)

func newAccountRecord(account core.SocialAccount, now time.Time) *socialAccountRecord {
	record := &socialAccountRecord{
		ID:                account.ID,
		OwnerUserID:       account.OwnerUserID,
		DisplayName:       account.DisplayName,
		Handle:            account.Handle,
		AvatarURL:         account.AvatarURL,
		AccessToken:       account.AccessToken,
		AccessTokenSecret: account.AccessTokenSecret,
		Status:            string(account.Status),
		CreatedAt:         account.CreatedAt,
		UpdatedAt:         now,
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	return record
}

func (r *socialAccountRecord) toDomain() core.SocialAccount {
	if r == nil {
		return core.SocialAccount{}
	}
	return core.SocialAccount{
		ID:                r.ID,
		OwnerUserID:       r.OwnerUserID,
		DisplayName:       r.DisplayName,
		Handle:            r.Handle,
		AvatarURL:         r.AvatarURL,
		AccessToken:       r.AccessToken,
		AccessTokenSecret: r.AccessTokenSecret,
		Status:            core.AccountStatus(r.Status),
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}
