package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

// socialAccountRecord holds both pending placeholders and linked accounts.
// For a pending row the access_token column carries the provider's request
// token, which is the only key the callback leg can look it up by.
type socialAccountRecord struct {
	bun.BaseModel `bun:"table:social_accounts,alias:sa"`

	ID                string    `bun:"id,pk"`
	OwnerUserID       string    `bun:"owner_user_id,notnull"`
	DisplayName       string    `bun:"display_name,notnull"`
	Handle            string    `bun:"handle,notnull"`
	AvatarURL         string    `bun:"avatar_url,notnull"`
	AccessToken       string    `bun:"access_token,notnull"`
	AccessTokenSecret string    `bun:"access_token_secret,notnull"`
	Status            string    `bun:"status,notnull"`
	CreatedAt         time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt         time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
