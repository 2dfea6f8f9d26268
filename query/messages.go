package query

import "strings"

const (
	TypeGetAccount   = "social.query.account.get"
	TypeListAccounts = "social.query.account.list"
)

type GetAccountMessage struct {
	OwnerUserID string
	Handle      string
}

func (GetAccountMessage) Type() string { return TypeGetAccount }

func (m GetAccountMessage) Validate() error {
	if strings.TrimSpace(m.OwnerUserID) == "" {
		return queryValidationError("owner_user_id", "owner user id is required")
	}
	if strings.TrimSpace(m.Handle) == "" {
		return queryValidationError("handle", "handle is required")
	}
	return nil
}

type ListAccountsMessage struct {
	OwnerUserID string
}

func (ListAccountsMessage) Type() string { return TypeListAccounts }

func (m ListAccountsMessage) Validate() error {
	if strings.TrimSpace(m.OwnerUserID) == "" {
		return queryValidationError("owner_user_id", "owner user id is required")
	}
	return nil
}
