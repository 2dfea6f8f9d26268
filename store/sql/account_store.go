package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-social-link/core"
)

// AccountStore is the bun-backed core.AccountStore.
type AccountStore struct {
	db   *bun.DB
	repo repository.Repository[*socialAccountRecord]
}

func (s *AccountStore) Create(ctx context.Context, account core.SocialAccount) (core.SocialAccount, error) {
	if s == nil || s.repo == nil {
		return core.SocialAccount{}, fmt.Errorf("sqlstore: account store is not configured")
	}
	if strings.TrimSpace(account.OwnerUserID) == "" {
		return core.SocialAccount{}, fmt.Errorf("sqlstore: owner user id is required")
	}
	if strings.TrimSpace(string(account.Status)) == "" {
		account.Status = core.AccountStatusPending
	}

	record := newAccountRecord(account, time.Now().UTC())
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return core.SocialAccount{}, err
	}
	return created.toDomain(), nil
}

func (s *AccountStore) GetByRequestToken(ctx context.Context, requestToken string) (core.SocialAccount, bool, error) {
	if s == nil || s.db == nil {
		return core.SocialAccount{}, false, fmt.Errorf("sqlstore: account store is not configured")
	}
	requestToken = strings.TrimSpace(requestToken)
	if requestToken == "" {
		return core.SocialAccount{}, false, fmt.Errorf("sqlstore: request token is required")
	}

	record := &socialAccountRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("sa.access_token = ?", requestToken).
		Where("sa.status = ?", string(core.AccountStatusPending)).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SocialAccount{}, false, nil
	}
	if err != nil {
		return core.SocialAccount{}, false, err
	}
	return record.toDomain(), true, nil
}

func (s *AccountStore) FindLinked(ctx context.Context, ownerUserID string, handle string) (core.SocialAccount, bool, error) {
	if s == nil || s.db == nil {
		return core.SocialAccount{}, false, fmt.Errorf("sqlstore: account store is not configured")
	}

	record := &socialAccountRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("sa.owner_user_id = ?", strings.TrimSpace(ownerUserID)).
		Where("sa.handle = ?", strings.TrimSpace(handle)).
		Where("sa.status = ?", string(core.AccountStatusLinked)).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SocialAccount{}, false, nil
	}
	if err != nil {
		return core.SocialAccount{}, false, err
	}
	return record.toDomain(), true, nil
}

func (s *AccountStore) ListLinkedByOwner(ctx context.Context, ownerUserID string) ([]core.SocialAccount, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: account store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("owner_user_id", "=", strings.TrimSpace(ownerUserID)),
		repository.SelectBy("status", "=", string(core.AccountStatusLinked)),
		repository.OrderBy("created_at ASC"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.SocialAccount, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (s *AccountStore) ListLinked(ctx context.Context) ([]core.SocialAccount, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: account store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("status", "=", string(core.AccountStatusLinked)),
		repository.OrderBy("created_at ASC"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.SocialAccount, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (s *AccountStore) Save(ctx context.Context, account core.SocialAccount) (core.SocialAccount, error) {
	if s == nil || s.repo == nil {
		return core.SocialAccount{}, fmt.Errorf("sqlstore: account store is not configured")
	}
	record := newAccountRecord(account, time.Now().UTC())
	if strings.TrimSpace(record.ID) == "" {
		created, err := s.repo.Create(ctx, record)
		if err != nil {
			return core.SocialAccount{}, err
		}
		return created.toDomain(), nil
	}

	updated, err := s.repo.Update(ctx, record, repository.UpdateByID(record.ID))
	if err != nil {
		return core.SocialAccount{}, err
	}
	return updated.toDomain(), nil
}

func (s *AccountStore) Delete(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: account store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("sqlstore: account id is required")
	}
	result, err := s.db.NewDelete().
		Model((*socialAccountRecord)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, affectedErr := result.RowsAffected(); affectedErr == nil && affected == 0 {
		return fmt.Errorf("sqlstore: no account with id %q", id)
	}
	return nil
}
