package ledgerapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/saldo-finance/saldo/internal/apierror"
	"github.com/saldo-finance/saldo/model"
)

// ListAccounts retrieves the account collection. Soft-deleted accounts are
// excluded unless explicitly requested.
func (c *HTTPClient) ListAccounts(ctx context.Context, includeDeleted bool) ([]model.Account, error) {
	path := "/accounts"
	if includeDeleted {
		path += "?include_deleted=true"
	}
	var accounts []model.Account
	if err := c.do(ctx, http.MethodGet, path, nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (c *HTTPClient) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	var account model.Account
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/accounts/%s", id), nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (c *HTTPClient) CreateAccount(ctx context.Context, account model.Account) (*model.Account, error) {
	var created model.Account
	if err := c.do(ctx, http.MethodPost, "/accounts", account, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *HTTPClient) UpdateAccount(ctx context.Context, account *model.Account) (*model.Account, error) {
	var updated model.Account
	path := fmt.Sprintf("/accounts/%s", account.CanonicalID())
	if err := c.do(ctx, http.MethodPut, path, account, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// SoftDeleteAccount marks an account deleted server-side. Reversible via
// RestoreAccount while the server still holds the record.
func (c *HTTPClient) SoftDeleteAccount(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/accounts/%s", id), nil, nil)
}

func (c *HTTPClient) RestoreAccount(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/accounts/%s/restore", id), nil, nil)
}

// PermanentlyDeleteAccount is irreversible and idempotent: a not-found
// response means the end state already matches intent and is reported as
// success.
func (c *HTTPClient) PermanentlyDeleteAccount(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/accounts/%s/permanent", id), nil, nil)
	if apierror.CodeOf(err) == apierror.ErrNotFound {
		return nil
	}
	return err
}
