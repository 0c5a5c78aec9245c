package ledgerapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/saldo-finance/saldo/internal/apierror"
	"github.com/saldo-finance/saldo/model"
)

func (c *HTTPClient) ListTransactions(ctx context.Context, includeDeleted bool) ([]model.Transaction, error) {
	path := "/transactions"
	if includeDeleted {
		path += "?include_deleted=true"
	}
	var transactions []model.Transaction
	if err := c.do(ctx, http.MethodGet, path, nil, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

func (c *HTTPClient) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	var transaction model.Transaction
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/transactions/%s", id), nil, &transaction); err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (c *HTTPClient) CreateTransaction(ctx context.Context, transaction model.Transaction) (*model.Transaction, error) {
	var created model.Transaction
	if err := c.do(ctx, http.MethodPost, "/transactions", transaction, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *HTTPClient) UpdateTransaction(ctx context.Context, transaction *model.Transaction) (*model.Transaction, error) {
	var updated model.Transaction
	path := fmt.Sprintf("/transactions/%s", transaction.CanonicalID())
	if err := c.do(ctx, http.MethodPut, path, transaction, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *HTTPClient) SoftDeleteTransaction(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/transactions/%s", id), nil, nil)
}

func (c *HTTPClient) RestoreTransaction(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/transactions/%s/restore", id), nil, nil)
}

// PermanentlyDeleteTransaction mirrors the account variant: irreversible,
// and not-found counts as success.
func (c *HTTPClient) PermanentlyDeleteTransaction(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/transactions/%s/permanent", id), nil, nil)
	if apierror.CodeOf(err) == apierror.ErrNotFound {
		return nil
	}
	return err
}
