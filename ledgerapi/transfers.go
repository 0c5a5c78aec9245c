package ledgerapi

import (
	"context"
	"net/http"

	"github.com/saldo-finance/saldo/model"
)

// CreateTransfer submits the two-sided balance movement as a single request.
// The server, not the client, moves both balances atomically.
func (c *HTTPClient) CreateTransfer(ctx context.Context, transfer model.Transfer) (*model.Transfer, error) {
	var created model.Transfer
	if err := c.do(ctx, http.MethodPost, "/transfers", transfer, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
