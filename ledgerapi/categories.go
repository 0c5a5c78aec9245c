package ledgerapi

import (
	"context"
	"net/http"

	"github.com/saldo-finance/saldo/model"
)

func (c *HTTPClient) ListCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}
