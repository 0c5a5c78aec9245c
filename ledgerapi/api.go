package ledgerapi

import (
	"context"

	"github.com/saldo-finance/saldo/model"
)

// AccountClient covers the account endpoints of the remote ledger API.
// Delete is soft by default; the permanent variant is irreversible and
// idempotent; restore reverses a soft delete still held server-side.
type AccountClient interface {
	ListAccounts(ctx context.Context, includeDeleted bool) ([]model.Account, error)
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	CreateAccount(ctx context.Context, account model.Account) (*model.Account, error)
	UpdateAccount(ctx context.Context, account *model.Account) (*model.Account, error)
	SoftDeleteAccount(ctx context.Context, id string) error
	RestoreAccount(ctx context.Context, id string) error
	PermanentlyDeleteAccount(ctx context.Context, id string) error
}

type CategoryClient interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
}

type TransactionClient interface {
	ListTransactions(ctx context.Context, includeDeleted bool) ([]model.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)
	CreateTransaction(ctx context.Context, transaction model.Transaction) (*model.Transaction, error)
	UpdateTransaction(ctx context.Context, transaction *model.Transaction) (*model.Transaction, error)
	SoftDeleteTransaction(ctx context.Context, id string) error
	RestoreTransaction(ctx context.Context, id string) error
	PermanentlyDeleteTransaction(ctx context.Context, id string) error
}

type TransferClient interface {
	CreateTransfer(ctx context.Context, transfer model.Transfer) (*model.Transfer, error)
}

// Client is the full remote ledger API surface the consistency layer depends
// on. The server is the sole authority for balances; this client never
// computes or persists one.
type Client interface {
	AccountClient
	CategoryClient
	TransactionClient
	TransferClient
}
