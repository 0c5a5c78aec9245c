package model

import (
	"encoding/json"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

const (
	StatusCompleted = "COMPLETED"
	StatusPending   = "PENDING"
)

// Transaction is a single ledger entry against one account. The category and
// account references may arrive from the server either as bare opaque ids or
// as embedded objects depending on the endpoint; UnmarshalJSON normalizes
// both forms to a canonical id plus an optional embedded record.
type Transaction struct {
	TransactionID string          `json:"transaction_id"`
	LegacyID      string          `json:"_id,omitempty"`
	Title         string          `json:"title"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	CategoryID    string          `json:"category_id,omitempty"`
	Category      *Category       `json:"category,omitempty"`
	AccountID     string          `json:"account_id,omitempty"`
	Account       *Account        `json:"account,omitempty"`
	Type          TransactionType `json:"type"`
	Status        string          `json:"status"`
	IsDeleted     bool            `json:"is_deleted"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (t *Transaction) CanonicalID() string {
	if t.TransactionID != "" {
		return t.TransactionID
	}
	return t.LegacyID
}

func (t *Transaction) Active() bool {
	return !t.IsDeleted
}

// SignedAmount returns the balance effect of the transaction: positive for
// income, negative for expense. The sign convention is fixed by Type, never
// by the stored amount.
func (t *Transaction) SignedAmount() decimal.Decimal {
	magnitude := t.Amount.Abs()
	if t.Type == TransactionTypeExpense {
		return magnitude.Neg()
	}
	return magnitude
}

func (t *Transaction) ValidateNewTransaction() error {
	return validation.ValidateStruct(t,
		validation.Field(&t.Title, validation.Required),
		validation.Field(&t.Amount, validation.By(positiveAmount)),
		validation.Field(&t.Type, validation.Required, validation.In(TransactionTypeIncome, TransactionTypeExpense)),
		validation.Field(&t.AccountID, validation.Required),
	)
}

// transactionWire mirrors Transaction but keeps the two reference fields raw
// so both the bare-id and embedded-object forms can be decoded.
type transactionWire struct {
	TransactionID string          `json:"transaction_id"`
	LegacyID      string          `json:"_id"`
	Title         string          `json:"title"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	CategoryID    string          `json:"category_id"`
	Category      json.RawMessage `json:"category"`
	AccountID     string          `json:"account_id"`
	Account       json.RawMessage `json:"account"`
	Type          TransactionType `json:"type"`
	Status        string          `json:"status"`
	IsDeleted     bool            `json:"is_deleted"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// UnmarshalJSON resolves the dual identifier forms at the ingestion boundary.
// Downstream code only ever compares canonical ids.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var wire transactionWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*t = Transaction{
		TransactionID: wire.TransactionID,
		LegacyID:      wire.LegacyID,
		Title:         wire.Title,
		Amount:        wire.Amount,
		Date:          wire.Date,
		CategoryID:    wire.CategoryID,
		AccountID:     wire.AccountID,
		Type:          wire.Type,
		Status:        wire.Status,
		IsDeleted:     wire.IsDeleted,
		CreatedAt:     wire.CreatedAt,
		UpdatedAt:     wire.UpdatedAt,
	}

	categoryID, category, err := decodeReference[Category](wire.Category)
	if err != nil {
		return err
	}
	if category != nil {
		t.Category = category
		t.CategoryID = category.CanonicalID()
	} else if categoryID != "" {
		t.CategoryID = categoryID
	}

	accountID, account, err := decodeReference[Account](wire.Account)
	if err != nil {
		return err
	}
	if account != nil {
		t.Account = account
		t.AccountID = account.CanonicalID()
	} else if accountID != "" {
		t.AccountID = accountID
	}

	return nil
}

// decodeReference decodes a raw reference field that is either a quoted bare
// id, an embedded object, or absent.
func decodeReference[T any](raw json.RawMessage) (string, *T, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil, nil
	}
	if raw[0] == '"' {
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return "", nil, err
		}
		return id, nil, nil
	}
	obj := new(T)
	if err := json.Unmarshal(raw, obj); err != nil {
		return "", nil, err
	}
	return "", obj, nil
}
