package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeCash          AccountType = "cash"
	AccountTypeBank          AccountType = "bank"
	AccountTypeEWallet       AccountType = "e-wallet"
	AccountTypeEmergencyFund AccountType = "emergency-fund"
)

// Valid reports whether the type is one of the closed enumeration.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeCash, AccountTypeBank, AccountTypeEWallet, AccountTypeEmergencyFund:
		return true
	}
	return false
}

type Account struct {
	AccountID   string          `json:"account_id"`
	LegacyID    string          `json:"_id,omitempty"`
	Name        string          `json:"name"`
	Type        AccountType     `json:"type"`
	Balance     decimal.Decimal `json:"balance"`
	Institution string          `json:"institution,omitempty"`
	Description string          `json:"description,omitempty"`
	IsDeleted   bool            `json:"is_deleted"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CanonicalID returns the one identifier downstream code compares on. The
// legacy id is only ever consulted at the ingestion boundary.
func (a *Account) CanonicalID() string {
	if a.AccountID != "" {
		return a.AccountID
	}
	return a.LegacyID
}

// Active reports whether the account participates in listings, balance
// aggregation and transfers.
func (a *Account) Active() bool {
	return !a.IsDeleted
}

func (a *Account) ValidateNewAccount() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Name, validation.Required),
		validation.Field(&a.Type, validation.Required, validation.In(AccountTypeCash, AccountTypeBank, AccountTypeEWallet, AccountTypeEmergencyFund)),
		validation.Field(&a.Balance, validation.By(nonNegativeAmount)),
	)
}

type Category struct {
	CategoryID string    `json:"category_id"`
	LegacyID   string    `json:"_id,omitempty"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	IsDeleted  bool      `json:"is_deleted"`
	CreatedAt  time.Time `json:"created_at"`
}

func (c *Category) CanonicalID() string {
	if c.CategoryID != "" {
		return c.CategoryID
	}
	return c.LegacyID
}
