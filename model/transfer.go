package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// MaxTransferDescriptionLength bounds the free-text description on a transfer.
const MaxTransferDescriptionLength = 200

// Transfer is a single atomic movement of funds between two distinct
// accounts. The server moves both balances in one operation; the client never
// applies either side locally.
type Transfer struct {
	TransferID    string          `json:"transfer_id"`
	SourceID      string          `json:"source_id"`
	DestinationID string          `json:"destination_id"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
	Date          time.Time       `json:"date"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (t *Transfer) ValidateTransfer() error {
	return validation.ValidateStruct(t,
		validation.Field(&t.SourceID, validation.Required),
		validation.Field(&t.DestinationID, validation.Required),
		validation.Field(&t.Amount, validation.By(positiveAmount)),
		validation.Field(&t.Description, validation.RuneLength(0, MaxTransferDescriptionLength)),
	)
}

// LedgerEntry is a display-only projection of one side of a transfer. A
// transfer is not a Transaction, but listings render it as an equivalent
// looking entry pair.
type LedgerEntry struct {
	AccountID string          `json:"account_id"`
	Title     string          `json:"title"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
}

// LedgerEntries returns the debit/credit pair a committed transfer shows up
// as in per-account listings.
func (t *Transfer) LedgerEntries() (LedgerEntry, LedgerEntry) {
	title := t.Description
	if title == "" {
		title = "Transfer"
	}
	debit := LedgerEntry{
		AccountID: t.SourceID,
		Title:     title,
		Amount:    t.Amount.Neg(),
		Date:      t.Date,
	}
	credit := LedgerEntry{
		AccountID: t.DestinationID,
		Title:     title,
		Amount:    t.Amount,
		Date:      t.Date,
	}
	return debit, credit
}
