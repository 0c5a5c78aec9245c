/*
Copyright 2024 Saldo Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package saldo

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/saldo-finance/saldo/internal/apierror"
	"github.com/saldo-finance/saldo/model"
)

// CreateTransaction validates and creates a ledger entry. An expense is
// checked against the account's last-known balance before any network call;
// the server remains the final arbiter.
func (s *Saldo) CreateTransaction(ctx context.Context, transaction model.Transaction) (*model.Transaction, error) {
	ctx, span := tracer.Start(ctx, "CreateTransaction")
	defer span.End()

	if err := transaction.ValidateNewTransaction(); err != nil {
		err := apierror.NewValidationError(apierror.ErrInvalidInput, err.Error())
		span.RecordError(err)
		return nil, err
	}

	if transaction.Type == model.TransactionTypeExpense {
		account, err := s.activeAccount(ctx, transaction.AccountID)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if err := model.CanDebit(account.Balance, transaction.Amount.Abs()); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	if transaction.TransactionID == "" {
		transaction.TransactionID = model.GenerateUUIDWithSuffix("txn")
	}
	if transaction.Status == "" {
		transaction.Status = model.StatusCompleted
	}

	created, err := s.client.CreateTransaction(ctx, transaction)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.AddEvent("transaction created", trace.WithAttributes(
		attribute.String("transaction.id", created.CanonicalID()),
		attribute.String("transaction.type", string(created.Type)),
	))

	s.refs.Resolve(created)
	s.refreshAfter(ctx, "transaction create")
	return created, nil
}

// UpdateTransaction submits a validated mutation of an existing entry. For an
// expense, affordability is checked against the balance with the entry's
// previous effect added back, so editing an already-applied expense is not
// rejected against a balance that already includes it.
func (s *Saldo) UpdateTransaction(ctx context.Context, transaction *model.Transaction) (*model.Transaction, error) {
	ctx, span := tracer.Start(ctx, "UpdateTransaction")
	defer span.End()

	if err := transaction.ValidateNewTransaction(); err != nil {
		err := apierror.NewValidationError(apierror.ErrInvalidInput, err.Error())
		span.RecordError(err)
		return nil, err
	}

	if transaction.Type == model.TransactionTypeExpense {
		account, err := s.activeAccount(ctx, transaction.AccountID)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		available := account.Balance
		if existing, err := s.client.GetTransaction(ctx, transaction.CanonicalID()); err == nil &&
			existing.Type == model.TransactionTypeExpense && existing.AccountID == account.CanonicalID() {
			available = available.Add(existing.Amount.Abs())
		}
		if err := model.CanDebit(available, transaction.Amount.Abs()); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	updated, err := s.client.UpdateTransaction(ctx, transaction)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.refs.Resolve(updated)
	s.refreshAfter(ctx, "transaction update")
	return updated, nil
}

// ListTransactions returns active entries with their references resolved
// against the cache. Unresolved references stay bare.
func (s *Saldo) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	transactions, err := s.client.ListTransactions(ctx, false)
	if err != nil {
		return nil, err
	}

	active := make([]model.Transaction, 0, len(transactions))
	for i := range transactions {
		if !transactions[i].Active() || s.deletions.IsPending(transactions[i].CanonicalID()) {
			continue
		}
		s.refs.Resolve(&transactions[i])
		active = append(active, transactions[i])
	}
	return active, nil
}

// DeleteTransaction starts the same reversible deletion used for accounts.
func (s *Saldo) DeleteTransaction(ctx context.Context, id string) (time.Time, error) {
	ctx, span := tracer.Start(ctx, "DeleteTransaction")
	defer span.End()

	if id == "" {
		err := apierror.NewValidationError(apierror.ErrInvalidInput, "transaction id is required")
		span.RecordError(err)
		return time.Time{}, err
	}

	deadline := s.deletions.StartDelete(id, func(ctx context.Context) error {
		if err := s.client.SoftDeleteTransaction(ctx, id); err != nil {
			return err
		}
		s.replicator.Invalidate(ctx, "transaction", id)
		s.refreshAfter(ctx, "transaction delete")
		return nil
	})
	span.AddEvent("deletion pending", trace.WithAttributes(attribute.String("transaction.id", id)))
	return deadline, nil
}

func (s *Saldo) RestoreTransaction(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "RestoreTransaction")
	defer span.End()

	if err := s.client.RestoreTransaction(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}
	s.refreshAfter(ctx, "transaction restore")
	return nil
}

// PermanentlyDeleteTransaction bypasses the undo state machine and is
// idempotent: repeating it after success still succeeds.
func (s *Saldo) PermanentlyDeleteTransaction(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "PermanentlyDeleteTransaction")
	defer span.End()

	if s.deletions.IsPending(id) {
		_ = s.deletions.Undo(id)
	}

	if err := s.client.PermanentlyDeleteTransaction(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}
	s.replicator.Invalidate(ctx, "transaction", id)
	s.refreshAfter(ctx, "transaction permanent delete")
	return nil
}
