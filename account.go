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

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/saldo-finance/saldo/internal/apierror"
	"github.com/saldo-finance/saldo/internal/cache"
	"github.com/saldo-finance/saldo/model"
)

// CreateAccount validates and creates a new account. The balance may only be
// seeded non-negative; afterwards it changes exclusively through validated
// mutations.
func (s *Saldo) CreateAccount(ctx context.Context, account model.Account) (*model.Account, error) {
	ctx, span := tracer.Start(ctx, "CreateAccount")
	defer span.End()

	if err := account.ValidateNewAccount(); err != nil {
		err := apierror.NewValidationError(apierror.ErrInvalidInput, err.Error())
		span.RecordError(err)
		return nil, err
	}
	if account.AccountID == "" {
		account.AccountID = model.GenerateUUIDWithSuffix("account")
	}
	account.CreatedAt = time.Now()

	created, err := s.client.CreateAccount(ctx, account)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.AddEvent("account created", trace.WithAttributes(attribute.String("account.id", created.CanonicalID())))

	s.refreshAfter(ctx, "account create")
	return created, nil
}

// UpdateAccount submits a validated account mutation. A direct balance update
// that would go negative is rejected before any network call.
func (s *Saldo) UpdateAccount(ctx context.Context, account *model.Account) (*model.Account, error) {
	ctx, span := tracer.Start(ctx, "UpdateAccount")
	defer span.End()

	if err := account.ValidateNewAccount(); err != nil {
		err := apierror.NewValidationError(apierror.ErrInvalidInput, err.Error())
		span.RecordError(err)
		return nil, err
	}
	if err := model.CanSetBalance(account.Balance); err != nil {
		span.RecordError(err)
		return nil, err
	}

	updated, err := s.client.UpdateAccount(ctx, account)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.refreshAfter(ctx, "account update")
	return updated, nil
}

// ListAccounts returns the active accounts: soft-deleted entities and
// entities inside a pending undo window are both excluded.
func (s *Saldo) ListAccounts(ctx context.Context) ([]model.Account, error) {
	accounts, err := s.client.ListAccounts(ctx, false)
	if err != nil {
		return nil, err
	}
	s.refs.PublishAccounts(accounts)

	active := make([]model.Account, 0, len(accounts))
	for _, account := range accounts {
		if account.Active() && !s.deletions.IsPending(account.CanonicalID()) {
			active = append(active, account)
		}
	}
	return active, nil
}

// AccountsSnapshot reads the last replicated account collection without
// touching the network. Last known good only; never consulted for a mutation
// decision.
func (s *Saldo) AccountsSnapshot(ctx context.Context) ([]model.Account, error) {
	var accounts []model.Account
	if err := s.replica.Get(ctx, cache.CollectionKey("account"), &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// DeleteAccount starts a reversible deletion: the account disappears from
// active listings immediately, but the remote soft delete is deferred until
// the undo window elapses or is short-circuited. Returns the commit deadline.
func (s *Saldo) DeleteAccount(ctx context.Context, id string) (time.Time, error) {
	ctx, span := tracer.Start(ctx, "DeleteAccount")
	defer span.End()

	account, err := s.activeAccount(ctx, id)
	if err != nil {
		span.RecordError(err)
		return time.Time{}, err
	}
	canonical := account.CanonicalID()

	deadline := s.deletions.StartDelete(canonical, func(ctx context.Context) error {
		if err := s.client.SoftDeleteAccount(ctx, canonical); err != nil {
			return err
		}
		s.replicator.Invalidate(ctx, "account", canonical)
		s.refreshAfter(ctx, "account delete")
		return nil
	})
	span.AddEvent("deletion pending", trace.WithAttributes(attribute.String("account.id", canonical)))
	return deadline, nil
}

// RestoreAccount reverses a soft delete still held server-side and refreshes
// local state.
func (s *Saldo) RestoreAccount(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "RestoreAccount")
	defer span.End()

	if err := s.client.RestoreAccount(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}
	s.refreshAfter(ctx, "account restore")
	return nil
}

// PermanentlyDeleteAccount is irreversible and bypasses the undo state
// machine entirely. Deleting an already-absent account succeeds.
func (s *Saldo) PermanentlyDeleteAccount(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "PermanentlyDeleteAccount")
	defer span.End()

	// Any pending soft delete for the same id is moot once the entity is
	// gone for good.
	if s.deletions.IsPending(id) {
		_ = s.deletions.Undo(id)
	}

	if err := s.client.PermanentlyDeleteAccount(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}
	s.replicator.Invalidate(ctx, "account", id)
	s.refreshAfter(ctx, "account permanent delete")
	return nil
}

// refreshAfter runs the post-mutation refresh, downgrading a refresh failure
// to a log line: the mutation itself already committed remotely.
func (s *Saldo) refreshAfter(ctx context.Context, operation string) {
	if err := s.replicator.RefreshAfterMutation(ctx); err != nil {
		logrus.WithField("operation", operation).WithError(err).Warn("post-mutation refresh failed")
	}
}
