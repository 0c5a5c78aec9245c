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
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/saldo-finance/saldo/internal/apierror"
	"github.com/saldo-finance/saldo/model"
)

// Transfer validates and submits a two-account transfer as a single remote
// request. All validation runs before the network call; on any failure no
// local balance is touched. The server moves both balances atomically and
// remains the final arbiter even after client-side checks pass.
func (s *Saldo) Transfer(ctx context.Context, sourceID, destinationID string, amount decimal.Decimal, description string) (*model.Transfer, error) {
	ctx, span := tracer.Start(ctx, "Transfer")
	defer span.End()

	source, err := s.activeAccount(ctx, sourceID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	destination, err := s.activeAccount(ctx, destinationID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// Compared by canonical identifier, never by display name. Two distinct
	// accounts may share a name.
	if source.CanonicalID() == destination.CanonicalID() {
		err := apierror.NewValidationError(apierror.ErrSameAccountTransfer, "source and destination must be different accounts")
		span.RecordError(err)
		return nil, err
	}

	// The cached balance may be stale; this rejection is an optimization and
	// the server still has the last word.
	if err := model.CanDebit(source.Balance, amount); err != nil {
		span.RecordError(err)
		return nil, err
	}

	transfer := model.Transfer{
		TransferID:    model.GenerateUUIDWithSuffix("trf"),
		SourceID:      source.CanonicalID(),
		DestinationID: destination.CanonicalID(),
		Amount:        amount,
		Description:   description,
		Date:          time.Now(),
	}
	if err := transfer.ValidateTransfer(); err != nil {
		err := transferValidationError(err)
		span.RecordError(err)
		return nil, err
	}

	created, err := s.client.CreateTransfer(ctx, transfer)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.AddEvent("transfer committed", trace.WithAttributes(
		attribute.String("transfer.id", created.TransferID),
		attribute.String("transfer.amount", amount.String()),
	))

	// Both balances changed server-side; refresh everything. The transfer
	// itself is already committed, so a refresh failure only widens the
	// staleness window.
	if err := s.replicator.RefreshAfterMutation(ctx); err != nil {
		logrus.WithError(err).Warn("post-transfer refresh failed, replica is stale until next refresh")
	}
	return created, nil
}

// activeAccount resolves an account by either identifier form, preferring the
// reference cache and falling back to the remote API on a cold cache. Missing
// and soft-deleted accounts both yield typed errors.
func (s *Saldo) activeAccount(ctx context.Context, id string) (*model.Account, error) {
	account, ok := s.refs.Account(id)
	if !ok {
		fetched, err := s.client.GetAccount(ctx, id)
		if err != nil {
			return nil, err
		}
		s.refs.PublishAccounts([]model.Account{*fetched})
		account = fetched
	}

	if !account.Active() || s.deletions.IsPending(account.CanonicalID()) {
		return nil, apierror.NewValidationError(apierror.ErrInvalidInput, fmt.Sprintf("account %s is deleted", id))
	}
	return account, nil
}

// transferValidationError maps a field-level validation failure onto the
// typed taxonomy.
func transferValidationError(err error) error {
	var fields validation.Errors
	if errors.As(err, &fields) {
		if _, ok := fields["description"]; ok {
			return apierror.NewValidationError(apierror.ErrDescriptionTooLong,
				fmt.Sprintf("description must be at most %d characters", model.MaxTransferDescriptionLength))
		}
	}
	return apierror.NewValidationError(apierror.ErrInvalidInput, err.Error())
}
