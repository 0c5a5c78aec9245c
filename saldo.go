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
	"go.opentelemetry.io/otel"

	"github.com/saldo-finance/saldo/config"
	"github.com/saldo-finance/saldo/internal/apierror"
	"github.com/saldo-finance/saldo/internal/cache"
	"github.com/saldo-finance/saldo/internal/notification"
	"github.com/saldo-finance/saldo/ledgerapi"
)

var tracer = otel.Tracer("saldo.ledger")

// Saldo is the ledger mutation and consistency service. It owns the reference
// cache, the local replica, and the deletion state machines; the remote ledger
// API remains the sole authority for balances.
type Saldo struct {
	client     ledgerapi.Client
	refs       *ReferenceCache
	replica    cache.Cache
	replicator *Replicator
	deletions  *DeletionCoordinator
}

// NewSaldo wires a service instance from the loaded configuration.
func NewSaldo(client ledgerapi.Client) (*Saldo, error) {
	cnf, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	replica, err := cache.NewCache()
	if err != nil {
		return nil, err
	}
	return newSaldo(client, replica, cnf.UndoWindow(), nil), nil
}

func newSaldo(client ledgerapi.Client, replica cache.Cache, undoWindow time.Duration, scheduler Scheduler) *Saldo {
	refs := NewReferenceCache()
	s := &Saldo{
		client:  client,
		refs:    refs,
		replica: replica,
	}
	s.replicator = newReplicator(client, refs, replica)
	s.deletions = NewDeletionCoordinator(undoWindow, scheduler, func(id string, err error) {
		entry := logrus.WithField("entity", id).WithError(err)
		if apierror.IsNetworkFailure(err) {
			entry.Error("soft delete commit failed on a network fault, entity restored to active; retry the delete")
		} else {
			entry.Error("soft delete commit failed, entity restored to active")
		}
		notification.NotifyError(err)
	})
	return s
}

// Preload warms the reference cache and the local replica. Safe to call
// repeatedly; the last fetch wins.
func (s *Saldo) Preload(ctx context.Context) error {
	return s.replicator.Preload(ctx)
}

// UndoDelete cancels a pending soft delete for any entity kind. No network
// call is made; the entity returns to active immediately.
func (s *Saldo) UndoDelete(id string) error {
	return s.deletions.Undo(id)
}

// CommitDeleteNow short-circuits the undo window and performs the deferred
// soft delete immediately.
func (s *Saldo) CommitDeleteNow(ctx context.Context, id string) error {
	return s.deletions.ForceCommitNow(ctx, id)
}

// DeletionRemaining reports how much of the undo window is left for a pending
// deletion. The returned value is cosmetic; commit timing depends only on the
// scheduled timer.
func (s *Saldo) DeletionRemaining(id string) time.Duration {
	return s.deletions.Remaining(id)
}

// DeletionState reports the deletion lifecycle state for an entity id.
func (s *Saldo) DeletionState(id string) DeletionState {
	return s.deletions.State(id)
}
