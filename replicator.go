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

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/saldo-finance/saldo/internal/cache"
	"github.com/saldo-finance/saldo/ledgerapi"
	"github.com/saldo-finance/saldo/model"
)

const replicaTTL = time.Hour

// refreshMaxRetries bounds the backoff on the read-only refresh. Mutations
// are never auto-retried.
const refreshMaxRetries = 2

// Replicator keeps the reference cache and the durable local replica
// approximately synchronized with server-held truth. The replica is
// last-known-good only; no mutation decision reads it.
type Replicator struct {
	accounts   ledgerapi.AccountClient
	categories ledgerapi.CategoryClient
	refs       *ReferenceCache
	replica    cache.Cache
}

func newReplicator(client ledgerapi.Client, refs *ReferenceCache, replica cache.Cache) *Replicator {
	return &Replicator{
		accounts:   client,
		categories: client,
		refs:       refs,
		replica:    replica,
	}
}

// Preload fetches the account and category collections concurrently and
// publishes them once both have completed. The cache is considered warm only
// after a full preload; a partial fetch publishes nothing.
func (r *Replicator) Preload(ctx context.Context) error {
	var accounts []model.Account
	var categories []model.Category

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = r.accounts.ListAccounts(gctx, true)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = r.categories.ListCategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "preload")
	}

	r.publish(ctx, accounts, categories)
	r.refs.MarkWarm()
	return nil
}

// RefreshAfterMutation re-fetches both collections and republishes them. The
// fetch is read-only, so a short bounded backoff is safe; the staleness
// window of the replica is the latency of this call.
func (r *Replicator) RefreshAfterMutation(ctx context.Context) error {
	refresh := func() error {
		accounts, err := r.accounts.ListAccounts(ctx, true)
		if err != nil {
			return err
		}
		categories, err := r.categories.ListCategories(ctx)
		if err != nil {
			return err
		}
		r.publish(ctx, accounts, categories)
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), refreshMaxRetries), ctx)
	if err := backoff.Retry(refresh, policy); err != nil {
		return errors.Wrap(err, "refresh after mutation")
	}
	return nil
}

// Invalidate drops one entity from the reference cache and the replica.
func (r *Replicator) Invalidate(ctx context.Context, entityType, id string) {
	r.refs.Invalidate(id)
	if err := r.replica.Delete(ctx, cache.Key(entityType, id)); err != nil {
		logrus.WithField("key", cache.Key(entityType, id)).WithError(err).Warn("replica delete failed")
	}
}

func (r *Replicator) publish(ctx context.Context, accounts []model.Account, categories []model.Category) {
	r.refs.PublishAccounts(accounts)
	r.refs.PublishCategories(categories)

	for i := range accounts {
		r.replicaSet(ctx, cache.Key("account", accounts[i].CanonicalID()), accounts[i])
	}
	r.replicaSet(ctx, cache.CollectionKey("account"), accounts)

	for i := range categories {
		r.replicaSet(ctx, cache.Key("category", categories[i].CanonicalID()), categories[i])
	}
	r.replicaSet(ctx, cache.CollectionKey("category"), categories)
}

// replicaSet writes best-effort: a replica miss is always recoverable by the
// next refresh, so failures are logged and not propagated.
func (r *Replicator) replicaSet(ctx context.Context, key string, data interface{}) {
	if err := r.replica.Set(ctx, key, data, replicaTTL); err != nil {
		logrus.WithField("key", key).WithError(err).Warn("replica write failed")
	}
}
