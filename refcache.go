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
	"sync"

	"github.com/saldo-finance/saldo/model"
)

// ReferenceCache holds the most recently fetched account and category
// records, keyed under every identifier form observed for each entity. It
// resolves bare foreign-key ids embedded in transaction records into full
// objects. Resolution is synchronous against whatever is cached; a cold cache
// never blocks on network, it degrades to unresolved references.
type ReferenceCache struct {
	mu         sync.RWMutex
	accounts   map[string]*model.Account
	categories map[string]*model.Category
	warm       bool
}

func NewReferenceCache() *ReferenceCache {
	return &ReferenceCache{
		accounts:   make(map[string]*model.Account),
		categories: make(map[string]*model.Category),
	}
}

// PublishAccounts stores the given accounts under both the canonical and the
// legacy identifier. Last writer wins.
func (c *ReferenceCache) PublishAccounts(accounts []model.Account) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range accounts {
		account := accounts[i]
		if account.AccountID != "" {
			c.accounts[account.AccountID] = &account
		}
		if account.LegacyID != "" {
			c.accounts[account.LegacyID] = &account
		}
	}
}

func (c *ReferenceCache) PublishCategories(categories []model.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range categories {
		category := categories[i]
		if category.CategoryID != "" {
			c.categories[category.CategoryID] = &category
		}
		if category.LegacyID != "" {
			c.categories[category.LegacyID] = &category
		}
	}
}

// Account returns the cached record for either identifier form of an account.
func (c *ReferenceCache) Account(id string) (*model.Account, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	account, ok := c.accounts[id]
	return account, ok
}

func (c *ReferenceCache) Category(id string) (*model.Category, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	category, ok := c.categories[id]
	return category, ok
}

// Resolve substitutes cached objects into the transaction's reference fields
// when they arrived as bare opaque ids. Unresolvable references are left
// as-is; callers must tolerate them.
func (c *ReferenceCache) Resolve(transaction *model.Transaction) {
	if transaction == nil {
		return
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	if transaction.Account == nil && model.IsOpaqueID(transaction.AccountID) {
		if account, ok := c.accounts[transaction.AccountID]; ok {
			transaction.Account = account
			transaction.AccountID = account.CanonicalID()
		}
	}
	if transaction.Category == nil && model.IsOpaqueID(transaction.CategoryID) {
		if category, ok := c.categories[transaction.CategoryID]; ok {
			transaction.Category = category
			transaction.CategoryID = category.CanonicalID()
		}
	}
}

// Invalidate drops every identifier form of a single entity. The next Resolve
// leaves its references bare until the next publish.
func (c *ReferenceCache) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if account, ok := c.accounts[id]; ok {
		delete(c.accounts, account.AccountID)
		delete(c.accounts, account.LegacyID)
	}
	if category, ok := c.categories[id]; ok {
		delete(c.categories, category.CategoryID)
		delete(c.categories, category.LegacyID)
	}
	delete(c.accounts, id)
	delete(c.categories, id)
}

// MarkWarm records that a full preload has completed.
func (c *ReferenceCache) MarkWarm() {
	c.mu.Lock()
	c.warm = true
	c.mu.Unlock()
}

func (c *ReferenceCache) Warm() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.warm
}
