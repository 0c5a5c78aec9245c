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
	"sync"
	"time"

	"github.com/saldo-finance/saldo/internal/apierror"
)

// DeletionState is the lifecycle position of one deletion attempt.
type DeletionState string

const (
	DeletionActive    DeletionState = "ACTIVE"
	DeletionPending   DeletionState = "PENDING_DELETE"
	DeletionCommitted DeletionState = "COMMITTED"
	DeletionCancelled DeletionState = "CANCELLED"
)

// CommitFunc performs the authoritative remote soft delete for one entity.
type CommitFunc func(ctx context.Context) error

// Scheduler schedules a single deferred call. The returned cancel reports
// whether it prevented the call from running.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) (cancel func() bool)
}

type timerScheduler struct{}

func (timerScheduler) Schedule(delay time.Duration, fn func()) func() bool {
	return time.AfterFunc(delay, fn).Stop
}

type pendingDeletion struct {
	id       string
	state    DeletionState
	commit   CommitFunc
	cancel   func() bool
	deadline time.Time
}

// DeletionCoordinator runs a reversible-delete state machine per entity id:
// Active -> PendingDelete -> {Committed, Cancelled}. Starting a delete hides
// the entity locally and arms a countdown; the remote call happens only on
// natural expiry or ForceCommitNow. Timers are independent per entity id, and
// at most one is pending per id. A failed commit restores the entity to
// Active rather than leaving it hidden locally while still live on the
// server.
type DeletionCoordinator struct {
	mu        sync.Mutex
	window    time.Duration
	scheduler Scheduler
	pending   map[string]*pendingDeletion
	onError   func(id string, err error)
}

// NewDeletionCoordinator builds a coordinator with the given undo window.
// onError observes commit failures from natural expiry, which have no caller
// to return to.
func NewDeletionCoordinator(window time.Duration, scheduler Scheduler, onError func(id string, err error)) *DeletionCoordinator {
	if scheduler == nil {
		scheduler = timerScheduler{}
	}
	if onError == nil {
		onError = func(string, error) {}
	}
	return &DeletionCoordinator{
		window:    window,
		scheduler: scheduler,
		pending:   make(map[string]*pendingDeletion),
		onError:   onError,
	}
}

// StartDelete moves the entity to PendingDelete and arms its countdown. An
// existing timer for the same id is replaced, never run concurrently.
// Returns the commit deadline.
func (c *DeletionCoordinator) StartDelete(id string, commit CommitFunc) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.pending[id]; ok {
		existing.cancel()
		existing.state = DeletionCancelled
	}

	p := &pendingDeletion{
		id:       id,
		state:    DeletionPending,
		commit:   commit,
		deadline: time.Now().Add(c.window),
	}
	// The closure captures its own attempt, not the id: a replaced timer
	// whose Stop lost the race must never act on the replacement's entry.
	p.cancel = c.scheduler.Schedule(c.window, func() { c.expire(p) })
	c.pending[id] = p
	return p.deadline
}

// Undo cancels a pending deletion. Valid only from PendingDelete; the entity
// returns to Active and no network call is made.
func (c *DeletionCoordinator) Undo(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.pending[id]
	if !ok || p.state != DeletionPending {
		return apierror.NewValidationError(apierror.ErrInvalidInput, fmt.Sprintf("no pending deletion for %s", id))
	}
	p.cancel()
	p.state = DeletionCancelled
	delete(c.pending, id)
	return nil
}

// ForceCommitNow cancels the countdown and performs the deferred soft delete
// immediately. Valid only from PendingDelete.
func (c *DeletionCoordinator) ForceCommitNow(ctx context.Context, id string) error {
	c.mu.Lock()
	p, ok := c.pending[id]
	if !ok || p.state != DeletionPending {
		c.mu.Unlock()
		return apierror.NewValidationError(apierror.ErrInvalidInput, fmt.Sprintf("no pending deletion for %s", id))
	}
	p.cancel()
	c.mu.Unlock()

	return c.runCommit(ctx, p)
}

func (c *DeletionCoordinator) expire(p *pendingDeletion) {
	c.mu.Lock()
	current := c.pending[p.id] == p
	c.mu.Unlock()
	if !current {
		return
	}
	if err := c.runCommit(context.Background(), p); err != nil {
		c.onError(p.id, err)
	}
}

// runCommit is the single path to Committed, shared by natural expiry and
// ForceCommitNow. The state check makes the commit happen at most once per
// attempt even when expiry and a forced commit race.
func (c *DeletionCoordinator) runCommit(ctx context.Context, p *pendingDeletion) error {
	c.mu.Lock()
	if p.state != DeletionPending {
		c.mu.Unlock()
		return nil
	}
	p.state = DeletionCommitted
	c.mu.Unlock()

	err := p.commit(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		p.state = DeletionActive
	}
	if c.pending[p.id] == p {
		delete(c.pending, p.id)
	}
	return err
}

// State reports the deletion lifecycle position for an entity id. Terminal
// attempts are dropped from tracking, so anything not pending reads Active.
func (c *DeletionCoordinator) State(id string) DeletionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pending[id]; ok {
		return p.state
	}
	return DeletionActive
}

// IsPending reports whether an undoable deletion is in flight for the id.
// Read paths use it to hide the entity from active listings.
func (c *DeletionCoordinator) IsPending(id string) bool {
	return c.State(id) == DeletionPending
}

// Remaining reports the time left before the pending deletion commits, for
// display. Zero when nothing is pending.
func (c *DeletionCoordinator) Remaining(id string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[id]
	if !ok || p.state != DeletionPending {
		return 0
	}
	remaining := time.Until(p.deadline)
	if remaining < 0 {
		return 0
	}
	return remaining
}
