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
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/saldo-finance/saldo/internal/apierror"
	"github.com/saldo-finance/saldo/ledgerapi/mocks"
	"github.com/saldo-finance/saldo/model"
)

func expectRefresh(ledger *mocks.MockLedger, accounts []model.Account) {
	ledger.On("ListAccounts", mock.Anything, true).Return(accounts, nil)
	ledger.On("ListCategories", mock.Anything).Return([]model.Category{}, nil)
}

func TestCreateAccountAssignsCanonicalID(t *testing.T) {
	ledger := new(mocks.MockLedger)
	service := newTestSaldo(t, ledger, time.Second)

	ledger.On("CreateAccount", mock.Anything, mock.MatchedBy(func(account model.Account) bool {
		return strings.HasPrefix(account.AccountID, "account_")
	})).Return(&model.Account{AccountID: model.GenerateUUIDWithSuffix("account"), Name: "Main"}, nil)
	expectRefresh(ledger, []model.Account{})

	created, err := service.CreateAccount(context.Background(), model.Account{
		Name:    "Main",
		Type:    model.AccountTypeBank,
		Balance: decimal.NewFromInt(100),
	})
	assert.NoError(t, err)
	assert.Equal(t, "Main", created.Name)
}

func TestCreateAccountRejectsInvalidInput(t *testing.T) {
	ledger := new(mocks.MockLedger)
	service := newTestSaldo(t, ledger, time.Second)

	_, err := service.CreateAccount(context.Background(), model.Account{Type: model.AccountTypeCash})
	assert.Equal(t, apierror.ErrInvalidInput, apierror.CodeOf(err))

	_, err = service.CreateAccount(context.Background(), model.Account{
		Name:    "Main",
		Type:    model.AccountType("crypto"),
		Balance: decimal.NewFromInt(1),
	})
	assert.Equal(t, apierror.ErrInvalidInput, apierror.CodeOf(err))
	ledger.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything)
}

func TestUpdateAccountRejectsNegativeBalance(t *testing.T) {
	ledger := new(mocks.MockLedger)
	service := newTestSaldo(t, ledger, time.Second)

	account := &model.Account{
		AccountID: model.GenerateUUIDWithSuffix("account"),
		Name:      "Main",
		Type:      model.AccountTypeBank,
		Balance:   decimal.NewFromInt(-1),
	}
	_, err := service.UpdateAccount(context.Background(), account)
	assert.Equal(t, apierror.ErrInvalidInput, apierror.CodeOf(err))
	ledger.AssertNotCalled(t, "UpdateAccount", mock.Anything, mock.Anything)
}

func TestListAccountsHidesPendingDeletions(t *testing.T) {
	ledger := new(mocks.MockLedger)
	service := newTestSaldo(t, ledger, time.Second)

	visible := model.Account{AccountID: model.GenerateUUIDWithSuffix("account"), Name: "Visible"}
	hidden := model.Account{AccountID: model.GenerateUUIDWithSuffix("account"), Name: "Hidden"}
	ledger.On("ListAccounts", mock.Anything, false).Return([]model.Account{visible, hidden}, nil)

	service.deletions.StartDelete(hidden.AccountID, func(ctx context.Context) error { return nil })

	accounts, err := service.ListAccounts(context.Background())
	assert.NoError(t, err)
	assert.Len(t, accounts, 1)
	assert.Equal(t, "Visible", accounts[0].Name)
}

func TestDeleteAccountUndoWithinWindow(t *testing.T) {
	ledger := new(mocks.MockLedger)
	service := newTestSaldo(t, ledger, 50*time.Millisecond)

	account := model.Account{AccountID: model.GenerateUUIDWithSuffix("account"), Name: "Main"}
	service.refs.PublishAccounts([]model.Account{account})

	deadline, err := service.DeleteAccount(context.Background(), account.AccountID)
	assert.NoError(t, err)
	assert.True(t, deadline.After(time.Now()))
	assert.Equal(t, DeletionPending, service.DeletionState(account.AccountID))

	time.Sleep(30 * time.Millisecond)
	assert.NoError(t, service.UndoDelete(account.AccountID))

	time.Sleep(70 * time.Millisecond)
	ledger.AssertNotCalled(t, "SoftDeleteAccount", mock.Anything, mock.Anything)
	ledger.AssertNotCalled(t, "PermanentlyDeleteAccount", mock.Anything, mock.Anything)
	assert.Equal(t, DeletionActive, service.DeletionState(account.AccountID))
}

func TestDeleteAccountCommitsAfterWindow(t *testing.T) {
	ledger := new(mocks.MockLedger)
	service := newTestSaldo(t, ledger, 30*time.Millisecond)

	account := model.Account{AccountID: model.GenerateUUIDWithSuffix("account"), Name: "Main"}
	service.refs.PublishAccounts([]model.Account{account})

	ledger.On("SoftDeleteAccount", mock.Anything, account.AccountID).Return(nil)
	expectRefresh(ledger, []model.Account{})

	_, err := service.DeleteAccount(context.Background(), account.AccountID)
	assert.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	ledger.AssertNumberOfCalls(t, "SoftDeleteAccount", 1)

	_, ok := service.refs.Account(account.AccountID)
	assert.False(t, ok)
}

func TestForceCommitDeleteIssuesSingleCall(t *testing.T) {
	ledger := new(mocks.MockLedger)
	service := newTestSaldo(t, ledger, 50*time.Millisecond)

	account := model.Account{AccountID: model.GenerateUUIDWithSuffix("account"), Name: "Main"}
	service.refs.PublishAccounts([]model.Account{account})

	ledger.On("SoftDeleteAccount", mock.Anything, account.AccountID).Return(nil)
	expectRefresh(ledger, []model.Account{})

	_, err := service.DeleteAccount(context.Background(), account.AccountID)
	assert.NoError(t, err)
	assert.NoError(t, service.CommitDeleteNow(context.Background(), account.AccountID))

	time.Sleep(100 * time.Millisecond)
	ledger.AssertNumberOfCalls(t, "SoftDeleteAccount", 1)
}

func TestDeleteAlreadyDeletedAccountRejected(t *testing.T) {
	ledger := new(mocks.MockLedger)
	service := newTestSaldo(t, ledger, time.Second)

	account := model.Account{AccountID: model.GenerateUUIDWithSuffix("account"), Name: "Gone", IsDeleted: true}
	service.refs.PublishAccounts([]model.Account{account})

	_, err := service.DeleteAccount(context.Background(), account.AccountID)
	assert.True(t, apierror.IsValidation(err))
}

func TestRestoreAccountRefreshes(t *testing.T) {
	ledger := new(mocks.MockLedger)
	service := newTestSaldo(t, ledger, time.Second)

	id := model.GenerateUUIDWithSuffix("account")
	restored := model.Account{AccountID: id, Name: "Back"}
	ledger.On("RestoreAccount", mock.Anything, id).Return(nil)
	expectRefresh(ledger, []model.Account{restored})

	assert.NoError(t, service.RestoreAccount(context.Background(), id))

	cached, ok := service.refs.Account(id)
	assert.True(t, ok)
	assert.Equal(t, "Back", cached.Name)
}

func TestPermanentDeleteCancelsPendingSoftDelete(t *testing.T) {
	ledger := new(mocks.MockLedger)
	service := newTestSaldo(t, ledger, 50*time.Millisecond)

	account := model.Account{AccountID: model.GenerateUUIDWithSuffix("account"), Name: "Main"}
	service.refs.PublishAccounts([]model.Account{account})

	ledger.On("PermanentlyDeleteAccount", mock.Anything, account.AccountID).Return(nil)
	expectRefresh(ledger, []model.Account{})

	_, err := service.DeleteAccount(context.Background(), account.AccountID)
	assert.NoError(t, err)
	assert.NoError(t, service.PermanentlyDeleteAccount(context.Background(), account.AccountID))

	time.Sleep(100 * time.Millisecond)
	ledger.AssertNotCalled(t, "SoftDeleteAccount", mock.Anything, mock.Anything)
	ledger.AssertNumberOfCalls(t, "PermanentlyDeleteAccount", 1)
}

func TestAccountsSnapshotReadsReplicaOnly(t *testing.T) {
	ledger := new(mocks.MockLedger)
	service := newTestSaldo(t, ledger, time.Second)

	account := model.Account{AccountID: model.GenerateUUIDWithSuffix("account"), Name: "Main"}
	ledger.On("ListAccounts", mock.Anything, true).Return([]model.Account{account}, nil)
	ledger.On("ListCategories", mock.Anything).Return([]model.Category{}, nil)
	assert.NoError(t, service.Preload(context.Background()))

	snapshot, err := service.AccountsSnapshot(context.Background())
	assert.NoError(t, err)
	assert.Len(t, snapshot, 1)
	// One network round-trip total: the preload. The snapshot read never
	// touched the ledger.
	ledger.AssertNumberOfCalls(t, "ListAccounts", 1)
}
