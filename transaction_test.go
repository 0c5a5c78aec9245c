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

func seedAccount(service *Saldo, balance int64) model.Account {
	account := model.Account{
		AccountID: model.GenerateUUIDWithSuffix("account"),
		Name:      "Checking",
		Type:      model.AccountTypeBank,
		Balance:   decimal.NewFromInt(balance),
	}
	service.refs.PublishAccounts([]model.Account{account})
	return account
}

func TestCreateExpenseExceedingBalanceRejected(t *testing.T) {
	ledger := new(mocks.MockLedger)
	service := newTestSaldo(t, ledger, time.Second)
	account := seedAccount(service, 150)

	_, err := service.CreateTransaction(context.Background(), model.Transaction{
		Title:     "New laptop",
		Amount:    decimal.NewFromInt(200),
		Type:      model.TransactionTypeExpense,
		AccountID: account.AccountID,
	})
	assert.Equal(t, apierror.ErrInsufficientFunds, apierror.CodeOf(err))

	ledger.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
	cached, _ := service.refs.Account(account.AccountID)
	assert.True(t, cached.Balance.Equal(decimal.NewFromInt(150)))
}

func TestCreateExpenseWithinBalanceSucceeds(t *testing.T) {
	ledger := new(mocks.MockLedger)
	service := newTestSaldo(t, ledger, time.Second)
	account := seedAccount(service, 150)

	ledger.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(transaction model.Transaction) bool {
		return strings.HasPrefix(transaction.TransactionID, "txn_") && transaction.Status == model.StatusCompleted
	})).Return(&model.Transaction{
		TransactionID: model.GenerateUUIDWithSuffix("txn"),
		Title:         "Groceries",
		Amount:        decimal.NewFromInt(40),
		Type:          model.TransactionTypeExpense,
		AccountID:     account.AccountID,
	}, nil)
	expectRefresh(ledger, []model.Account{account})

	created, err := service.CreateTransaction(context.Background(), model.Transaction{
		Title:     "Groceries",
		Amount:    decimal.NewFromInt(40),
		Type:      model.TransactionTypeExpense,
		AccountID: account.AccountID,
	})
	assert.NoError(t, err)
	assert.NotNil(t, created.Account)
	assert.Equal(t, account.AccountID, created.AccountID)
}

func TestCreateIncomeSkipsAffordabilityCheck(t *testing.T) {
	ledger := new(mocks.MockLedger)
	service := newTestSaldo(t, ledger, time.Second)
	account := seedAccount(service, 0)

	ledger.On("CreateTransaction", mock.Anything, mock.Anything).Return(&model.Transaction{
		TransactionID: model.GenerateUUIDWithSuffix("txn"),
		Title:         "Salary",
		Amount:        decimal.NewFromInt(5000),
		Type:          model.TransactionTypeIncome,
		AccountID:     account.AccountID,
	}, nil)
	expectRefresh(ledger, []model.Account{account})

	_, err := service.CreateTransaction(context.Background(), model.Transaction{
		Title:     "Salary",
		Amount:    decimal.NewFromInt(5000),
		Type:      model.TransactionTypeIncome,
		AccountID: account.AccountID,
	})
	assert.NoError(t, err)
}

func TestUpdateExpenseAddsBackPreviousEffect(t *testing.T) {
	ledger := new(mocks.MockLedger)
	service := newTestSaldo(t, ledger, time.Second)
	// Balance 10 with an existing expense of 90 already applied: raising the
	// expense to 95 is affordable, 105 is not.
	account := seedAccount(service, 10)

	existingID := model.GenerateUUIDWithSuffix("txn")
	existing := &model.Transaction{
		TransactionID: existingID,
		Title:         "Dinner",
		Amount:        decimal.NewFromInt(90),
		Type:          model.TransactionTypeExpense,
		AccountID:     account.AccountID,
	}
	ledger.On("GetTransaction", mock.Anything, existingID).Return(existing, nil)

	updated := *existing
	updated.Amount = decimal.NewFromInt(95)
	ledger.On("UpdateTransaction", mock.Anything, mock.Anything).Return(&updated, nil)
	expectRefresh(ledger, []model.Account{account})

	_, err := service.UpdateTransaction(context.Background(), &updated)
	assert.NoError(t, err)

	tooLarge := *existing
	tooLarge.Amount = decimal.NewFromInt(105)
	_, err = service.UpdateTransaction(context.Background(), &tooLarge)
	assert.Equal(t, apierror.ErrInsufficientFunds, apierror.CodeOf(err))
}

func TestListTransactionsResolvesReferencesAndHidesPending(t *testing.T) {
	ledger := new(mocks.MockLedger)
	service := newTestSaldo(t, ledger, time.Second)
	account := seedAccount(service, 100)

	visible := model.Transaction{
		TransactionID: model.GenerateUUIDWithSuffix("txn"),
		Title:         "Groceries",
		AccountID:     account.AccountID,
	}
	pending := model.Transaction{
		TransactionID: model.GenerateUUIDWithSuffix("txn"),
		Title:         "Hidden",
		AccountID:     account.AccountID,
	}
	ledger.On("ListTransactions", mock.Anything, false).Return([]model.Transaction{visible, pending}, nil)

	service.deletions.StartDelete(pending.TransactionID, func(ctx context.Context) error { return nil })

	transactions, err := service.ListTransactions(context.Background())
	assert.NoError(t, err)
	assert.Len(t, transactions, 1)
	assert.Equal(t, "Groceries", transactions[0].Title)
	assert.NotNil(t, transactions[0].Account)
}

func TestDeleteTransactionUndoWithinWindow(t *testing.T) {
	ledger := new(mocks.MockLedger)
	service := newTestSaldo(t, ledger, 50*time.Millisecond)

	id := model.GenerateUUIDWithSuffix("txn")
	_, err := service.DeleteTransaction(context.Background(), id)
	assert.NoError(t, err)

	time.Sleep(30 * time.Millisecond)
	assert.NoError(t, service.UndoDelete(id))

	time.Sleep(70 * time.Millisecond)
	ledger.AssertNotCalled(t, "SoftDeleteTransaction", mock.Anything, mock.Anything)
}

func TestDeleteTransactionCommitsAfterWindow(t *testing.T) {
	ledger := new(mocks.MockLedger)
	service := newTestSaldo(t, ledger, 30*time.Millisecond)

	id := model.GenerateUUIDWithSuffix("txn")
	ledger.On("SoftDeleteTransaction", mock.Anything, id).Return(nil)
	expectRefresh(ledger, []model.Account{})

	_, err := service.DeleteTransaction(context.Background(), id)
	assert.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	ledger.AssertNumberOfCalls(t, "SoftDeleteTransaction", 1)
}

func TestPermanentDeleteTransactionIsIdempotent(t *testing.T) {
	ledger := new(mocks.MockLedger)
	service := newTestSaldo(t, ledger, time.Second)

	id := model.GenerateUUIDWithSuffix("txn")
	// The client reclassifies not-found as success, so repeating the call
	// after the entity is gone still reports nil.
	ledger.On("PermanentlyDeleteTransaction", mock.Anything, id).Return(nil)
	expectRefresh(ledger, []model.Account{})

	assert.NoError(t, service.PermanentlyDeleteTransaction(context.Background(), id))
	assert.NoError(t, service.PermanentlyDeleteTransaction(context.Background(), id))
	ledger.AssertNumberOfCalls(t, "PermanentlyDeleteTransaction", 2)
}
