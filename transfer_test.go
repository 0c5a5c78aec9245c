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

// twoAccounts seeds the reference cache with a source at balance 100 and a
// destination at balance 50.
func twoAccounts(service *Saldo) (model.Account, model.Account) {
	source := model.Account{
		AccountID: model.GenerateUUIDWithSuffix("account"),
		Name:      "Checking",
		Type:      model.AccountTypeBank,
		Balance:   decimal.NewFromInt(100),
	}
	destination := model.Account{
		AccountID: model.GenerateUUIDWithSuffix("account"),
		Name:      "Savings",
		Type:      model.AccountTypeBank,
		Balance:   decimal.NewFromInt(50),
	}
	service.refs.PublishAccounts([]model.Account{source, destination})
	return source, destination
}

func TestTransferMovesBothBalances(t *testing.T) {
	ledger := new(mocks.MockLedger)
	service := newTestSaldo(t, ledger, time.Second)
	source, destination := twoAccounts(service)

	ledger.On("CreateTransfer", mock.Anything, mock.MatchedBy(func(transfer model.Transfer) bool {
		return transfer.SourceID == source.AccountID &&
			transfer.DestinationID == destination.AccountID &&
			transfer.Amount.Equal(decimal.NewFromInt(30))
	})).Return(&model.Transfer{
		TransferID:    model.GenerateUUIDWithSuffix("trf"),
		SourceID:      source.AccountID,
		DestinationID: destination.AccountID,
		Amount:        decimal.NewFromInt(30),
	}, nil)

	// The server reports the post-transfer balances on refresh.
	source.Balance = decimal.NewFromInt(70)
	destination.Balance = decimal.NewFromInt(80)
	ledger.On("ListAccounts", mock.Anything, true).Return([]model.Account{source, destination}, nil)
	ledger.On("ListCategories", mock.Anything).Return([]model.Category{}, nil)

	created, err := service.Transfer(context.Background(), source.AccountID, destination.AccountID, decimal.NewFromInt(30), "rent share")
	assert.NoError(t, err)
	assert.NotEmpty(t, created.TransferID)

	refreshed, _ := service.refs.Account(source.AccountID)
	assert.True(t, refreshed.Balance.Equal(decimal.NewFromInt(70)))
	refreshed, _ = service.refs.Account(destination.AccountID)
	assert.True(t, refreshed.Balance.Equal(decimal.NewFromInt(80)))
}

func TestTransferInsufficientFundsRejectedBeforeNetwork(t *testing.T) {
	ledger := new(mocks.MockLedger)
	service := newTestSaldo(t, ledger, time.Second)
	source, destination := twoAccounts(service)

	_, err := service.Transfer(context.Background(), source.AccountID, destination.AccountID, decimal.NewFromInt(1000), "")
	assert.Equal(t, apierror.ErrInsufficientFunds, apierror.CodeOf(err))

	ledger.AssertNotCalled(t, "CreateTransfer", mock.Anything, mock.Anything)
	cached, _ := service.refs.Account(source.AccountID)
	assert.True(t, cached.Balance.Equal(decimal.NewFromInt(100)))
	cached, _ = service.refs.Account(destination.AccountID)
	assert.True(t, cached.Balance.Equal(decimal.NewFromInt(50)))
}

func TestTransferSameAccountRejected(t *testing.T) {
	ledger := new(mocks.MockLedger)
	service := newTestSaldo(t, ledger, time.Second)
	source, _ := twoAccounts(service)

	_, err := service.Transfer(context.Background(), source.AccountID, source.AccountID, decimal.NewFromInt(10), "")
	assert.Equal(t, apierror.ErrSameAccountTransfer, apierror.CodeOf(err))
	ledger.AssertNotCalled(t, "CreateTransfer", mock.Anything, mock.Anything)
}

func TestTransferSameAccountByLegacyIDRejected(t *testing.T) {
	ledger := new(mocks.MockLedger)
	service := newTestSaldo(t, ledger, time.Second)

	account := model.Account{
		AccountID: model.GenerateUUIDWithSuffix("account"),
		LegacyID:  "64e5a7c3b2f1d90a8c7b6e5d",
		Name:      "Checking",
		Balance:   decimal.NewFromInt(100),
	}
	service.refs.PublishAccounts([]model.Account{account})

	// Same entity addressed by its two identifier forms.
	_, err := service.Transfer(context.Background(), account.AccountID, account.LegacyID, decimal.NewFromInt(10), "")
	assert.Equal(t, apierror.ErrSameAccountTransfer, apierror.CodeOf(err))
}

func TestTransferNonPositiveAmountRejected(t *testing.T) {
	ledger := new(mocks.MockLedger)
	service := newTestSaldo(t, ledger, time.Second)
	source, destination := twoAccounts(service)

	_, err := service.Transfer(context.Background(), source.AccountID, destination.AccountID, decimal.Zero, "")
	assert.Equal(t, apierror.ErrNonPositiveAmount, apierror.CodeOf(err))

	_, err = service.Transfer(context.Background(), source.AccountID, destination.AccountID, decimal.NewFromInt(-5), "")
	assert.Equal(t, apierror.ErrNonPositiveAmount, apierror.CodeOf(err))
	ledger.AssertNotCalled(t, "CreateTransfer", mock.Anything, mock.Anything)
}

func TestTransferDescriptionTooLongRejected(t *testing.T) {
	ledger := new(mocks.MockLedger)
	service := newTestSaldo(t, ledger, time.Second)
	source, destination := twoAccounts(service)

	_, err := service.Transfer(context.Background(), source.AccountID, destination.AccountID,
		decimal.NewFromInt(10), strings.Repeat("x", 201))
	assert.Equal(t, apierror.ErrDescriptionTooLong, apierror.CodeOf(err))
	ledger.AssertNotCalled(t, "CreateTransfer", mock.Anything, mock.Anything)
}

func TestTransferToSoftDeletedAccountRejected(t *testing.T) {
	ledger := new(mocks.MockLedger)
	service := newTestSaldo(t, ledger, time.Second)
	source, destination := twoAccounts(service)

	service.deletions.StartDelete(destination.AccountID, func(ctx context.Context) error { return nil })

	_, err := service.Transfer(context.Background(), source.AccountID, destination.AccountID, decimal.NewFromInt(10), "")
	assert.True(t, apierror.IsValidation(err))
	ledger.AssertNotCalled(t, "CreateTransfer", mock.Anything, mock.Anything)
}

func TestTransferRemoteRejectionLeavesBalancesUntouched(t *testing.T) {
	ledger := new(mocks.MockLedger)
	service := newTestSaldo(t, ledger, time.Second)
	source, destination := twoAccounts(service)

	rejection := apierror.NewValidationError(apierror.ErrRemoteRejection, "account is frozen")
	ledger.On("CreateTransfer", mock.Anything, mock.Anything).Return(nil, rejection)

	_, err := service.Transfer(context.Background(), source.AccountID, destination.AccountID, decimal.NewFromInt(30), "")
	assert.Equal(t, apierror.ErrRemoteRejection, apierror.CodeOf(err))

	cached, _ := service.refs.Account(source.AccountID)
	assert.True(t, cached.Balance.Equal(decimal.NewFromInt(100)))
	ledger.AssertNotCalled(t, "ListAccounts", mock.Anything, mock.Anything)
}
