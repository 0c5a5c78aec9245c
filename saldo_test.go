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
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/saldo-finance/saldo/config"
	"github.com/saldo-finance/saldo/internal/cache"
	"github.com/saldo-finance/saldo/ledgerapi"
)

// newTestSaldo builds a service instance against a miniredis replica and the
// given ledger client, with a short undo window suitable for timer tests.
func newTestSaldo(tb testing.TB, ledger ledgerapi.Client, undoWindow time.Duration) *Saldo {
	tb.Helper()

	server := miniredis.RunT(tb)
	config.MockConfig(&config.Configuration{
		Ledger: config.LedgerConfig{Url: "https://ledger.test"},
		Redis:  config.RedisConfig{Dns: server.Addr()},
	})

	replica, err := cache.NewCache()
	require.NoError(tb, err)

	return newSaldo(ledger, replica, undoWindow, nil)
}
