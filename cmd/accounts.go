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

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/saldo-finance/saldo"
	"github.com/saldo-finance/saldo/model"
)

func accountCommands(b *saldoInstance) *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "accounts",
		Short: "manage accounts",
	}

	accountCmd.AddCommand(listAccountsCommand(b))
	accountCmd.AddCommand(createAccountCommand(b))
	accountCmd.AddCommand(deleteAccountCommand(b))
	accountCmd.AddCommand(restoreAccountCommand(b))
	return accountCmd
}

func listAccountsCommand(b *saldoInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list active accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			accounts, err := b.saldo.ListAccounts(context.Background())
			if err != nil {
				return err
			}
			for _, account := range accounts {
				fmt.Printf("%s\t%s\t%s\t%s\n", account.CanonicalID(), account.Name, account.Type, account.Balance.StringFixed(2))
			}
			return nil
		},
	}
}

func createAccountCommand(b *saldoInstance) *cobra.Command {
	var name, accountType, institution, balance string

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(balance)
			if err != nil {
				return fmt.Errorf("invalid balance %q: %v", balance, err)
			}

			created, err := b.saldo.CreateAccount(context.Background(), model.Account{
				Name:        name,
				Type:        model.AccountType(accountType),
				Balance:     amount,
				Institution: institution,
			})
			if err != nil {
				return err
			}
			fmt.Println("created account", created.CanonicalID())
			return nil
		},
	}
	createCmd.Flags().StringVar(&name, "name", "", "display name for the account")
	createCmd.Flags().StringVar(&accountType, "type", "bank", "account type (cash, bank, e-wallet, emergency-fund)")
	createCmd.Flags().StringVar(&institution, "institution", "", "institution holding the account")
	createCmd.Flags().StringVar(&balance, "balance", "0", "opening balance")
	return createCmd
}

func deleteAccountCommand(b *saldoInstance) *cobra.Command {
	var now bool

	deleteCmd := &cobra.Command{
		Use:   "delete <account-id>",
		Short: "delete an account, undoable until the window elapses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if _, err := b.saldo.DeleteAccount(context.Background(), id); err != nil {
				return err
			}

			if now {
				if err := b.saldo.CommitDeleteNow(context.Background(), id); err != nil {
					return err
				}
				fmt.Println("deleted", id)
				return nil
			}

			waitForDeletion(b, id)
			return nil
		},
	}
	deleteCmd.Flags().BoolVar(&now, "now", false, "skip the undo window and delete immediately")
	return deleteCmd
}

func restoreAccountCommand(b *saldoInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <account-id>",
		Short: "restore a soft-deleted account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := b.saldo.RestoreAccount(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Println("restored", args[0])
			return nil
		},
	}
}

// waitForDeletion blocks until the pending deletion reaches a terminal
// state, printing a per-second countdown. The printed number is cosmetic;
// completion is observed from the coordinator, never inferred from the clock.
func waitForDeletion(b *saldoInstance, id string) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for remaining := b.saldo.DeletionRemaining(id); remaining > 0; remaining = b.saldo.DeletionRemaining(id) {
		fmt.Printf("deleting %s in %ds...\n", id, int(remaining.Seconds())+1)
		<-ticker.C
	}
	for b.saldo.DeletionState(id) == saldo.DeletionPending {
		time.Sleep(50 * time.Millisecond)
	}
	fmt.Println("deleted", id)
}
