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

	"github.com/saldo-finance/saldo/model"
)

func transactionCommands(b *saldoInstance) *cobra.Command {
	transactionCmd := &cobra.Command{
		Use:   "transactions",
		Short: "manage transactions",
	}

	transactionCmd.AddCommand(listTransactionsCommand(b))
	transactionCmd.AddCommand(createTransactionCommand(b))
	transactionCmd.AddCommand(deleteTransactionCommand(b))
	return transactionCmd
}

func listTransactionsCommand(b *saldoInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list active transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := b.saldo.Preload(context.Background()); err != nil {
				return err
			}

			transactions, err := b.saldo.ListTransactions(context.Background())
			if err != nil {
				return err
			}
			for _, transaction := range transactions {
				accountName := transaction.AccountID
				if transaction.Account != nil {
					accountName = transaction.Account.Name
				}
				fmt.Printf("%s\t%s\t%s\t%s\n", transaction.CanonicalID(), transaction.Title,
					transaction.SignedAmount().StringFixed(2), accountName)
			}
			return nil
		},
	}
}

func createTransactionCommand(b *saldoInstance) *cobra.Command {
	var title, amount, transactionType, accountID, categoryID string

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "create a new transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %v", amount, err)
			}

			if err := b.saldo.Preload(context.Background()); err != nil {
				return err
			}

			created, err := b.saldo.CreateTransaction(context.Background(), model.Transaction{
				Title:      title,
				Amount:     value,
				Type:       model.TransactionType(transactionType),
				AccountID:  accountID,
				CategoryID: categoryID,
				Date:       time.Now(),
			})
			if err != nil {
				return err
			}
			fmt.Println("created transaction", created.CanonicalID())
			return nil
		},
	}
	createCmd.Flags().StringVar(&title, "title", "", "transaction title")
	createCmd.Flags().StringVar(&amount, "amount", "", "transaction amount")
	createCmd.Flags().StringVar(&transactionType, "type", "expense", "transaction type (income, expense)")
	createCmd.Flags().StringVar(&accountID, "account", "", "account id")
	createCmd.Flags().StringVar(&categoryID, "category", "", "category id")
	return createCmd
}

func deleteTransactionCommand(b *saldoInstance) *cobra.Command {
	var now bool

	deleteCmd := &cobra.Command{
		Use:   "delete <transaction-id>",
		Short: "delete a transaction, undoable until the window elapses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if _, err := b.saldo.DeleteTransaction(context.Background(), id); err != nil {
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
