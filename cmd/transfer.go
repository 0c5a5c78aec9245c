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

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func transferCommands(b *saldoInstance) *cobra.Command {
	var from, to, amount, description string

	transferCmd := &cobra.Command{
		Use:   "transfer",
		Short: "move funds between two accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %v", amount, err)
			}

			if err := b.saldo.Preload(context.Background()); err != nil {
				return err
			}

			created, err := b.saldo.Transfer(context.Background(), from, to, value, description)
			if err != nil {
				return err
			}

			debit, credit := created.LedgerEntries()
			fmt.Println("transfer", created.TransferID)
			fmt.Printf("%s\t%s\n", debit.AccountID, debit.Amount.StringFixed(2))
			fmt.Printf("%s\t%s\n", credit.AccountID, credit.Amount.StringFixed(2))
			return nil
		},
	}
	transferCmd.Flags().StringVar(&from, "from", "", "source account id")
	transferCmd.Flags().StringVar(&to, "to", "", "destination account id")
	transferCmd.Flags().StringVar(&amount, "amount", "", "amount to move")
	transferCmd.Flags().StringVar(&description, "description", "", "optional description, at most 200 characters")
	return transferCmd
}
