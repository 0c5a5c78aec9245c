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
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/saldo-finance/saldo"
	"github.com/saldo-finance/saldo/config"
	"github.com/saldo-finance/saldo/internal/apierror"
	"github.com/saldo-finance/saldo/internal/notification"
	"github.com/saldo-finance/saldo/ledgerapi"
)

// CLI wraps the root Cobra command.
type CLI struct {
	cmd *cobra.Command
}

// saldoInstance holds the runtime service and its configuration for use by
// the subcommands.
type saldoInstance struct {
	saldo *saldo.Saldo
	cnf   *config.Configuration
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and initializes the service before any
// subcommand executes.
func preRun(app *saldoInstance, configFile *string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := config.InitConfig(*configFile); err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		service, err := setupSaldo()
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.saldo = service
		app.cnf = cnf
		return nil
	}
}

func setupSaldo() (*saldo.Saldo, error) {
	client, err := ledgerapi.NewClient()
	if err != nil {
		return nil, fmt.Errorf("error creating ledger client: %v", err)
	}

	service, err := saldo.NewSaldo(client)
	if err != nil {
		return nil, fmt.Errorf("error creating saldo: %v", err)
	}
	return service, nil
}

// NewCLI builds the command-line interface with its subcommands.
func NewCLI() *CLI {
	var configFile string
	b := &saldoInstance{}

	var rootCmd = &cobra.Command{
		Use:   "saldo",
		Short: "Personal finance ledger",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./saldo.json", "Configuration file for saldo")
	rootCmd.PersistentPreRunE = preRun(b, &configFile)

	rootCmd.AddCommand(accountCommands(b))
	rootCmd.AddCommand(transactionCommands(b))
	rootCmd.AddCommand(transferCommands(b))

	return &CLI{cmd: rootCmd}
}

func (w CLI) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		if apierror.IsNetworkFailure(err) {
			fmt.Fprintln(os.Stderr, "network failure, please retry:", err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()
	cli := NewCLI()
	cli.executeCLI()
}
