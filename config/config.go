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

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_REQUEST_TIMEOUT_SEC = 15
	DEFAULT_UNDO_WINDOW_SEC     = 5
)

var ConfigStore atomic.Value

// LedgerConfig holds connection settings for the remote ledger API.
type LedgerConfig struct {
	Url        string `json:"url" envconfig:"SALDO_LEDGER_URL"`
	TokenUrl   string `json:"token_url" envconfig:"SALDO_LEDGER_TOKEN_URL"`
	TimeoutSec int    `json:"timeout_sec" envconfig:"SALDO_LEDGER_TIMEOUT_SEC"`
}

type RedisConfig struct {
	Dns string `json:"dns" envconfig:"SALDO_REDIS_DNS"`
}

// DeletionConfig controls the reversible-delete undo window.
type DeletionConfig struct {
	UndoWindowSec int `json:"undo_window_sec" envconfig:"SALDO_UNDO_WINDOW_SEC"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type Notification struct {
	Slack SlackWebhook `json:"slack"`
}

type Configuration struct {
	ProjectName  string         `json:"project_name" envconfig:"SALDO_PROJECT_NAME"`
	Ledger       LedgerConfig   `json:"ledger"`
	Redis        RedisConfig    `json:"redis"`
	Deletion     DeletionConfig `json:"deletion"`
	Notification Notification   `json:"notification"`
}

// RequestTimeout returns the bounded timeout applied to every remote call.
func (cnf *Configuration) RequestTimeout() time.Duration {
	return time.Duration(cnf.Ledger.TimeoutSec) * time.Second
}

// UndoWindow returns the duration a pending delete stays cancellable.
func (cnf *Configuration) UndoWindow() time.Duration {
	return time.Duration(cnf.Deletion.UndoWindowSec) * time.Second
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}

	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("saldo", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called saldo.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Saldo"
	}

	if cnf.Ledger.Url == "" {
		log.Println("Error: Ledger URL is empty. It's a required field.")
		return errors.New("ledger URL is required")
	}

	if cnf.Ledger.TokenUrl == "" {
		cnf.Ledger.TokenUrl = strings.TrimRight(cnf.Ledger.Url, "/") + "/auth/token"
	}

	if cnf.Redis.Dns == "" {
		log.Println("Error: Redis DNS is empty. It's a required field.")
		return errors.New("redis DNS is required")
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Ledger.Url = strings.TrimSpace(cnf.Ledger.Url)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)

	if cnf.Ledger.TimeoutSec <= 0 {
		cnf.Ledger.TimeoutSec = DEFAULT_REQUEST_TIMEOUT_SEC
		log.Printf("Warning: Ledger timeout not specified. Setting default timeout: %ds", DEFAULT_REQUEST_TIMEOUT_SEC)
	}

	if cnf.Deletion.UndoWindowSec <= 0 {
		cnf.Deletion.UndoWindowSec = DEFAULT_UNDO_WINDOW_SEC
		log.Printf("Warning: Undo window not specified. Setting default window: %ds", DEFAULT_UNDO_WINDOW_SEC)
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	if mockConfig.Ledger.TimeoutSec <= 0 {
		mockConfig.Ledger.TimeoutSec = DEFAULT_REQUEST_TIMEOUT_SEC
	}
	if mockConfig.Deletion.UndoWindowSec <= 0 {
		mockConfig.Deletion.UndoWindowSec = DEFAULT_UNDO_WINDOW_SEC
	}
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
