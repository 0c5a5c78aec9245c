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

package ledgerapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/saldo-finance/saldo/config"
	"github.com/saldo-finance/saldo/internal/apierror"
	"github.com/saldo-finance/saldo/internal/request"
)

// tokenHeader carries the session token on every state-changing request.
const tokenHeader = "X-Csrf-Token"

// HTTPClient implements Client against the remote ledger API over JSON/HTTP.
// Every call carries a bounded timeout via the shared http.Client; a timeout
// is reported as a network failure, never silently retried.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	tokens  *tokenSource
}

// NewClient builds an HTTPClient from the loaded configuration.
func NewClient() (*HTTPClient, error) {
	cnf, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cnf.RequestTimeout()}
	return &HTTPClient{
		baseURL: strings.TrimRight(cnf.Ledger.Url, "/"),
		client:  httpClient,
		tokens:  newTokenSource(cnf.Ledger.TokenUrl, httpClient),
	}, nil
}

// errorResponse is the structured reason the server attaches to a rejection.
// It is passed through unchanged.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e errorResponse) reason() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// do performs one request against the ledger API. State-changing requests
// carry the session token; a rejection citing token invalidity triggers
// exactly one re-fetch-and-retry of the original request.
func (c *HTTPClient) do(ctx context.Context, method, path string, payload, out interface{}) error {
	retried := false
	for {
		resp, body, err := c.send(ctx, method, path, payload)
		if err != nil {
			return err
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if out == nil || len(body) == 0 {
				return nil
			}
			if err := json.Unmarshal(body, out); err != nil {
				return apierror.NewAPIError(apierror.ErrInternalServer, "failed to decode ledger response", err)
			}
			return nil
		}

		var rejection errorResponse
		_ = json.Unmarshal(body, &rejection)

		if isTokenRejection(resp.StatusCode, rejection.reason()) && !retried {
			// Single retry with a fresh token; never an unbounded loop.
			logrus.WithField("path", path).Warn("session token rejected, refreshing once")
			if _, err := c.tokens.refresh(ctx); err != nil {
				return err
			}
			retried = true
			continue
		}

		return remoteError(resp.StatusCode, rejection.reason())
	}
}

// send builds, authorizes and executes a single HTTP exchange.
func (c *HTTPClient) send(ctx context.Context, method, path string, payload interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		buf, err := request.ToJsonReq(payload)
		if err != nil {
			return nil, nil, apierror.NewAPIError(apierror.ErrInternalServer, "failed to encode request payload", err)
		}
		bodyReader = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, nil, apierror.NewAPIError(apierror.ErrInternalServer, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if method != http.MethodGet {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, nil, err
		}
		req.Header.Set(tokenHeader, token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, networkError(errors.Wrapf(err, "%s %s", method, path))
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logrus.Error(err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, networkError(errors.Wrapf(err, "%s %s: reading response", method, path))
	}
	return resp, body, nil
}

// isTokenRejection reports whether a rejection cites session token
// invalidity rather than a domain rule.
func isTokenRejection(status int, reason string) bool {
	if status == http.StatusUnauthorized {
		return true
	}
	return status == http.StatusForbidden && strings.Contains(strings.ToLower(reason), "token")
}

// networkError classifies a transport-level failure (timeout, connectivity
// loss). Callers treat it like a remote rejection for reconciliation: local
// state reverts to its pre-attempt condition.
func networkError(err error) error {
	return apierror.NewAPIError(apierror.ErrNetworkFailure, "ledger request failed, please retry", err.Error())
}

// remoteError maps a declined request to the typed taxonomy, passing the
// server's structured reason through unchanged.
func remoteError(status int, reason string) error {
	if reason == "" {
		reason = http.StatusText(status)
	}
	if status == http.StatusNotFound {
		return apierror.NewAPIError(apierror.ErrNotFound, reason, nil)
	}
	return apierror.NewAPIError(apierror.ErrRemoteRejection, reason, status)
}
