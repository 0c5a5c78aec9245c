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
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/saldo-finance/saldo/internal/apierror"
)

// tokenSource fetches and caches the session token attached to state-changing
// requests. At most one fetch is in flight at a time: concurrent callers with
// a cold cache observe the result of the single in-flight fetch instead of
// issuing duplicate requests.
type tokenSource struct {
	url    string
	client *http.Client
	group  singleflight.Group

	mu    sync.RWMutex
	token string
}

func newTokenSource(url string, client *http.Client) *tokenSource {
	return &tokenSource{url: url, client: client}
}

// Token returns the cached session token, fetching one if none is held.
func (s *tokenSource) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	if token != "" {
		return token, nil
	}
	return s.refresh(ctx)
}

// refresh discards the cached token and fetches a fresh one through the
// single-flight group.
func (s *tokenSource) refresh(ctx context.Context) (string, error) {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()

	result, err, _ := s.group.Do("token", func() (interface{}, error) {
		return s.fetch(ctx)
	})
	if err != nil {
		return "", err
	}

	token := result.(string)
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return token, nil
}

func (s *tokenSource) fetch(ctx context.Context) (interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return "", apierror.NewAPIError(apierror.ErrInternalServer, "failed to build token request", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", networkError(errors.Wrap(err, "token fetch"))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", networkError(errors.Wrap(err, "token fetch: reading response"))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var rejection errorResponse
		_ = json.Unmarshal(body, &rejection)
		return "", remoteError(resp.StatusCode, rejection.reason())
	}

	var payload struct {
		CsrfToken string `json:"csrf_token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", apierror.NewAPIError(apierror.ErrInternalServer, "failed to decode token response", err)
	}
	if payload.CsrfToken == "" {
		return "", apierror.NewAPIError(apierror.ErrRemoteRejection, "token endpoint returned an empty token", nil)
	}
	return payload.CsrfToken, nil
}
