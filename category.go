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

	"github.com/saldo-finance/saldo/model"
)

// ListCategories fetches the category collection and republishes it into the
// reference cache on the way through.
func (s *Saldo) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.client.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	s.refs.PublishCategories(categories)
	return categories, nil
}
