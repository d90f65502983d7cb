// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package easyrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/raywall/dynamodel/dyndb"
	"github.com/raywall/dynamodel/pkg/expr"
	"github.com/raywall/dynamodel/pkg/marshal"
)

var (
	ErrNotFound      = errors.New("easyrepo: item not found")
	ErrInvalidInput  = errors.New("easyrepo: invalid input")
	ErrAlreadyExists = errors.New("easyrepo: item already exists")
)

// EasyRepository faz a ponte com o Store do dyndb.
// Seus métodos são internos ao pacote, incentivando o uso via EasyService.
type EasyRepository[T any] struct {
	config dyndb.TableConfig
	store  dyndb.Store[T]
}

// NewRepository associa um Store à configuração da sua tabela.
func NewRepository[T any](store dyndb.Store[T], cfg dyndb.TableConfig) *EasyRepository[T] {
	return &EasyRepository[T]{config: cfg, store: store}
}

// list executa um Scan paginado; limit <= 0 não limita.
func (r *EasyRepository[T]) list(ctx context.Context, limit int32, token string) ([]T, string, error) {
	qb := r.store.Scan().LastKey(token)
	if limit > 0 {
		qb.Limit(limit)
	}
	items, next, err := qb.Exec(ctx)
	if errors.Is(err, dyndb.ErrInvalidCursor) {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return items, next, err
}

// create grava o item somente se a chave ainda não existir.
func (r *EasyRepository[T]) create(ctx context.Context, item *T) error {
	err := r.store.Put(ctx, *item, dyndb.IfNotExists())
	if errors.Is(err, dyndb.ErrConditionFailed) {
		return ErrAlreadyExists
	}
	return translate(err)
}

func (r *EasyRepository[T]) get(ctx context.Context, pk, sk any) (*T, error) {
	item, err := r.store.Get(ctx, pk, sk)
	if err != nil {
		return nil, translate(err)
	}
	return item, nil
}

// replace sobrescreve um item que precisa continuar existindo.
func (r *EasyRepository[T]) replace(ctx context.Context, item *T) error {
	err := r.store.Put(ctx, *item, dyndb.WithCondition(expr.Name(r.config.HashKey).Exists()))
	if errors.Is(err, dyndb.ErrConditionFailed) {
		return ErrNotFound
	}
	return translate(err)
}

func (r *EasyRepository[T]) delete(ctx context.Context, pk, sk any) error {
	err := r.store.Delete(ctx, pk, sk, dyndb.WithCondition(expr.Name(r.config.HashKey).Exists()))
	if errors.Is(err, dyndb.ErrConditionFailed) {
		return ErrNotFound
	}
	return translate(err)
}

// keyOf extrai os valores de chave primária já codificados do item.
func (r *EasyRepository[T]) keyOf(item *T) (pk, sk any, err error) {
	encoded, err := marshal.EncodeItem(*item)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	av, ok := encoded[r.config.HashKey]
	if !ok {
		return nil, nil, fmt.Errorf("%w: missing %s", ErrInvalidInput, r.config.HashKey)
	}
	if pk, err = marshal.DecodeScalar(av); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if r.config.SortKey == "" {
		return pk, nil, nil
	}
	if av, ok = encoded[r.config.SortKey]; !ok {
		return nil, nil, fmt.Errorf("%w: missing %s", ErrInvalidInput, r.config.SortKey)
	}
	if sk, err = marshal.DecodeScalar(av); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return pk, sk, nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, dyndb.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, dyndb.ErrInvalidKey):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	default:
		return err
	}
}
