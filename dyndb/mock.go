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
package dyndb

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// MockTransport é um Transport em memória para testes.
//
// Cada operação chama o campo de função correspondente (`GetItemFn`,
// `QueryFn`, ...) quando definido. Sem função, GetItem retorna "não
// encontrado", escritas têm sucesso e Query/Scan retornam uma página vazia.
// Todas as requisições recebidas ficam registradas em ordem.
type MockTransport struct {
	GetItemFn    func(ctx context.Context, req GetRequest) (Item, error)
	PutItemFn    func(ctx context.Context, req PutRequest) error
	DeleteItemFn func(ctx context.Context, req DeleteRequest) error
	UpdateItemFn func(ctx context.Context, req UpdateRequest) (Item, error)
	QueryFn      func(ctx context.Context, req Request) (PageOutput, error)
	ScanFn       func(ctx context.Context, req Request) (PageOutput, error)

	mu    sync.Mutex
	calls []any
}

var _ Transport = (*MockTransport)(nil)

func (m *MockTransport) record(req any) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()
}

// Calls retorna as requisições recebidas, na ordem.
func (m *MockTransport) Calls() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]any(nil), m.calls...)
}

func (m *MockTransport) GetItem(ctx context.Context, req GetRequest) (Item, error) {
	m.record(req)
	if m.GetItemFn != nil {
		return m.GetItemFn(ctx, req)
	}
	return nil, nil
}

func (m *MockTransport) PutItem(ctx context.Context, req PutRequest) error {
	m.record(req)
	if m.PutItemFn != nil {
		return m.PutItemFn(ctx, req)
	}
	return nil
}

func (m *MockTransport) DeleteItem(ctx context.Context, req DeleteRequest) error {
	m.record(req)
	if m.DeleteItemFn != nil {
		return m.DeleteItemFn(ctx, req)
	}
	return nil
}

func (m *MockTransport) UpdateItem(ctx context.Context, req UpdateRequest) (Item, error) {
	m.record(req)
	if m.UpdateItemFn != nil {
		return m.UpdateItemFn(ctx, req)
	}
	return nil, nil
}

func (m *MockTransport) Query(ctx context.Context, req Request) (PageOutput, error) {
	m.record(req)
	if m.QueryFn != nil {
		return m.QueryFn(ctx, req)
	}
	return PageOutput{}, nil
}

func (m *MockTransport) Scan(ctx context.Context, req Request) (PageOutput, error) {
	m.record(req)
	if m.ScanFn != nil {
		return m.ScanFn(ctx, req)
	}
	return PageOutput{}, nil
}

const mockPageAttribute = "__mock_page"

var errMockNotConfigured = fmt.Errorf("%w: mock store has no function for this operation", ErrInvalidConfig)

// Pages devolve uma função para QueryFn/ScanFn que entrega as páginas em
// sequência, ligando cada uma à seguinte por uma LastKey sintética.
func Pages(pages ...[]Item) func(ctx context.Context, req Request) (PageOutput, error) {
	return func(_ context.Context, req Request) (PageOutput, error) {
		i := 0
		if req.StartKey != nil {
			n, ok := req.StartKey[mockPageAttribute].(*types.AttributeValueMemberN)
			if !ok {
				return PageOutput{}, fmt.Errorf("%w: unexpected start key", ErrInvalidCursor)
			}
			var err error
			if i, err = strconv.Atoi(n.Value); err != nil {
				return PageOutput{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
			}
		}
		if i >= len(pages) {
			return PageOutput{}, nil
		}
		out := PageOutput{Items: pages[i]}
		if i+1 < len(pages) {
			out.LastKey = Item{mockPageAttribute: &types.AttributeValueMemberN{Value: strconv.Itoa(i + 1)}}
		}
		return out, nil
	}
}

// MockStore é um mock da interface Store[T] com campos de função.
type MockStore[T any] struct {
	GetFn    func(ctx context.Context, hashKey, sortKey any) (*T, error)
	PutFn    func(ctx context.Context, item T, opts ...WriteOption) error
	DeleteFn func(ctx context.Context, hashKey, sortKey any, opts ...WriteOption) error
	QueryFn  func() *QueryBuilder[T]
	ScanFn   func() *QueryBuilder[T]
	UpdateFn func(hashKey, sortKey any) *UpdateBuilder[T]
}

var _ Store[struct{}] = (*MockStore[struct{}])(nil)

func (m *MockStore[T]) Get(ctx context.Context, hashKey, sortKey any) (*T, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, hashKey, sortKey)
	}
	return nil, ErrNotFound
}

func (m *MockStore[T]) Put(ctx context.Context, item T, opts ...WriteOption) error {
	if m.PutFn != nil {
		return m.PutFn(ctx, item, opts...)
	}
	return nil
}

func (m *MockStore[T]) Delete(ctx context.Context, hashKey, sortKey any, opts ...WriteOption) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, hashKey, sortKey, opts...)
	}
	return nil
}

// Query retorna o builder de QueryFn. Sem QueryFn o builder falha no Plan.
func (m *MockStore[T]) Query() *QueryBuilder[T] {
	if m.QueryFn != nil {
		return m.QueryFn()
	}
	return &QueryBuilder[T]{err: errMockNotConfigured}
}

func (m *MockStore[T]) Scan() *QueryBuilder[T] {
	if m.ScanFn != nil {
		return m.ScanFn()
	}
	return &QueryBuilder[T]{scan: true, err: errMockNotConfigured}
}

func (m *MockStore[T]) Update(hashKey, sortKey any) *UpdateBuilder[T] {
	if m.UpdateFn != nil {
		return m.UpdateFn(hashKey, sortKey)
	}
	return &UpdateBuilder[T]{err: errMockNotConfigured}
}
