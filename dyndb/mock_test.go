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
package dyndb_test

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/stretchr/testify/mock"

	"github.com/raywall/dynamodel/dyndb"
)

var _ dyndb.DynamoDBClient = (*MockDynamoClient)(nil)

// MockDynamoClient registra as chamadas ao SDK; cada teste declara com On
// apenas a operação que exercita.
type MockDynamoClient struct {
	mock.Mock
}

// reply devolve a saída configurada com Return, aceitando nil como ausência.
func reply[O any](ctx context.Context, m *mock.Mock, op string, in any) (*O, error) {
	args := m.MethodCalled(op, ctx, in)
	out, _ := args.Get(0).(*O)
	return out, args.Error(1)
}

type sdkOpt = func(*dynamodb.Options)

func (m *MockDynamoClient) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...sdkOpt) (*dynamodb.GetItemOutput, error) {
	return reply[dynamodb.GetItemOutput](ctx, &m.Mock, "GetItem", in)
}

func (m *MockDynamoClient) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...sdkOpt) (*dynamodb.PutItemOutput, error) {
	return reply[dynamodb.PutItemOutput](ctx, &m.Mock, "PutItem", in)
}

func (m *MockDynamoClient) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...sdkOpt) (*dynamodb.DeleteItemOutput, error) {
	return reply[dynamodb.DeleteItemOutput](ctx, &m.Mock, "DeleteItem", in)
}

func (m *MockDynamoClient) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, _ ...sdkOpt) (*dynamodb.UpdateItemOutput, error) {
	return reply[dynamodb.UpdateItemOutput](ctx, &m.Mock, "UpdateItem", in)
}

func (m *MockDynamoClient) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...sdkOpt) (*dynamodb.QueryOutput, error) {
	return reply[dynamodb.QueryOutput](ctx, &m.Mock, "Query", in)
}

func (m *MockDynamoClient) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...sdkOpt) (*dynamodb.ScanOutput, error) {
	return reply[dynamodb.ScanOutput](ctx, &m.Mock, "Scan", in)
}
