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

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Item é um item do DynamoDB no formato do fio.
type Item = map[string]types.AttributeValue

// DynamoDBClient é o subconjunto do cliente do SDK usado pelo SDKTransport.
// *dynamodb.Client satisfaz esta interface.
type DynamoDBClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Transport executa as requisições compiladas. Retry, backoff e timeouts
// são responsabilidade da implementação.
type Transport interface {
	// GetItem retorna nil (sem erro) quando o item não existe.
	GetItem(ctx context.Context, req GetRequest) (Item, error)
	PutItem(ctx context.Context, req PutRequest) error
	DeleteItem(ctx context.Context, req DeleteRequest) error
	// UpdateItem retorna os atributos pedidos em ReturnValues.
	UpdateItem(ctx context.Context, req UpdateRequest) (Item, error)
	Query(ctx context.Context, req Request) (PageOutput, error)
	Scan(ctx context.Context, req Request) (PageOutput, error)
}

// GetRequest descreve um GetItem.
type GetRequest struct {
	Table          string
	Key            Item
	ConsistentRead bool
	Projection     string
	Names          map[string]string
}

// PutRequest descreve um PutItem, opcionalmente condicional.
type PutRequest struct {
	Table     string
	Item      Item
	Condition string
	Names     map[string]string
	Values    map[string]types.AttributeValue
}

// DeleteRequest descreve um DeleteItem, opcionalmente condicional.
type DeleteRequest struct {
	Table     string
	Key       Item
	Condition string
	Names     map[string]string
	Values    map[string]types.AttributeValue
}

// UpdateRequest descreve um UpdateItem.
type UpdateRequest struct {
	Table        string
	Key          Item
	Update       string
	Condition    string
	Names        map[string]string
	Values       map[string]types.AttributeValue
	ReturnValues types.ReturnValue
}

// Request descreve uma página de Query ou Scan. As tabelas de placeholders
// já contêm a key condition, o filtro e a projeção mesclados.
type Request struct {
	Table          string
	Index          string
	Scan           bool
	KeyCondition   string
	Filter         string
	Projection     string
	Names          map[string]string
	Values         map[string]types.AttributeValue
	Limit          int32
	ScanForward    bool
	ConsistentRead bool
	StartKey       Item
}

// PageOutput é uma página retornada pelo Transport. LastKey vazio indica o fim.
type PageOutput struct {
	Items   []Item
	LastKey Item
}
