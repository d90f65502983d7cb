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
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

// SDKTransport implementa Transport sobre o cliente do aws-sdk-go-v2.
// Retry e backoff ficam a cargo do próprio SDK.
type SDKTransport struct {
	client DynamoDBClient
}

// NewSDKTransport cria um transport sobre um cliente já configurado.
func NewSDKTransport(client DynamoDBClient) *SDKTransport {
	return &SDKTransport{client: client}
}

// NewSDKTransportFromConfig carrega a configuração padrão da AWS
// (variáveis de ambiente, profile, role) e cria o cliente do DynamoDB.
func NewSDKTransportFromConfig(ctx context.Context, region string, optFns ...func(*dynamodb.Options)) (*SDKTransport, error) {
	var loadOpts []func(*config.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("dyndb: load aws config: %w", err)
	}
	return NewSDKTransport(dynamodb.NewFromConfig(awsCfg, optFns...)), nil
}

func (s *SDKTransport) GetItem(ctx context.Context, req GetRequest) (Item, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(req.Table),
		Key:                      req.Key,
		ConsistentRead:           aws.Bool(req.ConsistentRead),
		ProjectionExpression:     optional(req.Projection),
		ExpressionAttributeNames: nonEmpty(req.Names),
	})
	if err != nil {
		return nil, classifyError("get", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return out.Item, nil
}

func (s *SDKTransport) PutItem(ctx context.Context, req PutRequest) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(req.Table),
		Item:                      req.Item,
		ConditionExpression:       optional(req.Condition),
		ExpressionAttributeNames:  nonEmpty(req.Names),
		ExpressionAttributeValues: nonEmpty(req.Values),
	})
	if err != nil {
		return classifyError("put", err)
	}
	return nil
}

func (s *SDKTransport) DeleteItem(ctx context.Context, req DeleteRequest) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(req.Table),
		Key:                       req.Key,
		ConditionExpression:       optional(req.Condition),
		ExpressionAttributeNames:  nonEmpty(req.Names),
		ExpressionAttributeValues: nonEmpty(req.Values),
	})
	if err != nil {
		return classifyError("delete", err)
	}
	return nil
}

func (s *SDKTransport) UpdateItem(ctx context.Context, req UpdateRequest) (Item, error) {
	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(req.Table),
		Key:                       req.Key,
		UpdateExpression:          aws.String(req.Update),
		ConditionExpression:       optional(req.Condition),
		ExpressionAttributeNames:  nonEmpty(req.Names),
		ExpressionAttributeValues: nonEmpty(req.Values),
		ReturnValues:              req.ReturnValues,
	})
	if err != nil {
		return nil, classifyError("update", err)
	}
	if len(out.Attributes) == 0 {
		return nil, nil
	}
	return out.Attributes, nil
}

func (s *SDKTransport) Query(ctx context.Context, req Request) (PageOutput, error) {
	input := &dynamodb.QueryInput{
		TableName:                 aws.String(req.Table),
		IndexName:                 optional(req.Index),
		KeyConditionExpression:    aws.String(req.KeyCondition),
		FilterExpression:          optional(req.Filter),
		ProjectionExpression:      optional(req.Projection),
		ExpressionAttributeNames:  nonEmpty(req.Names),
		ExpressionAttributeValues: nonEmpty(req.Values),
		ScanIndexForward:          aws.Bool(req.ScanForward),
		ExclusiveStartKey:         nonEmpty(req.StartKey),
	}
	if req.ConsistentRead {
		input.ConsistentRead = aws.Bool(true)
	}
	if req.Limit > 0 {
		input.Limit = aws.Int32(req.Limit)
	}
	if req.Projection != "" {
		input.Select = types.SelectSpecificAttributes
	}

	out, err := s.client.Query(ctx, input)
	if err != nil {
		return PageOutput{}, classifyError("query", err)
	}
	return PageOutput{Items: out.Items, LastKey: nonEmpty(out.LastEvaluatedKey)}, nil
}

func (s *SDKTransport) Scan(ctx context.Context, req Request) (PageOutput, error) {
	input := &dynamodb.ScanInput{
		TableName:                 aws.String(req.Table),
		IndexName:                 optional(req.Index),
		FilterExpression:          optional(req.Filter),
		ProjectionExpression:      optional(req.Projection),
		ExpressionAttributeNames:  nonEmpty(req.Names),
		ExpressionAttributeValues: nonEmpty(req.Values),
		ExclusiveStartKey:         nonEmpty(req.StartKey),
	}
	if req.ConsistentRead {
		input.ConsistentRead = aws.Bool(true)
	}
	if req.Limit > 0 {
		input.Limit = aws.Int32(req.Limit)
	}

	out, err := s.client.Scan(ctx, input)
	if err != nil {
		return PageOutput{}, classifyError("scan", err)
	}
	return PageOutput{Items: out.Items, LastKey: nonEmpty(out.LastEvaluatedKey)}, nil
}

// optional converte string vazia em ponteiro nil, como o SDK espera
// para parâmetros ausentes.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return aws.String(s)
}

func nonEmpty[M ~map[K]V, K comparable, V any](m M) M {
	if len(m) == 0 {
		return nil
	}
	return m
}

// classifyError associa o erro do SDK a uma categoria de dyndb mantendo
// o erro original na cadeia.
func classifyError(op string, err error) error {
	if kind := errorKind(err); kind != nil {
		return fmt.Errorf("dyndb: %s failed: %w: %w", op, kind, err)
	}
	return fmt.Errorf("dyndb: %s failed: %w", op, err)
}

func errorKind(err error) error {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return ErrConditionFailed
	}
	var rnf *types.ResourceNotFoundException
	if errors.As(err, &rnf) {
		return ErrTableNotFound
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return nil
	}
	switch apiErr.ErrorCode() {
	case "ConditionalCheckFailedException":
		return ErrConditionFailed
	case "ResourceNotFoundException":
		return ErrTableNotFound
	case "ProvisionedThroughputExceededException", "RequestLimitExceeded", "ThrottlingException":
		return ErrThrottled
	case "ValidationException", "SerializationException":
		return ErrValidation
	case "RequestTimeout", "RequestTimeoutException":
		return ErrRequestTimeout
	case "ItemCollectionSizeLimitExceededException":
		return ErrItemCollectionTooLarge
	case "TransactionConflictException":
		return ErrTransactionConflict
	}
	return nil
}
