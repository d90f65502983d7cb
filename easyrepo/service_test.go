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
package easyrepo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raywall/dynamodel/dyndb"
	"github.com/raywall/dynamodel/easyrepo"
)

type Product struct {
	Tenant string  `dynamodbav:"tenant" validate:"required"`
	SKU    string  `dynamodbav:"sku" validate:"required"`
	Name   string  `dynamodbav:"name" validate:"required"`
	Price  float64 `dynamodbav:"price" validate:"gte=0"`
	Status string  `dynamodbav:"status" validate:"omitempty,oneof=draft published"`
}

var productConfig = dyndb.TableConfig{TableName: "products", HashKey: "tenant", SortKey: "sku"}

func newService(t *testing.T, tr *dyndb.MockTransport) *easyrepo.EasyService[Product] {
	t.Helper()
	table, err := dyndb.New[Product](tr, productConfig)
	require.NoError(t, err)
	svc, err := easyrepo.NewService[Product](table, productConfig)
	require.NoError(t, err)
	return svc
}

func productItem(name string, price string) dyndb.Item {
	return dyndb.Item{
		"tenant": &types.AttributeValueMemberS{Value: "acme"},
		"sku":    &types.AttributeValueMemberS{Value: "p-1"},
		"name":   &types.AttributeValueMemberS{Value: name},
		"price":  &types.AttributeValueMemberN{Value: price},
	}
}

func TestNewService_Validation(t *testing.T) {
	_, err := easyrepo.NewService[Product](nil, productConfig)
	assert.ErrorIs(t, err, easyrepo.ErrInvalidInput)

	table, err := dyndb.New[Product](&dyndb.MockTransport{}, productConfig)
	require.NoError(t, err)
	_, err = easyrepo.NewService[Product](table, dyndb.TableConfig{TableName: "products"})
	assert.ErrorIs(t, err, dyndb.ErrMissingPartitionKey)
}

func TestEasyService_Create(t *testing.T) {
	tr := &dyndb.MockTransport{}
	svc := newService(t, tr)

	var hooked bool
	svc.RegisterHook(easyrepo.BeforeCreate, func(_ context.Context, item, existing *Product) error {
		hooked = true
		assert.Nil(t, existing)
		item.Status = "draft"
		return nil
	})

	err := svc.Create(context.Background(), &Product{Tenant: "acme", SKU: "p-1", Name: "Caneta", Price: 2.5})
	require.NoError(t, err)
	assert.True(t, hooked)

	calls := tr.Calls()
	require.Len(t, calls, 1)
	put := calls[0].(dyndb.PutRequest)
	assert.Equal(t, "attribute_not_exists(#n0)", put.Condition)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "draft"}, put.Item["status"])
}

func TestEasyService_Create_Invalid(t *testing.T) {
	tr := &dyndb.MockTransport{}
	svc := newService(t, tr)

	cases := []struct {
		name string
		item *Product
	}{
		{"nil item", nil},
		{"missing name", &Product{Tenant: "acme", SKU: "p-1"}},
		{"negative price", &Product{Tenant: "acme", SKU: "p-1", Name: "x", Price: -1}},
		{"unknown status", &Product{Tenant: "acme", SKU: "p-1", Name: "x", Status: "archived"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Create(context.Background(), tc.item)
			assert.ErrorIs(t, err, easyrepo.ErrInvalidInput)
		})
	}
	assert.Empty(t, tr.Calls())
}

func TestEasyService_Create_AlreadyExists(t *testing.T) {
	tr := &dyndb.MockTransport{
		PutItemFn: func(context.Context, dyndb.PutRequest) error { return dyndb.ErrConditionFailed },
	}
	svc := newService(t, tr)

	err := svc.Create(context.Background(), &Product{Tenant: "acme", SKU: "p-1", Name: "Caneta"})
	assert.ErrorIs(t, err, easyrepo.ErrAlreadyExists)
}

func TestEasyService_Create_HookError(t *testing.T) {
	tr := &dyndb.MockTransport{}
	svc := newService(t, tr)
	errBlocked := errors.New("blocked")
	svc.RegisterHook(easyrepo.BeforeCreate, func(context.Context, *Product, *Product) error { return errBlocked })

	err := svc.Create(context.Background(), &Product{Tenant: "acme", SKU: "p-1", Name: "Caneta"})
	assert.ErrorIs(t, err, errBlocked)
	assert.Empty(t, tr.Calls())
}

func TestEasyService_RegisterValidation(t *testing.T) {
	type Tagged struct {
		Tenant string `dynamodbav:"tenant" validate:"required"`
		SKU    string `dynamodbav:"sku" validate:"required,sku"`
	}
	table, err := dyndb.New[Tagged](&dyndb.MockTransport{}, productConfig)
	require.NoError(t, err)
	svc, err := easyrepo.NewService[Tagged](table, productConfig)
	require.NoError(t, err)

	require.NoError(t, svc.RegisterValidation("sku", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) > 2 && fl.Field().String()[:2] == "p-"
	}))

	assert.ErrorIs(t, svc.Create(context.Background(), &Tagged{Tenant: "acme", SKU: "x"}), easyrepo.ErrInvalidInput)
	assert.NoError(t, svc.Create(context.Background(), &Tagged{Tenant: "acme", SKU: "p-9"}))
}

func TestEasyService_Get(t *testing.T) {
	tr := &dyndb.MockTransport{
		GetItemFn: func(_ context.Context, req dyndb.GetRequest) (dyndb.Item, error) {
			if req.Key["sku"].(*types.AttributeValueMemberS).Value == "p-1" {
				return productItem("Caneta", "2.5"), nil
			}
			return nil, nil
		},
	}
	svc := newService(t, tr)

	p, err := svc.Get(context.Background(), "acme", "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Caneta", p.Name)
	assert.Equal(t, 2.5, p.Price)

	_, err = svc.Get(context.Background(), "acme", "p-2")
	assert.ErrorIs(t, err, easyrepo.ErrNotFound)

	_, err = svc.Get(context.Background(), nil, "p-1")
	assert.ErrorIs(t, err, easyrepo.ErrInvalidInput)

	_, err = svc.Get(context.Background(), "acme", nil)
	assert.ErrorIs(t, err, easyrepo.ErrInvalidInput)
}

func TestEasyService_Update(t *testing.T) {
	tr := &dyndb.MockTransport{
		GetItemFn: func(context.Context, dyndb.GetRequest) (dyndb.Item, error) {
			return productItem("Caneta", "2.5"), nil
		},
	}
	svc := newService(t, tr)

	var seen *Product
	svc.RegisterHook(easyrepo.BeforeUpdate, func(_ context.Context, item, existing *Product) error {
		seen = existing
		return nil
	})

	err := svc.Update(context.Background(), &Product{Tenant: "acme", SKU: "p-1", Name: "Caneta azul", Price: 3})
	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, "Caneta", seen.Name)

	calls := tr.Calls()
	require.Len(t, calls, 2)
	get := calls[0].(dyndb.GetRequest)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "acme"}, get.Key["tenant"])
	put := calls[1].(dyndb.PutRequest)
	assert.Equal(t, "attribute_exists(#n0)", put.Condition)
	assert.Equal(t, "tenant", put.Names["#n0"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "Caneta azul"}, put.Item["name"])
}

func TestEasyService_Update_Missing(t *testing.T) {
	tr := &dyndb.MockTransport{}
	svc := newService(t, tr)

	err := svc.Update(context.Background(), &Product{Tenant: "acme", SKU: "p-1", Name: "Caneta"})
	assert.ErrorIs(t, err, easyrepo.ErrNotFound)
	assert.Len(t, tr.Calls(), 1)
}

func TestEasyService_Update_HookRejects(t *testing.T) {
	tr := &dyndb.MockTransport{
		GetItemFn: func(context.Context, dyndb.GetRequest) (dyndb.Item, error) {
			return productItem("Caneta", "2.5"), nil
		},
	}
	svc := newService(t, tr)
	errPrice := errors.New("price cannot drop")
	svc.RegisterHook(easyrepo.BeforeUpdate, func(_ context.Context, item, existing *Product) error {
		if item.Price < existing.Price {
			return errPrice
		}
		return nil
	})

	err := svc.Update(context.Background(), &Product{Tenant: "acme", SKU: "p-1", Name: "Caneta", Price: 1})
	assert.ErrorIs(t, err, errPrice)
	assert.Len(t, tr.Calls(), 1)
}

func TestEasyService_Delete(t *testing.T) {
	tr := &dyndb.MockTransport{
		DeleteItemFn: func(_ context.Context, req dyndb.DeleteRequest) error {
			if req.Key["sku"].(*types.AttributeValueMemberS).Value == "gone" {
				return dyndb.ErrConditionFailed
			}
			return nil
		},
	}
	svc := newService(t, tr)

	require.NoError(t, svc.Delete(context.Background(), "acme", "p-1"))
	assert.ErrorIs(t, svc.Delete(context.Background(), "acme", "gone"), easyrepo.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), "acme", nil), easyrepo.ErrInvalidInput)

	del := tr.Calls()[0].(dyndb.DeleteRequest)
	assert.Equal(t, "attribute_exists(#n0)", del.Condition)
}

func TestEasyService_List(t *testing.T) {
	tr := &dyndb.MockTransport{
		ScanFn: dyndb.Pages(
			[]dyndb.Item{productItem("A", "1")},
			[]dyndb.Item{productItem("B", "2")},
		),
	}
	svc := newService(t, tr)

	items, next, err := svc.List(context.Background(), 1, "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "A", items[0].Name)
	require.NotEmpty(t, next)

	items, next, err = svc.List(context.Background(), 1, next)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "B", items[0].Name)
	assert.Empty(t, next)

	_, _, err = svc.List(context.Background(), 0, "not a cursor!")
	assert.ErrorIs(t, err, easyrepo.ErrInvalidInput)
}

func TestEasyService_CustomMethods(t *testing.T) {
	tr := &dyndb.MockTransport{
		QueryFn: dyndb.Pages([]dyndb.Item{productItem("Caneta", "2.5")}),
	}
	svc := newService(t, tr)
	svc.RegisterCustomServiceMethod("first-of-tenant", func(ctx context.Context, store dyndb.Store[Product], args ...any) (*Product, error) {
		p, err := store.Query().PartitionEqual(args[0]).First(ctx)
		if err != nil {
			return nil, err
		}
		return &p, nil
	})

	p, err := svc.RunCustomServiceMethod(context.Background(), "first-of-tenant", "acme")
	require.NoError(t, err)
	assert.Equal(t, "Caneta", p.Name)

	_, err = svc.RunCustomServiceMethod(context.Background(), "")
	assert.ErrorIs(t, err, easyrepo.ErrEmptyCustomMethodName)

	_, err = svc.RunCustomServiceMethod(context.Background(), "missing")
	assert.ErrorIs(t, err, easyrepo.ErrMethodNameNotFound)
}
