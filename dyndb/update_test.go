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
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raywall/dynamodel/dyndb"
	"github.com/raywall/dynamodel/pkg/expr"
)

func TestUpdatePlan(t *testing.T) {
	t.Parallel()

	req, err := newOrders(t, &dyndb.MockTransport{}).Update("c1", "o1").
		Set(expr.Name("status"), "shipped").
		Add(expr.Name("attempts"), 1).
		Remove(expr.Name("cart")).
		If(expr.Name("status").Equal("open")).
		Plan()

	require.NoError(t, err)
	assert.Equal(t, "orders", req.Table)
	assert.Equal(t, dyndb.Item{"customer_id": s("c1"), "order_id": s("o1")}, req.Key)
	assert.Equal(t, "SET #n0 = :v0 REMOVE #n2 ADD #n1 :v1", req.Update)
	assert.Equal(t, "#n3 = :v2", req.Condition)
	assert.Equal(t, map[string]string{"#n0": "status", "#n1": "attempts", "#n2": "cart", "#n3": "status"}, req.Names)
	assert.Equal(t, map[string]types.AttributeValue{":v0": s("shipped"), ":v1": n("1"), ":v2": s("open")}, req.Values)
	assert.Equal(t, types.ReturnValueAllNew, req.ReturnValues)
}

func TestUpdatePlan_Errors(t *testing.T) {
	t.Parallel()

	tr := &dyndb.MockTransport{}
	orders := newOrders(t, tr)

	tests := []struct {
		name    string
		builder *dyndb.UpdateBuilder[Order]
		want    error
	}{
		{"duplicate path", orders.Update("c1", "o1").Set(expr.Name("status"), "x").Remove(expr.Name("status")), expr.ErrDuplicateUpdatePath},
		{"no actions", orders.Update("c1", "o1"), expr.ErrNoUpdateActions},
		{"partition key", orders.Update("c1", "o1").Set(expr.Name("customer_id"), "c2"), dyndb.ErrKeyAttributeUpdate},
		{"sort key", orders.Update("c1", "o1").Remove(expr.Name("order_id")), dyndb.ErrKeyAttributeUpdate},
		{"missing sort key", orders.Update("c1", nil).Set(expr.Name("status"), "x"), dyndb.ErrInvalidKey},
		{"delete needs a set", orders.Update("c1", "o1").Delete(expr.Name("tags"), "gift"), expr.ErrInvalidUpdateAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Exec(context.Background())
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, tr.Calls())
}

func TestUpdateExec_ReturnsNewItem(t *testing.T) {
	t.Parallel()

	tr := &dyndb.MockTransport{
		UpdateItemFn: func(_ context.Context, req dyndb.UpdateRequest) (dyndb.Item, error) {
			return orderItem("c1", "o1", "shipped"), nil
		},
	}

	order, err := newOrders(t, tr).Update("c1", "o1").Set(expr.Name("status"), "shipped").Exec(context.Background())

	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, "shipped", order.Status)
	assert.Equal(t, 10.5, order.Total)
}

func TestUpdateExec_UpdatedNew(t *testing.T) {
	t.Parallel()

	tr := &dyndb.MockTransport{
		UpdateItemFn: func(_ context.Context, req dyndb.UpdateRequest) (dyndb.Item, error) {
			assert.Equal(t, types.ReturnValueUpdatedNew, req.ReturnValues)
			return dyndb.Item{"total": n("12")}, nil
		},
	}

	order, err := newOrders(t, tr).Update("c1", "o1").
		Add(expr.Name("total"), 1.5).
		ReturnValues(types.ReturnValueUpdatedNew).
		Exec(context.Background())

	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, 12.0, order.Total)
	assert.Empty(t, order.CustomerID)
}

func TestUpdateExec_NoReturnValues(t *testing.T) {
	t.Parallel()

	order, err := newOrders(t, &dyndb.MockTransport{}).Update("c1", "o1").
		Set(expr.Name("status"), nil).
		ReturnValues(types.ReturnValueNone).
		Exec(context.Background())

	require.NoError(t, err)
	assert.Nil(t, order)
}

func TestUpdateExec_SetNilRemoves(t *testing.T) {
	t.Parallel()

	var got dyndb.UpdateRequest
	tr := &dyndb.MockTransport{
		UpdateItemFn: func(_ context.Context, req dyndb.UpdateRequest) (dyndb.Item, error) {
			got = req
			return nil, nil
		},
	}

	_, err := newOrders(t, tr).Update("c1", "o1").Set(expr.Name("coupon"), nil).Exec(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "REMOVE #n0", got.Update)
	assert.Empty(t, got.Values)
}
