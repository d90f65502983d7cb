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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raywall/dynamodel/dyndb"
	"github.com/raywall/dynamodel/pkg/expr"
	"github.com/raywall/dynamodel/pkg/poly"
)

type Animal interface {
	Sound() string
}

type Dog struct {
	Shelter string `dynamodbav:"shelter"`
	ID      string `dynamodbav:"id"`
	Name    string `dynamodbav:"name"`
	Breed   string `dynamodbav:"breed"`
}

func (*Dog) Sound() string { return "woof" }

type Cat struct {
	Shelter string `dynamodbav:"shelter"`
	ID      string `dynamodbav:"id"`
	Name    string `dynamodbav:"name"`
	Lives   int    `dynamodbav:"lives"`
}

func (*Cat) Sound() string { return "meow" }

type Fish struct {
	Shelter string `dynamodbav:"shelter"`
	ID      string `dynamodbav:"id"`
}

func (*Fish) Sound() string { return "" }

func newAnimals(t *testing.T, tr dyndb.Transport) *dyndb.Table[Animal] {
	t.Helper()
	reg := poly.NewRegistry[Animal]("kind").
		MustRegister("dog", poly.New[Dog, Animal]()).
		MustRegister("cat", poly.New[Cat, Animal]())

	table, err := dyndb.NewPolymorphic(tr, dyndb.TableConfig{
		TableName: "animals",
		HashKey:   "shelter",
		SortKey:   "id",
	}, reg)
	require.NoError(t, err)
	assert.Equal(t, "kind", table.Config().Discriminator)
	return table
}

func animalItem(id, kind string) dyndb.Item {
	return dyndb.Item{"shelter": s("s1"), "id": s(id), "kind": s(kind), "name": s("rex"), "lives": n("7")}
}

func TestPolymorphic_DiscriminatorIsolation(t *testing.T) {
	t.Parallel()

	tr := &dyndb.MockTransport{}
	tr.ScanFn = dyndb.Pages([]dyndb.Item{animalItem("a1", "dog"), animalItem("a2", "parrot"), animalItem("a3", "cat")})

	var (
		decoded []Animal
		failed  []error
	)
	for a, err := range newAnimals(t, tr).Scan().All(context.Background()) {
		if err != nil {
			failed = append(failed, err)
			continue
		}
		decoded = append(decoded, a)
	}

	require.Len(t, decoded, 2)
	require.IsType(t, &Dog{}, decoded[0])
	require.IsType(t, &Cat{}, decoded[1])
	assert.Equal(t, "a1", decoded[0].(*Dog).ID)
	assert.Equal(t, 7, decoded[1].(*Cat).Lives)

	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0], poly.ErrUnknownDiscriminator)
	var ue *poly.UnknownDiscriminatorError
	require.ErrorAs(t, failed[0], &ue)
	assert.Equal(t, "parrot", ue.Value)
	var ie *dyndb.ItemError
	require.ErrorAs(t, failed[0], &ie)
	assert.Equal(t, 1, ie.Index)
}

func TestPolymorphic_Get(t *testing.T) {
	t.Parallel()

	tr := &dyndb.MockTransport{
		GetItemFn: func(context.Context, dyndb.GetRequest) (dyndb.Item, error) {
			return animalItem("a3", "cat"), nil
		},
	}

	a, err := newAnimals(t, tr).Get(context.Background(), "s1", "a3")

	require.NoError(t, err)
	cat, ok := (*a).(*Cat)
	require.True(t, ok)
	assert.Equal(t, "meow", cat.Sound())
}

func TestPolymorphic_PutWritesDiscriminator(t *testing.T) {
	t.Parallel()

	var got dyndb.PutRequest
	tr := &dyndb.MockTransport{
		PutItemFn: func(_ context.Context, req dyndb.PutRequest) error {
			got = req
			return nil
		},
	}
	animals := newAnimals(t, tr)

	require.NoError(t, animals.Put(context.Background(), &Dog{Shelter: "s1", ID: "a1", Breed: "lab"}))
	assert.Equal(t, s("dog"), got.Item["kind"])
	assert.Equal(t, s("lab"), got.Item["breed"])

	err := animals.Put(context.Background(), &Fish{Shelter: "s1", ID: "a9"})
	assert.ErrorIs(t, err, dyndb.ErrUnregisteredType)
}

func TestPolymorphic_OfKindAndProjection(t *testing.T) {
	t.Parallel()

	req, err := newAnimals(t, &dyndb.MockTransport{}).Query().
		PartitionEqual("s1").
		OfKind("cat").
		Project(expr.Name("name")).
		Plan()

	require.NoError(t, err)
	assert.Equal(t, "#n0 = :v0", req.KeyCondition)
	assert.Equal(t, "#n1 = :v1", req.Filter)
	assert.Equal(t, "kind", req.Names["#n1"])
	assert.Equal(t, s("cat"), req.Values[":v1"])
	assert.Equal(t, "#n2, #n3", req.Projection)
	assert.Equal(t, "name", req.Names["#n2"])
	assert.Equal(t, "kind", req.Names["#n3"])
}

func TestNewPolymorphic_DiscriminatorMismatch(t *testing.T) {
	t.Parallel()

	reg := poly.NewRegistry[Animal]("kind")
	_, err := dyndb.NewPolymorphic(&dyndb.MockTransport{}, dyndb.TableConfig{
		TableName:     "animals",
		HashKey:       "shelter",
		Discriminator: "type",
	}, reg)
	assert.ErrorIs(t, err, dyndb.ErrInvalidConfig)
}
