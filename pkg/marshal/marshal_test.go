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
package marshal_test

import (
	"encoding/json"
	"errors"
	"math"
	"sort"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raywall/dynamodel/pkg/marshal"
)

type Address struct {
	Street string `dynamodbav:"street"`
	Zip    string `dynamodbav:"zip,omitempty"`
}

type Audit struct {
	CreatedAt time.Time `dynamodbav:"createdAt"`
	Version   int       `dynamodbav:"version"`
}

type Customer struct {
	Audit
	ID        uuid.UUID           `dynamodbav:"id"`
	Name      string              `dynamodbav:"name"`
	Balance   marshal.Number      `dynamodbav:"balance"`
	Score     float64             `dynamodbav:"score"`
	Active    bool                `dynamodbav:"active"`
	Tags      map[string]struct{} `dynamodbav:"tags"`
	Lucky     []int               `dynamodbav:"lucky,set"`
	Address   *Address            `dynamodbav:"address"`
	DeletedAt *time.Time          `dynamodbav:"deletedAt,nullable"`
	Notes     []string            `dynamodbav:"notes"`
	Attrs     map[string]any      `dynamodbav:"attrs"`
	Secret    string              `dynamodbav:"-"`
	Avatar    []byte              `dynamodbav:"avatar"`
}

func TestEncode_Scalars(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want types.AttributeValue
	}{
		{"string", "abc", &types.AttributeValueMemberS{Value: "abc"}},
		{"int", 42, &types.AttributeValueMemberN{Value: "42"}},
		{"negative int64", int64(-7), &types.AttributeValueMemberN{Value: "-7"}},
		{"uint8", uint8(255), &types.AttributeValueMemberN{Value: "255"}},
		{"float exact text", 0.1, &types.AttributeValueMemberN{Value: "0.1"}},
		{"small float", 1e-7, &types.AttributeValueMemberN{Value: "0.0000001"}},
		{"float32", float32(3.14), &types.AttributeValueMemberN{Value: "3.14"}},
		{"number", marshal.Number("12345678901234567890.123"), &types.AttributeValueMemberN{Value: "12345678901234567890.123"}},
		{"bool", true, &types.AttributeValueMemberBOOL{Value: true}},
		{"nil", nil, &types.AttributeValueMemberNULL{Value: true}},
		{"bytes", []byte{1, 2}, &types.AttributeValueMemberB{Value: []byte{1, 2}}},
		{"uuid", uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), &types.AttributeValueMemberS{Value: "6ba7b810-9dad-11d1-80b4-00c04fd430c8"}},
		{"time", time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC), &types.AttributeValueMemberS{Value: "2024-01-02T03:04:05.000000006Z"}},
		{"list", []any{"a", 1}, &types.AttributeValueMemberL{Value: []types.AttributeValue{
			&types.AttributeValueMemberS{Value: "a"},
			&types.AttributeValueMemberN{Value: "1"},
		}}},
		{"passthrough", &types.AttributeValueMemberS{Value: "raw"}, &types.AttributeValueMemberS{Value: "raw"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := marshal.Encode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncode_NotRepresentable(t *testing.T) {
	t.Parallel()

	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := marshal.Encode(f)
		require.Error(t, err)
		assert.ErrorIs(t, err, marshal.ErrNotRepresentable)

		var encErr *marshal.EncodeError
		assert.True(t, errors.As(err, &encErr))
	}

	_, err := marshal.Encode(map[string]struct{}{})
	assert.ErrorIs(t, err, marshal.ErrNotRepresentable)

	_, err = marshal.Encode(make(chan int))
	assert.ErrorIs(t, err, marshal.ErrUnsupportedType)
}

func TestEncode_NumberRange(t *testing.T) {
	t.Parallel()

	rejected := []any{
		1e200,
		-1e200,
		1e-200,
		1e126,
		marshal.Number("1e200"),
		marshal.Number("1E-131"),
		marshal.Number("1.000000000000000000000000000000000000001"),
		json.Number("1e126"),
		*apd.New(1, 200),
	}
	for _, v := range rejected {
		_, err := marshal.Encode(v)
		assert.ErrorIs(t, err, marshal.ErrNotRepresentable, "%v", v)
	}

	accepted := []any{
		0.0,
		9.99e125,
		1e-130,
		marshal.Number("1E-130"),
		marshal.Number("9.9999999999999999999999999999999999999E+125"),
		marshal.Number("12345678901234567890123456789012345678"),
		marshal.Number("1.50000"),
		*apd.New(15, -1),
	}
	for _, v := range accepted {
		_, err := marshal.Encode(v)
		assert.NoError(t, err, "%v", v)
	}

	_, err := marshal.EncodeItem(struct {
		Total float64 `dynamodbav:"total"`
	}{Total: 1e300})
	var encErr *marshal.EncodeError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, "total", encErr.Path)
}

func TestEncode_EmptyNumberIsAbsent(t *testing.T) {
	t.Parallel()

	item, err := marshal.EncodeItem(Customer{Name: "x"})
	require.NoError(t, err)
	assert.NotContains(t, item, "balance")

	nullable, err := marshal.EncodeItem(struct {
		Balance marshal.Number `dynamodbav:"balance,nullable"`
		Raw     json.Number    `dynamodbav:"raw"`
	}{})
	require.NoError(t, err)
	assert.Equal(t, &types.AttributeValueMemberNULL{Value: true}, nullable["balance"])
	assert.NotContains(t, nullable, "raw")

	av, err := marshal.Encode(marshal.Number(""))
	require.NoError(t, err)
	assert.Equal(t, &types.AttributeValueMemberNULL{Value: true}, av)

	// NULL decodifica para Number vazio, que volta a ser omitido.
	var out Customer
	require.NoError(t, marshal.DecodeItem(map[string]types.AttributeValue{
		"name":    &types.AttributeValueMemberS{Value: "x"},
		"balance": &types.AttributeValueMemberNULL{Value: true},
	}, &out))
	assert.Empty(t, out.Balance)
	again, err := marshal.EncodeItem(out)
	require.NoError(t, err)
	assert.NotContains(t, again, "balance")
}

func TestEncode_Sets(t *testing.T) {
	t.Parallel()

	t.Run("string set is sorted", func(t *testing.T) {
		t.Parallel()
		av, err := marshal.Encode(map[string]struct{}{"b": {}, "a": {}, "c": {}})
		require.NoError(t, err)
		assert.Equal(t, &types.AttributeValueMemberSS{Value: []string{"a", "b", "c"}}, av)
	})

	t.Run("number set dedups by value", func(t *testing.T) {
		t.Parallel()
		av, err := marshal.EncodeSet([]marshal.Number{"10", "2", "2.0", "1.5"})
		require.NoError(t, err)
		assert.Equal(t, &types.AttributeValueMemberNS{Value: []string{"1.5", "2", "10"}}, av)
	})

	t.Run("binary set", func(t *testing.T) {
		t.Parallel()
		av, err := marshal.EncodeSet([][]byte{{2}, {1}})
		require.NoError(t, err)
		assert.Equal(t, &types.AttributeValueMemberBS{Value: [][]byte{{1}, {2}}}, av)
	})

	t.Run("mixed set", func(t *testing.T) {
		t.Parallel()
		_, err := marshal.EncodeSet([]any{"a", 1})
		assert.ErrorIs(t, err, marshal.ErrTypeMismatch)
	})

	t.Run("empty set field omitted", func(t *testing.T) {
		t.Parallel()
		item, err := marshal.EncodeItem(Customer{Name: "x", Tags: map[string]struct{}{}})
		require.NoError(t, err)
		assert.NotContains(t, item, "tags")
		assert.NotContains(t, item, "lucky")
	})
}

func TestEncodeItem_Struct(t *testing.T) {
	t.Parallel()

	created := time.Date(2023, 5, 1, 12, 0, 0, 0, time.FixedZone("BRT", -3*3600))
	c := Customer{
		Audit:   Audit{CreatedAt: created, Version: 3},
		ID:      uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		Name:    "Ana",
		Balance: "10.50",
		Score:   9.5,
		Tags:    map[string]struct{}{"vip": {}},
		Lucky:   []int{7, 3, 7},
		Address: &Address{Street: "Rua A"},
		Secret:  "hidden",
	}

	item, err := marshal.EncodeItem(c)
	require.NoError(t, err)

	assert.Equal(t, &types.AttributeValueMemberS{Value: "Ana"}, item["name"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "10.50"}, item["balance"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "2023-05-01T15:00:00.000000000Z"}, item["createdAt"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "3"}, item["version"])
	assert.Equal(t, &types.AttributeValueMemberSS{Value: []string{"vip"}}, item["tags"])
	assert.Equal(t, &types.AttributeValueMemberNS{Value: []string{"3", "7"}}, item["lucky"])
	assert.Equal(t, &types.AttributeValueMemberNULL{Value: true}, item["deletedAt"])
	assert.Equal(t, &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
		"street": &types.AttributeValueMemberS{Value: "Rua A"},
	}}, item["address"])
	assert.NotContains(t, item, "Secret")
	assert.NotContains(t, item, "notes")
	assert.NotContains(t, item, "avatar")
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	deleted := time.Date(2024, 2, 29, 23, 59, 59, 123456789, time.UTC)
	in := Customer{
		Audit:     Audit{CreatedAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), Version: 1},
		ID:        uuid.New(),
		Name:      "Bruno",
		Balance:   "99999999999999999999.99",
		Score:     0.30000000000000004,
		Active:    true,
		Tags:      map[string]struct{}{"a": {}, "b": {}},
		Lucky:     []int{1, 2, 3},
		Address:   &Address{Street: "Rua B", Zip: "01000-000"},
		DeletedAt: &deleted,
		Notes:     []string{"first", "second"},
		Attrs:     map[string]any{"color": "blue", "flag": true},
		Avatar:    []byte("png"),
	}

	item, err := marshal.EncodeItem(in)
	require.NoError(t, err)

	var out Customer
	require.NoError(t, marshal.DecodeItem(item, &out))

	sort.Ints(out.Lucky)
	assert.Equal(t, in, out)
}

func TestDecode_Defaults(t *testing.T) {
	t.Parallel()

	t.Run("missing key keeps default", func(t *testing.T) {
		t.Parallel()
		out := Customer{Name: "default", Score: 1}
		err := marshal.DecodeItem(map[string]types.AttributeValue{
			"active": &types.AttributeValueMemberBOOL{Value: true},
		}, &out)
		require.NoError(t, err)
		assert.Equal(t, "default", out.Name)
		assert.Equal(t, 1.0, out.Score)
		assert.True(t, out.Active)
	})

	t.Run("explicit null zeroes field", func(t *testing.T) {
		t.Parallel()
		out := Customer{Name: "default", Address: &Address{Street: "x"}}
		err := marshal.DecodeItem(map[string]types.AttributeValue{
			"name":    &types.AttributeValueMemberNULL{Value: true},
			"address": &types.AttributeValueMemberNULL{Value: true},
		}, &out)
		require.NoError(t, err)
		assert.Empty(t, out.Name)
		assert.Nil(t, out.Address)
	})
}

func TestDecode_Numbers(t *testing.T) {
	t.Parallel()

	var i int
	require.NoError(t, marshal.Decode(&types.AttributeValueMemberN{Value: "1E+3"}, &i))
	assert.Equal(t, 1000, i)

	err := marshal.Decode(&types.AttributeValueMemberN{Value: "1.5"}, &i)
	assert.ErrorIs(t, err, marshal.ErrTypeMismatch)

	var small int8
	err = marshal.Decode(&types.AttributeValueMemberN{Value: "300"}, &small)
	assert.ErrorIs(t, err, marshal.ErrTypeMismatch)

	var u uint
	err = marshal.Decode(&types.AttributeValueMemberN{Value: "-1"}, &u)
	assert.ErrorIs(t, err, marshal.ErrTypeMismatch)

	var f float64
	require.NoError(t, marshal.Decode(&types.AttributeValueMemberN{Value: "2.5"}, &f))
	assert.Equal(t, 2.5, f)

	var s string
	err = marshal.Decode(&types.AttributeValueMemberN{Value: "1"}, &s)
	var decErr *marshal.DecodeError
	require.True(t, errors.As(err, &decErr))
	assert.ErrorIs(t, err, marshal.ErrTypeMismatch)

	assert.ErrorIs(t, marshal.Decode(&types.AttributeValueMemberN{Value: "1"}, i), marshal.ErrInvalidTarget)
}

func TestDecode_TimeFromEpoch(t *testing.T) {
	t.Parallel()

	var ts time.Time
	require.NoError(t, marshal.Decode(&types.AttributeValueMemberN{Value: "1700000000"}, &ts))
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), ts)
}

func TestDecodeScalar(t *testing.T) {
	t.Parallel()

	got, err := marshal.DecodeScalar(&types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
		"n":   &types.AttributeValueMemberN{Value: "1.25"},
		"l":   &types.AttributeValueMemberL{Value: []types.AttributeValue{&types.AttributeValueMemberNULL{Value: true}}},
		"set": &types.AttributeValueMemberSS{Value: []string{"x"}},
	}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"n":   marshal.Number("1.25"),
		"l":   []any{nil},
		"set": []string{"x"},
	}, got)
}

func TestTimeLayout_PreservesOrdering(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	times := []time.Time{
		base,
		base.Add(time.Nanosecond),
		base.Add(999 * time.Millisecond),
		base.Add(time.Second),
		base.Add(10 * time.Hour),
	}
	for i := 1; i < len(times); i++ {
		a, b := marshal.FormatTime(times[i-1]), marshal.FormatTime(times[i])
		assert.Len(t, a, len(b))
		assert.Less(t, a, b)
	}

	parsed, err := marshal.ParseTime(marshal.FormatTime(times[2]))
	require.NoError(t, err)
	assert.True(t, parsed.Equal(times[2]))

	last := time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC)
	av, err := marshal.Encode(last)
	require.NoError(t, err)
	assert.Len(t, av.(*types.AttributeValueMemberS).Value, len(marshal.FormatTime(base)))

	for _, out := range []time.Time{
		time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(-1, 1, 1, 0, 0, 0, 0, time.UTC),
	} {
		_, err := marshal.Encode(out)
		assert.ErrorIs(t, err, marshal.ErrNotRepresentable, "%v", out)
	}
}

func TestNumber_Canonical(t *testing.T) {
	t.Parallel()

	for _, in := range []marshal.Number{"1.50", "1.5", "15E-1", "0001.5"} {
		c, err := in.Canonical()
		require.NoError(t, err)
		assert.Equal(t, marshal.Number("1.5"), c)
	}
	_, err := marshal.Number("x").Canonical()
	assert.ErrorIs(t, err, marshal.ErrMalformedValue)
}

func TestNumber(t *testing.T) {
	t.Parallel()

	n, err := marshal.ParseNumber(" 1.50 ")
	require.NoError(t, err)
	assert.Equal(t, marshal.Number("1.50"), n)

	cmp, err := n.Cmp("1.5")
	require.NoError(t, err)
	assert.Zero(t, cmp)

	_, err = marshal.ParseNumber("abc")
	assert.ErrorIs(t, err, marshal.ErrMalformedValue)
	_, err = marshal.ParseNumber("NaN")
	assert.Error(t, err)

	f, err := marshal.NumberFromFloat(0.1)
	require.NoError(t, err)
	assert.Equal(t, marshal.Number("0.1"), f)
}
