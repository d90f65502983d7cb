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
package marshal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// MarshalJSONValue serializa av no formato JSON do DynamoDB ({"S":"x"}, {"N":"1"}, ...).
func MarshalJSONValue(av types.AttributeValue) ([]byte, error) {
	tree, err := toJSONTree(av)
	if err != nil {
		return nil, err
	}
	return json.Marshal(tree)
}

// MarshalJSONItem serializa um item completo no formato JSON do DynamoDB,
// como {"id":{"S":"1"},"total":{"N":"10.5"}}.
func MarshalJSONItem(item map[string]types.AttributeValue) ([]byte, error) {
	tree := make(map[string]any, len(item))
	for k, av := range item {
		t, err := toJSONTree(av)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		tree[k] = t
	}
	return json.Marshal(tree)
}

// UnmarshalJSONValue é o inverso de MarshalJSONValue.
func UnmarshalJSONValue(data []byte) (types.AttributeValue, error) {
	return fromJSON(data)
}

// UnmarshalJSONItem é o inverso de MarshalJSONItem.
func UnmarshalJSONItem(data []byte) (map[string]types.AttributeValue, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedValue, err)
	}
	item := make(map[string]types.AttributeValue, len(raw))
	for k, v := range raw {
		av, err := fromJSON(v)
		if err != nil {
			return nil, err
		}
		item[k] = av
	}
	return item, nil
}

func toJSONTree(av types.AttributeValue) (map[string]any, error) {
	switch x := av.(type) {
	case *types.AttributeValueMemberS:
		return map[string]any{"S": x.Value}, nil
	case *types.AttributeValueMemberN:
		return map[string]any{"N": x.Value}, nil
	case *types.AttributeValueMemberB:
		return map[string]any{"B": x.Value}, nil
	case *types.AttributeValueMemberBOOL:
		return map[string]any{"BOOL": x.Value}, nil
	case *types.AttributeValueMemberNULL:
		return map[string]any{"NULL": true}, nil
	case *types.AttributeValueMemberSS:
		return map[string]any{"SS": x.Value}, nil
	case *types.AttributeValueMemberNS:
		return map[string]any{"NS": x.Value}, nil
	case *types.AttributeValueMemberBS:
		return map[string]any{"BS": x.Value}, nil
	case *types.AttributeValueMemberL:
		list := make([]any, len(x.Value))
		for i, e := range x.Value {
			t, err := toJSONTree(e)
			if err != nil {
				return nil, err
			}
			list[i] = t
		}
		return map[string]any{"L": list}, nil
	case *types.AttributeValueMemberM:
		m := make(map[string]any, len(x.Value))
		for k, e := range x.Value {
			t, err := toJSONTree(e)
			if err != nil {
				return nil, err
			}
			m[k] = t
		}
		return map[string]any{"M": m}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrMalformedValue, memberName(av))
}

func fromJSON(data []byte) (types.AttributeValue, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedValue, err)
	}
	if len(raw) != 1 {
		return nil, fmt.Errorf("%w: expected exactly one type key, got %d", ErrMalformedValue, len(raw))
	}
	for tag, body := range raw {
		var err error
		switch tag {
		case "S":
			var s string
			if err = json.Unmarshal(body, &s); err == nil {
				return &types.AttributeValueMemberS{Value: s}, nil
			}
		case "N":
			var s string
			if err = json.Unmarshal(body, &s); err == nil {
				if _, err = parseDecimal(s); err == nil {
					return &types.AttributeValueMemberN{Value: s}, nil
				}
			}
		case "B":
			var b []byte
			if err = json.Unmarshal(body, &b); err == nil {
				return &types.AttributeValueMemberB{Value: b}, nil
			}
		case "BOOL":
			var b bool
			if err = json.Unmarshal(body, &b); err == nil {
				return &types.AttributeValueMemberBOOL{Value: b}, nil
			}
		case "NULL":
			return &types.AttributeValueMemberNULL{Value: true}, nil
		case "SS":
			var ss []string
			if err = json.Unmarshal(body, &ss); err == nil {
				return &types.AttributeValueMemberSS{Value: ss}, nil
			}
		case "NS":
			var ns []string
			if err = json.Unmarshal(body, &ns); err == nil {
				return &types.AttributeValueMemberNS{Value: ns}, nil
			}
		case "BS":
			var bs [][]byte
			if err = json.Unmarshal(body, &bs); err == nil {
				return &types.AttributeValueMemberBS{Value: bs}, nil
			}
		case "L":
			var items []json.RawMessage
			if err = json.Unmarshal(body, &items); err == nil {
				list := make([]types.AttributeValue, len(items))
				for i, it := range items {
					if list[i], err = fromJSON(it); err != nil {
						return nil, err
					}
				}
				return &types.AttributeValueMemberL{Value: list}, nil
			}
		case "M":
			var fields map[string]json.RawMessage
			if err = json.Unmarshal(body, &fields); err == nil {
				m := make(map[string]types.AttributeValue, len(fields))
				for k, f := range fields {
					if m[k], err = fromJSON(f); err != nil {
						return nil, err
					}
				}
				return &types.AttributeValueMemberM{Value: m}, nil
			}
		default:
			return nil, fmt.Errorf("%w: unknown type key %q", ErrMalformedValue, tag)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedValue, tag, err)
	}
	return nil, ErrMalformedValue
}

// Key retorna uma chave canônica para o conteúdo de av. Dois valores com a
// mesma chave são iguais no DynamoDB: números são comparados pelo valor e
// conjuntos independem da ordem.
func Key(av types.AttributeValue) string {
	b, err := json.Marshal(canonicalTree(av))
	if err != nil {
		return fmt.Sprintf("%#v", av)
	}
	return string(b)
}

// Equal informa se a e b representam o mesmo valor.
func Equal(a, b types.AttributeValue) bool {
	return Key(a) == Key(b)
}

func canonicalTree(av types.AttributeValue) any {
	switch x := av.(type) {
	case *types.AttributeValueMemberN:
		n, err := canonicalNumber(x.Value)
		if err != nil {
			n = x.Value
		}
		return map[string]any{"N": n}
	case *types.AttributeValueMemberSS:
		ss := append([]string(nil), x.Value...)
		sort.Strings(ss)
		return map[string]any{"SS": ss}
	case *types.AttributeValueMemberNS:
		ns := make([]string, len(x.Value))
		for i, n := range x.Value {
			if c, err := canonicalNumber(n); err == nil {
				ns[i] = c
			} else {
				ns[i] = n
			}
		}
		sort.Strings(ns)
		return map[string]any{"NS": ns}
	case *types.AttributeValueMemberBS:
		bs := append([][]byte(nil), x.Value...)
		sort.Slice(bs, func(i, j int) bool { return bytes.Compare(bs[i], bs[j]) < 0 })
		return map[string]any{"BS": bs}
	case *types.AttributeValueMemberL:
		list := make([]any, len(x.Value))
		for i, e := range x.Value {
			list[i] = canonicalTree(e)
		}
		return map[string]any{"L": list}
	case *types.AttributeValueMemberM:
		m := make(map[string]any, len(x.Value))
		for k, e := range x.Value {
			m[k] = canonicalTree(e)
		}
		return map[string]any{"M": m}
	}
	t, err := toJSONTree(av)
	if err != nil {
		return fmt.Sprintf("%#v", av)
	}
	return t
}
