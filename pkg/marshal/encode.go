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
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
)

var (
	timeType          = reflect.TypeOf(time.Time{})
	uuidType          = reflect.TypeOf(uuid.UUID{})
	numberType        = reflect.TypeOf(Number(""))
	decimalType       = reflect.TypeOf(apd.Decimal{})
	jsonNumberType    = reflect.TypeOf(json.Number(""))
	attributeType     = reflect.TypeOf((*types.AttributeValue)(nil)).Elem()
	marshalerType     = reflect.TypeOf((*attributevalue.Marshaler)(nil)).Elem()
	unmarshalerType   = reflect.TypeOf((*attributevalue.Unmarshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshalType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// Encode converte um valor Go em um AttributeValue.
// nil vira NULL; um conjunto vazio não tem representação e retorna EncodeError.
func Encode(v any) (types.AttributeValue, error) {
	rv := reflect.ValueOf(v)
	av, err := encodeValue("", rv, tagOptions{})
	if err != nil {
		return nil, err
	}
	if av == nil {
		if isNilValue(rv) {
			return &types.AttributeValueMemberNULL{Value: true}, nil
		}
		return nil, &EncodeError{Err: fmt.Errorf("%w: empty set", ErrNotRepresentable)}
	}
	return av, nil
}

// EncodeScalar converte um literal de expressão. Tem as mesmas regras do Encode.
func EncodeScalar(v any) (types.AttributeValue, error) {
	return Encode(v)
}

// EncodeItem converte uma struct ou mapa com chave string em um item do DynamoDB.
func EncodeItem(v any) (map[string]types.AttributeValue, error) {
	if m, ok := v.(map[string]types.AttributeValue); ok {
		return m, nil
	}
	av, err := encodeValue("", reflect.ValueOf(v), tagOptions{})
	if err != nil {
		return nil, err
	}
	m, ok := av.(*types.AttributeValueMemberM)
	if !ok {
		return nil, &EncodeError{Err: fmt.Errorf("%w: %T does not encode to a map", ErrTypeMismatch, v)}
	}
	return m.Value, nil
}

// EncodeSet força a conversão de uma slice ou mapa em SS, NS ou BS.
func EncodeSet(v any) (types.AttributeValue, error) {
	av, err := encodeValue("", reflect.ValueOf(v), tagOptions{asSet: true})
	if err != nil {
		return nil, err
	}
	switch av.(type) {
	case *types.AttributeValueMemberSS, *types.AttributeValueMemberNS, *types.AttributeValueMemberBS:
		return av, nil
	case nil:
		return nil, &EncodeError{Err: fmt.Errorf("%w: empty set", ErrNotRepresentable)}
	}
	return nil, &EncodeError{Err: fmt.Errorf("%w: %T does not encode to a set", ErrTypeMismatch, v)}
}

func isNilValue(rv reflect.Value) bool {
	if !rv.IsValid() {
		return true
	}
	if t := rv.Type(); t == numberType || t == jsonNumberType {
		return rv.String() == ""
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

// encodeValue retorna nil (sem erro) quando o valor deve ser omitido:
// ponteiros e interfaces nil, slices e mapas nil e conjuntos vazios.
func encodeValue(path string, rv reflect.Value, opts tagOptions) (types.AttributeValue, error) {
	for {
		if !rv.IsValid() {
			return nil, nil
		}
		if rv.Kind() == reflect.Interface {
			if rv.IsNil() {
				return nil, nil
			}
			rv = rv.Elem()
			continue
		}
		if rv.Type().Implements(attributeType) && rv.CanInterface() {
			if rv.Kind() == reflect.Pointer && rv.IsNil() {
				return nil, nil
			}
			return rv.Interface().(types.AttributeValue), nil
		}
		if rv.Type().Implements(marshalerType) && rv.CanInterface() {
			if rv.Kind() == reflect.Pointer && rv.IsNil() {
				return nil, nil
			}
			av, err := rv.Interface().(attributevalue.Marshaler).MarshalDynamoDBAttributeValue()
			if err != nil {
				return nil, &EncodeError{Path: path, Err: err}
			}
			return av, nil
		}
		if rv.Kind() != reflect.Pointer {
			break
		}
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}

	if rv.CanAddr() && rv.Addr().Type().Implements(marshalerType) && rv.Addr().CanInterface() {
		av, err := rv.Addr().Interface().(attributevalue.Marshaler).MarshalDynamoDBAttributeValue()
		if err != nil {
			return nil, &EncodeError{Path: path, Err: err}
		}
		return av, nil
	}

	switch rv.Type() {
	case timeType:
		t := rv.Interface().(time.Time)
		if err := checkTimeRange(t); err != nil {
			return nil, &EncodeError{Path: path, Err: err}
		}
		return &types.AttributeValueMemberS{Value: FormatTime(t)}, nil
	case uuidType:
		return &types.AttributeValueMemberS{Value: rv.Interface().(uuid.UUID).String()}, nil
	case numberType, jsonNumberType:
		// Number vazio é o valor zero do tipo: tratado como ausente.
		s := rv.String()
		if s == "" {
			return nil, nil
		}
		d, err := parseDecimal(s)
		if err == nil {
			err = checkRange(d)
		}
		if err != nil {
			return nil, &EncodeError{Path: path, Err: err}
		}
		return &types.AttributeValueMemberN{Value: s}, nil
	case decimalType:
		d := rv.Interface().(apd.Decimal)
		if d.Form != apd.Finite {
			return nil, &EncodeError{Path: path, Err: fmt.Errorf("%w: decimal %s", ErrNotRepresentable, d.String())}
		}
		if err := checkRange(&d); err != nil {
			return nil, &EncodeError{Path: path, Err: err}
		}
		return &types.AttributeValueMemberN{Value: d.Text('f')}, nil
	}

	if rv.Type().Implements(textMarshalerType) && rv.CanInterface() && rv.Kind() != reflect.String {
		text, err := rv.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return nil, &EncodeError{Path: path, Err: err}
		}
		return &types.AttributeValueMemberS{Value: string(text)}, nil
	}

	switch rv.Kind() {
	case reflect.String:
		return &types.AttributeValueMemberS{Value: rv.String()}, nil
	case reflect.Bool:
		return &types.AttributeValueMemberBOOL{Value: rv.Bool()}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", rv.Int())}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", rv.Uint())}, nil
	case reflect.Float32, reflect.Float64:
		s, err := formatFloat(rv.Float(), rv.Type().Bits())
		if err != nil {
			return nil, &EncodeError{Path: path, Err: err}
		}
		return &types.AttributeValueMemberN{Value: s}, nil
	case reflect.Slice:
		if rv.IsNil() {
			return nil, nil
		}
		fallthrough
	case reflect.Array:
		return encodeList(path, rv, opts)
	case reflect.Map:
		return encodeMap(path, rv, opts)
	case reflect.Struct:
		return encodeStruct(path, rv)
	}
	return nil, &EncodeError{Path: path, Err: fmt.Errorf("%w: %s", ErrUnsupportedType, rv.Type())}
}

func encodeList(path string, rv reflect.Value, opts tagOptions) (types.AttributeValue, error) {
	if rv.Type().Elem().Kind() == reflect.Uint8 && !opts.asSet {
		b := make([]byte, rv.Len())
		reflect.Copy(reflect.ValueOf(b), rv)
		return &types.AttributeValueMemberB{Value: b}, nil
	}
	elems := make([]reflect.Value, rv.Len())
	for i := range elems {
		elems[i] = rv.Index(i)
	}
	if opts.asSet {
		return encodeSet(path, elems)
	}
	list := make([]types.AttributeValue, 0, len(elems))
	for i, e := range elems {
		av, err := encodeValue(indexPath(path, i), e, tagOptions{})
		if err != nil {
			return nil, err
		}
		if av == nil {
			av = &types.AttributeValueMemberNULL{Value: true}
		}
		list = append(list, av)
	}
	return &types.AttributeValueMemberL{Value: list}, nil
}

func isSetMap(t reflect.Type, opts tagOptions) bool {
	elem := t.Elem()
	if elem.Kind() == reflect.Struct && elem.NumField() == 0 {
		return true
	}
	return opts.asSet && elem.Kind() == reflect.Bool
}

func encodeMap(path string, rv reflect.Value, opts tagOptions) (types.AttributeValue, error) {
	if rv.IsNil() {
		return nil, nil
	}
	if isSetMap(rv.Type(), opts) {
		keys := make([]reflect.Value, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			if iter.Value().Kind() == reflect.Bool && !iter.Value().Bool() {
				continue
			}
			keys = append(keys, iter.Key())
		}
		return encodeSet(path, keys)
	}
	if rv.Type().Key().Kind() != reflect.String {
		return nil, &EncodeError{Path: path, Err: fmt.Errorf("%w: map key %s", ErrUnsupportedType, rv.Type().Key())}
	}
	m := make(map[string]types.AttributeValue, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key().String()
		av, err := encodeValue(joinPath(path, k), iter.Value(), tagOptions{})
		if err != nil {
			return nil, err
		}
		if av == nil {
			av = &types.AttributeValueMemberNULL{Value: true}
		}
		m[k] = av
	}
	return &types.AttributeValueMemberM{Value: m}, nil
}

func encodeStruct(path string, rv reflect.Value) (types.AttributeValue, error) {
	fields := cachedFields(rv.Type())
	m := make(map[string]types.AttributeValue, len(fields))
	for _, f := range fields {
		fv, ok := fieldValue(rv, f.index, false)
		if !ok {
			continue
		}
		if f.opts.omitEmpty && isEmptyValue(fv) {
			continue
		}
		av, err := encodeValue(joinPath(path, f.name), fv, f.opts)
		if err != nil {
			return nil, err
		}
		if av == nil {
			if !f.opts.nullable {
				continue
			}
			av = &types.AttributeValueMemberNULL{Value: true}
		}
		m[f.name] = av
	}
	return &types.AttributeValueMemberM{Value: m}, nil
}

// encodeSet converte os elementos em um conjunto homogêneo, removendo
// duplicatas e ordenando para que a saída seja determinística.
func encodeSet(path string, elems []reflect.Value) (types.AttributeValue, error) {
	var (
		kind string
		ss   []string
		ns   []string
		bs   [][]byte
		seen = make(map[string]struct{}, len(elems))
	)
	for i, e := range elems {
		av, err := encodeValue(indexPath(path, i), e, tagOptions{})
		if err != nil {
			return nil, err
		}
		var k, key string
		switch x := av.(type) {
		case *types.AttributeValueMemberS:
			k, key = "S", x.Value
		case *types.AttributeValueMemberN:
			k = "N"
			if key, err = canonicalNumber(x.Value); err != nil {
				return nil, &EncodeError{Path: indexPath(path, i), Err: err}
			}
		case *types.AttributeValueMemberB:
			k, key = "B", string(x.Value)
		default:
			return nil, &EncodeError{Path: path, Err: fmt.Errorf("%w: set element of type %s", ErrTypeMismatch, memberName(av))}
		}
		if kind != "" && kind != k {
			return nil, &EncodeError{Path: path, Err: fmt.Errorf("%w: set mixes %s and %s elements", ErrTypeMismatch, kind, k)}
		}
		kind = k
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		switch x := av.(type) {
		case *types.AttributeValueMemberS:
			ss = append(ss, x.Value)
		case *types.AttributeValueMemberN:
			ns = append(ns, x.Value)
		case *types.AttributeValueMemberB:
			bs = append(bs, x.Value)
		}
	}

	switch kind {
	case "S":
		sort.Strings(ss)
		return &types.AttributeValueMemberSS{Value: ss}, nil
	case "N":
		sortNumbers(ns)
		return &types.AttributeValueMemberNS{Value: ns}, nil
	case "B":
		sort.Slice(bs, func(i, j int) bool { return bytes.Compare(bs[i], bs[j]) < 0 })
		return &types.AttributeValueMemberBS{Value: bs}, nil
	}
	return nil, nil
}

func sortNumbers(ns []string) {
	ds := make(map[string]*apd.Decimal, len(ns))
	for _, n := range ns {
		d, _ := parseDecimal(n)
		ds[n] = d
	}
	sort.SliceStable(ns, func(i, j int) bool {
		a, b := ds[ns[i]], ds[ns[j]]
		if a == nil || b == nil {
			return ns[i] < ns[j]
		}
		return a.Cmp(b) < 0
	})
}

func memberName(av types.AttributeValue) string {
	switch av.(type) {
	case *types.AttributeValueMemberS:
		return "S"
	case *types.AttributeValueMemberN:
		return "N"
	case *types.AttributeValueMemberB:
		return "B"
	case *types.AttributeValueMemberBOOL:
		return "BOOL"
	case *types.AttributeValueMemberNULL:
		return "NULL"
	case *types.AttributeValueMemberL:
		return "L"
	case *types.AttributeValueMemberM:
		return "M"
	case *types.AttributeValueMemberSS:
		return "SS"
	case *types.AttributeValueMemberNS:
		return "NS"
	case *types.AttributeValueMemberBS:
		return "BS"
	case nil:
		return "nil"
	}
	return fmt.Sprintf("%T", av)
}
