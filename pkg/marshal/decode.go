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
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
)

// Decode converte av para o valor apontado por target.
func Decode(av types.AttributeValue, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return ErrInvalidTarget
	}
	return decodeValue("", av, rv.Elem())
}

// DecodeItem converte um item do DynamoDB para a struct (ou mapa) apontada por target.
// Atributos ausentes mantêm o valor atual do campo.
func DecodeItem(item map[string]types.AttributeValue, target any) error {
	return Decode(&types.AttributeValueMemberM{Value: item}, target)
}

// DecodeScalar converte av para a representação Go genérica:
// S → string, N → Number, B → []byte, BOOL → bool, NULL → nil,
// L → []any, M → map[string]any, SS → []string, NS → []Number, BS → [][]byte.
func DecodeScalar(av types.AttributeValue) (any, error) {
	return decodeAny("", av)
}

func mismatch(path string, av types.AttributeValue, t reflect.Type) error {
	return &DecodeError{Path: path, Err: fmt.Errorf("%w: cannot decode %s into %s", ErrTypeMismatch, memberName(av), t)}
}

func decodeValue(path string, av types.AttributeValue, v reflect.Value) error {
	if av == nil {
		return &DecodeError{Path: path, Err: fmt.Errorf("%w: nil attribute value", ErrMalformedValue)}
	}
	if !v.CanSet() {
		return &DecodeError{Path: path, Err: ErrInvalidTarget}
	}
	if v.Kind() != reflect.Pointer && v.CanAddr() && v.Addr().Type().Implements(unmarshalerType) {
		if err := v.Addr().Interface().(attributevalue.Unmarshaler).UnmarshalDynamoDBAttributeValue(av); err != nil {
			return &DecodeError{Path: path, Err: err}
		}
		return nil
	}
	if _, ok := av.(*types.AttributeValueMemberNULL); ok {
		v.Set(reflect.Zero(v.Type()))
		return nil
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		return decodeValue(path, av, v.Elem())
	case reflect.Interface:
		if v.NumMethod() != 0 {
			if v.Type() == attributeType {
				v.Set(reflect.ValueOf(av))
				return nil
			}
			return &DecodeError{Path: path, Err: fmt.Errorf("%w: %s", ErrUnsupportedType, v.Type())}
		}
		x, err := decodeAny(path, av)
		if err != nil {
			return err
		}
		if x == nil {
			v.Set(reflect.Zero(v.Type()))
			return nil
		}
		v.Set(reflect.ValueOf(x))
		return nil
	}

	if handled, err := decodeSpecial(path, av, v); handled {
		return err
	}

	switch v.Kind() {
	case reflect.String:
		s, ok := av.(*types.AttributeValueMemberS)
		if !ok {
			return mismatch(path, av, v.Type())
		}
		v.SetString(s.Value)
	case reflect.Bool:
		b, ok := av.(*types.AttributeValueMemberBOOL)
		if !ok {
			return mismatch(path, av, v.Type())
		}
		v.SetBool(b.Value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := av.(*types.AttributeValueMemberN)
		if !ok {
			return mismatch(path, av, v.Type())
		}
		i, err := parseInt(n.Value)
		if err != nil {
			return &DecodeError{Path: path, Err: err}
		}
		if v.OverflowInt(i) {
			return &DecodeError{Path: path, Err: fmt.Errorf("%w: %s overflows %s", ErrTypeMismatch, n.Value, v.Type())}
		}
		v.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, ok := av.(*types.AttributeValueMemberN)
		if !ok {
			return mismatch(path, av, v.Type())
		}
		u, err := parseUint(n.Value)
		if err != nil {
			return &DecodeError{Path: path, Err: err}
		}
		if v.OverflowUint(u) {
			return &DecodeError{Path: path, Err: fmt.Errorf("%w: %s overflows %s", ErrTypeMismatch, n.Value, v.Type())}
		}
		v.SetUint(u)
	case reflect.Float32, reflect.Float64:
		n, ok := av.(*types.AttributeValueMemberN)
		if !ok {
			return mismatch(path, av, v.Type())
		}
		f, err := strconv.ParseFloat(n.Value, v.Type().Bits())
		if err != nil {
			return &DecodeError{Path: path, Err: fmt.Errorf("%w: invalid number %q", ErrMalformedValue, n.Value)}
		}
		v.SetFloat(f)
	case reflect.Slice:
		return decodeSlice(path, av, v)
	case reflect.Array:
		return decodeArray(path, av, v)
	case reflect.Map:
		return decodeMap(path, av, v)
	case reflect.Struct:
		m, ok := av.(*types.AttributeValueMemberM)
		if !ok {
			return mismatch(path, av, v.Type())
		}
		for _, f := range cachedFields(v.Type()) {
			x, ok := m.Value[f.name]
			if !ok {
				continue
			}
			fv, ok := fieldValue(v, f.index, true)
			if !ok {
				continue
			}
			if err := decodeValue(joinPath(path, f.name), x, fv); err != nil {
				return err
			}
		}
	default:
		return &DecodeError{Path: path, Err: fmt.Errorf("%w: %s", ErrUnsupportedType, v.Type())}
	}
	return nil
}

// decodeSpecial trata os tipos com representação própria no fio.
func decodeSpecial(path string, av types.AttributeValue, v reflect.Value) (bool, error) {
	switch v.Type() {
	case timeType:
		var (
			t   time.Time
			err error
		)
		switch x := av.(type) {
		case *types.AttributeValueMemberS:
			t, err = ParseTime(x.Value)
		case *types.AttributeValueMemberN:
			t, err = parseEpoch(x.Value)
		default:
			return true, mismatch(path, av, v.Type())
		}
		if err != nil {
			return true, &DecodeError{Path: path, Err: err}
		}
		v.Set(reflect.ValueOf(t))
		return true, nil
	case uuidType:
		s, ok := av.(*types.AttributeValueMemberS)
		if !ok {
			return true, mismatch(path, av, v.Type())
		}
		id, err := uuid.Parse(s.Value)
		if err != nil {
			return true, &DecodeError{Path: path, Err: fmt.Errorf("%w: %v", ErrMalformedValue, err)}
		}
		v.Set(reflect.ValueOf(id))
		return true, nil
	case numberType, jsonNumberType:
		n, ok := av.(*types.AttributeValueMemberN)
		if !ok {
			return true, mismatch(path, av, v.Type())
		}
		v.SetString(n.Value)
		return true, nil
	case decimalType:
		n, ok := av.(*types.AttributeValueMemberN)
		if !ok {
			return true, mismatch(path, av, v.Type())
		}
		d, err := parseDecimal(n.Value)
		if err != nil {
			return true, &DecodeError{Path: path, Err: err}
		}
		v.Addr().Interface().(*apd.Decimal).Set(d)
		return true, nil
	}

	if v.Kind() != reflect.String && v.CanAddr() && v.Addr().Type().Implements(textUnmarshalType) {
		s, ok := av.(*types.AttributeValueMemberS)
		if !ok {
			return true, mismatch(path, av, v.Type())
		}
		if err := v.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s.Value)); err != nil {
			return true, &DecodeError{Path: path, Err: err}
		}
		return true, nil
	}
	return false, nil
}

func decodeSlice(path string, av types.AttributeValue, v reflect.Value) error {
	t := v.Type()
	if t.Elem().Kind() == reflect.Uint8 {
		if b, ok := av.(*types.AttributeValueMemberB); ok {
			v.SetBytes(append([]byte(nil), b.Value...))
			return nil
		}
	}
	elems, err := listElements(av)
	if err != nil {
		return mismatch(path, av, t)
	}
	out := reflect.MakeSlice(t, len(elems), len(elems))
	for i, e := range elems {
		if err := decodeValue(indexPath(path, i), e, out.Index(i)); err != nil {
			return err
		}
	}
	v.Set(out)
	return nil
}

func decodeArray(path string, av types.AttributeValue, v reflect.Value) error {
	t := v.Type()
	if t.Elem().Kind() == reflect.Uint8 {
		if b, ok := av.(*types.AttributeValueMemberB); ok {
			if len(b.Value) > v.Len() {
				return &DecodeError{Path: path, Err: fmt.Errorf("%w: %d bytes into %s", ErrTypeMismatch, len(b.Value), t)}
			}
			reflect.Copy(v, reflect.ValueOf(b.Value))
			return nil
		}
	}
	elems, err := listElements(av)
	if err != nil {
		return mismatch(path, av, t)
	}
	if len(elems) > v.Len() {
		return &DecodeError{Path: path, Err: fmt.Errorf("%w: %d elements into %s", ErrTypeMismatch, len(elems), t)}
	}
	for i, e := range elems {
		if err := decodeValue(indexPath(path, i), e, v.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

// listElements expõe L e os três tipos de conjunto como uma lista de valores.
func listElements(av types.AttributeValue) ([]types.AttributeValue, error) {
	switch x := av.(type) {
	case *types.AttributeValueMemberL:
		return x.Value, nil
	case *types.AttributeValueMemberSS:
		out := make([]types.AttributeValue, len(x.Value))
		for i, s := range x.Value {
			out[i] = &types.AttributeValueMemberS{Value: s}
		}
		return out, nil
	case *types.AttributeValueMemberNS:
		out := make([]types.AttributeValue, len(x.Value))
		for i, n := range x.Value {
			out[i] = &types.AttributeValueMemberN{Value: n}
		}
		return out, nil
	case *types.AttributeValueMemberBS:
		out := make([]types.AttributeValue, len(x.Value))
		for i, b := range x.Value {
			out[i] = &types.AttributeValueMemberB{Value: b}
		}
		return out, nil
	}
	return nil, ErrTypeMismatch
}

func decodeMap(path string, av types.AttributeValue, v reflect.Value) error {
	t := v.Type()
	if m, ok := av.(*types.AttributeValueMemberM); ok {
		if t.Key().Kind() != reflect.String {
			return &DecodeError{Path: path, Err: fmt.Errorf("%w: map key %s", ErrUnsupportedType, t.Key())}
		}
		if v.IsNil() {
			v.Set(reflect.MakeMapWithSize(t, len(m.Value)))
		}
		for k, x := range m.Value {
			ev := reflect.New(t.Elem()).Elem()
			if err := decodeValue(joinPath(path, k), x, ev); err != nil {
				return err
			}
			v.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), ev)
		}
		return nil
	}

	elem := t.Elem()
	isStructSet := elem.Kind() == reflect.Struct && elem.NumField() == 0
	if !isStructSet && elem.Kind() != reflect.Bool {
		return mismatch(path, av, t)
	}
	elems, err := listElements(av)
	if err != nil {
		return mismatch(path, av, t)
	}
	if _, isList := av.(*types.AttributeValueMemberL); isList {
		return mismatch(path, av, t)
	}
	out := reflect.MakeMapWithSize(t, len(elems))
	member := reflect.New(elem).Elem()
	if elem.Kind() == reflect.Bool {
		member.SetBool(true)
	}
	for i, e := range elems {
		kv := reflect.New(t.Key()).Elem()
		if err := decodeValue(indexPath(path, i), e, kv); err != nil {
			return err
		}
		out.SetMapIndex(kv, member)
	}
	v.Set(out)
	return nil
}

func decodeAny(path string, av types.AttributeValue) (any, error) {
	switch x := av.(type) {
	case *types.AttributeValueMemberS:
		return x.Value, nil
	case *types.AttributeValueMemberN:
		return Number(x.Value), nil
	case *types.AttributeValueMemberB:
		return append([]byte(nil), x.Value...), nil
	case *types.AttributeValueMemberBOOL:
		return x.Value, nil
	case *types.AttributeValueMemberNULL:
		return nil, nil
	case *types.AttributeValueMemberL:
		out := make([]any, len(x.Value))
		for i, e := range x.Value {
			v, err := decodeAny(indexPath(path, i), e)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case *types.AttributeValueMemberM:
		out := make(map[string]any, len(x.Value))
		for k, e := range x.Value {
			v, err := decodeAny(joinPath(path, k), e)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	case *types.AttributeValueMemberSS:
		return append([]string(nil), x.Value...), nil
	case *types.AttributeValueMemberNS:
		out := make([]Number, len(x.Value))
		for i, n := range x.Value {
			out[i] = Number(n)
		}
		return out, nil
	case *types.AttributeValueMemberBS:
		out := make([][]byte, len(x.Value))
		for i, b := range x.Value {
			out[i] = append([]byte(nil), b...)
		}
		return out, nil
	}
	return nil, &DecodeError{Path: path, Err: fmt.Errorf("%w: %s", ErrMalformedValue, memberName(av))}
}
