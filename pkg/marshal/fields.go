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
	"reflect"
	"strings"
	"sync"
)

const tagName = "dynamodbav"

type tagOptions struct {
	omitEmpty bool
	nullable  bool
	asSet     bool
}

type field struct {
	name  string
	index []int
	opts  tagOptions
}

var fieldCache sync.Map // map[reflect.Type][]field

func parseTag(tag string) (string, tagOptions) {
	var opts tagOptions
	name, rest, _ := strings.Cut(tag, ",")
	for rest != "" {
		var opt string
		opt, rest, _ = strings.Cut(rest, ",")
		switch strings.TrimSpace(opt) {
		case "omitempty":
			opts.omitEmpty = true
		case "nullable":
			opts.nullable = true
		case "set", "stringset", "numberset", "binaryset":
			opts.asSet = true
		}
	}
	return strings.TrimSpace(name), opts
}

// cachedFields retorna os campos mapeáveis de t, com structs embutidas achatadas.
// Campos mais externos vencem conflitos de nome.
func cachedFields(t reflect.Type) []field {
	if f, ok := fieldCache.Load(t); ok {
		return f.([]field)
	}
	f, _ := fieldCache.LoadOrStore(t, typeFields(t))
	return f.([]field)
}

func typeFields(t reflect.Type) []field {
	var all []field
	var walk func(t reflect.Type, index []int, depth int)
	walk = func(t reflect.Type, index []int, depth int) {
		if depth > 8 {
			return
		}
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			tag := sf.Tag.Get(tagName)
			if tag == "-" {
				continue
			}
			name, opts := parseTag(tag)
			idx := make([]int, len(index)+1)
			copy(idx, index)
			idx[len(index)] = i

			if sf.Anonymous && name == "" {
				ft := sf.Type
				if ft.Kind() == reflect.Pointer {
					ft = ft.Elem()
				}
				if ft.Kind() == reflect.Struct {
					walk(ft, idx, depth+1)
					continue
				}
			}
			if !sf.IsExported() {
				continue
			}
			if name == "" {
				name = sf.Name
			}
			all = append(all, field{name: name, index: idx, opts: opts})
		}
	}
	walk(t, nil, 0)

	pos := make(map[string]int, len(all))
	out := make([]field, 0, len(all))
	for _, f := range all {
		if p, ok := pos[f.name]; ok {
			if len(f.index) < len(out[p].index) {
				out[p] = f
			}
			continue
		}
		pos[f.name] = len(out)
		out = append(out, f)
	}
	return out
}

// fieldValue percorre index a partir de v. Com alloc, ponteiros embutidos nil
// são alocados; sem alloc, um ponteiro nil no caminho retorna ok=false.
func fieldValue(v reflect.Value, index []int, alloc bool) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				if !alloc || !v.CanSet() {
					return reflect.Value{}, false
				}
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, true
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	case reflect.Struct:
		if v.Type() == timeType {
			return v.Interface().(interface{ IsZero() bool }).IsZero()
		}
	}
	return false
}
