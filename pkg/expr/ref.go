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
package expr

import (
	"strconv"
	"strings"
)

type segment struct {
	name  string
	index int
	isIdx bool
}

// Ref referencia um atributo, opcionalmente com um caminho aninhado
// (ex: profile.addresses[0].city). Ref é imutável: Into e At retornam uma
// nova referência.
type Ref struct {
	path []segment
}

// Name cria a referência para um atributo de primeiro nível.
func Name(name string) Ref {
	return Ref{path: []segment{{name: name}}}
}

// Into navega para a chave de um mapa aninhado.
func (r Ref) Into(key string) Ref {
	return r.extend(segment{name: key})
}

// At navega para o índice de uma lista.
func (r Ref) At(index int) Ref {
	return r.extend(segment{index: index, isIdx: true})
}

func (r Ref) extend(s segment) Ref {
	p := make([]segment, len(r.path), len(r.path)+1)
	copy(p, r.path)
	return Ref{path: append(p, s)}
}

// Root retorna o nome do atributo de primeiro nível.
func (r Ref) Root() string {
	if len(r.path) == 0 {
		return ""
	}
	return r.path[0].name
}

// IsNested informa se a referência aponta para dentro de um atributo.
func (r Ref) IsNested() bool { return len(r.path) > 1 }

// IsZero informa se a referência está vazia.
func (r Ref) IsZero() bool { return len(r.path) == 0 || (len(r.path) == 1 && r.path[0].name == "") }

// SamePath compara duas referências pelo caminho completo.
func (r Ref) SamePath(other Ref) bool {
	if len(r.path) != len(other.path) {
		return false
	}
	for i := range r.path {
		if r.path[i] != other.path[i] {
			return false
		}
	}
	return true
}

// String retorna o caminho em notação de documento: "a.b[2]".
func (r Ref) String() string {
	var sb strings.Builder
	for i, s := range r.path {
		if s.isIdx {
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(s.index))
			sb.WriteByte(']')
			continue
		}
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(s.name)
	}
	return sb.String()
}

// key identifica o caminho sem ambiguidade, mesmo com nomes contendo "." ou "[".
func (r Ref) key() string {
	var sb strings.Builder
	for _, s := range r.path {
		if s.isIdx {
			sb.WriteString("\x00[")
			sb.WriteString(strconv.Itoa(s.index))
			continue
		}
		sb.WriteString("\x00.")
		sb.WriteString(s.name)
	}
	return sb.String()
}

func (r Ref) valid() bool {
	if len(r.path) == 0 || r.path[0].isIdx {
		return false
	}
	for _, s := range r.path {
		if !s.isIdx && s.name == "" {
			return false
		}
		if s.isIdx && s.index < 0 {
			return false
		}
	}
	return true
}

// Equal constrói a condição "r = v". v pode ser outra Ref.
func (r Ref) Equal(v any) Node { return Compare{Left: r, Op: OpEQ, Right: v} }

// NotEqual constrói a condição "r <> v".
func (r Ref) NotEqual(v any) Node { return Compare{Left: r, Op: OpNE, Right: v} }

// LessThan constrói a condição "r < v".
func (r Ref) LessThan(v any) Node { return Compare{Left: r, Op: OpLT, Right: v} }

// LessThanEqual constrói a condição "r <= v".
func (r Ref) LessThanEqual(v any) Node { return Compare{Left: r, Op: OpLTE, Right: v} }

// GreaterThan constrói a condição "r > v".
func (r Ref) GreaterThan(v any) Node { return Compare{Left: r, Op: OpGT, Right: v} }

// GreaterThanEqual constrói a condição "r >= v".
func (r Ref) GreaterThanEqual(v any) Node { return Compare{Left: r, Op: OpGTE, Right: v} }

// Compare constrói uma comparação com o operador informado.
func (r Ref) Compare(op Op, v any) Node { return Compare{Left: r, Op: op, Right: v} }

// BeginsWith constrói begins_with(r, prefix).
func (r Ref) BeginsWith(prefix any) Node { return BeginsWith{Ref: r, Prefix: prefix} }

// Contains constrói contains(r, v).
func (r Ref) Contains(v any) Node { return Contains{Ref: r, Value: v} }

// Between constrói "r BETWEEN low AND high". low > high é aceito e
// simplesmente não casa com nenhum item.
func (r Ref) Between(low, high any) Node { return Between{Ref: r, Low: low, High: high} }

// In constrói "r IN (v1, v2, ...)".
func (r Ref) In(values ...any) Node {
	return In{Ref: r, Values: append([]any(nil), values...)}
}

// Exists constrói attribute_exists(r).
func (r Ref) Exists() Node { return Exists{Ref: r} }

// NotExists constrói attribute_not_exists(r).
func (r Ref) NotExists() Node { return NotExists{Ref: r} }
