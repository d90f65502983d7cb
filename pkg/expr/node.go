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
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
)

// Op é um operador de comparação.
type Op int

const (
	OpEQ Op = iota
	OpNE
	OpLT
	OpLTE
	OpGT
	OpGTE
)

func (o Op) String() string {
	switch o {
	case OpEQ:
		return "="
	case OpNE:
		return "<>"
	case OpLT:
		return "<"
	case OpLTE:
		return "<="
	case OpGT:
		return ">"
	case OpGTE:
		return ">="
	}
	return "?"
}

func (o Op) valid() bool { return o >= OpEQ && o <= OpGTE }

// Node é um nó da árvore de expressão. O conjunto de implementações é fechado
// e todas são valores imutáveis.
type Node interface {
	node()
}

// Compare é "Left Op Right". Right é um literal ou uma Ref.
type Compare struct {
	Left  Ref
	Op    Op
	Right any
}

// Exists é attribute_exists(Ref).
type Exists struct{ Ref Ref }

// NotExists é attribute_not_exists(Ref).
type NotExists struct{ Ref Ref }

// BeginsWith é begins_with(Ref, Prefix).
type BeginsWith struct {
	Ref    Ref
	Prefix any
}

// Contains é contains(Ref, Value).
type Contains struct {
	Ref   Ref
	Value any
}

// Between é "Ref BETWEEN Low AND High".
type Between struct {
	Ref       Ref
	Low, High any
}

// In é "Ref IN (Values...)".
type In struct {
	Ref    Ref
	Values []any
}

// AndNode é a conjunção de dois nós.
type AndNode struct{ Left, Right Node }

// OrNode é a disjunção de dois nós.
type OrNode struct{ Left, Right Node }

// NotNode nega um nó.
type NotNode struct{ Child Node }

// RawNode carrega uma condição construída com o pacote expression do SDK.
type RawNode struct {
	Condition expression.ConditionBuilder
}

func (Compare) node()    {}
func (Exists) node()     {}
func (NotExists) node()  {}
func (BeginsWith) node() {}
func (Contains) node()   {}
func (Between) node()    {}
func (In) node()         {}
func (AndNode) node()    {}
func (OrNode) node()     {}
func (NotNode) node()    {}
func (RawNode) node()    {}

// And combina os nós em uma árvore associada à esquerda:
// And(a, b, c) == And(And(a, b), c).
func And(left, right Node, more ...Node) Node {
	n := Node(AndNode{Left: left, Right: right})
	for _, m := range more {
		n = AndNode{Left: n, Right: m}
	}
	return n
}

// Or combina os nós em uma árvore associada à esquerda.
func Or(left, right Node, more ...Node) Node {
	n := Node(OrNode{Left: left, Right: right})
	for _, m := range more {
		n = OrNode{Left: n, Right: m}
	}
	return n
}

// Not nega n.
func Not(n Node) Node { return NotNode{Child: n} }

// All conjuga uma lista de nós, ignorando nils. Retorna nil para lista vazia.
func All(nodes ...Node) Node {
	var out Node
	for _, n := range nodes {
		switch {
		case n == nil:
		case out == nil:
			out = n
		default:
			out = AndNode{Left: out, Right: n}
		}
	}
	return out
}

// Raw adapta uma condição do pacote expression do SDK. Os placeholders do
// SDK são renumerados para a tabela compartilhada durante a compilação.
func Raw(cond expression.ConditionBuilder) Node { return RawNode{Condition: cond} }
