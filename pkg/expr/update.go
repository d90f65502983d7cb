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
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/raywall/dynamodel/pkg/marshal"
)

// ActionKind identifica a cláusula de uma ação de update.
type ActionKind int

const (
	ActionSet ActionKind = iota
	ActionRemove
	ActionAdd
	ActionDelete
)

func (k ActionKind) String() string {
	switch k {
	case ActionSet:
		return "SET"
	case ActionRemove:
		return "REMOVE"
	case ActionAdd:
		return "ADD"
	case ActionDelete:
		return "DELETE"
	}
	return "UNKNOWN"
}

// Action é uma mutação sobre um atributo.
type Action struct {
	Ref   Ref
	Kind  ActionKind
	Value any
}

// Set atribui v ao caminho. Set com v nil equivale a Remove.
func Set(r Ref, v any) Action {
	if isNilLiteral(v) {
		return Remove(r)
	}
	return Action{Ref: r, Kind: ActionSet, Value: v}
}

// Remove apaga o atributo.
func Remove(r Ref) Action { return Action{Ref: r, Kind: ActionRemove} }

// Add soma um número ao atributo ou adiciona elementos a um conjunto.
func Add(r Ref, v any) Action { return Action{Ref: r, Kind: ActionAdd, Value: v} }

// Delete remove elementos de um conjunto.
func Delete(r Ref, v any) Action { return Action{Ref: r, Kind: ActionDelete, Value: v} }

func isNilLiteral(v any) bool {
	if v == nil {
		return true
	}
	av, err := marshal.Encode(v)
	if err != nil {
		return false
	}
	_, null := av.(*types.AttributeValueMemberNULL)
	return null
}

// CompileUpdate compila a lista de ações em uma update expression.
// As cláusulas saem na ordem SET, REMOVE, ADD, DELETE, cada uma com uma
// única palavra-chave e ações separadas por vírgula.
func CompileUpdate(actions []Action, opts ...Option) (Expression, error) {
	if len(actions) == 0 {
		return Expression{}, ErrNoUpdateActions
	}
	seen := make(map[string]struct{}, len(actions))
	for _, a := range actions {
		if !a.Ref.valid() {
			return Expression{}, fmt.Errorf("%w: empty or malformed attribute reference", ErrInvalidOperand)
		}
		if _, dup := seen[a.Ref.key()]; dup {
			return Expression{}, &DuplicateUpdatePathError{Path: a.Ref.String()}
		}
		seen[a.Ref.key()] = struct{}{}
	}

	o := buildOptions(opts)
	c := newCompiler(o.offset)
	clauses := make(map[ActionKind][]string, 4)
	for _, a := range actions {
		p, err := c.path(a.Ref)
		if err != nil {
			return Expression{}, err
		}
		switch a.Kind {
		case ActionSet:
			v, err := c.operand(a.Ref, a.Value)
			if err != nil {
				return Expression{}, err
			}
			clauses[ActionSet] = append(clauses[ActionSet], p+" = "+v)
		case ActionRemove:
			clauses[ActionRemove] = append(clauses[ActionRemove], p)
		case ActionAdd, ActionDelete:
			v, err := c.updateOperand(a)
			if err != nil {
				return Expression{}, err
			}
			clauses[a.Kind] = append(clauses[a.Kind], p+" "+v)
		default:
			return Expression{}, fmt.Errorf("%w: unknown action kind %d", ErrInvalidUpdateAction, a.Kind)
		}
	}

	var parts []string
	for _, k := range []ActionKind{ActionSet, ActionRemove, ActionAdd, ActionDelete} {
		if len(clauses[k]) > 0 {
			parts = append(parts, k.String()+" "+strings.Join(clauses[k], ", "))
		}
	}
	return c.result(strings.Join(parts, " ")), nil
}

// updateOperand valida o literal de ADD (número ou conjunto) e DELETE (conjunto).
func (c *compiler) updateOperand(a Action) (string, error) {
	placeholder := fmt.Sprintf(":v%d", c.next.Values)
	av, err := marshal.EncodeScalar(a.Value)
	if _, isList := av.(*types.AttributeValueMemberL); err != nil || isList {
		if set, serr := marshal.EncodeSet(a.Value); serr == nil {
			av, err = set, nil
		}
	}
	if err != nil {
		return "", &LiteralError{Placeholder: placeholder, Path: a.Ref.String(), Err: err}
	}
	switch av.(type) {
	case *types.AttributeValueMemberSS, *types.AttributeValueMemberNS, *types.AttributeValueMemberBS:
	case *types.AttributeValueMemberN:
		if a.Kind == ActionDelete {
			return "", &LiteralError{Placeholder: placeholder, Path: a.Ref.String(),
				Err: fmt.Errorf("%w: DELETE requires a set, got N", ErrInvalidUpdateAction)}
		}
	default:
		return "", &LiteralError{Placeholder: placeholder, Path: a.Ref.String(),
			Err: fmt.Errorf("%w: %s requires a number or set", ErrInvalidUpdateAction, a.Kind)}
	}
	return c.attributeValue(av), nil
}
