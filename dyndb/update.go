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
package dyndb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/raywall/dynamodel/pkg/expr"
	"github.com/raywall/dynamodel/pkg/marshal"
)

// UpdateBuilder acumula as ações de um UpdateItem. Como o QueryBuilder,
// pertence a um único chamador.
type UpdateBuilder[T any] struct {
	table        *Table[T]
	hashKey      any
	sortKey      any
	actions      []expr.Action
	condition    expr.Node
	returnValues types.ReturnValue

	err error
}

func newUpdateBuilder[T any](t *Table[T], hashKey, sortKey any) *UpdateBuilder[T] {
	return &UpdateBuilder[T]{
		table:        t,
		hashKey:      hashKey,
		sortKey:      sortKey,
		returnValues: types.ReturnValueAllNew,
	}
}

// Set atribui value ao atributo. value nil remove o atributo.
func (ub *UpdateBuilder[T]) Set(ref expr.Ref, value any) *UpdateBuilder[T] {
	ub.actions = append(ub.actions, expr.Set(ref, value))
	return ub
}

// Remove remove o atributo.
func (ub *UpdateBuilder[T]) Remove(ref expr.Ref) *UpdateBuilder[T] {
	ub.actions = append(ub.actions, expr.Remove(ref))
	return ub
}

// Add soma um número ou adiciona elementos a um conjunto.
func (ub *UpdateBuilder[T]) Add(ref expr.Ref, value any) *UpdateBuilder[T] {
	ub.actions = append(ub.actions, expr.Add(ref, value))
	return ub
}

// Delete remove elementos de um conjunto.
func (ub *UpdateBuilder[T]) Delete(ref expr.Ref, value any) *UpdateBuilder[T] {
	ub.actions = append(ub.actions, expr.Delete(ref, value))
	return ub
}

// Actions adiciona ações já construídas.
func (ub *UpdateBuilder[T]) Actions(actions ...expr.Action) *UpdateBuilder[T] {
	ub.actions = append(ub.actions, actions...)
	return ub
}

// If só aplica o update se a condição for verdadeira. Chamadas repetidas
// são combinadas com AND.
func (ub *UpdateBuilder[T]) If(cond expr.Node) *UpdateBuilder[T] {
	ub.condition = expr.All(ub.condition, cond)
	return ub
}

// ReturnValues escolhe o que o DynamoDB devolve. O padrão é ALL_NEW.
func (ub *UpdateBuilder[T]) ReturnValues(rv types.ReturnValue) *UpdateBuilder[T] {
	ub.returnValues = rv
	return ub
}

// Plan valida e compila o update. A condição é compilada depois das ações,
// continuando a numeração dos placeholders.
func (ub *UpdateBuilder[T]) Plan() (UpdateRequest, error) {
	if ub.err != nil {
		return UpdateRequest{}, ub.err
	}
	cfg := ub.table.cfg
	key, err := ub.table.key(ub.hashKey, ub.sortKey)
	if err != nil {
		return UpdateRequest{}, err
	}
	for _, a := range ub.actions {
		if name := a.Ref.Root(); !a.Ref.IsNested() && (name == cfg.HashKey || name == cfg.SortKey) {
			return UpdateRequest{}, fmt.Errorf("%w: %q", ErrKeyAttributeUpdate, name)
		}
	}

	upd, err := expr.CompileUpdate(ub.actions)
	if err != nil {
		return UpdateRequest{}, err
	}
	req := UpdateRequest{
		Table:        cfg.TableName,
		Key:          key,
		Update:       upd.Text,
		Names:        map[string]string{},
		Values:       map[string]types.AttributeValue{},
		ReturnValues: ub.returnValues,
	}
	if err := upd.MergeInto(req.Names, req.Values); err != nil {
		return UpdateRequest{}, err
	}

	if ub.condition != nil {
		cond, err := expr.Compile(ub.condition, expr.ModeCondition, expr.WithOffset(upd.Next))
		if err != nil {
			return UpdateRequest{}, err
		}
		if err := cond.MergeInto(req.Names, req.Values); err != nil {
			return UpdateRequest{}, err
		}
		req.Condition = cond.Text
	}
	return req, nil
}

// Exec executa o update. Retorna o item decodificado quando ReturnValues
// devolve atributos, ou nil. Com UPDATED_NEW/UPDATED_OLD só os atributos
// alterados são preenchidos; em tabelas polimórficas o retorno é nil.
func (ub *UpdateBuilder[T]) Exec(ctx context.Context) (*T, error) {
	req, err := ub.Plan()
	if err != nil {
		return nil, err
	}

	t := ub.table
	t.log.Info().
		Str("operation", "update").
		Str("key", redactKey(req.Key)).
		Bool("has_condition", req.Condition != "").
		Msg("dynamodb request")
	t.log.Debug().
		Str("operation", "update").
		Str("update", req.Update).
		Str("condition", req.Condition).
		Msg("compiled expressions")

	item, err := t.tr.UpdateItem(ctx, req)
	if err != nil {
		return nil, t.fail("update", err)
	}
	if len(item) == 0 {
		return nil, nil
	}
	if !ub.returnsFullItem() {
		// atributos parciais não trazem o discriminador
		if t.registry != nil {
			return nil, nil
		}
		var v T
		if err := marshal.DecodeItem(item, &v); err != nil {
			return nil, fmt.Errorf("dyndb: update: %w", err)
		}
		return &v, nil
	}
	v, err := t.decode(item)
	if err != nil {
		return nil, fmt.Errorf("dyndb: update: %w", err)
	}
	return &v, nil
}

func (ub *UpdateBuilder[T]) returnsFullItem() bool {
	return ub.returnValues == types.ReturnValueAllNew || ub.returnValues == types.ReturnValueAllOld
}
