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
	"errors"
	"fmt"
	"iter"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/raywall/dynamodel/pkg/expr"
	"github.com/raywall/dynamodel/pkg/metrics"
)

// keyPart gera um trecho da key condition a partir das chaves do índice
// selecionado, resolvidas apenas no Plan.
type keyPart func(hashKey, sortKey string) (expr.Node, error)

// QueryBuilder é o builder fluente de Query e Scan.
//
// Um builder pertence a um único chamador: usá-lo a partir de várias
// goroutines ao mesmo tempo tem comportamento indefinido. O primeiro erro
// de configuração fica guardado e é retornado pelo Plan e pelas operações
// terminais.
type QueryBuilder[T any] struct {
	table *Table[T]
	scan  bool

	index      string
	keyParts   []keyPart
	filters    []expr.Node
	kind       string
	projection []expr.Ref
	limit      int32
	reverse    bool
	consistent bool
	start      Cursor

	err error
}

func newQueryBuilder[T any](t *Table[T], scan bool) *QueryBuilder[T] {
	return &QueryBuilder[T]{table: t, scan: scan}
}

func (qb *QueryBuilder[T]) fail(err error) *QueryBuilder[T] {
	if qb.err == nil {
		qb.err = err
	}
	return qb
}

// === MÉTODOS FLUENTES ===

// Index consulta um índice declarado em TableConfig.Indexes.
func (qb *QueryBuilder[T]) Index(name string) *QueryBuilder[T] {
	if qb.err != nil {
		return qb
	}
	if _, ok := qb.table.cfg.Index(name); !ok {
		return qb.fail(fmt.Errorf("%w: %q", ErrUnknownIndex, name))
	}
	qb.index = name
	return qb
}

func (qb *QueryBuilder[T]) addKey(part keyPart) *QueryBuilder[T] {
	if qb.err != nil {
		return qb
	}
	if qb.scan {
		return qb.fail(ErrKeyConditionOnScan)
	}
	qb.keyParts = append(qb.keyParts, part)
	return qb
}

// KeyEqual adiciona `key = value` à key condition.
func (qb *QueryBuilder[T]) KeyEqual(key string, value any) *QueryBuilder[T] {
	return qb.addKey(func(string, string) (expr.Node, error) {
		return expr.Name(key).Equal(value), nil
	})
}

// KeyBeginsWith adiciona `begins_with(key, prefix)` à key condition.
func (qb *QueryBuilder[T]) KeyBeginsWith(key, prefix string) *QueryBuilder[T] {
	return qb.addKey(func(string, string) (expr.Node, error) {
		return expr.Name(key).BeginsWith(prefix), nil
	})
}

// KeyCondition adiciona um nó arbitrário à key condition. A forma final é
// validada no Plan.
func (qb *QueryBuilder[T]) KeyCondition(cond expr.Node) *QueryBuilder[T] {
	return qb.addKey(func(string, string) (expr.Node, error) {
		return cond, nil
	})
}

// PartitionEqual compara a partition key do índice selecionado.
func (qb *QueryBuilder[T]) PartitionEqual(value any) *QueryBuilder[T] {
	return qb.addKey(func(hashKey, _ string) (expr.Node, error) {
		return expr.Name(hashKey).Equal(value), nil
	})
}

func sortPart(build func(sort expr.Ref) expr.Node) keyPart {
	return func(_, sortKey string) (expr.Node, error) {
		if sortKey == "" {
			return nil, &expr.InvalidKeyConditionError{Reason: "index has no sort key"}
		}
		return build(expr.Name(sortKey)), nil
	}
}

// SortEqual compara a sort key do índice selecionado.
func (qb *QueryBuilder[T]) SortEqual(value any) *QueryBuilder[T] {
	return qb.addKey(sortPart(func(s expr.Ref) expr.Node { return s.Equal(value) }))
}

// SortCompare aplica op à sort key. expr.OpNE não é aceito em key conditions.
func (qb *QueryBuilder[T]) SortCompare(op expr.Op, value any) *QueryBuilder[T] {
	return qb.addKey(sortPart(func(s expr.Ref) expr.Node { return s.Compare(op, value) }))
}

// SortBeginsWith filtra a sort key pelo prefixo.
func (qb *QueryBuilder[T]) SortBeginsWith(prefix string) *QueryBuilder[T] {
	return qb.addKey(sortPart(func(s expr.Ref) expr.Node { return s.BeginsWith(prefix) }))
}

// SortBetween filtra a sort key no intervalo fechado [low, high].
func (qb *QueryBuilder[T]) SortBetween(low, high any) *QueryBuilder[T] {
	return qb.addKey(sortPart(func(s expr.Ref) expr.Node { return s.Between(low, high) }))
}

// Filter adiciona um filtro. Filtros são combinados com AND.
func (qb *QueryBuilder[T]) Filter(cond expr.Node) *QueryBuilder[T] {
	if qb.err != nil || cond == nil {
		return qb
	}
	qb.filters = append(qb.filters, cond)
	return qb
}

// FilterEqual adiciona o filtro `field = value`.
func (qb *QueryBuilder[T]) FilterEqual(field string, value any) *QueryBuilder[T] {
	return qb.Filter(expr.Name(field).Equal(value))
}

// FilterContains adiciona o filtro `contains(field, value)`.
func (qb *QueryBuilder[T]) FilterContains(field string, value any) *QueryBuilder[T] {
	return qb.Filter(expr.Name(field).Contains(value))
}

// OfKind restringe o resultado aos itens com o discriminador informado.
// Só vale para tabelas polimórficas.
func (qb *QueryBuilder[T]) OfKind(value string) *QueryBuilder[T] {
	if qb.err != nil {
		return qb
	}
	if qb.table.registry == nil {
		return qb.fail(ErrNotPolymorphic)
	}
	qb.kind = value
	return qb
}

// Limit limita o total de itens entregues pela iteração. Também é usado
// como Limit de cada página.
func (qb *QueryBuilder[T]) Limit(n int32) *QueryBuilder[T] {
	if n > 0 {
		qb.limit = n
	}
	return qb
}

// Reverse inverte a ordem da sort key (ScanIndexForward=false). Ignorado no Scan.
func (qb *QueryBuilder[T]) Reverse() *QueryBuilder[T] {
	qb.reverse = true
	return qb
}

// Consistent pede leitura fortemente consistente.
func (qb *QueryBuilder[T]) Consistent() *QueryBuilder[T] {
	qb.consistent = true
	return qb
}

// Project limita os atributos retornados. Em tabelas polimórficas o
// discriminador é sempre incluído.
func (qb *QueryBuilder[T]) Project(refs ...expr.Ref) *QueryBuilder[T] {
	qb.projection = append(qb.projection, refs...)
	return qb
}

// StartFrom continua a partir de um cursor retornado por Page.
func (qb *QueryBuilder[T]) StartFrom(c Cursor) *QueryBuilder[T] {
	qb.start = c
	return qb
}

// LastKey continua a partir de um token gerado por Cursor.String.
func (qb *QueryBuilder[T]) LastKey(token string) *QueryBuilder[T] {
	if qb.err != nil {
		return qb
	}
	c, err := ParseCursor(token)
	if err != nil {
		return qb.fail(err)
	}
	qb.start = c
	return qb
}

// === PLANEJAMENTO ===

// Plan compila a key condition, o filtro e a projeção em uma Request.
// As tabelas de placeholders dos fragmentos são mescladas sem renumeração.
func (qb *QueryBuilder[T]) Plan() (Request, error) {
	if qb.err != nil {
		return Request{}, qb.err
	}
	cfg := qb.table.cfg
	hashKey, sortKey, err := cfg.keySchema(qb.index)
	if err != nil {
		return Request{}, err
	}

	req := Request{
		Table:          cfg.TableName,
		Index:          qb.index,
		Scan:           qb.scan,
		Limit:          qb.limit,
		ScanForward:    !qb.reverse,
		ConsistentRead: qb.consistent || (cfg.ConsistentRead && qb.allowsConsistentRead()),
		StartKey:       qb.start.Key(),
		Names:          map[string]string{},
		Values:         map[string]types.AttributeValue{},
	}

	var next expr.Offset
	keyNode, err := qb.keyNode(hashKey, sortKey)
	if err != nil {
		return Request{}, err
	}
	switch {
	case qb.scan && keyNode != nil:
		return Request{}, ErrKeyConditionOnScan
	case !qb.scan && keyNode == nil:
		return Request{}, ErrMissingKeyCondition
	case keyNode != nil:
		kc, err := expr.Compile(keyNode, expr.ModeKeyCondition, expr.WithKeySchema(hashKey, sortKey))
		if err != nil {
			return Request{}, err
		}
		if err := kc.MergeInto(req.Names, req.Values); err != nil {
			return Request{}, err
		}
		req.KeyCondition = kc.Text
		next = kc.Next
	}

	if filter := qb.filterNode(); filter != nil {
		f, err := expr.Compile(filter, expr.ModeFilter, expr.WithOffset(next))
		if err != nil {
			return Request{}, err
		}
		if err := f.MergeInto(req.Names, req.Values); err != nil {
			return Request{}, err
		}
		req.Filter = f.Text
		next = f.Next
	}

	if len(qb.projection) > 0 {
		refs := qb.projection
		if qb.table.registry != nil {
			refs = append(refs[:len(refs):len(refs)], expr.Name(cfg.Discriminator))
		}
		p, err := expr.CompileProjection(refs, expr.WithOffset(next))
		if err != nil {
			return Request{}, err
		}
		if err := p.MergeInto(req.Names, req.Values); err != nil {
			return Request{}, err
		}
		req.Projection = p.Text
	}
	return req, nil
}

func (qb *QueryBuilder[T]) keyNode(hashKey, sortKey string) (expr.Node, error) {
	nodes := make([]expr.Node, 0, len(qb.keyParts))
	for _, part := range qb.keyParts {
		n, err := part(hashKey, sortKey)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return expr.All(nodes...), nil
}

func (qb *QueryBuilder[T]) filterNode() expr.Node {
	nodes := qb.filters
	if qb.kind != "" {
		kind := expr.Name(qb.table.cfg.Discriminator).Equal(qb.kind)
		nodes = append(nodes[:len(nodes):len(nodes)], kind)
	}
	return expr.All(nodes...)
}

// allowsConsistentRead é falso para GSIs, que não suportam leitura consistente.
func (qb *QueryBuilder[T]) allowsConsistentRead() bool {
	if qb.index == "" {
		return true
	}
	idx, _ := qb.table.cfg.Index(qb.index)
	return idx.Local
}

// === EXECUÇÃO ===

func (qb *QueryBuilder[T]) operation() string {
	if qb.scan {
		return "scan"
	}
	return "query"
}

// fetch executa uma única página.
func (qb *QueryBuilder[T]) fetch(ctx context.Context, req Request, page int) (PageOutput, error) {
	t := qb.table
	op := qb.operation()

	t.log.Info().
		Str("operation", op).
		Str("index", req.Index).
		Int("page", page).
		Bool("has_filter", req.Filter != "").
		Msg("dynamodb request")
	t.log.Debug().
		Str("operation", op).
		Str("key_condition", req.KeyCondition).
		Str("filter", req.Filter).
		Str("projection", req.Projection).
		Msg("compiled expressions")

	var (
		out PageOutput
		err error
	)
	if qb.scan {
		out, err = t.tr.Scan(ctx, req)
	} else {
		out, err = t.tr.Query(ctx, req)
	}
	if err != nil {
		return PageOutput{}, t.fail(op, err)
	}
	t.record(metrics.EventPageFetched, 1, op)
	t.record(metrics.EventPageItems, float64(len(out.Items)), op)
	return out, nil
}

// All itera sobre todos os itens, buscando as páginas sob demanda e na
// ordem dos tokens de continuação. Cada chamada recomeça do início (ou do
// cursor de StartFrom).
//
// Um item que não pode ser decodificado é entregue como *ItemError sem
// interromper a página. Erros de planejamento, do transport ou do contexto
// encerram a sequência.
func (qb *QueryBuilder[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		req, err := qb.Plan()
		if err != nil {
			yield(zero, err)
			return
		}

		remaining := qb.limit
		index := 0
		for page := 0; ; page++ {
			if err := ctx.Err(); err != nil {
				yield(zero, err)
				return
			}
			if qb.limit > 0 {
				req.Limit = remaining
			}
			out, err := qb.fetch(ctx, req, page)
			if err != nil {
				yield(zero, err)
				return
			}

			for _, item := range out.Items {
				v, err := qb.table.decode(item)
				if err != nil {
					qb.table.record(metrics.EventDecodeFailed, 1, qb.operation())
					if !yield(zero, &ItemError{Index: index, Err: err}) {
						return
					}
				} else if !yield(v, nil) {
					return
				}
				index++
				if qb.limit > 0 {
					remaining--
					if remaining == 0 {
						return
					}
				}
			}

			if len(out.LastKey) == 0 {
				return
			}
			req.StartKey = out.LastKey
		}
	}
}

// Page é uma única página decodificada.
type Page[T any] struct {
	Items  []T
	Errors []*ItemError
	// Next é vazio na última página.
	Next Cursor
}

// Page executa uma única chamada ao transport.
func (qb *QueryBuilder[T]) Page(ctx context.Context) (Page[T], error) {
	req, err := qb.Plan()
	if err != nil {
		return Page[T]{}, err
	}
	out, err := qb.fetch(ctx, req, 0)
	if err != nil {
		return Page[T]{}, err
	}

	page := Page[T]{Items: make([]T, 0, len(out.Items)), Next: NewCursor(out.LastKey)}
	for i, item := range out.Items {
		v, err := qb.table.decode(item)
		if err != nil {
			qb.table.record(metrics.EventDecodeFailed, 1, qb.operation())
			page.Errors = append(page.Errors, &ItemError{Index: i, Err: err})
			continue
		}
		page.Items = append(page.Items, v)
	}
	return page, nil
}

// Exec executa uma página e retorna os itens e o token da próxima.
// Falhas de decodificação de itens são agregadas no erro, junto com os
// itens decodificados.
func (qb *QueryBuilder[T]) Exec(ctx context.Context) ([]T, string, error) {
	page, err := qb.Page(ctx)
	if err != nil {
		return nil, "", err
	}
	return page.Items, page.Next.String(), joinItemErrors(page.Errors)
}

// Collect percorre todas as páginas. Falhas de itens são agregadas no erro
// retornado junto com os itens decodificados.
func (qb *QueryBuilder[T]) Collect(ctx context.Context) ([]T, error) {
	var (
		items    []T
		itemErrs []*ItemError
	)
	for v, err := range qb.All(ctx) {
		if err != nil {
			var ie *ItemError
			if errors.As(err, &ie) {
				itemErrs = append(itemErrs, ie)
				continue
			}
			return nil, err
		}
		items = append(items, v)
	}
	return items, joinItemErrors(itemErrs)
}

// First retorna o primeiro item. Sem filtro e sem Limit, pede apenas um
// item ao DynamoDB; com filtro segue até a primeira página não vazia.
func (qb *QueryBuilder[T]) First(ctx context.Context) (T, error) {
	b := *qb
	if b.limit == 0 && len(b.filters) == 0 && b.kind == "" {
		b.limit = 1
	}
	next, stop := iter.Pull2(b.All(ctx))
	defer stop()
	v, err, ok := next()
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return v, err
}

// One retorna o único item da consulta: ErrNotFound se não houver nenhum e
// ErrMultipleItems se houver mais de um. Um Limit(1) é elevado para 2, senão
// o segundo item nunca seria lido.
func (qb *QueryBuilder[T]) One(ctx context.Context) (T, error) {
	b := *qb
	switch {
	case b.limit == 1:
		b.limit = 2
	case b.limit == 0 && len(b.filters) == 0 && b.kind == "":
		b.limit = 2
	}
	var (
		zero  T
		found T
		count int
	)
	for v, err := range b.All(ctx) {
		if err != nil {
			return zero, err
		}
		if count++; count > 1 {
			return zero, ErrMultipleItems
		}
		found = v
	}
	if count == 0 {
		return zero, ErrNotFound
	}
	return found, nil
}

func joinItemErrors(errs []*ItemError) error {
	if len(errs) == 0 {
		return nil
	}
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return errors.Join(out...)
}
