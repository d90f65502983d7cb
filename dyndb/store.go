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
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"

	"github.com/raywall/dynamodel/pkg/expr"
	"github.com/raywall/dynamodel/pkg/marshal"
	"github.com/raywall/dynamodel/pkg/metrics"
	"github.com/raywall/dynamodel/pkg/poly"
)

// Store é a interface principal (genérica) de acesso a uma tabela.
type Store[T any] interface {
	Get(ctx context.Context, hashKey, sortKey any) (*T, error)
	Put(ctx context.Context, item T, opts ...WriteOption) error
	Delete(ctx context.Context, hashKey, sortKey any, opts ...WriteOption) error

	// Query e Scan retornam QueryBuilder[T]
	Query() *QueryBuilder[T]
	Scan() *QueryBuilder[T]
	Update(hashKey, sortKey any) *UpdateBuilder[T]
}

// Table implementa Store[T] sobre um Transport. É segura para uso
// concorrente; os builders criados por ela não são.
type Table[T any] struct {
	tr       Transport
	cfg      TableConfig
	registry *poly.Registry[T]

	log        zerolog.Logger
	rec        *metrics.Recorder
	defaultTTL time.Duration
	now        func() time.Time
}

var _ Store[struct{}] = (*Table[struct{}])(nil)

// Option configura uma Table.
type Option func(*tableOptions)

type tableOptions struct {
	log        zerolog.Logger
	provider   metrics.Provider
	defaultTTL time.Duration
	now        func() time.Time
}

// WithLogger define o logger das requisições. O padrão é zerolog.Nop().
func WithLogger(log zerolog.Logger) Option {
	return func(o *tableOptions) { o.log = log }
}

// WithMetrics envia as métricas da tabela para o provider.
func WithMetrics(provider metrics.Provider) Option {
	return func(o *tableOptions) { o.provider = provider }
}

// WithDefaultTTL preenche o atributo TTL dos itens gravados sem ele.
// Exige TableConfig.TTLAttribute.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(o *tableOptions) { o.defaultTTL = ttl }
}

// WithClock substitui o relógio usado no cálculo do TTL.
func WithClock(now func() time.Time) Option {
	return func(o *tableOptions) { o.now = now }
}

// New cria uma Table para o tipo T. A configuração é validada aqui e não
// novamente a cada operação.
func New[T any](tr Transport, cfg TableConfig, opts ...Option) (*Table[T], error) {
	if tr == nil {
		return nil, fmt.Errorf("%w: transport is required", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := tableOptions{log: zerolog.Nop(), now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	if o.defaultTTL > 0 && cfg.TTLAttribute == "" {
		return nil, fmt.Errorf("%w: default ttl requires ttl_attribute", ErrInvalidConfig)
	}

	return &Table[T]{
		tr:         tr,
		cfg:        cfg,
		log:        o.log.With().Str("table", cfg.TableName).Logger(),
		rec:        metrics.NewRecorder(o.provider),
		defaultTTL: o.defaultTTL,
		now:        o.now,
	}, nil
}

// NewPolymorphic cria uma Table cujos itens são decodificados pelo tipo
// concreto indicado pelo discriminador. T é normalmente uma interface
// implementada pelos tipos registrados em reg.
func NewPolymorphic[T any](tr Transport, cfg TableConfig, reg *poly.Registry[T], opts ...Option) (*Table[T], error) {
	if reg == nil {
		return nil, fmt.Errorf("%w: registry is required", ErrInvalidConfig)
	}
	switch cfg.Discriminator {
	case "":
		cfg.Discriminator = reg.Attribute()
	case reg.Attribute():
	default:
		return nil, fmt.Errorf("%w: discriminator %q does not match registry attribute %q",
			ErrInvalidConfig, cfg.Discriminator, reg.Attribute())
	}
	t, err := New[T](tr, cfg, opts...)
	if err != nil {
		return nil, err
	}
	t.registry = reg
	reg.Freeze()
	return t, nil
}

// Config retorna a configuração da tabela.
func (t *Table[T]) Config() TableConfig { return t.cfg }

// Get busca um item pela chave primária. sortKey é ignorado (e deve ser
// nil) em tabelas sem sort key.
func (t *Table[T]) Get(ctx context.Context, hashKey, sortKey any) (*T, error) {
	key, err := t.key(hashKey, sortKey)
	if err != nil {
		return nil, err
	}

	t.log.Info().Str("operation", "get").Str("key", redactKey(key)).Msg("dynamodb request")
	item, err := t.tr.GetItem(ctx, GetRequest{
		Table:          t.cfg.TableName,
		Key:            key,
		ConsistentRead: t.cfg.ConsistentRead,
	})
	if err != nil {
		return nil, t.fail("get", err)
	}
	if item == nil {
		return nil, ErrNotFound
	}

	v, err := t.decode(item)
	if err != nil {
		t.record(metrics.EventDecodeFailed, 1, "get")
		return nil, fmt.Errorf("dyndb: get: %w", err)
	}
	return &v, nil
}

// Put grava o item (upsert). Em tabelas polimórficas o discriminador é
// preenchido a partir do tipo concreto do item.
func (t *Table[T]) Put(ctx context.Context, item T, opts ...WriteOption) error {
	wo := buildWriteOptions(opts)

	encoded, err := marshal.EncodeItem(item)
	if err != nil {
		return fmt.Errorf("dyndb: put: %w", err)
	}
	av := maps.Clone(encoded)

	if t.registry != nil {
		value, ok := t.registry.ValueOf(item)
		if !ok {
			return fmt.Errorf("%w: %T", ErrUnregisteredType, any(item))
		}
		av[t.registry.Attribute()] = &types.AttributeValueMemberS{Value: value}
	}
	t.applyTTL(av)

	key, err := t.keyOf(av)
	if err != nil {
		return err
	}

	req := PutRequest{Table: t.cfg.TableName, Item: av}
	cond, err := wo.compile(t.cfg)
	if err != nil {
		return err
	}
	req.Condition, req.Names, req.Values = cond.Text, cond.Names, cond.Values

	t.log.Info().Str("operation", "put").Str("key", redactKey(key)).Bool("has_condition", req.Condition != "").Msg("dynamodb request")
	t.log.Debug().Str("operation", "put").Str("condition", req.Condition).Msg("compiled expressions")
	if err := t.tr.PutItem(ctx, req); err != nil {
		return t.fail("put", err)
	}
	return nil
}

// Delete remove o item pela chave primária.
func (t *Table[T]) Delete(ctx context.Context, hashKey, sortKey any, opts ...WriteOption) error {
	wo := buildWriteOptions(opts)

	key, err := t.key(hashKey, sortKey)
	if err != nil {
		return err
	}
	cond, err := wo.compile(t.cfg)
	if err != nil {
		return err
	}

	req := DeleteRequest{
		Table:     t.cfg.TableName,
		Key:       key,
		Condition: cond.Text,
		Names:     cond.Names,
		Values:    cond.Values,
	}
	t.log.Info().Str("operation", "delete").Str("key", redactKey(key)).Bool("has_condition", req.Condition != "").Msg("dynamodb request")
	t.log.Debug().Str("operation", "delete").Str("condition", req.Condition).Msg("compiled expressions")
	if err := t.tr.DeleteItem(ctx, req); err != nil {
		return t.fail("delete", err)
	}
	return nil
}

// Query inicia uma Query
func (t *Table[T]) Query() *QueryBuilder[T] {
	return newQueryBuilder(t, false)
}

// Scan inicia um Scan
func (t *Table[T]) Scan() *QueryBuilder[T] {
	return newQueryBuilder(t, true)
}

// Update inicia um UpdateItem para a chave informada.
func (t *Table[T]) Update(hashKey, sortKey any) *UpdateBuilder[T] {
	return newUpdateBuilder(t, hashKey, sortKey)
}

// decode converte um item bruto em T, passando pelo registro de tipos
// quando a tabela é polimórfica.
func (t *Table[T]) decode(item Item) (T, error) {
	if t.registry != nil {
		return t.registry.Decode(item)
	}
	var v T
	if err := marshal.DecodeItem(item, &v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// key monta a chave primária a partir dos valores nativos.
func (t *Table[T]) key(hashKey, sortKey any) (Item, error) {
	hk, err := keyValue(t.cfg.HashKey, hashKey)
	if err != nil {
		return nil, err
	}
	key := Item{t.cfg.HashKey: hk}

	if t.cfg.SortKey == "" {
		if sortKey != nil {
			return nil, fmt.Errorf("%w: table %s has no sort key", ErrInvalidKey, t.cfg.TableName)
		}
		return key, nil
	}
	if sortKey == nil {
		return nil, fmt.Errorf("%w: sort key %q is required", ErrInvalidKey, t.cfg.SortKey)
	}
	sk, err := keyValue(t.cfg.SortKey, sortKey)
	if err != nil {
		return nil, err
	}
	key[t.cfg.SortKey] = sk
	return key, nil
}

// keyOf extrai a chave primária de um item já codificado.
func (t *Table[T]) keyOf(item Item) (Item, error) {
	names := []string{t.cfg.HashKey}
	if t.cfg.SortKey != "" {
		names = append(names, t.cfg.SortKey)
	}
	key := make(Item, len(names))
	for _, name := range names {
		av, ok := item[name]
		if !ok {
			return nil, fmt.Errorf("%w: item has no %q attribute", ErrInvalidKey, name)
		}
		if err := checkKeyValue(name, av); err != nil {
			return nil, err
		}
		key[name] = av
	}
	return key, nil
}

func keyValue(name string, v any) (types.AttributeValue, error) {
	av, err := marshal.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidKey, name, err)
	}
	if err := checkKeyValue(name, av); err != nil {
		return nil, err
	}
	return av, nil
}

// checkKeyValue aceita apenas S, N e B não vazios, os tipos permitidos em chaves.
func checkKeyValue(name string, av types.AttributeValue) error {
	switch x := av.(type) {
	case *types.AttributeValueMemberS:
		if x.Value == "" {
			return fmt.Errorf("%w: %s is empty", ErrInvalidKey, name)
		}
		return nil
	case *types.AttributeValueMemberN:
		return nil
	case *types.AttributeValueMemberB:
		if len(x.Value) == 0 {
			return fmt.Errorf("%w: %s is empty", ErrInvalidKey, name)
		}
		return nil
	}
	return fmt.Errorf("%w: %s must be a string, number or binary, got %T", ErrInvalidKey, name, av)
}

// applyTTL preenche o atributo TTL (epoch em segundos) quando ausente.
func (t *Table[T]) applyTTL(item Item) {
	if t.defaultTTL <= 0 || t.cfg.TTLAttribute == "" {
		return
	}
	if cur, ok := item[t.cfg.TTLAttribute]; ok {
		if _, null := cur.(*types.AttributeValueMemberNULL); !null {
			return
		}
	}
	expires := t.now().Add(t.defaultTTL).Unix()
	item[t.cfg.TTLAttribute] = &types.AttributeValueMemberN{Value: strconv.FormatInt(expires, 10)}
}

// fail registra a falha do transport e devolve o erro sem alterá-lo.
func (t *Table[T]) fail(op string, err error) error {
	if errors.Is(err, ErrConditionFailed) {
		t.record(metrics.EventConditionFailed, 1, op)
		t.log.Info().Str("operation", op).Msg("condition check failed")
		return err
	}
	t.record(metrics.EventRequestFailed, 1, op)
	t.log.Error().Err(err).Str("operation", op).Msg("dynamodb request failed")
	return err
}

func (t *Table[T]) record(event metrics.Event, value float64, op string) {
	if err := t.rec.Record(event, value, "table:"+t.cfg.TableName, "operation:"+op); err != nil {
		t.log.Warn().Err(err).Str("event", string(event)).Msg("failed to record metric")
	}
}

// redactKey identifica a chave nos logs sem expor seus valores.
func redactKey(key Item) string {
	data, err := marshal.MarshalJSONItem(key)
	if err != nil {
		return "unknown"
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:4])
}

// WriteOption configura um Put ou Delete.
type WriteOption func(*writeOptions)

type writeOptions struct {
	condition   expr.Node
	ifNotExists bool
}

// WithCondition só aplica a escrita se a condição for verdadeira no item
// atual. Falhas retornam ErrConditionFailed.
func WithCondition(cond expr.Node) WriteOption {
	return func(o *writeOptions) {
		o.condition = expr.All(o.condition, cond)
	}
}

// IfNotExists só grava se ainda não existir item com a mesma chave.
func IfNotExists() WriteOption {
	return func(o *writeOptions) { o.ifNotExists = true }
}

func buildWriteOptions(opts []WriteOption) writeOptions {
	var o writeOptions
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func (o writeOptions) compile(cfg TableConfig) (expr.Expression, error) {
	cond := o.condition
	if o.ifNotExists {
		cond = expr.All(expr.Name(cfg.HashKey).NotExists(), cond)
	}
	if cond == nil {
		return expr.Expression{}, nil
	}
	return expr.Compile(cond, expr.ModeCondition)
}
