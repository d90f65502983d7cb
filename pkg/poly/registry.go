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
// Package poly resolve o tipo concreto de um item a partir de um atributo
// discriminador antes da decodificação estrutural.
//
// O registro é preenchido na inicialização do processo e congelado no
// primeiro uso (Resolve/Decode) ou explicitamente com Freeze. Depois de
// congelado ele só é lido, então pode ser compartilhado entre goroutines.
//
//	reg := poly.NewRegistry[Animal]("kind")
//	reg.MustRegister("dog", poly.New[Dog, Animal]())
//	reg.MustRegister("cat", poly.New[Cat, Animal]())
//
//	animal, err := reg.Decode(item) // *Dog ou *Cat
package poly

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/raywall/dynamodel/pkg/marshal"
)

var (
	// ErrDuplicateRegistration é a categoria de DuplicateRegistrationError.
	ErrDuplicateRegistration = errors.New("poly: duplicate registration")
	// ErrUnknownDiscriminator é a categoria de UnknownDiscriminatorError.
	ErrUnknownDiscriminator = errors.New("poly: unknown discriminator")
	// ErrRegistryFrozen é retornado ao registrar depois do primeiro uso.
	ErrRegistryFrozen = errors.New("poly: registry is frozen")
	// ErrInvalidFactory indica uma factory nil ou que não retorna um ponteiro.
	ErrInvalidFactory = errors.New("poly: factory must return a non-nil pointer")
)

// DuplicateRegistrationError é retornado quando um valor de discriminador já
// está registrado para outro tipo.
type DuplicateRegistrationError struct {
	Value    string
	Existing string
	Incoming string
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("poly: discriminator %q already registered for %s, cannot register %s", e.Value, e.Existing, e.Incoming)
}

func (e *DuplicateRegistrationError) Is(target error) bool { return target == ErrDuplicateRegistration }

// UnknownDiscriminatorError é retornado quando o item não tem o
// discriminador ou tem um valor não registrado.
type UnknownDiscriminatorError struct {
	Attribute string
	Value     string
	Missing   bool
}

func (e *UnknownDiscriminatorError) Error() string {
	if e.Missing {
		return fmt.Sprintf("poly: item has no discriminator attribute %q", e.Attribute)
	}
	return fmt.Sprintf("poly: unknown discriminator %s=%q", e.Attribute, e.Value)
}

func (e *UnknownDiscriminatorError) Is(target error) bool { return target == ErrUnknownDiscriminator }

type entry[B any] struct {
	value   string
	typ     reflect.Type
	factory func() B
}

// Registry mapeia valores do discriminador para factories de tipos concretos
// que satisfazem B.
type Registry[B any] struct {
	attribute string

	mu      sync.Mutex
	frozen  atomic.Bool
	byValue map[string]entry[B]
	byType  map[reflect.Type]string
	// byNumber indexa os valores numéricos pela forma canônica ("1.0" → "1").
	byNumber map[string]string
}

// NewRegistry cria um registro para o atributo discriminador informado.
func NewRegistry[B any](attribute string) *Registry[B] {
	return &Registry[B]{
		attribute: attribute,
		byValue:   make(map[string]entry[B]),
		byType:    make(map[reflect.Type]string),
		byNumber:  make(map[string]string),
	}
}

// New retorna uma factory que aloca um *C e o expõe como B.
func New[C any, B any]() func() B {
	return func() B {
		var b B
		v, ok := any(new(C)).(B)
		if !ok {
			return b
		}
		return v
	}
}

// Attribute retorna o nome do atributo discriminador.
func (r *Registry[B]) Attribute() string { return r.attribute }

// Register associa value à factory. Registrar o mesmo valor para o mesmo
// tipo é idempotente; para outro tipo retorna DuplicateRegistrationError.
func (r *Registry[B]) Register(value string, factory func() B) error {
	if factory == nil {
		return ErrInvalidFactory
	}
	sample := reflect.ValueOf(any(factory()))
	if !sample.IsValid() || sample.Kind() != reflect.Pointer || sample.IsNil() {
		return fmt.Errorf("%w: discriminator %q", ErrInvalidFactory, value)
	}
	typ := sample.Type()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen.Load() {
		return ErrRegistryFrozen
	}
	if cur, ok := r.byValue[value]; ok {
		if cur.typ == typ {
			return nil
		}
		return &DuplicateRegistrationError{Value: value, Existing: cur.typ.String(), Incoming: typ.String()}
	}
	if other, ok := r.byType[typ]; ok {
		return &DuplicateRegistrationError{Value: value, Existing: fmt.Sprintf("%s (as %q)", typ, other), Incoming: typ.String()}
	}
	canon, numeric := canonical(value)
	if numeric {
		if other, ok := r.byNumber[canon]; ok {
			return &DuplicateRegistrationError{Value: value, Existing: fmt.Sprintf("%s (as %q)", r.byValue[other].typ, other), Incoming: typ.String()}
		}
		r.byNumber[canon] = value
	}
	r.byValue[value] = entry[B]{value: value, typ: typ, factory: factory}
	r.byType[typ] = value
	return nil
}

// MustRegister é como Register, mas entra em pânico em caso de erro.
// Use apenas na inicialização do processo.
func (r *Registry[B]) MustRegister(value string, factory func() B) *Registry[B] {
	if err := r.Register(value, factory); err != nil {
		panic(err)
	}
	return r
}

// Freeze impede novos registros.
func (r *Registry[B]) Freeze() {
	r.mu.Lock()
	r.frozen.Store(true)
	r.mu.Unlock()
}

// Frozen informa se o registro já foi congelado.
func (r *Registry[B]) Frozen() bool { return r.frozen.Load() }

// Values retorna os valores registrados em ordem.
func (r *Registry[B]) Values() []string {
	r.Freeze()
	out := make([]string, 0, len(r.byValue))
	for v := range r.byValue {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// ValueOf retorna o discriminador registrado para o tipo dinâmico de b.
func (r *Registry[B]) ValueOf(b B) (string, bool) {
	r.Freeze()
	rv := reflect.ValueOf(any(b))
	if !rv.IsValid() {
		return "", false
	}
	if v, ok := r.byType[rv.Type()]; ok {
		return v, true
	}
	if rv.Kind() != reflect.Pointer {
		v, ok := r.byType[reflect.PointerTo(rv.Type())]
		return v, ok
	}
	return "", false
}

// Lookup lê o discriminador do item e retorna o valor encontrado. Um
// discriminador N é comparado pelo valor numérico e retornado na forma em
// que foi registrado. O primeiro Lookup congela o registro.
func (r *Registry[B]) Lookup(item map[string]types.AttributeValue) (string, error) {
	r.Freeze()
	av, ok := item[r.attribute]
	if !ok {
		return "", &UnknownDiscriminatorError{Attribute: r.attribute, Missing: true}
	}
	switch x := av.(type) {
	case *types.AttributeValueMemberS:
		return x.Value, nil
	case *types.AttributeValueMemberN:
		if canon, ok := canonical(x.Value); ok {
			if registered, ok := r.byNumber[canon]; ok {
				return registered, nil
			}
		}
		return x.Value, nil
	case *types.AttributeValueMemberNULL:
		return "", &UnknownDiscriminatorError{Attribute: r.attribute, Missing: true}
	}
	raw, _ := marshal.MarshalJSONValue(av)
	return "", &UnknownDiscriminatorError{Attribute: r.attribute, Value: string(raw)}
}

// Resolve retorna uma nova instância vazia do tipo concreto do item.
// O primeiro Resolve congela o registro.
func (r *Registry[B]) Resolve(item map[string]types.AttributeValue) (B, error) {
	r.Freeze()
	var zero B
	value, err := r.Lookup(item)
	if err != nil {
		return zero, err
	}
	e, ok := r.byValue[value]
	if !ok {
		return zero, &UnknownDiscriminatorError{Attribute: r.attribute, Value: value}
	}
	return e.factory(), nil
}

// Decode resolve o tipo concreto e decodifica o item nele.
func (r *Registry[B]) Decode(item map[string]types.AttributeValue) (B, error) {
	b, err := r.Resolve(item)
	if err != nil {
		return b, err
	}
	if err := marshal.DecodeItem(item, any(b)); err != nil {
		var zero B
		return zero, err
	}
	return b, nil
}

// canonical retorna a forma canônica de value quando ele é um número.
func canonical(value string) (string, bool) {
	n, err := marshal.Number(value).Canonical()
	if err != nil {
		return "", false
	}
	return string(n), true
}
