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
package easyrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/raywall/dynamodel/dyndb"
)

type HookType int

const (
	BeforeCreate HookType = iota
	BeforeUpdate
)

var (
	ErrEmptyCustomMethodName = errors.New("easyrepo: empty custom service method name")
	ErrMethodNameNotFound    = errors.New("easyrepo: method name not found")
)

// EasyService centraliza a lógica de negócio e a validação dos dados.
// Encapsula o repositório e usa o validator para garantir a integridade.
type EasyService[T any] struct {
	valid                *validator.Validate
	repo                 *EasyRepository[T]
	customServiceMethods map[string]CustomServiceMethod[T]
	hooks                *Hooks[T]
}

// Hooks guarda as funções executadas antes de creates e updates.
type Hooks[T any] struct {
	BeforeCreate []BeforeSaveHook[T]
	BeforeUpdate []BeforeSaveHook[T]
}

// BeforeSaveHook permite validar ou transformar o item antes da gravação.
// existing é nil em creates.
type BeforeSaveHook[T any] func(ctx context.Context, item *T, existing *T) error

// CustomServiceMethod permite injetar um método customizado.
type CustomServiceMethod[T any] func(ctx context.Context, store dyndb.Store[T], args ...any) (*T, error)

// NewService cria um EasyService com validator padrão sobre store.
func NewService[T any](store dyndb.Store[T], cfg dyndb.TableConfig) (*EasyService[T], error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is nil", ErrInvalidInput)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &EasyService[T]{
		valid:                validator.New(),
		repo:                 NewRepository(store, cfg),
		customServiceMethods: make(map[string]CustomServiceMethod[T]),
		hooks: &Hooks[T]{
			BeforeCreate: make([]BeforeSaveHook[T], 0),
			BeforeUpdate: make([]BeforeSaveHook[T], 0),
		},
	}, nil
}

// RegisterHook adiciona uma função executada antes do create ou do update.
func (s *EasyService[T]) RegisterHook(hookType HookType, fn BeforeSaveHook[T]) {
	switch hookType {
	case BeforeCreate:
		s.hooks.BeforeCreate = append(s.hooks.BeforeCreate, fn)
	case BeforeUpdate:
		s.hooks.BeforeUpdate = append(s.hooks.BeforeUpdate, fn)
	}
}

// RegisterCustomServiceMethod registra fn sob name.
func (s *EasyService[T]) RegisterCustomServiceMethod(name string, fn CustomServiceMethod[T]) {
	s.customServiceMethods[name] = fn
}

// RegisterValidation adiciona uma regra customizada ao validator.
func (s *EasyService[T]) RegisterValidation(name string, fn validator.Func) error {
	return s.valid.RegisterValidation(name, fn)
}

func (s *EasyService[T]) checkKey(pk, sk any) error {
	if pk == nil {
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, s.repo.config.HashKey)
	}
	if s.repo.config.SortKey != "" && sk == nil {
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, s.repo.config.SortKey)
	}
	return nil
}

func (s *EasyService[T]) validate(ctx context.Context, item *T) error {
	if item == nil {
		return fmt.Errorf("%w: item is nil", ErrInvalidInput)
	}
	if err := s.valid.StructCtx(ctx, item); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

// Get busca um item pela HashKey (pk) e SortKey (sk).
func (s *EasyService[T]) Get(ctx context.Context, pk, sk any) (*T, error) {
	if err := s.checkKey(pk, sk); err != nil {
		return nil, err
	}
	return s.repo.get(ctx, pk, sk)
}

// List retorna uma página de itens (Scan) e o cursor da próxima.
func (s *EasyService[T]) List(ctx context.Context, limit int32, token string) ([]T, string, error) {
	return s.repo.list(ctx, limit, token)
}

// Create valida o item pelas tags `validate`, executa os hooks e grava.
// Retorna ErrAlreadyExists quando a chave já está em uso.
func (s *EasyService[T]) Create(ctx context.Context, item *T) error {
	if err := s.validate(ctx, item); err != nil {
		return err
	}
	for _, hook := range s.hooks.BeforeCreate {
		if err := hook(ctx, item, nil); err != nil {
			return err
		}
	}
	return s.repo.create(ctx, item)
}

// Update valida o item, carrega a versão atual para os hooks e sobrescreve.
// Retorna ErrNotFound quando o item não existe.
func (s *EasyService[T]) Update(ctx context.Context, item *T) error {
	if err := s.validate(ctx, item); err != nil {
		return err
	}
	pk, sk, err := s.repo.keyOf(item)
	if err != nil {
		return err
	}
	existing, err := s.repo.get(ctx, pk, sk)
	if err != nil {
		return err
	}
	for _, hook := range s.hooks.BeforeUpdate {
		if err := hook(ctx, item, existing); err != nil {
			return err
		}
	}
	return s.repo.replace(ctx, item)
}

// Delete remove um item existente pelas chaves.
func (s *EasyService[T]) Delete(ctx context.Context, pk, sk any) error {
	if err := s.checkKey(pk, sk); err != nil {
		return err
	}
	return s.repo.delete(ctx, pk, sk)
}

// RunCustomServiceMethod executa o método registrado sob name.
func (s *EasyService[T]) RunCustomServiceMethod(ctx context.Context, name string, args ...any) (*T, error) {
	if name == "" {
		return nil, ErrEmptyCustomMethodName
	}
	fn, ok := s.customServiceMethods[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMethodNameNotFound, name)
	}
	return fn(ctx, s.repo.store, args...)
}
