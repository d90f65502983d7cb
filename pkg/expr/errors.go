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
	"errors"
	"fmt"
)

var (
	// ErrInvalidKeyCondition é a categoria de InvalidKeyConditionError.
	ErrInvalidKeyCondition = errors.New("expr: invalid key condition")
	// ErrDuplicateUpdatePath é a categoria de DuplicateUpdatePathError.
	ErrDuplicateUpdatePath = errors.New("expr: duplicate update path")
	// ErrInvalidOperand indica um nó ou operando inválido (nó nil, IN vazio, referência vazia).
	ErrInvalidOperand = errors.New("expr: invalid operand")
	// ErrInvalidUpdateAction indica uma ação de update incompatível com seu valor.
	ErrInvalidUpdateAction = errors.New("expr: invalid update action")
	// ErrNoUpdateActions é retornado ao compilar uma lista de ações vazia.
	ErrNoUpdateActions = errors.New("expr: no update actions")
	// ErrPlaceholderCollision indica que dois fragmentos ligaram o mesmo placeholder a valores diferentes.
	ErrPlaceholderCollision = errors.New("expr: placeholder collision")
)

// InvalidKeyConditionError descreve por que uma árvore não é uma key condition válida.
type InvalidKeyConditionError struct {
	Reason string
}

func (e *InvalidKeyConditionError) Error() string {
	return fmt.Sprintf("expr: invalid key condition: %s", e.Reason)
}

func (e *InvalidKeyConditionError) Is(target error) bool { return target == ErrInvalidKeyCondition }

// DuplicateUpdatePathError é retornado quando duas ações de update tocam o mesmo caminho.
type DuplicateUpdatePathError struct {
	Path string
}

func (e *DuplicateUpdatePathError) Error() string {
	return fmt.Sprintf("expr: duplicate update path %q", e.Path)
}

func (e *DuplicateUpdatePathError) Is(target error) bool { return target == ErrDuplicateUpdatePath }

// LiteralError é retornado quando um literal não pode ser convertido em AttributeValue.
type LiteralError struct {
	// Placeholder que seria atribuído ao literal (ex: ":v3").
	Placeholder string
	// Path é o atributo comparado com o literal.
	Path string
	Err  error
}

func (e *LiteralError) Error() string {
	return fmt.Sprintf("expr: literal %s for %q: %v", e.Placeholder, e.Path, e.Err)
}

func (e *LiteralError) Unwrap() error { return e.Err }
