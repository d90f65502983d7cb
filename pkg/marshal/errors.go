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
	"errors"
	"fmt"
)

var (
	// ErrTypeMismatch indica que o valor nativo e o valor do fio não são compatíveis,
	// ou que um conjunto mistura tipos.
	ErrTypeMismatch = errors.New("marshal: type mismatch")
	// ErrUnsupportedType indica um tipo Go sem mapeamento (chan, func, complex...).
	ErrUnsupportedType = errors.New("marshal: unsupported type")
	// ErrNotRepresentable indica um valor sem representação no fio (NaN, Inf, conjunto vazio).
	ErrNotRepresentable = errors.New("marshal: value has no wire representation")
	// ErrMalformedValue indica um AttributeValue desconhecido ou inválido.
	ErrMalformedValue = errors.New("marshal: malformed attribute value")
	// ErrInvalidTarget é retornado quando o destino do Decode não é um ponteiro não-nil.
	ErrInvalidTarget = errors.New("marshal: decode target must be a non-nil pointer")
)

// EncodeError é retornado quando um valor nativo não pode ser convertido.
type EncodeError struct {
	// Path é o caminho do atributo (ex: "profile.tags[2]"). Vazio para o valor raiz.
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("marshal: encode failed: %v", e.Err)
	}
	return fmt.Sprintf("marshal: encode %q failed: %v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError é retornado quando um valor do fio não pode ser convertido
// para o tipo de destino.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("marshal: decode failed: %v", e.Err)
	}
	return fmt.Sprintf("marshal: decode %q failed: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func joinPath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}

func indexPath(base string, i int) string {
	return fmt.Sprintf("%s[%d]", base, i)
}
