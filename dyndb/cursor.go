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
	"encoding/base64"
	"fmt"

	"github.com/raywall/dynamodel/pkg/marshal"
)

// Cursor é o token de continuação de uma consulta paginada. O valor zero
// indica que não há próxima página.
type Cursor struct {
	key Item
}

// NewCursor cria um cursor a partir da LastEvaluatedKey retornada pelo DynamoDB.
func NewCursor(key Item) Cursor {
	if len(key) == 0 {
		return Cursor{}
	}
	return Cursor{key: key}
}

// IsZero informa se o cursor está vazio.
func (c Cursor) IsZero() bool { return len(c.key) == 0 }

// Key retorna a chave de início da próxima página.
func (c Cursor) Key() Item { return c.key }

// String serializa o cursor como base64 (URL safe) do JSON tipado da chave.
// O cursor vazio vira "".
func (c Cursor) String() string {
	if c.IsZero() {
		return ""
	}
	data, err := marshal.MarshalJSONItem(c.key)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

// ParseCursor interpreta um token gerado por Cursor.String. Token vazio
// retorna o cursor vazio.
func ParseCursor(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	key, err := marshal.UnmarshalJSONItem(data)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	return NewCursor(key), nil
}
