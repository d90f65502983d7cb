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
package envloader

import (
	"fmt"
	"reflect"
)

// InvalidConfigError é retornado quando Load recebe algo que não é um
// ponteiro para struct (ex: envloader.Load(cfg) em vez de Load(&cfg)).
type InvalidConfigError struct {
	Value reflect.Type
}

func (e *InvalidConfigError) Error() string {
	if e.Value.Kind() != reflect.Ptr {
		return fmt.Sprintf("envloader: config must be a pointer to struct, got %s", e.Value.Kind())
	}
	return fmt.Sprintf("envloader: config must be a pointer to struct, got pointer to %s", e.Value.Elem().Kind())
}

// FieldError indica que o valor de uma variável não pôde ser convertido para
// o tipo do campo (ex: DYNAMODB_CONSISTENT_READ=talvez em um bool).
// Err é o erro de conversão (*strconv.NumError, time.ParseDuration) ou um
// *UnsupportedTypeError.
type FieldError struct {
	FieldName string
	EnvVar    string
	Value     string
	Err       error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("envloader: error setting field %s from env %s=%s: %v",
		e.FieldName, e.EnvVar, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// UnsupportedTypeError indica um campo de tipo sem conversão a partir de
// texto (map, interface, chan).
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("envloader: unsupported type %s", e.Type)
}

// RequiredError é retornado quando um campo marcado com `envRequired:"true"`
// não tem variável de ambiente, valor padrão nem valor prévio.
type RequiredError struct {
	// FieldName é o nome do campo da struct (ex: "TableName").
	FieldName string
	// EnvVar é o nome da variável de ambiente esperada (ex: "DYNAMODB_TABLE_NAME").
	EnvVar string
}

// Error retorna uma mensagem indicando a variável ausente.
func (e *RequiredError) Error() string {
	return fmt.Sprintf("envloader: required field %s is not set (env %s)", e.FieldName, e.EnvVar)
}
