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
//
// Package envloader carrega variáveis de ambiente diretamente para campos de
// uma struct Go usando tags.
//
// Tags suportadas:
//   - `env:"VAR_NAME"`: nome da variável de ambiente.
//   - `envDefault:"value"`: valor usado quando a variável não existe ou está vazia.
//   - `envSeparator:";"`: separador para campos slice (padrão ",").
//   - `envRequired:"true"`: falha com RequiredError se nada preencher o campo.
//
// Tipos suportados: string, int*, uint*, bool, float*, time.Duration,
// ponteiros e slices desses tipos, além de structs aninhadas (incluindo
// ponteiros para structs) sem tag env.
//
// Exemplo:
//
//	type TableConfig struct {
//		TableName string        `env:"DYNAMODB_TABLE_NAME" envRequired:"true"`
//		HashKey   string        `env:"DYNAMODB_HASH_KEY" envDefault:"pk"`
//		Indexes   []string      `env:"DYNAMODB_INDEXES" envSeparator:";"`
//		TTL       time.Duration `env:"DYNAMODB_DEFAULT_TTL" envDefault:"720h"`
//	}
//
//	var cfg TableConfig
//	if err := envloader.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
// Load recebe um ponteiro para a struct; qualquer outro argumento retorna
// InvalidConfigError.
package envloader
