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
// Package marshal converte valores Go nativos para o formato de valor
// rotulado do DynamoDB (types.AttributeValue) e vice-versa.
//
// Visão Geral:
// O pacote não depende do encoder do SDK para as regras que importam para a
// corretude das expressões: números de ponto flutuante viram texto decimal
// exato, datas viram strings ISO-8601 de largura fixa (a ordem lexicográfica
// no fio é igual à ordem cronológica), conjuntos nativos viram SS/NS/BS
// homogêneos e campos ausentes são omitidos do mapa em vez de virarem NULL.
//
// Regras de Encode:
//   - string → S; inteiros, floats, Number, apd.Decimal, json.Number → N
//   - []byte → B; bool → BOOL; slices e arrays → L; structs e mapas com chave string → M
//   - map[K]struct{} e slices com a opção `set` → SS, NS ou BS (tipos misturados geram ErrTypeMismatch)
//   - time.Time → "2006-01-02T15:04:05.000000000Z" em UTC; uuid.UUID → string canônica
//   - ponteiros e interfaces nil são omitidos, a não ser que o campo tenha a opção `nullable`
//   - NaN e ±Inf não têm representação e geram EncodeError
//
// Tags de Struct:
//
//	type Order struct {
//		ID        string              `dynamodbav:"id"`
//		Total     float64             `dynamodbav:"total"`
//		Tags      map[string]struct{} `dynamodbav:"tags,omitempty"`
//		Codes     []int               `dynamodbav:"codes,set"`
//		CanceledAt *time.Time         `dynamodbav:"canceledAt,nullable"`
//		Internal  string              `dynamodbav:"-"`
//	}
//
// Decode:
// O tipo de destino decide a representação nativa: um N vira int, uint,
// float ou Number conforme o campo Go, nunca pelo formato do texto. Chave
// ausente mantém o valor padrão do campo; NULL explícito zera o campo.
// A conversão decimal → float64 pode perder precisão; essa perda é aceita.
package marshal
