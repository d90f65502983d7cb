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
// Package dyndb fornece uma abstração genérica e fortemente tipada sobre o
// AWS DynamoDB Go SDK (v2).
//
// Visão Geral:
// O pacote `dyndb` oferece a interface `Store[T]`, implementada por
// `Table[T]`, que executa operações `Get`, `Put`, `Delete` e `Update` e
// constrói consultas (`Query` e `Scan`) de forma fluente. As expressões são
// compiladas pelo pacote `pkg/expr` e os itens convertidos por `pkg/marshal`.
// A comunicação com o DynamoDB passa pela interface `Transport`, com a
// implementação `SDKTransport` sobre o cliente do SDK.
//
// Funcionalidades Principais:
//   - CRUD Tipado: operações usando tipos Go nativos, com escrita condicional.
//   - Builder Fluente: `Query().PartitionEqual(...).SortBeginsWith(...).All(ctx)`.
//   - Paginação: `All` itera página a página; `Page` e `Cursor` expõem o token.
//   - Polimorfismo: `NewPolymorphic` decodifica cada item pelo discriminador.
//   - Mocks Integrados: `MockTransport` e `MockStore` para testes unitários.
//
// Exemplo Básico:
//
//	type User struct {
//		ID    string `dynamodbav:"id"`
//		Email string `dynamodbav:"email"`
//	}
//
//	tr, _ := dyndb.NewSDKTransportFromConfig(ctx, "us-east-1")
//	users, err := dyndb.New[User](tr, dyndb.TableConfig{TableName: "Users", HashKey: "id"})
//
//	err = users.Put(ctx, User{ID: "u1", Email: "a@b.com"}, dyndb.IfNotExists())
//	user, err := users.Get(ctx, "u1", nil)
//	if errors.Is(err, dyndb.ErrNotFound) { /* ... */ }
//
// Exemplo de Query:
//
//	for user, err := range users.Query().
//		Index("email-index").
//		PartitionEqual("a@b.com").
//		Filter(expr.Name("age").GreaterThanEqual(18)).
//		All(ctx) {
//		// ...
//	}
//
// Concorrência:
// `Table` pode ser compartilhada entre goroutines. Os builders retornados
// por `Query`, `Scan` e `Update` pertencem a um único chamador.
//
// Configuração:
// `TableConfig` pode ser montada em código, lida de variáveis de ambiente
// (`LoadTableConfigFromEnv`) ou de um arquivo YAML (`LoadTableConfigFile`).
package dyndb
