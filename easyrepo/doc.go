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
/*
Package easyrepo fornece o padrão Service-Repository sobre o dyndb.

O objetivo deste pacote é reduzir o boilerplate em microserviços Go, entregando:
  - Validação de entrada automática via struct tags (validator/v10).
  - Operações CRUD condicionais (create não sobrescreve, update exige o item).
  - Hooks antes de creates e updates, com acesso à versão atual do item.

Exemplo de uso:

	type User struct {
		ID    string `dynamodbav:"id" validate:"required"`
		Email string `dynamodbav:"email" validate:"required,email"`
	}

	table, _ := dyndb.New[User](transport, cfg)
	service, _ := easyrepo.NewService[User](table, cfg)
	err := service.Create(ctx, &User{ID: "1", Email: "test@example.com"})
*/
package easyrepo
