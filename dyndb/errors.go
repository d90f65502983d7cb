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
	"errors"
	"fmt"
)

var (
	// ErrNotFound é retornado quando o item não existe.
	ErrNotFound = errors.New("dyndb: item not found")
	// ErrMultipleItems é retornado por One quando mais de um item casa com a consulta.
	ErrMultipleItems = errors.New("dyndb: more than one item matched")

	// ErrConditionFailed indica que a condition expression foi avaliada como falsa pelo DynamoDB.
	ErrConditionFailed = errors.New("dyndb: condition check failed")
	// ErrTableNotFound indica tabela ou índice inexistente.
	ErrTableNotFound = errors.New("dyndb: table not found")
	// ErrThrottled indica throttling ou capacidade provisionada excedida.
	ErrThrottled = errors.New("dyndb: request throttled")
	// ErrValidation indica uma requisição rejeitada pelo DynamoDB como inválida.
	ErrValidation = errors.New("dyndb: validation error")
	// ErrRequestTimeout indica timeout da requisição.
	ErrRequestTimeout = errors.New("dyndb: request timeout")
	// ErrItemCollectionTooLarge indica que uma coleção de itens de um LSI passou de 10GB.
	ErrItemCollectionTooLarge = errors.New("dyndb: item collection size limit exceeded")
	// ErrTransactionConflict indica conflito com uma transação em andamento.
	ErrTransactionConflict = errors.New("dyndb: transaction conflict")

	// ErrMissingPartitionKey é retornado quando a configuração não define a partition key.
	ErrMissingPartitionKey = errors.New("dyndb: partition key is required")
	// ErrInvalidConfig agrupa as demais falhas de configuração.
	ErrInvalidConfig = errors.New("dyndb: invalid table config")
	// ErrInvalidKey indica uma chave primária incompleta ou com tipo inválido.
	ErrInvalidKey = errors.New("dyndb: invalid key")
	// ErrUnknownIndex indica um índice não declarado em TableConfig.Indexes.
	ErrUnknownIndex = errors.New("dyndb: unknown index")
	// ErrMissingKeyCondition é retornado ao executar um Query sem key condition.
	ErrMissingKeyCondition = errors.New("dyndb: query requires a key condition")
	// ErrKeyConditionOnScan é retornado quando um Scan recebe key condition.
	ErrKeyConditionOnScan = errors.New("dyndb: scan does not accept a key condition")
	// ErrNotPolymorphic é retornado por OfKind em tabelas sem registro de tipos.
	ErrNotPolymorphic = errors.New("dyndb: table is not polymorphic")
	// ErrUnregisteredType é retornado ao gravar um tipo sem discriminador registrado.
	ErrUnregisteredType = errors.New("dyndb: type has no registered discriminator")
	// ErrKeyAttributeUpdate é retornado quando um update tenta alterar a chave primária.
	ErrKeyAttributeUpdate = errors.New("dyndb: key attributes cannot be updated")
	// ErrInvalidCursor indica um token de paginação malformado.
	ErrInvalidCursor = errors.New("dyndb: invalid cursor")
)

// ItemError é a falha de decodificação de um único item de uma página.
// Os demais itens da página continuam sendo entregues.
type ItemError struct {
	// Index é a posição do item na iteração, começando em 0.
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("dyndb: item %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }
