// Package dynamodel fornece um compilador tipado de expressões e um
// marshaller de valores para o Amazon DynamoDB, com uma camada genérica
// de acesso a tabelas construída sobre eles.
//
// Visão Geral:
// O módulo permite montar condições, filtros, key conditions e updates com
// uma DSL composável e traduzi-los, de forma determinística, para o formato
// de expressões do DynamoDB (texto parametrizado mais as tabelas de
// placeholders #n/:v). Os valores Go são convertidos de e para
// types.AttributeValue sem perda de precisão numérica.
//
// Sub-Pacotes Principais:
//
// 1. pkg/marshal:
//   - Encode/Decode entre valores Go e types.AttributeValue.
//   - Números decimais exatos (Number), sets, time.Time e uuid.UUID.
//   - Codec JSON no formato de fio do DynamoDB ({"S":"x"}).
//
// 2. pkg/expr:
//   - Referências a atributos (Name, Into, At) e AST imutável.
//   - Compile para condições, filtros e key conditions; CompileUpdate e CompileProjection.
//
// 3. pkg/poly:
//   - Registry[B] para reconstrução polimórfica por atributo discriminador.
//
// 4. dyndb:
//   - Store[T]/Table[T] com Get, Put, Delete, Query, Scan e Update.
//   - QueryBuilder com paginação lazy (iter.Seq2), cursores opacos e OfKind.
//   - SDKTransport sobre aws-sdk-go-v2 e MockTransport para testes.
//
// 5. easyrepo:
//   - Camada de serviço com validação (validator/v10) e hooks.
//
// 6. Infraestrutura: envloader (variáveis de ambiente), pkg/logger (zerolog),
// pkg/metrics e pkg/observability (Datadog statsd).
//
// Exemplo de Início Rápido:
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		"github.com/raywall/dynamodel/dyndb"
//		"github.com/raywall/dynamodel/pkg/expr"
//	)
//
//	type Order struct {
//		CustomerID string  `dynamodbav:"customer_id"`
//		OrderID    string  `dynamodbav:"order_id"`
//		Status     string  `dynamodbav:"status"`
//		Total      float64 `dynamodbav:"total"`
//	}
//
//	func main() {
//		ctx := context.Background()
//
//		// 1. Configuração da tabela (DYNAMODB_TABLE_NAME, DYNAMODB_HASH_KEY, ...)
//		cfg, err := dyndb.LoadTableConfigFromEnv()
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		// 2. Transport sobre o SDK e tabela tipada
//		tr, err := dyndb.NewSDKTransportFromConfig(ctx, cfg.Region)
//		if err != nil {
//			log.Fatal(err)
//		}
//		orders, err := dyndb.New[Order](tr, cfg)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		// 3. Consulta com key condition e filtro
//		q := orders.Query().
//			PartitionEqual("c-42").
//			SortBeginsWith("2024-").
//			Filter(expr.Name("total").GreaterThan(100))
//
//		for order, err := range q.All(ctx) {
//			if err != nil {
//				log.Fatal(err)
//			}
//			log.Println(order.OrderID, order.Status)
//		}
//	}
package dynamodel
