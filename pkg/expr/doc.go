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
// Package expr constrói e compila expressões do DynamoDB: condições,
// filtros, key conditions, projeções e update expressions.
//
// As expressões são montadas como uma árvore imutável a partir de
// referências de atributo:
//
//	age := expr.Name("age")
//	status := expr.Name("status")
//	cond := expr.And(age.GreaterThanEqual(18), status.Equal("active"))
//
//	out, err := expr.Compile(cond, expr.ModeFilter)
//	// out.Text   == "#n0 >= :v0 AND #n1 = :v1"
//	// out.Names  == {"#n0": "age", "#n1": "status"}
//	// out.Values == {":v0": N("18"), ":v1": S("active")}
//
// Todo nome de atributo vira um placeholder #nX e todo literal vira um
// placeholder :vX. Nomes iguais e literais iguais reutilizam o mesmo
// placeholder. Fragmentos compilados separadamente (key condition e filtro,
// update e condição) não colidem quando cada compilação começa do Next da
// anterior (WithOffset).
//
// And e Or formam árvores binárias associadas à esquerda; o compilador
// respeita o agrupamento da árvore e só emite parênteses onde a gramática
// do DynamoDB exige: em volta de um Or filho de And e em volta de qualquer
// And/Or filho de Not.
package expr
