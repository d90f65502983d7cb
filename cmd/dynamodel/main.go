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
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/raywall/dynamodel/dyndb"
	"github.com/raywall/dynamodel/pkg/expr"
	"github.com/raywall/dynamodel/pkg/marshal"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintln(out, "Comandos esperados: validate, plan, cursor")
		return 1
	}

	switch args[0] {
	case "validate":
		return runValidate(args[1:], out)
	case "plan":
		return runPlan(args[1:], out)
	case "cursor":
		return runCursor(args[1:], out)
	default:
		fmt.Fprintf(out, "Comando desconhecido: %s\n", args[0])
		return 1
	}
}

func jsonOutput() bool { return os.Getenv("OUTPUT_FORMAT") == "json" }

type validationReport struct {
	File    string   `json:"file"`
	Valid   bool     `json:"valid"`
	Table   string   `json:"table,omitempty"`
	Indexes []string `json:"indexes,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func runValidate(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(out)
	file := fs.String("file", "", "Caminho do arquivo YAML da tabela")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *file == "" {
		fmt.Fprintln(out, "Erro: flag -file é obrigatória")
		return 1
	}

	report := validationReport{File: *file, Valid: true}
	cfg, err := dyndb.LoadTableConfigFile(*file)
	if err != nil {
		report.Valid = false
		report.Errors = append(report.Errors, err.Error())
	} else {
		report.Table = cfg.TableName
		for _, idx := range cfg.Indexes {
			report.Indexes = append(report.Indexes, idx.Name)
		}
	}

	if jsonOutput() {
		data, _ := json.Marshal(report)
		fmt.Fprintln(out, string(data))
	} else if report.Valid {
		fmt.Fprintf(out, "✅ Tabela %s válida (%d índices)\n", report.Table, len(report.Indexes))
	} else {
		fmt.Fprintln(out, "❌ A configuração contém erros:")
		for _, e := range report.Errors {
			fmt.Fprintf(out, " - %s\n", e)
		}
	}

	if !report.Valid {
		return 1
	}
	return 0
}

// filterFlags acumula -filter attr=valor.
type filterFlags []string

func (f *filterFlags) String() string     { return strings.Join(*f, ",") }
func (f *filterFlags) Set(v string) error { *f = append(*f, v); return nil }

type planOutput struct {
	Table          string                     `json:"table"`
	Index          string                     `json:"index,omitempty"`
	Scan           bool                       `json:"scan"`
	KeyCondition   string                     `json:"key_condition,omitempty"`
	Filter         string                     `json:"filter,omitempty"`
	Projection     string                     `json:"projection,omitempty"`
	Names          map[string]string          `json:"names"`
	Values         map[string]json.RawMessage `json:"values"`
	Limit          int32                      `json:"limit,omitempty"`
	ScanForward    bool                       `json:"scan_forward"`
	ConsistentRead bool                       `json:"consistent_read"`
}

func runPlan(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("plan", flag.ContinueOnError)
	fs.SetOutput(out)
	file := fs.String("file", "", "Caminho do arquivo YAML da tabela")
	index := fs.String("index", "", "Índice consultado")
	pk := fs.String("pk", "", "Valor da partition key")
	skPrefix := fs.String("sk-prefix", "", "Prefixo da sort key")
	project := fs.String("project", "", "Atributos projetados, separados por vírgula")
	limit := fs.Int("limit", 0, "Máximo de itens")
	scan := fs.Bool("scan", false, "Planeja um Scan em vez de Query")
	reverse := fs.Bool("reverse", false, "Ordem decrescente da sort key")
	var filters filterFlags
	fs.Var(&filters, "filter", "Filtro de igualdade attr=valor (repetível)")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *file == "" {
		fmt.Fprintln(out, "Erro: flag -file é obrigatória")
		return 1
	}

	cfg, err := dyndb.LoadTableConfigFile(*file)
	if err != nil {
		fmt.Fprintf(out, "❌ %v\n", err)
		return 1
	}
	table, err := dyndb.New[map[string]any](offlineTransport{}, cfg)
	if err != nil {
		fmt.Fprintf(out, "❌ %v\n", err)
		return 1
	}

	qb := table.Query()
	if *scan {
		qb = table.Scan()
	}
	if *index != "" {
		qb.Index(*index)
	}
	if *pk != "" {
		qb.PartitionEqual(*pk)
	}
	if *skPrefix != "" {
		qb.SortBeginsWith(*skPrefix)
	}
	for _, f := range filters {
		name, value, ok := strings.Cut(f, "=")
		if !ok {
			fmt.Fprintf(out, "❌ filtro inválido %q: esperado attr=valor\n", f)
			return 1
		}
		qb.FilterEqual(name, value)
	}
	if *project != "" {
		var refs []expr.Ref
		for _, p := range strings.Split(*project, ",") {
			refs = append(refs, expr.Name(strings.TrimSpace(p)))
		}
		qb.Project(refs...)
	}
	if *limit > 0 {
		qb.Limit(int32(*limit))
	}
	if *reverse {
		qb.Reverse()
	}

	req, err := qb.Plan()
	if err != nil {
		fmt.Fprintf(out, "❌ %v\n", err)
		return 1
	}

	plan := planOutput{
		Table:          req.Table,
		Index:          req.Index,
		Scan:           req.Scan,
		KeyCondition:   req.KeyCondition,
		Filter:         req.Filter,
		Projection:     req.Projection,
		Names:          req.Names,
		Values:         make(map[string]json.RawMessage, len(req.Values)),
		Limit:          req.Limit,
		ScanForward:    req.ScanForward,
		ConsistentRead: req.ConsistentRead,
	}
	for k, v := range req.Values {
		data, err := marshal.MarshalJSONValue(v)
		if err != nil {
			fmt.Fprintf(out, "❌ %v\n", err)
			return 1
		}
		plan.Values[k] = data
	}

	data, _ := json.MarshalIndent(plan, "", "  ")
	fmt.Fprintln(out, string(data))
	return 0
}

func runCursor(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("cursor", flag.ContinueOnError)
	fs.SetOutput(out)
	token := fs.String("token", "", "Token de continuação")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	c, err := dyndb.ParseCursor(*token)
	if err != nil {
		fmt.Fprintf(out, "❌ %v\n", err)
		return 1
	}
	if c.IsZero() {
		fmt.Fprintln(out, "{}")
		return 0
	}
	data, err := marshal.MarshalJSONItem(c.Key())
	if err != nil {
		fmt.Fprintf(out, "❌ %v\n", err)
		return 1
	}
	fmt.Fprintln(out, string(data))
	return 0
}

var errOffline = errors.New("dynamodel: transport offline, somente planejamento")

// offlineTransport permite montar requisições sem credenciais AWS.
type offlineTransport struct{}

func (offlineTransport) GetItem(context.Context, dyndb.GetRequest) (dyndb.Item, error) {
	return nil, errOffline
}

func (offlineTransport) PutItem(context.Context, dyndb.PutRequest) error { return errOffline }

func (offlineTransport) DeleteItem(context.Context, dyndb.DeleteRequest) error { return errOffline }

func (offlineTransport) UpdateItem(context.Context, dyndb.UpdateRequest) (dyndb.Item, error) {
	return nil, errOffline
}

func (offlineTransport) Query(context.Context, dyndb.Request) (dyndb.PageOutput, error) {
	return dyndb.PageOutput{}, errOffline
}

func (offlineTransport) Scan(context.Context, dyndb.Request) (dyndb.PageOutput, error) {
	return dyndb.PageOutput{}, errOffline
}
