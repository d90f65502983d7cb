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
package expr

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/raywall/dynamodel/pkg/marshal"
)

// MaxInValues é o limite de operandos do comparador IN no DynamoDB.
const MaxInValues = 100

// Mode indica o tipo de expressão sendo compilada.
type Mode int

const (
	ModeCondition Mode = iota
	ModeFilter
	ModeKeyCondition
)

func (m Mode) String() string {
	switch m {
	case ModeCondition:
		return "condition"
	case ModeFilter:
		return "filter"
	case ModeKeyCondition:
		return "key-condition"
	}
	return "unknown"
}

// Offset é o próximo índice livre de cada tabela de placeholders.
type Offset struct {
	Names  int
	Values int
}

// Expression é o resultado de uma compilação: o texto parametrizado e as
// tabelas de placeholders usadas por ele.
type Expression struct {
	Text   string
	Names  map[string]string
	Values map[string]types.AttributeValue
	// Next é o offset a ser usado pelo próximo fragmento compilado.
	Next Offset
}

// IsEmpty informa se a compilação não produziu texto.
func (e Expression) IsEmpty() bool { return e.Text == "" }

// MergeInto copia as tabelas de e para names e values. Um placeholder já
// existente só é aceito se apontar para o mesmo nome ou valor.
func (e Expression) MergeInto(names map[string]string, values map[string]types.AttributeValue) error {
	for k, v := range e.Names {
		if cur, ok := names[k]; ok && cur != v {
			return fmt.Errorf("%w: %s bound to %q and %q", ErrPlaceholderCollision, k, cur, v)
		}
		names[k] = v
	}
	for k, v := range e.Values {
		if cur, ok := values[k]; ok && !marshal.Equal(cur, v) {
			return fmt.Errorf("%w: %s bound to different values", ErrPlaceholderCollision, k)
		}
		values[k] = v
	}
	return nil
}

type options struct {
	offset  Offset
	schema  bool
	hashKey string
	sortKey string
}

// Option configura uma compilação.
type Option func(*options)

// WithOffset inicia a numeração dos placeholders em off.
func WithOffset(off Offset) Option {
	return func(o *options) { o.offset = off }
}

// WithKeySchema informa as chaves da tabela (ou do índice) para validar key conditions.
// sortKey vazio indica uma tabela sem sort key.
func WithKeySchema(hashKey, sortKey string) Option {
	return func(o *options) {
		o.schema = true
		o.hashKey = hashKey
		o.sortKey = sortKey
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// compiler mantém as tabelas de placeholders de uma compilação.
type compiler struct {
	nameByReal map[string]string
	valueByKey map[string]string
	names      map[string]string
	values     map[string]types.AttributeValue
	next       Offset
}

func newCompiler(off Offset) *compiler {
	return &compiler{
		nameByReal: make(map[string]string),
		valueByKey: make(map[string]string),
		names:      make(map[string]string),
		values:     make(map[string]types.AttributeValue),
		next:       off,
	}
}

func (c *compiler) result(text string) Expression {
	e := Expression{Text: text, Next: c.next}
	if len(c.names) > 0 {
		e.Names = c.names
	}
	if len(c.values) > 0 {
		e.Values = c.values
	}
	return e
}

func (c *compiler) name(real string) string {
	if p, ok := c.nameByReal[real]; ok {
		return p
	}
	p := fmt.Sprintf("#n%d", c.next.Names)
	c.next.Names++
	c.nameByReal[real] = p
	c.names[p] = real
	return p
}

func (c *compiler) attributeValue(av types.AttributeValue) string {
	key := marshal.Key(av)
	if p, ok := c.valueByKey[key]; ok {
		return p
	}
	p := fmt.Sprintf(":v%d", c.next.Values)
	c.next.Values++
	c.valueByKey[key] = p
	c.values[p] = av
	return p
}

func (c *compiler) literal(ref Ref, v any) (string, error) {
	av, err := marshal.EncodeScalar(v)
	if err != nil {
		return "", &LiteralError{Placeholder: fmt.Sprintf(":v%d", c.next.Values), Path: ref.String(), Err: err}
	}
	return c.attributeValue(av), nil
}

func (c *compiler) path(r Ref) (string, error) {
	if !r.valid() {
		return "", fmt.Errorf("%w: empty or malformed attribute reference", ErrInvalidOperand)
	}
	var sb strings.Builder
	for i, s := range r.path {
		if s.isIdx {
			fmt.Fprintf(&sb, "[%d]", s.index)
			continue
		}
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(c.name(s.name))
	}
	return sb.String(), nil
}

// operand renderiza v como caminho (quando é Ref) ou como literal.
func (c *compiler) operand(ref Ref, v any) (string, error) {
	switch x := v.(type) {
	case Ref:
		return c.path(x)
	case *Ref:
		if x != nil {
			return c.path(*x)
		}
	}
	return c.literal(ref, v)
}

// Compile compila n para o modo informado.
func Compile(n Node, mode Mode, opts ...Option) (Expression, error) {
	o := buildOptions(opts)
	if n == nil {
		return Expression{}, fmt.Errorf("%w: nil %s expression", ErrInvalidOperand, mode)
	}
	if mode == ModeKeyCondition {
		if err := validateKeyCondition(n, o); err != nil {
			return Expression{}, err
		}
	}
	c := newCompiler(o.offset)
	text, err := c.render(n)
	if err != nil {
		return Expression{}, err
	}
	return c.result(text), nil
}

// CompileProjection compila uma lista de atributos para ProjectionExpression.
func CompileProjection(refs []Ref, opts ...Option) (Expression, error) {
	o := buildOptions(opts)
	c := newCompiler(o.offset)
	parts := make([]string, 0, len(refs))
	seen := make(map[string]struct{}, len(refs))
	for _, r := range refs {
		if _, dup := seen[r.key()]; dup {
			continue
		}
		seen[r.key()] = struct{}{}
		p, err := c.path(r)
		if err != nil {
			return Expression{}, err
		}
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		return Expression{}, fmt.Errorf("%w: empty projection", ErrInvalidOperand)
	}
	return c.result(strings.Join(parts, ", ")), nil
}

func (c *compiler) render(n Node) (string, error) {
	switch x := n.(type) {
	case Compare:
		if !x.Op.valid() {
			return "", fmt.Errorf("%w: unknown operator %d", ErrInvalidOperand, x.Op)
		}
		l, err := c.path(x.Left)
		if err != nil {
			return "", err
		}
		r, err := c.operand(x.Left, x.Right)
		if err != nil {
			return "", err
		}
		return l + " " + x.Op.String() + " " + r, nil

	case Exists:
		p, err := c.path(x.Ref)
		if err != nil {
			return "", err
		}
		return "attribute_exists(" + p + ")", nil

	case NotExists:
		p, err := c.path(x.Ref)
		if err != nil {
			return "", err
		}
		return "attribute_not_exists(" + p + ")", nil

	case BeginsWith:
		return c.function("begins_with", x.Ref, x.Prefix)

	case Contains:
		return c.function("contains", x.Ref, x.Value)

	case Between:
		p, err := c.path(x.Ref)
		if err != nil {
			return "", err
		}
		lo, err := c.operand(x.Ref, x.Low)
		if err != nil {
			return "", err
		}
		hi, err := c.operand(x.Ref, x.High)
		if err != nil {
			return "", err
		}
		return p + " BETWEEN " + lo + " AND " + hi, nil

	case In:
		if len(x.Values) == 0 || len(x.Values) > MaxInValues {
			return "", fmt.Errorf("%w: IN takes 1 to %d values, got %d", ErrInvalidOperand, MaxInValues, len(x.Values))
		}
		p, err := c.path(x.Ref)
		if err != nil {
			return "", err
		}
		vals := make([]string, len(x.Values))
		for i, v := range x.Values {
			if vals[i], err = c.operand(x.Ref, v); err != nil {
				return "", err
			}
		}
		return p + " IN (" + strings.Join(vals, ", ") + ")", nil

	case AndNode:
		return c.binary(x.Left, x.Right, " AND ", true)

	case OrNode:
		return c.binary(x.Left, x.Right, " OR ", false)

	case NotNode:
		if x.Child == nil {
			return "", fmt.Errorf("%w: NOT without operand", ErrInvalidOperand)
		}
		s, err := c.render(x.Child)
		if err != nil {
			return "", err
		}
		switch x.Child.(type) {
		case AndNode, OrNode:
			s = "(" + s + ")"
		}
		return "NOT " + s, nil

	case RawNode:
		return c.raw(x.Condition)

	case nil:
		return "", fmt.Errorf("%w: nil node", ErrInvalidOperand)
	}
	return "", fmt.Errorf("%w: unsupported node %T", ErrInvalidOperand, n)
}

func (c *compiler) function(name string, ref Ref, v any) (string, error) {
	p, err := c.path(ref)
	if err != nil {
		return "", err
	}
	o, err := c.operand(ref, v)
	if err != nil {
		return "", err
	}
	return name + "(" + p + ", " + o + ")", nil
}

// binary renderiza os dois lados; dentro de um And, filhos Or recebem parênteses.
func (c *compiler) binary(left, right Node, op string, isAnd bool) (string, error) {
	if left == nil || right == nil {
		return "", fmt.Errorf("%w: nil operand in%s", ErrInvalidOperand, strings.TrimRight(op, " "))
	}
	parts := [2]string{}
	for i, child := range [2]Node{left, right} {
		s, err := c.render(child)
		if err != nil {
			return "", err
		}
		if _, isOr := child.(OrNode); isOr && isAnd {
			s = "(" + s + ")"
		}
		parts[i] = s
	}
	return parts[0] + op + parts[1], nil
}

var sdkPlaceholder = regexp.MustCompile(`[#:][0-9]+`)

// raw compila a condição com o builder do SDK e troca seus placeholders
// (#0, :0) pelos da tabela compartilhada.
func (c *compiler) raw(cond expression.ConditionBuilder) (string, error) {
	built, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidOperand, err)
	}
	text := built.Condition()
	if text == nil {
		return "", fmt.Errorf("%w: empty raw condition", ErrInvalidOperand)
	}
	names, values := built.Names(), built.Values()

	var rerr error
	out := sdkPlaceholder.ReplaceAllStringFunc(*text, func(tok string) string {
		if tok[0] == '#' {
			real, ok := names[tok]
			if !ok {
				rerr = fmt.Errorf("%w: raw condition references unknown name %s", ErrInvalidOperand, tok)
				return tok
			}
			return c.name(real)
		}
		av, ok := values[tok]
		if !ok {
			rerr = fmt.Errorf("%w: raw condition references unknown value %s", ErrInvalidOperand, tok)
			return tok
		}
		return c.attributeValue(av)
	})
	if rerr != nil {
		return "", rerr
	}
	return "(" + out + ")", nil
}
