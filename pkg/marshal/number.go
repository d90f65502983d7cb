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
package marshal

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// Number é um decimal exato em sua forma textual.
// Use Number quando o valor não pode sofrer arredondamento de float64
// (valores monetários, contadores grandes).
type Number string

// ParseNumber valida s como decimal finito e retorna o Number correspondente.
func ParseNumber(s string) (Number, error) {
	if _, err := parseDecimal(s); err != nil {
		return "", err
	}
	return Number(strings.TrimSpace(s)), nil
}

// NumberFromFloat converte f para o menor texto decimal que representa f sem perda.
func NumberFromFloat(f float64) (Number, error) {
	s, err := formatFloat(f, 64)
	if err != nil {
		return "", err
	}
	return Number(s), nil
}

func (n Number) String() string { return string(n) }

// Canonical retorna a forma canônica do número: "1.50", "1.5" e "15E-1"
// resultam em "1.5".
func (n Number) Canonical() (Number, error) {
	s, err := canonicalNumber(string(n))
	if err != nil {
		return "", err
	}
	return Number(s), nil
}

// Decimal retorna o valor como *apd.Decimal.
func (n Number) Decimal() (*apd.Decimal, error) { return parseDecimal(string(n)) }

// Int64 converte o número para int64. Falha se houver parte fracionária ou overflow.
func (n Number) Int64() (int64, error) { return parseInt(string(n)) }

// Float64 converte o número para float64, podendo perder precisão.
func (n Number) Float64() (float64, error) { return strconv.ParseFloat(string(n), 64) }

// Cmp compara dois números pelo valor: -1, 0 ou 1.
func (n Number) Cmp(other Number) (int, error) {
	a, err := n.Decimal()
	if err != nil {
		return 0, err
	}
	b, err := other.Decimal()
	if err != nil {
		return 0, err
	}
	return a.Cmp(b), nil
}

func parseDecimal(s string) (*apd.Decimal, error) {
	d, _, err := apd.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid number %q", ErrMalformedValue, s)
	}
	if d.Form != apd.Finite {
		return nil, fmt.Errorf("%w: number %q is not finite", ErrNotRepresentable, s)
	}
	return d, nil
}

// canonicalNumber reduz o texto decimal à forma canônica, de modo que
// "1.50", "1.5" e "15E-1" resultem no mesmo texto.
func canonicalNumber(s string) (string, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return "", err
	}
	d.Reduce(d)
	if d.IsZero() {
		d.Negative = false
	}
	return d.String(), nil
}

// Limites do tipo N do DynamoDB.
const (
	maxDigits      = 38
	minAdjExponent = -130
	maxAdjExponent = 125
)

// checkRange rejeita números fora da faixa do DynamoDB: no máximo 38 dígitos
// significativos e magnitude entre 1E-130 e 9.99...E+125.
func checkRange(d *apd.Decimal) error {
	if d.IsZero() {
		return nil
	}
	var r apd.Decimal
	r.Reduce(d)
	digits := r.NumDigits()
	if digits > maxDigits {
		return fmt.Errorf("%w: %s has %d significant digits (max %d)", ErrNotRepresentable, d.String(), digits, maxDigits)
	}
	adj := int64(r.Exponent) + digits - 1
	if adj < minAdjExponent || adj > maxAdjExponent {
		return fmt.Errorf("%w: %s is out of range", ErrNotRepresentable, d.String())
	}
	return nil
}

func formatFloat(f float64, bits int) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("%w: %v", ErrNotRepresentable, f)
	}
	d, err := parseDecimal(strconv.FormatFloat(f, 'e', -1, bits))
	if err != nil {
		return "", err
	}
	if err := checkRange(d); err != nil {
		return "", err
	}
	return strconv.FormatFloat(f, 'f', -1, bits), nil
}

func parseInt(s string) (int64, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	d, err := parseDecimal(s)
	if err != nil {
		return 0, err
	}
	d.Reduce(d)
	if d.Exponent < 0 {
		return 0, fmt.Errorf("%w: number %q is not an integer", ErrTypeMismatch, s)
	}
	i, err := d.Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: number %q overflows int64", ErrTypeMismatch, s)
	}
	return i, nil
}

func parseUint(s string) (uint64, error) {
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return u, nil
	}
	i, err := parseInt(s)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		return 0, fmt.Errorf("%w: number %q is negative", ErrTypeMismatch, s)
	}
	return uint64(i), nil
}
