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
	"strconv"
	"time"
)

// TimeLayout é o formato usado para datas no fio. Tem largura fixa e está
// sempre em UTC, então a comparação de strings segue a ordem cronológica.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// FormatTime formata t em UTC usando TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// checkTimeRange garante o ano com quatro dígitos exigido por TimeLayout;
// fora de 0..9999 a ordem lexicográfica deixa de seguir a cronológica.
func checkTimeRange(t time.Time) error {
	if y := t.UTC().Year(); y < 0 || y > 9999 {
		return fmt.Errorf("%w: year %d outside 0..9999", ErrNotRepresentable, y)
	}
	return nil
}

// ParseTime aceita RFC3339 (com ou sem fração) e datas simples (2006-01-02).
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: invalid timestamp %q", ErrMalformedValue, s)
}

// parseEpoch interpreta um N como segundos desde a época Unix (formato de TTL).
func parseEpoch(s string) (time.Time, error) {
	if sec, err := parseInt(s); err == nil {
		return time.Unix(sec, 0).UTC(), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid epoch %q", ErrMalformedValue, s)
	}
	sec := int64(f)
	return time.Unix(sec, int64((f-float64(sec))*1e9)).UTC(), nil
}
