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
package metrics

import (
	"fmt"
	"sync"
)

// Event identifica um evento interno da biblioteca que gera métrica.
type Event string

const (
	EventPageFetched     Event = "page_fetched"
	EventPageItems       Event = "page_items"
	EventDecodeFailed    Event = "decode_failed"
	EventConditionFailed Event = "condition_failed"
	EventRequestFailed   Event = "request_failed"
)

// DefaultDefinitions mapeia os eventos para nomes e tipos de métrica.
func DefaultDefinitions() map[Event]MetricDefinition {
	return map[Event]MetricDefinition{
		EventPageFetched:     {Name: "dynamodel.page.fetched", Type: TypeCount},
		EventPageItems:       {Name: "dynamodel.page.items", Type: TypeHistogram},
		EventDecodeFailed:    {Name: "dynamodel.item.decode_failed", Type: TypeCount},
		EventConditionFailed: {Name: "dynamodel.condition.failed", Type: TypeCount},
		EventRequestFailed:   {Name: "dynamodel.request.failed", Type: TypeCount},
	}
}

// Recorder traduz eventos em chamadas ao Provider.
type Recorder struct {
	mu          sync.RWMutex
	definitions map[Event]MetricDefinition
	provider    Provider
}

// NewRecorder cria um Recorder com as definições padrão. provider nil
// descarta as métricas.
func NewRecorder(provider Provider) *Recorder {
	return &Recorder{
		definitions: DefaultDefinitions(),
		provider:    provider,
	}
}

// Define sobrescreve a definição de um evento.
func (r *Recorder) Define(event Event, def MetricDefinition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[event] = def
}

// Record envia o valor do evento para o Provider.
func (r *Recorder) Record(event Event, value float64, tags ...string) error {
	if r == nil || r.provider == nil {
		return nil
	}
	r.mu.RLock()
	def, exists := r.definitions[event]
	r.mu.RUnlock()
	if !exists {
		return fmt.Errorf("metrics: event %q is not defined", event)
	}

	switch def.Type {
	case TypeCount:
		return r.provider.Count(def.Name, value, tags)
	case TypeGauge:
		return r.provider.Gauge(def.Name, value, tags)
	case TypeHistogram:
		return r.provider.Histogram(def.Name, value, tags)
	default:
		return fmt.Errorf("metrics: unknown metric type %s", def.Type)
	}
}
