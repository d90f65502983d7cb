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
package observability

import (
	"fmt"

	"github.com/DataDog/datadog-go/v5/statsd"

	"github.com/raywall/dynamodel/pkg/metrics"
)

// Config habilita o envio de métricas para o agente Datadog (DogStatsD).
type Config struct {
	Enabled   bool     `env:"DYNAMODEL_DATADOG_ENABLED" envDefault:"false" yaml:"enabled"`
	Addr      string   `env:"DYNAMODEL_DATADOG_ADDR" envDefault:"localhost:8125" yaml:"addr" validate:"required_if=Enabled true"`
	Namespace string   `env:"DYNAMODEL_DATADOG_NAMESPACE" envDefault:"dynamodel." yaml:"namespace"`
	Tags      []string `env:"DYNAMODEL_DATADOG_TAGS" yaml:"tags"`
}

// NoopProvider descarta todas as métricas.
type NoopProvider struct{}

func (n *NoopProvider) Count(name string, value float64, tags []string) error     { return nil }
func (n *NoopProvider) Gauge(name string, value float64, tags []string) error     { return nil }
func (n *NoopProvider) Histogram(name string, value float64, tags []string) error { return nil }

// DatadogProvider adapta a lib oficial do Datadog para nossa interface.
type DatadogProvider struct {
	client statsd.ClientInterface
}

// NewDatadogProvider usa um cliente statsd já criado.
func NewDatadogProvider(client statsd.ClientInterface) *DatadogProvider {
	return &DatadogProvider{client: client}
}

func (d *DatadogProvider) Count(name string, value float64, tags []string) error {
	return d.client.Count(name, int64(value), tags, 1)
}

func (d *DatadogProvider) Gauge(name string, value float64, tags []string) error {
	return d.client.Gauge(name, value, tags, 1)
}

func (d *DatadogProvider) Histogram(name string, value float64, tags []string) error {
	return d.client.Histogram(name, value, tags, 1)
}

// Close envia as métricas pendentes e fecha o cliente.
func (d *DatadogProvider) Close() error {
	return d.client.Close()
}

// SetupMetrics inicializa o provedor correto baseado na configuração.
func SetupMetrics(cfg Config) (metrics.Provider, error) {
	if !cfg.Enabled {
		return &NoopProvider{}, nil
	}

	opts := []statsd.Option{
		statsd.WithNamespace(cfg.Namespace),
	}
	if len(cfg.Tags) > 0 {
		opts = append(opts, statsd.WithTags(cfg.Tags))
	}

	client, err := statsd.New(cfg.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("observability: datadog statsd setup failed: %w", err)
	}

	return &DatadogProvider{client: client}, nil
}
