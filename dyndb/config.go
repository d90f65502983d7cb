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
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/raywall/dynamodel/envloader"
)

// TableConfig declara a tabela: nome, chaves, índices e discriminador.
// É validada uma única vez na criação da Table.
type TableConfig struct {
	TableName      string        `env:"DYNAMODB_TABLE_NAME" yaml:"table_name" validate:"required"`
	HashKey        string        `env:"DYNAMODB_HASH_KEY" yaml:"hash_key"`
	SortKey        string        `env:"DYNAMODB_SORT_KEY" yaml:"sort_key"`           // opcional
	TTLAttribute   string        `env:"DYNAMODB_TTL_ATTRIBUTE" yaml:"ttl_attribute"` // opcional
	Region         string        `env:"AWS_REGION" yaml:"region"`
	Discriminator  string        `env:"DYNAMODB_DISCRIMINATOR" yaml:"discriminator"`
	ConsistentRead bool          `env:"DYNAMODB_CONSISTENT_READ" envDefault:"false" yaml:"consistent_read"`
	Indexes        []IndexConfig `yaml:"indexes" validate:"dive"`
}

// IndexConfig declara um índice secundário (GSI ou LSI).
type IndexConfig struct {
	Name           string               `yaml:"name" validate:"required"`
	HashKey        string               `yaml:"hash_key" validate:"required"`
	SortKey        string               `yaml:"sort_key"`
	ProjectionType types.ProjectionType `yaml:"projection_type" validate:"omitempty,oneof=ALL KEYS_ONLY INCLUDE"`
	// Local marca um LSI, onde leituras consistentes são permitidas.
	Local bool `yaml:"local"`
}

var configValidator = validator.New()

// Validate verifica a configuração. A ausência da partition key retorna
// ErrMissingPartitionKey; as demais falhas retornam ErrInvalidConfig.
func (c TableConfig) Validate() error {
	if strings.TrimSpace(c.HashKey) == "" {
		return ErrMissingPartitionKey
	}

	// 1. Validação Estrutural (tags validate)
	if err := configValidator.Struct(c); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var errMsgs []string
			for _, e := range validationErrors {
				errMsgs = append(errMsgs, fmt.Sprintf("field '%s' failed on '%s'", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("%w:\n- %s", ErrInvalidConfig, strings.Join(errMsgs, "\n- "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	// 2. Validação Semântica
	if c.SortKey != "" && c.SortKey == c.HashKey {
		return fmt.Errorf("%w: sort key %q equals the partition key", ErrInvalidConfig, c.SortKey)
	}
	if c.Discriminator != "" && (c.Discriminator == c.HashKey || c.Discriminator == c.SortKey) {
		return fmt.Errorf("%w: discriminator %q cannot be a key attribute", ErrInvalidConfig, c.Discriminator)
	}
	seen := make(map[string]bool, len(c.Indexes))
	for _, idx := range c.Indexes {
		if seen[idx.Name] {
			return fmt.Errorf("%w: duplicate index %q", ErrInvalidConfig, idx.Name)
		}
		seen[idx.Name] = true
		if idx.SortKey != "" && idx.SortKey == idx.HashKey {
			return fmt.Errorf("%w: index %q sort key equals its partition key", ErrInvalidConfig, idx.Name)
		}
		if idx.Local && idx.HashKey != c.HashKey {
			return fmt.Errorf("%w: local index %q must share the table partition key", ErrInvalidConfig, idx.Name)
		}
	}
	return nil
}

// Index retorna o índice declarado com o nome informado.
func (c TableConfig) Index(name string) (IndexConfig, bool) {
	for _, idx := range c.Indexes {
		if idx.Name == name {
			return idx, true
		}
	}
	return IndexConfig{}, false
}

// keySchema retorna as chaves da tabela ou do índice.
func (c TableConfig) keySchema(index string) (string, string, error) {
	if index == "" {
		return c.HashKey, c.SortKey, nil
	}
	idx, ok := c.Index(index)
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownIndex, index)
	}
	return idx.HashKey, idx.SortKey, nil
}

// LoadTableConfigFromEnv carrega a configuração das variáveis de ambiente
// (DYNAMODB_TABLE_NAME, DYNAMODB_HASH_KEY, ...) e a valida.
func LoadTableConfigFromEnv() (TableConfig, error) {
	var cfg TableConfig
	if err := envloader.Load(&cfg); err != nil {
		return TableConfig{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return TableConfig{}, err
	}
	return cfg, nil
}

// LoadTableConfigFile lê a configuração de um arquivo YAML. Variáveis de
// ambiente no formato ${VAR} são expandidas antes do parse.
func LoadTableConfigFile(path string) (TableConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TableConfig{}, fmt.Errorf("dyndb: read config: %w", err)
	}
	return ParseTableConfig(data)
}

// ParseTableConfig interpreta o conteúdo YAML de uma configuração de tabela.
func ParseTableConfig(data []byte) (TableConfig, error) {
	var cfg TableConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return TableConfig{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return TableConfig{}, err
	}
	return cfg, nil
}
