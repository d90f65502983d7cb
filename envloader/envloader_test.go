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
package envloader

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_StringFields(t *testing.T) {
	type Config struct {
		Table   string `env:"DYNAMODEL_TEST_TABLE" envDefault:"users"`
		HashKey string `env:"DYNAMODEL_TEST_HASH_KEY" envDefault:"pk"`
	}

	config := &Config{}
	require.NoError(t, Load(config))
	assert.Equal(t, "users", config.Table)
	assert.Equal(t, "pk", config.HashKey)

	t.Setenv("DYNAMODEL_TEST_TABLE", "orders")
	t.Setenv("DYNAMODEL_TEST_HASH_KEY", "id")

	config2 := &Config{}
	require.NoError(t, Load(config2))
	assert.Equal(t, "orders", config2.Table)
	assert.Equal(t, "id", config2.HashKey)
}

func TestLoad_NumericAndBoolFields(t *testing.T) {
	type Config struct {
		Limit      int32   `env:"DYNAMODEL_TEST_LIMIT" envDefault:"100"`
		MaxRetries uint8   `env:"DYNAMODEL_TEST_RETRIES" envDefault:"3"`
		Ratio      float64 `env:"DYNAMODEL_TEST_RATIO" envDefault:"0.5"`
		Consistent bool    `env:"DYNAMODEL_TEST_CONSISTENT" envDefault:"TRUE"`
	}

	config := &Config{}
	require.NoError(t, Load(config))
	assert.Equal(t, int32(100), config.Limit)
	assert.Equal(t, uint8(3), config.MaxRetries)
	assert.Equal(t, 0.5, config.Ratio)
	assert.True(t, config.Consistent)
}

func TestLoad_DurationPointerAndSlice(t *testing.T) {
	type Config struct {
		TTL     time.Duration `env:"DYNAMODEL_TEST_TTL" envDefault:"720h"`
		Region  *string       `env:"DYNAMODEL_TEST_REGION"`
		Indexes []string      `env:"DYNAMODEL_TEST_INDEXES" envSeparator:";"`
		Ports   []int         `env:"DYNAMODEL_TEST_PORTS"`
	}

	t.Setenv("DYNAMODEL_TEST_REGION", "sa-east-1")
	t.Setenv("DYNAMODEL_TEST_INDEXES", "gsi1; gsi2;;")
	t.Setenv("DYNAMODEL_TEST_PORTS", "8000,8001")

	config := &Config{}
	require.NoError(t, Load(config))
	assert.Equal(t, 720*time.Hour, config.TTL)
	require.NotNil(t, config.Region)
	assert.Equal(t, "sa-east-1", *config.Region)
	assert.Equal(t, []string{"gsi1", "gsi2"}, config.Indexes)
	assert.Equal(t, []int{8000, 8001}, config.Ports)
}

func TestLoad_Required(t *testing.T) {
	type Config struct {
		Table string `env:"DYNAMODEL_TEST_REQUIRED_TABLE" envRequired:"true"`
	}

	err := Load(&Config{})
	var reqErr *RequiredError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, "Table", reqErr.FieldName)
	assert.Equal(t, "DYNAMODEL_TEST_REQUIRED_TABLE", reqErr.EnvVar)

	// Valor prévio satisfaz o requisito
	assert.NoError(t, Load(&Config{Table: "preset"}))

	t.Setenv("DYNAMODEL_TEST_REQUIRED_TABLE", "users")
	config := &Config{}
	require.NoError(t, Load(config))
	assert.Equal(t, "users", config.Table)
}

func TestLoad_WithoutEnvTag(t *testing.T) {
	type Config struct {
		Table string `env:"DYNAMODEL_TEST_TABLE" envDefault:"users"`
		Owner string
	}

	config := &Config{Owner: "original"}
	require.NoError(t, Load(config))
	assert.Equal(t, "users", config.Table)
	assert.Equal(t, "original", config.Owner)
}

func TestLoad_InvalidConfig(t *testing.T) {
	var config string
	err := Load(config)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "pointer to struct")

	var config2 int
	err = Load(&config2)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "pointer to struct")
}

func TestLoad_ConversionErrors(t *testing.T) {
	type Config struct {
		Limit int `env:"DYNAMODEL_TEST_BAD_LIMIT" envDefault:"not-a-number"`
	}

	err := Load(&Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error setting field Limit")

	var fieldErr *FieldError
	require.True(t, errors.As(err, &fieldErr))
	var numErr *strconv.NumError
	assert.True(t, errors.As(err, &numErr))

	type Unsupported struct {
		Attrs map[string]string `env:"DYNAMODEL_TEST_ATTRS" envDefault:"a=b"`
	}
	err = Load(&Unsupported{})
	var typeErr *UnsupportedTypeError
	assert.True(t, errors.As(err, &typeErr))
}

func TestMustLoad(t *testing.T) {
	type Config struct {
		Table string `env:"DYNAMODEL_TEST_TABLE" envDefault:"users"`
	}

	config := &Config{}
	assert.NotPanics(t, func() { MustLoad(config) })
	assert.Equal(t, "users", config.Table)

	assert.Panics(t, func() { MustLoad("not-a-pointer") })
}

func TestLoad_NestedStruct(t *testing.T) {
	type LogConfig struct {
		Level string `env:"DYNAMODEL_TEST_LOG_LEVEL" envDefault:"info"`
	}
	type TableConfig struct {
		Name string `env:"DYNAMODEL_TEST_NESTED_TABLE" envDefault:"users"`
	}
	type AppConfig struct {
		Log   LogConfig
		Table *TableConfig
	}

	t.Setenv("DYNAMODEL_TEST_LOG_LEVEL", "debug")

	config := &AppConfig{}
	require.NoError(t, Load(config))
	assert.Equal(t, "debug", config.Log.Level)
	require.NotNil(t, config.Table)
	assert.Equal(t, "users", config.Table.Name)
}
