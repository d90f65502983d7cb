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
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config controla o logger da aplicação. Pode ser carregada via envloader.
type Config struct {
	Level   string `env:"DYNAMODEL_LOG_LEVEL" envDefault:"info" yaml:"level"`
	Format  string `env:"DYNAMODEL_LOG_FORMAT" envDefault:"json" yaml:"format" validate:"omitempty,oneof=json console"`
	Enabled bool   `env:"DYNAMODEL_LOG_ENABLED" envDefault:"true" yaml:"enabled"`
}

// Configure cria o logger base. Formato "console" usa saída legível;
// qualquer outro valor gera JSON.
func Configure(cfg Config) zerolog.Logger {
	return ConfigureWriter(cfg, os.Stdout)
}

// ConfigureWriter é como Configure, escrevendo em out.
func ConfigureWriter(cfg Config, out io.Writer) zerolog.Logger {
	// Define o nível de log (default: info)
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := out
	if !cfg.Enabled {
		output = io.Discard
	} else if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("component", "dynamodel").
		Logger()
}
