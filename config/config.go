/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tomoncle/restcrud/database"
	"github.com/tomoncle/restcrud/server"
)

const (
	EnvPrefix         = "CRUD"
	defaultConfigName = "crudserver"
	defaultEnvFile    = ".env"
)

type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"` // text or json
}

type Config struct {
	Server   server.Config   `json:"server" yaml:"server" mapstructure:"server"`
	Database database.Config `json:"database" yaml:"database" mapstructure:"database"`
	Log      LogConfig       `json:"log" yaml:"log" mapstructure:"log"`
}

func DefaultConfig() *Config {
	cfg := &Config{
		Server:   server.DefaultConfig(),
		Database: *database.DefaultConfig(),
		Log:      LogConfig{Level: "info", Format: "text"},
	}
	cfg.Database.ConnectionConfig.Type = "sqlite"
	cfg.Database.ConnectionConfig.DBName = "crudserver"
	cfg.Database.SchemaConfig.EnsureOnStartup = true
	return cfg
}

// New returns a viper instance seeded with every key of DefaultConfig so that
// CRUD_* variables such as CRUD_DATABASE_CONNECTION_TYPE override them.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v, "", reflect.ValueOf(*DefaultConfig()))
	return v
}

// Load reads envFile (or ./.env when present) into the process environment,
// then configFile (or crudserver.yaml from . or /etc/crudserver) into v, and
// decodes the merged result.
func Load(v *viper.Viper, configFile, envFile string) (*Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(defaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/crudserver")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

func loadEnvFile(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
		return nil
	}
	if _, err := os.Stat(defaultEnvFile); err == nil {
		return godotenv.Load(defaultEnvFile)
	}
	return nil
}

// setDefaults registers each leaf field of val under its dotted mapstructure
// key.
func setDefaults(v *viper.Viper, prefix string, val reflect.Value) {
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		key := strings.Split(field.Tag.Get("mapstructure"), ",")[0]
		if key == "" || key == "-" {
			continue
		}
		if prefix != "" {
			key = prefix + "." + key
		}
		fv := val.Field(i)
		if fv.Kind() == reflect.Struct {
			setDefaults(v, key, fv)
			continue
		}
		v.SetDefault(key, fv.Interface())
	}
}
