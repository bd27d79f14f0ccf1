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

package database

import (
	"context"
	"fmt"
	"os"
	"reflect"

	"github.com/uptrace/bun"
)

// SchemaManager creates the tables of registered models. It only ever adds
// missing tables; existing tables are left untouched.
type SchemaManager struct {
	db       *bun.DB
	logger   Logger
	registry ModelRegistry
}

// NewSchemaManager returns a SchemaManager over the default model registry.
func NewSchemaManager(db *bun.DB, logger Logger) *SchemaManager {
	return &SchemaManager{db: db, logger: logger, registry: defaultRegistry}
}

// WithRegistry swaps the registry the manager reads models from.
func (sm *SchemaManager) WithRegistry(registry ModelRegistry) *SchemaManager {
	sm.registry = registry
	return sm
}

// EnsureTables creates every missing table in one transaction. A failure on
// any model rolls back the tables created before it.
func (sm *SchemaManager) EnsureTables(ctx context.Context) error {
	if sm.db == nil {
		return fmt.Errorf("database not initialized")
	}
	// silent bootstrap
	if _, ok := os.LookupEnv("BUNDEBUG_SCHEMA"); !ok {
		EnableBunSqlSilent(true)
		defer EnableBunSqlSilent(false)
	}

	models := modelInstances(sm.registry.Models())

	tx, err := sm.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	var committed bool
	defer func() {
		if !committed {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && sm.logger != nil {
				sm.logger.Error("Failed to rollback transaction", "error", rollbackErr)
			}
		}
	}()

	for _, model := range models {
		_, err := tx.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table %s: %w", getModelName(model), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	if sm.logger != nil {
		sm.logger.Info("Database tables ensured", "models", len(models))
	}
	return nil
}

func getModelName(model interface{}) string {
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
