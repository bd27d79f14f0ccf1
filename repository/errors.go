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

package repository

import (
	"errors"
	"fmt"

	"github.com/tomoncle/restcrud/database"
)

var (
	ErrNotFound     = errors.New("entity not found")
	ErrInvalidRange = errors.New("range start must be a non-negative number not greater than range end")
	ErrMissingID    = errors.New("id is required")
	ErrIDAssigned   = errors.New("id is assigned by storage and must not be set")
	ErrNilEntity    = errors.New("entity cannot be nil")
)

// StorageError wraps a failure reported by the storage engine. Writes that
// fail with a StorageError have been rolled back.
type StorageError struct {
	Op     string
	Entity string
	Kind   database.SQLError
	Err    error
}

func newStorageError(op, entity string, err error) *StorageError {
	return &StorageError{Op: op, Entity: entity, Kind: database.Classify(err), Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Entity, e.Kind, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsConstraintViolation reports whether the engine rejected the data itself.
func (e *StorageError) IsConstraintViolation() bool {
	return e.Kind.IsConstraintViolation()
}

// AsStorageError extracts a StorageError from err's chain.
func AsStorageError(err error) (*StorageError, bool) {
	var se *StorageError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
