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

package resource

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParseID parses a path segment as a signed 64-bit decimal id.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, ErrInvalidID
	}
	return id, nil
}

// pathIDs parses the named path parameters in order. On the first bad value it
// answers 400 with a plain-text message and reports false; the handler must
// return without touching the repository.
func (res *Resource[T, P]) pathIDs(c *gin.Context, names ...string) ([]int64, bool) {
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		id, err := ParseID(c.Param(name))
		if err != nil {
			_ = c.Error(err)
			c.String(http.StatusBadRequest, err.Error())
			c.Abort()
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}
