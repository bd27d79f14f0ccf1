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

package types

import "math"

// RangeRequest selects the records at positions From..To (inclusive, zero
// based) in the storage engine's natural order.
type RangeRequest struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

// NewRangeRequest constructs a RangeRequest.
func NewRangeRequest(from, to int64) *RangeRequest {
	return &RangeRequest{From: from, To: to}
}

// Valid reports whether the range can be sent to the storage engine: the
// start is not negative and does not pass the end.
func (r *RangeRequest) Valid() bool {
	return r.From >= 0 && r.From <= r.To
}

func (r *RangeRequest) GetOffset() int {
	if r.From > math.MaxInt {
		return math.MaxInt
	}
	return int(r.From)
}

// GetLimit returns To-From+1, saturated to the platform int. Callers must
// check Valid first.
func (r *RangeRequest) GetLimit() int {
	span := r.To - r.From
	if span < 0 {
		return 0
	}
	if span >= math.MaxInt {
		return math.MaxInt
	}
	return int(span) + 1
}
