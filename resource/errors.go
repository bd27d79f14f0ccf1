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
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/tomoncle/restcrud/database"
	"github.com/tomoncle/restcrud/repository"
)

var (
	ErrInvalidID     = errors.New("id must be a Number")
	ErrMalformedBody = errors.New("malformed request body")
)

const loggerName = "RESOURCE"

func defaultLogger() database.Logger {
	return database.NewLogger(loggerName)
}

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	XMLName xml.Name `json:"-" xml:"error"`
	Error   string   `json:"error" xml:"message"`
}

// StatusFor maps an error returned by a repository, or raised while decoding
// a request, to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrMalformedBody),
		errors.Is(err, repository.ErrInvalidRange),
		errors.Is(err, repository.ErrMissingID),
		errors.Is(err, repository.ErrIDAssigned),
		errors.Is(err, repository.ErrNilEntity):
		return http.StatusBadRequest
	}
	if se, ok := repository.AsStorageError(err); ok && se.IsConstraintViolation() {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func messageFor(status int, err error) string {
	switch status {
	case http.StatusInternalServerError:
		return http.StatusText(status)
	case http.StatusConflict:
		se, _ := repository.AsStorageError(err)
		return fmt.Sprintf("%s rejected by storage: %s", se.Entity, se.Kind)
	default:
		return err.Error()
	}
}

func (res *Resource[T, P]) fail(c *gin.Context, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		res.logger.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err)
	}
	_ = c.Error(err)
	render(c, status, ErrorResponse{Error: messageFor(status, err)})
	c.Abort()
}

// bindError flattens a binding failure into ErrMalformedBody with a readable
// message; validator errors list each failing field.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := lo.Map(verrs, func(fe validator.FieldError, _ int) string {
			if fe.Param() != "" {
				return fmt.Sprintf("%s failed on '%s=%s'", fe.Field(), fe.Tag(), fe.Param())
			}
			return fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag())
		})
		return fmt.Errorf("%w: %s", ErrMalformedBody, strings.Join(fields, "; "))
	}
	return fmt.Errorf("%w: %v", ErrMalformedBody, err)
}
