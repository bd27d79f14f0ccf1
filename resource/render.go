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

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var offered = []string{binding.MIMEJSON, binding.MIMEXML}

// render writes data as JSON or XML depending on the Accept header; JSON is
// the default.
func render(c *gin.Context, status int, data any) {
	c.Negotiate(status, gin.Negotiate{Offered: offered, Data: data})
}

// renderList writes rows as a JSON array, or as a single <list> document
// holding one element per row when XML is negotiated.
func renderList[T any](c *gin.Context, status int, rows []*T) {
	c.Negotiate(status, gin.Negotiate{Offered: offered, JSONData: rows, XMLData: xmlList[T](rows)})
}

type xmlList[T any] []*T

func (l xmlList[T]) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start = xml.StartElement{Name: xml.Name{Local: "list"}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, row := range l {
		if err := e.Encode(row); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// bindBody decodes the request body into dst as XML when the content type
// says so and as JSON otherwise, then runs binding validation.
func bindBody(c *gin.Context, dst any) error {
	b := binding.JSON
	switch c.ContentType() {
	case binding.MIMEXML, binding.MIMEXML2:
		b = binding.XML
	}
	if err := c.ShouldBindWith(dst, b); err != nil {
		return bindError(err)
	}
	return nil
}
