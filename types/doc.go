// Package types holds small value types shared by the repository and
// resource layers: range requests, the resource verb enum and JSON columns.
package types
