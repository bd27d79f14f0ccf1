// Package resource exposes a repository over HTTP with gin: create, list,
// get, range, count, update and delete routes for one entity type.
package resource
