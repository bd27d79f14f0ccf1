// Package config loads the crudserver configuration from a YAML file, a .env
// file, CRUD_* environment variables and command line flags, in increasing
// order of precedence.
package config
