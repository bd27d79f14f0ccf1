// Package database provides connection management, table bootstrap for
// registered models, configuration types, SQL error classification, logging
// and query hooks built on top of Bun.
package database
