// Package repository provides a generic repository built on Bun that
// creates, reads, lists, ranges, counts, edits and removes one entity type,
// running every write in its own transaction.
package repository
