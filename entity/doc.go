// Package entity defines the identity contract shared by every record the
// generic repository and resource layers operate on.
package entity
