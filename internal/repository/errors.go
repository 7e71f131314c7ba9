// Package repository holds the MySQL data access for the room catalog.  The
// sentinel errors below let callers tell an empty store from a broken one:
// startup falls back to the JSON chart on ErrEmptyCatalog but fails hard on
// anything else.
package repository

import "errors"

// ErrEmptyCatalog is returned by LoadAll when no rooms have been stored yet.
var ErrEmptyCatalog = errors.New("no rooms stored")

// ErrNoImport is returned when the import history is empty.
var ErrNoImport = errors.New("no catalog import recorded")
