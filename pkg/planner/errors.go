package planner

import (
	"errors"
)

var (
	// ErrUpToDate is returned when an install or update would not
	// change the installed version.
	ErrUpToDate = errors.New("package is up to date")

	// ErrNotInstalled is returned when an erase or update names a
	// package that is not installed.
	ErrNotInstalled = errors.New("package is not installed")

	// ErrEmptyTransaction is returned when committing a transaction
	// with no members.
	ErrEmptyTransaction = errors.New("transaction is empty")

	// ErrNoSuchReport is returned when a stored report is requested
	// that does not exist.
	ErrNoSuchReport = errors.New("no such report")
)
