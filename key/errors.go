package key

import "errors"

// Sentinel errors for key derivation.
var (
	// ErrNonDeterministicInput indicates an argument value that has no
	// stable canonical serialization (functions, channels, NaN, maps with
	// non-string keys, and similar).
	ErrNonDeterministicInput = errors.New("key: input is not deterministically serializable")

	// ErrInvalidFactoryID indicates an empty or malformed factory identifier.
	ErrInvalidFactoryID = errors.New("key: factory id is invalid")
)
