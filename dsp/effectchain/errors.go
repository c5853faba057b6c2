package effectchain

import "errors"

var (
	// ErrMalformedConfig reports an effect configuration payload that is
	// not a JSON object of override objects.
	ErrMalformedConfig = errors.New("effectchain: malformed effect configuration")

	// ErrApply reports a failure while running a built chain. No partial
	// output accompanies it.
	ErrApply = errors.New("effectchain: apply failed")

	// ErrInvalidDefinition reports a registry entry that cannot be loaded.
	ErrInvalidDefinition = errors.New("effectchain: invalid effect definition")
)
