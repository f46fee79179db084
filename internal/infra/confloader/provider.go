// Package confloader provides configuration loading mechanism.
package confloader

import (
	"errors"
	"strings"

	"github.com/knadh/koanf/maps"
)

// ErrReadBytesNotSupported is returned when ReadBytes is called on a map provider.
var ErrReadBytesNotSupported = errors.New("confloader: ReadBytes not supported by map provider, use Read() instead")

// mapProvider loads configuration from a map. Keys may be dotted
// ("log.level") or nested maps; dotted keys are expanded so both forms
// merge with file and env sources.
type mapProvider map[string]any

// ReadBytes returns an error as map provider doesn't support byte serialization.
func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, ErrReadBytesNotSupported
}

// Read returns the configuration map.
func (m mapProvider) Read() (map[string]any, error) {
	flat := make(map[string]any, len(m))
	nested := false
	for k, v := range m {
		if strings.Contains(k, ".") {
			nested = true
		}
		flat[k] = v
	}
	if !nested {
		return flat, nil
	}
	return maps.Unflatten(flat, "."), nil
}
