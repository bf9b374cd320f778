package memory

import "errors"

// ErrNilStore is returned by New when no storage driver is configured.
var ErrNilStore = errors.New("memory: storage driver is nil")
