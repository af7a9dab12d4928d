package donation

import (
	"github.com/iov-one/weave/errors"
)

var (
	// ErrLimit is returned when a donation would push the escrow above
	// the funding goal plus the configured buffer.
	ErrLimit = errors.Register(1600, "donation exceeds funding limit")
)
