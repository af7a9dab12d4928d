package release

import (
	"github.com/iov-one/weave/errors"
)

var (
	// ErrInsufficientFunds is returned when the case escrow does not
	// hold enough of the requested asset class to cover a release.
	ErrInsufficientFunds = errors.Register(1610, "insufficient escrow balance")
)
