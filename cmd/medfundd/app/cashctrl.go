package medfund

import (
	"github.com/iov-one/weave/x/cash"
)

// CashControl returns a controller for the standard cash wallets. All
// handlers that move funds share this controller so that balances are
// kept in a single bucket.
func CashControl() cash.Controller {
	return cash.NewController(cash.NewBucket())
}
