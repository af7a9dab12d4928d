/*
Package medfund links together all the various components to construct
the medfundd app.
*/
package medfund

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/app"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
	"github.com/iov-one/weave/store/iavl"
	"github.com/iov-one/weave/x"
	"github.com/iov-one/weave/x/batch"
	"github.com/iov-one/weave/x/cash"
	"github.com/iov-one/weave/x/currency"
	"github.com/iov-one/weave/x/msgfee"
	"github.com/iov-one/weave/x/sigs"
	"github.com/iov-one/weave/x/utils"

	"github.com/medifund/medifund/x/donation"
	"github.com/medifund/medifund/x/medcase"
	"github.com/medifund/medifund/x/receipt"
	"github.com/medifund/medifund/x/release"
	"github.com/medifund/medifund/x/verifiers"
)

// Authenticator returns the typical authentication, just using public
// key signatures.
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{})
}

// Chain returns a chain of decorators, to handle authentication, fees,
// logging, and recovery.
func Chain(authFn x.Authenticator, minFee coin.Coin) app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		utils.NewKeyTagger(),
		utils.NewActionTagger(),
		// on CheckTx, bad tx don't affect state
		utils.NewSavepoint().OnCheck(),
		sigs.NewDecorator(),
		batch.NewDecorator(),
		msgfee.NewFeeDecorator(),
		msgfee.NewAntispamFeeDecorator(minFee),
		cash.NewDynamicFeeDecorator(authFn, CashControl()),
		// on DeliverTx, bad tx will increment nonce and take fee even if
		// the message fails
		utils.NewSavepoint().OnDeliver(),
	)
}

// Router returns a default router, dispatching to all message handlers
// of the application.
func Router(authFn x.Authenticator) *app.Router {
	r := app.NewRouter()

	ctrl := CashControl()
	cash.RegisterRoutes(r, authFn, ctrl)
	currency.RegisterRoutes(r, authFn, nil)
	migration.RegisterRoutes(r, authFn)
	verifiers.RegisterRoutes(r, authFn)
	medcase.RegisterRoutes(r, authFn, verifiers.NewRegistry())
	donation.RegisterRoutes(r, authFn, ctrl, receipt.NewController())
	release.RegisterRoutes(r, authFn, ctrl)
	return r
}

// QueryRouter returns a default query router, allowing access to
// "/wallets", "/auth", "/verifiers", "/cases", "/donors", "/receipts",
// "/proposals" and the raw store.
func QueryRouter() weave.QueryRouter {
	r := weave.NewQueryRouter()
	r.RegisterAll(
		cash.RegisterQuery,
		currency.RegisterQuery,
		sigs.RegisterQuery,
		migration.RegisterQuery,
		verifiers.RegisterQuery,
		medcase.RegisterQuery,
		donation.RegisterQuery,
		receipt.RegisterQuery,
		release.RegisterQuery,
		orm.RegisterQuery,
	)
	return r
}

// Stack wires up a standard router with a standard decorator chain.
// This can be passed into BaseApp.
func Stack(minFee coin.Coin) weave.Handler {
	authFn := Authenticator()
	return Chain(authFn, minFee).WithHandler(Router(authFn))
}

// Application constructs a basic ABCI application with the given
// arguments. If you are not sure what to use for the Handler, just use
// Stack().
func Application(name string, h weave.Handler,
	tx weave.TxDecoder, dbPath string, debug bool) (app.BaseApp, error) {

	ctx := context.Background()
	kv, err := CommitKVStore(dbPath)
	if err != nil {
		return app.BaseApp{}, err
	}
	store := app.NewStoreApp(name, kv, QueryRouter(), ctx)
	base := app.NewBaseApp(store, tx, h, nil, debug)
	return base, nil
}

// CommitKVStore returns an initialized KVStore that persists the data
// to the named path.
func CommitKVStore(dbPath string) (weave.CommitKVStore, error) {
	// memory backed case, just for testing
	if dbPath == "" {
		return iavl.MockCommitStore(), nil
	}

	// Expand the path fully
	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("invalid database name: %s", path)
	}

	// Some external calls accidentally add a ".db", which is now removed
	path = strings.TrimSuffix(path, filepath.Ext(path))

	// Split the database name into it's components (dir, name)
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	return iavl.NewCommitStore(dir, name), nil
}
