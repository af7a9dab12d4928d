package medfund

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/app"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/commands/server"
	"github.com/iov-one/weave/crypto"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/x/cash"
	"github.com/iov-one/weave/x/currency"
	"github.com/iov-one/weave/x/msgfee"
	abci "github.com/tendermint/tendermint/abci/types"

	"github.com/medifund/medifund/x/donation"
	"github.com/medifund/medifund/x/medcase"
	"github.com/medifund/medifund/x/release"
	"github.com/medifund/medifund/x/verifiers"
)

// GenInitOptions will produce some basic options for one rich account,
// to use for dev mode.
//
// The address passed as the second argument owns all configurations,
// acts as the sole verifier and the sole release board member. A real
// network replaces all of this in its own genesis file.
func GenInitOptions(args []string) (json.RawMessage, error) {
	ticker := "MED"
	if len(args) > 0 {
		ticker = args[0]
		if err := (coin.Coin{Ticker: ticker, Whole: 1}).Validate(); err != nil {
			return nil, fmt.Errorf("invalid ticker %s", ticker)
		}
	}

	var addr string
	if len(args) > 1 {
		addr = args[1]
	} else {
		// if no address provided, auto-generate one
		// and print out a recovery phrase
		bz, phrase, err := GenerateCoinKey()
		if err != nil {
			return nil, err
		}
		addr = bz.String()
		fmt.Println(phrase)
	}

	opts := fmt.Sprintf(`
	{
		"cash": [
			{
				"address": "%s",
				"coins": ["123456789 %s"]
			}
		],
		"currencies": [
			{"ticker": "%s", "name": "Medical fund token"}
		],
		"verifiers": ["%s"],
		"conf": {
			"cash": {
				"collector_address": "%s",
				"minimal_fee": "0 %s"
			},
			"migration": {
				"admin": "%s"
			},
			"verifiers": {
				"owner": "%s"
			},
			"medcase": {
				"owner": "%s",
				"quorum_percent": 70,
				"verification_window": "864000s"
			},
			"donation": {
				"owner": "%s",
				"buffer_percent": 10
			},
			"release": {
				"owner": "%s",
				"members": ["%s"],
				"threshold": 1
			}
		},
		"initialize_schema": [
			{"pkg": "cash", "ver": 1},
			{"pkg": "sigs", "ver": 1},
			{"pkg": "currency", "ver": 1},
			{"pkg": "msgfee", "ver": 1},
			{"pkg": "verifiers", "ver": 1},
			{"pkg": "medcase", "ver": 1},
			{"pkg": "donation", "ver": 1},
			{"pkg": "receipt", "ver": 1},
			{"pkg": "release", "ver": 1}
		]
	}
	`, addr, ticker, ticker, addr, addr, ticker, addr, addr, addr, addr, addr, addr)
	return []byte(opts), nil
}

// GenerateApp is used to create a stub for server/start.go command.
func GenerateApp(options *server.Options) (abci.Application, error) {
	// db goes in a subdir, but "" -> "" for memdb
	var dbPath string
	if options.Home != "" {
		dbPath = filepath.Join(options.Home, "medfund.db")
	}

	stack := Stack(options.MinFee)
	application, err := Application("medfundd", stack, TxDecoder, dbPath, options.Debug)
	if err != nil {
		return nil, err
	}

	application.WithInit(app.ChainInitializers(
		&migration.Initializer{},
		&cash.Initializer{},
		&currency.Initializer{},
		&msgfee.Initializer{},
		&verifiers.Initializer{},
		&medcase.Initializer{},
		&donation.Initializer{},
		&release.Initializer{},
	))

	// set the logger and return
	application.WithLogger(options.Logger)
	return application, nil
}

type output struct {
	Pubkey *crypto.PublicKey  `json:"pub_key"`
	Secret *crypto.PrivateKey `json:"secret"`
}

// GenerateCoinKey returns the address of a public key, along with a
// json representation of the keys. You can give coins to this address
// and import the keys in a client to use them.
func GenerateCoinKey() (weave.Address, string, error) {
	privKey := crypto.GenPrivKeyEd25519()
	pubKey := privKey.PublicKey()
	addr := pubKey.Address()

	out := output{Pubkey: pubKey, Secret: privKey}
	keys, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, "", err
	}

	return addr, string(keys), nil
}
