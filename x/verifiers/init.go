package verifiers

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
)

// Initializer fulfils the Initializer interface to load data from the
// genesis file.
type Initializer struct{}

var _ weave.Initializer = (*Initializer)(nil)

// FromGenesis will parse initial verifier information from genesis and
// save it in the database.
func (*Initializer) FromGenesis(opts weave.Options, params weave.GenesisParams, db weave.KVStore) error {
	if err := gconf.InitConfig(db, opts, "verifiers", &Configuration{}); err != nil {
		return errors.Wrap(err, "init config")
	}

	var verifiers []weave.Address
	if err := opts.ReadOptions("verifiers", &verifiers); err != nil {
		return errors.Wrap(err, "read verifiers")
	}
	bucket := NewBucket()
	for i, addr := range verifiers {
		v := &Verifier{
			Metadata: &weave.Metadata{Schema: 1},
			Address:  addr,
		}
		if err := v.Validate(); err != nil {
			return errors.Wrapf(err, "verifier #%d", i)
		}
		if _, err := bucket.Put(db, addr, v); err != nil {
			return errors.Wrapf(err, "save verifier #%d", i)
		}
	}
	return nil
}
