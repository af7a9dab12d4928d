package donation

import (
	"encoding/json"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/migration"
)

func init() {
	migration.MustRegister(1, &Configuration{}, migration.NoModification)
}

const maxBufferPercent = 100

// Configuration holds the tunable parameters of the donation ledger.
type Configuration struct {
	Metadata *weave.Metadata `json:"metadata"`
	Owner    weave.Address   `json:"owner"`
	// BufferPercent is the overfunding slack allowed on top of the
	// funding goal of each asset class. Zero means the goal is a hard
	// cap.
	BufferPercent uint32 `json:"buffer_percent"`
}

var _ gconf.Configuration = (*Configuration)(nil)

func (c *Configuration) GetMetadata() *weave.Metadata {
	return c.Metadata
}

func (c *Configuration) GetOwner() weave.Address {
	return c.Owner
}

func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", c.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	if c.BufferPercent > maxBufferPercent {
		errs = errors.AppendField(errs, "BufferPercent",
			errors.Wrapf(errors.ErrInput, "must not be greater than %d", maxBufferPercent))
	}
	return errs
}

func (c *Configuration) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

func (c *Configuration) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, c)
}

func loadConf(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, "donation", &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}
