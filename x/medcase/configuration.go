package medcase

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

// Configuration holds the tunable parameters of the verification engine.
type Configuration struct {
	Metadata *weave.Metadata `json:"metadata"`
	// Owner is the administrator. It can update this configuration and
	// override stalled verification decisions.
	Owner weave.Address `json:"owner"`
	// QuorumPercent is the approval ratio (in percent of cast votes)
	// required to verify a case.
	QuorumPercent uint32 `json:"quorum_percent"`
	// VerificationWindow is how long after submission the case is
	// reserved for organic verifier voting. Only once it elapsed the
	// administrator can override.
	VerificationWindow weave.UnixDuration `json:"verification_window"`
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
	if c.QuorumPercent < 1 || c.QuorumPercent > 100 {
		errs = errors.AppendField(errs, "QuorumPercent",
			errors.Wrap(errors.ErrInput, "must be between 1 and 100"))
	}
	if c.VerificationWindow <= 0 {
		errs = errors.AppendField(errs, "VerificationWindow",
			errors.Wrap(errors.ErrInput, "must be a positive duration"))
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
	if err := gconf.Load(db, "medcase", &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}
