package release

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

// Configuration holds the board membership and the approval threshold
// for fund releases.
type Configuration struct {
	Metadata *weave.Metadata `json:"metadata"`
	Owner    weave.Address   `json:"owner"`
	// Members is the fixed set of addresses allowed to propose and vote
	// on releases.
	Members []weave.Address `json:"members"`
	// Threshold is the number of approvals required to execute a
	// proposal.
	Threshold uint32 `json:"threshold"`
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
	if len(c.Members) == 0 {
		errs = errors.AppendField(errs, "Members", errors.ErrEmpty)
	}
	seen := make(map[string]struct{}, len(c.Members))
	for i, m := range c.Members {
		if err := m.Validate(); err != nil {
			errs = errors.AppendField(errs, "Members", err)
			continue
		}
		if _, ok := seen[string(m)]; ok {
			errs = errors.AppendField(errs, "Members",
				errors.Wrapf(errors.ErrDuplicate, "member %d", i))
		}
		seen[string(m)] = struct{}{}
	}
	if c.Threshold < 1 {
		errs = errors.AppendField(errs, "Threshold",
			errors.Wrap(errors.ErrInput, "must be at least 1"))
	} else if int(c.Threshold) > len(c.Members) {
		errs = errors.AppendField(errs, "Threshold",
			errors.Wrap(errors.ErrInput, "cannot be greater than the member count"))
	}
	return errs
}

func (c *Configuration) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

func (c *Configuration) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, c)
}

// IsMember returns true if the given address belongs to the board.
func (c *Configuration) IsMember(addr weave.Address) bool {
	for _, m := range c.Members {
		if m.Equals(addr) {
			return true
		}
	}
	return false
}

func loadConf(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, "release", &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}
