package verifiers

import (
	"encoding/json"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
)

func init() {
	migration.MustRegister(1, &Verifier{}, migration.NoModification)
}

// Verifier is a single registry entry, stored under the verifier address.
type Verifier struct {
	Metadata *weave.Metadata `json:"metadata"`
	Address  weave.Address   `json:"address"`
	AddedAt  weave.UnixTime  `json:"added_at"`
}

var _ orm.Model = (*Verifier)(nil)

func (v *Verifier) GetMetadata() *weave.Metadata {
	return v.Metadata
}

func (v *Verifier) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", v.Metadata.Validate())
	errs = errors.AppendField(errs, "Address", v.Address.Validate())
	if err := v.AddedAt.Validate(); err != nil {
		errs = errors.AppendField(errs, "AddedAt", err)
	}
	return errs
}

func (v *Verifier) Marshal() ([]byte, error) {
	return json.Marshal(v)
}

func (v *Verifier) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, v)
}

// NewBucket returns a bucket with one record per registered verifier,
// keyed by the verifier address.
func NewBucket() orm.ModelBucket {
	b := orm.NewModelBucket("verifier", &Verifier{})
	return migration.NewModelBucket("verifiers", b)
}

// Checker is implemented by the registry and consumed by extensions that
// must authorize verifier actions.
type Checker interface {
	IsVerifier(db weave.KVStore, addr weave.Address) (bool, error)
}

// Registry provides verifier membership checks for other extensions.
type Registry struct {
	bucket orm.ModelBucket
}

var _ Checker = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{bucket: NewBucket()}
}

// IsVerifier returns true if the given address is currently registered.
func (r *Registry) IsVerifier(db weave.KVStore, addr weave.Address) (bool, error) {
	switch err := r.bucket.Has(db, addr); {
	case err == nil:
		return true, nil
	case errors.ErrNotFound.Is(err):
		return false, nil
	default:
		return false, errors.Wrap(err, "bucket lookup")
	}
}
