package receipt

import (
	"encoding/json"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
)

func init() {
	migration.MustRegister(1, &Receipt{}, migration.NoModification)
}

// Receipt is a cumulative proof-of-donation record for one donor and one
// case. The bucket key is the case ID concatenated with the donor
// address.
type Receipt struct {
	Metadata *weave.Metadata `json:"metadata"`
	CaseID   string          `json:"case_id"`
	Donor    weave.Address   `json:"donor"`
	// Cumulative is the total amount this donor contributed to the case
	// across all donations.
	Cumulative coin.Coins `json:"cumulative"`
	Donations  uint32     `json:"donations"`
}

var _ orm.Model = (*Receipt)(nil)

func (r *Receipt) GetMetadata() *weave.Metadata {
	return r.Metadata
}

func (r *Receipt) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", r.Metadata.Validate())
	if r.CaseID == "" {
		errs = errors.AppendField(errs, "CaseID", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "Donor", r.Donor.Validate())
	if err := r.Cumulative.Validate(); err != nil {
		errs = errors.AppendField(errs, "Cumulative", err)
	}
	if r.Donations == 0 {
		errs = errors.AppendField(errs, "Donations",
			errors.Wrap(errors.ErrState, "must record at least one donation"))
	}
	return errs
}

func (r *Receipt) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

func (r *Receipt) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, r)
}

// NewBucket returns a bucket for keeping receipt records.
func NewBucket() orm.ModelBucket {
	b := orm.NewModelBucket("receipts", &Receipt{},
		orm.WithIndex("donor", idxDonor, false),
	)
	return migration.NewModelBucket("receipt", b)
}

// RegisterQuery will register this bucket as "/receipts".
func RegisterQuery(qr weave.QueryRouter) {
	NewBucket().Register("receipts", qr)
}

func receiptKey(caseID string, donor weave.Address) []byte {
	key := make([]byte, 0, len(caseID)+len(donor))
	key = append(key, caseID...)
	return append(key, donor...)
}

func idxDonor(obj orm.Object) ([]byte, error) {
	if obj == nil || obj.Value() == nil {
		return nil, errors.Wrap(errors.ErrHuman, "cannot take index of nil")
	}
	r, ok := obj.Value().(*Receipt)
	if !ok {
		return nil, errors.Wrap(errors.ErrHuman, "can only take index of Receipt")
	}
	return r.Donor, nil
}
