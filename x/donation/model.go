package donation

import (
	"encoding/json"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
)

func init() {
	migration.MustRegister(1, &DonorRecord{}, migration.NoModification)
}

// DonorRecord tracks the cumulative contribution of one donor to one
// case. The bucket key is the case ID concatenated with the donor
// address. Records are updated on repeat donations and never deleted.
type DonorRecord struct {
	Metadata *weave.Metadata `json:"metadata"`
	CaseID   string          `json:"case_id"`
	Donor    weave.Address   `json:"donor"`
	Donated  coin.Coins      `json:"donated"`
	// ReceiptIssued is set once the receipt issuer was signaled for
	// this donor.
	ReceiptIssued bool `json:"receipt_issued"`
}

var _ orm.Model = (*DonorRecord)(nil)

func (d *DonorRecord) GetMetadata() *weave.Metadata {
	return d.Metadata
}

func (d *DonorRecord) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", d.Metadata.Validate())
	if d.CaseID == "" {
		errs = errors.AppendField(errs, "CaseID", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "Donor", d.Donor.Validate())
	if !coin.Coins(d.Donated).IsPositive() {
		errs = errors.AppendField(errs, "Donated",
			errors.Wrap(errors.ErrAmount, "must be a positive amount"))
	} else if err := d.Donated.Validate(); err != nil {
		errs = errors.AppendField(errs, "Donated", err)
	}
	return errs
}

func (d *DonorRecord) Marshal() ([]byte, error) {
	return json.Marshal(d)
}

func (d *DonorRecord) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, d)
}

// NewBucket returns a bucket for keeping donor records, indexed by the
// donor address.
func NewBucket() orm.ModelBucket {
	b := orm.NewModelBucket("donors", &DonorRecord{},
		orm.WithIndex("donor", idxDonor, false),
	)
	return migration.NewModelBucket("donation", b)
}

func donorKey(caseID string, donor weave.Address) []byte {
	key := make([]byte, 0, len(caseID)+len(donor))
	key = append(key, caseID...)
	return append(key, donor...)
}

func idxDonor(obj orm.Object) ([]byte, error) {
	if obj == nil || obj.Value() == nil {
		return nil, errors.Wrap(errors.ErrHuman, "cannot take index of nil")
	}
	d, ok := obj.Value().(*DonorRecord)
	if !ok {
		return nil, errors.Wrap(errors.ErrHuman, "can only take index of DonorRecord")
	}
	return d.Donor, nil
}
