package receipt

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/orm"
)

// Issuer is the narrow interface the donation extension signals after a
// successful credit. The issuer runs inside the donation delivery, so a
// returned error aborts the whole donation. Donor records and receipts
// can never drift apart this way.
type Issuer interface {
	Issue(db weave.KVStore, caseID string, donor weave.Address, cumulative coin.Coins, first bool) error
}

// Controller persists receipt records.
type Controller struct {
	bucket orm.ModelBucket
}

var _ Issuer = (*Controller)(nil)

func NewController() *Controller {
	return &Controller{bucket: NewBucket()}
}

// Issue creates the receipt record on the first donation and updates the
// cumulative amount on every repeat donation.
func (c *Controller) Issue(db weave.KVStore, caseID string, donor weave.Address, cumulative coin.Coins, first bool) error {
	key := receiptKey(caseID, donor)
	r := Receipt{
		Metadata: &weave.Metadata{Schema: 1},
		CaseID:   caseID,
		Donor:    donor,
	}
	if !first {
		if err := c.bucket.One(db, key, &r); err != nil {
			return errors.Wrap(err, "cannot load receipt")
		}
	}
	r.Cumulative = cumulative
	r.Donations++
	if _, err := c.bucket.Put(db, key, &r); err != nil {
		return errors.Wrap(err, "save receipt")
	}
	return nil
}
