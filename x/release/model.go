package release

import (
	"encoding/json"
	"fmt"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
)

func init() {
	migration.MustRegister(1, &ReleaseProposal{}, migration.NoModification)
}

// ProposalStatus represents the voting state of a release proposal.
type ProposalStatus int32

const (
	ProposalInvalid  ProposalStatus = 0
	ProposalOpen     ProposalStatus = 1
	ProposalExecuted ProposalStatus = 2
	ProposalRejected ProposalStatus = 3
)

func (s ProposalStatus) String() string {
	switch s {
	case ProposalOpen:
		return "open"
	case ProposalExecuted:
		return "executed"
	case ProposalRejected:
		return "rejected"
	default:
		return "invalid"
	}
}

func (s ProposalStatus) Validate() error {
	if s < ProposalOpen || s > ProposalRejected {
		return errors.Wrapf(errors.ErrState, "invalid status %d", s)
	}
	return nil
}

// ReleaseProposal is a request to move part of a case escrow balance to
// a medical facility. The bucket key is the human readable proposal ID.
type ReleaseProposal struct {
	Metadata   *weave.Metadata `json:"metadata"`
	ProposalID string          `json:"proposal_id"`
	CaseID     string          `json:"case_id"`
	Proposer   weave.Address   `json:"proposer"`
	Amount     coin.Coin       `json:"amount"`
	Facility   weave.Address   `json:"facility"`
	Approvals  []weave.Address `json:"approvals,omitempty"`
	Rejections []weave.Address `json:"rejections,omitempty"`
	Status     ProposalStatus  `json:"status"`
	Memo       string          `json:"memo,omitempty"`
}

var _ orm.Model = (*ReleaseProposal)(nil)

func (p *ReleaseProposal) GetMetadata() *weave.Metadata {
	return p.Metadata
}

func (p *ReleaseProposal) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", p.Metadata.Validate())
	if p.ProposalID == "" {
		errs = errors.AppendField(errs, "ProposalID", errors.ErrEmpty)
	}
	if p.CaseID == "" {
		errs = errors.AppendField(errs, "CaseID", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "Proposer", p.Proposer.Validate())
	errs = errors.AppendField(errs, "Facility", p.Facility.Validate())
	if !p.Amount.IsPositive() {
		errs = errors.AppendField(errs, "Amount",
			errors.Wrap(errors.ErrAmount, "must be a positive amount"))
	} else if err := p.Amount.Validate(); err != nil {
		errs = errors.AppendField(errs, "Amount", err)
	}
	if err := p.Status.Validate(); err != nil {
		errs = errors.AppendField(errs, "Status", err)
	}
	return errs
}

func (p *ReleaseProposal) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

func (p *ReleaseProposal) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, p)
}

// HasVoted returns true if the given member already approved or rejected
// this proposal.
func (p *ReleaseProposal) HasVoted(addr weave.Address) bool {
	for _, a := range p.Approvals {
		if a.Equals(addr) {
			return true
		}
	}
	for _, r := range p.Rejections {
		if r.Equals(addr) {
			return true
		}
	}
	return false
}

// NewBucket returns a bucket for keeping release proposals, indexed by
// the case ID.
func NewBucket() orm.ModelBucket {
	b := orm.NewModelBucket("proposals", &ReleaseProposal{},
		orm.WithIndex("case", idxCase, false),
	)
	return migration.NewModelBucket("release", b)
}

var proposalSeq = orm.NewSequence("release", "id")

// newProposalID allocates the next sequential, human readable proposal ID.
func newProposalID(db weave.KVStore) (string, error) {
	n, err := proposalSeq.NextInt(db)
	if err != nil {
		return "", errors.Wrap(err, "cannot acquire ID")
	}
	return fmt.Sprintf("REL%04d", n), nil
}

func idxCase(obj orm.Object) ([]byte, error) {
	if obj == nil || obj.Value() == nil {
		return nil, errors.Wrap(errors.ErrHuman, "cannot take index of nil")
	}
	p, ok := obj.Value().(*ReleaseProposal)
	if !ok {
		return nil, errors.Wrap(errors.ErrHuman, "can only take index of ReleaseProposal")
	}
	return []byte(p.CaseID), nil
}
