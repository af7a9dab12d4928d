package medcase

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
	migration.MustRegister(1, &MedicalCase{}, migration.NoModification)
}

// Status represents the verification state of a medical case.
type Status int32

const (
	StatusInvalid  Status = 0
	StatusPending  Status = 1
	StatusVerified Status = 2
	StatusRejected Status = 3
	StatusClosed   Status = 4
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusVerified:
		return "verified"
	case StatusRejected:
		return "rejected"
	case StatusClosed:
		return "closed"
	default:
		return "invalid"
	}
}

func (s Status) Validate() error {
	if s < StatusPending || s > StatusClosed {
		return errors.Wrapf(errors.ErrState, "invalid status %d", s)
	}
	return nil
}

const maxMemoSize = 128

// MedicalCase is a single funding case record. The bucket key is the
// human readable case ID.
type MedicalCase struct {
	Metadata    *weave.Metadata `json:"metadata"`
	CaseID      string          `json:"case_id"`
	Patient     weave.Address   `json:"patient"`
	FundingGoal coin.Coins      `json:"funding_goal"`
	Memo        string          `json:"memo,omitempty"`
	SubmittedAt weave.UnixTime  `json:"submitted_at"`
	Status      Status          `json:"status"`
	YesCount    uint32          `json:"yes_count"`
	NoCount     uint32          `json:"no_count"`
	Voters      []weave.Address `json:"voters,omitempty"`
	// Escrow is the address holding donated funds. It is set when the
	// case becomes verified and never changes afterwards.
	Escrow weave.Address `json:"escrow,omitempty"`
	// Released accumulates, per asset class, the funds already paid out
	// of the escrow. Together with the escrow balance it is the total
	// committed to this case, which is what the funding cap limits.
	Released coin.Coins `json:"released,omitempty"`
}

var _ orm.Model = (*MedicalCase)(nil)

func (m *MedicalCase) GetMetadata() *weave.Metadata {
	return m.Metadata
}

func (m *MedicalCase) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if m.CaseID == "" {
		errs = errors.AppendField(errs, "CaseID", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "Patient", m.Patient.Validate())
	if !coin.Coins(m.FundingGoal).IsPositive() {
		errs = errors.AppendField(errs, "FundingGoal",
			errors.Wrap(errors.ErrAmount, "must be a positive amount"))
	} else if err := m.FundingGoal.Validate(); err != nil {
		errs = errors.AppendField(errs, "FundingGoal", err)
	}
	if len(m.Memo) > maxMemoSize {
		errs = errors.AppendField(errs, "Memo",
			errors.Wrap(errors.ErrInput, "too long"))
	}
	if err := m.Status.Validate(); err != nil {
		errs = errors.AppendField(errs, "Status", err)
	}
	if err := m.Released.Validate(); err != nil {
		errs = errors.AppendField(errs, "Released", err)
	}
	if uint64(m.YesCount)+uint64(m.NoCount) != uint64(len(m.Voters)) {
		errs = errors.AppendField(errs, "Voters",
			errors.Wrap(errors.ErrState, "vote counts do not match voter set"))
	}
	return errs
}

func (m *MedicalCase) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func (m *MedicalCase) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, m)
}

// HasVoted returns true if the given verifier already voted on this case.
func (m *MedicalCase) HasVoted(addr weave.Address) bool {
	for _, v := range m.Voters {
		if v.Equals(addr) {
			return true
		}
	}
	return false
}

// CountVote records a single verifier vote. The caller must ensure the
// verifier is authorized and did not vote before.
func (m *MedicalCase) CountVote(voter weave.Address, approve bool) {
	if approve {
		m.YesCount++
	} else {
		m.NoCount++
	}
	m.Voters = append(m.Voters, voter)
}

// QuorumReached returns true if the cast votes satisfy the given approval
// percentage. The comparison is done in scaled integer space
// (yes*100 >= total*percent) and any multiplication overflow aborts with
// ErrOverflow instead of wrapping.
func (m *MedicalCase) QuorumReached(percent uint32) (bool, error) {
	total := uint64(m.YesCount) + uint64(m.NoCount)
	if total == 0 {
		return false, nil
	}
	scaledYes, ok := checkedMul(uint64(m.YesCount), 100)
	if !ok {
		return false, errors.Wrap(errors.ErrOverflow, "yes votes")
	}
	required, ok := checkedMul(total, uint64(percent))
	if !ok {
		return false, errors.Wrap(errors.ErrOverflow, "total votes")
	}
	return scaledYes >= required, nil
}

func checkedMul(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if c/a != b {
		return 0, false
	}
	return c, true
}

// EscrowAddress returns the deterministic address of the escrow account
// bound to the given case.
func EscrowAddress(caseID string) weave.Address {
	return weave.NewCondition("medcase", "escrow", []byte(caseID)).Address()
}

// NewBucket returns a bucket for keeping medical case records, indexed by
// the patient address.
func NewBucket() orm.ModelBucket {
	b := orm.NewModelBucket("cases", &MedicalCase{},
		orm.WithIndex("patient", idxPatient, false),
	)
	return migration.NewModelBucket("medcase", b)
}

var caseSeq = orm.NewSequence("medcase", "id")

// newCaseID allocates the next sequential, human readable case ID.
func newCaseID(db weave.KVStore) (string, error) {
	n, err := caseSeq.NextInt(db)
	if err != nil {
		return "", errors.Wrap(err, "cannot acquire ID")
	}
	return fmt.Sprintf("CASE%04d", n), nil
}

func idxPatient(obj orm.Object) ([]byte, error) {
	if obj == nil || obj.Value() == nil {
		return nil, errors.Wrap(errors.ErrHuman, "cannot take index of nil")
	}
	c, ok := obj.Value().(*MedicalCase)
	if !ok {
		return nil, errors.Wrap(errors.ErrHuman, "can only take index of MedicalCase")
	}
	return c.Patient, nil
}
