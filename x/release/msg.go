package release

import (
	"encoding/json"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
)

func init() {
	migration.MustRegister(1, &ProposeReleaseMsg{}, migration.NoModification)
	migration.MustRegister(1, &VoteReleaseMsg{}, migration.NoModification)
	migration.MustRegister(1, &UpdateConfigurationMsg{}, migration.NoModification)
}

var _ weave.Msg = (*ProposeReleaseMsg)(nil)
var _ weave.Msg = (*VoteReleaseMsg)(nil)
var _ weave.Msg = (*UpdateConfigurationMsg)(nil)

const maxMemoSize = 128

// ProposeReleaseMsg opens a new release proposal for a verified case.
// The main signer must be a board member and is counted as the first
// approval.
type ProposeReleaseMsg struct {
	Metadata *weave.Metadata `json:"metadata"`
	CaseID   string          `json:"case_id"`
	Amount   coin.Coin       `json:"amount"`
	Facility weave.Address   `json:"facility"`
	Memo     string          `json:"memo,omitempty"`
}

func (ProposeReleaseMsg) Path() string {
	return "release/propose"
}

func (m *ProposeReleaseMsg) GetMetadata() *weave.Metadata {
	return m.Metadata
}

func (m *ProposeReleaseMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if m.CaseID == "" {
		errs = errors.AppendField(errs, "CaseID", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "Facility", m.Facility.Validate())
	if !m.Amount.IsPositive() {
		errs = errors.AppendField(errs, "Amount",
			errors.Wrap(errors.ErrAmount, "must be a positive amount"))
	} else if err := m.Amount.Validate(); err != nil {
		errs = errors.AppendField(errs, "Amount", err)
	}
	if len(m.Memo) > maxMemoSize {
		errs = errors.AppendField(errs, "Memo",
			errors.Wrap(errors.ErrInput, "too long"))
	}
	return errs
}

func (m *ProposeReleaseMsg) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func (m *ProposeReleaseMsg) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, m)
}

// VoteReleaseMsg records a board member approval or rejection of an
// open release proposal.
type VoteReleaseMsg struct {
	Metadata   *weave.Metadata `json:"metadata"`
	ProposalID string          `json:"proposal_id"`
	Approve    bool            `json:"approve"`
}

func (VoteReleaseMsg) Path() string {
	return "release/vote"
}

func (m *VoteReleaseMsg) GetMetadata() *weave.Metadata {
	return m.Metadata
}

func (m *VoteReleaseMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if m.ProposalID == "" {
		errs = errors.AppendField(errs, "ProposalID", errors.ErrEmpty)
	}
	return errs
}

func (m *VoteReleaseMsg) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func (m *VoteReleaseMsg) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, m)
}

// UpdateConfigurationMsg replaces the current package configuration.
type UpdateConfigurationMsg struct {
	Metadata *weave.Metadata `json:"metadata"`
	Patch    *Configuration  `json:"patch"`
}

func (UpdateConfigurationMsg) Path() string {
	return "release/update_configuration"
}

func (m *UpdateConfigurationMsg) GetMetadata() *weave.Metadata {
	return m.Metadata
}

func (m *UpdateConfigurationMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if m.Patch == nil {
		errs = errors.AppendField(errs, "Patch", errors.ErrEmpty)
	}
	return errs
}

func (m *UpdateConfigurationMsg) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func (m *UpdateConfigurationMsg) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, m)
}
