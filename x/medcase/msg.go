package medcase

import (
	"encoding/json"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
)

func init() {
	migration.MustRegister(1, &CreateCaseMsg{}, migration.NoModification)
	migration.MustRegister(1, &VoteMsg{}, migration.NoModification)
	migration.MustRegister(1, &OverrideMsg{}, migration.NoModification)
	migration.MustRegister(1, &CloseCaseMsg{}, migration.NoModification)
	migration.MustRegister(1, &UpdateConfigurationMsg{}, migration.NoModification)
}

var _ weave.Msg = (*CreateCaseMsg)(nil)
var _ weave.Msg = (*VoteMsg)(nil)
var _ weave.Msg = (*OverrideMsg)(nil)
var _ weave.Msg = (*CloseCaseMsg)(nil)
var _ weave.Msg = (*UpdateConfigurationMsg)(nil)

// CreateCaseMsg registers a new funding case for the main signer.
type CreateCaseMsg struct {
	Metadata    *weave.Metadata `json:"metadata"`
	FundingGoal coin.Coins      `json:"funding_goal"`
	Memo        string          `json:"memo,omitempty"`
}

func (CreateCaseMsg) Path() string {
	return "medcase/create_case"
}

func (m *CreateCaseMsg) GetMetadata() *weave.Metadata {
	return m.Metadata
}

func (m *CreateCaseMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
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
	return errs
}

func (m *CreateCaseMsg) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func (m *CreateCaseMsg) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, m)
}

// VoteMsg records a single verifier decision on a pending case.
type VoteMsg struct {
	Metadata *weave.Metadata `json:"metadata"`
	CaseID   string          `json:"case_id"`
	Approve  bool            `json:"approve"`
}

func (VoteMsg) Path() string {
	return "medcase/vote"
}

func (m *VoteMsg) GetMetadata() *weave.Metadata {
	return m.Metadata
}

func (m *VoteMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if m.CaseID == "" {
		errs = errors.AppendField(errs, "CaseID", errors.ErrEmpty)
	}
	return errs
}

func (m *VoteMsg) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func (m *VoteMsg) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, m)
}

// OverrideMsg is the administrator decision on a case that is still
// pending after the verification window elapsed.
type OverrideMsg struct {
	Metadata *weave.Metadata `json:"metadata"`
	CaseID   string          `json:"case_id"`
	Approve  bool            `json:"approve"`
}

func (OverrideMsg) Path() string {
	return "medcase/override"
}

func (m *OverrideMsg) GetMetadata() *weave.Metadata {
	return m.Metadata
}

func (m *OverrideMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if m.CaseID == "" {
		errs = errors.AppendField(errs, "CaseID", errors.ErrEmpty)
	}
	return errs
}

func (m *OverrideMsg) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func (m *OverrideMsg) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, m)
}

// CloseCaseMsg removes a rejected case from the store.
type CloseCaseMsg struct {
	Metadata *weave.Metadata `json:"metadata"`
	CaseID   string          `json:"case_id"`
}

func (CloseCaseMsg) Path() string {
	return "medcase/close_case"
}

func (m *CloseCaseMsg) GetMetadata() *weave.Metadata {
	return m.Metadata
}

func (m *CloseCaseMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if m.CaseID == "" {
		errs = errors.AppendField(errs, "CaseID", errors.ErrEmpty)
	}
	return errs
}

func (m *CloseCaseMsg) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func (m *CloseCaseMsg) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, m)
}

// UpdateConfigurationMsg replaces the current package configuration.
type UpdateConfigurationMsg struct {
	Metadata *weave.Metadata `json:"metadata"`
	Patch    *Configuration  `json:"patch"`
}

func (UpdateConfigurationMsg) Path() string {
	return "medcase/update_configuration"
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
