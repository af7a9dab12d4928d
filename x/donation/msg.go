package donation

import (
	"encoding/json"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
)

func init() {
	migration.MustRegister(1, &DonateMsg{}, migration.NoModification)
	migration.MustRegister(1, &UpdateConfigurationMsg{}, migration.NoModification)
}

var _ weave.Msg = (*DonateMsg)(nil)
var _ weave.Msg = (*UpdateConfigurationMsg)(nil)

// DonateMsg transfers the given amount from the main signer into the
// escrow account of a verified case.
type DonateMsg struct {
	Metadata *weave.Metadata `json:"metadata"`
	CaseID   string          `json:"case_id"`
	Amount   coin.Coin       `json:"amount"`
}

func (DonateMsg) Path() string {
	return "donation/donate"
}

func (m *DonateMsg) GetMetadata() *weave.Metadata {
	return m.Metadata
}

func (m *DonateMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if m.CaseID == "" {
		errs = errors.AppendField(errs, "CaseID", errors.ErrEmpty)
	}
	if !m.Amount.IsPositive() {
		errs = errors.AppendField(errs, "Amount",
			errors.Wrap(errors.ErrAmount, "must be a positive amount"))
	} else if err := m.Amount.Validate(); err != nil {
		errs = errors.AppendField(errs, "Amount", err)
	}
	return errs
}

func (m *DonateMsg) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func (m *DonateMsg) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, m)
}

// UpdateConfigurationMsg replaces the current package configuration.
type UpdateConfigurationMsg struct {
	Metadata *weave.Metadata `json:"metadata"`
	Patch    *Configuration  `json:"patch"`
}

func (UpdateConfigurationMsg) Path() string {
	return "donation/update_configuration"
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
