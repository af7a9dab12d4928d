package verifiers

import (
	"encoding/json"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
)

func init() {
	migration.MustRegister(1, &AddVerifierMsg{}, migration.NoModification)
	migration.MustRegister(1, &RemoveVerifierMsg{}, migration.NoModification)
	migration.MustRegister(1, &UpdateConfigurationMsg{}, migration.NoModification)
}

var _ weave.Msg = (*AddVerifierMsg)(nil)
var _ weave.Msg = (*RemoveVerifierMsg)(nil)
var _ weave.Msg = (*UpdateConfigurationMsg)(nil)

// AddVerifierMsg registers a new verifier. Only the administrator can
// deliver this message.
type AddVerifierMsg struct {
	Metadata *weave.Metadata `json:"metadata"`
	Verifier weave.Address   `json:"verifier"`
}

func (AddVerifierMsg) Path() string {
	return "verifiers/add_verifier"
}

func (m *AddVerifierMsg) GetMetadata() *weave.Metadata {
	return m.Metadata
}

func (m *AddVerifierMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Verifier", m.Verifier.Validate())
	return errs
}

func (m *AddVerifierMsg) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func (m *AddVerifierMsg) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, m)
}

// RemoveVerifierMsg removes a verifier from the registry. Votes already
// cast by the removed verifier are not affected.
type RemoveVerifierMsg struct {
	Metadata *weave.Metadata `json:"metadata"`
	Verifier weave.Address   `json:"verifier"`
}

func (RemoveVerifierMsg) Path() string {
	return "verifiers/remove_verifier"
}

func (m *RemoveVerifierMsg) GetMetadata() *weave.Metadata {
	return m.Metadata
}

func (m *RemoveVerifierMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Verifier", m.Verifier.Validate())
	return errs
}

func (m *RemoveVerifierMsg) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func (m *RemoveVerifierMsg) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, m)
}

// UpdateConfigurationMsg replaces the current package configuration.
type UpdateConfigurationMsg struct {
	Metadata *weave.Metadata `json:"metadata"`
	Patch    *Configuration  `json:"patch"`
}

func (UpdateConfigurationMsg) Path() string {
	return "verifiers/update_configuration"
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
