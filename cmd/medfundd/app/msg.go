package medfund

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/x/cash"
	"github.com/iov-one/weave/x/currency"

	"github.com/medifund/medifund/x/donation"
	"github.com/medifund/medifund/x/medcase"
	"github.com/medifund/medifund/x/release"
	"github.com/medifund/medifund/x/verifiers"
)

// msgRegistry maps a message routing path to its constructor. Every
// message the router can dispatch must be listed here, otherwise the
// transaction decoder rejects it.
var msgRegistry = map[string]func() weave.Msg{
	"cash/send":                      func() weave.Msg { return &cash.SendMsg{} },
	"cash/update_configuration":      func() weave.Msg { return &cash.UpdateConfigurationMsg{} },
	"currency/create":                func() weave.Msg { return &currency.CreateMsg{} },
	"migration/upgrade_schema":       func() weave.Msg { return &migration.UpgradeSchemaMsg{} },
	"verifiers/add_verifier":         func() weave.Msg { return &verifiers.AddVerifierMsg{} },
	"verifiers/remove_verifier":      func() weave.Msg { return &verifiers.RemoveVerifierMsg{} },
	"verifiers/update_configuration": func() weave.Msg { return &verifiers.UpdateConfigurationMsg{} },
	"medcase/create_case":            func() weave.Msg { return &medcase.CreateCaseMsg{} },
	"medcase/vote":                   func() weave.Msg { return &medcase.VoteMsg{} },
	"medcase/override":               func() weave.Msg { return &medcase.OverrideMsg{} },
	"medcase/close_case":             func() weave.Msg { return &medcase.CloseCaseMsg{} },
	"medcase/update_configuration":   func() weave.Msg { return &medcase.UpdateConfigurationMsg{} },
	"donation/donate":                func() weave.Msg { return &donation.DonateMsg{} },
	"donation/update_configuration":  func() weave.Msg { return &donation.UpdateConfigurationMsg{} },
	"release/propose":                func() weave.Msg { return &release.ProposeReleaseMsg{} },
	"release/vote":                   func() weave.Msg { return &release.VoteReleaseMsg{} },
	"release/update_configuration":   func() weave.Msg { return &release.UpdateConfigurationMsg{} },
}
