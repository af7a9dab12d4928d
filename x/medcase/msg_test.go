package medcase

import (
	"strings"
	"testing"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/weavetest"
	"github.com/stretchr/testify/assert"
)

func TestCreateCaseMsgValidate(t *testing.T) {
	goal := coin.Coins{coin.NewCoinp(100, 0, "MED")}

	cases := map[string]struct {
		msg     *CreateCaseMsg
		wantErr *errors.Error
	}{
		"proper": {
			msg: &CreateCaseMsg{
				Metadata:    &weave.Metadata{Schema: 1},
				FundingGoal: goal,
				Memo:        "surgery",
			},
		},
		"empty message": {
			msg:     &CreateCaseMsg{},
			wantErr: errors.ErrMetadata,
		},
		"missing funding goal": {
			msg: &CreateCaseMsg{
				Metadata: &weave.Metadata{Schema: 1},
			},
			wantErr: errors.ErrAmount,
		},
		"negative funding goal": {
			msg: &CreateCaseMsg{
				Metadata:    &weave.Metadata{Schema: 1},
				FundingGoal: coin.Coins{coin.NewCoinp(-4, 0, "MED")},
			},
			wantErr: errors.ErrAmount,
		},
		"memo too long": {
			msg: &CreateCaseMsg{
				Metadata:    &weave.Metadata{Schema: 1},
				FundingGoal: goal,
				Memo:        strings.Repeat("x", maxMemoSize+1),
			},
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.msg.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, tc.wantErr.Is(err), "got %+v", err)
			}
		})
	}
}

func TestVoteMsgValidate(t *testing.T) {
	cases := map[string]struct {
		msg     *VoteMsg
		wantErr *errors.Error
	}{
		"proper": {
			msg: &VoteMsg{
				Metadata: &weave.Metadata{Schema: 1},
				CaseID:   "CASE0001",
				Approve:  true,
			},
		},
		"missing case ID": {
			msg: &VoteMsg{
				Metadata: &weave.Metadata{Schema: 1},
			},
			wantErr: errors.ErrEmpty,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.msg.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, tc.wantErr.Is(err), "got %+v", err)
			}
		})
	}
}

func TestUpdateConfigurationMsgValidate(t *testing.T) {
	msg := UpdateConfigurationMsg{
		Metadata: &weave.Metadata{Schema: 1},
		Patch: &Configuration{
			Metadata:           &weave.Metadata{Schema: 1},
			Owner:              weavetest.NewCondition().Address(),
			QuorumPercent:      70,
			VerificationWindow: weave.AsUnixDuration(10 * day),
		},
	}
	assert.NoError(t, msg.Validate())

	msg.Patch = nil
	assert.True(t, errors.ErrEmpty.Is(msg.Validate()))
}
