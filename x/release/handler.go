package release

import (
	"strconv"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
	"github.com/iov-one/weave/x"
	"github.com/iov-one/weave/x/cash"
	"github.com/tendermint/tendermint/libs/common"

	"github.com/medifund/medifund/x/medcase"
)

const (
	proposeCost int64 = 200
	voteCost    int64 = 0
)

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r weave.Registry, auth x.Authenticator, ctrl cash.Controller) {
	r = migration.SchemaMigratingRegistry("release", r)
	bucket := NewBucket()
	cases := medcase.NewBucket()

	r.Handle(&ProposeReleaseMsg{}, proposeHandler{
		auth: auth, bucket: bucket, cases: cases, ctrl: ctrl,
	})
	r.Handle(&VoteReleaseMsg{}, voteReleaseHandler{
		auth: auth, bucket: bucket, cases: cases, ctrl: ctrl,
	})
	r.Handle(&UpdateConfigurationMsg{}, gconf.NewUpdateConfigurationHandler(
		"release", &Configuration{}, auth, migration.CurrentAdmin))
}

// RegisterQuery will register the proposals as "/proposals".
func RegisterQuery(qr weave.QueryRouter) {
	NewBucket().Register("proposals", qr)
}

type proposeHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	cases  orm.ModelBucket
	ctrl   cash.Controller
}

var _ weave.Handler = proposeHandler{}

func (h proposeHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: proposeCost}, nil
}

func (h proposeHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, c, proposer, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	proposalID, err := newProposalID(db)
	if err != nil {
		return nil, err
	}
	p := &ReleaseProposal{
		Metadata:   &weave.Metadata{Schema: 1},
		ProposalID: proposalID,
		CaseID:     c.CaseID,
		Proposer:   proposer,
		Amount:     msg.Amount,
		Facility:   msg.Facility,
		Approvals:  []weave.Address{proposer},
		Status:     ProposalOpen,
		Memo:       msg.Memo,
	}
	tags := []common.KVPair{
		{Key: []byte("action"), Value: []byte("propose-release")},
		{Key: []byte("proposal-id"), Value: []byte(proposalID)},
		{Key: []byte("case-id"), Value: []byte(c.CaseID)},
		{Key: []byte("proposer"), Value: []byte(proposer.String())},
	}
	// A board of one executes right away.
	if uint32(len(p.Approvals)) >= conf.Threshold {
		released, err := execute(h.ctrl, h.cases, db, p, c)
		if err != nil {
			return nil, err
		}
		tags = append(tags, released...)
	}
	if _, err := h.bucket.Put(db, []byte(proposalID), p); err != nil {
		return nil, errors.Wrap(err, "save proposal")
	}
	res := &weave.DeliverResult{
		Data: []byte(proposalID),
		Tags: tags,
	}
	return res, nil
}

func (h proposeHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*ProposeReleaseMsg, *medcase.MedicalCase, weave.Address, error) {
	var msg ProposeReleaseMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	signer := x.AnySigner(ctx, h.auth)
	if signer == nil {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "member signature required")
	}
	proposer := signer.Address()
	conf, err := loadConf(db)
	if err != nil {
		return nil, nil, nil, err
	}
	if !conf.IsMember(proposer) {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "not a board member")
	}
	var c medcase.MedicalCase
	if err := h.cases.One(db, []byte(msg.CaseID), &c); err != nil {
		return nil, nil, nil, errors.Wrap(err, "cannot load case")
	}
	if c.Status != medcase.StatusVerified {
		return nil, nil, nil, errors.Wrapf(errors.ErrState, "case is %s, not verified", c.Status)
	}
	if err := ensureFunds(h.ctrl, db, c.Escrow, msg.Amount); err != nil {
		return nil, nil, nil, err
	}
	return &msg, &c, proposer, nil
}

// execute moves the proposal amount from the case escrow to the facility
// and marks the proposal as executed. The escrow balance is checked
// again because donations and other releases can change it between
// votes. The released total on the case is updated so that the donation
// cap keeps counting funds that already left the escrow.
func execute(ctrl cash.Controller, cases orm.ModelBucket, db weave.KVStore, p *ReleaseProposal, c *medcase.MedicalCase) ([]common.KVPair, error) {
	if err := ensureFunds(ctrl, db, c.Escrow, p.Amount); err != nil {
		return nil, err
	}
	if err := ctrl.MoveCoins(db, c.Escrow, p.Facility, p.Amount); err != nil {
		return nil, errors.Wrap(err, "cannot release funds")
	}
	released, err := c.Released.Add(p.Amount)
	if err != nil {
		return nil, errors.Wrap(err, "cannot update released total")
	}
	c.Released = released
	if _, err := cases.Put(db, []byte(c.CaseID), c); err != nil {
		return nil, errors.Wrap(err, "save case")
	}
	p.Status = ProposalExecuted
	return []common.KVPair{
		{Key: []byte("released"), Value: []byte(p.Amount.String())},
		{Key: []byte("facility"), Value: []byte(p.Facility.String())},
	}, nil
}

// ensureFunds fails with ErrInsufficientFunds unless the escrow holds at
// least the given amount of its asset class.
func ensureFunds(ctrl cash.Controller, db weave.KVStore, escrow weave.Address, amount coin.Coin) error {
	balance, err := ctrl.Balance(db, escrow)
	switch {
	case err == nil:
	case errors.ErrEmpty.Is(err) || errors.ErrNotFound.Is(err):
		balance = nil
	default:
		return errors.Wrap(err, "cannot load escrow balance")
	}
	for _, b := range balance {
		if b.Ticker != amount.Ticker {
			continue
		}
		if b.IsGTE(amount) {
			return nil
		}
		break
	}
	return errors.Wrapf(ErrInsufficientFunds, "escrow holds less than %s", amount)
}

type voteReleaseHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	cases  orm.ModelBucket
	ctrl   cash.Controller
}

var _ weave.Handler = voteReleaseHandler{}

func (h voteReleaseHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: voteCost}, nil
}

func (h voteReleaseHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, p, voter, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	if msg.Approve {
		p.Approvals = append(p.Approvals, voter)
	} else {
		p.Rejections = append(p.Rejections, voter)
	}
	tags := []common.KVPair{
		{Key: []byte("action"), Value: []byte("vote-release")},
		{Key: []byte("proposal-id"), Value: []byte(p.ProposalID)},
		{Key: []byte("member"), Value: []byte(voter.String())},
		{Key: []byte("approve"), Value: []byte(strconv.FormatBool(msg.Approve))},
	}
	switch {
	case uint32(len(p.Approvals)) >= conf.Threshold:
		var c medcase.MedicalCase
		if err := h.cases.One(db, []byte(p.CaseID), &c); err != nil {
			return nil, errors.Wrap(err, "cannot load case")
		}
		released, err := execute(h.ctrl, h.cases, db, p, &c)
		if err != nil {
			return nil, err
		}
		tags = append(tags, released...)
	case len(p.Rejections) > len(conf.Members)/2:
		// A strict majority of the board rejected.
		p.Status = ProposalRejected
	}
	tags = append(tags, common.KVPair{
		Key: []byte("status"), Value: []byte(p.Status.String()),
	})
	if _, err := h.bucket.Put(db, []byte(p.ProposalID), p); err != nil {
		return nil, errors.Wrap(err, "save proposal")
	}
	return &weave.DeliverResult{Tags: tags}, nil
}

func (h voteReleaseHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*VoteReleaseMsg, *ReleaseProposal, weave.Address, error) {
	var msg VoteReleaseMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	signer := x.AnySigner(ctx, h.auth)
	if signer == nil {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "member signature required")
	}
	voter := signer.Address()
	conf, err := loadConf(db)
	if err != nil {
		return nil, nil, nil, err
	}
	if !conf.IsMember(voter) {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "not a board member")
	}
	var p ReleaseProposal
	if err := h.bucket.One(db, []byte(msg.ProposalID), &p); err != nil {
		return nil, nil, nil, errors.Wrap(err, "cannot load proposal")
	}
	if p.Status != ProposalOpen {
		return nil, nil, nil, errors.Wrapf(errors.ErrState, "proposal is %s, not open", p.Status)
	}
	if p.HasVoted(voter) {
		return nil, nil, nil, errors.Wrap(errors.ErrDuplicate, "member already voted")
	}
	return &msg, &p, voter, nil
}
