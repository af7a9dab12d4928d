package medcase

import (
	"strconv"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
	"github.com/iov-one/weave/x"
	"github.com/tendermint/tendermint/libs/common"

	"github.com/medifund/medifund/x/verifiers"
)

const (
	createCaseCost int64 = 300
	voteCost       int64 = 0
	overrideCost   int64 = 0
	closeCaseCost  int64 = 0
)

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r weave.Registry, auth x.Authenticator, registry verifiers.Checker) {
	r = migration.SchemaMigratingRegistry("medcase", r)
	bucket := NewBucket()

	r.Handle(&CreateCaseMsg{}, createCaseHandler{auth: auth, bucket: bucket})
	r.Handle(&VoteMsg{}, voteHandler{auth: auth, bucket: bucket, registry: registry})
	r.Handle(&OverrideMsg{}, overrideHandler{auth: auth, bucket: bucket})
	r.Handle(&CloseCaseMsg{}, closeCaseHandler{auth: auth, bucket: bucket})
	r.Handle(&UpdateConfigurationMsg{}, gconf.NewUpdateConfigurationHandler(
		"medcase", &Configuration{}, auth, migration.CurrentAdmin))
}

// RegisterQuery will register this bucket as "/cases".
func RegisterQuery(qr weave.QueryRouter) {
	NewBucket().Register("cases", qr)
}

type createCaseHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
}

var _ weave.Handler = createCaseHandler{}

func (h createCaseHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: createCaseCost}, nil
}

func (h createCaseHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "block time")
	}
	caseID, err := newCaseID(db)
	if err != nil {
		return nil, err
	}
	c := &MedicalCase{
		Metadata:    &weave.Metadata{Schema: 1},
		CaseID:      caseID,
		Patient:     x.AnySigner(ctx, h.auth).Address(),
		FundingGoal: msg.FundingGoal,
		Memo:        msg.Memo,
		SubmittedAt: weave.AsUnixTime(now),
		Status:      StatusPending,
	}
	if _, err := h.bucket.Put(db, []byte(caseID), c); err != nil {
		return nil, errors.Wrap(err, "save case")
	}
	res := &weave.DeliverResult{
		Data: []byte(caseID),
		Tags: []common.KVPair{
			{Key: []byte("action"), Value: []byte("create-case")},
			{Key: []byte("case-id"), Value: []byte(caseID)},
			{Key: []byte("patient"), Value: []byte(c.Patient.String())},
		},
	}
	return res, nil
}

func (h createCaseHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*CreateCaseMsg, error) {
	var msg CreateCaseMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if x.AnySigner(ctx, h.auth) == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "patient signature required")
	}
	return &msg, nil
}

type voteHandler struct {
	auth     x.Authenticator
	bucket   orm.ModelBucket
	registry verifiers.Checker
}

var _ weave.Handler = voteHandler{}

func (h voteHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: voteCost}, nil
}

func (h voteHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, c, voter, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	c.CountVote(voter, msg.Approve)

	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	verified, err := c.QuorumReached(conf.QuorumPercent)
	if err != nil {
		return nil, err
	}
	if verified {
		c.Status = StatusVerified
		c.Escrow = EscrowAddress(c.CaseID)
	}
	if _, err := h.bucket.Put(db, []byte(c.CaseID), c); err != nil {
		return nil, errors.Wrap(err, "save case")
	}
	res := &weave.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte("action"), Value: []byte("vote-case")},
			{Key: []byte("case-id"), Value: []byte(c.CaseID)},
			{Key: []byte("verifier"), Value: []byte(voter.String())},
			{Key: []byte("approve"), Value: []byte(strconv.FormatBool(msg.Approve))},
			{Key: []byte("status"), Value: []byte(c.Status.String())},
		},
	}
	return res, nil
}

func (h voteHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*VoteMsg, *MedicalCase, weave.Address, error) {
	var msg VoteMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	signer := x.AnySigner(ctx, h.auth)
	if signer == nil {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "verifier signature required")
	}
	voter := signer.Address()
	ok, err := h.registry.IsVerifier(db, voter)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "registry lookup")
	}
	if !ok {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "not a registered verifier")
	}
	var c MedicalCase
	if err := h.bucket.One(db, []byte(msg.CaseID), &c); err != nil {
		return nil, nil, nil, errors.Wrap(err, "cannot load case")
	}
	if c.Status != StatusPending {
		return nil, nil, nil, errors.Wrapf(errors.ErrState, "case is %s, not pending", c.Status)
	}
	if c.HasVoted(voter) {
		return nil, nil, nil, errors.Wrap(errors.ErrDuplicate, "verifier already voted")
	}
	return &msg, &c, voter, nil
}

type overrideHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
}

var _ weave.Handler = overrideHandler{}

func (h overrideHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: overrideCost}, nil
}

func (h overrideHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, c, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if msg.Approve {
		c.Status = StatusVerified
		c.Escrow = EscrowAddress(c.CaseID)
	} else {
		c.Status = StatusRejected
	}
	if _, err := h.bucket.Put(db, []byte(c.CaseID), c); err != nil {
		return nil, errors.Wrap(err, "save case")
	}
	res := &weave.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte("action"), Value: []byte("override-case")},
			{Key: []byte("case-id"), Value: []byte(c.CaseID)},
			{Key: []byte("approve"), Value: []byte(strconv.FormatBool(msg.Approve))},
			{Key: []byte("status"), Value: []byte(c.Status.String())},
		},
	}
	return res, nil
}

func (h overrideHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*OverrideMsg, *MedicalCase, error) {
	var msg OverrideMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, nil, err
	}
	if !h.auth.HasAddress(ctx, conf.Owner) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "administrator signature required")
	}
	var c MedicalCase
	if err := h.bucket.One(db, []byte(msg.CaseID), &c); err != nil {
		return nil, nil, errors.Wrap(err, "cannot load case")
	}
	if c.Status != StatusPending {
		return nil, nil, errors.Wrapf(errors.ErrState, "case is %s, not pending", c.Status)
	}
	now, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "block time")
	}
	deadline := c.SubmittedAt.Add(conf.VerificationWindow.Duration())
	if now.Before(deadline.Time()) {
		return nil, nil, errors.Wrapf(errors.ErrState,
			"verification window still open until %s", deadline)
	}
	return &msg, &c, nil
}

type closeCaseHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
}

var _ weave.Handler = closeCaseHandler{}

func (h closeCaseHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: closeCaseCost}, nil
}

func (h closeCaseHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.bucket.Delete(db, []byte(msg.CaseID)); err != nil {
		return nil, errors.Wrap(err, "delete case")
	}
	res := &weave.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte("action"), Value: []byte("close-case")},
			{Key: []byte("case-id"), Value: []byte(msg.CaseID)},
			{Key: []byte("status"), Value: []byte(StatusClosed.String())},
		},
	}
	return res, nil
}

func (h closeCaseHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*CloseCaseMsg, error) {
	var msg CloseCaseMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	var c MedicalCase
	if err := h.bucket.One(db, []byte(msg.CaseID), &c); err != nil {
		return nil, errors.Wrap(err, "cannot load case")
	}
	if c.Status != StatusRejected {
		return nil, errors.Wrapf(errors.ErrState, "case is %s, not rejected", c.Status)
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	// Both the patient and the administrator can reclaim the storage.
	if !h.auth.HasAddress(ctx, c.Patient) && !h.auth.HasAddress(ctx, conf.Owner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "patient or administrator signature required")
	}
	return &msg, nil
}
