package verifiers

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
	"github.com/iov-one/weave/x"
	"github.com/tendermint/tendermint/libs/common"
)

const (
	addVerifierCost    int64 = 50
	removeVerifierCost int64 = 0
)

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r weave.Registry, auth x.Authenticator) {
	r = migration.SchemaMigratingRegistry("verifiers", r)
	bucket := NewBucket()

	r.Handle(&AddVerifierMsg{}, addVerifierHandler{auth: auth, bucket: bucket})
	r.Handle(&RemoveVerifierMsg{}, removeVerifierHandler{auth: auth, bucket: bucket})
	r.Handle(&UpdateConfigurationMsg{}, gconf.NewUpdateConfigurationHandler(
		"verifiers", &Configuration{}, auth, migration.CurrentAdmin))
}

// RegisterQuery will register this bucket as "/verifiers".
func RegisterQuery(qr weave.QueryRouter) {
	NewBucket().Register("verifiers", qr)
}

type addVerifierHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
}

var _ weave.Handler = addVerifierHandler{}

func (h addVerifierHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: addVerifierCost}, nil
}

func (h addVerifierHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "block time")
	}
	v := &Verifier{
		Metadata: &weave.Metadata{Schema: 1},
		Address:  msg.Verifier,
		AddedAt:  weave.AsUnixTime(now),
	}
	if _, err := h.bucket.Put(db, msg.Verifier, v); err != nil {
		return nil, errors.Wrap(err, "save verifier")
	}
	res := &weave.DeliverResult{
		Data: msg.Verifier,
		Tags: []common.KVPair{
			{Key: []byte("action"), Value: []byte("add-verifier")},
			{Key: []byte("verifier"), Value: []byte(msg.Verifier.String())},
		},
	}
	return res, nil
}

func (h addVerifierHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*AddVerifierMsg, error) {
	var msg AddVerifierMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, conf.Owner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "administrator signature required")
	}
	switch err := h.bucket.Has(db, msg.Verifier); {
	case err == nil:
		return nil, errors.Wrap(errors.ErrDuplicate, "verifier already registered")
	case errors.ErrNotFound.Is(err):
		return &msg, nil
	default:
		return nil, errors.Wrap(err, "bucket lookup")
	}
}

type removeVerifierHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
}

var _ weave.Handler = removeVerifierHandler{}

func (h removeVerifierHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: removeVerifierCost}, nil
}

func (h removeVerifierHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.bucket.Delete(db, msg.Verifier); err != nil {
		return nil, errors.Wrap(err, "delete verifier")
	}
	res := &weave.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte("action"), Value: []byte("remove-verifier")},
			{Key: []byte("verifier"), Value: []byte(msg.Verifier.String())},
		},
	}
	return res, nil
}

func (h removeVerifierHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*RemoveVerifierMsg, error) {
	var msg RemoveVerifierMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, conf.Owner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "administrator signature required")
	}
	if err := h.bucket.Has(db, msg.Verifier); err != nil {
		return nil, errors.Wrap(err, "verifier")
	}
	return &msg, nil
}
