package donation

import (
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
	"github.com/medifund/medifund/x/receipt"
)

const donateCost int64 = 100

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r weave.Registry, auth x.Authenticator, ctrl cash.Controller, issuer receipt.Issuer) {
	r = migration.SchemaMigratingRegistry("donation", r)

	r.Handle(&DonateMsg{}, donateHandler{
		auth:   auth,
		donors: NewBucket(),
		cases:  medcase.NewBucket(),
		ctrl:   ctrl,
		issuer: issuer,
	})
	r.Handle(&UpdateConfigurationMsg{}, gconf.NewUpdateConfigurationHandler(
		"donation", &Configuration{}, auth, migration.CurrentAdmin))
}

// RegisterQuery will register the donor records as "/donors".
func RegisterQuery(qr weave.QueryRouter) {
	NewBucket().Register("donors", qr)
}

type donateHandler struct {
	auth   x.Authenticator
	donors orm.ModelBucket
	cases  orm.ModelBucket
	ctrl   cash.Controller
	issuer receipt.Issuer
}

var _ weave.Handler = donateHandler{}

func (h donateHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: donateCost}, nil
}

func (h donateHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, c, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	donor := x.AnySigner(ctx, h.auth).Address()

	if err := h.ctrl.MoveCoins(db, donor, c.Escrow, msg.Amount); err != nil {
		return nil, errors.Wrap(err, "cannot credit escrow")
	}

	key := donorKey(c.CaseID, donor)
	record := DonorRecord{
		Metadata: &weave.Metadata{Schema: 1},
		CaseID:   c.CaseID,
		Donor:    donor,
	}
	first := false
	switch err := h.donors.One(db, key, &record); {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		first = true
	default:
		return nil, errors.Wrap(err, "cannot load donor record")
	}
	total, err := coin.Coins(record.Donated).Add(msg.Amount)
	if err != nil {
		return nil, errors.Wrap(err, "cannot update donated total")
	}
	record.Donated = total

	// The issuer shares this delivery, so a failure rolls back the
	// credit as well and the receipt flag below stays truthful.
	if err := h.issuer.Issue(db, c.CaseID, donor, total, first); err != nil {
		return nil, errors.Wrap(err, "cannot issue receipt")
	}
	record.ReceiptIssued = true

	if _, err := h.donors.Put(db, key, &record); err != nil {
		return nil, errors.Wrap(err, "save donor record")
	}

	vault, err := h.vaultBalance(db, c.Escrow, msg.Amount.Ticker)
	if err != nil {
		return nil, err
	}
	res := &weave.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte("action"), Value: []byte("donate")},
			{Key: []byte("case-id"), Value: []byte(c.CaseID)},
			{Key: []byte("donor"), Value: []byte(donor.String())},
			{Key: []byte("amount"), Value: []byte(msg.Amount.String())},
			{Key: []byte("vault-balance"), Value: []byte(vault.String())},
		},
	}
	return res, nil
}

func (h donateHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*DonateMsg, *medcase.MedicalCase, error) {
	var msg DonateMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if x.AnySigner(ctx, h.auth) == nil {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "donor signature required")
	}
	var c medcase.MedicalCase
	if err := h.cases.One(db, []byte(msg.CaseID), &c); err != nil {
		return nil, nil, errors.Wrap(err, "cannot load case")
	}
	if c.Status != medcase.StatusVerified {
		return nil, nil, errors.Wrapf(errors.ErrState, "case is %s, not verified", c.Status)
	}

	goal, ok := tickerCoin(c.FundingGoal, msg.Amount.Ticker)
	if !ok {
		return nil, nil, errors.Wrapf(errors.ErrCurrency,
			"case does not accept %q donations", msg.Amount.Ticker)
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, nil, err
	}
	limit, err := fundingLimit(goal, conf.BufferPercent)
	if err != nil {
		return nil, nil, err
	}
	vault, err := h.vaultBalance(db, c.Escrow, msg.Amount.Ticker)
	if err != nil {
		return nil, nil, err
	}
	// The cap is on the total committed to the case, so funds that were
	// already released to a facility count against it as well.
	released, _ := tickerCoin(c.Released, msg.Amount.Ticker)
	committed, err := vault.Add(released)
	if err != nil {
		return nil, nil, errors.Wrap(err, "cannot compute committed total")
	}
	funded, err := committed.Add(msg.Amount)
	if err != nil {
		return nil, nil, errors.Wrap(err, "cannot compute vault total")
	}
	if !limit.IsGTE(funded) {
		return nil, nil, errors.Wrapf(ErrLimit, "%s exceeds limit %s", funded, limit)
	}
	return &msg, &c, nil
}

// vaultBalance returns the escrow balance for a single asset class. An
// escrow account that was never credited has zero balance.
func (h donateHandler) vaultBalance(db weave.KVStore, escrow weave.Address, ticker string) (coin.Coin, error) {
	balance, err := h.ctrl.Balance(db, escrow)
	switch {
	case err == nil:
	case errors.ErrEmpty.Is(err) || errors.ErrNotFound.Is(err):
		balance = nil
	default:
		return coin.Coin{}, errors.Wrap(err, "cannot load escrow balance")
	}
	vault, _ := tickerCoin(balance, ticker)
	return vault, nil
}

// tickerCoin picks the coin of the given asset class out of a set. The
// zero coin of that class is returned when the set has no entry.
func tickerCoin(cs coin.Coins, ticker string) (coin.Coin, bool) {
	for _, c := range cs {
		if c.Ticker == ticker {
			return *c, true
		}
	}
	return coin.Coin{Ticker: ticker}, false
}

// fundingLimit returns the hard donation cap for one asset class: the
// funding goal plus the configured buffer percentage. All arithmetic is
// overflow checked.
func fundingLimit(goal coin.Coin, bufferPercent uint32) (coin.Coin, error) {
	if bufferPercent == 0 {
		return goal, nil
	}
	scaled, err := goal.Multiply(int64(bufferPercent))
	if err != nil {
		return coin.Coin{}, errors.Wrap(err, "buffer")
	}
	buffer, _, err := scaled.Divide(100)
	if err != nil {
		return coin.Coin{}, errors.Wrap(err, "buffer")
	}
	return goal.Add(buffer)
}
