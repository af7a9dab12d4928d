package donation

import (
	"context"
	"testing"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/app"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/store"
	"github.com/iov-one/weave/weavetest"
	"github.com/iov-one/weave/x/cash"

	"github.com/medifund/medifund/x/medcase"
	"github.com/medifund/medifund/x/receipt"
)

func TestUseCases(t *testing.T) {
	type Request struct {
		Conditions []weave.Condition
		Tx         weave.Tx
		WantErr    *errors.Error
	}

	var (
		donorCond = weavetest.NewCondition()
		otherCond = weavetest.NewCondition()

		now = weave.UnixTime(1572247483)
	)

	donateTx := func(caseID string, amount coin.Coin) weave.Tx {
		return &weavetest.Tx{
			Msg: &DonateMsg{
				Metadata: &weave.Metadata{Schema: 1},
				CaseID:   caseID,
				Amount:   amount,
			},
		}
	}

	cases := map[string]struct {
		BufferPercent uint32
		Released      coin.Coins
		Requests      []Request
		AfterTest     func(t *testing.T, db weave.KVStore, ctrl cash.Controller)
	}{
		"a donation credits the case escrow": {
			Requests: []Request{
				{
					Conditions: []weave.Condition{donorCond},
					Tx:         donateTx("CASE0001", coin.NewCoin(60, 0, "MED")),
					WantErr:    nil,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore, ctrl cash.Controller) {
				assertBalance(t, db, ctrl, medcase.EscrowAddress("CASE0001"), coin.NewCoin(60, 0, "MED"))
				assertBalance(t, db, ctrl, donorCond.Address(), coin.NewCoin(140, 0, "MED"))

				var rec DonorRecord
				key := donorKey("CASE0001", donorCond.Address())
				if err := NewBucket().One(db, key, &rec); err != nil {
					t.Fatalf("cannot get donor record: %s", err)
				}
				if !rec.ReceiptIssued {
					t.Fatal("receipt was not issued")
				}
				var r receipt.Receipt
				if err := receipt.NewBucket().One(db, key, &r); err != nil {
					t.Fatalf("cannot get receipt: %s", err)
				}
				if r.Donations != 1 {
					t.Fatalf("unexpected donation count: %d", r.Donations)
				}
			},
		},
		"a donation above the funding limit is rejected whole": {
			Requests: []Request{
				{
					Conditions: []weave.Condition{donorCond},
					Tx:         donateTx("CASE0001", coin.NewCoin(60, 0, "MED")),
					WantErr:    nil,
				},
				// 60 + 50 is above the goal of 100 with no buffer. The
				// vault must stay untouched.
				{
					Conditions: []weave.Condition{donorCond},
					Tx:         donateTx("CASE0001", coin.NewCoin(50, 0, "MED")),
					WantErr:    ErrLimit,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore, ctrl cash.Controller) {
				assertBalance(t, db, ctrl, medcase.EscrowAddress("CASE0001"), coin.NewCoin(60, 0, "MED"))
				assertBalance(t, db, ctrl, donorCond.Address(), coin.NewCoin(140, 0, "MED"))
			},
		},
		"repeat donations accumulate on one receipt": {
			Requests: []Request{
				{
					Conditions: []weave.Condition{donorCond},
					Tx:         donateTx("CASE0001", coin.NewCoin(30, 0, "MED")),
					WantErr:    nil,
				},
				{
					Conditions: []weave.Condition{donorCond},
					Tx:         donateTx("CASE0001", coin.NewCoin(50, 0, "MED")),
					WantErr:    nil,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore, ctrl cash.Controller) {
				assertBalance(t, db, ctrl, medcase.EscrowAddress("CASE0001"), coin.NewCoin(80, 0, "MED"))

				key := donorKey("CASE0001", donorCond.Address())
				var r receipt.Receipt
				if err := receipt.NewBucket().One(db, key, &r); err != nil {
					t.Fatalf("cannot get receipt: %s", err)
				}
				if r.Donations != 2 {
					t.Fatalf("unexpected donation count: %d", r.Donations)
				}
				want := coin.Coins{coin.NewCoinp(80, 0, "MED")}
				if !r.Cumulative.Equals(want) {
					t.Fatalf("unexpected cumulative amount: %q", r.Cumulative)
				}
			},
		},
		"the buffer allows funding above the goal": {
			BufferPercent: 10,
			Requests: []Request{
				{
					Conditions: []weave.Condition{donorCond},
					Tx:         donateTx("CASE0001", coin.NewCoin(105, 0, "MED")),
					WantErr:    nil,
				},
				{
					Conditions: []weave.Condition{donorCond},
					Tx:         donateTx("CASE0001", coin.NewCoin(10, 0, "MED")),
					WantErr:    ErrLimit,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore, ctrl cash.Controller) {
				assertBalance(t, db, ctrl, medcase.EscrowAddress("CASE0001"), coin.NewCoin(105, 0, "MED"))
			},
		},
		"the cap counts funds already released": {
			Released: coin.Coins{coin.NewCoinp(60, 0, "MED")},
			Requests: []Request{
				// 60 MED left the escrow already, so only 40 more can
				// be committed against the goal of 100.
				{
					Conditions: []weave.Condition{donorCond},
					Tx:         donateTx("CASE0001", coin.NewCoin(50, 0, "MED")),
					WantErr:    ErrLimit,
				},
				{
					Conditions: []weave.Condition{donorCond},
					Tx:         donateTx("CASE0001", coin.NewCoin(40, 0, "MED")),
					WantErr:    nil,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore, ctrl cash.Controller) {
				assertBalance(t, db, ctrl, medcase.EscrowAddress("CASE0001"), coin.NewCoin(40, 0, "MED"))
			},
		},
		"donations to a pending case are rejected": {
			Requests: []Request{
				{
					Conditions: []weave.Condition{donorCond},
					Tx:         donateTx("CASE0002", coin.NewCoin(10, 0, "MED")),
					WantErr:    errors.ErrState,
				},
			},
		},
		"donations to an unknown case are rejected": {
			Requests: []Request{
				{
					Conditions: []weave.Condition{donorCond},
					Tx:         donateTx("CASE9999", coin.NewCoin(10, 0, "MED")),
					WantErr:    errors.ErrNotFound,
				},
			},
		},
		"donations in an asset class outside the funding goal are rejected": {
			Requests: []Request{
				{
					Conditions: []weave.Condition{donorCond},
					Tx:         donateTx("CASE0001", coin.NewCoin(10, 0, "BTC")),
					WantErr:    errors.ErrCurrency,
				},
			},
		},
		"each donor gets an own record": {
			Requests: []Request{
				{
					Conditions: []weave.Condition{donorCond},
					Tx:         donateTx("CASE0001", coin.NewCoin(30, 0, "MED")),
					WantErr:    nil,
				},
				{
					Conditions: []weave.Condition{otherCond},
					Tx:         donateTx("CASE0001", coin.NewCoin(40, 0, "MED")),
					WantErr:    nil,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore, ctrl cash.Controller) {
				assertBalance(t, db, ctrl, medcase.EscrowAddress("CASE0001"), coin.NewCoin(70, 0, "MED"))

				var rec DonorRecord
				if err := NewBucket().One(db, donorKey("CASE0001", otherCond.Address()), &rec); err != nil {
					t.Fatalf("cannot get donor record: %s", err)
				}
				want := coin.Coins{coin.NewCoinp(40, 0, "MED")}
				if !coin.Coins(rec.Donated).Equals(want) {
					t.Fatalf("unexpected donated amount: %q", rec.Donated)
				}
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			migration.MustInitPkg(db, "donation", "medcase", "receipt", "cash")

			rt := app.NewRouter()
			auth := &weavetest.CtxAuth{Key: "auth"}
			ctrl := cash.NewController(cash.NewBucket())
			RegisterRoutes(rt, auth, ctrl, receipt.NewController())

			config := Configuration{
				Metadata:      &weave.Metadata{Schema: 1},
				Owner:         weavetest.NewCondition().Address(),
				BufferPercent: tc.BufferPercent,
			}
			if err := gconf.Save(db, "donation", &config); err != nil {
				t.Fatalf("cannot save configuration: %s", err)
			}

			// One verified case with a goal of 100 MED and one still
			// pending.
			cbucket := medcase.NewBucket()
			verified := medcase.MedicalCase{
				Metadata:    &weave.Metadata{Schema: 1},
				CaseID:      "CASE0001",
				Patient:     weavetest.NewCondition().Address(),
				FundingGoal: coin.Coins{coin.NewCoinp(100, 0, "MED")},
				SubmittedAt: now,
				Status:      medcase.StatusVerified,
				YesCount:    1,
				Voters:      []weave.Address{weavetest.NewCondition().Address()},
				Escrow:      medcase.EscrowAddress("CASE0001"),
				Released:    tc.Released,
			}
			if _, err := cbucket.Put(db, []byte("CASE0001"), &verified); err != nil {
				t.Fatalf("cannot store case: %s", err)
			}
			pending := medcase.MedicalCase{
				Metadata:    &weave.Metadata{Schema: 1},
				CaseID:      "CASE0002",
				Patient:     weavetest.NewCondition().Address(),
				FundingGoal: coin.Coins{coin.NewCoinp(100, 0, "MED")},
				SubmittedAt: now,
				Status:      medcase.StatusPending,
			}
			if _, err := cbucket.Put(db, []byte("CASE0002"), &pending); err != nil {
				t.Fatalf("cannot store case: %s", err)
			}

			for _, donor := range []weave.Address{donorCond.Address(), otherCond.Address()} {
				if err := ctrl.CoinMint(db, donor, coin.NewCoin(200, 0, "MED")); err != nil {
					t.Fatalf("cannot mint coins for %q: %s", donor, err)
				}
			}

			for i, req := range tc.Requests {
				ctx := weave.WithHeight(context.Background(), 100+int64(i))
				ctx = weave.WithChainID(ctx, "testchain-123")
				ctx = auth.SetConditions(ctx, req.Conditions...)
				ctx = weave.WithBlockTime(ctx, now.Time())

				cache := db.CacheWrap()
				if _, err := rt.Check(ctx, cache, req.Tx); !req.WantErr.Is(err) {
					t.Fatalf("unexpected %d check error: want %q, got %+v", i, req.WantErr, err)
				}
				cache.Discard()
				if _, err := rt.Deliver(ctx, db, req.Tx); !req.WantErr.Is(err) {
					t.Fatalf("unexpected %d deliver error: want %q, got %+v", i, req.WantErr, err)
				}
			}

			if tc.AfterTest != nil {
				tc.AfterTest(t, db, ctrl)
			}
		})
	}
}

func assertBalance(t testing.TB, db weave.KVStore, ctrl cash.Controller, wallet weave.Address, funds coin.Coin) {
	t.Helper()

	coins, err := ctrl.Balance(db, wallet)
	if err != nil {
		t.Fatalf("balance: %s", err)
	}
	if len(coins) != 1 {
		t.Fatalf("want %q funds, found %d coins: %q", funds, len(coins), coins)
	}
	if !coins[0].Equals(funds) {
		t.Fatalf("unexpected funds found: %q", coins[0])
	}
}
