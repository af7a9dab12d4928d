package receipt

import (
	"testing"

	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/store"
	"github.com/iov-one/weave/weavetest"
)

func TestIssue(t *testing.T) {
	db := store.MemStore()
	migration.MustInitPkg(db, "receipt")

	donor := weavetest.NewCondition().Address()
	ctrl := NewController()

	cumulative := coin.Coins{coin.NewCoinp(60, 0, "MED")}
	if err := ctrl.Issue(db, "CASE0001", donor, cumulative, true); err != nil {
		t.Fatalf("cannot issue the first receipt: %s", err)
	}

	var r Receipt
	key := receiptKey("CASE0001", donor)
	if err := NewBucket().One(db, key, &r); err != nil {
		t.Fatalf("cannot get receipt: %s", err)
	}
	if r.Donations != 1 {
		t.Fatalf("unexpected donation count: %d", r.Donations)
	}
	if !r.Cumulative.Equals(cumulative) {
		t.Fatalf("unexpected cumulative amount: %q", r.Cumulative)
	}

	cumulative = coin.Coins{coin.NewCoinp(90, 0, "MED")}
	if err := ctrl.Issue(db, "CASE0001", donor, cumulative, false); err != nil {
		t.Fatalf("cannot update the receipt: %s", err)
	}
	if err := NewBucket().One(db, key, &r); err != nil {
		t.Fatalf("cannot get receipt: %s", err)
	}
	if r.Donations != 2 {
		t.Fatalf("unexpected donation count: %d", r.Donations)
	}
	if !r.Cumulative.Equals(cumulative) {
		t.Fatalf("unexpected cumulative amount: %q", r.Cumulative)
	}
}

func TestIssueUpdateWithoutRecord(t *testing.T) {
	db := store.MemStore()
	migration.MustInitPkg(db, "receipt")

	donor := weavetest.NewCondition().Address()
	err := NewController().Issue(db, "CASE0001", donor, coin.Coins{coin.NewCoinp(5, 0, "MED")}, false)
	if !errors.ErrNotFound.Is(err) {
		t.Fatalf("want a not found error, got %+v", err)
	}
}
