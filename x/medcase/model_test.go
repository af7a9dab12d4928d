package medcase

import (
	"math"
	"testing"

	"github.com/iov-one/weave/weavetest"
)

func TestQuorumReached(t *testing.T) {
	cases := map[string]struct {
		yes     uint32
		no      uint32
		percent uint32
		want    bool
	}{
		"seven of ten meets a 70 percent quorum": {
			yes: 7, no: 3, percent: 70, want: true,
		},
		"six of ten does not meet a 70 percent quorum": {
			yes: 6, no: 4, percent: 70, want: false,
		},
		"no votes cast": {
			yes: 0, no: 0, percent: 70, want: false,
		},
		"single approval is a full quorum": {
			yes: 1, no: 0, percent: 70, want: true,
		},
		"single rejection is no quorum": {
			yes: 0, no: 1, percent: 70, want: false,
		},
		"four of five meets a 70 percent quorum": {
			yes: 4, no: 1, percent: 70, want: true,
		},
		"exact boundary counts as met": {
			yes: 7, no: 3, percent: 70, want: true,
		},
		"all must agree on a 100 percent quorum": {
			yes: 9, no: 1, percent: 100, want: false,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			c := MedicalCase{YesCount: tc.yes, NoCount: tc.no}
			got, err := c.QuorumReached(tc.percent)
			if err != nil {
				t.Fatalf("quorum: %s", err)
			}
			if got != tc.want {
				t.Fatalf("want %v, got %v", tc.want, got)
			}
		})
	}
}

func TestCheckedMul(t *testing.T) {
	if _, ok := checkedMul(math.MaxUint64, 2); ok {
		t.Fatal("overflow must not pass unnoticed")
	}
	if got, ok := checkedMul(0, math.MaxUint64); !ok || got != 0 {
		t.Fatalf("zero factor: got %d, ok %v", got, ok)
	}
	if got, ok := checkedMul(7, 100); !ok || got != 700 {
		t.Fatalf("got %d, ok %v", got, ok)
	}
}

func TestHasVoted(t *testing.T) {
	alice := weavetest.NewCondition().Address()
	bob := weavetest.NewCondition().Address()

	var c MedicalCase
	if c.HasVoted(alice) {
		t.Fatal("no votes were cast")
	}
	c.CountVote(alice, true)
	if !c.HasVoted(alice) {
		t.Fatal("vote was not recorded")
	}
	if c.HasVoted(bob) {
		t.Fatal("bob did not vote")
	}
	if c.YesCount != 1 || c.NoCount != 0 {
		t.Fatalf("unexpected tally: %d/%d", c.YesCount, c.NoCount)
	}
}

func TestEscrowAddressIsDeterministic(t *testing.T) {
	a := EscrowAddress("CASE0001")
	b := EscrowAddress("CASE0001")
	if !a.Equals(b) {
		t.Fatal("escrow address must be deterministic")
	}
	if a.Equals(EscrowAddress("CASE0002")) {
		t.Fatal("escrow addresses must differ between cases")
	}
	if err := a.Validate(); err != nil {
		t.Fatalf("invalid address: %s", err)
	}
}
