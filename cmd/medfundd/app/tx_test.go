package medfund

import (
	"bytes"
	"testing"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"

	"github.com/medifund/medifund/x/donation"
)

func TestTxRoundTrip(t *testing.T) {
	msg := donation.DonateMsg{
		Metadata: &weave.Metadata{Schema: 1},
		CaseID:   "CASE0001",
		Amount:   coin.NewCoin(60, 0, "MED"),
	}
	body, err := msg.Marshal()
	if err != nil {
		t.Fatalf("cannot marshal message: %s", err)
	}
	tx := Tx{
		MsgPath: "donation/donate",
		MsgBody: body,
	}
	raw, err := tx.Marshal()
	if err != nil {
		t.Fatalf("cannot marshal transaction: %s", err)
	}

	restored, err := TxDecoder(raw)
	if err != nil {
		t.Fatalf("cannot decode transaction: %s", err)
	}
	got, err := restored.GetMsg()
	if err != nil {
		t.Fatalf("cannot extract message: %s", err)
	}
	donate, ok := got.(*donation.DonateMsg)
	if !ok {
		t.Fatalf("unexpected message type: %T", got)
	}
	if donate.CaseID != msg.CaseID || !donate.Amount.Equals(msg.Amount) {
		t.Fatalf("message mangled in transit: %+v", donate)
	}
}

func TestTxUnknownPath(t *testing.T) {
	tx := Tx{
		MsgPath: "bogus/path",
		MsgBody: []byte(`{}`),
	}
	if _, err := tx.GetMsg(); !errors.ErrType.Is(err) {
		t.Fatalf("want a type error, got %+v", err)
	}
}

func TestTxSignBytesIgnoreSignatures(t *testing.T) {
	tx := Tx{
		MsgPath: "medcase/vote",
		MsgBody: []byte(`{"case_id": "CASE0001", "approve": true}`),
	}
	unsigned, err := tx.GetSignBytes()
	if err != nil {
		t.Fatalf("cannot compute sign bytes: %s", err)
	}

	// Attaching a signature must not change the bytes being signed.
	tx.Signatures = append(tx.Signatures, nil)
	signed, err := tx.GetSignBytes()
	if err != nil {
		t.Fatalf("cannot compute sign bytes: %s", err)
	}
	if !bytes.Equal(unsigned, signed) {
		t.Fatal("sign bytes must not depend on attached signatures")
	}
	if len(tx.Signatures) != 1 {
		t.Fatal("signatures must be restored after computing sign bytes")
	}
}

func TestEveryRegisteredPathDecodes(t *testing.T) {
	for path, newMsg := range msgRegistry {
		msg := newMsg()
		if msg.Path() != path {
			t.Errorf("registry path %q does not match message path %q", path, msg.Path())
		}
	}
}
