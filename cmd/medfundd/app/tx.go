package medfund

import (
	"encoding/json"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/x/cash"
	"github.com/iov-one/weave/x/sigs"
)

// TxDecoder creates a Tx and unmarshals bytes into it.
func TxDecoder(bz []byte) (weave.Tx, error) {
	tx := new(Tx)
	if err := tx.Unmarshal(bz); err != nil {
		return nil, err
	}
	return tx, nil
}

// Tx is the transaction envelope of the application. The message is
// carried opaque together with its routing path so that the envelope
// does not have to know every message type at decode time.
type Tx struct {
	Fees       *cash.FeeInfo        `json:"fees,omitempty"`
	Signatures []*sigs.StdSignature `json:"signatures,omitempty"`
	MsgPath    string               `json:"msg_path"`
	MsgBody    []byte               `json:"msg_body"`
}

var _ weave.Tx = (*Tx)(nil)
var _ cash.FeeTx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)

func (tx *Tx) Marshal() ([]byte, error) {
	return json.Marshal(tx)
}

func (tx *Tx) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, tx)
}

// GetMsg returns the message carried by this transaction, decoded
// according to its routing path.
func (tx *Tx) GetMsg() (weave.Msg, error) {
	newMsg, ok := msgRegistry[tx.MsgPath]
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "unknown message path %q", tx.MsgPath)
	}
	msg := newMsg()
	if err := msg.Unmarshal(tx.MsgBody); err != nil {
		return nil, errors.Wrapf(err, "cannot decode %q message", tx.MsgPath)
	}
	return msg, nil
}

// GetFees returns the fee information, to satisfy the cash decorator.
func (tx *Tx) GetFees() *cash.FeeInfo {
	return tx.Fees
}

// GetSignatures returns the signatures of this transaction.
func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// GetSignBytes returns the bytes to sign. The sign bytes only come from
// the data itself, not previous signatures.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	s := tx.Signatures
	tx.Signatures = nil

	bz, err := tx.Marshal()

	tx.Signatures = s
	return bz, err
}
