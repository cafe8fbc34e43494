package chain

import (
	"encoding/json"
	"fmt"
)

// MoveCall is one programmable call against an on-chain package, e.g.
// "0x..::njangi::contribute".
type MoveCall struct {
	Target        string        `json:"target"`
	TypeArguments []string      `json:"typeArguments"`
	Arguments     []interface{} `json:"arguments"`
}

// Transaction is a transaction under construction, bound to its sender. The
// caller populates it through a builder callback; Serialize produces the
// canonical bytes that get signed and submitted.
type Transaction struct {
	sender    string
	gasBudget uint64
	calls     []MoveCall
}

func NewTransaction(sender string) *Transaction {
	return &Transaction{sender: sender}
}

func (t *Transaction) Sender() string {
	return t.sender
}

func (t *Transaction) SetGasBudget(budget uint64) {
	t.gasBudget = budget
}

func (t *Transaction) MoveCall(target string, typeArguments []string, arguments ...interface{}) {
	t.calls = append(t.calls, MoveCall{
		Target:        target,
		TypeArguments: typeArguments,
		Arguments:     arguments,
	})
}

type serializedTransaction struct {
	Version   int        `json:"version"`
	Sender    string     `json:"sender"`
	GasBudget uint64     `json:"gasBudget"`
	Calls     []MoveCall `json:"calls"`
}

// Serialize renders the transaction into canonical bytes. Struct field order
// is fixed, so the same transaction always yields the same bytes.
func (t *Transaction) Serialize() ([]byte, error) {
	if t.sender == "" {
		return nil, fmt.Errorf("transaction has no sender")
	}
	if len(t.calls) == 0 {
		return nil, fmt.Errorf("transaction has no calls")
	}
	return json.Marshal(serializedTransaction{
		Version:   1,
		Sender:    t.sender,
		GasBudget: t.gasBudget,
		Calls:     t.calls,
	})
}
