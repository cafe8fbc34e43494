package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionSerializeDeterministic(t *testing.T) {
	build := func() *Transaction {
		tx := NewTransaction("0xabc")
		tx.SetGasBudget(10_000_000)
		tx.MoveCall("0x2::njangi::contribute", []string{"0x2::sui::SUI"}, "0xpool", "500")
		return tx
	}

	first, err := build().Serialize()
	require.NoError(t, err)
	second, err := build().Serialize()
	require.NoError(t, err)
	assert.Equal(t, first, second, "the same transaction must always produce the same signing bytes")

	assert.Contains(t, string(first), "0x2::njangi::contribute")
	assert.Contains(t, string(first), "0xabc")
}

func TestTransactionSerializeErrors(t *testing.T) {
	noSender := NewTransaction("")
	noSender.MoveCall("0x2::njangi::contribute", nil)
	_, err := noSender.Serialize()
	assert.ErrorContains(t, err, "no sender")

	noCalls := NewTransaction("0xabc")
	_, err = noCalls.Serialize()
	assert.ErrorContains(t, err, "no calls")
}

func TestTransactionAccumulatesCalls(t *testing.T) {
	tx := NewTransaction("0xabc")
	tx.MoveCall("0x2::njangi::contribute", nil, "0xpool", "500")
	tx.MoveCall("0x2::njangi::claim", nil, "0xpool")

	raw, err := tx.Serialize()
	require.NoError(t, err)
	assert.Contains(t, string(raw), "contribute")
	assert.Contains(t, string(raw), "claim")
	assert.Equal(t, "0xabc", tx.Sender())
}
