package zklogin

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/big"

	"golang.org/x/crypto/blake2b"

	"github.com/njangihq/zkauth/common"
)

// KeyClaimName is the identity-token claim the address is keyed on. Fixed;
// the proving circuit commits to it.
const KeyClaimName = "sub"

const zkLoginSignatureFlag = 0x05

// provingFieldModulus is the scalar field the proving circuit works in.
// Address seeds are reduced into it.
var provingFieldModulus, _ = new(big.Int).SetString(
	"21888242871839275222246405745257275088548364400416034343698204186575808495617", 10)

// AddressSeed deterministically combines the user salt with the key claim.
// The same (salt, sub, aud) always yields the same seed, which is what lets
// a returning user land on the same address with no local state.
func AddressSeed(salt, claimName, sub, aud string) (*big.Int, error) {
	saltValue, ok := new(big.Int).SetString(salt, 10)
	if !ok || saltValue.Sign() < 0 {
		return nil, fmt.Errorf("salt %q is not an unsigned decimal", salt)
	}
	if saltValue.Cmp(common.MaxSaltValue) >= 0 {
		return nil, fmt.Errorf("salt exceeds the accepted range")
	}

	saltBytes := make([]byte, 16)
	saltValue.FillBytes(saltBytes)

	buf := saltBytes
	for _, field := range []string{claimName, sub, aud} {
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(field)))
		buf = append(buf, field...)
	}

	digest := blake2b.Sum256(buf)
	return new(big.Int).Mod(new(big.Int).SetBytes(digest[:]), provingFieldModulus), nil
}

// DeriveAddress computes the persistent account address from the issuer and
// the address seed.
func DeriveAddress(iss string, seed *big.Int) string {
	seedBytes := make([]byte, 32)
	seed.FillBytes(seedBytes)

	buf := make([]byte, 0, 2+len(iss)+32)
	buf = append(buf, zkLoginSignatureFlag)
	buf = append(buf, byte(len(iss)))
	buf = append(buf, iss...)
	buf = append(buf, seedBytes...)

	digest := blake2b.Sum256(buf)
	return "0x" + hex.EncodeToString(digest[:])
}
