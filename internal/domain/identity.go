package domain

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Identity is an authenticated account address. The ledger never authenticates
// callers itself; it only compares identities it is handed.
type Identity = common.Address

// ZeroIdentity is never a valid caller, admin or treasury
var ZeroIdentity Identity

const poolIdentityDomain = "roundpool/pool/"

// PoolIdentity derives the custody account that holds a market's staked pool
func PoolIdentity(marketID uint64) Identity {
	var id [8]byte
	binary.BigEndian.PutUint64(id[:], marketID)
	return common.BytesToAddress(crypto.Keccak256([]byte(poolIdentityDomain), id[:]))
}

// ParseIdentity parses a hex address, rejecting malformed input and the zero address
func ParseIdentity(s string) (Identity, error) {
	if !common.IsHexAddress(s) {
		return ZeroIdentity, kindError("malformed identity "+s, ErrInvalidArgument)
	}
	id := common.HexToAddress(s)
	if id == ZeroIdentity {
		return ZeroIdentity, ErrZeroIdentity
	}
	return id, nil
}
