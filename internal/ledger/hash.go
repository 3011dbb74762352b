// internal/ledger/hash.go
package ledger

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

func keccak256(parts ...[]byte) []byte {
	hasher := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		hasher.Write(p)
	}
	return hasher.Sum(nil)
}

// cloneAddress derives the reference of the nonce-th collection created by
// registry for artist: the last 20 bytes of keccak256(registry ++ artist ++ nonce).
func cloneAddress(registry, artist Identity, nonce uint64) Identity {
	n := make([]byte, 8)
	binary.BigEndian.PutUint64(n, nonce)
	return common.BytesToAddress(keccak256(registry.Bytes(), artist.Bytes(), n)[12:])
}

func receiptHash(s *Settlement) string {
	id := make([]byte, 8)
	binary.BigEndian.PutUint64(id, s.TokenID)
	ts := make([]byte, 8)
	binary.BigEndian.PutUint64(ts, uint64(s.At.UnixNano()))

	sum := keccak256(
		s.Collection.Bytes(), id,
		s.Seller.Bytes(), s.Buyer.Bytes(),
		s.Split.Price.Bytes(), s.Split.PlatformAmount.Bytes(),
		s.Split.GalleryAmount.Bytes(), s.Split.SellerAmount.Bytes(),
		ts,
	)
	return "0x" + hex.EncodeToString(sum)
}
