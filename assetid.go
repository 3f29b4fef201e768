package mediaforge

import (
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/sha3"
)

// AssetID returns the content-addressable identifier for a URL: the
// base58 encoding of its Keccak-256 digest. This is the Ethereum/Solana
// flavor of SHA-3 (NewLegacyKeccak256), not the NIST-standardized variant,
// matching the original asset store's hashing scheme.
func AssetID(url string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(url))
	return base58.Encode(h.Sum(nil))
}

// StorageKey returns the object-store key for an asset id.
func StorageKey(id string) string {
	return "media/" + id
}
