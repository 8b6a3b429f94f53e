// Package signature provides helper functions for hashing values and for
// signing and verifying transactions with secp256k1 key pairs.
package signature

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/ethereum/go-ethereum/crypto"
)

// Lengths in bytes of the hex decoded wire values. Public keys travel in the
// uncompressed form and signatures carry only the R and S components.
const (
	publicKeyLength = 65
	signatureLength = 64
)

// Hash returns the lowercase hex encoded SHA-256 digest of the canonical
// JSON serialization of the value. The JSON layout of the value is the wire
// contract, so identical values always produce identical digests.
func Hash(value any) (string, error) {
	digest, err := digest(value)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(digest), nil
}

// Sign produces the hex encoded [R|S] signature of the value using the
// specified private key.
func Sign(value any, privateKey *ecdsa.PrivateKey) (string, error) {
	digest, err := digest(value)
	if err != nil {
		return "", err
	}

	sig, err := crypto.Sign(digest, privateKey)
	if err != nil {
		return "", err
	}

	// Drop the recovery id. Verification is performed against the full
	// public key, which travels with the transaction.
	return hex.EncodeToString(sig[:signatureLength]), nil
}

// Verify reports whether the hex encoded signature over the value was
// produced by the holder of the hex encoded public key. Any malformed input
// resolves to false. Verification never returns an error to the caller.
func Verify(publicKeyHex string, signatureHex string, value any) bool {
	publicKey, err := hex.DecodeString(publicKeyHex)
	if err != nil || len(publicKey) != publicKeyLength {
		return false
	}

	sig, err := hex.DecodeString(signatureHex)
	if err != nil || len(sig) != signatureLength {
		return false
	}

	digest, err := digest(value)
	if err != nil {
		return false
	}

	return crypto.VerifySignature(publicKey, digest, sig)
}

// PublicKeyString returns the hex encoding of the uncompressed public key.
// This is the account address format used across the network.
func PublicKeyString(privateKey *ecdsa.PrivateKey) string {
	return hex.EncodeToString(crypto.FromECDSAPub(&privateKey.PublicKey))
}

// digest produces the 32 byte array the signing algorithms operate on.
func digest(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	hash := sha256.Sum256(data)
	return hash[:], nil
}
