// Package signature verifies Discord interaction request signatures.
package signature

import (
	"crypto/ed25519"
	"encoding/hex"
)

// Request headers carrying the signature and the signed timestamp.
const (
	HeaderSignature = "X-Signature-Ed25519"
	HeaderTimestamp = "X-Signature-Timestamp"
)

// Verify reports whether signatureHex is a valid Ed25519 signature of
// timestamp||body under publicKeyHex. Malformed hex and wrong key or
// signature lengths are verification failures, never errors.
func Verify(body []byte, timestamp, signatureHex, publicKeyHex string) bool {
	key, err := hex.DecodeString(publicKeyHex)
	if err != nil || len(key) != ed25519.PublicKeySize {
		return false
	}
	sig, err := hex.DecodeString(signatureHex)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}

	message := make([]byte, 0, len(timestamp)+len(body))
	message = append(message, timestamp...)
	message = append(message, body...)

	return ed25519.Verify(ed25519.PublicKey(key), message, sig)
}
