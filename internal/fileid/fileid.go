// Package fileid derives content identifiers for ingested documents.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
)

const contentPrefix = "sha256:"

// ContentID returns an id for document bytes; identical uploads under
// different names share it.
func ContentID(content []byte) string {
	hash := sha256.Sum256(content)
	return contentPrefix + hex.EncodeToString(hash[:])
}
