package util

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
)

// GetHash returns hex encoded sha1 of the content.
func GetHash(content string) string {
	hasher := sha1.New()
	hasher.Write([]byte(content))

	return hex.EncodeToString(hasher.Sum(nil))
}

// ETag makes a strong entity tag from a content hash.
func ETag(hash string) string {
	return strconv.Quote(hash)
}
