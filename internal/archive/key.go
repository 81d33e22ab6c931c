package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
)

// Longest filename allowed across common filesystems.
const maxKeyLen = 255

var (
	keyStrip = regexp.MustCompile(`[^a-zA-Z0-9_\-\.() ]+`)
	yearExpr = regexp.MustCompile(`\d{1,2}\s\w{3}\s(\d{4})`)
)

// DeriveKey computes the storage location for a message: the year it
// was sent and a stable, filesystem-safe directory name.
//
// The name is the sanitized Message-Id when one exists and is shorter
// than 255 characters. Otherwise it is the SHA-224 hex digest of the
// full raw fetch payload, so every message gets a key and re-deriving
// from identical bytes lands on the same directory. A Message-Id that
// sanitizes to nothing also falls back to the digest.
func DeriveKey(messageID, date string, raw []byte) (year, name string) {
	if messageID != "" && len(messageID) < maxKeyLen {
		name = keyStrip.ReplaceAllString(messageID, "")
	}
	if name == "" {
		sum := sha256.Sum224(raw)
		name = hex.EncodeToString(sum[:])
	}

	year = "None"
	if m := yearExpr.FindStringSubmatch(date); m != nil {
		year = m[1]
	}
	return year, name
}
