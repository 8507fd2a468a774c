package migrate

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
)

// Entry is one unit of schema change: a ledger directory holding a single
// SQL script. Entries are immutable once committed; the checksum pins the
// script content so later edits are detected instead of silently ignored.
type Entry struct {
	// Version is the 14-digit timestamp prefix, e.g. "20240115093000".
	Version string
	// Label is the human-readable suffix, e.g. "create_posts".
	Label string
	// Name is the full directory name, Version + "_" + Label.
	Name string
	// SQL is the script content.
	SQL string
	// Checksum is the lowercase hex SHA-256 of SQL.
	Checksum string
}

// entryNameRe matches <YYYYMMDDHHMMSS>_<label>. The timestamp prefix makes
// lexicographic order equal to chronological order.
var entryNameRe = regexp.MustCompile(`^(\d{14})_([a-z0-9][a-z0-9_]*)$`)

// parseEntryName splits a ledger directory name into version and label.
func parseEntryName(name string) (version, label string, err error) {
	m := entryNameRe.FindStringSubmatch(name)
	if m == nil {
		return "", "", fmt.Errorf("invalid entry name %q: want <14-digit timestamp>_<label>", name)
	}
	return m[1], m[2], nil
}

// checksum returns the lowercase hex SHA-256 of a script.
func checksum(script []byte) string {
	sum := sha256.Sum256(script)
	return hex.EncodeToString(sum[:])
}
