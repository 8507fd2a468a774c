package migrate

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
)

// ScriptName is the file each ledger entry directory must contain.
const ScriptName = "migration.sql"

// Ledger is the ordered collection of all migration entries found in
// version control. It is loaded once and not mutated afterwards.
type Ledger struct {
	entries []Entry
}

// LoadLedger reads a ledger from the root of fsys. Each subdirectory is one
// entry and must be named <timestamp>_<label> and contain migration.sql.
// Plain files at the root (lock files, READMEs) are ignored.
func LoadLedger(fsys fs.FS) (*Ledger, error) {
	dirEntries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger directory: %w", err)
	}

	seen := make(map[string]string)
	var entries []Entry

	for _, de := range dirEntries {
		if !de.IsDir() {
			continue
		}

		name := de.Name()
		version, label, err := parseEntryName(name)
		if err != nil {
			return nil, err
		}

		if prev, ok := seen[version]; ok {
			return nil, fmt.Errorf("duplicate version %s: %s and %s", version, prev, name)
		}
		seen[version] = name

		script, err := fs.ReadFile(fsys, path.Join(name, ScriptName))
		if err != nil {
			return nil, fmt.Errorf("entry %s: failed to read %s: %w", name, ScriptName, err)
		}

		entries = append(entries, Entry{
			Version:  version,
			Label:    label,
			Name:     name,
			SQL:      string(script),
			Checksum: checksum(script),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	return &Ledger{entries: entries}, nil
}

// Entries returns the entries in ascending version order.
func (l *Ledger) Entries() []Entry {
	return l.entries
}

// Len returns the number of entries in the ledger.
func (l *Ledger) Len() int {
	return len(l.entries)
}
