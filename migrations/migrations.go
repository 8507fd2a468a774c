// Package migrations holds the SQL migration ledger. Each subdirectory is
// one immutable entry, named <timestamp>_<label>, containing a single
// migration.sql script. Entries are embedded into the binaries so the
// runner can be deployed without the source tree.
package migrations

import "embed"

//go:embed */migration.sql
var FS embed.FS
