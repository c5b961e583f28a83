// Package catalog resolves canonical English counter names into the localized
// strings the host platform expects in counter subscription paths.
package catalog

// Catalog wraps a platform-supplied translation table. The table is a flat
// list of index-paired strings: the canonical English name sits at an even
// slot and the localized counterpart immediately after it. A lookup walks the
// even slots for the canonical name and returns its neighbor.
type Catalog struct {
	table []string
}

// New builds a catalog from a translation table loaded once per engine
// lifetime. A trailing unpaired entry is ignored.
func New(table []string) *Catalog {
	return &Catalog{table: table}
}

// Translate returns the localized counterpart of the canonical counter name,
// or false if the table has no entry for it. A miss is not an error: callers
// skip the dependent subscription and the affected usage values simply stay
// unavailable.
func (c *Catalog) Translate(name string) (string, bool) {
	for i := 0; i+1 < len(c.table); i += 2 {
		if c.table[i] == name {
			return c.table[i+1], true
		}
	}
	return "", false
}

// EnglishTable is the identity table for hosts without localized counter
// names. It covers the counters the snapshot engine subscribes to.
func EnglishTable() []string {
	return []string{
		"Processor", "Processor",
		"% Processor Time", "% Processor Time",
	}
}
