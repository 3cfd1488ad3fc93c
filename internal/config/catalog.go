package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"brigade-backend/internal/models"
	"brigade-backend/internal/penalty"
)

// CatalogFile is the TOML layout read by `brigadectl seed-violations`:
//
//	[[violation]]
//	id = 1
//	text = "Kupplung nicht geschlossen"
//	time = 5
type CatalogFile struct {
	Violations []CatalogEntry `toml:"violation"`
}

type CatalogEntry struct {
	ID   int    `toml:"id"`
	Text string `toml:"text"`
	Time int    `toml:"time"`
}

// LoadViolationCatalog decodes and validates a catalog file. Entries may
// cover any subset of the 16 ids, each at most once.
func LoadViolationCatalog(path string) ([]*models.Violation, error) {
	var file CatalogFile
	md, err := toml.DecodeFile(path, &file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown catalog key %q", undecoded[0].String())
	}
	return file.Validate()
}

func (f CatalogFile) Validate() ([]*models.Violation, error) {
	if len(f.Violations) == 0 {
		return nil, fmt.Errorf("catalog has no [[violation]] entries")
	}

	seen := make(map[int]bool, len(f.Violations))
	out := make([]*models.Violation, 0, len(f.Violations))
	for i, e := range f.Violations {
		switch {
		case !penalty.ValidID(e.ID):
			return nil, fmt.Errorf("entry %d: id %d outside 1..%d", i+1, e.ID, penalty.NumViolations)
		case seen[e.ID]:
			return nil, fmt.Errorf("entry %d: duplicate id %d", i+1, e.ID)
		case e.Text == "":
			return nil, fmt.Errorf("entry %d: id %d has no text", i+1, e.ID)
		case e.Time < 0:
			return nil, fmt.Errorf("entry %d: id %d has negative time %d", i+1, e.ID, e.Time)
		case e.Time > penalty.MaxCount:
			return nil, fmt.Errorf("entry %d: id %d time %d exceeds %d", i+1, e.ID, e.Time, penalty.MaxCount)
		}
		seen[e.ID] = true
		out = append(out, &models.Violation{ID: e.ID, Text: e.Text, Time: e.Time})
	}
	return out, nil
}
