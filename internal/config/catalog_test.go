package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "violations.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func TestLoadViolationCatalog(t *testing.T) {
	path := writeCatalog(t, `
[[violation]]
id = 1
text = "Kupplung nicht geschlossen"
time = 5

[[violation]]
id = 16
text = "Meldung vergessen"
time = 0
`)

	catalog, err := LoadViolationCatalog(path)
	if err != nil {
		t.Fatalf("LoadViolationCatalog: %v", err)
	}
	if len(catalog) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(catalog))
	}
	if catalog[0].ID != 1 || catalog[0].Text != "Kupplung nicht geschlossen" || catalog[0].Time != 5 {
		t.Errorf("Unexpected first entry %+v", catalog[0])
	}
	if catalog[1].ID != 16 {
		t.Errorf("Unexpected second entry %+v", catalog[1])
	}
}

func TestLoadViolationCatalog_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty", ``, "no [[violation]]"},
		{"id zero", "[[violation]]\nid = 0\ntext = \"x\"\ntime = 1\n", "outside"},
		{"id seventeen", "[[violation]]\nid = 17\ntext = \"x\"\ntime = 1\n", "outside"},
		{"duplicate", "[[violation]]\nid = 2\ntext = \"a\"\ntime = 1\n[[violation]]\nid = 2\ntext = \"b\"\ntime = 1\n", "duplicate"},
		{"missing text", "[[violation]]\nid = 3\ntime = 1\n", "no text"},
		{"negative time", "[[violation]]\nid = 3\ntext = \"x\"\ntime = -4\n", "negative"},
		{"oversize time", "[[violation]]\nid = 3\ntext = \"x\"\ntime = 2147483648\n", "exceeds"},
		{"unknown key", "[[violation]]\nid = 3\ntext = \"x\"\ntime = 1\nweight = 2\n", "unknown"},
		{"not toml", "[[violation\n", "decode"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadViolationCatalog(writeCatalog(t, tc.body))
			if err == nil {
				t.Fatal("Expected an error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}
