package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault_NonEmptyAndValid(t *testing.T) {
	tags := Default().Tags()
	if len(tags.Models) != 3 {
		t.Fatalf("expected 3 models, got %d", len(tags.Models))
	}
	for _, m := range tags.Models {
		if m.Name == "" || m.Model == "" {
			t.Fatalf("empty name: %+v", m)
		}
		if _, err := time.Parse(time.RFC3339Nano, m.ModifiedAt); err != nil {
			t.Fatalf("modified_at %q: %v", m.ModifiedAt, err)
		}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !json.Valid(b) {
		t.Fatalf("invalid json")
	}
}

func TestTags_ReturnsIndependentCopies(t *testing.T) {
	c := Default()
	a := c.Tags()
	a.Models[0].Name = "mutated"
	a.Models[0].Details.Families[0] = "mutated"
	*a.Models[0].Size = 1
	b := c.Tags()
	if b.Models[0].Name != "llama3.2:3b" || b.Models[0].Details.Families[0] != "llama" || *b.Models[0].Size != 2019393189 {
		t.Fatalf("catalog mutated through Tags(): %+v", b.Models[0])
	}
}

func TestLoadFile_YAMLDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "catalog.yaml")
	body := "models:\n  - name: gpt-4o-mini\n    details:\n      format: openai\n      family: openai\n"
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := LoadFile(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	m := c.Tags().Models[0]
	if c.Len() != 1 || m.Model != "gpt-4o-mini" || m.ModifiedAt == "" {
		t.Fatalf("unexpected model: %+v", m)
	}
	if len(m.Details.Families) != 1 || m.Details.Families[0] != "openai" {
		t.Fatalf("families: %v", m.Details.Families)
	}
	if m.Size != nil || m.Digest != nil {
		t.Fatalf("size/digest should stay null")
	}
}

func TestLoadFile_Errors(t *testing.T) {
	d := t.TempDir()
	cases := map[string]string{
		"empty.json":   `{"models":[]}`,
		"noname.json":  `{"models":[{"model":"x"}]}`,
		"baddate.json": `{"models":[{"name":"x","modified_at":"yesterday"}]}`,
	}
	for name, body := range cases {
		p := filepath.Join(d, name)
		_ = os.WriteFile(p, []byte(body), 0o644)
		if _, err := LoadFile(p); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := LoadFile(filepath.Join(d, "missing.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
