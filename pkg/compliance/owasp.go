// Package compliance maps findings onto OWASP Top 10 categories, derives a
// per-category compliance status, and rolls everything up into the overall
// security posture a CI gate consumes.
package compliance

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed owasp_top10.yaml
var top10YAML []byte

// Category is one OWASP Top 10 reference category owning a set of CWE
// identifiers. A CWE may legitimately belong to more than one category.
type Category struct {
	ID   string   `yaml:"id" json:"id"`
	Name string   `yaml:"name" json:"name"`
	CWEs []string `yaml:"cwes" json:"cwes"`
}

// Owns reports whether the category claims the given CWE identifier.
func (c Category) Owns(cwe string) bool {
	for _, id := range c.CWEs {
		if id == cwe {
			return true
		}
	}
	return false
}

type categoryFile struct {
	Categories []Category `yaml:"categories"`
}

// top10 is loaded once at process start and never mutated afterwards.
var top10 []Category

func init() {
	var file categoryFile
	if err := yaml.Unmarshal(top10YAML, &file); err != nil {
		panic(fmt.Sprintf("embedded OWASP table is invalid: %v", err))
	}
	top10 = file.Categories
}

// Categories returns the reference category table. The returned slice is a
// copy; the table itself is immutable.
func Categories() []Category {
	out := make([]Category, len(top10))
	copy(out, top10)
	return out
}

// LoadCategories reads category definitions from every YAML file in dir,
// for teams that maintain their own CWE groupings. The embedded table stays
// untouched; callers pass the result where they would use Categories().
func LoadCategories(dir string) ([]Category, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var cats []Category
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		var file categoryFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", entry.Name(), err)
		}
		cats = append(cats, file.Categories...)
	}
	if len(cats) == 0 {
		return nil, fmt.Errorf("no category definitions found in %s", dir)
	}
	return cats, nil
}
