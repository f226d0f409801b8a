// internal/store/memory_catalog.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"unimatch/internal/matching"
	"unimatch/internal/models"
)

// MemoryCatalog serves a fixed, in-process list of universities.
type MemoryCatalog struct {
	universities []models.University
}

func NewMemoryCatalog(universities []models.University) *MemoryCatalog {
	cp := make([]models.University, len(universities))
	copy(cp, universities)
	return &MemoryCatalog{universities: cp}
}

// LoadMemoryCatalog reads a JSON array of universities from path.
func LoadMemoryCatalog(path string) (*MemoryCatalog, error) {
	universities, err := ReadCatalogFile(path)
	if err != nil {
		return nil, err
	}
	return NewMemoryCatalog(universities), nil
}

// ReadCatalogFile decodes a catalog seed file. Entries without an id are rejected.
func ReadCatalogFile(path string) ([]models.University, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	var universities []models.University
	if err := json.Unmarshal(data, &universities); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	for i, u := range universities {
		if u.ID == "" {
			return nil, fmt.Errorf("parse catalog %s: entry %d has no id", path, i)
		}
	}
	return universities, nil
}

func (c *MemoryCatalog) FindCandidates(_ context.Context, f *matching.Filter) ([]models.University, error) {
	if f == nil {
		f = &matching.Filter{}
	}
	return f.Apply(c.universities), nil
}

func (c *MemoryCatalog) Len() int {
	return len(c.universities)
}
