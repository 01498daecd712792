// Package catalog enumerates the symbol library on disk and tracks
// collaborative review state.
//
// The library is a directory tree of SVG files, each with an optional
// sidecar JSON carrying its annotations. A registry.json at the root,
// when present, is the authoritative listing; otherwise the tree is
// scanned.
package catalog

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"portstudio/geometry"
	"portstudio/symbol"
)

// ErrInvalidPath reports a symbol path that escapes the library root.
var ErrInvalidPath = errors.New("catalog: invalid symbol path")

// Entry describes one symbol in the library.
type Entry struct {
	Path      string `json:"path"` // slash-separated id relative to the root, no extension
	Name      string `json:"name"`
	Standard  string `json:"standard"`
	Category  string `json:"category"`
	Source    string `json:"source,omitempty"`
	Completed bool   `json:"completed"`
	Flag      string `json:"flag,omitempty"`
}

// Catalog is a symbol library rooted at one directory.
type Catalog struct {
	root string
}

// New creates a catalog over the given library root.
func New(root string) *Catalog {
	return &Catalog{root: root}
}

// Root returns the library root directory.
func (c *Catalog) Root() string { return c.root }

// Resolve maps a slash-separated symbol id to the absolute path of its
// SVG file. Ids that are absolute or traverse outside the root are
// rejected.
func (c *Catalog) Resolve(id string) (string, error) {
	if id == "" || path.IsAbs(id) || strings.Contains(id, "\\") {
		return "", ErrInvalidPath
	}
	clean := path.Clean(id)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidPath
	}
	return filepath.Join(c.root, filepath.FromSlash(clean)+".svg"), nil
}

// List returns all symbols, from registry.json when one exists and
// parses, otherwise by scanning the tree.
func (c *Catalog) List() ([]Entry, error) {
	if reg, err := os.ReadFile(filepath.Join(c.root, "registry.json")); err == nil {
		if entries, err := c.fromRegistry(reg); err == nil {
			return entries, nil
		}
	}
	return c.scan()
}

type registryFile struct {
	Symbols []registrySymbol `json:"symbols"`
}

type registrySymbol struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Standard    string `json:"standard"`
	Category    string `json:"category"`
}

func (c *Catalog) fromRegistry(data []byte) ([]Entry, error) {
	var reg registryFile
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(reg.Symbols))
	for _, sym := range reg.Symbols {
		if sym.ID == "" {
			continue
		}
		svgPath, err := c.Resolve(sym.ID)
		if err != nil {
			continue
		}
		metaPath := symbol.MetaPath(svgPath)
		if _, err := os.Stat(metaPath); err != nil {
			continue
		}

		e := entryFromID(sym.ID)
		if sym.DisplayName != "" {
			e.Name = sym.DisplayName
		}
		if sym.Standard != "" {
			e.Standard = strings.ToLower(sym.Standard)
		}
		if sym.Category != "" {
			e.Category = sym.Category
		}
		fillReviewState(&e, metaPath)
		entries = append(entries, e)
	}
	return entries, nil
}

func (c *Catalog) scan() ([]Entry, error) {
	var entries []Entry
	err := filepath.WalkDir(c.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".json") {
			return nil
		}
		stem := strings.TrimSuffix(d.Name(), ".json")
		if stem == "registry" || strings.Contains(stem, "_debug") {
			return nil
		}
		rel, err := filepath.Rel(c.root, p)
		if err != nil {
			return err
		}
		id := filepath.ToSlash(strings.TrimSuffix(rel, ".json"))
		e := entryFromID(id)
		fillReviewState(&e, p)
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// entryFromID derives the descriptor fields from a symbol id's path
// segments. Four-segment ids lead with a source collection; the standard
// and category follow.
func entryFromID(id string) Entry {
	parts := strings.Split(id, "/")
	e := Entry{Path: id, Name: parts[len(parts)-1]}
	switch {
	case len(parts) == 4:
		e.Source = parts[0]
		e.Standard = parts[1]
		e.Category = parts[2]
	case len(parts) >= 2:
		e.Standard = parts[0]
		e.Category = parts[1]
	case len(parts) == 1:
		e.Standard = parts[0]
	}
	return e
}

func fillReviewState(e *Entry, metaPath string) {
	meta, err := symbol.ReadMeta(metaPath)
	if err != nil {
		return
	}
	e.Completed = meta.Completed()
	e.Flag = meta.Flag()
}

// GroupStat is the completion tally for one standard or category.
type GroupStat struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

// Stats summarizes annotation progress across the library.
type Stats struct {
	Total      int                  `json:"total"`
	Completed  int                  `json:"completed"`
	Percentage float64              `json:"percentage"`
	ByStandard map[string]GroupStat `json:"by_standard"`
	ByCategory map[string]GroupStat `json:"by_category"`
}

// Stats computes completion totals grouped by standard and category.
func (c *Catalog) Stats() (Stats, error) {
	entries, err := c.List()
	if err != nil {
		return Stats{}, err
	}
	st := Stats{
		Total:      len(entries),
		ByStandard: make(map[string]GroupStat),
		ByCategory: make(map[string]GroupStat),
	}
	for _, e := range entries {
		std := e.Standard
		if std == "" {
			std = "unknown"
		}
		cat := e.Category
		if cat == "" {
			cat = "unknown"
		}
		s := st.ByStandard[std]
		s.Total++
		g := st.ByCategory[cat]
		g.Total++
		if e.Completed {
			st.Completed++
			s.Completed++
			g.Completed++
		}
		st.ByStandard[std] = s
		st.ByCategory[cat] = g
	}
	if st.Total > 0 {
		st.Percentage = geometry.Round2(float64(st.Completed) / float64(st.Total) * 100)
	}
	return st, nil
}
