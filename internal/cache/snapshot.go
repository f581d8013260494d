package cache

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"

	"go-modcabinet/internal/modfile"
	"go-modcabinet/internal/readme"
)

type snapshotOut struct {
	Mods    map[string]*modfile.ModFile `json:"mods"`
	Readmes map[string]*readme.Readme   `json:"readmes"`
}

type snapshotIn struct {
	Mods    map[string]json.RawMessage `json:"mods"`
	Readmes map[string]json.RawMessage `json:"readmes"`
}

// WriteSnapshot writes both collections to w as gzip-compressed JSON.
func (c *Cache) WriteSnapshot(w io.Writer) error {
	gw, err := gzip.NewWriterLevel(w, gzip.BestCompression)
	if err != nil {
		return fmt.Errorf("error creating gzip writer: %w", err)
	}
	if err := json.NewEncoder(gw).Encode(snapshotOut{Mods: c.mods, Readmes: c.readmes}); err != nil {
		_ = gw.Close()
		return fmt.Errorf("error encoding cache snapshot: %w", err)
	}
	if err := gw.Close(); err != nil {
		return fmt.Errorf("error closing gzip writer: %w", err)
	}
	return nil
}

// ReadSnapshot merges a snapshot written by WriteSnapshot into the cache.
// Imported records replace existing ones with the same path and start out
// Cached and unseen.
func (c *Cache) ReadSnapshot(r io.Reader) error {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("error opening gzip snapshot: %w", err)
	}
	defer gr.Close()

	var in snapshotIn
	if err := json.NewDecoder(gr).Decode(&in); err != nil {
		return fmt.Errorf("error decoding cache snapshot: %w", err)
	}
	for path, raw := range in.Mods {
		m, err := modfile.Unserialize(raw)
		if err != nil {
			return fmt.Errorf("mod %s: %w", path, err)
		}
		c.mods[path] = m
	}
	for path, raw := range in.Readmes {
		rm, err := readme.Unserialize(raw)
		if err != nil {
			return fmt.Errorf("README %s: %w", path, err)
		}
		c.readmes[path] = rm
	}
	return nil
}
