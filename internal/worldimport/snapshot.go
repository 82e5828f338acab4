// This file parses world export snapshots and loads them into the database.
// Exports come from the simulation as JSON files with a versioned schema.

package worldimport

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/PuerkitoBio/goquery"

	"github.com/ardenvale/illuminator-go/internal/store"
)

type snapshotEntity struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	Era  string `json:"era"`
}

type snapshotChronicle struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Era   string `json:"era"`
}

// WorldSnapshot is the on-disk shape of one export file.
type WorldSnapshot struct {
	SchemaVersion string              `json:"schema_version"`
	Entities      []snapshotEntity    `json:"entities"`
	Chronicles    []snapshotChronicle `json:"chronicles"`
}

// ImportResult summarizes one import pass.
type ImportResult struct {
	Files      int
	Entities   int
	Chronicles int
	Skipped    int
}

// ImportFile loads a single snapshot into the store. Snapshots whose schema
// version falls outside the configured constraint are rejected; existing
// descriptions and tones are never overwritten by an import.
func ImportFile(st *store.Store, path, constraint string) (*ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read snapshot %s: %w", path, err)
	}

	var snap WorldSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("could not parse snapshot %s: %w", path, err)
	}

	if err := checkSchemaVersion(snap.SchemaVersion, constraint); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}

	result := &ImportResult{Files: 1}
	for _, e := range snap.Entities {
		if e.Name == "" {
			result.Skipped++
			continue
		}
		if _, err := st.UpsertEntity(e.Name, e.Kind, e.Era); err != nil {
			return nil, fmt.Errorf("could not upsert entity %q: %w", e.Name, err)
		}
		result.Entities++
	}
	for _, c := range snap.Chronicles {
		if c.Title == "" {
			result.Skipped++
			continue
		}
		body, err := stripMarkup(c.Body)
		if err != nil {
			return nil, fmt.Errorf("could not clean chronicle %q: %w", c.Title, err)
		}
		if _, err := st.UpsertChronicle(c.Title, body, c.Era); err != nil {
			return nil, fmt.Errorf("could not upsert chronicle %q: %w", c.Title, err)
		}
		result.Chronicles++
	}
	return result, nil
}

// ImportDir imports every .json snapshot under dir, newest last so later
// exports win on conflicting rows.
func ImportDir(st *store.Store, dir, constraint string) (*ImportResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("could not read export directory %s: %w", dir, err)
	}

	total := &ImportResult{}
	for _, entry := range entries {
		if entry.IsDir() || !IsSnapshotFile(entry.Name()) {
			continue
		}
		res, err := ImportFile(st, filepath.Join(dir, entry.Name()), constraint)
		if err != nil {
			// A single bad export should not block the rest of the directory.
			log.Printf("Skipping snapshot: %v", err)
			total.Skipped++
			continue
		}
		total.Files += res.Files
		total.Entities += res.Entities
		total.Chronicles += res.Chronicles
		total.Skipped += res.Skipped
	}
	return total, nil
}

// IsSnapshotFile reports whether a file name looks like a world export.
func IsSnapshotFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".json")
}

func checkSchemaVersion(version, constraint string) error {
	if version == "" {
		return fmt.Errorf("snapshot has no schema_version")
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid schema constraint %q: %w", constraint, err)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid schema_version %q: %w", version, err)
	}
	if !c.Check(v) {
		return fmt.Errorf("schema_version %s does not satisfy %q", version, constraint)
	}
	return nil
}

// stripMarkup flattens any HTML the simulation left in a chronicle body down
// to plain text. Plain bodies pass through unchanged.
func stripMarkup(body string) (string, error) {
	if !strings.Contains(body, "<") {
		return body, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(doc.Text()), nil
}
