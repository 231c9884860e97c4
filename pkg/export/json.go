// Package export serializes resolution results: a JSON report of the
// collected coordinates annotated with local repository paths, and a
// DOT/SVG rendering of the provenance graph.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/depscout/depscout/pkg/repo"
	"github.com/depscout/depscout/pkg/resolve"
)

// Entry is one coordinate in the report, annotated with the preferred
// local file (jar when present, descriptor otherwise) and whether that
// file exists. This is the hand-off record the existence-check/upload
// pipeline consumes.
type Entry struct {
	resolve.Coordinate

	LocalPath string `json:"localPath"`
	Exists    bool   `json:"exists"`
}

// Report is the serialized result of one resolution run.
type Report struct {
	RunID       string         `json:"runId"`
	RepoRoot    string         `json:"repoRoot"`
	Coordinates []Entry        `json:"coordinates"`
	Edges       []resolve.Edge `json:"edges,omitempty"`
	Skipped     []string       `json:"skipped,omitempty"`
}

// BuildReport annotates the collected coordinates against the layout,
// preserving discovery order.
func BuildReport(rc *resolve.Context, withEdges bool) Report {
	coords := rc.Collector.List()
	report := Report{
		RunID:       rc.RunID,
		RepoRoot:    rc.Layout.Root(),
		Coordinates: make([]Entry, len(coords)),
		Skipped:     rc.Skipped,
	}
	for i, c := range coords {
		path, exists := rc.Layout.LocalPath(c.GroupID, c.ArtifactID, c.Version, c.Packaging)
		report.Coordinates[i] = Entry{Coordinate: c, LocalPath: path, Exists: exists}
	}
	if withEdges {
		report.Edges = rc.Edges
	}
	return report
}

// WriteJSON encodes the report to w, indented for readability.
func WriteJSON(report Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes the report to a file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(report Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(report, f)
}

// AnnotateAll maps every coordinate to its local path against layout.
// It exists for consumers that only want path annotation without the
// full report envelope.
func AnnotateAll(layout *repo.Layout, coords []resolve.Coordinate) []Entry {
	entries := make([]Entry, len(coords))
	for i, c := range coords {
		path, exists := layout.LocalPath(c.GroupID, c.ArtifactID, c.Version, c.Packaging)
		entries[i] = Entry{Coordinate: c, LocalPath: path, Exists: exists}
	}
	return entries
}
