// Package scan discovers Maven descriptors on disk when no single root
// descriptor is available: it walks directory trees breadth-first for
// pom and binary artifact files, and can expand every locally cached
// version of the group:artifact pairs a resolution run encountered.
package scan

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/depscout/depscout/pkg/repo"
	"github.com/depscout/depscout/pkg/resolve"
)

// defaultSkipDirs are directory names never descended into: VCS and IDE
// metadata plus build-output trees.
var defaultSkipDirs = map[string]bool{
	".git":         true,
	".svn":         true,
	".hg":          true,
	".idea":        true,
	".vscode":      true,
	".gradle":      true,
	"target":       true,
	"node_modules": true,
	"build":        true,
	"dist":         true,
	"out":          true,
	"vendor":       true,
}

// binaryExts are artifact packaging extensions recognized during a scan.
var binaryExts = map[string]bool{
	".jar": true,
	".war": true,
	".ear": true,
}

// Scanner walks directory roots collecting descriptor candidates.
type Scanner struct {
	skipDirs map[string]bool
	logger   func(string, ...any)
}

// NewScanner creates a Scanner. extraSkipDirs extends the built-in skip
// list; logger may be nil.
func NewScanner(extraSkipDirs []string, logger func(string, ...any)) *Scanner {
	skip := make(map[string]bool, len(defaultSkipDirs)+len(extraSkipDirs))
	for name := range defaultSkipDirs {
		skip[name] = true
	}
	for _, name := range extraSkipDirs {
		skip[name] = true
	}
	if logger == nil {
		logger = func(string, ...any) {}
	}
	return &Scanner{skipDirs: skip, logger: logger}
}

// Scan traverses each root breadth-first and returns the descriptor
// paths found, in traversal order. Hidden directories and build-output
// directories are skipped. A binary artifact without a sibling
// descriptor contributes its conventionally-named .pom neighbor when
// one exists; otherwise it is skipped with a log line.
func (s *Scanner) Scan(roots []string) ([]string, error) {
	var descriptors []string
	seen := make(map[string]bool)

	add := func(path string) {
		clean := filepath.Clean(path)
		if !seen[clean] {
			seen[clean] = true
			descriptors = append(descriptors, clean)
		}
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return descriptors, err
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		queue := []string{root}
		for len(queue) > 0 {
			dir := queue[0]
			queue = queue[1:]

			entries, err := os.ReadDir(dir)
			if err != nil {
				s.logger("scan: skipping %s: %v", dir, err)
				continue
			}
			for _, e := range entries {
				name := e.Name()
				path := filepath.Join(dir, name)
				if e.IsDir() {
					if strings.HasPrefix(name, ".") || s.skipDirs[name] {
						continue
					}
					queue = append(queue, path)
					continue
				}
				switch {
				case name == "pom.xml" || strings.HasSuffix(name, ".pom"):
					add(path)
				case binaryExts[filepath.Ext(name)]:
					if sibling, ok := siblingDescriptor(path); ok {
						add(sibling)
					} else {
						s.logger("scan: no descriptor for %s", path)
					}
				}
			}
		}
	}
	return descriptors, nil
}

// ExpandVersions is the completeness pass: for every distinct
// group:artifact pair in the collected coordinates it walks the
// artifact's directory in the local repository and returns the
// descriptor path of every version found there, so locally-cached but
// undeclared versions remain discoverable. This deliberately broadens
// the set; consumers filter by need.
func ExpandVersions(layout *repo.Layout, coords []resolve.Coordinate) []string {
	var paths []string
	seenPair := make(map[string]bool)
	seenPath := make(map[string]bool)

	for _, c := range coords {
		pair := c.GA()
		if seenPair[pair] {
			continue
		}
		seenPair[pair] = true

		for _, version := range layout.Versions(c.GroupID, c.ArtifactID) {
			pomPath := layout.POMPath(c.GroupID, c.ArtifactID, version)
			if seenPath[pomPath] {
				continue
			}
			seenPath[pomPath] = true
			if info, err := os.Stat(pomPath); err == nil && !info.IsDir() {
				paths = append(paths, pomPath)
			}
		}
	}
	return paths
}

// siblingDescriptor maps a binary path onto its conventional descriptor
// neighbor (same basename, .pom extension) and reports whether it
// exists.
func siblingDescriptor(binaryPath string) (string, bool) {
	ext := filepath.Ext(binaryPath)
	pomPath := strings.TrimSuffix(binaryPath, ext) + ".pom"
	if info, err := os.Stat(pomPath); err == nil && !info.IsDir() {
		return pomPath, true
	}
	// Project-layout fallback: a jar in a source tree next to pom.xml.
	projectPom := filepath.Join(filepath.Dir(binaryPath), "pom.xml")
	if info, err := os.Stat(projectPom); err == nil && !info.IsDir() {
		return projectPom, true
	}
	return "", false
}
