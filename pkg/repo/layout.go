// Package repo maps Maven coordinates onto the canonical local
// repository layout and discovers the repository root.
package repo

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/depscout/depscout/pkg/errors"
)

// EnvRepoLocal overrides the local repository root, mirroring Maven's
// maven.repo.local system property.
const EnvRepoLocal = "MAVEN_REPO_LOCAL"

// Layout performs the pure path arithmetic of the local repository
// contract: <root>/<groupId as path>/<artifactId>/<version>/<artifactId>-<version>.<ext>.
// It never writes to the filesystem; the only reads are the existence
// checks needed to prefer a binary over a descriptor.
type Layout struct {
	root string
}

// DefaultRoot returns the local repository root: the MAVEN_REPO_LOCAL
// environment variable if set, otherwise <home>/.m2/repository.
func DefaultRoot() string {
	if root := os.Getenv(EnvRepoLocal); root != "" {
		return root
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".m2", "repository")
	}
	return filepath.Join(home, ".m2", "repository")
}

// NewLayout creates a Layout rooted at root. An empty root falls back
// to DefaultRoot. A root that does not exist yet is accepted; one that
// exists but is not a directory is a REPO_UNREADABLE error.
func NewLayout(root string) (*Layout, error) {
	if root == "" {
		root = DefaultRoot()
	}
	if err := errors.ValidateRepoRoot(root); err != nil {
		return nil, err
	}
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		return nil, errors.New(errors.ErrCodeRepoUnreadable, "repository root %s is not a directory", root)
	}
	return &Layout{root: root}, nil
}

// Root returns the repository root path.
func (l *Layout) Root() string { return l.root }

// ArtifactDir returns the directory holding every version of the given
// group:artifact pair.
func (l *Layout) ArtifactDir(groupID, artifactID string) string {
	return filepath.Join(l.root, groupAsPath(groupID), artifactID)
}

// VersionDir returns the directory of one specific version.
func (l *Layout) VersionDir(groupID, artifactID, version string) string {
	return filepath.Join(l.ArtifactDir(groupID, artifactID), version)
}

// POMPath returns the canonical descriptor path for a coordinate.
func (l *Layout) POMPath(groupID, artifactID, version string) string {
	return filepath.Join(l.VersionDir(groupID, artifactID, version),
		artifactID+"-"+version+".pom")
}

// ArtifactPath returns the canonical binary path for a coordinate with
// the given packaging. Empty packaging defaults to jar; the pom packaging
// maps onto the descriptor itself.
func (l *Layout) ArtifactPath(groupID, artifactID, version, packaging string) string {
	ext := packaging
	switch ext {
	case "":
		ext = "jar"
	case "bundle", "maven-plugin":
		// Both package to a jar on disk.
		ext = "jar"
	}
	return filepath.Join(l.VersionDir(groupID, artifactID, version),
		artifactID+"-"+version+"."+ext)
}

// LocalPath returns the preferred local file for a coordinate: the
// binary if it exists, the descriptor otherwise. The second return
// reports whether the chosen file exists on disk.
func (l *Layout) LocalPath(groupID, artifactID, version, packaging string) (string, bool) {
	bin := l.ArtifactPath(groupID, artifactID, version, packaging)
	if fileExists(bin) {
		return bin, true
	}
	pom := l.POMPath(groupID, artifactID, version)
	return pom, fileExists(pom)
}

// Versions lists the version directories present locally for a
// group:artifact pair, in directory order. A missing artifact directory
// yields an empty list, not an error.
func (l *Layout) Versions(groupID, artifactID string) []string {
	entries, err := os.ReadDir(l.ArtifactDir(groupID, artifactID))
	if err != nil {
		return nil
	}
	var versions []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			versions = append(versions, e.Name())
		}
	}
	return versions
}

func groupAsPath(groupID string) string {
	return strings.ReplaceAll(groupID, ".", string(filepath.Separator))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
