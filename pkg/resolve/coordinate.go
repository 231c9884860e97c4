package resolve

import (
	"strings"

	"github.com/depscout/depscout/pkg/errors"
	"github.com/depscout/depscout/pkg/pom"
)

// SourceType records why a coordinate was collected.
type SourceType string

// Provenance tags, in the order they typically appear during a resolution.
const (
	SourceProject       SourceType = "project"
	SourceParent        SourceType = "parent"
	SourceDependency    SourceType = "dependency"
	SourceDepManaged    SourceType = "managed-dependency"
	SourceBOM           SourceType = "bom"
	SourcePlugin        SourceType = "plugin"
	SourcePluginManaged SourceType = "managed-plugin"
	SourcePluginDep     SourceType = "plugin-dependency"
)

// Coordinate is an immutable, fully-versioned artifact coordinate.
// GroupID, ArtifactID and Version are never blank and Version never
// contains an unresolved placeholder; NewCoordinate enforces both, so a
// Coordinate in circulation is always safe to map onto a repository path.
type Coordinate struct {
	GroupID    string     `json:"groupId"`
	ArtifactID string     `json:"artifactId"`
	Version    string     `json:"version"`
	Packaging  string     `json:"packaging"`
	Classifier string     `json:"classifier,omitempty"`
	Scope      string     `json:"scope,omitempty"`
	Source     SourceType `json:"source"`
}

// NewCoordinate validates and builds a Coordinate. Packaging defaults to
// jar. Blank identity fields or a version with a leftover ${ marker
// yield a MISSING_FIELD or UNRESOLVED_PLACEHOLDER error; parts that
// would escape the repository layout when mapped onto a path yield
// INVALID_COORDINATE. Such coordinates are discarded by callers, never
// stored partially resolved.
func NewCoordinate(groupID, artifactID, version, packaging, classifier, scope string, source SourceType) (Coordinate, error) {
	if strings.TrimSpace(groupID) == "" {
		return Coordinate{}, errors.New(errors.ErrCodeMissingField, "groupId missing for %s", artifactID)
	}
	if strings.TrimSpace(artifactID) == "" {
		return Coordinate{}, errors.New(errors.ErrCodeMissingField, "artifactId missing for %s", groupID)
	}
	if strings.TrimSpace(version) == "" {
		return Coordinate{}, errors.New(errors.ErrCodeMissingField, "version missing for %s:%s", groupID, artifactID)
	}
	if pom.HasPlaceholder(version) {
		return Coordinate{}, errors.New(errors.ErrCodeUnresolvedPlaceholder,
			"unresolved version %q for %s:%s", version, groupID, artifactID)
	}
	if pom.HasPlaceholder(groupID) || pom.HasPlaceholder(artifactID) {
		return Coordinate{}, errors.New(errors.ErrCodeUnresolvedPlaceholder,
			"unresolved identity %s:%s", groupID, artifactID)
	}
	if err := errors.ValidateCoordinatePart("groupId", groupID); err != nil {
		return Coordinate{}, err
	}
	if err := errors.ValidateCoordinatePart("artifactId", artifactID); err != nil {
		return Coordinate{}, err
	}
	if err := errors.ValidateCoordinatePart("version", version); err != nil {
		return Coordinate{}, err
	}
	if packaging == "" {
		packaging = "jar"
	}
	return Coordinate{
		GroupID:    groupID,
		ArtifactID: artifactID,
		Version:    version,
		Packaging:  packaging,
		Classifier: classifier,
		Scope:      scope,
		Source:     source,
	}, nil
}

// GA returns the group:artifact pair.
func (c Coordinate) GA() string {
	return c.GroupID + ":" + c.ArtifactID
}

// GAV returns the group:artifact:version triple.
func (c Coordinate) GAV() string {
	return c.GroupID + ":" + c.ArtifactID + ":" + c.Version
}

// Key returns the dedup key. Source does not participate: the same
// artifact reached through two inheritance paths is still one artifact.
func (c Coordinate) Key() string {
	return strings.Join([]string{c.GroupID, c.ArtifactID, c.Version, c.Packaging, c.Classifier}, ":")
}

// String returns the full human-readable coordinate.
func (c Coordinate) String() string {
	s := c.GAV() + ":" + c.Packaging
	if c.Classifier != "" {
		s += ":" + c.Classifier
	}
	return s
}
