// Package pom reads Maven project descriptors (pom.xml) into raw,
// unmerged models and resolves ${...} property placeholders.
//
// Reading a descriptor never touches the parent chain and never applies
// management overrides; that is the job of the resolve package. The
// reader is tolerant by design: a malformed descriptor yields a coded
// parse error together with whatever identity fields could be salvaged,
// so callers can keep going with partial information.
package pom

import (
	"encoding/xml"
	"io"
	"os"
	"strings"

	"github.com/depscout/depscout/pkg/errors"
)

// DefaultPluginGroup is the groupId Maven assumes for build plugins that
// do not declare one.
const DefaultPluginGroup = "org.apache.maven.plugins"

// ParentRef identifies a descriptor's parent project.
type ParentRef struct {
	GroupID      string `xml:"groupId"`
	ArtifactID   string `xml:"artifactId"`
	Version      string `xml:"version"`
	RelativePath string `xml:"relativePath"`
}

// Dependency is one entry of a dependencies or dependencyManagement list.
// Version, scope, type and classifier are all optional in the source XML.
type Dependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Scope      string `xml:"scope"`
	Type       string `xml:"type"`
	Classifier string `xml:"classifier"`
	Optional   string `xml:"optional"`
}

// IsBOMImport reports whether the entry is a bill-of-materials import
// (scope=import, type=pom) inside dependencyManagement.
func (d Dependency) IsBOMImport() bool {
	return d.Scope == "import" && d.Type == "pom"
}

// Plugin is one entry of a build.plugins or build.pluginManagement.plugins
// list. GroupID defaults to DefaultPluginGroup when absent in the XML.
type Plugin struct {
	GroupID      string       `xml:"groupId"`
	ArtifactID   string       `xml:"artifactId"`
	Version      string       `xml:"version"`
	Dependencies []Dependency `xml:"dependencies>dependency"`
}

// RawDescriptor is the parsed, unmerged representation of one on-disk
// descriptor file. Identity fields may be empty when inherited from the
// parent; nothing in here has had properties resolved.
type RawDescriptor struct {
	GroupID    string
	ArtifactID string
	Version    string
	Packaging  string

	Parent *ParentRef

	Properties map[string]string

	Dependencies         []Dependency
	DependencyManagement []Dependency

	Plugins        []Plugin
	ManagedPlugins []Plugin

	Modules []string

	// Path is the file this descriptor was read from.
	Path string
}

// xmlProject mirrors the on-disk project element. encoding/xml matches
// unqualified field tags against local element names regardless of the
// document's namespace, which covers both namespaced and plain POMs.
type xmlProject struct {
	GroupID              string       `xml:"groupId"`
	ArtifactID           string       `xml:"artifactId"`
	Version              string       `xml:"version"`
	Packaging            string       `xml:"packaging"`
	Parent               *ParentRef   `xml:"parent"`
	Properties           propertyMap  `xml:"properties"`
	Dependencies         []Dependency `xml:"dependencies>dependency"`
	DependencyManagement []Dependency `xml:"dependencyManagement>dependencies>dependency"`
	Modules              []string     `xml:"modules>module"`
	Build                struct {
		Plugins        []Plugin `xml:"plugins>plugin"`
		ManagedPlugins []Plugin `xml:"pluginManagement>plugins>plugin"`
	} `xml:"build"`
}

// propertyMap decodes the arbitrary key/value children of <properties>.
type propertyMap map[string]string

func (p *propertyMap) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	m := make(map[string]string)
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var value string
			if err := d.DecodeElement(&value, &t); err != nil {
				return err
			}
			m[t.Name.Local] = strings.TrimSpace(value)
		case xml.EndElement:
			if t.Name == start.Name {
				*p = m
				return nil
			}
		}
	}
}

// Read parses the descriptor file at path into a RawDescriptor.
//
// A missing file yields a DESCRIPTOR_NOT_FOUND error with a nil
// descriptor. Malformed XML yields a PARSE_ERROR together with a
// best-effort partial descriptor holding whatever identity fields were
// parseable before the error, so callers can still account for the file.
func Read(path string) (*RawDescriptor, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, errors.New(errors.ErrCodeDescriptorNotFound, "no descriptor at %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDescriptorNotFound, err, "read %s", path)
	}

	var proj xmlProject
	if err := xml.Unmarshal(data, &proj); err != nil {
		partial := salvage(data)
		partial.Path = path
		return partial, errors.Wrap(errors.ErrCodeParse, err, "malformed descriptor %s", path)
	}

	desc := &RawDescriptor{
		GroupID:              strings.TrimSpace(proj.GroupID),
		ArtifactID:           strings.TrimSpace(proj.ArtifactID),
		Version:              strings.TrimSpace(proj.Version),
		Packaging:            strings.TrimSpace(proj.Packaging),
		Parent:               proj.Parent,
		Properties:           proj.Properties,
		Dependencies:         proj.Dependencies,
		DependencyManagement: proj.DependencyManagement,
		Plugins:              proj.Build.Plugins,
		ManagedPlugins:       proj.Build.ManagedPlugins,
		Modules:              proj.Modules,
		Path:                 path,
	}
	if desc.Properties == nil {
		desc.Properties = map[string]string{}
	}
	for i := range desc.Plugins {
		if desc.Plugins[i].GroupID == "" {
			desc.Plugins[i].GroupID = DefaultPluginGroup
		}
	}
	for i := range desc.ManagedPlugins {
		if desc.ManagedPlugins[i].GroupID == "" {
			desc.ManagedPlugins[i].GroupID = DefaultPluginGroup
		}
	}
	return desc, nil
}

// salvage scans tokens up to the first XML error and keeps project-level
// identity fields. Depth 1 is the project element, depth 2 its direct
// children; nested groupId/artifactId elements (parent, dependencies) are
// ignored.
func salvage(data []byte) *RawDescriptor {
	desc := &RawDescriptor{Properties: map[string]string{}}
	dec := xml.NewDecoder(strings.NewReader(string(data)))
	depth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF || err != nil {
			return desc
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth != 2 {
				continue
			}
			switch t.Name.Local {
			case "groupId", "artifactId", "version", "packaging":
				var value string
				if err := dec.DecodeElement(&value, &t); err != nil {
					return desc
				}
				depth--
				value = strings.TrimSpace(value)
				switch t.Name.Local {
				case "groupId":
					desc.GroupID = value
				case "artifactId":
					desc.ArtifactID = value
				case "version":
					desc.Version = value
				case "packaging":
					desc.Packaging = value
				}
			}
		case xml.EndElement:
			depth--
		}
	}
}
