package resolve

import (
	"maps"
	"os"
	"path/filepath"

	"github.com/depscout/depscout/pkg/pom"
	"github.com/depscout/depscout/pkg/repo"
)

// EffectiveModel is the fully merged, placeholder-resolved view of a
// descriptor after applying its entire parent chain and management
// overrides. Version fields consumed downstream never contain an
// unresolved placeholder; entries that cannot be resolved are dropped
// during the build, not left dangling.
type EffectiveModel struct {
	GroupID    string
	ArtifactID string
	Version    string
	Packaging  string

	// Parent is the declared parent reference with its version resolved,
	// or nil for a chain root.
	Parent *pom.ParentRef

	// Properties is the merged table: parent entries first, child entries
	// override on key collision. The project.* reserved keys reflect this
	// model's own identity.
	Properties map[string]string

	// DependencyManagement maps "groupId:artifactId" to the managed entry
	// that supplies default versions, with BOM imports inlined.
	DependencyManagement map[string]pom.Dependency

	// BOMImports lists the bill-of-materials descriptors imported by this
	// model or its ancestors, with versions resolved.
	BOMImports []pom.Dependency

	// Dependencies are this descriptor's own declared dependencies with
	// versions resolved (explicit first, managed lookup second).
	Dependencies []pom.Dependency

	// Plugins and ManagedPlugins are merged across the parent chain,
	// child overriding parent by groupId:artifactId, each version
	// resolved exactly once against the merged property table.
	Plugins        []pom.Plugin
	ManagedPlugins []pom.Plugin

	Modules []string
	Path    string

	// Declaration lists threaded up the parent chain so that a child
	// level re-resolves inherited entries against its own merged
	// property table rather than an ancestor's snapshot.
	dmDecls            []pom.Dependency
	pluginDecls        []pom.Plugin
	managedPluginDecls []pom.Plugin
}

// ReadFunc reads one descriptor file; it exists so a caching layer can
// be slotted in front of pom.Read.
type ReadFunc func(path string) (*pom.RawDescriptor, error)

// Builder constructs effective models by walking parent chains
// depth-first and merging top-down.
type Builder struct {
	layout *repo.Layout
	read   ReadFunc
	logger func(string, ...any)
	onDrop func(string)
}

// NewBuilder creates a Builder over the given repository layout.
// read defaults to pom.Read when nil; logger and onDrop may be nil.
func NewBuilder(layout *repo.Layout, read ReadFunc, logger func(string, ...any)) *Builder {
	if read == nil {
		read = pom.Read
	}
	if logger == nil {
		logger = func(string, ...any) {}
	}
	return &Builder{layout: layout, read: read, logger: logger, onDrop: func(string) {}}
}

// OnDrop registers a callback invoked with a diagnostic message each
// time an entry is dropped for an unresolvable or missing field.
func (b *Builder) OnDrop(fn func(string)) {
	if fn != nil {
		b.onDrop = fn
	}
}

// Build reads the descriptor at path and produces its effective model.
// A missing or malformed root descriptor yields a nil model and the
// read error; callers may fall back to pom.Read for partial identity.
// A missing ancestor never fails the build: the chain continues with an
// empty parent model, preferring partial resolution over total failure.
func (b *Builder) Build(path string) (*EffectiveModel, error) {
	return b.build(path, map[string]bool{})
}

func (b *Builder) build(path string, building map[string]bool) (*EffectiveModel, error) {
	abs := filepath.Clean(path)
	if building[abs] {
		// Parent cycle; treat the ancestor as absent so the chain terminates.
		return nil, nil
	}
	building[abs] = true
	defer delete(building, abs)

	raw, err := b.read(path)
	if err != nil || raw == nil {
		return nil, err
	}

	parent := emptyModel()
	if raw.Parent != nil {
		if p := b.buildParent(raw, building); p != nil {
			parent = p
		}
	}

	m := &EffectiveModel{Path: raw.Path, Modules: raw.Modules}

	// Identity: fields absent locally are inherited from the parent.
	m.ArtifactID = raw.ArtifactID
	m.GroupID = firstNonEmpty(raw.GroupID, parent.GroupID, parentRefGroup(raw))
	m.Packaging = firstNonEmpty(raw.Packaging, "jar")

	// Properties: parent first, child overrides.
	props := maps.Clone(parent.Properties)
	if props == nil {
		props = map[string]string{}
	}
	maps.Copy(props, raw.Properties)

	m.Version = pom.ResolveProperties(firstNonEmpty(raw.Version, parent.Version, parentRefVersion(raw)), props)

	// Reserved keys reflect this level's identity, shadowing whatever the
	// ancestors put there.
	setReserved(props, "project.groupId", m.GroupID)
	setReserved(props, "project.artifactId", m.ArtifactID)
	setReserved(props, "project.version", m.Version)
	setReserved(props, "pom.groupId", m.GroupID)
	setReserved(props, "pom.version", m.Version)
	if raw.Parent != nil {
		setReserved(props, "project.parent.version", pom.ResolveProperties(raw.Parent.Version, props))
		setReserved(props, "parent.version", pom.ResolveProperties(raw.Parent.Version, props))
	}
	m.Properties = props

	if raw.Parent != nil {
		m.Parent = &pom.ParentRef{
			GroupID:      pom.ResolveProperties(raw.Parent.GroupID, props),
			ArtifactID:   raw.Parent.ArtifactID,
			Version:      pom.ResolveProperties(raw.Parent.Version, props),
			RelativePath: raw.Parent.RelativePath,
		}
	}

	// Management declarations: parent entries first, own entries after,
	// so the later-wins overlay below gives child-overrides-parent.
	m.dmDecls = append(append([]pom.Dependency{}, parent.dmDecls...), raw.DependencyManagement...)
	m.pluginDecls = mergePluginDecls(parent.pluginDecls, raw.Plugins)
	m.managedPluginDecls = mergePluginDecls(parent.managedPluginDecls, raw.ManagedPlugins)

	b.resolveManagement(m, building)
	b.resolveDependencies(m, raw)
	b.resolvePlugins(m)

	return m, nil
}

// buildParent locates and builds the parent model: the relativePath hint
// first, the canonical repository path second. Either failing quietly
// leaves the parent absent.
func (b *Builder) buildParent(raw *pom.RawDescriptor, building map[string]bool) *EffectiveModel {
	ref := raw.Parent

	if ref.RelativePath != "" && raw.Path != "" {
		candidate := filepath.Join(filepath.Dir(raw.Path), ref.RelativePath)
		if info, err := os.Stat(candidate); err == nil {
			if info.IsDir() {
				candidate = filepath.Join(candidate, "pom.xml")
			}
			if p, err := b.build(candidate, building); err == nil && p != nil {
				return p
			}
		}
	}

	if ref.GroupID == "" || ref.ArtifactID == "" || ref.Version == "" || pom.HasPlaceholder(ref.Version) {
		return nil
	}
	pomPath := b.layout.POMPath(ref.GroupID, ref.ArtifactID, ref.Version)
	p, err := b.build(pomPath, building)
	if err != nil || p == nil {
		b.logger("parent %s:%s:%s not resolvable locally", ref.GroupID, ref.ArtifactID, ref.Version)
		return nil
	}
	return p
}

// resolveManagement overlays the merged dependencyManagement
// declarations into a lookup table and inlines BOM imports. Directly
// declared entries win over imported ones; child declarations win over
// parent declarations because they come later in the merged list.
func (b *Builder) resolveManagement(m *EffectiveModel, building map[string]bool) {
	dm := make(map[string]pom.Dependency, len(m.dmDecls))
	var boms []pom.Dependency

	for _, d := range m.dmDecls {
		d.GroupID = pom.ResolveProperties(d.GroupID, m.Properties)
		d.ArtifactID = pom.ResolveProperties(d.ArtifactID, m.Properties)
		d.Version = pom.ResolveProperties(d.Version, m.Properties)

		if d.IsBOMImport() {
			if d.Version == "" || pom.HasPlaceholder(d.Version) || d.GroupID == "" || d.ArtifactID == "" {
				b.onDrop("bom import " + d.GroupID + ":" + d.ArtifactID + " has unresolvable version")
				continue
			}
			boms = append(boms, d)
			bomPath := b.layout.POMPath(d.GroupID, d.ArtifactID, d.Version)
			bm, err := b.build(bomPath, building)
			if err != nil || bm == nil {
				b.logger("bom %s:%s:%s not resolvable locally", d.GroupID, d.ArtifactID, d.Version)
				continue
			}
			// Imported entries fill gaps only; they never override a
			// declared entry.
			for key, entry := range bm.DependencyManagement {
				if _, exists := dm[key]; !exists {
					dm[key] = entry
				}
			}
			continue
		}

		if d.GroupID == "" || d.ArtifactID == "" {
			b.onDrop("managed dependency with blank identity dropped")
			continue
		}
		dm[d.GroupID+":"+d.ArtifactID] = d
	}

	m.DependencyManagement = dm
	m.BOMImports = boms
}

// resolveDependencies resolves each declared dependency version:
// explicit declarations substitute against the merged properties,
// everything else looks up the merged dependencyManagement table.
// Entries that stay unresolved are dropped and reported.
func (b *Builder) resolveDependencies(m *EffectiveModel, raw *pom.RawDescriptor) {
	for _, d := range raw.Dependencies {
		d.GroupID = pom.ResolveProperties(d.GroupID, m.Properties)
		d.ArtifactID = pom.ResolveProperties(d.ArtifactID, m.Properties)
		if d.GroupID == "" || d.ArtifactID == "" || pom.HasPlaceholder(d.GroupID) || pom.HasPlaceholder(d.ArtifactID) {
			b.onDrop("dependency with unresolvable identity dropped in " + m.Path)
			continue
		}

		if d.Version != "" {
			d.Version = pom.ResolveProperties(d.Version, m.Properties)
		} else if managed, ok := m.DependencyManagement[d.GroupID+":"+d.ArtifactID]; ok {
			d.Version = managed.Version
			if d.Scope == "" {
				d.Scope = managed.Scope
			}
			if d.Classifier == "" {
				d.Classifier = managed.Classifier
			}
		}

		if d.Version == "" || pom.HasPlaceholder(d.Version) {
			b.onDrop("dependency " + d.GroupID + ":" + d.ArtifactID + " has unresolvable version")
			continue
		}
		m.Dependencies = append(m.Dependencies, d)
	}
}

// resolvePlugins resolves every merged plugin declaration exactly once,
// against the final merged property table. A plugin inherited from an
// ancestor therefore picks up a child's override of its version
// property, and the same groupId:artifactId never yields more than one
// coordinate regardless of how many ancestor levels declared it.
func (b *Builder) resolvePlugins(m *EffectiveModel) {
	managedVersions := make(map[string]string, len(m.managedPluginDecls))
	for _, p := range m.managedPluginDecls {
		managedVersions[p.GroupID+":"+p.ArtifactID] = p.Version
	}

	resolveOne := func(p pom.Plugin) (pom.Plugin, bool) {
		v := b.resolvePluginVersion(p, m.Properties, managedVersions)
		if v == "" {
			b.onDrop("plugin " + p.GroupID + ":" + p.ArtifactID + " has no resolvable version")
			return p, false
		}
		p.Version = v

		deps := p.Dependencies
		p.Dependencies = nil
		for _, d := range deps {
			d.GroupID = pom.ResolveProperties(d.GroupID, m.Properties)
			d.ArtifactID = pom.ResolveProperties(d.ArtifactID, m.Properties)
			if d.Version != "" {
				d.Version = pom.ResolveProperties(d.Version, m.Properties)
			} else if managed, ok := m.DependencyManagement[d.GroupID+":"+d.ArtifactID]; ok {
				d.Version = managed.Version
			}
			if d.GroupID == "" || d.ArtifactID == "" || d.Version == "" || pom.HasPlaceholder(d.Version) {
				b.onDrop("plugin dependency " + d.GroupID + ":" + d.ArtifactID + " dropped")
				continue
			}
			p.Dependencies = append(p.Dependencies, d)
		}
		return p, true
	}

	for _, p := range m.pluginDecls {
		if resolved, ok := resolveOne(p); ok {
			m.Plugins = append(m.Plugins, resolved)
		}
	}
	for _, p := range m.managedPluginDecls {
		if resolved, ok := resolveOne(p); ok {
			m.ManagedPlugins = append(m.ManagedPlugins, resolved)
		}
	}
}

// resolvePluginVersion determines a plugin's version in documented
// order: the explicit declaration, the merged pluginManagement table,
// then the properties-keyed conventions "<artifactId>.version" (1),
// "<groupId>:<artifactId>.version" (2) and "plugin.<artifactId>.version"
// (3). Returns "" when nothing resolves cleanly.
func (b *Builder) resolvePluginVersion(p pom.Plugin, props map[string]string, managed map[string]string) string {
	if v := pom.ResolveProperties(p.Version, props); v != "" && !pom.HasPlaceholder(v) {
		return v
	}
	if mv, ok := managed[p.GroupID+":"+p.ArtifactID]; ok {
		if v := pom.ResolveProperties(mv, props); v != "" && !pom.HasPlaceholder(v) {
			return v
		}
	}
	for _, key := range []string{
		p.ArtifactID + ".version",
		p.GroupID + ":" + p.ArtifactID + ".version",
		"plugin." + p.ArtifactID + ".version",
	} {
		if v, ok := props[key]; ok {
			if v = pom.ResolveProperties(v, props); v != "" && !pom.HasPlaceholder(v) {
				return v
			}
		}
	}
	return ""
}

// mergePluginDecls merges plugin declaration lists keyed by
// groupId:artifactId. Parent order is preserved; a child redeclaration
// replaces the inherited entry in place, new child plugins append.
func mergePluginDecls(parent, child []pom.Plugin) []pom.Plugin {
	merged := make([]pom.Plugin, len(parent))
	copy(merged, parent)
	index := make(map[string]int, len(merged))
	for i, p := range merged {
		index[p.GroupID+":"+p.ArtifactID] = i
	}
	for _, p := range child {
		if i, ok := index[p.GroupID+":"+p.ArtifactID]; ok {
			merged[i] = p
			continue
		}
		index[p.GroupID+":"+p.ArtifactID] = len(merged)
		merged = append(merged, p)
	}
	return merged
}

func emptyModel() *EffectiveModel {
	return &EffectiveModel{
		Properties:           map[string]string{},
		DependencyManagement: map[string]pom.Dependency{},
	}
}

func parentRefGroup(raw *pom.RawDescriptor) string {
	if raw.Parent != nil {
		return raw.Parent.GroupID
	}
	return ""
}

func parentRefVersion(raw *pom.RawDescriptor) string {
	if raw.Parent != nil {
		return raw.Parent.Version
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func setReserved(props map[string]string, key, value string) {
	if value != "" && !pom.HasPlaceholder(value) {
		props[key] = value
	}
}
