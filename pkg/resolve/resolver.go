// Package resolve builds effective models for Maven descriptors and
// collects the transitive set of fully-versioned artifact coordinates.
//
// The entry point is Resolver.ResolveAll: given one or more root
// descriptor paths it walks parents, BOM imports, dependencies, plugins
// and submodules, locating referenced descriptors in the local
// repository and expanding each coordinate at most once. Failures are
// isolated per descriptor; a malformed or missing file never aborts the
// run.
package resolve

import (
	"context"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/uuid"

	"github.com/depscout/depscout/pkg/pom"
	"github.com/depscout/depscout/pkg/repo"
)

// EdgeKind labels a provenance edge in the resolution graph.
type EdgeKind string

const (
	EdgeParent        EdgeKind = "parent"
	EdgeDependency    EdgeKind = "dependency"
	EdgeBOM           EdgeKind = "bom"
	EdgePlugin        EdgeKind = "plugin"
	EdgePluginDep     EdgeKind = "plugin-dependency"
	EdgeModule        EdgeKind = "module"
	EdgeManagedDep    EdgeKind = "managed-dependency"
	EdgeManagedPlugin EdgeKind = "managed-plugin"
)

// Edge records one discovered relation between two coordinates,
// identified by their group:artifact:version triples.
type Edge struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Kind EdgeKind `json:"kind"`
}

// Context is the per-run mutable state of one resolution: the visited
// set that guarantees termination on cycles, the coordinate collector,
// and the provenance edges. It is owned by exactly one top-level run
// and must never be shared across concurrent runs.
type Context struct {
	// RunID uniquely identifies this resolution run in logs and reports.
	RunID string

	Layout    *repo.Layout
	Collector *Collector
	Edges     []Edge

	// Skipped holds one diagnostic message per dropped entry.
	Skipped []string

	visited map[string]bool
}

// NewContext creates the state for one resolution run over the given
// repository layout.
func NewContext(layout *repo.Layout) *Context {
	return &Context{
		RunID:     uuid.NewString(),
		Layout:    layout,
		Collector: NewCollector(),
		visited:   make(map[string]bool),
	}
}

// Visited reports whether the coordinate key was already expanded.
func (rc *Context) Visited(key string) bool { return rc.visited[key] }

// MarkVisited records a coordinate key as expanded. It reports false if
// the key had been marked before.
func (rc *Context) MarkVisited(key string) bool {
	if rc.visited[key] {
		return false
	}
	rc.visited[key] = true
	return true
}

func (rc *Context) drop(msg string) {
	rc.Skipped = append(rc.Skipped, msg)
}

func (rc *Context) edge(from, to string, kind EdgeKind) {
	rc.Edges = append(rc.Edges, Edge{From: from, To: to, Kind: kind})
}

// Options configures a resolution run.
type Options struct {
	// Logger receives progress and diagnostic messages (optional).
	Logger func(string, ...any)
	// Progress receives a completion fraction and status line between
	// top-level steps (optional).
	Progress func(fraction float64, status string)
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = func(string, ...any) {}
	}
	if o.Progress == nil {
		o.Progress = func(float64, string) {}
	}
	return o
}

// Resolver orchestrates recursive descriptor resolution.
type Resolver struct {
	layout  *repo.Layout
	builder *Builder
	opts    Options
}

// NewResolver creates a Resolver over the repository layout. read may be
// nil to use the plain descriptor reader.
func NewResolver(layout *repo.Layout, read ReadFunc, opts Options) *Resolver {
	opts = opts.withDefaults()
	return &Resolver{
		layout:  layout,
		builder: NewBuilder(layout, read, opts.Logger),
		opts:    opts,
	}
}

// ResolveAll resolves every root descriptor path into rc's collector.
//
// Cancellation is cooperative: the context is polled at the start of
// each root and before each recursive coordinate expansion, never
// inside tight loops. A cancelled run returns ctx.Err() but leaves a
// valid, if incomplete, coordinate set in rc.
func (r *Resolver) ResolveAll(ctx context.Context, roots []string, rc *Context) error {
	r.builder.OnDrop(rc.drop)
	for i, root := range roots {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.opts.Progress(float64(i)/float64(len(roots)), "resolving "+filepath.Base(filepath.Dir(root))+"/"+filepath.Base(root))
		r.resolveDescriptor(ctx, rc, root)
	}
	r.opts.Progress(1, "done")
	return ctx.Err()
}

// resolveDescriptor expands one descriptor file: it emits the project,
// parent, dependency, management, BOM and plugin coordinates, then
// recurses into every referenced coordinate that is locally present and
// not yet visited.
func (r *Resolver) resolveDescriptor(ctx context.Context, rc *Context, path string) {
	if ctx.Err() != nil {
		return
	}

	m, err := r.builder.Build(path)
	if m == nil {
		// Fall back to the raw read for partial identity information.
		raw, rawErr := pom.Read(path)
		if raw == nil {
			r.opts.Logger("skipping %s: %v", path, firstErr(err, rawErr))
			rc.drop("descriptor " + path + " unreadable")
			return
		}
		r.emitPartial(rc, raw)
		return
	}

	from := filepath.Base(path)
	self, selfErr := NewCoordinate(m.GroupID, m.ArtifactID, m.Version, m.Packaging, "", "", SourceProject)
	if selfErr != nil {
		rc.drop("project identity incomplete in " + path)
	} else {
		rc.Collector.Add(self)
		rc.MarkVisited(self.GAV())
		from = self.GAV()
	}

	if m.Parent != nil {
		if c, err := NewCoordinate(m.Parent.GroupID, m.Parent.ArtifactID, m.Parent.Version, "pom", "", "", SourceParent); err == nil {
			rc.Collector.Add(c)
			rc.edge(from, c.GAV(), EdgeParent)
			r.recurse(ctx, rc, c)
		} else {
			rc.drop("parent reference incomplete in " + path)
		}
	}

	for _, d := range m.Dependencies {
		if c, err := NewCoordinate(d.GroupID, d.ArtifactID, d.Version, d.Type, d.Classifier, d.Scope, SourceDependency); err == nil {
			rc.Collector.Add(c)
			rc.edge(from, c.GAV(), EdgeDependency)
			r.recurse(ctx, rc, c)
		} else {
			rc.drop(err.Error())
		}
	}

	// Map order is not stable; sort keys so discovery order is
	// deterministic across runs.
	for _, key := range slices.Sorted(maps.Keys(m.DependencyManagement)) {
		d := m.DependencyManagement[key]
		if c, err := NewCoordinate(d.GroupID, d.ArtifactID, d.Version, d.Type, d.Classifier, d.Scope, SourceDepManaged); err == nil {
			rc.Collector.Add(c)
			rc.edge(from, c.GAV(), EdgeManagedDep)
			r.recurse(ctx, rc, c)
		}
	}

	for _, d := range m.BOMImports {
		if c, err := NewCoordinate(d.GroupID, d.ArtifactID, d.Version, "pom", "", d.Scope, SourceBOM); err == nil {
			rc.Collector.Add(c)
			rc.edge(from, c.GAV(), EdgeBOM)
			r.recurse(ctx, rc, c)
		}
	}

	r.emitPlugins(ctx, rc, from, m.Plugins, SourcePlugin, EdgePlugin)
	r.emitPlugins(ctx, rc, from, m.ManagedPlugins, SourcePluginManaged, EdgeManagedPlugin)

	// Multi-module layout: each submodule is an additional root.
	for _, module := range m.Modules {
		if ctx.Err() != nil {
			return
		}
		modPath := filepath.Join(filepath.Dir(path), module)
		if info, err := os.Stat(modPath); err == nil && info.IsDir() {
			modPath = filepath.Join(modPath, "pom.xml")
		}
		if _, err := os.Stat(modPath); err == nil {
			rc.edge(from, module, EdgeModule)
			r.resolveDescriptor(ctx, rc, modPath)
		}
	}
}

func (r *Resolver) emitPlugins(ctx context.Context, rc *Context, from string, plugins []pom.Plugin, source SourceType, kind EdgeKind) {
	for _, p := range plugins {
		c, err := NewCoordinate(p.GroupID, p.ArtifactID, p.Version, "maven-plugin", "", "", source)
		if err != nil {
			rc.drop(err.Error())
			continue
		}
		rc.Collector.Add(c)
		rc.edge(from, c.GAV(), kind)
		r.recurse(ctx, rc, c)

		for _, d := range p.Dependencies {
			if dc, err := NewCoordinate(d.GroupID, d.ArtifactID, d.Version, d.Type, d.Classifier, d.Scope, SourcePluginDep); err == nil {
				rc.Collector.Add(dc)
				rc.edge(c.GAV(), dc.GAV(), EdgePluginDep)
				r.recurse(ctx, rc, dc)
			}
		}
	}
}

// recurse expands a referenced coordinate's own descriptor when it
// exists locally. The visited check happens before recursion, so each
// coordinate is expanded at most once no matter how many edges point at
// it; this is what terminates parent and BOM cycles.
func (r *Resolver) recurse(ctx context.Context, rc *Context, c Coordinate) {
	if ctx.Err() != nil {
		return
	}
	if !rc.MarkVisited(c.GAV()) {
		return
	}
	pomPath := rc.Layout.POMPath(c.GroupID, c.ArtifactID, c.Version)
	if info, err := os.Stat(pomPath); err != nil || info.IsDir() {
		return
	}
	r.resolveDescriptor(ctx, rc, pomPath)
}

// emitPartial salvages what it can from a descriptor that failed the
// effective build: the identity coordinate, if complete and literal.
func (r *Resolver) emitPartial(rc *Context, raw *pom.RawDescriptor) {
	group := raw.GroupID
	version := raw.Version
	if raw.Parent != nil {
		if group == "" {
			group = raw.Parent.GroupID
		}
		if version == "" {
			version = raw.Parent.Version
		}
	}
	c, err := NewCoordinate(group, raw.ArtifactID, version, raw.Packaging, "", "", SourceProject)
	if err != nil {
		rc.drop("descriptor " + raw.Path + " yielded no usable identity")
		return
	}
	rc.Collector.Add(c)
	rc.MarkVisited(c.GAV())
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
