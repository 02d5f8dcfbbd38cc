// Package visitor implements the shared traversal pattern every language
// front-end follows: a single pre-order walk of one file's syntax tree with
// an explicit context stack of the innermost enclosing namespace and type,
// emitting normalized entities and relationships.
package visitor

import (
	"fmt"
	"time"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codegraph/internal/graph"
	"github.com/DeusData/codegraph/internal/identity"
	"github.com/DeusData/codegraph/internal/lang"
)

// FileInput is one file handed to a visitor.
type FileInput struct {
	Path     string // repository-relative, slash-separated
	Source   []byte
	Language lang.Language
}

// Visitor walks one file and emits its entities and relationships.
// A visitor never aborts a whole file on a malformed sub-tree: anomalies are
// logged, the declaration is skipped, and the walk continues.
type Visitor interface {
	Language() lang.Language
	Visit(file FileInput) (*graph.FileResult, error)
}

// Scope carries run-wide identity scoping and the per-run instance counter.
// An empty RepositoryID means unscoped identifiers.
type Scope struct {
	RepositoryID string
	Counter      *identity.Counter
}

// NewScope returns a Scope with a fresh instance counter.
func NewScope(repositoryID string) *Scope {
	return &Scope{RepositoryID: repositoryID, Counter: &identity.Counter{}}
}

// EntityID computes the content-addressed id for a qualified declaration
// within this scope.
func (s *Scope) EntityID(kind graph.Kind, qualified string) string {
	return identity.EntityID(string(kind), qualified, s.RepositoryID)
}

// RelationshipID computes the content-addressed id for an edge within this
// scope.
func (s *Scope) RelationshipID(t graph.EdgeType, sourceID, targetID string) string {
	return identity.RelationshipID(string(t), sourceID, targetID, s.RepositoryID)
}

// frame is one context-stack entry.
type frame struct {
	segment string
	entity  *graph.Entity
}

// Context is the explicit stack of enclosing namespace and type
// declarations threaded through a traversal. It is passed by reference so
// the traversal never depends on call-stack-implicit state.
type Context struct {
	frames []frame
}

// NewContext returns a context rooted at the given segment (package name,
// file path, or empty).
func NewContext(rootSegment string, rootEntity *graph.Entity) *Context {
	c := &Context{}
	c.Push(rootSegment, rootEntity)
	return c
}

// Push enters a declaration scope. An empty segment contributes no
// qualified-name part but still tracks the enclosing entity.
func (c *Context) Push(segment string, entity *graph.Entity) {
	c.frames = append(c.frames, frame{segment: segment, entity: entity})
}

// Pop leaves the innermost scope.
func (c *Context) Pop() {
	if len(c.frames) > 0 {
		c.frames = c.frames[:len(c.frames)-1]
	}
}

// QualifiedName resolves a declaration name against the current stack,
// e.g. "namespace.Type.method".
func (c *Context) QualifiedName(name string) string {
	qualified := ""
	for _, f := range c.frames {
		if f.segment == "" {
			continue
		}
		if qualified != "" {
			qualified += "."
		}
		qualified += f.segment
	}
	if qualified == "" {
		return name
	}
	if name == "" {
		return qualified
	}
	return qualified + "." + name
}

// Enclosing returns the innermost entity on the stack, or nil.
func (c *Context) Enclosing() *graph.Entity {
	for i := len(c.frames) - 1; i >= 0; i-- {
		if c.frames[i].entity != nil {
			return c.frames[i].entity
		}
	}
	return nil
}

// EnclosingType returns the innermost class/struct/interface/enum on the
// stack, or nil.
func (c *Context) EnclosingType() *graph.Entity {
	for i := len(c.frames) - 1; i >= 0; i-- {
		e := c.frames[i].entity
		if e == nil {
			continue
		}
		switch e.Kind {
		case graph.KindClass, graph.KindStruct, graph.KindInterface, graph.KindEnum:
			return e
		}
	}
	return nil
}

// Depth returns the stack depth (used by tests and anomaly logs).
func (c *Context) Depth() int {
	return len(c.frames)
}

// builder accumulates one file's result and stamps shared entity fields.
type builder struct {
	scope  *Scope
	file   FileInput
	result *graph.FileResult
	now    time.Time
}

func newBuilder(scope *Scope, file FileInput) *builder {
	return &builder{
		scope:  scope,
		file:   file,
		result: &graph.FileResult{FilePath: file.Path},
		now:    time.Now().UTC(),
	}
}

// emit creates an entity at a syntax node's span. parent may be nil.
func (b *builder) emit(kind graph.Kind, name, qualified string, node *tree_sitter.Node, parent *graph.Entity, props map[string]any) *graph.Entity {
	e := &graph.Entity{
		EntityID:   b.scope.EntityID(kind, qualified),
		ID:         b.scope.Counter.Next(),
		Kind:       kind,
		Name:       name,
		FilePath:   b.file.Path,
		Language:   b.file.Language,
		Properties: props,
		CreatedAt:  b.now,
	}
	if node != nil {
		e.StartLine = int(node.StartPosition().Row) + 1
		e.EndLine = int(node.EndPosition().Row) + 1
		e.StartColumn = int(node.StartPosition().Column)
		e.EndColumn = int(node.EndPosition().Column)
	}
	if parent != nil {
		e.ParentID = parent.EntityID
	}
	b.result.Nodes = append(b.result.Nodes, e)
	return e
}

// emitAt creates an entity at an explicit line span (flat-file visitors).
func (b *builder) emitAt(kind graph.Kind, name, qualified string, startLine, endLine int, parent *graph.Entity, props map[string]any) *graph.Entity {
	e := b.emit(kind, name, qualified, nil, parent, props)
	e.StartLine = startLine
	e.EndLine = endLine
	return e
}

// edge creates a relationship between two emitted entities.
func (b *builder) edge(t graph.EdgeType, source, target *graph.Entity) *graph.Relationship {
	return b.edgeIDs(t, source.EntityID, target.EntityID)
}

// edgeIDs creates a relationship between two entity ids.
func (b *builder) edgeIDs(t graph.EdgeType, sourceID, targetID string) *graph.Relationship {
	r := &graph.Relationship{
		EntityID:  b.scope.RelationshipID(t, sourceID, targetID),
		Type:      t,
		SourceID:  sourceID,
		TargetID:  targetID,
		CreatedAt: b.now,
	}
	b.result.Relationships = append(b.result.Relationships, r)
	return r
}

// location renders a file:line tag for logs and instance ids.
func (b *builder) location(node *tree_sitter.Node) string {
	if node == nil {
		return b.file.Path
	}
	return fmt.Sprintf("%s:%d", b.file.Path, node.StartPosition().Row+1)
}
