// Package graph defines the normalized data model every language front-end
// emits into: typed entities, typed relationships, and the per-file result
// that carries them between the parse pass and collection.
package graph

import (
	"time"

	"github.com/DeusData/codegraph/internal/lang"
)

// Kind is the closed set of entity kinds. Consumers switch exhaustively over
// these values; adding a kind means extending AllKinds and every switch.
type Kind string

const (
	KindFile           Kind = "file"
	KindNamespace      Kind = "namespace"
	KindClass          Kind = "class"
	KindInterface      Kind = "interface"
	KindStruct         Kind = "struct"
	KindEnum           Kind = "enum"
	KindFunction       Kind = "function"
	KindMethod         Kind = "method"
	KindField          Kind = "field"
	KindProperty       Kind = "property"
	KindImport         Kind = "import"
	KindMacro          Kind = "macro"
	KindTemplate       Kind = "template"
	KindTemplateScript Kind = "template-script"
	KindFlow           Kind = "flow"
	KindFlowStep       Kind = "flow-step"
	KindRepository     Kind = "repository"
	KindModule         Kind = "module"
)

// AllKinds returns every entity kind.
func AllKinds() []Kind {
	return []Kind{
		KindFile, KindNamespace, KindClass, KindInterface, KindStruct, KindEnum,
		KindFunction, KindMethod, KindField, KindProperty, KindImport, KindMacro,
		KindTemplate, KindTemplateScript, KindFlow, KindFlowStep,
		KindRepository, KindModule,
	}
}

// EdgeType is the closed set of relationship kinds.
type EdgeType string

const (
	// Containment
	EdgeDefinesFunction EdgeType = "DEFINES_FUNCTION"
	EdgeDefinesType     EdgeType = "DEFINES_TYPE"
	EdgeContainsFile    EdgeType = "CONTAINS_FILE"
	EdgeContainsModule  EdgeType = "CONTAINS_MODULE"
	// Ownership
	EdgeHasMethod   EdgeType = "HAS_METHOD"
	EdgeHasField    EdgeType = "HAS_FIELD"
	EdgeHasProperty EdgeType = "HAS_PROPERTY"
	EdgeHasStep     EdgeType = "HAS_STEP"
	// Reference
	EdgeCalls         EdgeType = "CALLS"
	EdgeImports       EdgeType = "IMPORTS"
	EdgeIncludes      EdgeType = "INCLUDES"
	EdgeExtends       EdgeType = "EXTENDS"
	EdgeImplements    EdgeType = "IMPLEMENTS"
	EdgeBelongsTo     EdgeType = "BELONGS_TO"
	EdgeDependsOn     EdgeType = "DEPENDS_ON"
	EdgeTransitionsTo EdgeType = "TRANSITIONS_TO"
	EdgeRenders       EdgeType = "RENDERS"
)

// AllEdgeTypes returns every relationship type, in the order the store
// writes per-type batches.
func AllEdgeTypes() []EdgeType {
	return []EdgeType{
		EdgeDefinesFunction, EdgeDefinesType, EdgeContainsFile, EdgeContainsModule,
		EdgeHasMethod, EdgeHasField, EdgeHasProperty, EdgeHasStep,
		EdgeCalls, EdgeImports, EdgeIncludes, EdgeExtends, EdgeImplements,
		EdgeBelongsTo, EdgeDependsOn, EdgeTransitionsTo, EdgeRenders,
	}
}

// IsContainment reports whether an edge type records structural nesting or
// ownership (as opposed to a reference).
func (t EdgeType) IsContainment() bool {
	switch t {
	case EdgeDefinesFunction, EdgeDefinesType, EdgeContainsFile, EdgeContainsModule,
		EdgeHasMethod, EdgeHasField, EdgeHasProperty, EdgeHasStep:
		return true
	}
	return false
}

// Entity is one graph node: a file, declaration, or directive.
type Entity struct {
	// EntityID is content-addressed and stable across runs. Two entities
	// with equal EntityID are merged; the store never holds two live nodes
	// for the same id.
	EntityID string `json:"entityId"`
	// ID is a per-run instance number, unique only within one execution.
	ID int64 `json:"id"`

	Kind     Kind          `json:"kind"`
	Name     string        `json:"name"`
	FilePath string        `json:"filePath"`
	Language lang.Language `json:"language"`

	StartLine   int `json:"startLine"`
	EndLine     int `json:"endLine"`
	StartColumn int `json:"startColumn"`
	EndColumn   int `json:"endColumn"`

	// ParentID is the EntityID of the enclosing entity (weak reference
	// recording structural nesting, not lifetime ownership).
	ParentID string `json:"parentId,omitempty"`

	Properties map[string]any `json:"properties,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// Relationship is one typed, directed graph edge. Source and target always
// reference entities by EntityID, never by per-run ID.
type Relationship struct {
	EntityID string   `json:"entityId"`
	Type     EdgeType `json:"type"`
	SourceID string   `json:"sourceId"`
	TargetID string   `json:"targetId"`
	// Weight is a relative importance hint for downstream ranking.
	Weight     int            `json:"weight,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// FileResult is the unit of work produced by one visitor invocation.
// It is either spilled to a per-file artifact or held in memory, consumed
// exactly once during collection, then discarded.
type FileResult struct {
	FilePath      string          `json:"filePath"`
	Nodes         []*Entity       `json:"nodes"`
	Relationships []*Relationship `json:"relationships"`
}
