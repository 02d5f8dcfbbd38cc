package lang

// Language identifies one supported source language or file format.
type Language string

const (
	C            Language = "c"
	CPP          Language = "cpp"
	CSharp       Language = "c-sharp"
	Go           Language = "go"
	JavaScript   Language = "javascript"
	TypeScript   Language = "typescript"
	TSX          Language = "tsx"
	PageTemplate Language = "page-template"
	FlowDef      Language = "flow-definition"
)

// AllLanguages returns every registered language.
func AllLanguages() []Language {
	return []Language{C, CPP, CSharp, Go, JavaScript, TypeScript, TSX, PageTemplate, FlowDef}
}

// Spec defines the tree-sitter node kinds and comment conventions for a
// language. The visitor and metrics packages are table-driven off these
// fields so the shared traversal code never hard-codes a grammar.
type Spec struct {
	Language       Language
	FileExtensions []string

	// SharedProject marks the JS/TS family: files are not parsed in
	// isolation but accumulated into one in-memory project first.
	SharedProject bool

	FunctionNodeKinds  []string
	TypeNodeKinds      []string
	NamespaceNodeKinds []string
	FieldNodeKinds     []string
	ImportNodeKinds    []string
	CallNodeKinds      []string

	// BranchNodeKinds are counted for cyclomatic complexity: conditionals,
	// loops, case arms, catch clauses, ternaries.
	BranchNodeKinds []string
	// NestingNodeKinds deepen the cognitive-complexity nesting level.
	NestingNodeKinds []string
	// AnonymousFnKinds are closures: they deepen nesting but, unlike named
	// declarations, do not stop the cognitive traversal.
	AnonymousFnKinds []string
	// JumpNodeKinds are break/continue/goto kinds checked for labels.
	JumpNodeKinds []string
	// BinaryExprKinds are node kinds that may carry short-circuit operators.
	BinaryExprKinds []string
	// ShortCircuitOps are the operator spellings counted by the metrics
	// engine ("&&", "||", "??").
	ShortCircuitOps []string

	LineCommentPrefixes []string
	BlockCommentStart   string
	BlockCommentEnd     string

	// DocCommentPrefix is the conventional doc-comment line prefix, when it
	// differs from a plain line comment (e.g. "///" for C#).
	DocCommentPrefix string
}

var registry = map[string]*Spec{}
var byLanguage = map[Language]*Spec{}

// Register adds a Spec to the global registry, keyed by file extension.
func Register(spec *Spec) {
	for _, ext := range spec.FileExtensions {
		registry[ext] = spec
	}
	byLanguage[spec.Language] = spec
}

// ForExtension returns the Spec registered for a file extension (e.g. ".go").
func ForExtension(ext string) *Spec {
	return registry[ext]
}

// ForLanguage returns the Spec for a language.
func ForLanguage(l Language) *Spec {
	return byLanguage[l]
}

// LanguageForExtension returns the Language for a file extension.
func LanguageForExtension(ext string) (Language, bool) {
	spec := registry[ext]
	if spec == nil {
		return "", false
	}
	return spec.Language, true
}
