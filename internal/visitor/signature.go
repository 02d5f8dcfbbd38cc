package visitor

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codegraph/internal/lang"
	"github.com/DeusData/codegraph/internal/parser"
)

// Param is one normalized parameter, shared across every grammar.
type Param struct {
	Name     string `json:"name,omitempty"`
	Type     string `json:"type,omitempty"`
	Optional bool   `json:"optional,omitempty"`
	Variadic bool   `json:"variadic,omitempty"`
	ByRef    bool   `json:"byRef,omitempty"`
	Default  string `json:"default,omitempty"`
}

// Signature is the canonical declaration signature: one shape for every
// language, however different the native parameter/return syntax is.
type Signature struct {
	Params     []Param  `json:"params"`
	Returns    []string `json:"returns,omitempty"`
	Visibility string   `json:"visibility,omitempty"`
	Modifiers  []string `json:"modifiers,omitempty"`
}

// ToProperties renders the signature for an entity property bag.
func (s *Signature) ToProperties() map[string]any {
	params := make([]map[string]any, 0, len(s.Params))
	for _, p := range s.Params {
		m := map[string]any{}
		if p.Name != "" {
			m["name"] = p.Name
		}
		if p.Type != "" {
			m["type"] = p.Type
		}
		if p.Optional {
			m["optional"] = true
		}
		if p.Variadic {
			m["variadic"] = true
		}
		if p.ByRef {
			m["byRef"] = true
		}
		if p.Default != "" {
			m["default"] = p.Default
		}
		params = append(params, m)
	}
	props := map[string]any{"params": params}
	if len(s.Returns) > 0 {
		props["returns"] = s.Returns
	}
	if s.Visibility != "" {
		props["visibility"] = s.Visibility
	}
	if len(s.Modifiers) > 0 {
		props["modifiers"] = s.Modifiers
	}
	return props
}

// ExtractSignature computes the canonical signature for a declaration node.
func ExtractSignature(decl *tree_sitter.Node, source []byte, l lang.Language) *Signature {
	sig := &Signature{}
	switch l {
	case lang.Go:
		extractGoParams(decl, source, sig)
		extractGoReturns(decl, source, sig)
	case lang.C, lang.CPP:
		extractCParams(decl, source, sig)
		if t := decl.ChildByFieldName("type"); t != nil {
			sig.Returns = []string{parser.NodeText(t, source)}
		}
		extractCppModifiers(decl, source, sig)
	case lang.CSharp:
		extractCSharpParams(decl, source, sig)
		extractCSharpReturnsAndModifiers(decl, source, sig)
	case lang.JavaScript, lang.TypeScript, lang.TSX:
		extractTSParams(decl, source, sig)
		if rt := decl.ChildByFieldName("return_type"); rt != nil {
			sig.Returns = []string{trimTypeAnnotation(parser.NodeText(rt, source))}
		}
		extractTSModifiers(decl, source, sig)
	}
	return sig
}

func extractGoParams(decl *tree_sitter.Node, source []byte, sig *Signature) {
	params := decl.ChildByFieldName("parameters")
	if params == nil {
		return
	}
	for i := uint(0); i < params.NamedChildCount(); i++ {
		p := params.NamedChild(i)
		if p == nil {
			continue
		}
		switch p.Kind() {
		case "parameter_declaration":
			typeText := ""
			if t := p.ChildByFieldName("type"); t != nil {
				typeText = parser.NodeText(t, source)
			}
			names := namedChildrenOfKind(p, "identifier")
			if len(names) == 0 {
				sig.Params = append(sig.Params, Param{Type: typeText})
				continue
			}
			// "a, b int" declares two parameters of one type
			for _, n := range names {
				sig.Params = append(sig.Params, Param{
					Name: parser.NodeText(n, source),
					Type: typeText,
				})
			}
		case "variadic_parameter_declaration":
			param := Param{Variadic: true}
			if n := p.ChildByFieldName("name"); n != nil {
				param.Name = parser.NodeText(n, source)
			} else if names := namedChildrenOfKind(p, "identifier"); len(names) > 0 {
				param.Name = parser.NodeText(names[0], source)
			}
			if t := p.ChildByFieldName("type"); t != nil {
				param.Type = parser.NodeText(t, source)
			}
			sig.Params = append(sig.Params, param)
		}
	}
}

func extractGoReturns(decl *tree_sitter.Node, source []byte, sig *Signature) {
	result := decl.ChildByFieldName("result")
	if result == nil {
		return
	}
	if result.Kind() != "parameter_list" {
		sig.Returns = []string{parser.NodeText(result, source)}
		return
	}
	// Multiple (possibly named) return values
	for i := uint(0); i < result.NamedChildCount(); i++ {
		p := result.NamedChild(i)
		if p == nil {
			continue
		}
		if t := p.ChildByFieldName("type"); t != nil {
			sig.Returns = append(sig.Returns, parser.NodeText(t, source))
		} else {
			sig.Returns = append(sig.Returns, parser.NodeText(p, source))
		}
	}
}

func extractCParams(decl *tree_sitter.Node, source []byte, sig *Signature) {
	params := cParameterList(decl)
	if params == nil {
		return
	}
	for i := uint(0); i < params.NamedChildCount(); i++ {
		p := params.NamedChild(i)
		if p == nil {
			continue
		}
		switch p.Kind() {
		case "parameter_declaration":
			text := strings.TrimSpace(parser.NodeText(p, source))
			if text == "void" {
				continue
			}
			param := Param{}
			if t := p.ChildByFieldName("type"); t != nil {
				param.Type = parser.NodeText(t, source)
			}
			fillCDeclarator(p.ChildByFieldName("declarator"), source, &param)
			sig.Params = append(sig.Params, param)
		case "optional_parameter_declaration":
			param := Param{Optional: true}
			if t := p.ChildByFieldName("type"); t != nil {
				param.Type = parser.NodeText(t, source)
			}
			fillCDeclarator(p.ChildByFieldName("declarator"), source, &param)
			if d := p.ChildByFieldName("default_value"); d != nil {
				param.Default = parser.NodeText(d, source)
			}
			sig.Params = append(sig.Params, param)
		case "variadic_parameter":
			sig.Params = append(sig.Params, Param{Variadic: true})
		}
	}
}

// fillCDeclarator walks a C/C++ declarator chain, recording by-reference
// passing and the innermost identifier.
func fillCDeclarator(node *tree_sitter.Node, source []byte, param *Param) {
	for node != nil {
		switch node.Kind() {
		case "reference_declarator":
			param.ByRef = true
		case "pointer_declarator":
			param.Type += "*"
		case "identifier":
			param.Name = parser.NodeText(node, source)
			return
		}
		next := node.ChildByFieldName("declarator")
		if next == nil {
			// reference/pointer declarators nest the identifier as a child
			next = parser.FindChildByKind(node, "identifier")
		}
		node = next
	}
}

// cParameterList descends through declarators to the parameter list.
func cParameterList(decl *tree_sitter.Node) *tree_sitter.Node {
	if params := decl.ChildByFieldName("parameters"); params != nil {
		return params
	}
	node := decl.ChildByFieldName("declarator")
	for node != nil {
		if params := node.ChildByFieldName("parameters"); params != nil {
			return params
		}
		node = node.ChildByFieldName("declarator")
	}
	return nil
}

func extractCppModifiers(decl *tree_sitter.Node, source []byte, sig *Signature) {
	for i := uint(0); i < decl.ChildCount(); i++ {
		c := decl.Child(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "storage_class_specifier", "virtual", "static":
			sig.Modifiers = append(sig.Modifiers, parser.NodeText(c, source))
		}
	}
}

func extractCSharpParams(decl *tree_sitter.Node, source []byte, sig *Signature) {
	params := decl.ChildByFieldName("parameters")
	if params == nil {
		return
	}
	for i := uint(0); i < params.NamedChildCount(); i++ {
		p := params.NamedChild(i)
		if p == nil || p.Kind() != "parameter" {
			continue
		}
		param := Param{}
		if n := p.ChildByFieldName("name"); n != nil {
			param.Name = parser.NodeText(n, source)
		}
		if t := p.ChildByFieldName("type"); t != nil {
			param.Type = parser.NodeText(t, source)
		}
		for j := uint(0); j < p.ChildCount(); j++ {
			c := p.Child(j)
			if c == nil {
				continue
			}
			switch parser.NodeText(c, source) {
			case "ref", "out", "in":
				if !c.IsNamed() || c.Kind() == "parameter_modifier" {
					param.ByRef = true
				}
			case "params":
				param.Variadic = true
			}
			if c.Kind() == "equals_value_clause" {
				param.Optional = true
				param.Default = strings.TrimSpace(strings.TrimPrefix(parser.NodeText(c, source), "="))
			}
		}
		sig.Params = append(sig.Params, param)
	}
}

func extractCSharpReturnsAndModifiers(decl *tree_sitter.Node, source []byte, sig *Signature) {
	for _, field := range []string{"returns", "type"} {
		if rt := decl.ChildByFieldName(field); rt != nil {
			text := parser.NodeText(rt, source)
			if text != "void" {
				sig.Returns = []string{text}
			}
			break
		}
	}
	for i := uint(0); i < decl.ChildCount(); i++ {
		c := decl.Child(i)
		if c == nil || c.Kind() != "modifier" {
			continue
		}
		text := parser.NodeText(c, source)
		switch text {
		case "public", "private", "protected", "internal":
			if sig.Visibility == "" {
				sig.Visibility = text
			} else {
				sig.Visibility += " " + text // "protected internal"
			}
		default:
			sig.Modifiers = append(sig.Modifiers, text)
		}
	}
}

func extractTSParams(decl *tree_sitter.Node, source []byte, sig *Signature) {
	params := decl.ChildByFieldName("parameters")
	if params == nil {
		return
	}
	for i := uint(0); i < params.NamedChildCount(); i++ {
		p := params.NamedChild(i)
		if p == nil {
			continue
		}
		param := Param{}
		switch p.Kind() {
		case "identifier":
			param.Name = parser.NodeText(p, source)
		case "assignment_pattern":
			if left := p.ChildByFieldName("left"); left != nil {
				param.Name = parser.NodeText(left, source)
			}
			if right := p.ChildByFieldName("right"); right != nil {
				param.Default = parser.NodeText(right, source)
			}
			param.Optional = true
		case "rest_pattern":
			param.Variadic = true
			if id := parser.FindChildByKind(p, "identifier"); id != nil {
				param.Name = parser.NodeText(id, source)
			}
		case "required_parameter", "optional_parameter":
			param.Optional = p.Kind() == "optional_parameter"
			if pattern := p.ChildByFieldName("pattern"); pattern != nil {
				if pattern.Kind() == "rest_pattern" {
					param.Variadic = true
					if id := parser.FindChildByKind(pattern, "identifier"); id != nil {
						param.Name = parser.NodeText(id, source)
					}
				} else {
					param.Name = parser.NodeText(pattern, source)
				}
			}
			if t := p.ChildByFieldName("type"); t != nil {
				param.Type = trimTypeAnnotation(parser.NodeText(t, source))
			}
			if v := p.ChildByFieldName("value"); v != nil {
				param.Optional = true
				param.Default = parser.NodeText(v, source)
			}
		default:
			param.Name = parser.NodeText(p, source)
		}
		sig.Params = append(sig.Params, param)
	}
}

func extractTSModifiers(decl *tree_sitter.Node, source []byte, sig *Signature) {
	for i := uint(0); i < decl.ChildCount(); i++ {
		c := decl.Child(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "accessibility_modifier":
			sig.Visibility = parser.NodeText(c, source)
		case "async", "static":
			sig.Modifiers = append(sig.Modifiers, c.Kind())
		}
	}
}

func trimTypeAnnotation(text string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), ":"))
}

func namedChildrenOfKind(node *tree_sitter.Node, kind string) []*tree_sitter.Node {
	var out []*tree_sitter.Node
	for i := uint(0); i < node.NamedChildCount(); i++ {
		c := node.NamedChild(i)
		if c != nil && c.Kind() == kind {
			out = append(out, c)
		}
	}
	return out
}
