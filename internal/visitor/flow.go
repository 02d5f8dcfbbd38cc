package visitor

import (
	"fmt"
	"log/slog"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/DeusData/codegraph/internal/graph"
	"github.com/DeusData/codegraph/internal/lang"
)

// FlowVisitor walks one flow definition. Flow files are YAML, not
// tree-sitter territory: the document decodes into a node tree that keeps
// per-key line numbers, so step entities still carry real source spans.
type FlowVisitor struct {
	scope *Scope
	log   *slog.Logger
}

func NewFlowVisitor(scope *Scope) *FlowVisitor {
	return &FlowVisitor{scope: scope, log: slog.Default()}
}

func (v *FlowVisitor) Language() lang.Language { return lang.FlowDef }

func (v *FlowVisitor) Visit(file FileInput) (*graph.FileResult, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(file.Source, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", file.Path, err)
	}
	root := yamlDocumentRoot(&doc)
	if root == nil || root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse %s: not a flow mapping", file.Path)
	}

	b := newBuilder(v.scope, file)

	flowName := yamlString(root, "flow")
	if flowName == "" {
		flowName = yamlString(root, "name")
	}
	if flowName == "" {
		flowName = strings.TrimSuffix(path.Base(file.Path), path.Ext(file.Path))
	}
	props := map[string]any{}
	if desc := yamlString(root, "description"); desc != "" {
		props["description"] = desc
	}
	// qualified names root at the file path so two files declaring the same
	// flow name stay distinct
	flowQualified := file.Path + "#" + flowName
	lineCount := strings.Count(string(file.Source), "\n") + 1
	flow := b.emitAt(graph.KindFlow, flowName, flowQualified, root.Line, lineCount, nil, props)

	steps := yamlKey(root, "steps")
	if steps == nil || steps.Kind != yaml.SequenceNode {
		return b.result, nil
	}

	// First pass emits every step so transitions can target forward steps.
	stepsByID := make(map[string]*graph.Entity, len(steps.Content))
	for _, stepNode := range steps.Content {
		if stepNode.Kind != yaml.MappingNode {
			v.log.Warn("visit.skip_step", "path", file.Path, "line", stepNode.Line)
			continue
		}
		id := yamlString(stepNode, "id")
		if id == "" {
			id = yamlString(stepNode, "name")
		}
		if id == "" {
			v.log.Warn("visit.skip_step", "path", file.Path, "line", stepNode.Line)
			continue
		}
		stepProps := map[string]any{}
		if desc := yamlString(stepNode, "description"); desc != "" {
			stepProps["description"] = desc
		}
		if calls := yamlStringList(stepNode, "call", "calls"); len(calls) > 0 {
			stepProps["calls"] = calls
		}
		if tpl := yamlString(stepNode, "template"); tpl != "" {
			stepProps["renders"] = []string{tpl}
		}
		step := b.emitAt(graph.KindFlowStep, id, flowQualified+"."+id,
			stepNode.Line, yamlEndLine(stepNode), flow, stepProps)
		b.edge(graph.EdgeHasStep, flow, step)
		stepsByID[id] = step
	}

	for _, stepNode := range steps.Content {
		if stepNode.Kind != yaml.MappingNode {
			continue
		}
		id := yamlString(stepNode, "id")
		if id == "" {
			id = yamlString(stepNode, "name")
		}
		source := stepsByID[id]
		if source == nil {
			continue
		}
		for _, target := range yamlStringList(stepNode, "next", "then", "transitions") {
			dest := stepsByID[target]
			if dest == nil {
				v.log.Warn("visit.dangling_transition", "path", file.Path, "step", id, "target", target)
				continue
			}
			b.edge(graph.EdgeTransitionsTo, source, dest)
		}
	}
	return b.result, nil
}

func yamlDocumentRoot(doc *yaml.Node) *yaml.Node {
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		return doc.Content[0]
	}
	return doc
}

// yamlKey returns the value node for a mapping key.
func yamlKey(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

func yamlString(mapping *yaml.Node, key string) string {
	n := yamlKey(mapping, key)
	if n == nil || n.Kind != yaml.ScalarNode {
		return ""
	}
	return n.Value
}

// yamlStringList reads the first present key as either a scalar or a
// sequence of scalars.
func yamlStringList(mapping *yaml.Node, keys ...string) []string {
	for _, key := range keys {
		n := yamlKey(mapping, key)
		if n == nil {
			continue
		}
		switch n.Kind {
		case yaml.ScalarNode:
			if n.Value != "" {
				return []string{n.Value}
			}
		case yaml.SequenceNode:
			var out []string
			for _, c := range n.Content {
				if c.Kind == yaml.ScalarNode && c.Value != "" {
					out = append(out, c.Value)
				}
			}
			return out
		}
	}
	return nil
}

// yamlEndLine returns the last line a node's subtree touches.
func yamlEndLine(node *yaml.Node) int {
	end := node.Line
	for _, c := range node.Content {
		if l := yamlEndLine(c); l > end {
			end = l
		}
	}
	return end
}
