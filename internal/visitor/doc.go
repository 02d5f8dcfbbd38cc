package visitor

import (
	"regexp"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codegraph/internal/lang"
	"github.com/DeusData/codegraph/internal/parser"
)

// DocTag is one normalized documentation tag (param, returns, throws, ...).
type DocTag struct {
	Tag         string `json:"tag"`
	Name        string `json:"name,omitempty"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// Documentation is the shared doc shape every language convention
// normalizes into.
type Documentation struct {
	Summary string   `json:"summary"`
	Raw     string   `json:"raw"`
	Tags    []DocTag `json:"tags,omitempty"`
}

// ToProperties renders the documentation for an entity property bag.
func (d *Documentation) ToProperties() map[string]any {
	props := map[string]any{"summary": d.Summary, "raw": d.Raw}
	if len(d.Tags) > 0 {
		tags := make([]map[string]any, 0, len(d.Tags))
		for _, t := range d.Tags {
			m := map[string]any{"tag": t.Tag}
			if t.Name != "" {
				m["name"] = t.Name
			}
			if t.Type != "" {
				m["type"] = t.Type
			}
			if t.Description != "" {
				m["description"] = t.Description
			}
			tags = append(tags, m)
		}
		props["tags"] = tags
	}
	return props
}

// ExtractDoc collects the comment block immediately preceding a declaration
// and normalizes it. The backward scan over preceding siblings stops at the
// first blank-line gap or non-comment sibling.
func ExtractDoc(node *tree_sitter.Node, source []byte, l lang.Language) *Documentation {
	comments := precedingComments(node, source)
	if len(comments) == 0 {
		return nil
	}
	raw := strings.Join(comments, "\n")

	switch l {
	case lang.CSharp:
		return parseXMLDoc(raw)
	default:
		return parseTaggedDoc(raw, l)
	}
}

// precedingComments walks previous siblings backward, collecting contiguous
// comment nodes. Returned in source order.
func precedingComments(node *tree_sitter.Node, source []byte) []string {
	var collected []string
	expectedEnd := int(node.StartPosition().Row) - 1

	sib := node.PrevNamedSibling()
	for sib != nil {
		kind := sib.Kind()
		if kind != "comment" && kind != "block_comment" && kind != "line_comment" {
			break
		}
		start := int(sib.StartPosition().Row)
		end := int(sib.EndPosition().Row)
		if end < expectedEnd {
			break // blank line between comment and declaration
		}
		collected = append([]string{parser.NodeText(sib, source)}, collected...)
		expectedEnd = start - 1
		sib = sib.PrevNamedSibling()
	}
	return collected
}

// stripCommentMarkers removes //, ///, /* */ and leading * decorations.
func stripCommentMarkers(raw string) []string {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "/**")
	text = strings.TrimPrefix(text, "/*!")
	text = strings.TrimPrefix(text, "/*")
	text = strings.TrimSuffix(text, "*/")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "///")
		line = strings.TrimPrefix(line, "//!")
		line = strings.TrimPrefix(line, "//")
		line = strings.TrimPrefix(line, "*")
		lines = append(lines, strings.TrimPrefix(line, " "))
	}
	return lines
}

// canonicalTags maps per-language tag spellings to the shared tag set.
var canonicalTags = map[string]string{
	"param": "param", "arg": "param", "argument": "param", "tparam": "param",
	"return": "returns", "returns": "returns", "result": "returns",
	"throws": "throws", "throw": "throws", "exception": "throws",
	"deprecated": "deprecated",
	"see":        "see", "sa": "see", "seealso": "see",
	"example": "example", "brief": "summary", "since": "since", "note": "note",
}

var tagLineRe = regexp.MustCompile(`^[@\\](\w+)\s*(.*)$`)

// jsdocParamRe matches "@param {type} name description".
var jsdocParamRe = regexp.MustCompile(`^(?:\{([^}]*)\}\s+)?(\[?[\w.$]+\]?)\s*(.*)$`)

// parseTaggedDoc handles line-tag conventions: JSDoc and Doxygen ("@tag",
// "\tag") plus Go's untagged convention (the whole comment is the summary,
// with a "Deprecated:" paragraph marker).
func parseTaggedDoc(raw string, l lang.Language) *Documentation {
	doc := &Documentation{Raw: raw}
	lines := stripCommentMarkers(raw)

	var summary []string
	var tags []DocTag
	current := -1 // index into tags for continuation lines

	for _, line := range lines {
		if l == lang.Go && strings.HasPrefix(line, "Deprecated:") {
			tags = append(tags, DocTag{
				Tag:         "deprecated",
				Description: strings.TrimSpace(strings.TrimPrefix(line, "Deprecated:")),
			})
			current = len(tags) - 1
			continue
		}

		m := tagLineRe.FindStringSubmatch(line)
		if m == nil {
			if current >= 0 && line != "" {
				tags[current].Description = strings.TrimSpace(tags[current].Description + " " + line)
			} else if current < 0 {
				summary = append(summary, line)
			}
			continue
		}

		name := strings.ToLower(m[1])
		canonical, known := canonicalTags[name]
		if !known {
			continue // unknown tag: dropped, walk continues
		}
		tag := DocTag{Tag: canonical}
		rest := strings.TrimSpace(m[2])
		switch canonical {
		case "param":
			if pm := jsdocParamRe.FindStringSubmatch(rest); pm != nil {
				tag.Type = pm[1]
				tag.Name = strings.Trim(pm[2], "[]")
				tag.Description = strings.TrimSpace(pm[3])
			} else {
				tag.Description = rest
			}
		case "throws":
			fields := strings.SplitN(rest, " ", 2)
			if len(fields) > 0 && fields[0] != "" {
				tag.Type = fields[0]
			}
			if len(fields) > 1 {
				tag.Description = strings.TrimSpace(fields[1])
			}
		default:
			tag.Description = rest
		}
		if canonical == "summary" {
			summary = append(summary, tag.Description)
			current = -1
			continue
		}
		tags = append(tags, tag)
		current = len(tags) - 1
	}

	doc.Summary = strings.TrimSpace(strings.Join(summary, " "))
	doc.Tags = tags
	return doc
}

var (
	xmlSummaryRe   = regexp.MustCompile(`(?s)<summary>(.*?)</summary>`)
	xmlParamRe     = regexp.MustCompile(`(?s)<param\s+name="([^"]+)"\s*>(.*?)</param>`)
	xmlReturnsRe   = regexp.MustCompile(`(?s)<returns>(.*?)</returns>`)
	xmlExceptionRe = regexp.MustCompile(`(?s)<exception\s+cref="([^"]+)"\s*>(.*?)</exception>`)
	xmlExampleRe   = regexp.MustCompile(`(?s)<example>(.*?)</example>`)
	xmlSeeAlsoRe   = regexp.MustCompile(`<seealso\s+cref="([^"]+)"\s*/?>`)
)

// parseXMLDoc handles C# XML doc comments (/// <summary>...</summary>).
func parseXMLDoc(raw string) *Documentation {
	doc := &Documentation{Raw: raw}
	text := strings.Join(stripCommentMarkers(raw), "\n")

	if m := xmlSummaryRe.FindStringSubmatch(text); m != nil {
		doc.Summary = collapseWhitespace(m[1])
	} else {
		doc.Summary = collapseWhitespace(text)
	}
	for _, m := range xmlParamRe.FindAllStringSubmatch(text, -1) {
		doc.Tags = append(doc.Tags, DocTag{Tag: "param", Name: m[1], Description: collapseWhitespace(m[2])})
	}
	for _, m := range xmlReturnsRe.FindAllStringSubmatch(text, -1) {
		doc.Tags = append(doc.Tags, DocTag{Tag: "returns", Description: collapseWhitespace(m[1])})
	}
	for _, m := range xmlExceptionRe.FindAllStringSubmatch(text, -1) {
		doc.Tags = append(doc.Tags, DocTag{Tag: "throws", Type: m[1], Description: collapseWhitespace(m[2])})
	}
	for _, m := range xmlExampleRe.FindAllStringSubmatch(text, -1) {
		doc.Tags = append(doc.Tags, DocTag{Tag: "example", Description: collapseWhitespace(m[1])})
	}
	for _, m := range xmlSeeAlsoRe.FindAllStringSubmatch(text, -1) {
		doc.Tags = append(doc.Tags, DocTag{Tag: "see", Type: m[1]})
	}
	return doc
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
