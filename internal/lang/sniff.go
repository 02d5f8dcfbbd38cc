package lang

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Detect resolves the language for a file, using the extension registry first
// and content sniffing for ambiguous extensions. The content argument may be
// nil, in which case only path heuristics apply.
func Detect(path string, content []byte) (Language, bool) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".xml":
		if sniffTemplateXML(path, content) {
			return PageTemplate, true
		}
		return "", false
	case ".yaml", ".yml":
		if sniffFlowYAML(path, content) {
			return FlowDef, true
		}
		return "", false
	}

	return LanguageForExtension(ext)
}

// sniffTemplateXML reports whether an .xml file is a page-template descriptor
// rather than unrelated markup. Path hints win over content hints.
func sniffTemplateXML(path string, content []byte) bool {
	slashed := filepath.ToSlash(strings.ToLower(path))
	for _, hint := range []string{"/templates/", "/pages/", "/views/"} {
		if strings.Contains(slashed, hint) {
			return true
		}
	}
	if content == nil {
		return false
	}
	head := content
	if len(head) > 2048 {
		head = head[:2048]
	}
	return bytes.Contains(head, []byte("<template")) || bytes.Contains(head, []byte("<page"))
}

// sniffFlowYAML reports whether a YAML file is a flow definition.
// Flow files are named *.flow.yaml/*.flow.yml or declare a top-level
// "flow:" or "steps:" key.
func sniffFlowYAML(path string, content []byte) bool {
	base := strings.ToLower(filepath.Base(path))
	if strings.HasSuffix(base, ".flow.yaml") || strings.HasSuffix(base, ".flow.yml") {
		return true
	}
	if content == nil {
		return false
	}
	head := content
	if len(head) > 2048 {
		head = head[:2048]
	}
	for _, line := range bytes.Split(head, []byte("\n")) {
		if bytes.HasPrefix(line, []byte("flow:")) || bytes.HasPrefix(line, []byte("steps:")) {
			return true
		}
	}
	return false
}
