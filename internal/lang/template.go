package lang

func init() {
	Register(&Spec{
		Language:            PageTemplate,
		FileExtensions:      []string{".html", ".htm"},
		LineCommentPrefixes: nil,
		BlockCommentStart:   "<!--",
		BlockCommentEnd:     "-->",
	})
}
