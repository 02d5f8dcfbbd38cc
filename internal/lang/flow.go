package lang

func init() {
	Register(&Spec{
		Language:            FlowDef,
		FileExtensions:      []string{".flow"},
		LineCommentPrefixes: []string{"#"},
	})
}
