package lang

func init() {
	Register(&Spec{
		Language:           Go,
		FileExtensions:     []string{".go"},
		FunctionNodeKinds:  []string{"function_declaration", "method_declaration"},
		TypeNodeKinds:      []string{"type_spec"},
		NamespaceNodeKinds: []string{"package_clause"},
		FieldNodeKinds:     []string{"field_declaration"},
		ImportNodeKinds:    []string{"import_declaration"},
		CallNodeKinds:      []string{"call_expression"},
		BranchNodeKinds: []string{
			"if_statement", "for_statement",
			"expression_case", "type_case", "communication_case",
		},
		NestingNodeKinds: []string{
			"if_statement", "for_statement",
			"expression_switch_statement", "type_switch_statement", "select_statement",
		},
		AnonymousFnKinds:    []string{"func_literal"},
		JumpNodeKinds:       []string{"goto_statement", "break_statement", "continue_statement"},
		BinaryExprKinds:     []string{"binary_expression"},
		ShortCircuitOps:     []string{"&&", "||"},
		LineCommentPrefixes: []string{"//"},
		BlockCommentStart:   "/*",
		BlockCommentEnd:     "*/",
	})
}
