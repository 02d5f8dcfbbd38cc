package lang

func init() {
	Register(&Spec{
		Language:       JavaScript,
		FileExtensions: []string{".js", ".mjs", ".cjs", ".jsx"},
		SharedProject:  true,
		FunctionNodeKinds: []string{
			"function_declaration", "generator_function_declaration", "method_definition",
		},
		TypeNodeKinds:   []string{"class_declaration"},
		FieldNodeKinds:  []string{"field_definition"},
		ImportNodeKinds: []string{"import_statement"},
		CallNodeKinds:   []string{"call_expression"},
		BranchNodeKinds: []string{
			"if_statement", "for_statement", "for_in_statement", "while_statement",
			"do_statement", "switch_case", "catch_clause", "ternary_expression",
		},
		NestingNodeKinds: []string{
			"if_statement", "for_statement", "for_in_statement", "while_statement",
			"do_statement", "switch_statement", "catch_clause", "ternary_expression",
		},
		AnonymousFnKinds:    []string{"arrow_function", "function_expression"},
		JumpNodeKinds:       []string{"break_statement", "continue_statement"},
		BinaryExprKinds:     []string{"binary_expression"},
		ShortCircuitOps:     []string{"&&", "||", "??"},
		LineCommentPrefixes: []string{"//"},
		BlockCommentStart:   "/*",
		BlockCommentEnd:     "*/",
	})
}
