package lang

func init() {
	Register(&Spec{
		Language:          CPP,
		FileExtensions:    []string{".cpp", ".cc", ".cxx", ".hpp", ".hh", ".hxx"},
		FunctionNodeKinds: []string{"function_definition"},
		TypeNodeKinds: []string{
			"class_specifier", "struct_specifier", "union_specifier",
			"enum_specifier", "type_definition", "alias_declaration",
		},
		NamespaceNodeKinds: []string{"namespace_definition"},
		FieldNodeKinds:     []string{"field_declaration"},
		ImportNodeKinds:    []string{"preproc_include"},
		CallNodeKinds:      []string{"call_expression"},
		BranchNodeKinds: []string{
			"if_statement", "for_statement", "for_range_loop", "while_statement",
			"do_statement", "case_statement", "catch_clause", "conditional_expression",
		},
		NestingNodeKinds: []string{
			"if_statement", "for_statement", "for_range_loop", "while_statement",
			"do_statement", "switch_statement", "catch_clause", "conditional_expression",
		},
		AnonymousFnKinds:    []string{"lambda_expression"},
		JumpNodeKinds:       []string{"goto_statement", "break_statement", "continue_statement"},
		BinaryExprKinds:     []string{"binary_expression"},
		ShortCircuitOps:     []string{"&&", "||"},
		LineCommentPrefixes: []string{"//"},
		BlockCommentStart:   "/*",
		BlockCommentEnd:     "*/",
		DocCommentPrefix:    "///",
	})
}
