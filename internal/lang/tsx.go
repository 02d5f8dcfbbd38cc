package lang

func init() {
	Register(&Spec{
		Language:       TSX,
		FileExtensions: []string{".tsx"},
		SharedProject:  true,
		FunctionNodeKinds: []string{
			"function_declaration", "generator_function_declaration", "method_definition",
		},
		TypeNodeKinds: []string{
			"class_declaration", "abstract_class_declaration",
			"interface_declaration", "enum_declaration", "type_alias_declaration",
		},
		FieldNodeKinds:  []string{"public_field_definition", "property_signature"},
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
