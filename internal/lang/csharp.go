package lang

func init() {
	Register(&Spec{
		Language:       CSharp,
		FileExtensions: []string{".cs"},
		FunctionNodeKinds: []string{
			"method_declaration", "constructor_declaration", "destructor_declaration",
			"operator_declaration", "local_function_statement",
		},
		TypeNodeKinds: []string{
			"class_declaration", "interface_declaration", "struct_declaration",
			"enum_declaration", "record_declaration",
		},
		NamespaceNodeKinds: []string{"namespace_declaration", "file_scoped_namespace_declaration"},
		FieldNodeKinds:     []string{"field_declaration", "property_declaration", "event_field_declaration"},
		ImportNodeKinds:    []string{"using_directive"},
		CallNodeKinds:      []string{"invocation_expression"},
		BranchNodeKinds: []string{
			"if_statement", "for_statement", "for_each_statement", "while_statement",
			"do_statement", "switch_section", "switch_expression_arm",
			"catch_clause", "conditional_expression",
		},
		NestingNodeKinds: []string{
			"if_statement", "for_statement", "for_each_statement", "while_statement",
			"do_statement", "switch_statement", "switch_expression",
			"catch_clause", "conditional_expression",
		},
		AnonymousFnKinds:    []string{"lambda_expression", "anonymous_method_expression"},
		JumpNodeKinds:       []string{"goto_statement", "break_statement", "continue_statement"},
		BinaryExprKinds:     []string{"binary_expression"},
		ShortCircuitOps:     []string{"&&", "||", "??"},
		LineCommentPrefixes: []string{"//"},
		BlockCommentStart:   "/*",
		BlockCommentEnd:     "*/",
		DocCommentPrefix:    "///",
	})
}
