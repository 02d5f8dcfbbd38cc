package lang

func init() {
	Register(&Spec{
		Language:           C,
		FileExtensions:     []string{".c", ".h"},
		FunctionNodeKinds:  []string{"function_definition"},
		TypeNodeKinds:      []string{"struct_specifier", "union_specifier", "enum_specifier", "type_definition"},
		FieldNodeKinds:     []string{"field_declaration"},
		ImportNodeKinds:    []string{"preproc_include"},
		CallNodeKinds:      []string{"call_expression"},
		BranchNodeKinds:    []string{"if_statement", "for_statement", "while_statement", "do_statement", "case_statement", "conditional_expression"},
		NestingNodeKinds:   []string{"if_statement", "for_statement", "while_statement", "do_statement", "switch_statement", "conditional_expression"},
		JumpNodeKinds:      []string{"goto_statement", "break_statement", "continue_statement"},
		BinaryExprKinds:    []string{"binary_expression"},
		ShortCircuitOps:    []string{"&&", "||"},
		LineCommentPrefixes: []string{"//"},
		BlockCommentStart:  "/*",
		BlockCommentEnd:    "*/",
		DocCommentPrefix:   "///",
	})
}
