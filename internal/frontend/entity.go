package frontend

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Kind is the closed set of entity kinds the analysis consumes.
type Kind int

const (
	// Unknown covers node types outside the closed set; the analysis
	// recurses through them generically.
	Unknown Kind = iota
	// TranslationUnit is the root of a parsed file.
	TranslationUnit
	// FunctionDecl is a function definition or prototype.
	FunctionDecl
	// VarDecl is a variable declarator.
	VarDecl
	// ParmDecl is a function parameter declaration.
	ParmDecl
	// CallExpr is a function call expression.
	CallExpr
	// IfStmt is an if statement.
	IfStmt
	// ForStmt is a for statement.
	ForStmt
	// WhileStmt is a while statement.
	WhileStmt
	// CompoundStmt is a braced statement block.
	CompoundStmt
	// DeclStmt is a declaration statement.
	DeclStmt
	// BinaryOperator is a binary expression, including plain assignment.
	BinaryOperator
	// UnaryOperator is a unary expression, including * and &.
	UnaryOperator
	// CompoundAssignOperator is an augmented assignment (+=, -=, ...).
	CompoundAssignOperator
	// CStyleCastExpr is a C-style cast.
	CStyleCastExpr
	// DeclRefExpr is a reference to a declared entity.
	DeclRefExpr
	// MemberRefExpr is a struct/union member access.
	MemberRefExpr
	// ArraySubscriptExpr is an array subscript.
	ArraySubscriptExpr
	// IntegerLiteral is a numeric or character literal.
	IntegerLiteral
	// StringLiteral is a string literal.
	StringLiteral
	// UnexposedExpr wraps expressions with no dedicated kind, such as
	// parenthesized expressions.
	UnexposedExpr
)

// String returns the kind's textual form.
func (k Kind) String() string {
	switch k {
	case TranslationUnit:
		return "TranslationUnit"
	case FunctionDecl:
		return "FunctionDecl"
	case VarDecl:
		return "VarDecl"
	case ParmDecl:
		return "ParmDecl"
	case CallExpr:
		return "CallExpr"
	case IfStmt:
		return "IfStmt"
	case ForStmt:
		return "ForStmt"
	case WhileStmt:
		return "WhileStmt"
	case CompoundStmt:
		return "CompoundStmt"
	case DeclStmt:
		return "DeclStmt"
	case BinaryOperator:
		return "BinaryOperator"
	case UnaryOperator:
		return "UnaryOperator"
	case CompoundAssignOperator:
		return "CompoundAssignOperator"
	case CStyleCastExpr:
		return "CStyleCastExpr"
	case DeclRefExpr:
		return "DeclRefExpr"
	case MemberRefExpr:
		return "MemberRefExpr"
	case ArraySubscriptExpr:
		return "ArraySubscriptExpr"
	case IntegerLiteral:
		return "IntegerLiteral"
	case StringLiteral:
		return "StringLiteral"
	case UnexposedExpr:
		return "UnexposedExpr"
	}
	return "Unknown"
}

// Location is a source position.
type Location struct {
	File   string
	Line   int
	Column int
}

// Entity is a closed-kind view over a parse tree node. The zero Entity
// is invalid; IsValid reports usability.
type Entity struct {
	unit *Unit
	node *sitter.Node
	kind Kind
	// decl is set for VarDecl entities synthesized from a declaration's
	// declarator; it carries the declared type.
	decl *sitter.Node
}

// IsValid reports whether the entity wraps a parse tree node.
func (e Entity) IsValid() bool {
	return e.unit != nil && e.node != nil
}

// Kind returns the entity's kind.
func (e Entity) Kind() Kind {
	return e.kind
}

// Location returns the entity's source position.
func (e Entity) Location() (Location, bool) {
	if !e.IsValid() {
		return Location{}, false
	}
	p := e.node.StartPoint()
	return Location{
		File:   e.unit.path,
		Line:   int(p.Row) + 1,
		Column: int(p.Column) + 1,
	}, true
}

// Name returns the entity's name, empty when it has none.
func (e Entity) Name() string {
	if !e.IsValid() {
		return ""
	}
	switch e.kind {
	case FunctionDecl:
		return e.unit.text(declaratorIdentifier(functionDeclarator(e.node)))
	case VarDecl:
		return e.unit.text(declaratorIdentifier(e.node))
	case ParmDecl:
		return e.unit.text(declaratorIdentifier(e.node.ChildByFieldName("declarator")))
	case DeclRefExpr:
		return e.unit.text(e.node)
	case MemberRefExpr:
		return e.unit.text(e.node.ChildByFieldName("field"))
	}
	return ""
}

// USR returns a unified symbol reference for function declarations,
// empty otherwise.
func (e Entity) USR() string {
	if e.kind != FunctionDecl {
		return ""
	}
	name := e.Name()
	if name == "" {
		return ""
	}
	return "c:@F@" + name
}

// TypeName returns the textual declared type for variable and parameter
// declarations and the target type of a C-style cast, empty otherwise.
func (e Entity) TypeName() string {
	if !e.IsValid() {
		return ""
	}
	switch e.kind {
	case VarDecl:
		return declaredType(e.unit, e.decl, e.node)
	case ParmDecl:
		return declaredType(e.unit, e.node, e.node.ChildByFieldName("declarator"))
	case CStyleCastExpr:
		return e.unit.text(e.node.ChildByFieldName("type"))
	}
	return ""
}

// ResultTypeName returns the textual return type of a function
// declaration, "void" when the front-end cannot supply one.
func (e Entity) ResultTypeName() string {
	if e.kind != FunctionDecl {
		return ""
	}
	if t := e.unit.text(e.node.ChildByFieldName("type")); t != "" {
		return t
	}
	return "void"
}

// OperatorText returns the operator token of a unary, binary, or
// assignment expression.
func (e Entity) OperatorText() string {
	if !e.IsValid() {
		return ""
	}
	switch e.node.Type() {
	case "assignment_expression", "binary_expression", "unary_expression",
		"pointer_expression", "update_expression":
		if op := e.node.ChildByFieldName("operator"); op != nil {
			return e.unit.text(op)
		}
	}
	return ""
}

// Referenced resolves the entity a call expression invokes, when the
// callee is a plain identifier naming a function known to the unit.
func (e Entity) Referenced() (Entity, bool) {
	if !e.IsValid() || e.kind != CallExpr {
		return Entity{}, false
	}
	fn := e.node.ChildByFieldName("function")
	if fn == nil || fn.Type() != "identifier" {
		return Entity{}, false
	}
	return e.unit.lookupFunction(e.unit.text(fn))
}

// Arguments returns a call expression's arguments, or a function
// declaration's parameters.
func (e Entity) Arguments() []Entity {
	if !e.IsValid() {
		return nil
	}
	switch e.kind {
	case CallExpr:
		args := e.node.ChildByFieldName("arguments")
		if args == nil {
			return nil
		}
		var out []Entity
		for i := 0; i < int(args.NamedChildCount()); i++ {
			child := args.NamedChild(i)
			if child.Type() == "comment" {
				continue
			}
			out = append(out, e.unit.entityFor(child))
		}
		return out
	case FunctionDecl:
		return e.parameters()
	}
	return nil
}

// parameters returns ParmDecl entities for a function declaration.
func (e Entity) parameters() []Entity {
	decl := functionDeclarator(e.node)
	if decl == nil {
		return nil
	}
	params := decl.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}
	var out []Entity
	for i := 0; i < int(params.NamedChildCount()); i++ {
		child := params.NamedChild(i)
		if child.Type() != "parameter_declaration" {
			continue
		}
		// Unnamed parameters (e.g. prototypes) carry no declarator.
		if declaratorIdentifier(child.ChildByFieldName("declarator")) == nil {
			continue
		}
		out = append(out, Entity{unit: e.unit, node: child, kind: ParmDecl})
	}
	return out
}

// Children returns the entity's ordered semantic children. Expression
// statements, parentheses in conditions, and else clauses are unwrapped
// so that statement shapes match what the analysis expects.
func (e Entity) Children() []Entity {
	if !e.IsValid() {
		return nil
	}
	switch e.kind {
	case FunctionDecl:
		var out []Entity
		out = append(out, e.parameters()...)
		if body := e.node.ChildByFieldName("body"); body != nil {
			out = append(out, e.unit.entityFor(body))
		}
		return out
	case DeclStmt:
		return e.unit.declarators(e.node)
	case VarDecl:
		if e.node.Type() == "init_declarator" {
			if value := e.node.ChildByFieldName("value"); value != nil {
				return []Entity{e.unit.entityFor(value)}
			}
		}
		return nil
	case CallExpr:
		var out []Entity
		if fn := e.node.ChildByFieldName("function"); fn != nil {
			out = append(out, e.unit.entityFor(fn))
		}
		out = append(out, e.Arguments()...)
		return out
	case IfStmt:
		var out []Entity
		if cond := unwrapParens(e.node.ChildByFieldName("condition")); cond != nil {
			out = append(out, e.unit.entityFor(cond))
		}
		if cons := e.node.ChildByFieldName("consequence"); cons != nil {
			out = append(out, e.unit.entityFor(cons))
		}
		if alt := unwrapElse(e.node.ChildByFieldName("alternative")); alt != nil {
			out = append(out, e.unit.entityFor(alt))
		}
		return out
	case WhileStmt:
		var out []Entity
		if cond := unwrapParens(e.node.ChildByFieldName("condition")); cond != nil {
			out = append(out, e.unit.entityFor(cond))
		}
		if body := e.node.ChildByFieldName("body"); body != nil {
			out = append(out, e.unit.entityFor(body))
		}
		return out
	case ForStmt:
		var out []Entity
		for _, field := range []string{"initializer", "condition", "update", "body"} {
			if child := unwrapParens(e.node.ChildByFieldName(field)); child != nil {
				out = append(out, e.unit.entityFor(child))
			}
		}
		return out
	case BinaryOperator, CompoundAssignOperator:
		var out []Entity
		for _, field := range []string{"left", "right"} {
			if child := e.node.ChildByFieldName(field); child != nil {
				out = append(out, e.unit.entityFor(child))
			}
		}
		return out
	case UnaryOperator:
		if arg := e.node.ChildByFieldName("argument"); arg != nil {
			return []Entity{e.unit.entityFor(arg)}
		}
		return nil
	case CStyleCastExpr:
		if value := e.node.ChildByFieldName("value"); value != nil {
			return []Entity{e.unit.entityFor(value)}
		}
		return nil
	case MemberRefExpr:
		if arg := e.node.ChildByFieldName("argument"); arg != nil {
			return []Entity{e.unit.entityFor(arg)}
		}
		return nil
	case ArraySubscriptExpr:
		var out []Entity
		for _, field := range []string{"argument", "index"} {
			if child := e.node.ChildByFieldName(field); child != nil {
				out = append(out, e.unit.entityFor(child))
			}
		}
		return out
	case UnexposedExpr:
		if inner := unwrapParens(e.node); inner != nil && inner != e.node {
			return []Entity{e.unit.entityFor(inner)}
		}
	case DeclRefExpr, IntegerLiteral, StringLiteral:
		return nil
	}
	// Generic enumeration for TranslationUnit, CompoundStmt, and
	// unclassified nodes.
	var out []Entity
	for i := 0; i < int(e.node.NamedChildCount()); i++ {
		child := e.node.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		out = append(out, e.unit.entityFor(child))
	}
	return out
}

// entityFor wraps a parse tree node, unwrapping expression statements.
func (u *Unit) entityFor(node *sitter.Node) Entity {
	for node != nil && node.Type() == "expression_statement" {
		node = node.NamedChild(0)
	}
	if node == nil {
		return Entity{}
	}
	return Entity{unit: u, node: node, kind: u.kindOf(node)}
}

// declarators synthesizes VarDecl entities for each declarator of a
// declaration.
func (u *Unit) declarators(decl *sitter.Node) []Entity {
	var out []Entity
	for i := 0; i < int(decl.ChildCount()); i++ {
		if decl.FieldNameForChild(i) != "declarator" {
			continue
		}
		child := decl.Child(i)
		if declaratorIdentifier(child) == nil {
			continue
		}
		out = append(out, Entity{unit: u, node: child, kind: VarDecl, decl: decl})
	}
	return out
}

// kindOf maps tree-sitter node types onto the closed kind set.
func (u *Unit) kindOf(node *sitter.Node) Kind {
	switch node.Type() {
	case "translation_unit":
		return TranslationUnit
	case "function_definition":
		return FunctionDecl
	case "declaration":
		if isFunctionPrototype(node) {
			return FunctionDecl
		}
		return DeclStmt
	case "call_expression":
		return CallExpr
	case "if_statement":
		return IfStmt
	case "for_statement":
		return ForStmt
	case "while_statement":
		return WhileStmt
	case "compound_statement":
		return CompoundStmt
	case "assignment_expression":
		if op := node.ChildByFieldName("operator"); op != nil && u.text(op) != "=" {
			return CompoundAssignOperator
		}
		return BinaryOperator
	case "binary_expression":
		return BinaryOperator
	case "unary_expression", "pointer_expression", "update_expression":
		return UnaryOperator
	case "cast_expression":
		return CStyleCastExpr
	case "identifier":
		return DeclRefExpr
	case "field_expression":
		return MemberRefExpr
	case "subscript_expression":
		return ArraySubscriptExpr
	case "number_literal", "char_literal":
		return IntegerLiteral
	case "string_literal", "concatenated_string":
		return StringLiteral
	case "parenthesized_expression":
		return UnexposedExpr
	}
	return Unknown
}

// unwrapParens strips parenthesized_expression wrappers.
func unwrapParens(node *sitter.Node) *sitter.Node {
	for node != nil && node.Type() == "parenthesized_expression" {
		node = node.NamedChild(0)
	}
	return node
}

// unwrapElse strips an else_clause wrapper, returning the else body.
func unwrapElse(node *sitter.Node) *sitter.Node {
	if node != nil && node.Type() == "else_clause" {
		return node.NamedChild(0)
	}
	return node
}

// functionDeclarator returns the function_declarator of a function
// definition or prototype declaration.
func functionDeclarator(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	switch node.Type() {
	case "function_definition":
		return unwrapToFunctionDeclarator(node.ChildByFieldName("declarator"))
	case "declaration":
		return unwrapToFunctionDeclarator(firstDeclarator(node))
	}
	return nil
}

// unwrapToFunctionDeclarator descends pointer and parenthesized
// declarators to the function_declarator, if any.
func unwrapToFunctionDeclarator(node *sitter.Node) *sitter.Node {
	for node != nil {
		switch node.Type() {
		case "function_declarator":
			return node
		case "pointer_declarator", "init_declarator":
			node = node.ChildByFieldName("declarator")
		case "parenthesized_declarator":
			// No declarator field; the inner declarator is the only
			// named child.
			node = node.NamedChild(0)
		default:
			return nil
		}
	}
	return nil
}

// firstDeclarator returns a declaration's first declarator child.
func firstDeclarator(decl *sitter.Node) *sitter.Node {
	for i := 0; i < int(decl.ChildCount()); i++ {
		if decl.FieldNameForChild(i) == "declarator" {
			return decl.Child(i)
		}
	}
	return nil
}

// isFunctionPrototype reports whether a declaration declares a function
// rather than variables. A function pointer declarator like (*fp)(void)
// wraps its name in parentheses and is a variable, not a prototype.
func isFunctionPrototype(decl *sitter.Node) bool {
	fd := unwrapToFunctionDeclarator(firstDeclarator(decl))
	if fd == nil {
		return false
	}
	inner := fd.ChildByFieldName("declarator")
	return inner != nil && inner.Type() == "identifier"
}

// declaratorIdentifier returns the identifier naming a declarator,
// descending through pointer, array, init, function, and parenthesized
// declarators.
func declaratorIdentifier(node *sitter.Node) *sitter.Node {
	for node != nil {
		switch node.Type() {
		case "identifier", "field_identifier":
			return node
		case "pointer_declarator", "array_declarator", "init_declarator",
			"function_declarator":
			node = node.ChildByFieldName("declarator")
		case "parenthesized_declarator":
			node = node.NamedChild(0)
		default:
			return nil
		}
	}
	return nil
}

// declaredType renders the declared type of a declarator as text, in
// the display form the analysis classifies on: "int", "int *",
// "char *", "char [8]".
func declaredType(u *Unit, decl, declarator *sitter.Node) string {
	base := ""
	if decl != nil {
		base = u.text(decl.ChildByFieldName("type"))
	}
	stars := 0
	var arrays []string
	node := declarator
	for node != nil {
		switch node.Type() {
		case "pointer_declarator":
			stars++
			node = node.ChildByFieldName("declarator")
		case "array_declarator":
			size := u.text(node.ChildByFieldName("size"))
			arrays = append(arrays, "["+size+"]")
			node = node.ChildByFieldName("declarator")
		case "init_declarator", "function_declarator":
			node = node.ChildByFieldName("declarator")
		case "parenthesized_declarator":
			node = node.NamedChild(0)
		default:
			node = nil
		}
	}

	out := base
	if stars > 0 {
		out += " " + strings.Repeat("*", stars)
	}
	for _, a := range arrays {
		out += " " + a
	}
	return out
}
