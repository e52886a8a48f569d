package ast

import (
	"fmt"

	"github.com/phobologic/mcheck/internal/token"
)

// Type identifies what a node represents. Values below token.NumKinds are
// token leaves; the remaining values are grammar rules.
type Type uint16

// TokenType returns the node type of leaves holding tokens of kind k.
func TokenType(k token.Kind) Type { return Type(k) }

// IsToken reports whether t is a token leaf type.
func (t Type) IsToken() bool { return t < Type(token.NumKinds) }

// Grammar rules.
const (
	FileInput Type = Type(token.NumKinds) + iota
	Statement
	StmtList
	SimpleStmt
	CompoundStmt
	Suite

	PrintStmt
	ExecStmt
	ExpressionStmt
	Augassign
	AssertStmt
	PassStmt
	DelStmt
	ReturnStmt
	YieldStmt
	RaiseStmt
	BreakStmt
	ContinueStmt
	ImportStmt
	ImportName
	ImportFrom
	ImportAsName
	DottedAsName
	ImportAsNames
	DottedAsNames
	GlobalStmt
	NonlocalStmt

	IfStmt
	WhileStmt
	ForStmt
	TryStmt
	ExceptClause
	WithStmt
	WithItem
	Funcdef
	Decorators
	Decorator
	DottedName
	Funcname
	Classdef
	Classname

	Test
	TestNocond
	Lambdef
	LambdefNocond
	OrTest
	AndTest
	NotTest
	Comparison
	CompOperator
	StarExpr
	Expr
	OrExpr
	XorExpr
	AndExpr
	ShiftExpr
	AExpr
	MExpr
	Factor
	Power
	Atom
	TestlistComp
	Trailer
	Subscriptlist
	Subscript
	Sliceop
	Exprlist
	Testlist
	TestlistStarExpr
	Dictorsetmaker
	Arglist
	Argument
	CompIter
	CompFor
	CompIf
	YieldExpr
	Name
	Varargslist
	Fpdef
	Fplist

	lastRule
)

// NumTypes is the number of node types.
const NumTypes = int(lastRule)

var ruleNames = map[Type]string{
	FileInput:        "FILE_INPUT",
	Statement:        "STATEMENT",
	StmtList:         "STMT_LIST",
	SimpleStmt:       "SIMPLE_STMT",
	CompoundStmt:     "COMPOUND_STMT",
	Suite:            "SUITE",
	PrintStmt:        "PRINT_STMT",
	ExecStmt:         "EXEC_STMT",
	ExpressionStmt:   "EXPRESSION_STMT",
	Augassign:        "AUGASSIGN",
	AssertStmt:       "ASSERT_STMT",
	PassStmt:         "PASS_STMT",
	DelStmt:          "DEL_STMT",
	ReturnStmt:       "RETURN_STMT",
	YieldStmt:        "YIELD_STMT",
	RaiseStmt:        "RAISE_STMT",
	BreakStmt:        "BREAK_STMT",
	ContinueStmt:     "CONTINUE_STMT",
	ImportStmt:       "IMPORT_STMT",
	ImportName:       "IMPORT_NAME",
	ImportFrom:       "IMPORT_FROM",
	ImportAsName:     "IMPORT_AS_NAME",
	DottedAsName:     "DOTTED_AS_NAME",
	ImportAsNames:    "IMPORT_AS_NAMES",
	DottedAsNames:    "DOTTED_AS_NAMES",
	GlobalStmt:       "GLOBAL_STMT",
	NonlocalStmt:     "NONLOCAL_STMT",
	IfStmt:           "IF_STMT",
	WhileStmt:        "WHILE_STMT",
	ForStmt:          "FOR_STMT",
	TryStmt:          "TRY_STMT",
	ExceptClause:     "EXCEPT_CLAUSE",
	WithStmt:         "WITH_STMT",
	WithItem:         "WITH_ITEM",
	Funcdef:          "FUNCDEF",
	Decorators:       "DECORATORS",
	Decorator:        "DECORATOR",
	DottedName:       "DOTTED_NAME",
	Funcname:         "FUNCNAME",
	Classdef:         "CLASSDEF",
	Classname:        "CLASSNAME",
	Test:             "TEST",
	TestNocond:       "TEST_NOCOND",
	Lambdef:          "LAMBDEF",
	LambdefNocond:    "LAMBDEF_NOCOND",
	OrTest:           "OR_TEST",
	AndTest:          "AND_TEST",
	NotTest:          "NOT_TEST",
	Comparison:       "COMPARISON",
	CompOperator:     "COMP_OPERATOR",
	StarExpr:         "STAR_EXPR",
	Expr:             "EXPR",
	OrExpr:           "OR_EXPR",
	XorExpr:          "XOR_EXPR",
	AndExpr:          "AND_EXPR",
	ShiftExpr:        "SHIFT_EXPR",
	AExpr:            "A_EXPR",
	MExpr:            "M_EXPR",
	Factor:           "FACTOR",
	Power:            "POWER",
	Atom:             "ATOM",
	TestlistComp:     "TESTLIST_COMP",
	Trailer:          "TRAILER",
	Subscriptlist:    "SUBSCRIPTLIST",
	Subscript:        "SUBSCRIPT",
	Sliceop:          "SLICEOP",
	Exprlist:         "EXPRLIST",
	Testlist:         "TESTLIST",
	TestlistStarExpr: "TESTLIST_STAR_EXPR",
	Dictorsetmaker:   "DICTORSETMAKER",
	Arglist:          "ARGLIST",
	Argument:         "ARGUMENT",
	CompIter:         "COMP_ITER",
	CompFor:          "COMP_FOR",
	CompIf:           "COMP_IF",
	YieldExpr:        "YIELD_EXPR",
	Name:             "NAME",
	Varargslist:      "VARARGSLIST",
	Fpdef:            "FPDEF",
	Fplist:           "FPLIST",
}

func (t Type) String() string {
	if t.IsToken() {
		return token.Kind(t).String()
	}
	if name, ok := ruleNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", t)
}
