package ast

import "fmt"

// Category selects which payload a node carries.
type Category uint16

const (
	CategoryPlain Category = iota << categoryShift
	CategoryDecl
	CategoryRef
	CategoryOp
)

const (
	categoryShift = 8
	categoryMask  = 0xff00
)

func (c Category) String() string {
	switch c {
	case CategoryPlain:
		return "plain"
	case CategoryDecl:
		return "declaration"
	case CategoryRef:
		return "reference"
	case CategoryOp:
		return "operation"
	default:
		return fmt.Sprintf("Category(%#x)", uint16(c))
	}
}

// Kind packs a Category in the high byte and the specific kind in the low one.
type Kind uint16

const (
	KindInvalid Kind = 0

	// декларации
	KindClassDecl  = Kind(CategoryDecl) | 1
	KindFieldDecl  = Kind(CategoryDecl) | 2
	KindMethodDecl = Kind(CategoryDecl) | 3
	KindVarDecl    = Kind(CategoryDecl) | 4
	KindParamDecl  = Kind(CategoryDecl) | 5

	// ссылки и вызовы
	KindLocation    = Kind(CategoryRef) | 1
	KindMethodCall  = Kind(CategoryRef) | 2
	KindLibraryCall = Kind(CategoryRef) | 3

	// операции
	KindUnary  = Kind(CategoryOp) | 1
	KindBinary = Kind(CategoryOp) | 2
	KindAssign = Kind(CategoryOp) | 3

	KindBlock     = Kind(CategoryPlain) | 1
	KindIf        = Kind(CategoryPlain) | 2
	KindFor       = Kind(CategoryPlain) | 3
	KindWhile     = Kind(CategoryPlain) | 4
	KindReturn    = Kind(CategoryPlain) | 5
	KindBreak     = Kind(CategoryPlain) | 6
	KindContinue  = Kind(CategoryPlain) | 7
	KindIntLit    = Kind(CategoryPlain) | 8
	KindBoolLit   = Kind(CategoryPlain) | 9
	KindCharLit   = Kind(CategoryPlain) | 10
	KindStringLit = Kind(CategoryPlain) | 11
)

// Category extracts the category bits.
func (k Kind) Category() Category {
	return Category(uint16(k) & categoryMask)
}

func (k Kind) IsDecl() bool { return k != KindInvalid && k.Category() == CategoryDecl }
func (k Kind) IsRef() bool  { return k.Category() == CategoryRef }
func (k Kind) IsOp() bool   { return k.Category() == CategoryOp }

// IsLiteral reports whether the kind carries a literal Value.
func (k Kind) IsLiteral() bool {
	switch k {
	case KindIntLit, KindBoolLit, KindCharLit, KindStringLit:
		return true
	}
	return false
}

// IsCall reports method and library calls.
func (k Kind) IsCall() bool {
	return k == KindMethodCall || k == KindLibraryCall
}

// IsExpr covers every kind whose node gets a computed type: references,
// calls, operations, literals and return statements.
func (k Kind) IsExpr() bool {
	return k.IsRef() || k.IsOp() || k.IsLiteral() || k == KindReturn
}

var kindNames = map[Kind]string{
	KindClassDecl:   "class",
	KindFieldDecl:   "field",
	KindMethodDecl:  "method",
	KindVarDecl:     "var",
	KindParamDecl:   "param",
	KindLocation:    "location",
	KindMethodCall:  "call",
	KindLibraryCall: "libcall",
	KindUnary:       "unary",
	KindBinary:      "binary",
	KindAssign:      "assign",
	KindBlock:       "block",
	KindIf:          "if",
	KindFor:         "for",
	KindWhile:       "while",
	KindReturn:      "return",
	KindBreak:       "break",
	KindContinue:    "continue",
	KindIntLit:      "int",
	KindBoolLit:     "bool",
	KindCharLit:     "char",
	KindStringLit:   "string",
}

var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

// Name is the short spelling used by tree documents.
func (k Kind) Name() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

func (k Kind) String() string {
	switch k {
	case KindClassDecl:
		return "ClassDecl"
	case KindFieldDecl:
		return "FieldDecl"
	case KindMethodDecl:
		return "MethodDecl"
	case KindVarDecl:
		return "VarDecl"
	case KindParamDecl:
		return "ParamDecl"
	case KindLocation:
		return "Location"
	case KindMethodCall:
		return "MethodCall"
	case KindLibraryCall:
		return "LibraryCall"
	case KindUnary:
		return "Unary"
	case KindBinary:
		return "Binary"
	case KindAssign:
		return "Assign"
	case KindBlock:
		return "Block"
	case KindIf:
		return "If"
	case KindFor:
		return "For"
	case KindWhile:
		return "While"
	case KindReturn:
		return "Return"
	case KindBreak:
		return "Break"
	case KindContinue:
		return "Continue"
	case KindIntLit:
		return "IntLit"
	case KindBoolLit:
		return "BoolLit"
	case KindCharLit:
		return "CharLit"
	case KindStringLit:
		return "StringLit"
	default:
		return fmt.Sprintf("Kind(%#x)", uint16(k))
	}
}

// ParseKind maps a short spelling back to a Kind.
func ParseKind(name string) (Kind, error) {
	if k, ok := kindByName[name]; ok {
		return k, nil
	}
	return KindInvalid, fmt.Errorf("unknown node kind %q", name)
}
