package types

// OpClass groups operators that share operand and result rules.
type OpClass uint8

const (
	OpInvalid    OpClass = iota
	OpArithmetic         // + - * / %
	OpRelational         // < <= >= >
	OpEquality           // == !=
	OpLogical            // && ||
)

func (c OpClass) String() string {
	switch c {
	case OpArithmetic:
		return "arithmetic"
	case OpRelational:
		return "relational"
	case OpEquality:
		return "equality"
	case OpLogical:
		return "logical"
	default:
		return "invalid"
	}
}

// BinarySpec lists the operand type and result type of a binary operator.
// Operand == Unknown means "both sides of the same type".
type BinarySpec struct {
	Class   OpClass
	Operand Type
	Result  Type
}

var binarySpecTable = map[string]BinarySpec{
	"+":  {Class: OpArithmetic, Operand: Int, Result: Int},
	"-":  {Class: OpArithmetic, Operand: Int, Result: Int},
	"*":  {Class: OpArithmetic, Operand: Int, Result: Int},
	"/":  {Class: OpArithmetic, Operand: Int, Result: Int},
	"%":  {Class: OpArithmetic, Operand: Int, Result: Int},
	"<":  {Class: OpRelational, Operand: Int, Result: Bool},
	"<=": {Class: OpRelational, Operand: Int, Result: Bool},
	">=": {Class: OpRelational, Operand: Int, Result: Bool},
	">":  {Class: OpRelational, Operand: Int, Result: Bool},
	"==": {Class: OpEquality, Operand: Unknown, Result: Bool},
	"!=": {Class: OpEquality, Operand: Unknown, Result: Bool},
	"&&": {Class: OpLogical, Operand: Bool, Result: Bool},
	"||": {Class: OpLogical, Operand: Bool, Result: Bool},
}

// BinarySpecFor returns the rule for op. Operators missing from the table
// are treated as logical ones: boolean operands, boolean result.
func BinarySpecFor(op string) BinarySpec {
	if spec, ok := binarySpecTable[op]; ok {
		return spec
	}
	return BinarySpec{Class: OpLogical, Operand: Bool, Result: Bool}
}

// UnarySpec describes operand expectations for unary operators.
type UnarySpec struct {
	Operand Type
	Result  Type
}

var unarySpecTable = map[string]UnarySpec{
	"-": {Operand: Int, Result: Int},
	"!": {Operand: Bool, Result: Bool},
}

// UnarySpecFor returns the rule for a unary operator.
func UnarySpecFor(op string) (UnarySpec, bool) {
	spec, ok := unarySpecTable[op]
	return spec, ok
}

// IsCompoundAssign reports whether op is an assignment other than plain "=".
func IsCompoundAssign(op string) bool {
	return op != "" && op != "="
}

// IsBinaryOp reports whether op is one of the language's binary operators.
func IsBinaryOp(op string) bool {
	_, ok := binarySpecTable[op]
	return ok
}

// IsAssignOp reports plain and compound assignment operators.
func IsAssignOp(op string) bool {
	return op == "=" || op == "+=" || op == "-="
}
