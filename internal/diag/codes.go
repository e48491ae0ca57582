package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Семантические
	SemaInfo                  Code = 3000
	SemaUndefinedSymbol       Code = 3001
	SemaDuplicateDeclaration  Code = 3002
	SemaAssignTypeMismatch    Code = 3003
	SemaCompoundAssignNotInt  Code = 3004
	SemaUnaryMinusNotInt      Code = 3005
	SemaNotOperatorNotBool    Code = 3006
	SemaLeftOperandWrongType  Code = 3007
	SemaRightOperandWrongType Code = 3008
	SemaReturnTypeMismatch    Code = 3009
	SemaArrayAccessOnNonArray Code = 3010
	SemaMissingArrayIndex     Code = 3011
	SemaArrayIndexNotInt      Code = 3012
	SemaInvalidArraySize      Code = 3013
	SemaExpectedBoolean       Code = 3014
	SemaExpectedIntLoopCond   Code = 3015
	SemaUndefinedMethod       Code = 3016
	SemaArityMismatch         Code = 3017
	SemaParamTypeMismatch     Code = 3018
	SemaMissingMainMethod     Code = 3019

	// I/O
	IOLoadFileError Code = 4001
	IODecodeError   Code = 4002
	IOInternalError Code = 4003

	// Наблюдаемость
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:               "Unknown error",
		SemaInfo:                  "Semantic information",
		SemaUndefinedSymbol:       "Undefined symbol",
		SemaDuplicateDeclaration:  "Duplicate declaration",
		SemaAssignTypeMismatch:    "Assignment type mismatch",
		SemaCompoundAssignNotInt:  "Compound assignment requires int operands",
		SemaUnaryMinusNotInt:      "Unary minus requires an int operand",
		SemaNotOperatorNotBool:    "Logical not requires a boolean operand",
		SemaLeftOperandWrongType:  "Left operand has the wrong type",
		SemaRightOperandWrongType: "Right operand has the wrong type",
		SemaReturnTypeMismatch:    "Return type mismatch",
		SemaArrayAccessOnNonArray: "Subscript on a non-array",
		SemaMissingArrayIndex:     "Array used without an index",
		SemaArrayIndexNotInt:      "Array index must be int",
		SemaInvalidArraySize:      "Array size must be at least 1",
		SemaExpectedBoolean:       "Condition must be boolean",
		SemaExpectedIntLoopCond:   "Loop condition must be int",
		SemaUndefinedMethod:       "Undefined method",
		SemaArityMismatch:         "Wrong number of arguments",
		SemaParamTypeMismatch:     "Argument type mismatch",
		SemaMissingMainMethod:     "Missing main method",
		IOLoadFileError:           "I/O load file error",
		IODecodeError:             "Tree document decode error",
		IOInternalError:           "Internal analyzer failure",
		ObsInfo:                   "Observability information",
		ObsTimings:                "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// ParseCode maps a stable ID such as "SEM3001" back to its Code.
func ParseCode(id string) (Code, bool) {
	for c := range codeDescription {
		if c != UnknownCode && c.ID() == id {
			return c, true
		}
	}
	return UnknownCode, false
}
