package assertion

// Kind names the comparison an assertion performs. It appears
// verbatim in trace lines.
type Kind string

// Built-in assertion kinds.
const (
	KindEqualInt       Kind = "EQUAL_INT"
	KindNotEqualInt    Kind = "NOT_EQUAL_INT"
	KindEqualString    Kind = "EQUAL_STR"
	KindNotEqualString Kind = "NOT_EQUAL_STR"
	KindEqualFloat     Kind = "EQUAL_DOUBLE"
	KindEqual          Kind = "EQUAL"
	KindIsTrue         Kind = "IS_TRUE"
	KindIsFalse        Kind = "IS_FALSE"
)

// Unary reports whether the kind takes a single operand.
func (k Kind) Unary() bool {
	return k == KindIsTrue || k == KindIsFalse
}
