package catalog

// Type is the closed set of type tags the expression type system and
// codegen operate over. Every field is implicitly nullable: a value of
// type T is carried as optional-T at runtime.
type Type int

const (
	I64 Type = iota
	F64
	String
	Bool
	Usize
)

func (t Type) String() string {
	switch t {
	case I64:
		return "i64"
	case F64:
		return "f64"
	case String:
		return "String"
	case Bool:
		return "bool"
	case Usize:
		return "usize"
	default:
		return "unknown"
	}
}

// IsNumeric reports whether t participates in +-*/^ arithmetic.
func (t Type) IsNumeric() bool {
	return t == I64 || t == F64 || t == Usize
}

// schemaTypeAliases maps a schema document's "type" spellings onto the
// closed type tag set. DateType and TimestampType are an explicit
// simplification to String; anything unrecognised also falls back to
// String rather than failing the catalog load.
var schemaTypeAliases = map[string]Type{
	"LongType":      I64,
	"IntegerType":   I64,
	"DoubleType":    F64,
	"FloatType":     F64,
	"StringType":    String,
	"BooleanType":   Bool,
	"DateType":      String,
	"TimestampType": String,
}

// ResolveSchemaType maps a schema document's type name to a Type,
// defaulting to String for anything unknown.
func ResolveSchemaType(name string) Type {
	if t, ok := schemaTypeAliases[name]; ok {
		return t
	}
	return String
}
