package model

// Builtin YANG type names.
var builtinTypes = map[string]bool{
	"binary": true, "bits": true, "boolean": true, "decimal64": true,
	"empty": true, "enumeration": true, "identityref": true,
	"instance-identifier": true, "int8": true, "int16": true, "int32": true,
	"int64": true, "leafref": true, "string": true, "uint8": true,
	"uint16": true, "uint32": true, "uint64": true, "union": true,
}

// IsBuiltinType reports whether name is a YANG builtin type.
func IsBuiltinType(name string) bool {
	return builtinTypes[name]
}

// Restrictions holds the restriction substatements of a type.
type Restrictions struct {
	Range          string
	Length         string
	Patterns       []string
	Enums          []string
	Bits           []string
	FractionDigits int
	Path           string
	IdentityBases  []QName
	Union          []*TypeDefinition
}

// IsZero reports whether no restriction is present.
func (r Restrictions) IsZero() bool {
	return r.Range == "" && r.Length == "" && len(r.Patterns) == 0 &&
		len(r.Enums) == 0 && len(r.Bits) == 0 && r.FractionDigits == 0 &&
		r.Path == "" && len(r.IdentityBases) == 0 && len(r.Union) == 0
}

// TypeDefinition is an effective type. Builtin definitions have a nil Base;
// typedefs and restricted types chain to their base.
type TypeDefinition struct {
	Name         QName
	BaseType     *TypeDefinition
	Restrictions Restrictions
	Default      string
	Units        string
	Description  string
	Status       Status
}

// Builtin returns the builtin definition at the root of the derivation chain.
func (t *TypeDefinition) Builtin() *TypeDefinition {
	cur := t
	for cur != nil && cur.BaseType != nil {
		cur = cur.BaseType
	}
	return cur
}

var builtinDefs = func() map[string]*TypeDefinition {
	defs := make(map[string]*TypeDefinition, len(builtinTypes))
	for name := range builtinTypes {
		defs[name] = &TypeDefinition{Name: QName{Name: name}, Status: StatusCurrent}
	}
	return defs
}()

// BuiltinType returns the shared definition of a builtin type.
func BuiltinType(name string) (*TypeDefinition, bool) {
	def, ok := builtinDefs[name]
	return def, ok
}

// Restrict derives a type from base. Without restrictions the base itself is
// returned so unrestricted uses of a type share one definition.
func Restrict(base *TypeDefinition, r Restrictions) *TypeDefinition {
	if r.IsZero() {
		return base
	}
	return &TypeDefinition{
		Name:         base.Name,
		BaseType:     base,
		Restrictions: r,
		Default:      base.Default,
		Units:        base.Units,
		Status:       base.Status,
	}
}

// TypeStatement is the effective form of a type statement.
type TypeStatement struct {
	Base
	Definition *TypeDefinition
}

// Typedef is the effective form of a typedef statement.
type Typedef struct {
	Base
	Definition *TypeDefinition
}
