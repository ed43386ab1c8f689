package graph

import "fmt"

// AttrType is the value type of an attribute.
type AttrType int

const (
	TypeString AttrType = iota
	TypeFloat
	TypeBool
	TypeInt
	// TypeObject holds arbitrary values. Values implementing [Cloner] are
	// deep-copied by [Store.Clone].
	TypeObject
)

var attrTypeNames = map[AttrType]string{
	TypeString: "string",
	TypeFloat:  "float",
	TypeBool:   "boolean",
	TypeInt:    "integer",
	TypeObject: "object",
}

// String returns the type name used in serialized documents.
func (t AttrType) String() string {
	if s, ok := attrTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("AttrType(%d)", int(t))
}

// ParseAttrType is the inverse of [AttrType.String].
func ParseAttrType(s string) (AttrType, error) {
	for t, name := range attrTypeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown attribute type %q", s)
}

// Attribute describes a registered attribute.
type Attribute struct {
	ID      int
	Kind    ElementKind
	Name    string
	Type    AttrType
	Default any
}

// defaultFor returns the zero value reported for unset attributes.
func defaultFor(t AttrType) any {
	switch t {
	case TypeString:
		return ""
	case TypeFloat:
		return float64(0)
	case TypeBool:
		return false
	case TypeInt:
		return 0
	default:
		return nil
	}
}

// coerce checks v against t and normalizes numeric values.
func coerce(t AttrType, v any) (any, error) {
	switch t {
	case TypeString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case TypeFloat:
		switch n := v.(type) {
		case float64:
			return n, nil
		case float32:
			return float64(n), nil
		case int:
			return float64(n), nil
		}
	case TypeBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case TypeInt:
		switch n := v.(type) {
		case int:
			return n, nil
		case int64:
			return int(n), nil
		case float64:
			if n == float64(int(n)) {
				return int(n), nil
			}
		}
	case TypeObject:
		return v, nil
	}
	return nil, fmt.Errorf("%w: %T is not %s", ErrValueType, v, t)
}

// Accepts reports whether v can be stored in an attribute of type t.
func (t AttrType) Accepts(v any) bool {
	_, err := coerce(t, v)
	return err == nil
}

// StringValue returns the string value of attr on id, or "" if attr is
// NotFound or holds another type.
func StringValue(g Reader, attr, id int) string {
	if attr == NotFound {
		return ""
	}
	s, _ := g.Value(attr, id).(string)
	return s
}

// FloatValue returns the float value of attr on id, or 0.
func FloatValue(g Reader, attr, id int) float64 {
	if attr == NotFound {
		return 0
	}
	f, _ := g.Value(attr, id).(float64)
	return f
}

// BoolValue returns the boolean value of attr on id, or false.
func BoolValue(g Reader, attr, id int) bool {
	if attr == NotFound {
		return false
	}
	b, _ := g.Value(attr, id).(bool)
	return b
}
