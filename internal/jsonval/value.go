// Package jsonval models JSON documents as a tagged value tree so merge code
// can switch on shape instead of poking at interface{} with reflection.
// Objects keep their key order, which keeps the master file diffable and
// preserves upstream fields we know nothing about.
package jsonval

// Kind identifies the shape of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindObject
)

// Value is one node of a JSON document.
type Value interface {
	Kind() Kind

	// Blank reports whether the value counts as "no information":
	// null, empty string, empty list, empty object.
	// Numbers and booleans are never blank.
	Blank() bool

	// Clone returns a deep copy.
	Clone() Value
}

type Null struct{}

func (Null) Kind() Kind   { return KindNull }
func (Null) Blank() bool  { return true }
func (Null) Clone() Value { return Null{} }

type String string

func (s String) Kind() Kind   { return KindString }
func (s String) Blank() bool  { return s == "" }
func (s String) Clone() Value { return s }

// Number keeps the raw JSON literal, so 7 never comes back as 7.000000.
type Number string

func (Number) Kind() Kind     { return KindNumber }
func (Number) Blank() bool    { return false }
func (n Number) Clone() Value { return n }

type Bool bool

func (Bool) Kind() Kind     { return KindBool }
func (Bool) Blank() bool    { return false }
func (b Bool) Clone() Value { return b }

type List struct {
	Items []Value
}

func NewList(items ...Value) *List { return &List{Items: items} }

func (*List) Kind() Kind      { return KindList }
func (l *List) Blank() bool   { return l == nil || len(l.Items) == 0 }
func (l *List) Len() int      { return len(l.Items) }
func (l *List) Append(v Value) { l.Items = append(l.Items, v) }

func (l *List) Clone() Value {
	if l == nil {
		return &List{}
	}
	out := &List{Items: make([]Value, len(l.Items))}
	for i, it := range l.Items {
		out.Items[i] = clone(it)
	}
	return out
}

// Object is an insertion-ordered string-keyed map.
type Object struct {
	keys []string
	vals map[string]Value
}

func NewObject() *Object {
	return &Object{vals: map[string]Value{}}
}

func (*Object) Kind() Kind    { return KindObject }
func (o *Object) Blank() bool { return o == nil || len(o.keys) == 0 }
func (o *Object) Len() int    { return len(o.keys) }

// Keys returns the key order. Callers must not mutate the slice.
func (o *Object) Keys() []string { return o.keys }

func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.vals[key]
	return v, ok
}

// Field is Get without the presence flag; absent keys read as null.
func (o *Object) Field(key string) Value {
	if v, ok := o.vals[key]; ok {
		return v
	}
	return Null{}
}

func (o *Object) Set(key string, v Value) {
	if o.vals == nil {
		o.vals = map[string]Value{}
	}
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

func (o *Object) Clone() Value {
	out := NewObject()
	if o == nil {
		return out
	}
	for _, k := range o.keys {
		out.Set(k, clone(o.vals[k]))
	}
	return out
}

func clone(v Value) Value {
	if v == nil {
		return Null{}
	}
	return v.Clone()
}

// Blank is a nil-safe v.Blank().
func Blank(v Value) bool {
	return v == nil || v.Blank()
}

// AsObject unwraps v if it is an object.
func AsObject(v Value) (*Object, bool) {
	o, ok := v.(*Object)
	return o, ok && o != nil
}

// AsList unwraps v if it is a list.
func AsList(v Value) (*List, bool) {
	l, ok := v.(*List)
	return l, ok && l != nil
}

// StringOf renders a scalar as a plain string: strings as-is, numbers by
// their literal, booleans as true/false. Null and container values render
// empty, which callers treat as "no usable key".
func StringOf(v Value) string {
	switch t := v.(type) {
	case String:
		return string(t)
	case Number:
		return string(t)
	case Bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// EnsureList coerces a fetch result that is logically a collection:
// null/absent becomes an empty list, a list stays as-is, anything else
// becomes a singleton. Upstream sometimes hands back an object where an
// array is documented.
func EnsureList(v Value) *List {
	switch t := v.(type) {
	case nil:
		return &List{}
	case Null:
		return &List{}
	case *List:
		if t == nil {
			return &List{}
		}
		return t
	default:
		return &List{Items: []Value{v}}
	}
}

// Equal is deep equality. Object comparison ignores key order.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Null:
		return true
	case String:
		return av == b.(String)
	case Number:
		return av == b.(Number)
	case Bool:
		return av == b.(Bool)
	case *List:
		bl := b.(*List)
		if len(av.Items) != len(bl.Items) {
			return false
		}
		for i := range av.Items {
			if !Equal(av.Items[i], bl.Items[i]) {
				return false
			}
		}
		return true
	case *Object:
		bo := b.(*Object)
		if av.Len() != bo.Len() {
			return false
		}
		for _, k := range av.keys {
			bv, ok := bo.Get(k)
			if !ok || !Equal(av.vals[k], bv) {
				return false
			}
		}
		return true
	}
	return false
}
