// Package pickle decodes python pickle streams into a closed set of Go
// values. Classes named in the stream are never looked up or run: an
// instance is recorded as an Object holding its class name, constructor
// arguments and state, and interpreting it is left to the caller.
package pickle

import (
	"fmt"
	"math/big"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Value is one of: None, bool, int64, *big.Int, float64, string, Bytes,
// Tuple, *List, *Dict, *Set, *Global or *Object.
type Value any

// None is python's None.
type None struct{}

// Bytes is a python 3 bytes object or a python 2 byte string.
type Bytes []byte

// Tuple is an immutable sequence.
type Tuple []Value

// List is a mutable sequence. It is a pointer so APPEND after MEMOIZE is
// seen by every reference.
type List struct {
	Items []Value
}

// Entry is one key/value pair of a Dict.
type Entry struct {
	Key   Value
	Value Value
}

// Dict keeps entries in insertion order. Keys are compared by Go
// equality of their decoded values, so only hashable python keys
// (strings, numbers, tuples of those) are found by Get.
type Dict struct {
	Entries []Entry
}

// Set is a set or frozenset.
type Set struct {
	Items  []Value
	Frozen bool
}

// Global is a reference to a module level name, usually a class.
type Global struct {
	Module string
	Name   string
}

func (g *Global) String() string {
	return g.Module + "." + g.Name
}

// Object is an instance of a class the decoder does not know. Args are
// the constructor arguments, State what BUILD applied, and ListItems and
// DictItems whatever was appended or assigned to a list or dict subclass.
type Object struct {
	Class     *Global
	Args      []Value
	State     Value
	ListItems []Value
	DictItems []Entry
}

// Is reports whether o is an instance of module.name.
func (o *Object) Is(module, name string) bool {
	return o.Class != nil && o.Class.Module == module && o.Class.Name == name
}

// Attr looks name up in the object's state. Objects with __slots__ carry
// their state as a (dict, slots) pair; both halves are searched.
func (o *Object) Attr(name string) (Value, bool) {
	switch state := o.State.(type) {
	case *Dict:
		return state.Get(name)
	case Tuple:
		for _, part := range state {
			if d, ok := part.(*Dict); ok {
				if v, ok := d.Get(name); ok {
					return v, true
				}
			}
		}
	}
	return nil, false
}

// Get returns the value stored under key.
func (d *Dict) Get(key Value) (Value, bool) {
	for _, e := range d.Entries {
		if keyEqual(e.Key, key) {
			return e.Value, true
		}
	}
	return nil, false
}

// Set stores value under key, replacing an existing entry.
func (d *Dict) Set(key, value Value) {
	for i, e := range d.Entries {
		if keyEqual(e.Key, key) {
			d.Entries[i].Value = value
			return
		}
	}
	d.Entries = append(d.Entries, Entry{key, value})
}

func keyEqual(a, b Value) bool {
	switch a := a.(type) {
	case string:
		s, ok := AsString(b)
		return ok && s == a
	case Bytes:
		s, ok := AsString(b)
		return ok && s == decodeBytes(a)
	case Tuple:
		bt, ok := b.(Tuple)
		if !ok || len(a) != len(bt) {
			return false
		}
		for i := range a {
			if !keyEqual(a[i], bt[i]) {
				return false
			}
		}
		return true
	case *big.Int:
		bb, ok := b.(*big.Int)
		return ok && a.Cmp(bb) == 0
	case int64, float64, bool, None:
		return a == b
	}
	return false
}

// AsString returns the text of a string or byte string. Byte strings
// that are not UTF-8 come from python 2 and are read as Latin-1.
func AsString(v Value) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case Bytes:
		return decodeBytes(v), true
	case *Object:
		// str subclasses such as renpy.ast.PyExpr keep their text as the
		// first constructor argument.
		if len(v.Args) > 0 {
			return AsString(v.Args[0])
		}
	}
	return "", false
}

func decodeBytes(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

// AsInt returns the value of an int or bool.
func AsInt(v Value) (int64, bool) {
	switch v := v.(type) {
	case int64:
		return v, true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case *big.Int:
		if v.IsInt64() {
			return v.Int64(), true
		}
	}
	return 0, false
}

// AsBool applies python truthiness to the common cases.
func AsBool(v Value) bool {
	switch v := v.(type) {
	case nil, None:
		return false
	case bool:
		return v
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		return v != ""
	case Bytes:
		return len(v) > 0
	case Tuple:
		return len(v) > 0
	case *List:
		return len(v.Items) > 0
	case *Dict:
		return len(v.Entries) > 0
	}
	return true
}

// AsList returns the items of a list, tuple, set or list subclass.
func AsList(v Value) ([]Value, bool) {
	switch v := v.(type) {
	case Tuple:
		return v, true
	case *List:
		return v.Items, true
	case *Set:
		return v.Items, true
	case *Object:
		if v.ListItems != nil {
			return v.ListItems, true
		}
		if len(v.Args) == 1 {
			// list(iterable) style reconstruction
			return AsList(v.Args[0])
		}
		return nil, v.State == nil
	}
	return nil, false
}

// AsDict returns the entries of a dict or dict subclass.
func AsDict(v Value) ([]Entry, bool) {
	switch v := v.(type) {
	case *Dict:
		return v.Entries, true
	case *Object:
		if v.DictItems != nil {
			return v.DictItems, true
		}
		if d, ok := v.State.(*Dict); ok && v.Class != nil && v.Class.Name == "OrderedDict" {
			return d.Entries, true
		}
		return nil, v.State == nil
	}
	return nil, false
}

// IsNone reports whether v is python's None.
func IsNone(v Value) bool {
	switch v.(type) {
	case nil, None:
		return true
	}
	return false
}

// TypeName names the python type of v for diagnostics.
func TypeName(v Value) string {
	switch v := v.(type) {
	case nil, None:
		return "None"
	case bool:
		return "bool"
	case int64, *big.Int:
		return "int"
	case float64:
		return "float"
	case string:
		return "str"
	case Bytes:
		return "bytes"
	case Tuple:
		return "tuple"
	case *List:
		return "list"
	case *Dict:
		return "dict"
	case *Set:
		if v.Frozen {
			return "frozenset"
		}
		return "set"
	case *Global:
		return "class " + v.String()
	case *Object:
		if v.Class == nil {
			return "object"
		}
		return v.Class.String()
	}
	return fmt.Sprintf("%T", v)
}
