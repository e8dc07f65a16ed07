// Package interp implements the tree-walking evaluator: value model,
// scope chain, resource guards, and the recursive AST dispatch.
package interp

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/evalbox/evalbox/internal/ast"
)

// Value is the tagged union every evaluated expression produces.
// Primitives (Undefined, Null, Bool, Number, String) are copied by Go's
// normal value semantics; Array, Object, and the function values are
// reference types and share identity across assignment.
type Value interface {
	Type() string
	String() string
}

// Undefined is the zero value returned for missing bindings, absent
// initializers, and bare `return`.
type Undefined struct{}

func (Undefined) Type() string   { return "undefined" }
func (Undefined) String() string { return "undefined" }

// Null is the literal `null` value.
type Null struct{}

func (Null) Type() string   { return "null" }
func (Null) String() string { return "null" }

// Bool wraps a boolean.
type Bool bool

func (b Bool) Type() string { return "boolean" }
func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Number is the single numeric type; the language has no integer/float
// split.
type Number float64

func (Number) Type() string { return "number" }
func (n Number) String() string {
	f := float64(n)
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// String is the string primitive.
type String string

func (String) Type() string     { return "string" }
func (s String) String() string { return string(s) }

// Array is an ordered, reference-shared sequence of Values. host, when
// non-nil, is the exact []any the engine received from the host; index
// writes within its bounds are mirrored into it (see memberSet), so
// mutation through the script is observable to the host once Evaluate
// returns, matching Go's own slice-aliasing semantics. Elements always
// holds the current script-visible view and is what every other reader
// (spread, arguments, length) ranges over.
type Array struct {
	Elements []Value
	host     []any
}

func (a *Array) Type() string { return "array" }
func (a *Array) String() string {
	parts := make([]string, len(a.Elements))
	for i, v := range a.Elements {
		parts[i] = displayString(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Object is an ordered string-keyed map, reference-shared, with an
// optional parent supplying inherited keys per the host-object reading
// rule (own keys first, then ancestry). host, when non-nil, is the exact
// map[string]any the engine received from the host: Go maps are already
// reference types, so reading and writing through host instead of a
// private copy of values/keys makes script mutation of a host-supplied
// object observable in the host's own map once Evaluate returns.
type Object struct {
	keys   []string
	values map[string]Value
	Parent *Object
	host   map[string]any
}

// NewObject returns an empty object with no inherited ancestry.
func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

// NewHostObject wraps m by reference: all reads and writes operate
// directly on m, never on a copy, per the evaluator's no-copy rule for
// host-supplied containers.
func NewHostObject(m map[string]any) *Object {
	return &Object{host: m}
}

func (o *Object) Type() string { return "object" }

func (o *Object) String() string {
	keys := o.Keys()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v, _ := o.OwnGet(k)
		parts = append(parts, k+": "+displayString(v))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// OwnGet returns a value only if key is an own key of o (no ancestry
// walk).
func (o *Object) OwnGet(key string) (Value, bool) {
	if o.host != nil {
		v, ok := o.host[key]
		if !ok {
			return nil, false
		}
		return FromHost(v), true
	}
	v, ok := o.values[key]
	return v, ok
}

// Get walks o's own keys, then its ancestry chain.
func (o *Object) Get(key string) (Value, bool) {
	for cur := o; cur != nil; cur = cur.Parent {
		if v, ok := cur.OwnGet(key); ok {
			return v, true
		}
	}
	return nil, false
}

// Set creates or overwrites an own key, preserving first-insertion order.
// For a host-backed object this writes straight into the host's map.
func (o *Object) Set(key string, v Value) {
	if o.host != nil {
		o.host[key] = ToHost(v)
		return
	}
	if o.values == nil {
		o.values = make(map[string]Value)
	}
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Delete removes an own key, reporting whether it was present.
func (o *Object) Delete(key string) bool {
	if o.host != nil {
		if _, ok := o.host[key]; !ok {
			return false
		}
		delete(o.host, key)
		return true
	}
	if _, ok := o.values[key]; !ok {
		return false
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns own keys. A plain object reports insertion order; a
// host-backed object sorts lexically since Go map iteration order is
// randomized and the host's insertion order isn't recoverable.
func (o *Object) Keys() []string {
	if o.host != nil {
		out := make([]string, 0, len(o.host))
		for k := range o.host {
			out = append(out, k)
		}
		sort.Strings(out)
		return out
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// SortedKeys returns own keys sorted lexically, used by diagnostic
// dumps where a stable ordering matters more than insertion order.
func (o *Object) SortedKeys() []string {
	out := o.Keys()
	sort.Strings(out)
	return out
}

// NativeFunction wraps a host-supplied callable. this is Undefined for
// plain identifier calls and the receiver object for member-access
// calls, matching the evaluator's method-call dispatch.
type NativeFunction struct {
	Name string
	Fn   func(this Value, args []Value) (Value, error)
}

func (n *NativeFunction) Type() string   { return "function" }
func (n *NativeFunction) String() string { return "function " + n.Name + "() { [native code] }" }

// Function is a script-defined closure: parameter patterns, a body
// (block or bare expression for arrow shorthand), and the frame captured
// at definition time.
type Function struct {
	Name  string
	Params []ast.Pattern
	Body  ast.Node
	Env   *Environment
	Arrow bool
}

func (f *Function) Type() string { return "function" }
func (f *Function) String() string {
	name := f.Name
	return "function " + name + "() { [script code] }"
}

// Truthy implements the reference language's boolean coercion.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case Undefined:
		return false
	case Null:
		return false
	case Bool:
		return bool(val)
	case Number:
		f := float64(val)
		return f != 0 && !math.IsNaN(f)
	case String:
		return val != ""
	default:
		return true
	}
}

// displayString renders a value the way it appears nested inside an
// array/object's own String(): strings are shown double-quoted, unlike
// the top-level String(); every other value uses its own String(), which
// recurses for containers.
func displayString(v Value) string {
	if s, ok := v.(String); ok {
		return strconv.Quote(string(s))
	}
	return v.String()
}

// FromHost wraps an arbitrary Go value from the host context dictionary
// into the evaluator's Value model. []any and map[string]any entries are
// wrapped by reference (see Array.host/Object.host) rather than copied,
// so that a script mutating one of them mutates the host's own backing
// data, per the evaluator's no-copy-on-read rule. Any other type the
// fixed cases below don't recognize (structs, pointers to structs, or
// slices/maps of a concrete element type) falls back to a reflect-backed
// HostValue handle instead of being misrepresented as a callable.
func FromHost(v any) Value {
	switch val := v.(type) {
	case nil:
		return Undefined{}
	case Value:
		return val
	case bool:
		return Bool(val)
	case string:
		return String(val)
	case int:
		return Number(val)
	case int32:
		return Number(val)
	case int64:
		return Number(val)
	case float32:
		return Number(val)
	case float64:
		return Number(val)
	case []any:
		arr := &Array{Elements: make([]Value, len(val)), host: val}
		for i, e := range val {
			arr.Elements[i] = FromHost(e)
		}
		return arr
	case map[string]any:
		return NewHostObject(val)
	case func(args []Value) (Value, error):
		return &NativeFunction{Name: "host", Fn: func(_ Value, args []Value) (Value, error) { return val(args) }}
	default:
		return newHostValue(v)
	}
}

// ToHost unwraps a Value back into plain Go data for host consumption
// (e.g. final-result marshaling).
func ToHost(v Value) any {
	switch val := v.(type) {
	case Undefined:
		return nil
	case Null:
		return nil
	case Bool:
		return bool(val)
	case Number:
		return float64(val)
	case String:
		return string(val)
	case *Array:
		out := make([]any, len(val.Elements))
		for i, e := range val.Elements {
			out[i] = ToHost(e)
		}
		return out
	case *Object:
		keys := val.Keys()
		out := make(map[string]any, len(keys))
		for _, k := range keys {
			ev, _ := val.OwnGet(k)
			out[k] = ToHost(ev)
		}
		return out
	case *HostValue:
		return val.rv.Interface()
	default:
		return v.String()
	}
}

// HostValue is an opaque handle over a host Go value that FromHost's
// fixed cases don't recognize: a struct, a pointer to one, or a
// slice/map whose element type isn't any. It exposes struct fields and
// map/slice elements through the same member-access protocol as Object
// and Array (see memberGet/memberSet in hostinterop.go) via reflection,
// rather than copying the value into the evaluator's own container
// types. Writes reach the host's original data wherever Go's own
// addressability rules allow it: map entries always (maps are reference
// types), slice elements always (slices alias their backing array),
// struct fields only when rv was built from a pointer.
type HostValue struct {
	rv reflect.Value
}

func newHostValue(v any) *HostValue {
	return &HostValue{rv: reflect.ValueOf(v)}
}

func (h *HostValue) Type() string {
	switch h.elemKind() {
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "object"
	}
}

func (h *HostValue) String() string {
	if !h.rv.IsValid() {
		return "null"
	}
	return fmt.Sprintf("%v", h.rv.Interface())
}

// elem returns the struct/slice/map value itself, following one pointer
// indirection if rv holds a pointer.
func (h *HostValue) elem() reflect.Value {
	rv := h.rv
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}

func (h *HostValue) elemKind() reflect.Kind {
	rv := h.elem()
	if !rv.IsValid() {
		return reflect.Invalid
	}
	return rv.Kind()
}

// Get reads a struct field or map entry by name.
func (h *HostValue) Get(key string) (Value, bool) {
	rv := h.elem()
	if !rv.IsValid() {
		return nil, false
	}
	switch rv.Kind() {
	case reflect.Struct:
		f := rv.FieldByName(key)
		if !f.IsValid() || !f.CanInterface() {
			return nil, false
		}
		return FromHost(f.Interface()), true
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		return FromHost(mv.Interface()), true
	default:
		return nil, false
	}
}

// Set writes a struct field (only possible through a pointer) or map
// entry by name.
func (h *HostValue) Set(key string, v Value) bool {
	rv := h.elem()
	if !rv.IsValid() {
		return false
	}
	switch rv.Kind() {
	case reflect.Struct:
		f := rv.FieldByName(key)
		if !f.IsValid() || !f.CanSet() {
			return false
		}
		return setReflectFromHost(f, ToHost(v))
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return false
		}
		elem := reflect.New(rv.Type().Elem()).Elem()
		if !setReflectFromHost(elem, ToHost(v)) {
			return false
		}
		rv.SetMapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()), elem)
		return true
	default:
		return false
	}
}

// setReflectFromHost assigns hv (plain Go data produced by ToHost) into
// dst, guarding the reflect Convert call against a host type mismatch
// (e.g. assigning a string into a []int element) or a nil hv targeting a
// non-nilable field, either of which would otherwise panic.
func setReflectFromHost(dst reflect.Value, hv any) bool {
	if hv == nil {
		switch dst.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
			dst.Set(reflect.Zero(dst.Type()))
			return true
		default:
			return false
		}
	}
	src := reflect.TypeOf(hv)
	if !src.ConvertibleTo(dst.Type()) {
		return false
	}
	dst.Set(reflect.ValueOf(hv).Convert(dst.Type()))
	return true
}

// Len reports the element count of an underlying slice/array.
func (h *HostValue) Len() (int, bool) {
	rv := h.elem()
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return 0, false
	}
	return rv.Len(), true
}

// Index reads element i of an underlying slice/array.
func (h *HostValue) Index(i int) (Value, bool) {
	rv := h.elem()
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	if i < 0 || i >= rv.Len() {
		return nil, false
	}
	return FromHost(rv.Index(i).Interface()), true
}

// SetIndex writes element i of an underlying slice/array, aliasing the
// host's backing array the same way Array.host writes do.
func (h *HostValue) SetIndex(i int, v Value) bool {
	rv := h.elem()
	if !rv.IsValid() || rv.Kind() != reflect.Slice {
		return false
	}
	if i < 0 || i >= rv.Len() {
		return false
	}
	elem := rv.Index(i)
	if !elem.CanSet() {
		return false
	}
	return setReflectFromHost(elem, ToHost(v))
}
