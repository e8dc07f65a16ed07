package evalbox

import "github.com/evalbox/evalbox/internal/interp"

// Re-exported value types, so a host implementing native functions never
// has to import the internal interpreter packages (which Go would refuse
// from outside this module anyway).
type (
	// Value is the tagged union every evaluated expression produces.
	Value = interp.Value
	// Undefined is the missing-binding / absent-initializer value.
	Undefined = interp.Undefined
	// Null is the literal `null` value.
	Null = interp.Null
	// Bool wraps a script boolean.
	Bool = interp.Bool
	// Number is the single numeric type (IEEE-754 double).
	Number = interp.Number
	// String is the string primitive.
	String = interp.String
	// Array is an ordered, reference-shared sequence of Values.
	Array = interp.Array
	// Object is an ordered string-keyed map, reference-shared.
	Object = interp.Object
	// NativeFunction wraps a host-supplied callable.
	NativeFunction = interp.NativeFunction
)

// FromHost wraps an arbitrary Go value into the evaluator's Value model,
// the same conversion Evaluate applies to each context entry.
func FromHost(v any) Value { return interp.FromHost(v) }

// ToHost unwraps a Value back into plain Go data, the same conversion
// Evaluate applies to the final result.
func ToHost(v Value) any { return interp.ToHost(v) }
