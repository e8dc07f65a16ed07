package interp

import (
	"strconv"

	"github.com/evalbox/evalbox/internal/errors"
	"github.com/evalbox/evalbox/internal/token"
)

// memberGet reads obj[key] (or obj.key) per the host-object reading
// rule: own keys first, then ancestry; a missing key on a non-null
// receiver reads as undefined rather than erroring. Callers check
// optional-chaining short-circuit (null/undefined receiver) before
// calling this, so a null/undefined receiver here is always an error.
func (i *Interpreter) memberGet(obj Value, key string, pos token.Position) Value {
	switch recv := obj.(type) {
	case Undefined, Null:
		panic(i.runtimeError(errors.KindType, pos, "Cannot read properties of "+obj.Type()+" (reading '"+key+"')"))
	case *Object:
		if v, ok := recv.Get(key); ok {
			return v
		}
		return Undefined{}
	case *Array:
		if key == "length" {
			return Number(len(recv.Elements))
		}
		if idx, ok := parseArrayIndex(key); ok {
			if idx >= 0 && idx < len(recv.Elements) {
				return recv.Elements[idx]
			}
		}
		return Undefined{}
	case String:
		if key == "length" {
			return Number(len([]rune(string(recv))))
		}
		if idx, ok := parseArrayIndex(key); ok {
			runes := []rune(string(recv))
			if idx >= 0 && idx < len(runes) {
				return String(string(runes[idx]))
			}
		}
		return Undefined{}
	case *Function:
		if key == "name" {
			return String(recv.Name)
		}
		return Undefined{}
	case *NativeFunction:
		if key == "name" {
			return String(recv.Name)
		}
		return Undefined{}
	case *HostValue:
		if key == "length" {
			if n, ok := recv.Len(); ok {
				return Number(n)
			}
		}
		if idx, ok := parseArrayIndex(key); ok {
			if v, ok := recv.Index(idx); ok {
				return v
			}
			return Undefined{}
		}
		if v, ok := recv.Get(key); ok {
			return v
		}
		return Undefined{}
	default:
		return Undefined{}
	}
}

// memberSet writes obj[key] = value. Object writes always create or
// overwrite the own key on the immediate receiver; array index writes
// extend the array with undefined holes as needed.
func (i *Interpreter) memberSet(obj Value, key string, value Value, pos token.Position) Value {
	switch recv := obj.(type) {
	case Undefined, Null:
		panic(i.runtimeError(errors.KindType, pos, "Cannot set properties of "+obj.Type()+" (setting '"+key+"')"))
	case *Object:
		recv.Set(key, value)
		return value
	case *Array:
		if idx, ok := parseArrayIndex(key); ok && idx >= 0 {
			for idx >= len(recv.Elements) {
				recv.Elements = append(recv.Elements, Undefined{})
			}
			recv.Elements[idx] = value
			if recv.host != nil && idx < len(recv.host) {
				recv.host[idx] = ToHost(value)
			}
			return value
		}
		return value
	case *HostValue:
		if idx, ok := parseArrayIndex(key); ok {
			recv.SetIndex(idx, value)
			return value
		}
		recv.Set(key, value)
		return value
	default:
		return value
	}
}

// memberDelete removes key from obj, implementing the array-leaves-a-
// hole rule. It reports whether the key existed.
func (i *Interpreter) memberDelete(obj Value, key string) bool {
	switch recv := obj.(type) {
	case *Object:
		return recv.Delete(key)
	case *Array:
		if idx, ok := parseArrayIndex(key); ok && idx >= 0 && idx < len(recv.Elements) {
			recv.Elements[idx] = Undefined{}
			if recv.host != nil && idx < len(recv.host) {
				recv.host[idx] = nil
			}
			return true
		}
		return false
	default:
		return false
	}
}

func parseArrayIndex(key string) (int, bool) {
	n, err := strconv.Atoi(key)
	if err != nil {
		return 0, false
	}
	return n, true
}

// stringifyKey converts a computed member key to its string form per
// host rules: numbers print without a trailing ".0", everything else
// uses its display String().
func stringifyKey(v Value) string {
	if n, ok := v.(Number); ok {
		return n.String()
	}
	return v.String()
}
