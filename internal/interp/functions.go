package interp

import (
	"strings"

	"github.com/evalbox/evalbox/internal/ast"
	"github.com/evalbox/evalbox/internal/errors"
	"github.com/evalbox/evalbox/internal/token"
)

// callFunction implements the invocation protocol of a script closure:
// depth-guarded frame creation off the captured environment, parameter
// binding, body evaluation, and catching the Return carrier. Depth is
// decremented via defer so every exit path (success, error, return)
// restores it.
func (i *Interpreter) callFunction(fn *Function, args []Value, pos token.Position) Value {
	if ce := i.guard.enterCall(pos); ce != nil {
		panic(ce)
	}
	defer i.guard.exitCall()

	frame := NewChildEnvironment(fn.Env)
	i.bindParams(frame, fn.Params, args, pos)
	frame.Declare("arguments", &Array{Elements: append([]Value(nil), args...)}, true)

	if expr, ok := fn.Body.(ast.Expression); ok {
		return i.Eval(frame, expr)
	}

	block, ok := fn.Body.(*ast.BlockStatement)
	if !ok {
		i.raise(errors.KindUnsupportedFeature, pos, "unsupported function body")
	}

	var result Value = Undefined{}
	var returned bool
	func() {
		defer catchReturn(&result, &returned)
		for _, s := range block.Statements {
			i.Eval(frame, s)
		}
	}()
	return result
}

// bindParams binds arguments to parameter patterns position-by-position.
// A trailing rest pattern collects the remainder into an array; any
// other non-identifier pattern is rejected as unsupported.
func (i *Interpreter) bindParams(frame *Environment, params []ast.Pattern, args []Value, pos token.Position) {
	for idx, p := range params {
		switch pat := p.(type) {
		case *ast.RestElement:
			rest := &Array{}
			if idx < len(args) {
				rest.Elements = append(rest.Elements, args[idx:]...)
			}
			name, ok := pat.Element.(*ast.Identifier)
			if !ok {
				i.raise(errors.KindUnsupportedFeature, pat.Pos(), "Unknown variable declaration "+pat.Element.Kind())
			}
			frame.Declare(name.Name, rest, true)
		case *ast.Identifier:
			var v Value = Undefined{}
			if idx < len(args) {
				v = args[idx]
			}
			frame.Declare(pat.Name, v, true)
		case *ast.UnsupportedPattern:
			i.raise(errors.KindUnsupportedFeature, pat.Pos(), "Unknown variable declaration "+pat.PatternOf)
		}
	}
}

func isNullOrUndef(v Value) bool {
	switch v.(type) {
	case Null, Undefined:
		return true
	}
	return false
}

// evalMemberObject evaluates the receiver position of a member access.
// A bare unknown identifier reads as undefined here instead of raising
// "Unknown variable", so the member reader gets to report the more
// precise "Cannot read properties of undefined (reading 'key')" — or
// the optional chain gets to short-circuit.
func (i *Interpreter) evalMemberObject(env *Environment, expr ast.Expression) Value {
	if ident, ok := expr.(*ast.Identifier); ok {
		if v, found := env.Lookup(ident.Name); found {
			return v
		}
		return Undefined{}
	}
	return i.Eval(env, expr)
}

// evalMember implements member reads for both computed (`obj[expr]`)
// and non-computed (`obj.prop`) forms, honoring optional chaining.
func (i *Interpreter) evalMember(env *Environment, n *ast.MemberExpression) Value {
	obj := i.evalMemberObject(env, n.Object)
	if n.Optional && isNullOrUndef(obj) {
		throwSafeNav()
	}
	key := i.memberKey(env, n.Property, n.Computed)
	return i.memberGet(obj, key, n.Pos())
}

func (i *Interpreter) memberKey(env *Environment, property ast.Expression, computed bool) string {
	if computed {
		return stringifyKey(i.Eval(env, property))
	}
	ident, ok := property.(*ast.Identifier)
	if !ok {
		return property.String()
	}
	return ident.Name
}

// evalChain catches a safe-navigation short-circuit from anywhere inside
// the wrapped member/call chain and yields undefined.
func (i *Interpreter) evalChain(env *Environment, n *ast.ChainExpression) Value {
	var result Value = Undefined{}
	var caught bool
	func() {
		defer catchSafeNav(&caught)
		result = i.Eval(env, n.Expression)
	}()
	if caught {
		return Undefined{}
	}
	return result
}

// evalCall dispatches on the callee form: member access (host-method
// semantics: receiver bound as `this`), identifier, and immediate
// function/arrow expressions (evaluated like any other callee and then
// invoked).
func (i *Interpreter) evalCall(env *Environment, n *ast.CallExpression) Value {
	if me, ok := n.Callee.(*ast.MemberExpression); ok {
		obj := i.evalMemberObject(env, me.Object)
		if me.Optional && isNullOrUndef(obj) {
			throwSafeNav()
		}
		key := i.memberKey(env, me.Property, me.Computed)
		fnVal := i.memberGet(obj, key, me.Pos())
		if n.Optional && isNullOrUndef(fnVal) {
			throwSafeNav()
		}
		args := i.evalArgs(env, n.Arguments)
		return i.callValue(fnVal, obj, args, n.Pos(), key)
	}

	calleeVal := i.Eval(env, n.Callee)
	if n.Optional && isNullOrUndef(calleeVal) {
		throwSafeNav()
	}
	args := i.evalArgs(env, n.Arguments)
	return i.callValue(calleeVal, Undefined{}, args, n.Pos(), calleeDisplayName(n.Callee))
}

func (i *Interpreter) evalArgs(env *Environment, args []ast.Expression) []Value {
	var out []Value
	for _, a := range args {
		if spread, ok := a.(*ast.SpreadElement); ok {
			v := i.Eval(env, spread.Argument)
			arr, ok := v.(*Array)
			if !ok {
				i.raise(errors.KindType, spread.Pos(), "spread element is not an array")
			}
			out = append(out, arr.Elements...)
			continue
		}
		out = append(out, i.Eval(env, a))
	}
	return out
}

// callValue invokes callee, which must be a script Function or a host
// NativeFunction; this is the bound receiver for member-access calls and
// Undefined otherwise.
func (i *Interpreter) callValue(callee Value, this Value, args []Value, pos token.Position, name string) Value {
	switch fn := callee.(type) {
	case *Function:
		return i.callFunction(fn, args, pos)
	case *NativeFunction:
		v, err := fn.Fn(this, args)
		if err != nil {
			i.raise(errors.KindType, pos, err.Error())
		}
		return v
	default:
		i.raise(errors.KindType, pos, name+" is not a function")
		return Undefined{}
	}
}

func calleeDisplayName(expr ast.Expression) string {
	if ident, ok := expr.(*ast.Identifier); ok {
		return ident.Name
	}
	return expr.String()
}

// ref is a resolved assignment/update/delete target: either a named
// binding on some frame, or an own-key write against an evaluated host
// object/array.
type ref struct {
	isMember bool
	env      *Environment
	name     string
	obj      Value
	key      string
}

func (i *Interpreter) resolveRef(env *Environment, target ast.Expression) ref {
	switch t := target.(type) {
	case *ast.Identifier:
		return ref{env: env, name: t.Name}
	case *ast.MemberExpression:
		obj := i.evalMemberObject(env, t.Object)
		if t.Optional && isNullOrUndef(obj) {
			throwSafeNav()
		}
		return ref{isMember: true, obj: obj, key: i.memberKey(env, t.Property, t.Computed)}
	default:
		i.raise(errors.KindType, target.Pos(), "invalid assignment target")
		return ref{}
	}
}

func (i *Interpreter) getRef(r ref, pos token.Position) Value {
	if r.isMember {
		return i.memberGet(r.obj, r.key, pos)
	}
	v, ok := r.env.Lookup(r.name)
	if !ok {
		i.raise(errors.KindName, pos, "Unknown variable "+r.name)
	}
	return v
}

func (i *Interpreter) setRef(r ref, value Value, pos token.Position) Value {
	if r.isMember {
		return i.memberSet(r.obj, r.key, value, pos)
	}
	switch r.env.RedefineOwnerCell(r.name, value) {
	case assignOK:
		return value
	case assignImmutable:
		i.raise(errors.KindType, pos, "Cannot redefine property: "+r.name)
	case assignNotFound:
		i.raise(errors.KindName, pos, r.name+" is unknown")
	}
	return value
}

func (i *Interpreter) evalAssignment(env *Environment, n *ast.AssignmentExpression) Value {
	r := i.resolveRef(env, n.Left)
	if n.Operator == "=" {
		v := i.Eval(env, n.Right)
		return i.setRef(r, v, n.Pos())
	}

	current := i.getRef(r, n.Pos())
	rhs := i.Eval(env, n.Right)
	op := strings.TrimSuffix(n.Operator, "=")
	result, err := evalBinaryOp(op, current, rhs)
	if err != nil {
		i.raise(errors.KindType, n.Pos(), err.Error())
	}
	return i.setRef(r, result, n.Pos())
}

func (i *Interpreter) evalUpdate(env *Environment, n *ast.UpdateExpression) Value {
	r := i.resolveRef(env, n.Argument)
	current := Number(toNumber(i.getRef(r, n.Pos())))

	delta := Number(1)
	if n.Operator == "--" {
		delta = -1
	}
	updated := current + delta
	i.setRef(r, updated, n.Pos())

	if n.Prefix {
		return updated
	}
	return current
}

// evalDelete: member deletes remove the own key (arrays leave an
// undefined hole); a chain that
// short-circuits on null/undefined yields true; any other target is an
// error.
func (i *Interpreter) evalDelete(env *Environment, n *ast.DeleteExpression) Value {
	if ce, ok := n.Argument.(*ast.ChainExpression); ok {
		var caught bool
		func() {
			defer catchSafeNav(&caught)
			i.deleteMemberTarget(env, ce.Expression)
		}()
		return Bool(true)
	}
	i.deleteMemberTarget(env, n.Argument)
	return Bool(true)
}

func (i *Interpreter) deleteMemberTarget(env *Environment, target ast.Expression) {
	me, ok := target.(*ast.MemberExpression)
	if !ok {
		i.raise(errors.KindType, target.Pos(), "invalid delete target")
	}
	obj := i.evalMemberObject(env, me.Object)
	if me.Optional && isNullOrUndef(obj) {
		throwSafeNav()
	}
	key := i.memberKey(env, me.Property, me.Computed)
	i.memberDelete(obj, key)
}
