package interp

import (
	"fmt"
	"io"

	"github.com/evalbox/evalbox/internal/ast"
	"github.com/evalbox/evalbox/internal/errors"
	"github.com/evalbox/evalbox/internal/token"
)

// Interpreter walks an AST and produces Values. It holds no mutable
// evaluation state of its own beyond the resource guard and trace
// sink — the environment chain is threaded explicitly through Eval so
// that nested calls (closures invoked from inside other closures) never
// share or clobber each other's frame.
type Interpreter struct {
	guard  *Guard
	source string
	file   string

	trace      bool
	traceSink  io.Writer
}

// New creates an Interpreter bounded by guard. source/file are used only
// to annotate error messages with a line and caret.
func New(guard *Guard, source, file string) *Interpreter {
	return &Interpreter{guard: guard, source: source, file: file}
}

// SetTrace directs a one-line-per-node execution trace to w, mirroring
// the CLI's --trace flag.
func (i *Interpreter) SetTrace(w io.Writer) {
	i.trace = w != nil
	i.traceSink = w
}

func (i *Interpreter) runtimeError(kind errors.Kind, pos token.Position, message string) *errors.CompilerError {
	return errors.NewRuntimeError(kind, pos, message, i.source, i.file)
}

func (i *Interpreter) raise(kind errors.Kind, pos token.Position, message string) {
	panic(i.runtimeError(kind, pos, message))
}

// RunProgram evaluates every top-level statement against env in order
// and returns the value of the last one. A top-level `return` (permitted
// or rejected at parse time) is caught here and its payload becomes the
// program result. Runtime errors surface as a returned error rather than
// an unrecovered panic.
func (i *Interpreter) RunProgram(env *Environment, program *ast.Program) (result Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ce, ok := r.(*errors.CompilerError); ok {
				err = ce
				return
			}
			if _, ok := r.(safeNavSignal); ok {
				result = Undefined{}
				return
			}
			panic(r)
		}
	}()

	result = Undefined{}
	var returned bool
	func() {
		defer catchReturn(&result, &returned)
		for _, stmt := range program.Statements {
			result = i.Eval(env, stmt)
		}
	}()
	return result, nil
}

// Eval dispatches node to its evaluation arm. Every case either returns a
// Value directly or panics a *errors.CompilerError, a returnSignal, or a
// safeNavSignal — all three are caught at well-defined boundaries
// (RunProgram, callFunction, chain expressions).
func (i *Interpreter) Eval(env *Environment, node ast.Node) Value {
	if i.trace {
		fmt.Fprintf(i.traceSink, "eval %T at %s\n", node, node.Pos())
	}

	switch n := node.(type) {
	case *ast.Program:
		var result Value = Undefined{}
		for _, stmt := range n.Statements {
			result = i.Eval(env, stmt)
		}
		return result

	case *ast.ExpressionStatement:
		if n.Expression == nil {
			return Undefined{}
		}
		return i.Eval(env, n.Expression)

	case *ast.VariableDeclaration:
		return i.evalVariableDeclaration(env, n)

	case *ast.BlockStatement:
		child := NewChildEnvironment(env)
		return i.evalStatements(child, n.Statements)

	case *ast.IfStatement:
		if Truthy(i.Eval(env, n.Test)) {
			return i.Eval(env, n.Consequent)
		}
		if n.Alternate != nil {
			return i.Eval(env, n.Alternate)
		}
		return Undefined{}

	case *ast.WhileStatement:
		return i.evalWhile(env, n)

	case *ast.ReturnStatement:
		var v Value = Undefined{}
		if n.Argument != nil {
			v = i.Eval(env, n.Argument)
		}
		throwReturn(v)
		return Undefined{} // unreachable

	case *ast.FunctionDeclaration:
		fn := i.makeFunction(env, n.FunctionLiteral)
		if !env.Declare(n.Name.Name, fn, false) {
			i.raise(errors.KindName, n.Pos(), n.Name.Name+" is already declared")
		}
		return fn

	case *ast.FunctionLiteral:
		return i.makeFunction(env, n)

	case *ast.Identifier:
		return i.evalIdentifier(env, n)

	case *ast.NumberLiteral:
		return Number(n.Value)
	case *ast.StringLiteral:
		return String(n.Value)
	case *ast.BoolLiteral:
		return Bool(n.Value)
	case *ast.NullLiteral:
		return Null{}
	case *ast.UndefinedLiteral:
		return Undefined{}

	case *ast.TemplateLiteral:
		return i.evalTemplateLiteral(env, n)

	case *ast.ArrayLiteral:
		return i.evalArrayLiteral(env, n)

	case *ast.ObjectLiteral:
		return i.evalObjectLiteral(env, n)

	case *ast.MemberExpression:
		return i.evalMember(env, n)

	case *ast.CallExpression:
		return i.evalCall(env, n)

	case *ast.ChainExpression:
		return i.evalChain(env, n)

	case *ast.UnaryExpression:
		v, err := evalUnaryOp(n.Operator, i.Eval(env, n.Argument))
		if err != nil {
			i.raise(errors.KindType, n.Pos(), err.Error())
		}
		return v

	case *ast.DeleteExpression:
		return i.evalDelete(env, n)

	case *ast.UpdateExpression:
		return i.evalUpdate(env, n)

	case *ast.BinaryExpression:
		left := i.Eval(env, n.Left)
		right := i.Eval(env, n.Right)
		v, err := evalBinaryOp(n.Operator, left, right)
		if err != nil {
			i.raise(errors.KindType, n.Pos(), err.Error())
		}
		return v

	case *ast.LogicalExpression:
		left := i.Eval(env, n.Left)
		switch n.Operator {
		case "&&":
			if !Truthy(left) {
				return left
			}
			return i.Eval(env, n.Right)
		case "||":
			if Truthy(left) {
				return left
			}
			return i.Eval(env, n.Right)
		}
		i.raise(errors.KindType, n.Pos(), "unsupported logical operator "+n.Operator)
		return Undefined{}

	case *ast.ConditionalExpression:
		if Truthy(i.Eval(env, n.Test)) {
			return i.Eval(env, n.Consequent)
		}
		return i.Eval(env, n.Alternate)

	case *ast.AssignmentExpression:
		return i.evalAssignment(env, n)

	default:
		i.raise(errors.KindUnsupportedFeature, node.Pos(), fmt.Sprintf("unrecognized node kind %T", node))
		return Undefined{}
	}
}

func (i *Interpreter) evalStatements(env *Environment, stmts []ast.Statement) Value {
	var result Value = Undefined{}
	for _, s := range stmts {
		result = i.Eval(env, s)
	}
	return result
}

func (i *Interpreter) evalWhile(env *Environment, n *ast.WhileStatement) Value {
	var result Value = Undefined{}
	for {
		if ce := i.guard.checkLoopIteration(n.Pos()); ce != nil {
			panic(ce)
		}
		if !Truthy(i.Eval(env, n.Test)) {
			break
		}
		result = i.Eval(env, n.Body)
	}
	return result
}

func (i *Interpreter) evalIdentifier(env *Environment, n *ast.Identifier) Value {
	if v, ok := env.Lookup(n.Name); ok {
		return v
	}
	i.raise(errors.KindName, n.Pos(), "Unknown variable "+n.Name)
	return Undefined{}
}

func (i *Interpreter) evalVariableDeclaration(env *Environment, n *ast.VariableDeclaration) Value {
	writable := n.Kind != "const"
	var last Value = Undefined{}
	for _, d := range n.Declarations {
		if up, ok := d.Name.(*ast.UnsupportedPattern); ok {
			i.raise(errors.KindUnsupportedFeature, up.Pos(), "Unknown variable declaration "+up.PatternOf)
		}
		ident, ok := d.Name.(*ast.Identifier)
		if !ok {
			i.raise(errors.KindUnsupportedFeature, n.Pos(), "Unknown variable declaration "+d.Name.Kind())
		}

		var v Value = Undefined{}
		if d.Init != nil {
			v = i.Eval(env, d.Init)
		}
		if !env.Declare(ident.Name, v, writable) {
			i.raise(errors.KindName, ident.Pos(), ident.Name+" is already declared")
		}
		last = v
	}
	return last
}

func (i *Interpreter) evalTemplateLiteral(env *Environment, n *ast.TemplateLiteral) Value {
	var sb []byte
	sb = append(sb, n.Quasis[0]...)
	for idx, expr := range n.Expressions {
		v := i.Eval(env, expr)
		sb = append(sb, concatString(v)...)
		sb = append(sb, n.Quasis[idx+1]...)
	}
	return String(sb)
}

func (i *Interpreter) evalArrayLiteral(env *Environment, n *ast.ArrayLiteral) Value {
	arr := &Array{}
	for _, el := range n.Elements {
		if spread, ok := el.(*ast.SpreadElement); ok {
			v := i.Eval(env, spread.Argument)
			sa, ok := v.(*Array)
			if !ok {
				i.raise(errors.KindType, spread.Pos(), "spread element is not an array")
			}
			arr.Elements = append(arr.Elements, sa.Elements...)
			continue
		}
		arr.Elements = append(arr.Elements, i.Eval(env, el))
	}
	return arr
}

func (i *Interpreter) evalObjectLiteral(env *Environment, n *ast.ObjectLiteral) Value {
	obj := NewObject()
	for _, prop := range n.Properties {
		if prop.Spread != nil {
			v := i.Eval(env, prop.Spread)
			so, ok := v.(*Object)
			if !ok {
				i.raise(errors.KindType, prop.Spread.Pos(), "spread element is not an object")
			}
			for _, k := range so.Keys() {
				val, _ := so.OwnGet(k)
				obj.Set(k, val)
			}
			continue
		}
		key := i.objectKeyString(env, prop)
		obj.Set(key, i.Eval(env, prop.Value))
	}
	return obj
}

func (i *Interpreter) objectKeyString(env *Environment, prop ast.ObjectProperty) string {
	if prop.Computed {
		return stringifyKey(i.Eval(env, prop.Key))
	}
	if ident, ok := prop.Key.(*ast.Identifier); ok {
		return ident.Name
	}
	if lit, ok := prop.Key.(*ast.StringLiteral); ok {
		return lit.Value
	}
	return i.Eval(env, prop.Key).String()
}

func (i *Interpreter) makeFunction(env *Environment, lit *ast.FunctionLiteral) *Function {
	if lit.Async {
		i.raise(errors.KindUnsupportedFeature, lit.Pos(), "Async functions are not supported")
	}
	name := ""
	if lit.Name != nil {
		name = lit.Name.Name
	}
	return &Function{Name: name, Params: lit.Params, Body: lit.Body, Env: env, Arrow: lit.Arrow}
}
