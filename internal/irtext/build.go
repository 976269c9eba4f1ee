package irtext

import (
	"fmt"
	"strconv"
	"strings"

	"blockmerge/internal/ir"
)

// Parse parses and builds a single expression fixture in one step.
func Parse(name, src string) (ir.Expr, error) {
	sexpr, err := ParseSExpr(name, src)
	if err != nil {
		return nil, err
	}
	return Build(sexpr)
}

// ParseProgram parses a sequence of "(func name body)" forms into an
// *ir.Program.
func ParseProgram(name, src string) (*ir.Program, error) {
	file, err := ParseFile(name, src)
	if err != nil {
		return nil, err
	}
	program := &ir.Program{Name: name}
	for _, f := range file.Funcs {
		if f.Head != "func" {
			return nil, fmt.Errorf("irtext: expected (func name body), got (%s ...)", f.Head)
		}
		if len(f.Args) != 2 || f.Args[0].Ident == nil || f.Args[1].Sub == nil {
			return nil, fmt.Errorf("irtext: func: expected a name and a body")
		}
		body, err := Build(f.Args[1].Sub)
		if err != nil {
			return nil, err
		}
		program.Functions = append(program.Functions, &ir.Function{Name: *f.Args[0].Ident, Body: body})
	}
	return program, nil
}

// Build walks a parsed SExpr into an ir.Expr, the semantic-analysis half
// of this package's two-stage pipeline (grammar.go only produces the
// generic parenthesized shape).
func Build(e *SExpr) (ir.Expr, error) {
	switch e.Head {
	case "block":
		return buildBlock(e)
	case "drop":
		child, err := buildOne(e, 0)
		if err != nil {
			return nil, err
		}
		d := &ir.Drop{Value: child}
		ir.Finalize(d)
		return d, nil
	case "call":
		return buildCall(e)
	case "call_indirect":
		return buildCallIndirect(e)
	case "select":
		return buildSelect(e)
	case "set_local":
		return buildSetLocal(e)
	case "return":
		return buildReturn(e)
	case "break":
		return buildBreak(e)
	case "switch":
		return buildSwitch(e)
	case "atomic.cmpxchg":
		return buildAtomicCmpxchg(e)
	}

	if strings.HasPrefix(e.Head, "atomic.rmw.") {
		return buildAtomicRMW(e)
	}
	if typ, bytes, signed, ok := memOp(e.Head, "load"); ok {
		return buildLoad(e, typ, bytes, signed)
	}
	if _, bytes, _, ok := memOp(e.Head, "store"); ok {
		return buildStore(e, bytes)
	}
	if typ, ok := constType(e.Head); ok {
		return buildConst(e, typ)
	}

	// Everything else is a plain unary/binary arithmetic op named
	// "<type>.<op>", disambiguated purely by how many children it has.
	switch len(e.Args) {
	case 1:
		child, err := buildOne(e, 0)
		if err != nil {
			return nil, err
		}
		u := &ir.Unary{Typ: typePrefix(e.Head), Op: e.Head, Value: child}
		return u, nil
	case 2:
		left, err := buildOne(e, 0)
		if err != nil {
			return nil, err
		}
		right, err := buildOne(e, 1)
		if err != nil {
			return nil, err
		}
		b := &ir.Binary{Typ: typePrefix(e.Head), Op: e.Head, Left: left, Right: right}
		return b, nil
	default:
		return nil, fmt.Errorf("irtext: %s: unrecognized form with %d arguments", e.Head, len(e.Args))
	}
}

func buildBlock(e *SExpr) (ir.Expr, error) {
	args := e.Args
	label := ""
	if len(args) > 0 && args[0].Label != nil {
		label = strings.TrimPrefix(*args[0].Label, "$")
		args = args[1:]
	}
	list := make([]ir.Expr, 0, len(args))
	for _, a := range args {
		if a.Sub == nil {
			return nil, fmt.Errorf("irtext: block: expected a nested form, got a bare atom")
		}
		child, err := Build(a.Sub)
		if err != nil {
			return nil, err
		}
		list = append(list, child)
	}
	b := &ir.Block{Label: label, List: list}
	ir.Finalize(b)
	return b, nil
}

func buildCall(e *SExpr) (ir.Expr, error) {
	if len(e.Args) == 0 || e.Args[0].Str == nil {
		return nil, fmt.Errorf("irtext: call: expected a quoted target name as the first argument")
	}
	target := unquote(*e.Args[0].Str)
	operands, err := buildAll(e, 1)
	if err != nil {
		return nil, err
	}
	return &ir.Call{Typ: ir.TypeI32, Target: target, Operands: operands}, nil
}

func buildCallIndirect(e *SExpr) (ir.Expr, error) {
	if len(e.Args) == 0 {
		return nil, fmt.Errorf("irtext: call_indirect: expected a target form as the last argument")
	}
	operands, err := buildAll(e, 0, len(e.Args)-1)
	if err != nil {
		return nil, err
	}
	target, err := buildOne(e, len(e.Args)-1)
	if err != nil {
		return nil, err
	}
	return &ir.CallIndirect{Typ: ir.TypeI32, Operands: operands, Target: target}, nil
}

func buildSelect(e *SExpr) (ir.Expr, error) {
	if len(e.Args) != 3 {
		return nil, fmt.Errorf("irtext: select: expected 3 arguments (condition ifTrue ifFalse), got %d", len(e.Args))
	}
	cond, err := buildOne(e, 0)
	if err != nil {
		return nil, err
	}
	ifTrue, err := buildOne(e, 1)
	if err != nil {
		return nil, err
	}
	ifFalse, err := buildOne(e, 2)
	if err != nil {
		return nil, err
	}
	return &ir.Select{Typ: ifTrue.ExprType(), Condition: cond, IfTrue: ifTrue, IfFalse: ifFalse}, nil
}

func buildSetLocal(e *SExpr) (ir.Expr, error) {
	if len(e.Args) != 2 || e.Args[0].Int == nil {
		return nil, fmt.Errorf("irtext: set_local: expected an integer index and a value")
	}
	value, err := buildOne(e, 1)
	if err != nil {
		return nil, err
	}
	s := &ir.SetLocal{Index: int(*e.Args[0].Int), Value: value}
	ir.Finalize(s)
	return s, nil
}

func buildReturn(e *SExpr) (ir.Expr, error) {
	r := &ir.Return{}
	if len(e.Args) == 1 {
		value, err := buildOne(e, 0)
		if err != nil {
			return nil, err
		}
		r.Value = value
	}
	ir.Finalize(r)
	return r, nil
}

func buildBreak(e *SExpr) (ir.Expr, error) {
	if len(e.Args) == 0 || e.Args[0].Label == nil {
		return nil, fmt.Errorf("irtext: break: expected a $label as the first argument")
	}
	br := &ir.Break{Target: strings.TrimPrefix(*e.Args[0].Label, "$")}
	for _, a := range e.Args[1:] {
		if a.Sub == nil {
			return nil, fmt.Errorf("irtext: break: expected (cond ...) or (value ...) forms")
		}
		switch a.Sub.Head {
		case "cond":
			cond, err := buildOne(a.Sub, 0)
			if err != nil {
				return nil, err
			}
			br.Condition = cond
		case "value":
			value, err := buildOne(a.Sub, 0)
			if err != nil {
				return nil, err
			}
			br.Value = value
		default:
			return nil, fmt.Errorf("irtext: break: unexpected %q form", a.Sub.Head)
		}
	}
	ir.Finalize(br)
	return br, nil
}

func buildSwitch(e *SExpr) (ir.Expr, error) {
	if len(e.Args) < 3 || e.Args[0].Label == nil || e.Args[1].Sub == nil || e.Args[1].Sub.Head != "targets" {
		return nil, fmt.Errorf("irtext: switch: expected $default, (targets $a $b ...), condition, and optional value")
	}
	s := &ir.Switch{Default: strings.TrimPrefix(*e.Args[0].Label, "$")}
	for _, t := range e.Args[1].Sub.Args {
		if t.Label == nil {
			return nil, fmt.Errorf("irtext: switch: targets must be $labels")
		}
		s.Targets = append(s.Targets, strings.TrimPrefix(*t.Label, "$"))
	}
	cond, err := buildOne(e, 2)
	if err != nil {
		return nil, err
	}
	s.Condition = cond
	if len(e.Args) == 4 {
		value, err := buildOne(e, 3)
		if err != nil {
			return nil, err
		}
		s.Value = value
	}
	ir.Finalize(s)
	return s, nil
}

func buildAtomicRMW(e *SExpr) (ir.Expr, error) {
	if len(e.Args) != 2 {
		return nil, fmt.Errorf("irtext: %s: expected a pointer and a value", e.Head)
	}
	ptr, err := buildOne(e, 0)
	if err != nil {
		return nil, err
	}
	value, err := buildOne(e, 1)
	if err != nil {
		return nil, err
	}
	return &ir.AtomicRMW{Typ: ir.TypeI32, Op: strings.TrimPrefix(e.Head, "atomic.rmw."), Ptr: ptr, Value: value}, nil
}

func buildAtomicCmpxchg(e *SExpr) (ir.Expr, error) {
	if len(e.Args) != 3 {
		return nil, fmt.Errorf("irtext: atomic.cmpxchg: expected a pointer, expected value, and replacement")
	}
	ptr, err := buildOne(e, 0)
	if err != nil {
		return nil, err
	}
	expected, err := buildOne(e, 1)
	if err != nil {
		return nil, err
	}
	replacement, err := buildOne(e, 2)
	if err != nil {
		return nil, err
	}
	return &ir.AtomicCmpxchg{Typ: ir.TypeI32, Ptr: ptr, Expected: expected, Replacement: replacement}, nil
}

func buildLoad(e *SExpr, typ ir.Type, bytes int, signed bool) (ir.Expr, error) {
	ptr, err := buildOne(e, 0)
	if err != nil {
		return nil, err
	}
	return &ir.Load{Typ: typ, Bytes: bytes, Signed: signed, Ptr: ptr}, nil
}

func buildStore(e *SExpr, bytes int) (ir.Expr, error) {
	if len(e.Args) != 2 {
		return nil, fmt.Errorf("irtext: %s: expected a pointer and a value", e.Head)
	}
	ptr, err := buildOne(e, 0)
	if err != nil {
		return nil, err
	}
	value, err := buildOne(e, 1)
	if err != nil {
		return nil, err
	}
	s := &ir.Store{Bytes: bytes, Ptr: ptr, Value: value}
	ir.Finalize(s)
	return s, nil
}

func buildConst(e *SExpr, typ ir.Type) (ir.Expr, error) {
	if len(e.Args) != 1 || e.Args[0].Int == nil {
		return nil, fmt.Errorf("irtext: %s: expected a single integer literal", e.Head)
	}
	return &ir.Const{Typ: typ, Value: *e.Args[0].Int}, nil
}

func buildOne(e *SExpr, i int) (ir.Expr, error) {
	if i >= len(e.Args) || e.Args[i].Sub == nil {
		return nil, fmt.Errorf("irtext: %s: expected a nested form at argument %d", e.Head, i)
	}
	return Build(e.Args[i].Sub)
}

func buildAll(e *SExpr, bounds ...int) ([]ir.Expr, error) {
	start, end := 0, len(e.Args)
	if len(bounds) > 0 {
		start = bounds[0]
	}
	if len(bounds) > 1 {
		end = bounds[1]
	}
	out := make([]ir.Expr, 0, end-start)
	for i := start; i < end; i++ {
		child, err := buildOne(e, i)
		if err != nil {
			return nil, err
		}
		out = append(out, child)
	}
	return out, nil
}

func typePrefix(head string) ir.Type {
	prefix, _, ok := strings.Cut(head, ".")
	if !ok {
		return ir.TypeI32
	}
	switch prefix {
	case "i32":
		return ir.TypeI32
	case "i64":
		return ir.TypeI64
	case "f32":
		return ir.TypeF32
	case "f64":
		return ir.TypeF64
	default:
		return ir.TypeI32
	}
}

func constType(head string) (ir.Type, bool) {
	switch head {
	case "i32.const":
		return ir.TypeI32, true
	case "i64.const":
		return ir.TypeI64, true
	case "f32.const":
		return ir.TypeF32, true
	case "f64.const":
		return ir.TypeF64, true
	default:
		return ir.TypeNone, false
	}
}

// memOp recognizes "<type>.<kind>[<bits>][_s|_u]" heads such as
// "i32.load", "i32.load8_u" or "i64.store32", returning the accessed
// type's width in bytes (defaulting to the type's own width when no
// explicit bit count is present).
func memOp(head, kind string) (ir.Type, int, bool, bool) {
	prefix, rest, ok := strings.Cut(head, ".")
	if !ok || !strings.HasPrefix(rest, kind) {
		return ir.TypeNone, 0, false, false
	}
	typ := typePrefix(head)
	suffix := strings.TrimPrefix(rest, kind)
	signed := true
	if strings.HasSuffix(suffix, "_s") {
		suffix = strings.TrimSuffix(suffix, "_s")
	} else if strings.HasSuffix(suffix, "_u") {
		suffix = strings.TrimSuffix(suffix, "_u")
		signed = false
	}
	bits := 0
	switch prefix {
	case "i32", "f32":
		bits = 32
	case "i64", "f64":
		bits = 64
	}
	if suffix != "" {
		n, err := strconv.Atoi(suffix)
		if err != nil {
			return ir.TypeNone, 0, false, false
		}
		bits = n
	}
	return typ, bits / 8, signed, true
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return strings.ReplaceAll(s, `\"`, `"`)
}
