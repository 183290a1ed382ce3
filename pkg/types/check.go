// Package types also hosts the bidirectional type checker described in
// spec.md §4.6: it infers or checks every expression's Type against the
// resolved AST, reports TypeError diagnostics, and records the inferred
// type of every expression node for downstream lowering.
package types

import (
	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/source"
	"go.uber.org/multierr"
)

// Result is the typed-AST side table produced by Check: the declared record/
// enum/cell signatures plus the inferred type of every expression node, keyed
// by pointer identity (AST nodes are never copied after parsing).
type Result struct {
	Records map[string]RecordInfo
	Enums   map[string]EnumInfo
	Cells   map[string]CellInfo
	Exprs   map[ast.Expr]Type
}

// RecordInfo is a checked record's field layout.
type RecordInfo struct {
	Fields []ast.Field
	Types  map[string]Type
}

// EnumInfo is a checked enum's variant set.
type EnumInfo struct {
	Variants map[string]Type // variant name -> payload type (TNull if none)
	Order    []string
}

// CellInfo is a checked cell's signature.
type CellInfo struct {
	Params  []Type
	Return  Type
	MustUse bool
}

func newResult() *Result {
	return &Result{
		Records: map[string]RecordInfo{},
		Enums:   map[string]EnumInfo{},
		Cells:   map[string]CellInfo{},
		Exprs:   map[ast.Expr]Type{},
	}
}

// Check type-checks prog, returning every accumulated error combined into
// one error (nil when there are none).
// Use Partial for incremental/LSP use (spec.md §4.6 mirrors §4.5's
// resolve_partial contract).
func Check(prog *ast.Program) (*Result, error) {
	res, errs := Partial(prog)
	if len(errs) == 0 {
		return res, nil
	}

	var err error
	for _, e := range errs {
		err = multierr.Append(err, e)
	}

	return res, err
}

// Partial type-checks prog as far as possible, returning (result, errors).
func Partial(prog *ast.Program) (*Result, []*Error) {
	c := &checker{res: newResult(), externs: map[string]CellInfo{}}
	c.declareTypes(prog)
	c.declareCells(prog)
	c.checkBodies(prog)

	return c.res, c.errs
}

type checker struct {
	res     *Result
	errs    []*Error
	externs map[string]CellInfo

	// locals is a stack of lexical scopes mapping name -> (type, mutable).
	locals []map[string]localBinding
}

type localBinding struct {
	typ Type
	mut bool
}

func (c *checker) pushScope() { c.locals = append(c.locals, map[string]localBinding{}) }
func (c *checker) popScope()  { c.locals = c.locals[:len(c.locals)-1] }

func (c *checker) declareLocal(name string, t Type, mut bool) {
	c.locals[len(c.locals)-1][name] = localBinding{typ: t, mut: mut}
}

func (c *checker) lookupLocal(name string) (localBinding, bool) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if b, ok := c.locals[i][name]; ok {
			return b, true
		}
	}

	return localBinding{}, false
}

func (c *checker) errorf(kind Kind, span source.Span, msg string) {
	c.errs = append(c.errs, &Error{Kind: kind, Span: span, Message: msg})
}

func (c *checker) mismatch(span source.Span, expected, found Type, msg string) {
	c.errs = append(c.errs, &Error{
		Kind: Mismatch, Span: span, Expected: expected.String(), Found: found.String(), Message: msg,
	})
}

// declareTypes registers every record/enum's field and variant layout,
// resolving field/payload type expressions.
func (c *checker) declareTypes(prog *ast.Program) {
	for _, item := range prog.Items {
		switch it := item.(type) {
		case *ast.RecordDef:
			info := RecordInfo{Fields: it.Fields, Types: map[string]Type{}}
			for _, f := range it.Fields {
				info.Types[f.Name] = c.resolveTypeExpr(f.Type)
			}
			c.res.Records[it.Name] = info
		case *ast.EnumDef:
			info := EnumInfo{Variants: map[string]Type{}}
			for _, v := range it.Variants {
				payload := TNull
				if v.Payload != nil {
					payload = c.resolveTypeExpr(v.Payload)
				}
				info.Variants[v.Name] = payload
				info.Order = append(info.Order, v.Name)
			}
			c.res.Enums[it.Name] = info
		}
	}
}

// declareCells registers every cell/process/extern's signature ahead of
// checking any body, so forward/mutual references type-check.
func (c *checker) declareCells(prog *ast.Program) {
	for _, item := range prog.Items {
		switch it := item.(type) {
		case *ast.CellDef:
			c.res.Cells[it.Name] = c.signatureOf(it.Params, it.ReturnType, it.MustUse)
		case *ast.ProcessDef:
			c.res.Cells[it.Name] = c.signatureOf(it.Params, nil, false)
		case *ast.ExternDecl:
			info := c.signatureOf(it.Params, it.ReturnType, false)
			c.res.Cells[it.Name] = info
			c.externs[it.Name] = info
		}
	}
}

func (c *checker) signatureOf(params []ast.Param, ret ast.TypeExpr, mustUse bool) CellInfo {
	ptypes := make([]Type, len(params))
	for i, p := range params {
		if p.Type != nil {
			ptypes[i] = c.resolveTypeExpr(p.Type)
		} else {
			ptypes[i] = TAny
		}
	}

	rt := TNull
	if ret != nil {
		rt = c.resolveTypeExpr(ret)
	}

	return CellInfo{Params: ptypes, Return: rt, MustUse: mustUse}
}

// resolveTypeExpr converts a syntactic TypeExpr into the checker's Type
// lattice. A named type that is not built in, not a declared record or
// enum, and not a short generic name resolves to a TypeRef; no
// UndefinedType is reported for it.
func (c *checker) resolveTypeExpr(te ast.TypeExpr) Type {
	switch t := te.(type) {
	case *ast.NamedType:
		return c.resolveNamedType(t)
	case *ast.TupleType:
		elems := make([]Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = c.resolveTypeExpr(e)
		}
		return TTuple(elems...)
	case *ast.FnType:
		params := make([]Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = c.resolveTypeExpr(p)
		}

		ret := TNull
		if t.Return != nil {
			ret = c.resolveTypeExpr(t.Return)
		}

		return TFn(params, ret)
	case *ast.UnionType:
		members := make([]Type, len(t.Members))
		for i, m := range t.Members {
			members[i] = c.resolveTypeExpr(m)
		}
		return TUnion(members...)
	default:
		return TAny
	}
}

func (c *checker) resolveNamedType(t *ast.NamedType) Type {
	switch t.Name {
	case "Int":
		return TInt
	case "Float":
		return TFloat
	case "Bool":
		return TBool
	case "Null":
		return TNull
	case "String":
		return TString
	case "Bytes":
		return TBytes
	case "Json":
		return TJson
	case "Any":
		return TAny
	case "List":
		return TList(c.argOrAny(t, 0))
	case "Set":
		return TSet(c.argOrAny(t, 0))
	case "Map":
		return TMap(c.argOrAny(t, 0), c.argOrAny(t, 1))
	case "Result":
		return TResult(c.argOrAny(t, 0), c.argOrAny(t, 1))
	}

	if _, ok := c.res.Records[t.Name]; ok {
		return TRecord(t.Name)
	}

	if _, ok := c.res.Enums[t.Name]; ok {
		return TEnum(t.Name)
	}

	if len(t.Args) == 0 && isLowerGeneric(t.Name) {
		return TGeneric(t.Name)
	}

	args := make([]Type, len(t.Args))
	for i, a := range t.Args {
		args[i] = c.resolveTypeExpr(a)
	}

	return TRef(t.Name, args...)
}

func isLowerGeneric(name string) bool {
	return len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z' && len(name) <= 2
}

func (c *checker) argOrAny(t *ast.NamedType, i int) Type {
	if i < len(t.Args) {
		return c.resolveTypeExpr(t.Args[i])
	}

	return TAny
}
