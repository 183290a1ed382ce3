package lower

import (
	"fmt"

	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/lir"
	"github.com/lumen-lang/lumen/pkg/types"
	"github.com/lumen-lang/lumen/pkg/value"
)

// Lower translates a parsed and type-checked Program into an *lir.Module.
// It is total: internal panics are recovered and reported as Error{Kind:
// ErrInternal} rather than propagating (spec.md §4.8 "lower_safe").
func Lower(prog *ast.Program, typed *types.Result, docHash string) (mod *lir.Module, err error) {
	defer func() {
		if r := recover(); r != nil {
			mod = nil
			err = &Error{Kind: ErrInternal, Cell: "<module>", Message: fmt.Sprintf("%v", r)}
		}
	}()

	m := lir.NewModule(docHash)

	var lambdaCells []lir.Cell

	for _, item := range prog.Items {
		switch it := item.(type) {
		case *ast.RecordDef:
			m.Types = append(m.Types, recordDescriptor(it))
		case *ast.EnumDef:
			m.Types = append(m.Types, enumDescriptor(it))
		case *ast.EffectDef:
			m.Effects = append(m.Effects, effectDescriptor(it))
		case *ast.HandlerDef:
			cell, lowerErr := lowerHandler(it, typed, &lambdaCells)
			if lowerErr != nil {
				return nil, lowerErr
			}

			m.Cells = append(m.Cells, cell)
			m.Handlers = append(m.Handlers, lir.HandlerDescriptor{Name: it.Name, Effects: it.Effects, Cell: it.Name})

			for _, eff := range it.Effects {
				m.Binds = append(m.Binds, lir.EffectBind{Effect: eff, Handler: it.Name})
			}
		case *ast.CellDef:
			cell, lowerErr := lowerCell(it, typed, &lambdaCells)
			if lowerErr != nil {
				return nil, lowerErr
			}

			m.Cells = append(m.Cells, cell)
		case *ast.ProcessDef:
			cell, lowerErr := lowerProcess(it, typed, &lambdaCells)
			if lowerErr != nil {
				return nil, lowerErr
			}

			m.Cells = append(m.Cells, cell)
		}
	}

	// Lambda bodies lower to synthetic sibling cells (see lowerLambda); they
	// are appended after the pass above has assigned every declared cell's
	// identity, so synthetic names never collide with a user-declared one.
	m.Cells = append(m.Cells, lambdaCells...)

	if err := lir.Validate(m); err != nil {
		return nil, err
	}

	return m, nil
}

func recordDescriptor(d *ast.RecordDef) lir.TypeDescriptor {
	fields := make([]lir.FieldDescriptor, len(d.Fields))
	for i, f := range d.Fields {
		fields[i] = lir.FieldDescriptor{Name: f.Name, Type: typeExprName(f.Type)}
	}

	return lir.TypeDescriptor{Name: d.Name, Fields: fields}
}

func enumDescriptor(d *ast.EnumDef) lir.TypeDescriptor {
	variants := make([]string, len(d.Variants))
	for i, v := range d.Variants {
		variants[i] = v.Name
	}

	return lir.TypeDescriptor{Name: d.Name, IsEnum: true, Variants: variants}
}

func effectDescriptor(d *ast.EffectDef) lir.EffectDescriptor {
	params := make([]string, len(d.Params))
	for i, p := range d.Params {
		params[i] = p.Name
	}

	return lir.EffectDescriptor{Name: d.Name, Params: params, ReturnType: typeExprName(d.ReturnType)}
}

func typeExprName(t ast.TypeExpr) string {
	if t == nil {
		return ""
	}

	if n, ok := t.(*ast.NamedType); ok {
		return n.Name
	}

	return "?"
}

func lowerCell(d *ast.CellDef, typed *types.Result, lambdas *[]lir.Cell) (cell lir.Cell, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Kind: ErrInternal, Cell: d.Name, Message: fmt.Sprintf("%v", r)}
		}
	}()

	lw := newCellLowerer(d.Name, typed, lambdas)

	for _, p := range d.Params {
		lw.regs.bind(p.Name)
	}

	lw.lowerBlock(d.Body)
	lw.ensureTerminated()

	return lw.finish(d.Name, paramNames(d.Params), typeExprName(d.ReturnType))
}

func lowerProcess(d *ast.ProcessDef, typed *types.Result, lambdas *[]lir.Cell) (cell lir.Cell, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Kind: ErrInternal, Cell: d.Name, Message: fmt.Sprintf("%v", r)}
		}
	}()

	lw := newCellLowerer(d.Name, typed, lambdas)

	for _, p := range d.Params {
		lw.regs.bind(p.Name)
	}

	lw.lowerBlock(d.Body)
	lw.ensureTerminated()

	return lw.finish(d.Name, paramNames(d.Params), "")
}

func lowerHandler(d *ast.HandlerDef, typed *types.Result, lambdas *[]lir.Cell) (cell lir.Cell, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Kind: ErrInternal, Cell: d.Name, Message: fmt.Sprintf("%v", r)}
		}
	}()

	lw := newCellLowerer(d.Name, typed, lambdas)
	lw.lowerBlock(d.Body)
	lw.ensureTerminated()

	return lw.finish(d.Name, nil, "")
}

func paramNames(params []ast.Param) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}

	return names
}

// cellLowerer holds the mutable state threaded through lowering a single
// cell's body: its register allocator, constant pool, the instruction
// sequence under construction, and any open backpatch targets.
type cellLowerer struct {
	name    string
	typed   *types.Result
	regs    *regAlloc
	consts  *constPool
	instrs  []lir.Instruction
	lambdas *[]lir.Cell // shared sink for synthetic lambda-body cells, see lowerLambda
}

func newCellLowerer(name string, typed *types.Result, lambdas *[]lir.Cell) *cellLowerer {
	return &cellLowerer{name: name, typed: typed, regs: &regAlloc{}, consts: newConstPool(), lambdas: lambdas}
}

func (lw *cellLowerer) emit(i lir.Instruction) int {
	lw.instrs = append(lw.instrs, i)
	return len(lw.instrs) - 1
}

// patchTo backpatches the jump target field of the instruction at idx to
// point at the current end of the instruction stream.
func (lw *cellLowerer) patchTo(idx int) {
	here := int64(len(lw.instrs))
	instr := &lw.instrs[idx]

	switch instr.Op {
	case lir.OpJump:
		instr.A = here
	default: // OpJumpIfTrue, OpJumpIfFalse
		instr.B = here
	}
}

func (lw *cellLowerer) here() int64 { return int64(len(lw.instrs)) }

// ensureTerminated appends an implicit `return null` if the body fell off
// the end without an explicit return (spec.md §4.8 "Tail calls in return
// position emit a TailCall op" implies every path terminates in Return or
// TailCall; this covers the unit-return fallthrough case).
func (lw *cellLowerer) ensureTerminated() {
	if len(lw.instrs) > 0 {
		last := lw.instrs[len(lw.instrs)-1].Op
		if last == lir.OpReturn || last == lir.OpTailCall || last == lir.OpHalt {
			return
		}
	}

	reg := lw.regs.alloc()
	lw.emit(lir.Instruction{Op: lir.OpLoadNull, A: reg})
	lw.emit(lir.Instruction{Op: lir.OpReturn, A: reg})
}

func (lw *cellLowerer) finish(name string, params []string, returnType string) (lir.Cell, error) {
	width := lir.Width32
	if lw.regs.registers() > lir.Width32.RegisterWidth()+1 || int64(len(lw.consts.values)) > lir.Width32.ConstantWidth()+1 {
		width = lir.Width64
	}

	if lw.regs.registers() > lir.Width64.RegisterWidth()+1 {
		return lir.Cell{}, &Error{Kind: ErrRegisterBudget, Cell: name,
			Message: fmt.Sprintf("register high-water mark %d exceeds 64-bit encoding width", lw.regs.registers())}
	}

	return lir.Cell{
		Name:       name,
		Params:     params,
		ReturnType: returnType,
		Registers:  lw.regs.registers(),
		Width:      width,
		Constants:  lw.consts.values,
		Instrs:     lw.instrs,
	}, nil
}

func (lw *cellLowerer) loadConst(v value.Value, dest int64) {
	idx := lw.consts.intern(v)
	lw.emit(lir.Instruction{Op: lir.OpLoadK, A: dest, B: idx})
}
