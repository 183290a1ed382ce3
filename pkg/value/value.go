// Package value implements the tagged runtime Value representation shared by
// the register VM, scheduler, and trace store. It is ported field-for-field
// from original_source/rust/lumen-vm/src/values.rs, extended with the Set and
// Tuple variants spec.md's data model names but the original Rust source
// predates.
package value

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/lumen-lang/lumen/pkg/gc"
)

// Kind tags which variant a Value currently holds.
type Kind uint8

// Value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindBytes
	KindList
	KindMap
	KindSet
	KindTuple
	KindRecord
	KindUnion
	KindTraceRef
	KindClosure
	KindContinuation
)

// StringRef is either an interned string ID or an owned Go string.
type StringRef struct {
	Interned bool
	ID       uint32
	Owned    string
}

// Record is a named, field-keyed value.
type Record struct {
	TypeName string
	Fields   map[string]Value
}

// Union is a tagged enum-variant payload.
type Union struct {
	Tag     string
	Payload Value
}

// TraceRef points at a specific event within a trace run.
type TraceRef struct {
	TraceID string
	Seq     uint64
}

// Closure is a cell reference bundled with its captured lexical
// environment, produced by OpMakeClosure and invoked like any other
// callable (spec.md §4.9 "closures: MakeClosure, capture load/store").
type Closure struct {
	Cell     string
	Captures map[string]Value
}

// ContinuationRef is an opaque handle to a captured multi-shot continuation
// snapshot; the snapshot itself is owned and interpreted by the VM (spec.md
// §9 "Multi-shot continuations are provided as a separate opt-in facility").
type ContinuationRef struct {
	ID uint64
}

// Value is the uniform runtime value carried in every register and
// collection slot. Only the field matching Kind is meaningful.
type Value struct {
	Kind   Kind
	Bool   bool
	Int    int64
	Float  float64
	Str    StringRef
	Bytes  []byte
	List   []Value
	Map    map[string]Value
	Set    map[string]Value // keyed by the canonical display form of each element
	Tuple  []Value
	Record  Record
	Union   Union
	Trace        TraceRef
	Closure      Closure
	Continuation ContinuationRef

	// Shared is the refcount header backing collection/record/closure
	// values the VM allocates at runtime (pkg/gc). It is nil for
	// constant-pool literals and any value built outside the VM's heap,
	// which are never mutated in place and so need no accounting.
	Shared *gc.Header `json:"-"`
}

// Header implements gc.Object, exposing Shared to the collector.
func (v Value) Header() *gc.Header { return v.Shared }

// Children implements gc.Object: the heap-kind values this value directly
// references, which the collector recurses into during marking.
func (v Value) Children() []gc.Object {
	switch v.Kind {
	case KindList:
		out := make([]gc.Object, len(v.List))
		for i, e := range v.List {
			out[i] = e
		}

		return out
	case KindTuple:
		out := make([]gc.Object, len(v.Tuple))
		for i, e := range v.Tuple {
			out[i] = e
		}

		return out
	case KindMap:
		out := make([]gc.Object, 0, len(v.Map))
		for _, e := range v.Map {
			out = append(out, e)
		}

		return out
	case KindSet:
		out := make([]gc.Object, 0, len(v.Set))
		for _, e := range v.Set {
			out = append(out, e)
		}

		return out
	case KindRecord:
		out := make([]gc.Object, 0, len(v.Record.Fields))
		for _, e := range v.Record.Fields {
			out = append(out, e)
		}

		return out
	case KindUnion:
		return []gc.Object{v.Union.Payload}
	case KindClosure:
		out := make([]gc.Object, 0, len(v.Closure.Captures))
		for _, e := range v.Closure.Captures {
			out = append(out, e)
		}

		return out
	default:
		return nil
	}
}

// Null is the canonical null value.
var Null = Value{Kind: KindNull}

// NewBool constructs a boolean value.
func NewBool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// NewInt constructs an integer value.
func NewInt(n int64) Value { return Value{Kind: KindInt, Int: n} }

// NewFloat constructs a float value.
func NewFloat(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// NewString constructs an owned string value.
func NewString(s string) Value {
	return Value{Kind: KindString, Str: StringRef{Owned: s}}
}

// NewInterned constructs a string value referring to an interned string ID.
func NewInterned(id uint32) Value {
	return Value{Kind: KindString, Str: StringRef{Interned: true, ID: id}}
}

// NewBytes constructs a bytes value.
func NewBytes(b []byte) Value { return Value{Kind: KindBytes, Bytes: b} }

// NewList constructs a list value.
func NewList(elems []Value) Value { return Value{Kind: KindList, List: elems} }

// NewMap constructs a map value.
func NewMap(m map[string]Value) Value { return Value{Kind: KindMap, Map: m} }

// NewSet constructs a set value.
func NewSet(elems map[string]Value) Value { return Value{Kind: KindSet, Set: elems} }

// NewTuple constructs a tuple value.
func NewTuple(elems []Value) Value { return Value{Kind: KindTuple, Tuple: elems} }

// NewRecord constructs a record value.
func NewRecord(typeName string, fields map[string]Value) Value {
	return Value{Kind: KindRecord, Record: Record{TypeName: typeName, Fields: fields}}
}

// NewUnion constructs a tagged-union value.
func NewUnion(tag string, payload Value) Value {
	return Value{Kind: KindUnion, Union: Union{Tag: tag, Payload: payload}}
}

// NewTraceRef constructs a trace reference value.
func NewTraceRef(traceID string, seq uint64) Value {
	return Value{Kind: KindTraceRef, Trace: TraceRef{TraceID: traceID, Seq: seq}}
}

// NewClosure constructs a closure value over cell with the given captured
// bindings.
func NewClosure(cell string, captures map[string]Value) Value {
	return Value{Kind: KindClosure, Closure: Closure{Cell: cell, Captures: captures}}
}

// NewContinuationRef constructs a continuation handle for id.
func NewContinuationRef(id uint64) Value {
	return Value{Kind: KindContinuation, Continuation: ContinuationRef{ID: id}}
}

// IsTruthy reports whether v is truthy under Lumen's truthiness rules: null,
// false, zero int, zero float, the empty owned string and the empty list
// are falsy;
// everything else (including interned strings, regardless of content) is
// truthy.
func (v Value) IsTruthy() bool {
	switch v.Kind {
	case KindNull:
		return false
	case KindBool:
		return v.Bool
	case KindInt:
		return v.Int != 0
	case KindFloat:
		return v.Float != 0
	case KindString:
		if v.Str.Interned {
			return true
		}

		return v.Str.Owned != ""
	case KindList:
		return len(v.List) > 0
	default:
		return true
	}
}

// AsInt returns v's integer value and true, or (0, false) if v is not Int.
func (v Value) AsInt() (int64, bool) {
	if v.Kind != KindInt {
		return 0, false
	}

	return v.Int, true
}

// AsFloat returns v's value widened to float64, accepting both Int and
// Float.
func (v Value) AsFloat() (float64, bool) {
	switch v.Kind {
	case KindFloat:
		return v.Float, true
	case KindInt:
		return float64(v.Int), true
	default:
		return 0, false
	}
}

// AsList returns v's backing slice and true, or (nil, false) if v is not
// List.
func (v Value) AsList() ([]Value, bool) {
	if v.Kind != KindList {
		return nil, false
	}

	return v.List, true
}

// AsRecord returns v's Record and true, or (Record{}, false) if v is not
// Record.
func (v Value) AsRecord() (Record, bool) {
	if v.Kind != KindRecord {
		return Record{}, false
	}

	return v.Record, true
}

// AsMap returns v's backing map and true, or (nil, false) if v is not Map.
func (v Value) AsMap() (map[string]Value, bool) {
	if v.Kind != KindMap {
		return nil, false
	}

	return v.Map, true
}

// AsString renders v as its canonical textual form: strings render their own
// content; interned strings render as "<interned:N>"; lists, maps and
// records render like DisplayPretty except that nested strings are not
// quoted; every other kind matches DisplayPretty exactly.
func (v Value) AsString() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return formatFloat(v.Float)
	case KindString:
		if v.Str.Interned {
			return fmt.Sprintf("<interned:%d>", v.Str.ID)
		}

		return v.Str.Owned
	case KindBytes:
		return fmt.Sprintf("<bytes:%d>", len(v.Bytes))
	case KindList:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = e.DisplayPretty()
		}

		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		return "{" + joinMapPretty(v.Map, false) + "}"
	case KindRecord:
		fields := joinMapPretty(v.Record.Fields, false)
		return fmt.Sprintf("%s(%s)", v.Record.TypeName, fields)
	case KindUnion:
		if v.Union.Payload.Kind == KindNull {
			return v.Union.Tag
		}

		return fmt.Sprintf("%s(%s)", v.Union.Tag, v.Union.Payload.DisplayPretty())
	case KindTraceRef:
		return fmt.Sprintf("<trace:%s:%d>", v.Trace.TraceID, v.Trace.Seq)
	case KindClosure:
		return fmt.Sprintf("<closure:%s>", v.Closure.Cell)
	case KindContinuation:
		return fmt.Sprintf("<continuation:%d>", v.Continuation.ID)
	default:
		return v.DisplayPretty()
	}
}

// DisplayPretty renders v for user-facing output, quoting nested strings but
// not a top-level string value.
func (v Value) DisplayPretty() string {
	switch v.Kind {
	case KindString:
		if v.Str.Interned {
			return v.AsString()
		}

		return v.Str.Owned
	case KindList:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = e.displayQuoted()
		}

		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		return "{" + joinMapPretty(v.Map, true) + "}"
	case KindSet:
		keys := sortedKeys(v.Set)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = v.Set[k].displayQuoted()
		}

		return "{" + strings.Join(parts, ", ") + "}"
	case KindTuple:
		parts := make([]string, len(v.Tuple))
		for i, e := range v.Tuple {
			parts[i] = e.displayQuoted()
		}

		return "(" + strings.Join(parts, ", ") + ")"
	case KindRecord:
		if len(v.Record.Fields) == 0 {
			return v.Record.TypeName + "()"
		}

		fields := joinMapPretty(v.Record.Fields, true)

		return fmt.Sprintf("%s(%s)", v.Record.TypeName, fields)
	case KindUnion:
		if v.Union.Payload.Kind == KindNull {
			return v.Union.Tag
		}

		return fmt.Sprintf("%s(%s)", v.Union.Tag, v.Union.Payload.DisplayPretty())
	default:
		return v.AsString()
	}
}

func (v Value) displayQuoted() string {
	if v.Kind == KindString && !v.Str.Interned {
		return strconv.Quote(v.Str.Owned)
	}

	return v.DisplayPretty()
}

func sortedKeys(m map[string]Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

func joinMapPretty(m map[string]Value, quoted bool) string {
	keys := sortedKeys(m)
	parts := make([]string, len(keys))

	for i, k := range keys {
		if quoted {
			parts[i] = fmt.Sprintf("%s: %s", k, m[k].displayQuoted())
		} else {
			parts[i] = fmt.Sprintf("%s: %s", k, m[k].DisplayPretty())
		}
	}

	return strings.Join(parts, ", ")
}

func formatFloat(f float64) string {
	if f == math.Floor(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}

	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Equal implements the original's cross-numeric-kind equality: Int and Float
// compare equal when numerically equal, strings compare by owned content,
// lists/maps compare element-wise, and every other pairing (including any
// pairing against Set/Tuple/Record/Union/TraceRef) is unequal.
func (v Value) Equal(other Value) bool {
	switch {
	case v.Kind == KindNull && other.Kind == KindNull:
		return true
	case v.Kind == KindBool && other.Kind == KindBool:
		return v.Bool == other.Bool
	case v.Kind == KindInt && other.Kind == KindInt:
		return v.Int == other.Int
	case v.Kind == KindFloat && other.Kind == KindFloat:
		return v.Float == other.Float
	case v.Kind == KindInt && other.Kind == KindFloat:
		return float64(v.Int) == other.Float
	case v.Kind == KindFloat && other.Kind == KindInt:
		return v.Float == float64(other.Int)
	case v.Kind == KindString && other.Kind == KindString && !v.Str.Interned && !other.Str.Interned:
		return v.Str.Owned == other.Str.Owned
	case v.Kind == KindList && other.Kind == KindList:
		return equalLists(v.List, other.List)
	case v.Kind == KindMap && other.Kind == KindMap:
		return equalMaps(v.Map, other.Map)
	default:
		return false
	}
}

func equalLists(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}

	return true
}

func equalMaps(a, b map[string]Value) bool {
	if len(a) != len(b) {
		return false
	}

	for k, av := range a {
		bv, ok := b[k]
		if !ok || !av.Equal(bv) {
			return false
		}
	}

	return true
}

// String implements fmt.Stringer via DisplayPretty, matching the original's
// Display impl.
func (v Value) String() string { return v.DisplayPretty() }
