package value

import "testing"

func TestDisplayPretty_String(t *testing.T) {
	v := NewString("hello")
	if got := v.DisplayPretty(); got != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
}

func TestDisplayPretty_List(t *testing.T) {
	v := NewList([]Value{NewInt(1), NewInt(2), NewInt(3)})
	if got := v.DisplayPretty(); got != "[1, 2, 3]" {
		t.Errorf("got %q, want %q", got, "[1, 2, 3]")
	}
}

func TestDisplayPretty_Record(t *testing.T) {
	v := NewRecord("Person", map[string]Value{
		"name": NewString("Alice"),
		"age":  NewInt(30),
	})

	want := `Person(age: 30, name: "Alice")`
	if got := v.DisplayPretty(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDisplayPretty_Tuple(t *testing.T) {
	v := NewTuple([]Value{NewInt(1), NewString("x")})

	want := `(1, "x")`
	if got := v.DisplayPretty(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDisplayPretty_Union(t *testing.T) {
	some := NewUnion("Some", NewInt(5))
	if got := some.DisplayPretty(); got != "Some(5)" {
		t.Errorf("got %q", got)
	}

	none := NewUnion("None", Null)
	if got := none.DisplayPretty(); got != "None" {
		t.Errorf("got %q", got)
	}
}

func TestTruthiness(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{Null, false},
		{NewBool(false), false},
		{NewBool(true), true},
		{NewInt(0), false},
		{NewInt(1), true},
		{NewString(""), false},
		{NewString("hello"), true},
		{NewInterned(3), true},
		{NewList(nil), false},
		{NewList([]Value{NewInt(1)}), true},
	}

	for _, c := range cases {
		if got := c.v.IsTruthy(); got != c.want {
			t.Errorf("IsTruthy(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestAsHelpers(t *testing.T) {
	if n, ok := NewInt(42).AsInt(); !ok || n != 42 {
		t.Errorf("AsInt: got (%d, %v)", n, ok)
	}

	if f, ok := NewFloat(3.14).AsFloat(); !ok || f != 3.14 {
		t.Errorf("AsFloat: got (%v, %v)", f, ok)
	}

	if f, ok := NewInt(42).AsFloat(); !ok || f != 42.0 {
		t.Errorf("AsFloat widening: got (%v, %v)", f, ok)
	}

	if _, ok := NewList(nil).AsList(); !ok {
		t.Error("AsList: expected ok for empty list")
	}

	if _, ok := Null.AsList(); ok {
		t.Error("AsList: expected not-ok for Null")
	}
}

func TestEqual_CrossNumeric(t *testing.T) {
	if !NewInt(2).Equal(NewFloat(2.0)) {
		t.Error("expected Int(2) == Float(2.0)")
	}

	if !NewFloat(2.0).Equal(NewInt(2)) {
		t.Error("expected Float(2.0) == Int(2)")
	}

	if NewInt(2).Equal(NewInt(3)) {
		t.Error("expected Int(2) != Int(3)")
	}
}

func TestEqual_Lists(t *testing.T) {
	a := NewList([]Value{NewInt(1), NewInt(2)})
	b := NewList([]Value{NewInt(1), NewInt(2)})
	c := NewList([]Value{NewInt(1), NewInt(3)})

	if !a.Equal(b) {
		t.Error("expected equal lists to compare equal")
	}

	if a.Equal(c) {
		t.Error("expected differing lists to compare unequal")
	}
}

func TestFormatFloat(t *testing.T) {
	cases := map[float64]string{
		2.0:  "2.0",
		2.5:  "2.5",
		-1.0: "-1.0",
	}

	for f, want := range cases {
		if got := NewFloat(f).AsString(); got != want {
			t.Errorf("AsString(%v) = %q, want %q", f, got, want)
		}
	}
}
