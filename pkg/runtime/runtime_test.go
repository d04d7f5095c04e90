package runtime

import (
	"errors"
	"testing"
)

func TestScopeDeclareShadowsParent(t *testing.T) {
	root := NewScope(nil)
	if err := root.Declare("x", NumericValue{Val: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	child := NewScope(root)
	if err := child.Declare("x", NumericValue{Val: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, _ := root.Read("x")
	if v.(NumericValue).Val != 1 {
		t.Fatalf("expected outer x to stay 1, got %#v", v)
	}
	v, _ = child.Read("x")
	if v.(NumericValue).Val != 2 {
		t.Fatalf("expected inner x to be 2, got %#v", v)
	}
}

func TestScopeWriteWalksChain(t *testing.T) {
	root := NewScope(nil)
	_ = root.Declare("x", NumericValue{Val: 1})
	child := NewScope(NewScope(root))

	if err := child.Write("x", NumericValue{Val: 5}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if child.Contains("x") {
		t.Fatalf("write must not declare in the current scope")
	}
	v, _ := root.Read("x")
	if v.(NumericValue).Val != 5 {
		t.Fatalf("expected root x to be 5, got %#v", v)
	}
}

func TestScopeUndefined(t *testing.T) {
	s := NewScope(NewScope(nil))
	if err := s.Write("missing", Null); !errors.Is(err, ErrUndefinedVariable) {
		t.Fatalf("expected undefined variable error, got %v", err)
	}
	if _, err := s.Read("missing"); !errors.Is(err, ErrUndefinedVariable) {
		t.Fatalf("expected undefined variable error, got %v", err)
	}
}

func TestScopeLock(t *testing.T) {
	s := NewScope(nil)
	_ = s.Declare("field", NumericValue{Val: 1})
	s.Lock()

	if err := s.Declare("other", Null); !errors.Is(err, ErrLockedScope) {
		t.Fatalf("expected locked scope error, got %v", err)
	}
	if err := s.Set("field", NumericValue{Val: 2}); err != nil {
		t.Fatalf("existing bindings stay writable: %v", err)
	}
	if err := s.Set("fresh", Null); !errors.Is(err, ErrLockedScope) {
		t.Fatalf("expected locked scope error, got %v", err)
	}
}

func TestTruthy(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{NumericValue{Val: 0}, false},
		{NumericValue{Val: -2}, true},
		{BooleanValue{Val: false}, false},
		{BooleanValue{Val: true}, true},
		{Null, false},
		{StringValue{Val: ""}, true},
		{NewArray(), true},
	}
	for _, tc := range cases {
		if got := Truthy(tc.v); got != tc.want {
			t.Fatalf("Truthy(%#v) = %v, want %v", tc.v, got, tc.want)
		}
	}
}

func TestBinary(t *testing.T) {
	num := func(f float64) Value { return NumericValue{Val: f} }
	str := func(s string) Value { return StringValue{Val: s} }
	cases := []struct {
		op          string
		left, right Value
		want        string
	}{
		{"+", num(1), num(2), "3"},
		{"-", num(1), num(2.5), "-1.5"},
		{"*", num(4), num(2.5), "10"},
		{"/", num(1), num(4), "0.25"},
		{"/", num(1), num(0), "Infinity"},
		{"%", num(7), num(3), "1"},
		{"%", num(-7), num(3), "2"},
		{"**", num(2), num(10), "1024"},
		{"+", str("a"), num(1), "a1"},
		{"+", num(1), str("a"), "1a"},
		{"+", str("x"), Null, "xnull"},
		{"*", str("ab"), num(3), "ababab"},
		{"+", NewArray(num(1)), NewArray(str("b")), `[1, "b"]`},
	}
	for _, tc := range cases {
		got, err := Binary(tc.op, tc.left, tc.right)
		if err != nil {
			t.Fatalf("%v %s %v: unexpected error: %v", tc.left, tc.op, tc.right, err)
		}
		if s := Stringify(got); s != tc.want {
			t.Fatalf("%v %s %v = %s, want %s", tc.left, tc.op, tc.right, s, tc.want)
		}
	}
}

func TestBinaryInvalidType(t *testing.T) {
	if _, err := Binary("-", StringValue{Val: "a"}, NumericValue{Val: 1}); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected invalid type error, got %v", err)
	}
	if _, err := Binary("+", BooleanValue{Val: true}, NumericValue{Val: 1}); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected invalid type error, got %v", err)
	}
}

func TestCompare(t *testing.T) {
	num := func(f float64) Value { return NumericValue{Val: f} }
	cases := []struct {
		op          string
		left, right Value
		want        bool
	}{
		{"<", num(1), num(2), true},
		{">=", num(2), num(2), true},
		{">", StringValue{Val: "b"}, StringValue{Val: "a"}, true},
		{"==", num(1), StringValue{Val: "1"}, false},
		{"!=", Null, Null, false},
		{"==", NewArray(num(1), num(2)), NewArray(num(1), num(2)), true},
		{"==", NewArray(num(1), num(2)), NewArray(num(1), num(3)), false},
		{"==", NewArray(num(1), num(2)), NewArray(num(1)), false},
	}
	for _, tc := range cases {
		got, err := Compare(tc.op, tc.left, tc.right)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.(BooleanValue).Val != tc.want {
			t.Fatalf("%s %s %s = %v, want %v", Stringify(tc.left), tc.op, Stringify(tc.right), !tc.want, tc.want)
		}
	}
	if _, err := Compare("<", num(1), StringValue{Val: "a"}); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected invalid type error, got %v", err)
	}
}

func TestEqualIdentityForReferences(t *testing.T) {
	fn := &FunctionValue{Name: "f"}
	other := &FunctionValue{Name: "f"}
	if !Equal(fn, fn) || Equal(fn, other) {
		t.Fatalf("functions compare by identity")
	}
}

func TestSessionRecordsOrder(t *testing.T) {
	s := NewSession()
	s.Record("/a", Null)
	s.Record("/b", NumericValue{Val: 1})
	s.Record("/a", NumericValue{Val: 2})

	if files := s.Files(); len(files) != 2 || files[0] != "/a" || files[1] != "/b" {
		t.Fatalf("unexpected files %v", files)
	}
	v, ok := s.ReturnValue("/a")
	if !ok || v.(NumericValue).Val != 2 {
		t.Fatalf("unexpected value %#v", v)
	}
	if s.Has("/c") {
		t.Fatalf("unexpected file /c")
	}
}

func TestSessionForget(t *testing.T) {
	s := NewSession()
	s.Record("/a", Null)
	s.Record("/b", Null)
	s.Forget("/a")
	s.Forget("/missing")
	if s.Has("/a") {
		t.Fatalf("expected /a to be forgotten")
	}
	if files := s.Files(); len(files) != 1 || files[0] != "/b" {
		t.Fatalf("unexpected files %v", files)
	}
}

func TestEqualSelfReferencingArrays(t *testing.T) {
	a := NewArray(NumericValue{Val: 1}, nil)
	a.Elements[1] = a
	b := NewArray(NumericValue{Val: 1}, nil)
	b.Elements[1] = b
	if !Equal(a, b) {
		t.Fatalf("expected structurally equal cyclic arrays")
	}
	c := NewArray(NumericValue{Val: 2}, nil)
	c.Elements[1] = c
	if Equal(a, c) {
		t.Fatalf("expected cyclic arrays with different elements to differ")
	}
}

func TestStringify(t *testing.T) {
	arr := NewArray(NumericValue{Val: 1.5}, StringValue{Val: "x"}, Null)
	arr.Elements = append(arr.Elements, arr)
	if got := Stringify(arr); got != `[1.5, "x", null, [...]]` {
		t.Fatalf("unexpected %s", got)
	}
	if got := Stringify(NumericValue{Val: 3}); got != "3" {
		t.Fatalf("unexpected %s", got)
	}
}
