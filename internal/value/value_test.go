package value

import "testing"

func TestToStringTrimsTrailingZeros(t *testing.T) {
	tests := []struct {
		in   Value
		want string
	}{
		{NewNumber(10.0), "10"},
		{NewNumber(3.140), "3.14"},
		{NumMissing, "."},
		{NewString("hi"), "hi"},
		{StrMissing, ""},
	}
	for _, tt := range tests {
		got := ToString(tt.in)
		if got != tt.want {
			t.Errorf("ToString(%+v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToNumberParsesOrMisses(t *testing.T) {
	tests := []struct {
		in   Value
		want Value
	}{
		{NewString("42"), NewNumber(42)},
		{NewString("3.14"), NewNumber(3.14)},
		{NewString("not a number"), NumMissing},
		{NewString(""), NumMissing},
		{NewNumber(5), NewNumber(5)},
	}
	for _, tt := range tests {
		got := ToNumber(tt.in)
		if got.Missing != tt.want.Missing || (!got.Missing && got.Num != tt.want.Num) {
			t.Errorf("ToNumber(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		in   Value
		want bool
	}{
		{NewNumber(0), false},
		{NumMissing, false},
		{NewNumber(1), true},
		{NewNumber(-1), true},
	}
	for _, tt := range tests {
		if got := Truthy(tt.in); got != tt.want {
			t.Errorf("Truthy(%+v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStringHelpers(t *testing.T) {
	if Upcase("abc") != "ABC" {
		t.Error("Upcase failed")
	}
	if Lowcase("ABC") != "abc" {
		t.Error("Lowcase failed")
	}
	if Trim("abc   ") != "abc" {
		t.Errorf("Trim failed: %q", Trim("abc   "))
	}
	if Left("   abc") != "abc" {
		t.Errorf("Left failed: %q", Left("   abc"))
	}
}
