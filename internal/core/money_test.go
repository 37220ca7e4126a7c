package core

import (
	"encoding/json"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"12.344", 1234, true},
		{" 2.50 ", 250, true},
		{"0", 0, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestParseDecimalToCentsRejectsZero(t *testing.T) {
	if _, err := ParseDecimalToCents("0"); err == nil {
		t.Fatal("expected error for zero")
	}
	got, err := ParseDecimalToCents("300")
	if err != nil || got != 30000 {
		t.Fatalf("expected 30000, got %d (err=%v)", got, err)
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
}

func TestMoneyDivRound(t *testing.T) {
	cases := []struct {
		cents int64
		n     int
		want  int64
	}{
		{1000, 3, 333},
		{1001, 2, 501}, // 500.5 rounds away from zero
		{500, 0, 0},
		{0, 4, 0},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).DivRound(tc.n); got.Cents != tc.want {
			t.Errorf("%d/%d = %d, want %d", tc.cents, tc.n, got.Cents, tc.want)
		}
	}
}

func TestMoneyPercent(t *testing.T) {
	if got := (Money{Cents: 50000}).Percent(Money{Cents: 100000}); got != 50 {
		t.Fatalf("expected 50, got %v", got)
	}
	if got := (Money{Cents: 100}).Percent(Money{Cents: 300}); got != 33.3 {
		t.Fatalf("expected 33.3, got %v", got)
	}
	if got := (Money{Cents: 100}).Percent(Money{}); got != 0 {
		t.Fatalf("expected 0 for zero total, got %v", got)
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Amount Money `json:"amount"`
	}{Money{Cents: 123456}})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"amount":1234.56}` {
		t.Fatalf("unexpected json %s", b)
	}

	var in struct {
		A Money `json:"a"`
		B Money `json:"b"`
		C Money `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":12.5,"b":"7,25","c":null}`), &in); err != nil {
		t.Fatal(err)
	}
	if in.A.Cents != 1250 || in.B.Cents != 725 || in.C.Cents != 0 {
		t.Fatalf("unexpected values %+v", in)
	}
}
