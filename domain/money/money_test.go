package money

import (
	"encoding/json"
	"testing"
)

func TestFromFloatRoundsHalfAwayFromZero(t *testing.T) {
	testCases := []struct {
		name    string
		dollars float64
		want    Amount
	}{
		{"exact", 2.5, 250},
		{"half below even", 0.125, 13},
		{"half above even", 0.625, 63},
		{"below half", 0.124, 12},
		{"negative half", -0.125, -13},
		{"zero", 0, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FromFloat(tc.dollars); got != tc.want {
				t.Fatalf("expected %d cents, got %d", tc.want, got)
			}
		})
	}
}

func TestDecimal(t *testing.T) {
	if got := Cents(41).Decimal(); got != "0.41" {
		t.Errorf("expected 0.41, got %s", got)
	}
	if got := Zero.Decimal(); got != "0.00" {
		t.Errorf("expected 0.00, got %s", got)
	}
	if got := Cents(-50).String(); got != "-$0.50" {
		t.Errorf("expected -$0.50, got %s", got)
	}
	if got := Cents(300).String(); got != "$3.00" {
		t.Errorf("expected $3.00, got %s", got)
	}
}

func TestJSON(t *testing.T) {
	raw, err := json.Marshal(struct {
		Price Amount `json:"price"`
	}{Price: Cents(250)})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if string(raw) != `{"price":2.50}` {
		t.Fatalf("unexpected json %s", raw)
	}

	var decoded struct {
		Price Amount `json:"price"`
	}
	if err := json.Unmarshal([]byte(`{"price":1.25}`), &decoded); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if decoded.Price != 125 {
		t.Fatalf("unexpected amount %d", decoded.Price)
	}
}
