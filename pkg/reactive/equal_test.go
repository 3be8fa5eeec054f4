package reactive

import (
	"math"
	"testing"
)

func TestSameValue(t *testing.T) {
	slice := []int{1, 2}
	m := map[string]int{"a": 1}
	obj := NewObject()

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"equal ints", 1, 1, true},
		{"different ints", 1, 2, false},
		{"int vs float", 1, 1.0, false},
		{"strings", "a", "a", true},
		{"nil nil", nil, nil, true},
		{"nil vs value", nil, 0, false},
		{"NaN NaN", math.NaN(), math.NaN(), true},
		{"float32 NaN", float32(math.NaN()), float32(math.NaN()), true},
		{"NaN vs number", math.NaN(), 1.0, false},
		{"same object", obj, obj, true},
		{"different objects", obj, NewObject(), false},
		{"same slice", slice, slice, true},
		{"resliced", slice, slice[:1], false},
		{"equal slice contents", slice, []int{1, 2}, false},
		{"same map", m, m, true},
		{"different maps", m, map[string]int{"a": 1}, false},
		{"structs", struct{ X int }{1}, struct{ X int }{1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sameValue(tt.a, tt.b); got != tt.want {
				t.Errorf("sameValue(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
