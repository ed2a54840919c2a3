package detect

import (
	"testing"
)

func TestDetection_Label(t *testing.T) {
	tests := []struct {
		name   string
		det    Detection
		expect string
	}{
		{
			name:   "typical score",
			det:    Detection{Class: "person", Score: 0.873},
			expect: "person 87.3%",
		},
		{
			name:   "full confidence",
			det:    Detection{Class: "dog", Score: 1.0},
			expect: "dog 100.0%",
		},
		{
			name:   "zero confidence",
			det:    Detection{Class: "cat", Score: 0},
			expect: "cat 0.0%",
		},
		{
			name:   "rounds to one decimal",
			det:    Detection{Class: "car", Score: 0.9999},
			expect: "car 100.0%",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.det.Label(); got != tc.expect {
				t.Errorf("Label: got %q, want %q", got, tc.expect)
			}
		})
	}
}

func TestClassName(t *testing.T) {
	tests := []struct {
		name   string
		id     int
		expect string
	}{
		{name: "first class", id: 0, expect: "person"},
		{name: "last class", id: 79, expect: "toothbrush"},
		{name: "negative id", id: -1, expect: "unknown"},
		{name: "out of range", id: 80, expect: "unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassName(tc.id); got != tc.expect {
				t.Errorf("ClassName(%d): got %q, want %q", tc.id, got, tc.expect)
			}
		})
	}
}
