package money

import "testing"

func TestParseINR(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"₹3,50,000", 350000, true},
		{"₹ 3,50,000", 350000, true},
		{"Rs. 12,000", 12000, true},
		{"350000", 350000, true},
		{"3.5 Lakh", 350000, true},
		{"2 lac", 200000, true},
		{"1.2 Crore", 12000000, true},
		{"1.2 Cr", 12000000, true},
		{"not a number", 0, false},
		{"", 0, false},
		{"₹", 0, false},
		{"1.2.3 crore", 0, false},
	}

	for _, tc := range cases {
		got, ok := ParseINR(tc.in)
		if ok != tc.ok {
			t.Errorf("ParseINR(%q) ok = %v, want %v", tc.in, ok, tc.ok)
			continue
		}
		if ok && got != tc.want {
			t.Errorf("ParseINR(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
