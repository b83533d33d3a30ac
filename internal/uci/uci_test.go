package uci

import "testing"

func TestParseSetOption(t *testing.T) {
	cases := []struct {
		args  []string
		name  string
		value string
		ok    bool
	}{
		{[]string{"name", "Hash", "value", "64"}, "Hash", "64", true},
		{[]string{"name", "Threads", "value", "4"}, "Threads", "4", true},
		{[]string{"name", "UCI_Variant", "value", "crazyhouse"}, "UCI_Variant", "crazyhouse", true},
		{[]string{"name", "Some", "Long", "Name", "value", "x", "y"}, "Some Long Name", "x y", true},
		{[]string{"name", "Hash"}, "Hash", "", true},
		{[]string{"Hash", "value", "64"}, "", "", false},
		{[]string{"name"}, "", "", false},
		{nil, "", "", false},
	}

	for _, tc := range cases {
		name, value, ok := parseSetOption(tc.args)
		if name != tc.name || value != tc.value || ok != tc.ok {
			t.Errorf("parseSetOption(%v) = (%q, %q, %v), want (%q, %q, %v)",
				tc.args, name, value, ok, tc.name, tc.value, tc.ok)
		}
	}
}
