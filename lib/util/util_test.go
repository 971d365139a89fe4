package util

import "testing"

func TestIn(t *testing.T) {
	nets := []string{"testnet", "pubnet"}

	if !In(nets, "pubnet") || In(nets, "futurenet") || In(nil, "testnet") {
		t.Errorf("In failed for %v", nets)
	}

	if !In([]int{1, 2, 3}, 3) {
		t.Errorf("In failed for ints")
	}
}

func TestShort(t *testing.T) {
	cases := []struct{ in, exp string }{
		{"GCFXHS4GXL6BVUCXBWXGTITROWLVYXQKQLF4YH5O5JT3YZXCYPAFBJZB", "GCFX…BJZB"},
		{"short", "short"},
		{"", ""},
	}

	for _, c := range cases {
		if got := Short(c.in); got != c.exp {
			t.Errorf("Short(%s) = %s expected:%s", c.in, got, c.exp)
		}
	}
}
