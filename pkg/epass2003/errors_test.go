package epass2003

import "testing"

func TestSwOK(t *testing.T) {
	if !SwOK(0x9000) {
		t.Error("expected 0x9000 to be OK")
	}
	if SwOK(0x6A82) {
		t.Error("expected 0x6A82 not to be OK")
	}
}

func TestRetriesFromSW(t *testing.T) {
	cases := []struct {
		sw        uint16
		wantTries byte
		wantOK    bool
	}{
		{0x63C0, 0, true},
		{0x63C3, 3, true},
		{0x63CF, 0x0F, true},
		{0x9000, 0, false},
		{0x6A82, 0, false},
		{0x6300, 0, false},
	}
	for _, c := range cases {
		tries, ok := RetriesFromSW(c.sw)
		if ok != c.wantOK || (ok && tries != c.wantTries) {
			t.Errorf("RetriesFromSW(%#04x) = (%d,%v), want (%d,%v)", c.sw, tries, ok, c.wantTries, c.wantOK)
		}
	}
}
