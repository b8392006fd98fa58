package epass2003

import "testing"

func TestHookUnhookSymmetryHookedBytes(t *testing.T) {
	for h := range hookedHighBytes {
		for l := byte(0); l < 8; l++ {
			hh, hl := HookFID(h, l)
			uh, ul := UnhookFID(hh, hl)
			if uh != h || ul != l {
				t.Errorf("round trip failed for (%#02x,%#02x): hooked (%#02x,%#02x), unhooked (%#02x,%#02x)", h, l, hh, hl, uh, ul)
			}
		}
	}
}

func TestHookIdentityForUnhookedBytes(t *testing.T) {
	for _, h := range []byte{0x00, 0x3F, 0x50, 0xFF} {
		hh, hl := HookFID(h, 0x07)
		if hh != h || hl != 0x07 {
			t.Errorf("expected identity for unhooked high byte %#02x, got (%#02x,%#02x)", h, hh, hl)
		}
	}
}

// TestFIDHookScenarioS6 is the literal scenario from the testable-properties
// section: selecting 3F 00 50 00 29 03 transforms the last component to
// 3F 00 50 00 29 60 on the wire, and the returned FCI's file id normalizes
// back to 0x2903.
func TestFIDHookScenarioS6(t *testing.T) {
	hh, hl := HookFID(0x29, 0x03)
	if hh != 0x29 || hl != 0x60 {
		t.Fatalf("hook(0x29,0x03) = (%#02x,%#02x), want (0x29,0x60)", hh, hl)
	}
	uh, ul := UnhookFID(0x29, 0x60)
	if uh != 0x29 || ul != 0x03 {
		t.Fatalf("unhook(0x29,0x60) = (%#02x,%#02x), want (0x29,0x03)", uh, ul)
	}
}
