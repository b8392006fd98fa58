package epass2003

// FIDStep is the scaling factor the FID hook applies to the low byte of a
// file id whose high byte collides with the card's SFI encoding.
const FIDStep = 0x20

// hookedHighBytes is the set of FID high bytes that require the physical
// transform on the wire.
var hookedHighBytes = map[byte]bool{
	0x29: true, 0x30: true, 0x31: true,
	0x32: true, 0x33: true, 0x34: true,
}

// HookFID converts a logical (h, l) file id to its physical, on-the-wire
// form: if h is in the hooked set, l is multiplied by FIDStep. Called on
// every SELECT and every CREATE/DELETE that carries a file id.
func HookFID(h, l byte) (byte, byte) {
	if hookedHighBytes[h] {
		return h, l * FIDStep
	}
	return h, l
}

// UnhookFID is HookFID's inverse, applied to file ids read back from the
// card (e.g. in a parsed FCI's 0x83 tag), dividing the low byte by FIDStep.
func UnhookFID(h, l byte) (byte, byte) {
	if hookedHighBytes[h] {
		return h, l / FIDStep
	}
	return h, l
}
