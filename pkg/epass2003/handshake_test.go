package epass2003

import "testing"

// buildHandshakeFixture computes the R block and expected host cryptogram
// for a given (initKeyEnc, initKeyMac, HR, CR) tuple by running the same
// derivation Establish uses, so tests can assert Establish accepts a
// correctly-computed cryptogram and rejects a tampered one.
func buildHandshakeFixture(t *testing.T, alg Algorithm, initKeyEnc, initKeyMAC [16]byte, hr8, cr []byte) (r []byte, hostCrypt []byte) {
	t.Helper()

	dd := make([]byte, 16)
	copy(dd[0:4], cr[4:8]) // R[16:20] == CR[4:8]
	copy(dd[4:8], hr8[0:4])
	copy(dd[8:12], cr[0:4]) // R[12:16] == CR[0:4]
	copy(dd[12:16], hr8[4:8])

	sEnc, err := ecbEncrypt(alg, initKeyEnc[:], dd)
	if err != nil {
		t.Fatalf("ecbEncrypt: %v", err)
	}

	pad := append(append([]byte{}, hr8...), cr...)
	pad = padISO9797M2(pad, alg.BlockSize())
	iv := make([]byte, alg.BlockSize())
	cbc, err := cbcEncrypt(alg, sEnc, iv, pad)
	if err != nil {
		t.Fatalf("cbcEncrypt: %v", err)
	}
	blockSize := alg.BlockSize()
	hostCrypt = cbc[len(cbc)-blockSize:][:8]

	r = make([]byte, 28)
	copy(r[12:20], cr)
	copy(r[20:28], hostCrypt)
	return r, hostCrypt
}

func TestEstablishAESHandshakeSucceedsWithCorrectCryptogram(t *testing.T) {
	var initKeyEnc, initKeyMAC [16]byte
	for i := 0; i < 16; i++ {
		initKeyEnc[i] = byte(i + 1)
		initKeyMAC[i] = byte(i + 1)
	}
	hr := [16]byte{0xBF, 0xC3, 0x29, 0x11, 0xC7, 0x18, 0xC3, 0x40}
	cr := []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}

	r, _ := buildHandshakeFixture(t, AlgAES128, initKeyEnc, initKeyMAC, hr[:8], cr)

	card := &fakeCard{responses: [][]byte{
		{0x00, 0x00, 0x01, 0x90, 0x00},            // GET DATA(0x86): FIPS byte = AES
		append(append([]byte{}, r...), 0x90, 0x00), // INITIALIZE-UPDATE
		{0x90, 0x00},                               // EXTERNAL-AUTHENTICATE
	}}

	sess, err := Establish(card, initKeyEnc, initKeyMAC, hr)
	if err != nil {
		t.Fatalf("Establish failed: %v", err)
	}
	if sess.Mode() != SMSCP01 {
		t.Fatal("expected SMSCP01 after successful handshake")
	}
	if sess.Algorithm() != AlgAES128 {
		t.Fatal("expected AES128 algorithm")
	}
}

func TestDetectAlgorithmSendsP1One(t *testing.T) {
	card := &fakeCard{responses: [][]byte{
		{0x00, 0x00, 0x01, 0x90, 0x00}, // GET DATA(0x86): FIPS byte = AES
	}}
	if _, err := detectAlgorithm(card); err != nil {
		t.Fatalf("detectAlgorithm failed: %v", err)
	}
	sent := card.sent[0]
	if sent[2] != 0x01 {
		t.Fatalf("GET DATA P1 = %#02x, want 0x01", sent[2])
	}
	if sent[3] != getDataFIPSModeTag {
		t.Fatalf("GET DATA P2 = %#02x, want %#02x", sent[3], getDataFIPSModeTag)
	}
}

func TestEstablishRejectsTamperedCryptogram(t *testing.T) {
	var initKeyEnc, initKeyMAC [16]byte
	for i := 0; i < 16; i++ {
		initKeyEnc[i] = byte(i + 1)
		initKeyMAC[i] = byte(i + 1)
	}
	hr := [16]byte{0xBF, 0xC3, 0x29, 0x11, 0xC7, 0x18, 0xC3, 0x40}
	cr := []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}

	r, _ := buildHandshakeFixture(t, AlgAES128, initKeyEnc, initKeyMAC, hr[:8], cr)
	r[20] ^= 0xFF // tamper with the card cryptogram

	card := &fakeCard{responses: [][]byte{
		{0x00, 0x00, 0x01, 0x90, 0x00},
		append(append([]byte{}, r...), 0x90, 0x00),
	}}

	if _, err := Establish(card, initKeyEnc, initKeyMAC, hr); err == nil {
		t.Fatal("expected Establish to fail on tampered cryptogram")
	}
}

func TestEstablishRejectsAlteredKeys(t *testing.T) {
	var initKeyEnc, initKeyMAC, wrongEnc [16]byte
	for i := 0; i < 16; i++ {
		initKeyEnc[i] = byte(i + 1)
		initKeyMAC[i] = byte(i + 1)
		wrongEnc[i] = byte(i + 2)
	}
	hr := [16]byte{0xBF, 0xC3, 0x29, 0x11, 0xC7, 0x18, 0xC3, 0x40}
	cr := []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}

	r, _ := buildHandshakeFixture(t, AlgAES128, initKeyEnc, initKeyMAC, hr[:8], cr)

	card := &fakeCard{responses: [][]byte{
		{0x00, 0x00, 0x01, 0x90, 0x00},
		append(append([]byte{}, r...), 0x90, 0x00),
	}}

	if _, err := Establish(card, wrongEnc, initKeyMAC, hr); err == nil {
		t.Fatal("expected Establish to fail when init_key_enc does not match the cryptogram's key")
	}
}
