package epass2003

import (
	"bytes"
	"log/slog"
)

// insInitializeUpdate and insExternalAuthenticate are the two handshake
// commands, sent in plain mode with SM temporarily disabled.
const (
	claInitializeUpdate    = 0x80
	insInitializeUpdate    = 0x50
	claExternalAuthenticate = 0x84
	insExternalAuthenticate = 0x82
)

// insGetData / tag 0x86 is queried once, before the handshake, to determine
// the card's algorithm mode (AES vs 3DES) from its FIPS-mode byte.
const (
	insGetData        = 0xCA
	getDataFIPSModeTag = 0x86
)

// Establish runs the two-APDU SCP01-style mutual-authentication handshake
// and returns a ready-to-use SessionState. hr carries the host random; only
// its first 8 bytes are sent and used, the rest are ignored. Callers may supply a fixed value (useful in tests) or an RNG-sourced one —
// Establish does not generate it, to keep the function deterministic and
// testable.
func Establish(card Card, initKeyEnc, initKeyMAC, hr [16]byte) (*SessionState, error) {
	alg, err := detectAlgorithm(card)
	if err != nil {
		return nil, err
	}

	hr8 := hr[:8]

	// 1. INITIALIZE-UPDATE: CLA=0x80, INS=0x50, data=HR[8], Le=28.
	apdu := append([]byte{claInitializeUpdate, insInitializeUpdate, 0x00, 0x00, byte(len(hr8))}, hr8...)
	apdu = append(apdu, 0x1C) // Le=28
	resp, sw, err := Transmit(card, apdu)
	if err != nil {
		return nil, &TransportError{Op: "INITIALIZE-UPDATE", Err: err}
	}
	if !SwOK(sw) {
		return nil, &CardCmdError{Cmd: insInitializeUpdate, SW: sw}
	}
	if len(resp) != 28 {
		return nil, &CardCmdError{Cmd: insInitializeUpdate, Reason: "expected 28-byte response"}
	}
	r := resp
	cr := r[12:20]
	cardCrypt := r[20:28]

	// 2. Derivation data DD = R[16:20] || HR[0:4] || R[12:16] || HR[4:8].
	dd := make([]byte, 16)
	copy(dd[0:4], r[16:20])
	copy(dd[4:8], hr8[0:4])
	copy(dd[8:12], r[12:16])
	copy(dd[12:16], hr8[4:8])

	sEnc, err := ecbEncrypt(alg, initKeyEnc[:], dd)
	if err != nil {
		return nil, err
	}
	sMac, err := ecbEncrypt(alg, initKeyMAC[:], dd)
	if err != nil {
		return nil, err
	}

	// 3. HostCryptogram = last block of CBC_E(s_enc, 0, HR||CR||0x80||zeros).
	blockSize := alg.BlockSize()
	pad := make([]byte, 0, 16+8+1)
	pad = append(pad, hr8...)
	pad = append(pad, cr...)
	pad = padISO9797M2(pad, blockSize)
	if len(pad)%blockSize != 0 {
		pad = padISO9797M2(pad, blockSize)
	}

	iv := make([]byte, blockSize)
	cbc, err := cbcEncrypt(alg, sEnc, iv, pad)
	if err != nil {
		return nil, err
	}
	hostCrypt := cbc[len(cbc)-blockSize:][:8]

	if !bytes.Equal(hostCrypt, cardCrypt) {
		slog.Debug("epass2003: handshake cryptogram mismatch", "host", hostCrypt, "card", cardCrypt)
		return nil, &CardCmdError{Cmd: insInitializeUpdate, Reason: "host/card cryptogram mismatch"}
	}

	// 4. EXTERNAL-AUTHENTICATE.
	x := make([]byte, 0, 16)
	x = append(x, 0x84, 0x82, 0x03, 0x00, 0x10)
	x = append(x, hostCrypt...)
	x = append(x, 0x80, 0x00, 0x00)

	macIV := make([]byte, blockSize)
	macCBC, err := cbcEncrypt(alg, sMac, macIV, x[:16])
	if err != nil {
		return nil, err
	}
	lastBlock := macCBC[len(macCBC)-16:]

	var icvSeed []byte
	if alg == AlgAES128 {
		icvSeed = lastBlock[0:8]
	} else {
		icvSeed = lastBlock[8:16]
	}

	sess := &SessionState{alg: alg}
	copy(sess.sEnc[:], sEnc)
	copy(sess.sMac[:], sMac)
	copy(sess.icvMAC[0:8], icvSeed)

	eaData := append(append([]byte{}, hostCrypt...), icvSeed...)
	eaAPDU := append([]byte{claExternalAuthenticate, insExternalAuthenticate, 0x03, 0x00, byte(len(eaData))}, eaData...)
	_, sw, err = Transmit(card, eaAPDU)
	if err != nil {
		return nil, &TransportError{Op: "EXTERNAL-AUTHENTICATE", Err: err}
	}
	if !SwOK(sw) {
		return nil, &CardCmdError{Cmd: insExternalAuthenticate, SW: sw}
	}

	sess.mode = SMSCP01
	slog.Info("epass2003: secure channel established", "alg", algLabel(alg))
	return sess, nil
}

// detectAlgorithm issues GET DATA(0x86) in plain mode — SM is not yet active
// — and inspects byte[2] of the response: 0x01 selects AES128, anything else
// selects 2-key 3DES.
func detectAlgorithm(card Card) (Algorithm, error) {
	apdu := []byte{0x00, insGetData, 0x01, getDataFIPSModeTag, 0x00}
	resp, sw, err := Transmit(card, apdu)
	if err != nil {
		return 0, &TransportError{Op: "GET DATA(0x86)", Err: err}
	}
	if !SwOK(sw) {
		return 0, &CardCmdError{Cmd: insGetData, SW: sw}
	}
	if len(resp) < 3 {
		return 0, &CardCmdError{Cmd: insGetData, Reason: "FIPS-mode response too short"}
	}
	if resp[2] == 0x01 {
		return AlgAES128, nil
	}
	return AlgTDES2Key, nil
}

func algLabel(alg Algorithm) string {
	if alg == AlgAES128 {
		return "AES128"
	}
	return "TDES-2key"
}
