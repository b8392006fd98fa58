package epass2003

// buildPlainAPDU assembles a standard ISO/IEC 7816-4 case-1/2/3/4 command
// APDU from apdu's fields, following the same CLA/INS/P1/P2/Lc/Data/Le
// layout used throughout card-epass2003.c's unwrapped command construction.
// Used only while sess is in SMPlain mode (pre-handshake GET DATA probes,
// or a caller that has not yet established a secure channel).
func buildPlainAPDU(apdu PlainAPDU) []byte {
	out := []byte{apdu.CLA, apdu.INS, apdu.P1, apdu.P2}
	extended := len(apdu.Data) > 0xFF || apdu.Le > 0xFF
	switch {
	case len(apdu.Data) > 0:
		if extended {
			out = append(out, 0x00, byte(len(apdu.Data)>>8), byte(len(apdu.Data)))
			out = append(out, apdu.Data...)
			if apdu.Le > 0 {
				out = append(out, byte(apdu.Le>>8), byte(apdu.Le))
			}
		} else {
			out = append(out, byte(len(apdu.Data)))
			out = append(out, apdu.Data...)
			if apdu.Le > 0 {
				out = append(out, byte(apdu.Le))
			}
		}
	case apdu.Le > 0:
		if extended {
			out = append(out, 0x00, byte(apdu.Le>>8), byte(apdu.Le))
		} else {
			out = append(out, byte(apdu.Le))
		}
	}
	return out
}

// transact runs one logical command against card under sess: in SMSCP01
// mode it wraps apdu, transmits, and unwraps the response; in SMPlain mode
// it transmits the bare APDU. The session mutex is held for the entire
// round trip. A transport failure after the ICV has already been
// incremented poisons the session — the caller sees the error and must
// re-run Establish before further use.
func transact(card Card, sess *SessionState, apdu PlainAPDU) ([]byte, uint16, error) {
	sess.Lock()
	defer sess.Unlock()

	if sess.mode == SMPlain {
		resp, sw, err := Transmit(card, buildPlainAPDU(apdu))
		if err != nil {
			return nil, 0, &TransportError{Op: "transact", Err: err}
		}
		return resp, sw, nil
	}

	wrapped, err := Wrap(sess, apdu)
	if err != nil {
		sess.poison()
		return nil, 0, err
	}
	raw, transportSW, err := Transmit(card, wrapped)
	if err != nil {
		sess.poison()
		return nil, 0, &TransportError{Op: "transact", Err: err}
	}
	plain, logicalSW, err := Unwrap(sess, raw, transportSW)
	if err != nil {
		return nil, transportSW, err
	}
	return plain, logicalSW, nil
}
