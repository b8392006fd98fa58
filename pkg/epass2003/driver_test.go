package epass2003

import "testing"

func TestDriverErase(t *testing.T) {
	mf := &File{FID: [2]byte{0x3F, 0x00}, Type: FileTypeDF}
	card := &fakeCard{responses: [][]byte{
		fciResponseFor(mf),
		{0x90, 0x00}, // DELETE
	}}
	d := NewDriver(card, plainSession())

	if err := d.Erase(); err != nil {
		t.Fatalf("Erase failed: %v", err)
	}
	if len(card.sent) != 2 {
		t.Fatalf("expected 2 APDUs (SELECT + DELETE), got %d", len(card.sent))
	}
}

func TestDriverGetSerial(t *testing.T) {
	card := &fakeCard{responses: [][]byte{
		append([]byte{1, 2, 3, 4, 5, 6, 7, 8}, 0x90, 0x00),
	}}
	d := NewDriver(card, plainSession())

	serial, err := d.GetSerial()
	if err != nil {
		t.Fatalf("GetSerial failed: %v", err)
	}
	if len(serial) != 8 {
		t.Fatalf("serial length = %d, want 8", len(serial))
	}
	sent := card.sent[0]
	if sent[1] != insGetSerial || sent[3] != tagSerial {
		t.Fatalf("unexpected GET DATA header: % X", sent[:4])
	}
}

func TestDriverWriteKeyDispatchesRSAFactor(t *testing.T) {
	card := &fakeCard{responses: [][]byte{{0x90, 0x00}}}
	d := NewDriver(card, plainSession())

	req := WriteKeyRequest{
		Kind:      WriteKeyRSA,
		FID:       [2]byte{0x29, 0x01},
		FactorTag: 0x04,
		Factor:    []byte{0x01, 0x02, 0x03, 0x04},
	}
	if err := d.WriteKey(req); err != nil {
		t.Fatalf("WriteKey(RSA factor) failed: %v", err)
	}
	if len(card.sent) != 1 {
		t.Fatalf("expected 1 APDU, got %d", len(card.sent))
	}
}

func TestDriverWriteKeyDispatchesInitKeys(t *testing.T) {
	card := &fakeCard{responses: [][]byte{{0x90, 0x00}, {0x90, 0x00}}}
	d := NewDriver(card, plainSession())

	req := WriteKeyRequest{Kind: WriteKeySecretPre, KID: 0x01}
	if err := d.WriteKey(req); err != nil {
		t.Fatalf("WriteKey(init keys) failed: %v", err)
	}
	if len(card.sent) != 2 {
		t.Fatalf("expected 2 INSTALL SECRET KEY APDUs (enc + mac), got %d", len(card.sent))
	}
}

func TestDriverWriteKeyDispatchesPIN(t *testing.T) {
	card := &fakeCard{responses: [][]byte{{0x90, 0x00}}}
	d := NewDriver(card, plainSession())

	req := WriteKeyRequest{Kind: WriteKeySecretPIN, KID: 0x01, PINMaterial: []byte("0000")}
	if err := d.WriteKey(req); err != nil {
		t.Fatalf("WriteKey(PIN) failed: %v", err)
	}
	if len(card.sent) != 1 {
		t.Fatalf("expected 1 INSTALL SECRET KEY APDU, got %d", len(card.sent))
	}
}

func TestDriverWriteKeyRejectsUnknownKind(t *testing.T) {
	d := NewDriver(&fakeCard{}, plainSession())
	err := d.WriteKey(WriteKeyRequest{Kind: WriteKeyKind(99)})
	if err == nil {
		t.Fatal("expected error for unknown write-key kind")
	}
}

func TestCardCtlDispatchesToEachOperation(t *testing.T) {
	t.Run("WriteKey", func(t *testing.T) {
		card := &fakeCard{responses: [][]byte{{0x90, 0x00}}}
		d := NewDriver(card, plainSession())
		req := WriteKeyRequest{Kind: WriteKeySecretPIN, KID: 0x01, PINMaterial: []byte("0000")}
		if _, err := d.CardCtl(CardCtlWriteKey, &req, nil); err != nil {
			t.Fatalf("CardCtl(WriteKey) failed: %v", err)
		}
	})

	t.Run("MissingWriteKeyRequest", func(t *testing.T) {
		d := NewDriver(&fakeCard{}, plainSession())
		if _, err := d.CardCtl(CardCtlWriteKey, nil, nil); err == nil {
			t.Fatal("expected error when writeKey request is nil")
		}
	})

	t.Run("MissingGenerateKeyRequest", func(t *testing.T) {
		d := NewDriver(&fakeCard{}, plainSession())
		if _, err := d.CardCtl(CardCtlGenerateKey, nil, nil); err == nil {
			t.Fatal("expected error when genKey request is nil")
		}
	})

	t.Run("EraseCard", func(t *testing.T) {
		mf := &File{FID: [2]byte{0x3F, 0x00}, Type: FileTypeDF}
		card := &fakeCard{responses: [][]byte{fciResponseFor(mf), {0x90, 0x00}}}
		d := NewDriver(card, plainSession())
		if _, err := d.CardCtl(CardCtlEraseCard, nil, nil); err != nil {
			t.Fatalf("CardCtl(EraseCard) failed: %v", err)
		}
	})

	t.Run("GetSerialNr", func(t *testing.T) {
		card := &fakeCard{responses: [][]byte{append([]byte{1, 2, 3, 4, 5, 6, 7, 8}, 0x90, 0x00)}}
		d := NewDriver(card, plainSession())
		serial, err := d.CardCtl(CardCtlGetSerialNr, nil, nil)
		if err != nil {
			t.Fatalf("CardCtl(GetSerialNr) failed: %v", err)
		}
		if len(serial) != 8 {
			t.Fatalf("serial length = %d, want 8", len(serial))
		}
	})

	t.Run("UnknownOp", func(t *testing.T) {
		d := NewDriver(&fakeCard{}, plainSession())
		if _, err := d.CardCtl(CardCtlOp(99), nil, nil); err == nil {
			t.Fatal("expected error for unknown card-ctl operation")
		}
	})
}

func TestDriverCloseDoesNotPanicInEitherMode(t *testing.T) {
	NewDriver(&fakeCard{}, plainSession()).Close()
	NewDriver(&fakeCard{}, &SessionState{mode: SMSCP01}).Close()
}
