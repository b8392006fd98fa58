package epass2003

import "testing"

func plainSession() *SessionState {
	return &SessionState{mode: SMPlain}
}

func fciResponseFor(f *File) []byte {
	raw := ConstructFCI(f, f.FID)
	return append(raw, 0x90, 0x00)
}

func TestSelectByFIDSyntheticPrivateKeyFile(t *testing.T) {
	card := &fakeCard{} // no responses queued: a real transmit would fail the test
	fo := NewFileOps(card, plainSession())

	f, err := fo.SelectByFID(0x29, 0x03)
	if err != nil {
		t.Fatalf("SelectByFID failed: %v", err)
	}
	if len(card.sent) != 0 {
		t.Fatalf("expected no APDU to be sent for a synthetic FCI, got %d", len(card.sent))
	}
	if f.FID != [2]byte{0x29, 0x03} {
		t.Fatalf("synthetic FCI FID = %v, want {0x29,0x03}", f.FID)
	}
	if f.Type != FileTypeInternalEF {
		t.Fatalf("synthetic FCI type = %v, want FileTypeInternalEF", f.Type)
	}
}

func TestSelectByPathNormalizesMissingMFPrefix(t *testing.T) {
	mf := &File{FID: [2]byte{0x3F, 0x00}, Type: FileTypeDF}
	df := &File{FID: [2]byte{0x50, 0x00}, Type: FileTypeDF}

	card := &fakeCard{responses: [][]byte{fciResponseFor(mf), fciResponseFor(df)}}
	fo := NewFileOps(card, plainSession())

	f, err := fo.SelectByPath([]byte{0x50, 0x00})
	if err != nil {
		t.Fatalf("SelectByPath failed: %v", err)
	}
	if f.FID != df.FID {
		t.Fatalf("FID = %v, want %v", f.FID, df.FID)
	}
	if len(card.sent) != 2 {
		t.Fatalf("expected 2 SELECTs (MF then DF), got %d", len(card.sent))
	}
}

func TestSelectByPathReusesDFCache(t *testing.T) {
	mf := &File{FID: [2]byte{0x3F, 0x00}, Type: FileTypeDF}
	df := &File{FID: [2]byte{0x50, 0x00}, Type: FileTypeDF}
	ef := &File{FID: [2]byte{0x50, 0x01}, Type: FileTypeWorkingEF, EFStructure: 1}

	card := &fakeCard{responses: [][]byte{fciResponseFor(mf), fciResponseFor(df), fciResponseFor(ef)}}
	fo := NewFileOps(card, plainSession())

	if _, err := fo.SelectByPath([]byte{0x3F, 0x00, 0x50, 0x00}); err != nil {
		t.Fatalf("first SelectByPath failed: %v", err)
	}
	if len(card.sent) != 2 {
		t.Fatalf("expected 2 SELECTs for MF/DF, got %d", len(card.sent))
	}

	f, err := fo.SelectByPath([]byte{0x3F, 0x00, 0x50, 0x00, 0x50, 0x01})
	if err != nil {
		t.Fatalf("second SelectByPath failed: %v", err)
	}
	if f.FID != ef.FID {
		t.Fatalf("FID = %v, want %v", f.FID, ef.FID)
	}
	if len(card.sent) != 3 {
		t.Fatalf("expected only 1 additional SELECT thanks to DF cache, got %d total sent", len(card.sent))
	}
}

func TestSelectByPathRejectsOverlongPath(t *testing.T) {
	fo := NewFileOps(&fakeCard{}, plainSession())
	_, err := fo.SelectByPath([]byte{0x50, 0x00, 0x50, 0x01, 0x50, 0x02, 0x50, 0x03})
	if err == nil {
		t.Fatal("expected error for path longer than 3 components")
	}
}

func TestListFilesEmptyAllZeroResponse(t *testing.T) {
	resp := make([]byte, 0x100+2)
	resp[0x100] = 0x90
	resp[0x101] = 0x00
	card := &fakeCard{responses: [][]byte{resp}}
	fo := NewFileOps(card, plainSession())

	got, err := fo.ListFiles()
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for all-zero 0x100-byte response, got %v", got)
	}
}
