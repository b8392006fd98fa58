package epass2003

import "testing"

func TestPadUnpadISO9797M2RoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		{0x01},
		{0x3F, 0x00},
		[]byte("HELLO"),
		make([]byte, 15),
		make([]byte, 16),
		make([]byte, 17),
	}
	for _, c := range cases {
		for _, blockSize := range []int{8, 16} {
			padded := padISO9797M2(c, blockSize)
			if len(padded)%blockSize != 0 {
				t.Fatalf("padded length %d not a multiple of block size %d", len(padded), blockSize)
			}
			got, err := unpadISO9797M2(padded)
			if err != nil {
				t.Fatalf("unpad error for %v (block %d): %v", c, blockSize, err)
			}
			if len(got) != len(c) {
				t.Fatalf("round trip length mismatch: want %d got %d", len(c), len(got))
			}
		}
	}
}

func TestUnpadISO9797M2RejectsAllZero(t *testing.T) {
	if _, err := unpadISO9797M2(make([]byte, 16)); err == nil {
		t.Fatal("expected error for all-zero padded buffer")
	}
}

func TestUnpadISO9797M2RejectsEmptyWithoutPanicking(t *testing.T) {
	if _, err := unpadISO9797M2(nil); err == nil {
		t.Fatal("expected error for empty buffer")
	}
	if _, err := unpadISO9797M2([]byte{}); err == nil {
		t.Fatal("expected error for empty buffer")
	}
}

func TestExpand2KeyTDESLayout(t *testing.T) {
	key16 := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	key24 := expand2KeyTDES(key16)
	if len(key24) != 24 {
		t.Fatalf("expected 24-byte key, got %d", len(key24))
	}
	for i := 0; i < 8; i++ {
		if key24[16+i] != key16[i] {
			t.Fatalf("K1 not repeated at offset 16+%d: want %d got %d", i, key16[i], key24[16+i])
		}
	}
}

func TestAlgorithmBlockSize(t *testing.T) {
	if AlgAES128.BlockSize() != 16 {
		t.Fatalf("AES block size: want 16 got %d", AlgAES128.BlockSize())
	}
	if AlgTDES2Key.BlockSize() != 8 {
		t.Fatalf("3DES block size: want 8 got %d", AlgTDES2Key.BlockSize())
	}
}
