package epass2003

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	"crypto/sha1"
)

// blockCipher algorithm in effect for a session. Chosen once at Establish
// from the card's FIPS-mode byte.
type Algorithm int

const (
	AlgAES128 Algorithm = iota
	AlgTDES2Key
)

// BlockSize returns the cipher block size for alg: 16 for AES-128, 8 for
// 2-key 3DES. The MAC-header padding in Wrap is always 16 bytes regardless
// of alg — that exception lives in smcodec.go, not here; BlockSize reflects
// the true cipher block size everywhere else.
func (a Algorithm) BlockSize() int {
	if a == AlgAES128 {
		return 16
	}
	return 8
}

// expand2KeyTDES builds a 24-byte 3DES key from 16 bytes of key material by
// appending the first 8 bytes onto the end (K1‖K2‖K1).
func expand2KeyTDES(key16 []byte) []byte {
	out := make([]byte, 24)
	copy(out, key16)
	copy(out[16:], key16[:8])
	return out
}

// aesECBEncrypt encrypts block-aligned data with AES-128 in ECB mode, one
// 16-byte block at a time (no padding — callers supply block-aligned input).
func aesECBEncrypt(key, block []byte) ([]byte, error) {
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(block))
	for off := 0; off < len(block); off += aes.BlockSize {
		c.Encrypt(out[off:off+aes.BlockSize], block[off:off+aes.BlockSize])
	}
	return out, nil
}

// tdesECBEncrypt treats key16 as 2-key 3DES (K1‖K2‖K1) and ECB-encrypts
// block-aligned data.
func tdesECBEncrypt(key16, block []byte) ([]byte, error) {
	c, err := des.NewTripleDESCipher(expand2KeyTDES(key16))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(block))
	for off := 0; off < len(block); off += des.BlockSize {
		c.Encrypt(out[off:off+des.BlockSize], block[off:off+des.BlockSize])
	}
	return out, nil
}

// ecbEncrypt dispatches to the AES or 3DES ECB primitive for alg.
func ecbEncrypt(alg Algorithm, key16, block []byte) ([]byte, error) {
	if alg == AlgAES128 {
		return aesECBEncrypt(key16, block)
	}
	return tdesECBEncrypt(key16, block)
}

// aesCBCEncrypt CBC-encrypts block-aligned plaintext with AES-128.
func aesCBCEncrypt(key, iv, plaintext []byte) ([]byte, error) {
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(c, iv).CryptBlocks(out, plaintext)
	return out, nil
}

// aesCBCDecrypt CBC-decrypts block-aligned ciphertext with AES-128.
func aesCBCDecrypt(key, iv, ciphertext []byte) ([]byte, error) {
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(c, iv).CryptBlocks(out, ciphertext)
	return out, nil
}

// tdesCBCEncrypt CBC-encrypts with 2-key 3DES (K1‖K2‖K1).
func tdesCBCEncrypt(key16, iv, plaintext []byte) ([]byte, error) {
	c, err := des.NewTripleDESCipher(expand2KeyTDES(key16))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(c, iv).CryptBlocks(out, plaintext)
	return out, nil
}

// tdesCBCDecrypt CBC-decrypts with 2-key 3DES (K1‖K2‖K1).
func tdesCBCDecrypt(key16, iv, ciphertext []byte) ([]byte, error) {
	c, err := des.NewTripleDESCipher(expand2KeyTDES(key16))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(c, iv).CryptBlocks(out, ciphertext)
	return out, nil
}

// tdes24CBCEncrypt CBC-encrypts with a full 24-byte 3DES key, used by
// ExternalKeyAuth where the key is a SHA-1-derived PIN hash rather than the
// 16-byte session-key material expand2KeyTDES normally expands.
func tdes24CBCEncrypt(key24, iv, plaintext []byte) ([]byte, error) {
	c, err := des.NewTripleDESCipher(key24)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(c, iv).CryptBlocks(out, plaintext)
	return out, nil
}

// cbcEncrypt dispatches CBC encryption to the AES or 3DES primitive for alg.
func cbcEncrypt(alg Algorithm, key16, iv, plaintext []byte) ([]byte, error) {
	if alg == AlgAES128 {
		return aesCBCEncrypt(key16, iv, plaintext)
	}
	return tdesCBCEncrypt(key16, iv, plaintext)
}

// cbcDecrypt dispatches CBC decryption to the AES or 3DES primitive for alg.
func cbcDecrypt(alg Algorithm, key16, iv, ciphertext []byte) ([]byte, error) {
	if alg == AlgAES128 {
		return aesCBCDecrypt(key16, iv, ciphertext)
	}
	return tdesCBCDecrypt(key16, iv, ciphertext)
}

// desEncryptBlock / desDecryptBlock are the plain single-DES primitives used
// by the 3DES retail-MAC (ISO/IEC 9797-1 Algorithm 3) construction below.
func desEncryptBlock(key8, block []byte) ([]byte, error) {
	c, err := des.NewCipher(key8)
	if err != nil {
		return nil, err
	}
	out := make([]byte, des.BlockSize)
	c.Encrypt(out, block)
	return out, nil
}

func desDecryptBlock(key8, block []byte) ([]byte, error) {
	c, err := des.NewCipher(key8)
	if err != nil {
		return nil, err
	}
	out := make([]byte, des.BlockSize)
	c.Decrypt(out, block)
	return out, nil
}

func desCBCEncrypt(key8, iv, plaintext []byte) ([]byte, error) {
	c, err := des.NewCipher(key8)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(c, iv).CryptBlocks(out, plaintext)
	return out, nil
}

// padISO9797M2 appends 0x80 then zero-pads to the next multiple of
// blockSize. Both the MAC-header block and the encrypted-data TLV use this
// padding.
func padISO9797M2(data []byte, blockSize int) []byte {
	padded := make([]byte, ((len(data)/blockSize)+1)*blockSize)
	copy(padded, data)
	padded[len(data)] = 0x80
	return padded
}

// unpadISO9797M2 strips trailing zero bytes and the terminal 0x80. Guards
// explicitly against running past the start of the buffer: an all-zero or
// empty input must never walk the index below zero.
func unpadISO9797M2(data []byte) ([]byte, error) {
	i := len(data) - 1
	for i >= 0 && data[i] == 0x00 {
		i--
	}
	if i < 0 || data[i] != 0x80 {
		return nil, &CardCmdError{Reason: "missing 0x80 padding terminator"}
	}
	return data[:i], nil
}

// sha1Digest computes SHA-1(msg).
func sha1Digest(msg []byte) [20]byte {
	return sha1.Sum(msg)
}

// retailMAC3DES computes ISO/IEC 9797-1 Algorithm 3 (the "retail MAC") over
// block-aligned data M, using a 16-byte key split into mac-left/mac-right
// halves and an 8-byte IV:
//
//	c = CBC_E_DES(key[0:8], iv, M)
//	t = DES_D(key[8:16], 0, c_last_block)
//	mac = DES_E(key[0:8], 0, t)
func retailMAC3DES(key16, iv, m []byte) ([]byte, error) {
	c, err := desCBCEncrypt(key16[:8], iv, m)
	if err != nil {
		return nil, err
	}
	lastBlock := c[len(c)-des.BlockSize:]
	t, err := desDecryptBlock(key16[8:16], lastBlock)
	if err != nil {
		return nil, err
	}
	return desEncryptBlock(key16[:8], t)
}
