package config

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadHexFileConfigAndResolveRelativePaths(t *testing.T) {
	tmp := t.TempDir()
	encPath := filepath.Join(tmp, "enc.hex")
	macPath := filepath.Join(tmp, "mac.hex")
	if err := os.WriteFile(encPath, []byte("00112233445566778899AABBCCDDEEFF\n"), 0o644); err != nil {
		t.Fatalf("write enc key: %v", err)
	}
	if err := os.WriteFile(macPath, []byte("FFEEDDCCBBAA99887766554433221100\n"), 0o644); err != nil {
		t.Fatalf("write mac key: %v", err)
	}

	cfgPath := writeConfig(t, tmp, `
card:
  reader_index: 0
keys:
  derivation: hex_file
  init_key_enc_hex_file: "enc.hex"
  init_key_mac_hex_file: "mac.hex"
runtime:
  force_plain: false
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Keys.InitKeyEncHexFile != encPath {
		t.Fatalf("expected resolved enc key path %q, got %q", encPath, cfg.Keys.InitKeyEncHexFile)
	}

	enc, mac, err := cfg.DeriveInitKeys()
	if err != nil {
		t.Fatalf("DeriveInitKeys failed: %v", err)
	}
	wantEnc, _ := hex.DecodeString("00112233445566778899AABBCCDDEEFF")
	if hex.EncodeToString(enc[:]) != hex.EncodeToString(wantEnc) {
		t.Fatalf("enc key = %x, want %x", enc, wantEnc)
	}
	if mac[0] != 0xFF {
		t.Fatalf("mac key first byte = %#02x, want 0xFF", mac[0])
	}
}

func TestDeriveInitKeysPBKDF2IsDeterministic(t *testing.T) {
	tmp := t.TempDir()
	passPath := filepath.Join(tmp, "pass.txt")
	saltPath := filepath.Join(tmp, "salt.hex")
	if err := os.WriteFile(passPath, []byte("correct horse battery staple\n"), 0o644); err != nil {
		t.Fatalf("write passphrase: %v", err)
	}
	if err := os.WriteFile(saltPath, []byte("0001020304050607\n"), 0o644); err != nil {
		t.Fatalf("write salt: %v", err)
	}

	cfgPath := writeConfig(t, tmp, `
card:
  reader_index: 0
keys:
  derivation: pbkdf2
  passphrase_file: "pass.txt"
  salt_hex_file: "salt.hex"
  pbkdf2:
    iterations: 1000
runtime:
  force_plain: true
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	enc1, mac1, err := cfg.DeriveInitKeys()
	if err != nil {
		t.Fatalf("DeriveInitKeys failed: %v", err)
	}
	enc2, mac2, err := cfg.DeriveInitKeys()
	if err != nil {
		t.Fatalf("DeriveInitKeys (second call) failed: %v", err)
	}
	if enc1 != enc2 || mac1 != mac2 {
		t.Fatal("expected DeriveInitKeys to be deterministic for the same passphrase and salt")
	}
	if enc1 == mac1 {
		t.Fatal("expected distinct enc/mac halves of the stretched material")
	}
}

func TestValidateRejectsUnknownDerivation(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir(), `
card:
  reader_index: 0
keys:
  derivation: rot13
runtime:
  force_plain: false
`)

	_, err := Load(cfgPath)
	if err == nil || !strings.Contains(err.Error(), "config.keys.derivation must be one of") {
		t.Fatalf("expected unknown-derivation error, got %v", err)
	}
}

func TestValidationReadOnlySkipsKeyRequirements(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir(), `
card:
  reader_index: 0
`)

	cfg, err := LoadWithMode(cfgPath, ValidationReadOnly)
	if err != nil {
		t.Fatalf("LoadWithMode(ValidationReadOnly) failed: %v", err)
	}
	if *cfg.Card.ReaderIndex != 0 {
		t.Fatalf("reader index = %d, want 0", *cfg.Card.ReaderIndex)
	}
}

func TestValidateRequiresReaderIndex(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir(), `
keys:
  derivation: hex_file
runtime:
  force_plain: false
`)

	_, err := Load(cfgPath)
	if err == nil || !strings.Contains(err.Error(), "config.card.reader_index is required") {
		t.Fatalf("expected missing reader_index error, got %v", err)
	}
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}
