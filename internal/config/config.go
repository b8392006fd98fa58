package config

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
	"gopkg.in/yaml.v3"
)

// ValidationMode selects how strictly Load checks a Config: ValidationFull
// is what a provisioning run requires; ValidationReadOnly relaxes the
// key-material requirements for tools that only SELECT/LIST/decode FCI.
type ValidationMode int

const (
	ValidationFull ValidationMode = iota
	ValidationReadOnly
)

// KeyDerivation selects how Config.DeriveInitKeys turns config into 16-byte
// session-init keys: a raw hex file, or a passphrase stretched through
// PBKDF2 or Argon2id.
type KeyDerivation string

const (
	KeyDerivationHexFile KeyDerivation = "hex_file"
	KeyDerivationPBKDF2  KeyDerivation = "pbkdf2"
	KeyDerivationArgon2  KeyDerivation = "argon2id"
)

// Config is the on-disk shape for epassctl/epassprovision/epasspin.
type Config struct {
	Card    CardConfig    `yaml:"card"`
	Keys    KeysConfig    `yaml:"keys"`
	Audit   AuditConfig   `yaml:"audit"`
	Runtime RuntimeConfig `yaml:"runtime"`
}

// CardConfig names which reader to open.
type CardConfig struct {
	ReaderIndex *int `yaml:"reader_index"`
}

// KeysConfig describes how to obtain the two 16-byte handshake init keys
// (INIT_ENC, INIT_MAC). Exactly one derivation mode's fields need be set.
type KeysConfig struct {
	Derivation KeyDerivation `yaml:"derivation"`

	// KeyDerivationHexFile
	InitKeyEncHexFile string `yaml:"init_key_enc_hex_file"`
	InitKeyMACHexFile string `yaml:"init_key_mac_hex_file"`

	// KeyDerivationPBKDF2 / KeyDerivationArgon2
	PassphraseFile string     `yaml:"passphrase_file"`
	SaltHexFile    string     `yaml:"salt_hex_file"`
	PBKDF2         PBKDF2Params `yaml:"pbkdf2"`
	Argon2         Argon2Params `yaml:"argon2id"`
}

// PBKDF2Params mirrors the tunables a passphrase-based key provider needs;
// zero values fall back to conservative defaults in DeriveInitKeys.
type PBKDF2Params struct {
	Iterations int `yaml:"iterations"`
}

// Argon2Params mirrors the Argon2id tunables; zero values fall back to
// conservative defaults in DeriveInitKeys.
type Argon2Params struct {
	Iterations  uint32 `yaml:"iterations"`
	MemoryKiB   uint32 `yaml:"memory_kib"`
	Parallelism uint8  `yaml:"parallelism"`
}

// AuditConfig points at the audit-trail database, if any.
type AuditConfig struct {
	DBPath string `yaml:"db_path"`
}

// RuntimeConfig holds runtime settings. ForcePlain is required under
// ValidationFull; neither clicommon.Open nor any cmd/* tool reads its value.
type RuntimeConfig struct {
	ForcePlain *bool `yaml:"force_plain"`
}

// Load reads and fully validates the config at path.
func Load(path string) (*Config, error) {
	return LoadWithMode(path, ValidationFull)
}

// LoadWithMode reads, resolves relative paths, and validates the config at
// path under the given mode.
func LoadWithMode(path string, mode ValidationMode) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	cfg.resolvePaths(path)
	if err := cfg.ValidateWithMode(mode); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	return c.ValidateWithMode(ValidationFull)
}

func (c *Config) ValidateWithMode(mode ValidationMode) error {
	if c.Card.ReaderIndex == nil {
		return fmt.Errorf("config.card.reader_index is required")
	}
	if *c.Card.ReaderIndex < 0 {
		return fmt.Errorf("config.card.reader_index must be >= 0")
	}

	if mode == ValidationReadOnly {
		return nil
	}

	switch c.Keys.Derivation {
	case KeyDerivationHexFile:
		if strings.TrimSpace(c.Keys.InitKeyEncHexFile) == "" || strings.TrimSpace(c.Keys.InitKeyMACHexFile) == "" {
			return fmt.Errorf("config.keys: hex_file derivation requires init_key_enc_hex_file and init_key_mac_hex_file")
		}
		if err := validateReadableFile(c.Keys.InitKeyEncHexFile, "config.keys.init_key_enc_hex_file"); err != nil {
			return err
		}
		if err := validateReadableFile(c.Keys.InitKeyMACHexFile, "config.keys.init_key_mac_hex_file"); err != nil {
			return err
		}
	case KeyDerivationPBKDF2, KeyDerivationArgon2:
		if strings.TrimSpace(c.Keys.PassphraseFile) == "" {
			return fmt.Errorf("config.keys: %s derivation requires passphrase_file", c.Keys.Derivation)
		}
		if err := validateReadableFile(c.Keys.PassphraseFile, "config.keys.passphrase_file"); err != nil {
			return err
		}
		if strings.TrimSpace(c.Keys.SaltHexFile) == "" {
			return fmt.Errorf("config.keys: %s derivation requires salt_hex_file", c.Keys.Derivation)
		}
		if err := validateReadableFile(c.Keys.SaltHexFile, "config.keys.salt_hex_file"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("config.keys.derivation must be one of hex_file, pbkdf2, argon2id, got %q", c.Keys.Derivation)
	}

	if c.Runtime.ForcePlain == nil {
		return fmt.Errorf("config.runtime.force_plain is required")
	}
	return nil
}

// DeriveInitKeys resolves the two 16-byte handshake init keys from c.Keys,
// either by reading them as hex directly or by stretching a passphrase with
// PBKDF2/Argon2id and splitting the 32-byte result into two 16-byte halves.
func (c *Config) DeriveInitKeys() (initKeyEnc, initKeyMAC [16]byte, err error) {
	switch c.Keys.Derivation {
	case KeyDerivationHexFile:
		enc, err := readHexFile(c.Keys.InitKeyEncHexFile, 16)
		if err != nil {
			return initKeyEnc, initKeyMAC, err
		}
		mac, err := readHexFile(c.Keys.InitKeyMACHexFile, 16)
		if err != nil {
			return initKeyEnc, initKeyMAC, err
		}
		copy(initKeyEnc[:], enc)
		copy(initKeyMAC[:], mac)
		return initKeyEnc, initKeyMAC, nil

	case KeyDerivationPBKDF2, KeyDerivationArgon2:
		passphrase, err := os.ReadFile(c.Keys.PassphraseFile)
		if err != nil {
			return initKeyEnc, initKeyMAC, fmt.Errorf("read passphrase file: %w", err)
		}
		salt, err := readHexFile(c.Keys.SaltHexFile, 0)
		if err != nil {
			return initKeyEnc, initKeyMAC, err
		}
		material, err := stretchPassphrase(c.Keys.Derivation, trimPassphrase(passphrase), salt, c.Keys.PBKDF2, c.Keys.Argon2)
		if err != nil {
			return initKeyEnc, initKeyMAC, err
		}
		copy(initKeyEnc[:], material[:16])
		copy(initKeyMAC[:], material[16:32])
		return initKeyEnc, initKeyMAC, nil

	default:
		return initKeyEnc, initKeyMAC, fmt.Errorf("unknown key derivation %q", c.Keys.Derivation)
	}
}

func trimPassphrase(b []byte) []byte {
	return []byte(strings.TrimRight(string(b), "\r\n"))
}

// stretchPassphrase derives 32 bytes of key material, enough for both init
// keys, using the configured KDF. Defaults match the conservative choices a
// password-based key provider would pick when the operator leaves the
// tunables unset.
func stretchPassphrase(mode KeyDerivation, passphrase, salt []byte, pb PBKDF2Params, ar Argon2Params) ([]byte, error) {
	switch mode {
	case KeyDerivationPBKDF2:
		iterations := pb.Iterations
		if iterations == 0 {
			iterations = 100_000
		}
		var h func() hash.Hash = sha256.New
		return pbkdf2.Key(passphrase, salt, iterations, 32, h), nil
	case KeyDerivationArgon2:
		iterations := ar.Iterations
		if iterations == 0 {
			iterations = 3
		}
		memory := ar.MemoryKiB
		if memory == 0 {
			memory = 64 * 1024
		}
		parallelism := ar.Parallelism
		if parallelism == 0 {
			parallelism = 4
		}
		return argon2.IDKey(passphrase, salt, iterations, memory, parallelism, 32), nil
	default:
		return nil, fmt.Errorf("stretchPassphrase: unsupported mode %q", mode)
	}
}

func readHexFile(path string, wantLen int) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	decoded, err := hex.DecodeString(strings.TrimSpace(string(content)))
	if err != nil {
		return nil, fmt.Errorf("decode %s as hex: %w", path, err)
	}
	if wantLen > 0 && len(decoded) != wantLen {
		return nil, fmt.Errorf("%s: expected %d bytes, got %d", path, wantLen, len(decoded))
	}
	return decoded, nil
}

func (c *Config) resolvePaths(configPath string) {
	dir := filepath.Dir(configPath)
	c.Keys.InitKeyEncHexFile = resolvePath(dir, c.Keys.InitKeyEncHexFile)
	c.Keys.InitKeyMACHexFile = resolvePath(dir, c.Keys.InitKeyMACHexFile)
	c.Keys.PassphraseFile = resolvePath(dir, c.Keys.PassphraseFile)
	c.Keys.SaltHexFile = resolvePath(dir, c.Keys.SaltHexFile)
	c.Audit.DBPath = resolvePath(dir, c.Audit.DBPath)
}

func resolvePath(baseDir, path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || filepath.IsAbs(trimmed) {
		return trimmed
	}
	return filepath.Clean(filepath.Join(baseDir, trimmed))
}

func validateReadableFile(path string, field string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s must point to a file, got directory", field)
	}
	return nil
}
