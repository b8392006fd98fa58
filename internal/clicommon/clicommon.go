// Package clicommon holds the reader-connect/handshake/logging bootstrap
// shared by epassctl, epassprovision and epasspin, so each tool's command
// tree only has to deal with its own subcommands.
package clicommon

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"os"

	"hermannm.dev/devlog"

	"github.com/jborg/epass2003/internal/config"
	"github.com/jborg/epass2003/pkg/epass2003"
)

func readRandom(b []byte) (int, error) {
	return rand.Read(b)
}

// InitLogging installs a devlog handler at the requested level, matching
// the console-first presentation the other tools in this family use.
func InitLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(devlog.NewHandler(os.Stderr, &devlog.Options{Level: &level})))
}

// Session bundles everything a subcommand needs to talk to one card:
// the open connection, the handshake result, and the config that produced
// both.
type Session struct {
	Conn *epass2003.Connection
	Sess *epass2003.SessionState
	Cfg  *config.Config
}

// Open loads cfgPath under mode, connects to the configured reader, and
// (outside ValidationReadOnly) runs the handshake with the derived init
// keys. ValidationReadOnly callers get a plain-mode session suitable for
// SELECT/LIST/FCI inspection only.
func Open(cfgPath string, mode config.ValidationMode) (*Session, error) {
	cfg, err := config.LoadWithMode(cfgPath, mode)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	conn, err := epass2003.Connect(*cfg.Card.ReaderIndex)
	if err != nil {
		return nil, fmt.Errorf("connect to reader %d: %w", *cfg.Card.ReaderIndex, err)
	}
	slog.Info("connected", "reader", conn.Reader)

	if mode == config.ValidationReadOnly {
		return &Session{Conn: conn, Sess: &epass2003.SessionState{}, Cfg: cfg}, nil
	}

	encKey, macKey, err := cfg.DeriveInitKeys()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("derive init keys: %w", err)
	}

	var hr [16]byte
	if _, err := readRandom(hr[:]); err != nil {
		conn.Close()
		return nil, fmt.Errorf("generate host random: %w", err)
	}

	sess, err := epass2003.Establish(conn, encKey, macKey, hr)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("establish secure channel: %w", err)
	}
	slog.Info("secure channel established", "algorithm", algorithmName(sess.Algorithm()))

	return &Session{Conn: conn, Sess: sess, Cfg: cfg}, nil
}

// Close releases the underlying PC/SC connection.
func (s *Session) Close() {
	if s == nil {
		return
	}
	s.Conn.Close()
}

func algorithmName(a epass2003.Algorithm) string {
	if a == epass2003.AlgAES128 {
		return "AES-128"
	}
	return "2-key 3DES"
}
