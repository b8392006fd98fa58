package epass2003

import "sync"

// SMMode is the secure-messaging state of a session.
type SMMode int

const (
	// SMPlain is the state before a successful Handshake; APDUs pass
	// through unwrapped.
	SMPlain SMMode = iota
	// SMSCP01 is set after Establish succeeds; every command is wrapped
	// and every response unwrapped.
	SMSCP01
)

// SessionState holds everything the SM codec needs to wrap/unwrap APDUs for
// one open card: the derived session keys, the negotiated algorithm, and the
// running MAC-ICV counter. It is owned by the card handle rather than kept as
// process-wide state, so multiple cards can be driven concurrently from one
// process. A SessionState is created by Establish and mutated only by
// Establish (whole-state write), Wrap (icv_mac increment), and poison (mode
// reset to SMPlain after a failed secure round trip).
type SessionState struct {
	mu sync.Mutex

	mode SMMode
	alg  Algorithm

	sEnc [16]byte
	sMac [16]byte

	// icvMAC is the 16-byte big-endian MAC-ICV counter. Only the leading
	// BlockSize() bytes participate in increment/MAC derivation; the rest
	// stay zero.
	icvMAC [16]byte
}

// Mode reports the current secure-messaging mode.
func (s *SessionState) Mode() SMMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Algorithm reports the negotiated cipher algorithm.
func (s *SessionState) Algorithm() Algorithm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alg
}

// Lock acquires the per-card mutex for the full wrap→transmit→unwrap
// round-trip. Commands must be serialized through this mutex: the icv_mac
// counter would otherwise interleave between goroutines and desynchronize
// from the card's own counter. transact holds this for one APDU round trip
// and releases it on every exit path, including error.
func (s *SessionState) Lock() { s.mu.Lock() }

// Unlock releases the per-card mutex acquired by Lock.
func (s *SessionState) Unlock() { s.mu.Unlock() }

// incrementICV advances icv_mac by one, treating its first BlockSize() bytes
// as a big-endian counter and propagating carry upward from the low byte.
// Must be called with the session mutex held.
func (s *SessionState) incrementICV() {
	n := s.alg.BlockSize()
	for i := n - 1; i >= 0; i-- {
		s.icvMAC[i]++
		if s.icvMAC[i] != 0 {
			break
		}
	}
}

// poison marks a session unusable after a transport failure mid-round-trip:
// an ICV increment whose transport then fails leaves the counter ahead of
// the card by one, with no way to roll it back. Re-Establish is required.
func (s *SessionState) poison() {
	s.mode = SMPlain
}
