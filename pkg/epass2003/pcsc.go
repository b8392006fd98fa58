package epass2003

import (
	"fmt"

	"github.com/ebfe/scard"
)

// atrPattern and atrMask identify an FTCOS/ePass2003 card. A byte matches
// when (atr[i] & atrMask[i]) == (atrPattern[i] & atrMask[i]); a zero mask
// byte accepts anything at that offset.
var (
	atrPattern = []byte{0x3B, 0x9F, 0x95, 0x81, 0x31, 0xFE, 0x9F, 0x00, 0x66, 0x46, 0x53, 0x05, 0x10, 0x00, 0x11, 0x71, 0xDF, 0x00, 0x00, 0x00, 0x6A, 0x82, 0x5E}
	atrMask    = []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00, 0x00, 0x00, 0xFF, 0x00, 0xFF, 0xFF, 0x00, 0x00, 0x00, 0x00}
)

// MatchATR reports whether atr identifies an FTCOS/ePass2003 card.
func MatchATR(atr []byte) bool {
	if len(atr) != len(atrPattern) {
		return false
	}
	for i := range atr {
		if atr[i]&atrMask[i] != atrPattern[i]&atrMask[i] {
			return false
		}
	}
	return true
}

// Connection wraps a PC/SC card connection and implements Card, mirroring
// pkg/ntag424's Connection (this driver's transport boundary is identical:
// a contact or contactless PC/SC reader exchanging raw APDU bytes).
type Connection struct {
	ctx       *scard.Context
	card      *scard.Card
	Reader    string
	ReaderIdx int
}

// Connect opens the reader at readerIndex and verifies its ATR matches the
// FTCOS/ePass2003 pattern before returning.
func Connect(readerIndex int) (*Connection, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("epass2003: EstablishContext failed: %w", err)
	}

	readers, err := ctx.ListReaders()
	if err != nil || len(readers) == 0 {
		ctx.Release()
		return nil, fmt.Errorf("epass2003: no readers found: %v", err)
	}
	if readerIndex < 0 || readerIndex >= len(readers) {
		ctx.Release()
		return nil, fmt.Errorf("epass2003: reader index out of range (0..%d)", len(readers)-1)
	}

	reader := readers[readerIndex]
	card, err := ctx.Connect(reader, scard.ShareShared, scard.ProtocolAny)
	if err != nil {
		ctx.Release()
		return nil, fmt.Errorf("epass2003: connect failed: %w", err)
	}

	status, err := card.Status()
	if err != nil {
		card.Disconnect(scard.LeaveCard)
		ctx.Release()
		return nil, fmt.Errorf("epass2003: status failed: %w", err)
	}
	if !MatchATR(status.Atr) {
		card.Disconnect(scard.LeaveCard)
		ctx.Release()
		return nil, fmt.Errorf("epass2003: ATR %X does not match FTCOS/ePass2003", status.Atr)
	}

	return &Connection{ctx: ctx, card: card, Reader: reader, ReaderIdx: readerIndex}, nil
}

// Close disconnects the card and releases the PC/SC context.
func (c *Connection) Close() {
	if c == nil {
		return
	}
	if c.card != nil {
		_ = c.card.Disconnect(scard.LeaveCard)
	}
	if c.ctx != nil {
		_ = c.ctx.Release()
	}
}

// Transmit implements Card by sending apdu to the connected card.
func (c *Connection) Transmit(apdu []byte) ([]byte, error) {
	if c == nil || c.card == nil {
		return nil, fmt.Errorf("epass2003: connection not established")
	}
	return c.card.Transmit(apdu)
}
