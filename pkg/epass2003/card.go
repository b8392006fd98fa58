package epass2003

import "fmt"

// Card abstracts APDU exchange for real PC/SC readers and test doubles,
// mirroring pkg/ntag424's Card interface (this driver's domain has no
// contactless-specific framing, so the abstraction carries over unchanged).
type Card interface {
	Transmit(apdu []byte) ([]byte, error)
}

// Transmit sends apdu to card and splits the trailing two-byte status word
// from the response body. The returned slice never includes SW1/SW2.
func Transmit(card Card, apdu []byte) ([]byte, uint16, error) {
	resp, err := card.Transmit(apdu)
	if err != nil {
		return nil, 0, err
	}
	if len(resp) < 2 {
		return nil, 0, fmt.Errorf("epass2003: short response: %d bytes", len(resp))
	}
	sw := uint16(resp[len(resp)-2])<<8 | uint16(resp[len(resp)-1])
	return resp[:len(resp)-2], sw, nil
}
