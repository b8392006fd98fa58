package epass2003

import "bytes"

const (
	insSelect = 0xA4
	insCreate = 0xE0
	insDelete = 0xE4
	insList   = 0x34
)

// syntheticFCIHighByte is the FID high byte the card refuses to SELECT
// directly — private-key files — requiring FileOps to fabricate the FCI
// instead of round-tripping a command.
const syntheticFCIHighByte = 0x29

// FileOps implements SELECT/CREATE/DELETE/LIST over a secured card session,
// including the DF-select cache and the FID hook transform applied at every
// boundary that carries a file id.
type FileOps struct {
	Card Card
	Sess *SessionState

	cacheValid bool
	cachePath  []byte // MF-rooted logical path of the currently selected DF
}

// NewFileOps wires card and sess together; sess must already be in
// SMSCP01 mode (the result of a successful Establish) for any call that
// needs wire-level protection, though FileOps itself is transport-mode
// agnostic — transact dispatches on sess.Mode().
func NewFileOps(card Card, sess *SessionState) *FileOps {
	return &FileOps{Card: card, Sess: sess}
}

// SelectByFID selects the file at logical (h, l), applying the FID hook to
// the wire form. h == 0x29 never reaches the card: the card rejects direct
// selection of private-key files, so a synthetic FCI is fabricated instead.
func (fo *FileOps) SelectByFID(h, l byte) (*File, error) {
	if h == syntheticFCIHighByte {
		return syntheticFCI(h, l), nil
	}

	hh, hl := HookFID(h, l)
	apdu := PlainAPDU{CLA: 0x00, INS: insSelect, P1: 0x00, P2: 0x00, Data: []byte{hh, hl}, Le: 0x100}
	resp, sw, err := transact(fo.Card, fo.Sess, apdu)
	if err != nil {
		return nil, err
	}
	if !SwOK(sw) {
		return nil, &CardCmdError{Cmd: insSelect, SW: sw}
	}
	f, err := ProcessFCI(resp)
	if err != nil {
		return nil, err
	}
	f.FID[0], f.FID[1] = UnhookFID(f.FID[0], f.FID[1])
	return f, nil
}

// syntheticFCI builds the fixed FCI a selected private-key file is known to
// carry, since the card never actually answers that SELECT:
// `6f 16 82 02 11 00 83 02 29 <l> 85 02 08 00 86 08 FF 90 90 90 FF FF FF FF`.
func syntheticFCI(h, l byte) *File {
	return &File{
		FID:         [2]byte{h, l},
		Type:        FileTypeInternalEF,
		RSAKind:     RSAKeyCRT,
		PropAttrs:   []byte{0x08, 0x00},
		ACL:         ACL{0xFF, 0x90, 0x90, 0x90, 0xFF, 0xFF, 0xFF, 0xFF},
		HasACL:      true,
	}
}

// SelectByAID selects a DF by application identifier. It does not cache the
// AID: a repeated SelectByAID always sends a fresh SELECT. It invalidates
// the DF-path cache, so the next SelectByPath walks its path from the MF.
func (fo *FileOps) SelectByAID(aid []byte) (*File, error) {
	apdu := PlainAPDU{CLA: 0x00, INS: insSelect, P1: 0x04, P2: 0x00, Data: aid, Le: 0x100}
	resp, sw, err := transact(fo.Card, fo.Sess, apdu)
	if err != nil {
		return nil, err
	}
	if !SwOK(sw) {
		return nil, &CardCmdError{Cmd: insSelect, SW: sw}
	}
	f, err := ProcessFCI(resp)
	if err != nil {
		return nil, err
	}
	fo.cacheValid = false
	return f, nil
}

// SelectByPath normalizes path to an MF-rooted path (prefixing 3F 00 if
// missing), rejects unsupported lengths, and walks it via SelectByFID,
// skipping the prefix already covered by the DF cache.
func (fo *FileOps) SelectByPath(path []byte) (*File, error) {
	if len(path)%2 != 0 {
		return nil, &InvalidArgumentError{Msg: "path length must be even"}
	}
	if len(path) > 0 && !(path[0] == 0x3F && path[1] == 0x00) {
		full := make([]byte, 0, len(path)+2)
		full = append(full, 0x3F, 0x00)
		full = append(full, path...)
		path = full
	}
	if len(path) > 6 {
		return nil, &InvalidArgumentError{Msg: "path longer than 3 components"}
	}
	if len(path) == 0 {
		return nil, &InvalidArgumentError{Msg: "empty path"}
	}

	start := 0
	if fo.cacheValid && len(fo.cachePath) > 0 && len(path) > len(fo.cachePath) && bytes.Equal(path[:len(fo.cachePath)], fo.cachePath) {
		start = len(fo.cachePath)
	}

	var lastFile *File
	dfPath := append([]byte{}, path[:start]...)
	for i := start; i < len(path); i += 2 {
		f, err := fo.SelectByFID(path[i], path[i+1])
		if err != nil {
			fo.cacheValid = false
			return nil, err
		}
		lastFile = f
		if f.Type == FileTypeDF {
			dfPath = append([]byte{}, path[:i+2]...)
		}
	}
	fo.cachePath = dfPath
	fo.cacheValid = true
	return lastFile, nil
}

// CreateFile sends the CREATE FILE command for f, applying FidHook to the
// embedded file id.
func (fo *FileOps) CreateFile(f *File) error {
	hh, hl := HookFID(f.FID[0], f.FID[1])
	fci := ConstructFCI(f, [2]byte{hh, hl})
	apdu := PlainAPDU{CLA: 0x00, INS: insCreate, P1: 0x00, P2: 0x00, Data: fci}
	_, sw, err := transact(fo.Card, fo.Sess, apdu)
	if err != nil {
		return err
	}
	if !SwOK(sw) {
		return &CardCmdError{Cmd: insCreate, SW: sw}
	}
	return nil
}

// DeleteFile selects path, then deletes the last file id component.
func (fo *FileOps) DeleteFile(path []byte) error {
	if len(path) < 2 {
		return &InvalidArgumentError{Msg: "path too short to delete"}
	}
	if _, err := fo.SelectByPath(path); err != nil {
		return err
	}
	h, l := path[len(path)-2], path[len(path)-1]
	hh, hl := HookFID(h, l)
	apdu := PlainAPDU{CLA: 0x00, INS: insDelete, P1: 0x00, P2: 0x00, Data: []byte{hh, hl}}
	_, sw, err := transact(fo.Card, fo.Sess, apdu)
	if err != nil {
		return err
	}
	if !SwOK(sw) {
		return &CardCmdError{Cmd: insDelete, SW: sw}
	}
	fo.cacheValid = false
	return nil
}

// ListFiles requests up to 64 bytes of FID pairs from the currently
// selected DF. A response of 0x100 all-zero bytes means the DF is empty —
// observed card behavior this driver preserves rather than "fixes".
func (fo *FileOps) ListFiles() ([]byte, error) {
	apdu := PlainAPDU{CLA: 0x80, INS: insList, P1: 0x00, P2: 0x00, Le: 0x40}
	resp, sw, err := transact(fo.Card, fo.Sess, apdu)
	if err != nil {
		return nil, err
	}
	if !SwOK(sw) {
		return nil, &CardCmdError{Cmd: insList, SW: sw}
	}
	if len(resp) == 0x100 && allZero(resp) {
		return nil, nil
	}
	return resp, nil
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
