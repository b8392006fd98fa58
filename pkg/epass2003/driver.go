package epass2003

import "log/slog"

const (
	insGetSerial = 0xCA
	tagSerial    = 0x80
)

// WriteKeyKind selects which of the three key-material shapes WriteKey
// installs.
type WriteKeyKind int

const (
	WriteKeyRSA WriteKeyKind = iota
	WriteKeySecretPre
	WriteKeySecretPIN
)

// WriteKeyRequest bundles the arguments for the three WriteKey shapes;
// only the fields relevant to Kind need be set.
type WriteKeyRequest struct {
	Kind WriteKeyKind

	// WriteKeyRSA
	FID             [2]byte
	Modulus, Factor []byte
	FactorTag       byte

	// WriteKeySecretPre
	KID                      byte
	InitKeyEnc, InitKeyMAC   [16]byte

	// WriteKeySecretPIN
	UseAC, ModifyAC byte
	PINMaterial     []byte
}

// Driver is the card-ctl-equivalent façade: the operations that do not
// belong to FileOps or KeyOps individually.
type Driver struct {
	Card Card
	Sess *SessionState

	Files *FileOps
	Keys  *KeyOps
}

// NewDriver wires card and sess into a full Driver, including its FileOps
// and KeyOps sub-components.
func NewDriver(card Card, sess *SessionState) *Driver {
	return &Driver{
		Card:  card,
		Sess:  sess,
		Files: NewFileOps(card, sess),
		Keys:  NewKeyOps(card, sess),
	}
}

// Erase deletes the master file, wiping the card's file system.
func (d *Driver) Erase() error {
	return d.Files.DeleteFile([]byte{0x3F, 0x00})
}

// GetSerial retrieves the card's 8-byte serial number via GET DATA(0x80).
func (d *Driver) GetSerial() ([]byte, error) {
	resp, sw, err := transact(d.Card, d.Sess, PlainAPDU{CLA: 0x00, INS: insGetSerial, P2: tagSerial, Le: 0x08})
	if err != nil {
		return nil, err
	}
	if !SwOK(sw) {
		return nil, &CardCmdError{Cmd: insGetSerial, SW: sw}
	}
	return resp, nil
}

// WriteKey dispatches to the RSA-factor, init-key, or PIN installation
// path according to req.Kind.
func (d *Driver) WriteKey(req WriteKeyRequest) error {
	switch req.Kind {
	case WriteKeyRSA:
		if len(req.Modulus) > 0 && len(req.Factor) > 0 {
			return d.Keys.WriteRSAKey(req.FID, req.Modulus, req.Factor)
		}
		return d.Keys.WriteRSAFactor(req.FID, req.FactorTag, req.Factor)
	case WriteKeySecretPre:
		return d.Keys.InstallInitKeys(req.KID, req.InitKeyEnc, req.InitKeyMAC)
	case WriteKeySecretPIN:
		return d.Keys.InstallPIN(req.KID, req.UseAC, req.ModifyAC, req.PINMaterial)
	default:
		return &NotSupportedError{Msg: "unknown write-key kind"}
	}
}

// CardCtlOp names the abstract card-ctl operations the Driver dispatches.
type CardCtlOp int

const (
	CardCtlWriteKey CardCtlOp = iota
	CardCtlGenerateKey
	CardCtlEraseCard
	CardCtlGetSerialNr
)

// GenerateKeyRequest bundles generate_rsa's arguments.
type GenerateKeyRequest struct {
	PrivateFID, PublicFID [2]byte
	Bits                  int
}

// CardCtl dispatches one abstract card-ctl operation.
func (d *Driver) CardCtl(op CardCtlOp, writeKey *WriteKeyRequest, genKey *GenerateKeyRequest) (result []byte, err error) {
	switch op {
	case CardCtlWriteKey:
		if writeKey == nil {
			return nil, &InvalidArgumentError{Msg: "write-key request required"}
		}
		return nil, d.WriteKey(*writeKey)
	case CardCtlGenerateKey:
		if genKey == nil {
			return nil, &InvalidArgumentError{Msg: "generate-key request required"}
		}
		return d.Keys.GenerateRSA(genKey.PrivateFID, genKey.PublicFID, genKey.Bits)
	case CardCtlEraseCard:
		return nil, d.Erase()
	case CardCtlGetSerialNr:
		return d.GetSerial()
	default:
		return nil, &NotSupportedError{Msg: "unknown card-ctl operation"}
	}
}

// Close releases resources associated with the open session. It never
// talks to the card; any outstanding state is simply logged as a best-effort
// teardown.
func (d *Driver) Close() {
	if d.Sess.Mode() == SMSCP01 {
		slog.Debug("epass2003: closing driver with active secure channel")
	}
}
