package epass2003

const (
	insGenKey           = 0x46
	insReadModulus      = 0xB4
	insWriteRSAFactor   = 0xE7
	insInstallSecretKey = 0xE3
	insUpdateSecretKey  = 0xE5
	insDecipher         = 0x2A
	insSetSecurityEnv   = 0x22
	insGetChallenge     = 0x84
	insExternalAuth     = 0x82
)

// Secret-key type codes for install_secret_key's ktype byte.
const (
	KeyTypeInitEnc byte = 0x01
	KeyTypeInitMac byte = 0x02
	KeyTypePIN     byte = 0x04
	KeyTypePUK     byte = 0x06
)

// MaxTries is the retry counter programmed into every installed or updated
// PIN/PUK, encoded into update_secret_key's body as (MaxTries<<4)|MaxTries.
const MaxTries byte = 3

// KeyOps implements RSA key-pair generation, key/factor installation, PIN
// verification/change/unblock, and decipher/sign.
type KeyOps struct {
	Card Card
	Sess *SessionState
}

// NewKeyOps wires card and sess together.
func NewKeyOps(card Card, sess *SessionState) *KeyOps {
	return &KeyOps{Card: card, Sess: sess}
}

// GenerateRSA generates an RSA key pair of the given bit length into the
// private/public FID pair, then reads the resulting modulus back.
func (ko *KeyOps) GenerateRSA(prkeyFID, pukeyFID [2]byte, bits int) ([]byte, error) {
	data := []byte{0x01, byte(bits >> 8), byte(bits), prkeyFID[0], prkeyFID[1], pukeyFID[0], pukeyFID[1]}
	_, sw, err := transact(ko.Card, ko.Sess, PlainAPDU{CLA: 0x00, INS: insGenKey, Data: data})
	if err != nil {
		return nil, err
	}
	if !SwOK(sw) {
		return nil, &CardCmdError{Cmd: insGenKey, SW: sw}
	}

	modulus, sw, err := transact(ko.Card, ko.Sess, PlainAPDU{
		CLA: 0x80, INS: insReadModulus, P1: 0x02, P2: 0x00,
		Data: []byte{pukeyFID[0], pukeyFID[1]}, Le: 0x100,
	})
	if err != nil {
		return nil, err
	}
	if !SwOK(sw) {
		return nil, &CardCmdError{Cmd: insReadModulus, SW: sw}
	}
	return modulus, nil
}

// WriteRSAFactor uploads one RSA key factor (modulus tag 0x02 or private
// exponent tag 0x03), byte-reversing bignum from the caller's MSB-first
// convention to the card's LSB-first wire form.
func (ko *KeyOps) WriteRSAFactor(fid [2]byte, factorTag byte, bignum []byte) error {
	reversed := reverseBytes(bignum)
	data := make([]byte, 0, 2+len(reversed))
	data = append(data, fid[0], fid[1])
	data = append(data, reversed...)

	_, sw, err := transact(ko.Card, ko.Sess, PlainAPDU{CLA: 0x80, INS: insWriteRSAFactor, P1: factorTag, Data: data})
	if err != nil {
		return err
	}
	if !SwOK(sw) {
		return &CardCmdError{Cmd: insWriteRSAFactor, SW: sw}
	}
	return nil
}

// WriteRSAKey is the two-factor convenience wrapper: modulus then exponent.
func (ko *KeyOps) WriteRSAKey(fid [2]byte, modulus, exponent []byte) error {
	if err := ko.WriteRSAFactor(fid, 0x02, modulus); err != nil {
		return err
	}
	return ko.WriteRSAFactor(fid, 0x03, exponent)
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

// InstallSecretKey installs a key object of the given ktype/kid with the
// access-control and error-counter byte EC. When ktype is KeyTypePIN or
// KeyTypePUK, the ac4/ac5/ac7 header bytes are fixed by the card's own
// convention (MAC_NOLESS|SO for ac4/ac5, MAC_NOLESS|(USER if PIN else SO)
// for ac7) rather than left to the caller.
func (ko *KeyOps) InstallSecretKey(ktype, kid, useac, modifyac, ec byte, data []byte) error {
	header := make([]byte, 10)
	header[0] = ktype
	header[1] = kid
	header[2] = useac
	header[3] = modifyac
	if ktype == KeyTypePIN || ktype == KeyTypePUK {
		header[4] = macNoless | principalSO
		header[5] = macNoless | principalSO
		header[6] = 0x00
		if ktype == KeyTypePIN {
			header[7] = macNoless | principalUser
		} else {
			header[7] = macNoless | principalSO
		}
	} else {
		header[4] = 0xFF
		header[5] = 0xFF
		header[6] = 0x00
		header[7] = 0xFF
	}
	header[8] = 0xFF
	header[9] = (ec << 4) | ec

	body := make([]byte, 0, len(header)+len(data))
	body = append(body, header...)
	body = append(body, data...)

	_, sw, err := transact(ko.Card, ko.Sess, PlainAPDU{CLA: 0x80, INS: insInstallSecretKey, Data: body})
	if err != nil {
		return err
	}
	if !SwOK(sw) {
		return &CardCmdError{Cmd: insInstallSecretKey, SW: sw}
	}
	return nil
}

// InstallInitKeys installs the two 16-byte handshake init keys as ktype
// 0x01 (enc) and 0x02 (mac), both with useac/modifyac set to
// MAC_NOLESS|EVERYONE.
func (ko *KeyOps) InstallInitKeys(kid byte, initKeyEnc, initKeyMAC [16]byte) error {
	ac := macNoless | principalEveryone
	if err := ko.InstallSecretKey(KeyTypeInitEnc, kid, ac, ac, MaxTries, initKeyEnc[:]); err != nil {
		return err
	}
	return ko.InstallSecretKey(KeyTypeInitMac, kid, ac, ac, MaxTries, initKeyMAC[:])
}

// HashPinMaterial computes the 24-byte stored PIN image: SHA1(data) ‖ the
// 4-byte big-endian length of data with its bytes reversed.
func HashPinMaterial(data []byte) [24]byte {
	digest := sha1Digest(data)
	var out [24]byte
	copy(out[:20], digest[:])
	l := uint32(len(data))
	out[20] = byte(l)
	out[21] = byte(l >> 8)
	out[22] = byte(l >> 16)
	out[23] = byte(l >> 24)
	return out
}

// InstallPIN hashes pinMaterial and installs it as a PIN-type secret key.
func (ko *KeyOps) InstallPIN(kid, useac, modifyac byte, pinMaterial []byte) error {
	hash := HashPinMaterial(pinMaterial)
	return ko.InstallSecretKey(KeyTypePIN, kid, useac, modifyac, MaxTries, hash[:])
}

// ExternalKeyAuth authenticates against secret kid: it requests an 8-byte
// challenge, encrypts it under the hashed pinMaterial (treated as a
// 24-byte 3DES key), and sends the first 8 bytes back as the response
// token via EXTERNAL AUTHENTICATE.
func (ko *KeyOps) ExternalKeyAuth(kid byte, pinMaterial []byte) error {
	challenge, sw, err := transact(ko.Card, ko.Sess, PlainAPDU{CLA: 0x00, INS: insGetChallenge, Le: 0x08})
	if err != nil {
		return err
	}
	if !SwOK(sw) {
		return &CardCmdError{Cmd: insGetChallenge, SW: sw}
	}
	if len(challenge) != 8 {
		return &CardCmdError{Cmd: insGetChallenge, Reason: "expected 8-byte challenge"}
	}

	hash := HashPinMaterial(pinMaterial)
	zeroIV := make([]byte, 8)
	enc, err := tdes24CBCEncrypt(hash[:], zeroIV, challenge)
	if err != nil {
		return err
	}
	token := enc[:8]

	_, sw, err = transact(ko.Card, ko.Sess, PlainAPDU{
		CLA: 0x00, INS: insExternalAuth, P1: 0x01, P2: 0x80 | kid, Data: token,
	})
	if err != nil {
		return err
	}
	if !SwOK(sw) {
		if tries, ok := RetriesFromSW(sw); ok {
			return &CardCmdError{Cmd: insExternalAuth, SW: sw, Reason: pinRetriesReason(tries)}
		}
		return &CardCmdError{Cmd: insExternalAuth, SW: sw}
	}
	return nil
}

func pinRetriesReason(tries byte) string {
	if tries == 0 {
		return "secret blocked: no retries remaining"
	}
	return "wrong secret"
}

// GetRetries requests a challenge, then sends an EXTERNAL AUTHENTICATE with
// no valid response token to provoke the card's 63 Cx "tries remaining"
// status, decoding the low nibble of SW2 as the retry count.
func (ko *KeyOps) GetRetries(kid byte) (byte, error) {
	_, sw, err := transact(ko.Card, ko.Sess, PlainAPDU{CLA: 0x00, INS: insGetChallenge, Le: 0x08})
	if err != nil {
		return 0, err
	}
	if !SwOK(sw) {
		return 0, &CardCmdError{Cmd: insGetChallenge, SW: sw}
	}

	_, sw, err = transact(ko.Card, ko.Sess, PlainAPDU{CLA: 0x00, INS: insExternalAuth, P1: 0x01, P2: 0x80 | kid})
	if err != nil {
		return 0, err
	}
	tries, ok := RetriesFromSW(sw)
	if !ok {
		return 0, &CardCmdError{Cmd: insExternalAuth, SW: sw, Reason: "expected 63 Cx retries response"}
	}
	return tries, nil
}

// UpdateSecretKey reprograms secret kid (PIN change/unblock) with a fresh
// retry counter and the hashed newMaterial.
func (ko *KeyOps) UpdateSecretKey(ktype, kid byte, newMaterial []byte) error {
	hash := HashPinMaterial(newMaterial)
	body := make([]byte, 0, 1+len(hash))
	body = append(body, (MaxTries<<4)|MaxTries)
	body = append(body, hash[:]...)

	_, sw, err := transact(ko.Card, ko.Sess, PlainAPDU{CLA: 0x80, INS: insUpdateSecretKey, P1: ktype, P2: kid, Data: body})
	if err != nil {
		return err
	}
	if !SwOK(sw) {
		return &CardCmdError{Cmd: insUpdateSecretKey, SW: sw}
	}
	return nil
}

// Decipher runs PSO:DECIPHER / COMPUTE-SIGNATURE (the same card command
// serves both roles) over data, rejecting payloads the card cannot accept
// in a single case-4-short exchange.
func (ko *KeyOps) Decipher(data []byte) ([]byte, error) {
	if len(data) > 255 {
		return nil, &InvalidArgumentError{Msg: "decipher payload exceeds 255 bytes"}
	}
	resp, sw, err := transact(ko.Card, ko.Sess, PlainAPDU{CLA: 0x00, INS: insDecipher, P1: 0x80, P2: 0x86, Data: data, Le: 256})
	if err != nil {
		return nil, err
	}
	if !SwOK(sw) {
		return nil, &CardCmdError{Cmd: insDecipher, SW: sw}
	}
	return resp, nil
}

// ComputeSignature is an alias for Decipher: the card uses one command
// (0x2A 0x80 0x86) for both roles, distinguished only by the security
// environment SetSecurityEnv last selected.
func (ko *KeyOps) ComputeSignature(data []byte) ([]byte, error) {
	return ko.Decipher(data)
}

// SetSecurityEnv points the security environment at the RSA key file
// implied by keyRef (fid = 0x2900 + FIDStep·keyRef), ahead of a Decipher
// or ComputeSignature call.
func (ko *KeyOps) SetSecurityEnv(keyRef byte) error {
	fid := 0x2900 + FIDStep*int(keyRef)
	data := []byte{0x80, 0x01, 0x84, 0x81, 0x02, byte(fid >> 8), byte(fid)}
	_, sw, err := transact(ko.Card, ko.Sess, PlainAPDU{CLA: 0x00, INS: insSetSecurityEnv, P1: 0x41, P2: 0xB8, Data: data})
	if err != nil {
		return err
	}
	if !SwOK(sw) {
		return &CardCmdError{Cmd: insSetSecurityEnv, SW: sw}
	}
	return nil
}

// RestoreSecurityEnv is a no-op: the card only locks for a non-zero
// security-environment number and never actually restores prior state, so
// there is no restore path to implement.
func (ko *KeyOps) RestoreSecurityEnv() error {
	return nil
}

// PinCmd is the dispatcher for GET_INFO / VERIFY / CHANGE / UNBLOCK: UNBLOCK
// authenticates against kid+1 (the PUK slot) rather than kid itself.
type PinCmdType int

const (
	PinCmdGetInfo PinCmdType = iota
	PinCmdVerify
	PinCmdChange
	PinCmdUnblock
)

func (ko *KeyOps) PinCmd(cmd PinCmdType, kid byte, secret, newSecret []byte) (triesLeft byte, err error) {
	switch cmd {
	case PinCmdGetInfo:
		return ko.GetRetries(kid)
	case PinCmdVerify:
		return 0, ko.ExternalKeyAuth(kid, secret)
	case PinCmdChange:
		if err := ko.ExternalKeyAuth(kid, secret); err != nil {
			return 0, err
		}
		return 0, ko.UpdateSecretKey(KeyTypePIN, kid, newSecret)
	case PinCmdUnblock:
		if err := ko.ExternalKeyAuth(kid+1, secret); err != nil {
			return 0, err
		}
		return 0, ko.UpdateSecretKey(KeyTypePIN, kid, newSecret)
	default:
		return 0, &NotSupportedError{Msg: "unknown pin command"}
	}
}
