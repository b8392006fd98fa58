package epass2003

// FileType classifies the descriptor byte carried in FCI tag 0x82.
type FileType int

const (
	FileTypeWorkingEF FileType = iota
	FileTypeDF
	FileTypeBSO
	FileTypeInternalEF
)

// RSAKeyKind distinguishes the two internal-EF descriptor sub-codes used
// for RSA key objects: 0x11 CRT, 0x12 public.
type RSAKeyKind int

const (
	RSAKeyNone RSAKeyKind = iota
	RSAKeyCRT
	RSAKeyPublic
)

// ACL is the 8-byte access-condition block carried in FCI tag 0x86, indexed
// by operation slot (LIST_FILES=0, CREATE=1, WRITE=2, DELETE=3 for a DF;
// READ=0, UPDATE=1, CRYPTO=2 for an EF). 0xFF marks a slot the file type
// does not define.
type ACL [8]byte

const (
	aclSlotListFilesOrRead = 0
	aclSlotCreateOrUpdate  = 1
	aclSlotWriteOrCrypto   = 2
	aclSlotDelete          = 3
)

// Principal values OR'd with macNoless to build one ACL byte.
const (
	principalEveryone byte = 0x00
	principalUser     byte = 0x01
	principalSO       byte = 0x02
	principalNoone    byte = 0x0F
	macNoless         byte = 0x40
	aclNotApplicable  byte = 0xFF
)

// AccessCondition is the abstract access requirement for one operation
// slot, collapsed to the three cases an ACL byte actually distinguishes.
type AccessCondition int

const (
	ACNone  AccessCondition = iota // no authentication required
	ACCheck                        // requires the default user secret
	ACNever                        // operation permanently denied
)

// acToACByte encodes one ACL byte: ACNone maps to EVERYONE, ACNever to
// NOONE, anything else to USER — always OR'd with the MAC_NOLESS flag.
func acToACByte(ac AccessCondition) byte {
	switch ac {
	case ACNone:
		return macNoless | principalEveryone
	case ACNever:
		return macNoless | principalNoone
	default:
		return macNoless | principalUser
	}
}

// DefaultACL builds the 8-byte ACL for a file from per-slot access
// conditions, used by ConstructFCI when a File carries no explicit ACL
// (construct_fci's "sec_attr_len==0" default-derivation path).
func DefaultACL(slot0, slot1, slot2, slot3 AccessCondition) ACL {
	a := ACL{aclNotApplicable, aclNotApplicable, aclNotApplicable, aclNotApplicable, aclNotApplicable, aclNotApplicable, aclNotApplicable, aclNotApplicable}
	a[aclSlotListFilesOrRead] = acToACByte(slot0)
	a[aclSlotCreateOrUpdate] = acToACByte(slot1)
	a[aclSlotWriteOrCrypto] = acToACByte(slot2)
	a[aclSlotDelete] = acToACByte(slot3)
	return a
}

// File is the card-side file object process_fci/construct_fci operate on.
type File struct {
	FID         [2]byte
	Type        FileType
	EFStructure byte // low 3 bits of the 0x82 descriptor for a working EF
	RSAKind     RSAKeyKind
	Size        int
	AltSize     int
	DFName      []byte
	PropAttrs   []byte // tag 0x85, or 0xA5 if the card used that alternate
	PropAttrsA5 bool
	ACL         ACL
	HasACL      bool
	RSAPublic   bool // tag 0x87 == {0x00, 0x66}
	Status      byte
}

func beUint(v []byte) int {
	n := 0
	for _, b := range v {
		n = n<<8 | int(b)
	}
	return n
}

func beBytes(n int) []byte {
	if n <= 0xFF {
		return []byte{byte(n)}
	}
	return []byte{byte(n >> 8), byte(n)}
}

// ProcessFCI parses a SELECT response's FCI template (tag 0x62) into a File.
func ProcessFCI(raw []byte) (*File, error) {
	inner, ok := findTLV(raw, 0x62)
	if !ok {
		return nil, &CardCmdError{Reason: "missing 0x62 FCI template"}
	}
	f := &File{}

	if v, ok := findTLV(inner, 0x83); ok && len(v) == 2 {
		f.FID[0], f.FID[1] = v[0], v[1]
	}
	if v, ok := findTLV(inner, 0x80); ok {
		f.Size = beUint(v)
	}
	if v, ok := findTLV(inner, 0x81); ok {
		f.AltSize = beUint(v)
	}
	if v, ok := findTLV(inner, 0x82); ok && len(v) >= 1 {
		desc := v[0]
		switch {
		case desc == 0x38:
			f.Type = FileTypeDF
		case desc >= 0x01 && desc <= 0x07:
			f.Type = FileTypeWorkingEF
			f.EFStructure = desc & 0x07
		case desc == 0x10:
			f.Type = FileTypeBSO
		case desc == 0x11:
			f.Type = FileTypeInternalEF
			f.RSAKind = RSAKeyCRT
		case desc == 0x12:
			f.Type = FileTypeInternalEF
			f.RSAKind = RSAKeyPublic
		default:
			return nil, &NotSupportedError{Msg: "unrecognized FCI descriptor byte"}
		}
	}
	if v, ok := findTLV(inner, 0x84); ok {
		f.DFName = append([]byte{}, v...)
		if _, has82 := findTLV(inner, 0x82); !has82 {
			f.Type = FileTypeDF
		}
	}
	if v, ok := findTLV(inner, 0x85); ok {
		f.PropAttrs = append([]byte{}, v...)
	} else if v, ok := findTLV(inner, 0xA5); ok {
		f.PropAttrs = append([]byte{}, v...)
		f.PropAttrsA5 = true
	}
	if v, ok := findTLV(inner, 0x86); ok && len(v) == 8 {
		copy(f.ACL[:], v)
		f.HasACL = true
	}
	if v, ok := findTLV(inner, 0x87); ok && len(v) == 2 && v[0] == 0x00 && v[1] == 0x66 {
		f.RSAPublic = true
	}
	if v, ok := findTLV(inner, 0x8A); ok && len(v) == 1 {
		f.Status = v[0]
	}
	return f, nil
}

// ConstructFCI builds the FCI template bytes CreateFile sends to 00 E0. fid
// is the already hooked (physical) file id to embed in tag 0x83.
func ConstructFCI(f *File, fid [2]byte) []byte {
	var inner []byte

	var desc byte
	switch f.Type {
	case FileTypeDF:
		desc = 0x38
	case FileTypeWorkingEF:
		desc = f.EFStructure & 0x07
	case FileTypeBSO:
		desc = 0x10
	case FileTypeInternalEF:
		if f.RSAKind == RSAKeyCRT {
			desc = 0x11
		} else {
			desc = 0x12
		}
	}
	inner = putTag(inner, 0x82, []byte{desc})
	inner = putTag(inner, 0x83, []byte{fid[0], fid[1]})
	if len(f.DFName) > 0 {
		inner = putTag(inner, 0x84, f.DFName)
	}
	if f.Size > 0 {
		inner = putTag(inner, 0x80, beBytes(f.Size))
	}
	if f.AltSize > 0 {
		inner = putTag(inner, 0x81, beBytes(f.AltSize))
	}
	if len(f.PropAttrs) > 0 {
		if f.PropAttrsA5 {
			inner = putTag(inner, 0xA5, f.PropAttrs)
		} else {
			inner = putTag(inner, 0x85, f.PropAttrs)
		}
	}

	acl := f.ACL
	if !f.HasACL {
		acl = defaultACLFor(f.Type)
	}
	inner = putTag(inner, 0x86, acl[:])

	if f.RSAPublic {
		inner = putTag(inner, 0x87, []byte{0x00, 0x66})
	}
	if f.Status != 0 {
		inner = putTag(inner, 0x8A, []byte{f.Status})
	}

	return putTag(nil, 0x62, inner)
}

// defaultACLFor derives the default access conditions construct_fci uses
// when a caller supplies no explicit ACL: a DF requires the user secret to
// create or delete children and to list its contents; a working EF
// requires the user secret to write or update and allows free read;
// internal (key) EFs and BSOs deny everything but CRYPTO/USE, which also
// requires the user secret.
func defaultACLFor(t FileType) ACL {
	switch t {
	case FileTypeDF:
		return DefaultACL(ACCheck, ACCheck, ACCheck, ACCheck)
	case FileTypeWorkingEF:
		return DefaultACL(ACNone, ACCheck, ACCheck, ACCheck)
	case FileTypeBSO, FileTypeInternalEF:
		return DefaultACL(ACNever, ACNever, ACCheck, ACNever)
	default:
		return DefaultACL(ACCheck, ACCheck, ACCheck, ACCheck)
	}
}
