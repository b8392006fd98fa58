package main

import (
	"fmt"

	"github.com/jborg/epass2003/pkg/epass2003"
)

func fileTypeName(t epass2003.FileType) string {
	switch t {
	case epass2003.FileTypeDF:
		return "DF"
	case epass2003.FileTypeWorkingEF:
		return "working EF"
	case epass2003.FileTypeBSO:
		return "BSO"
	case epass2003.FileTypeInternalEF:
		return "internal EF"
	default:
		return "unknown"
	}
}

func rsaKindName(k epass2003.RSAKeyKind) string {
	switch k {
	case epass2003.RSAKeyCRT:
		return "CRT"
	case epass2003.RSAKeyPublic:
		return "public"
	default:
		return "n/a"
	}
}

func aclString(a epass2003.ACL) string {
	return fmt.Sprintf("% 02X", [8]byte(a))
}

// splitFIDPairs turns a flat FID-pair byte slice (as returned by ListFiles)
// into "HHLL" hex strings, two bytes at a time.
func splitFIDPairs(raw []byte) []string {
	var out []string
	for i := 0; i+1 < len(raw); i += 2 {
		out = append(out, fmt.Sprintf("%02X%02X", raw[i], raw[i+1]))
	}
	return out
}
