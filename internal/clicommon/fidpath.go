package clicommon

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// ParseFIDPath turns a slash-separated hex string ("3F00/2F01") into the
// raw FID-pair byte path FileOps.SelectByPath expects.
func ParseFIDPath(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty path")
	}
	var out []byte
	for _, part := range strings.Split(s, "/") {
		part = strings.TrimSpace(part)
		if len(part) != 4 {
			return nil, fmt.Errorf("path component %q must be 4 hex digits", part)
		}
		b, err := hex.DecodeString(part)
		if err != nil {
			return nil, fmt.Errorf("path component %q: %w", part, err)
		}
		out = append(out, b...)
	}
	return out, nil
}
