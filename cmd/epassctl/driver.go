package main

import (
	"github.com/jborg/epass2003/internal/clicommon"
	"github.com/jborg/epass2003/pkg/epass2003"
)

func newFileOps(s *clicommon.Session) *epass2003.FileOps {
	return epass2003.NewFileOps(s.Conn, s.Sess)
}
