package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jborg/epass2003/internal/clicommon"
)

var selectCmd = &cobra.Command{
	Use:   "select <path>",
	Short: "SELECT a file by FID path and print its FCI",
	Long:  `Path is a slash-separated list of 4-hex-digit FIDs, e.g. "3F00/2F01".`,
	Args:  cobra.ExactArgs(1),
	Run:   runSelect,
}

func runSelect(cmd *cobra.Command, args []string) {
	path, err := clicommon.ParseFIDPath(args[0])
	if err != nil {
		fatalf("%v", err)
	}

	sess, err := openReadOnly()
	if err != nil {
		fatalf("%v", err)
	}
	defer sess.Close()

	fo := newFileOps(sess)
	f, err := fo.SelectByPath(path)
	if err != nil {
		fatalf("select %s: %v", args[0], err)
	}

	clicommon.LabelValueTable(fmt.Sprintf("FCI %02X%02X", f.FID[0], f.FID[1]), [][2]string{
		{"FID", fmt.Sprintf("%02X%02X", f.FID[0], f.FID[1])},
		{"Type", fileTypeName(f.Type)},
		{"Size", fmt.Sprintf("%d", f.Size)},
		{"RSA kind", rsaKindName(f.RSAKind)},
		{"ACL", aclString(f.ACL)},
	})
}
