package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jborg/epass2003/internal/clicommon"
	"github.com/jborg/epass2003/pkg/epass2003"
)

var (
	createFileFID   string
	createFileType  string
	createFileSize  int
)

var createFileCmd = &cobra.Command{
	Use:   "create-file",
	Short: "CREATE a file (working EF, DF, or internal EF) with default ACLs",
	Run:   runCreateFile,
}

func init() {
	createFileCmd.Flags().StringVar(&createFileFID, "fid", "", "FID, 4 hex digits")
	createFileCmd.Flags().StringVar(&createFileType, "type", "ef", "file type: ef, df, internal")
	createFileCmd.Flags().IntVar(&createFileSize, "size", 256, "file size in bytes")
	createFileCmd.MarkFlagRequired("fid")
	rootCmd.AddCommand(createFileCmd)
}

func runCreateFile(cmd *cobra.Command, args []string) {
	fid, err := parseFID(createFileFID)
	if err != nil {
		fatalf("--fid: %v", err)
	}

	f := &epass2003.File{FID: fid, Size: createFileSize}
	switch createFileType {
	case "ef":
		f.Type = epass2003.FileTypeWorkingEF
		f.ACL = epass2003.DefaultACL(epass2003.ACCheck, epass2003.ACCheck, epass2003.ACNever, epass2003.ACCheck)
	case "df":
		f.Type = epass2003.FileTypeDF
		f.ACL = epass2003.DefaultACL(epass2003.ACNone, epass2003.ACCheck, epass2003.ACNever, epass2003.ACCheck)
	case "internal":
		f.Type = epass2003.FileTypeInternalEF
		f.RSAKind = epass2003.RSAKeyCRT
		f.ACL = epass2003.DefaultACL(epass2003.ACNever, epass2003.ACCheck, epass2003.ACCheck, epass2003.ACCheck)
	default:
		fatalf("--type must be ef, df, or internal, got %q", createFileType)
	}
	f.HasACL = true

	sess, err := openSecure()
	if err != nil {
		fatalf("%v", err)
	}
	defer sess.Close()

	fo := epass2003.NewFileOps(sess.Conn, sess.Sess)
	err = fo.CreateFile(f)
	recordAudit(sess, "create-file", createFileFID, okSW(err), err)
	if err != nil {
		fatalf("create-file: %v", err)
	}
	clicommon.PrintSuccess(fmt.Sprintf("file %s created", createFileFID))
}
