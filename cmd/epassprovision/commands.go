package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jborg/epass2003/internal/clicommon"
	"github.com/jborg/epass2003/pkg/epass2003"
)

var eraseCmd = &cobra.Command{
	Use:   "erase",
	Short: "Delete the master file, wiping the card's file system",
	Run:   runErase,
}

func runErase(cmd *cobra.Command, args []string) {
	sess, err := openSecure()
	if err != nil {
		fatalf("%v", err)
	}
	defer sess.Close()

	d := epass2003.NewDriver(sess.Conn, sess.Sess)
	err = d.Erase()
	recordAudit(sess, "erase", "3F00", okSW(err), err)
	if err != nil {
		fatalf("erase: %v", err)
	}
	clicommon.PrintSuccess("card erased")
}

var (
	genKeyPrivFID string
	genKeyPubFID  string
	genKeyBits    int
)

var genKeyCmd = &cobra.Command{
	Use:   "gen-key",
	Short: "Generate an RSA key pair into a private/public FID pair",
	Run:   runGenKey,
}

func init() {
	genKeyCmd.Flags().StringVar(&genKeyPrivFID, "private-fid", "", "private key FID, 4 hex digits")
	genKeyCmd.Flags().StringVar(&genKeyPubFID, "public-fid", "", "public key FID, 4 hex digits")
	genKeyCmd.Flags().IntVar(&genKeyBits, "bits", 1024, "RSA modulus bit length")
	genKeyCmd.MarkFlagRequired("private-fid")
	genKeyCmd.MarkFlagRequired("public-fid")
}

func runGenKey(cmd *cobra.Command, args []string) {
	prFID, err := parseFID(genKeyPrivFID)
	if err != nil {
		fatalf("--private-fid: %v", err)
	}
	puFID, err := parseFID(genKeyPubFID)
	if err != nil {
		fatalf("--public-fid: %v", err)
	}

	sess, err := openSecure()
	if err != nil {
		fatalf("%v", err)
	}
	defer sess.Close()

	ko := epass2003.NewKeyOps(sess.Conn, sess.Sess)
	modulus, err := ko.GenerateRSA(prFID, puFID, genKeyBits)
	recordAudit(sess, "gen-key", genKeyPrivFID, okSW(err), err)
	if err != nil {
		fatalf("gen-key: %v", err)
	}
	clicommon.LabelValueTable("RSA key pair generated", [][2]string{
		{"private FID", genKeyPrivFID},
		{"public FID", genKeyPubFID},
		{"bits", fmt.Sprintf("%d", genKeyBits)},
		{"modulus", hex.EncodeToString(modulus)},
	})
}

var (
	writeFactorFID   string
	writeFactorTag   int
	writeFactorHex   string
)

var writeFactorCmd = &cobra.Command{
	Use:   "write-factor",
	Short: "Upload one RSA key factor (modulus tag 0x02 or private exponent tag 0x03)",
	Run:   runWriteFactor,
}

func init() {
	writeFactorCmd.Flags().StringVar(&writeFactorFID, "fid", "", "key FID, 4 hex digits")
	writeFactorCmd.Flags().IntVar(&writeFactorTag, "tag", 0x02, "factor tag: 0x02 modulus, 0x03 private exponent")
	writeFactorCmd.Flags().StringVar(&writeFactorHex, "hex", "", "factor value, MSB-first hex")
	writeFactorCmd.MarkFlagRequired("fid")
	writeFactorCmd.MarkFlagRequired("hex")
}

func runWriteFactor(cmd *cobra.Command, args []string) {
	fid, err := parseFID(writeFactorFID)
	if err != nil {
		fatalf("--fid: %v", err)
	}
	factor, err := hex.DecodeString(writeFactorHex)
	if err != nil {
		fatalf("--hex: %v", err)
	}

	sess, err := openSecure()
	if err != nil {
		fatalf("%v", err)
	}
	defer sess.Close()

	ko := epass2003.NewKeyOps(sess.Conn, sess.Sess)
	err = ko.WriteRSAFactor(fid, byte(writeFactorTag), factor)
	recordAudit(sess, "write-factor", writeFactorFID, okSW(err), err)
	if err != nil {
		fatalf("write-factor: %v", err)
	}
	clicommon.PrintSuccess("factor written")
}

var installInitKeysKID int

var installInitKeysCmd = &cobra.Command{
	Use:   "install-init-keys",
	Short: "Install a fresh pair of handshake init keys (enc+mac) at kid",
	Run:   runInstallInitKeys,
}

func init() {
	installInitKeysCmd.Flags().IntVar(&installInitKeysKID, "kid", 0x01, "key id")
}

func runInstallInitKeys(cmd *cobra.Command, args []string) {
	sess, err := openSecure()
	if err != nil {
		fatalf("%v", err)
	}
	defer sess.Close()

	encKey, macKey, err := sess.Cfg.DeriveInitKeys()
	if err != nil {
		fatalf("derive init keys: %v", err)
	}

	ko := epass2003.NewKeyOps(sess.Conn, sess.Sess)
	err = ko.InstallInitKeys(byte(installInitKeysKID), encKey, macKey)
	recordAudit(sess, "install-init-keys", fmt.Sprintf("%#02x", installInitKeysKID), okSW(err), err)
	if err != nil {
		fatalf("install-init-keys: %v", err)
	}
	clicommon.PrintSuccess("init keys installed")
}

var (
	installPINKID       int
	installPINUseAC     int
	installPINModifyAC  int
	installPINMaterial  string
)

var installPINCmd = &cobra.Command{
	Use:   "install-pin",
	Short: "Install a PIN/PUK secret at kid",
	Run:   runInstallPIN,
}

func init() {
	installPINCmd.Flags().IntVar(&installPINKID, "kid", 0x01, "key id")
	installPINCmd.Flags().IntVar(&installPINUseAC, "use-ac", 0, "use access-condition byte")
	installPINCmd.Flags().IntVar(&installPINModifyAC, "modify-ac", 0, "modify access-condition byte")
	installPINCmd.Flags().StringVar(&installPINMaterial, "pin", "", "PIN/PUK value")
	installPINCmd.MarkFlagRequired("pin")
}

func runInstallPIN(cmd *cobra.Command, args []string) {
	sess, err := openSecure()
	if err != nil {
		fatalf("%v", err)
	}
	defer sess.Close()

	ko := epass2003.NewKeyOps(sess.Conn, sess.Sess)
	err = ko.InstallPIN(byte(installPINKID), byte(installPINUseAC), byte(installPINModifyAC), []byte(installPINMaterial))
	recordAudit(sess, "install-pin", fmt.Sprintf("%#02x", installPINKID), okSW(err), err)
	if err != nil {
		fatalf("install-pin: %v", err)
	}
	clicommon.PrintSuccess("PIN installed")
}

func parseFID(s string) ([2]byte, error) {
	var out [2]byte
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 2 {
		return out, fmt.Errorf("%q must be 4 hex digits", s)
	}
	out[0], out[1] = b[0], b[1]
	return out, nil
}

func okSW(err error) uint16 {
	if err != nil {
		return 0
	}
	return epass2003.SWSuccess
}
