package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jborg/epass2003/internal/clicommon"
	"github.com/jborg/epass2003/pkg/epass2003"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Authenticate against a PIN/PUK secret",
	Run:   runVerify,
}

var changeCmd = &cobra.Command{
	Use:   "change",
	Short: "Verify the current PIN then install a new one",
	Run:   runChange,
}

var unblockCmd = &cobra.Command{
	Use:   "unblock",
	Short: "Authenticate against the PUK (kid+1) and install a new PIN",
	Run:   runUnblock,
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Report the retry count remaining for a secret",
	Run:   runInfo,
}

func runVerify(cmd *cobra.Command, args []string) {
	secret, err := readSecret(fmt.Sprintf("PIN for kid %#02x: ", kid))
	if err != nil {
		fatalf("%v", err)
	}

	sess, err := openSecure()
	if err != nil {
		fatalf("%v", err)
	}
	defer sess.Close()

	ko := epass2003.NewKeyOps(sess.Conn, sess.Sess)
	if _, err := ko.PinCmd(epass2003.PinCmdVerify, byte(kid), secret, nil); err != nil {
		fatalf("verify: %v", err)
	}
	clicommon.PrintSuccess("PIN verified")
}

func runChange(cmd *cobra.Command, args []string) {
	current, err := readSecret(fmt.Sprintf("current PIN for kid %#02x: ", kid))
	if err != nil {
		fatalf("%v", err)
	}
	fresh, err := readSecret("new PIN: ")
	if err != nil {
		fatalf("%v", err)
	}
	confirm, err := readSecret("confirm new PIN: ")
	if err != nil {
		fatalf("%v", err)
	}
	if string(fresh) != string(confirm) {
		fatalf("new PIN and confirmation do not match")
	}

	sess, err := openSecure()
	if err != nil {
		fatalf("%v", err)
	}
	defer sess.Close()

	ko := epass2003.NewKeyOps(sess.Conn, sess.Sess)
	if _, err := ko.PinCmd(epass2003.PinCmdChange, byte(kid), current, fresh); err != nil {
		fatalf("change: %v", err)
	}
	clicommon.PrintSuccess("PIN changed")
}

func runUnblock(cmd *cobra.Command, args []string) {
	puk, err := readSecret(fmt.Sprintf("PUK for kid %#02x: ", kid))
	if err != nil {
		fatalf("%v", err)
	}
	fresh, err := readSecret("new PIN: ")
	if err != nil {
		fatalf("%v", err)
	}

	sess, err := openSecure()
	if err != nil {
		fatalf("%v", err)
	}
	defer sess.Close()

	ko := epass2003.NewKeyOps(sess.Conn, sess.Sess)
	if _, err := ko.PinCmd(epass2003.PinCmdUnblock, byte(kid), puk, fresh); err != nil {
		fatalf("unblock: %v", err)
	}
	clicommon.PrintSuccess("PIN unblocked")
}

func runInfo(cmd *cobra.Command, args []string) {
	sess, err := openSecure()
	if err != nil {
		fatalf("%v", err)
	}
	defer sess.Close()

	ko := epass2003.NewKeyOps(sess.Conn, sess.Sess)
	tries, err := ko.PinCmd(epass2003.PinCmdGetInfo, byte(kid), nil, nil)
	if err != nil {
		fatalf("info: %v", err)
	}
	clicommon.LabelValueTable("PIN status", [][2]string{
		{"kid", fmt.Sprintf("%#02x", kid)},
		{"tries left", fmt.Sprintf("%d", tries)},
	})
}
