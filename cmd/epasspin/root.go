package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jborg/epass2003/internal/clicommon"
	"github.com/jborg/epass2003/internal/config"
)

var (
	configPath string
	verbose    bool
	kid        int
)

var rootCmd = &cobra.Command{
	Use:   "epasspin",
	Short: "Verify, change, and unblock PIN/PUK secrets on an FTCOS/ePass2003 card",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		clicommon.InitLogging(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "epasspin.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().IntVarP(&kid, "kid", "k", 0x01, "secret key id")
	rootCmd.AddCommand(verifyCmd, changeCmd, unblockCmd, infoCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openSecure() (*clicommon.Session, error) {
	return clicommon.Open(configPath, config.ValidationFull)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "epasspin: "+format+"\n", args...)
	os.Exit(1)
}
