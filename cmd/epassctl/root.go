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
)

var rootCmd = &cobra.Command{
	Use:   "epassctl",
	Short: "Inspect an FTCOS/ePass2003 card's file system",
	Long: `epassctl selects and lists files on an FTCOS/ePass2003 PKI smart card
and decodes their FCI templates (size, type, ACL) without needing any key
material — it opens the reader in plain mode and never establishes a
secure channel.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		clicommon.InitLogging(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "epassctl.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(selectCmd, listCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openReadOnly() (*clicommon.Session, error) {
	return clicommon.Open(configPath, config.ValidationReadOnly)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "epassctl: "+format+"\n", args...)
	os.Exit(1)
}
