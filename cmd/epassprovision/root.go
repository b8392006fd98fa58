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
	Use:   "epassprovision",
	Short: "Provision an FTCOS/ePass2003 card: erase, create files, generate keys, install secrets",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		clicommon.InitLogging(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "epassprovision.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(eraseCmd, genKeyCmd, writeFactorCmd, installInitKeysCmd, installPINCmd)
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
	fmt.Fprintf(os.Stderr, "epassprovision: "+format+"\n", args...)
	os.Exit(1)
}

func auditPath(s *clicommon.Session) string {
	return s.Cfg.Audit.DBPath
}
