package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jborg/epass2003/internal/clicommon"
)

var listCmd = &cobra.Command{
	Use:   "list [df-path]",
	Short: "LIST the FIDs of the currently selected (or given) DF",
	Args:  cobra.MaximumNArgs(1),
	Run:   runList,
}

func runList(cmd *cobra.Command, args []string) {
	sess, err := openReadOnly()
	if err != nil {
		fatalf("%v", err)
	}
	defer sess.Close()

	fo := newFileOps(sess)

	if len(args) == 1 {
		path, err := clicommon.ParseFIDPath(args[0])
		if err != nil {
			fatalf("%v", err)
		}
		if _, err := fo.SelectByPath(path); err != nil {
			fatalf("select %s: %v", args[0], err)
		}
	}

	raw, err := fo.ListFiles()
	if err != nil {
		fatalf("list: %v", err)
	}
	if len(raw) == 0 {
		clicommon.PrintSuccess("(empty)")
		return
	}

	t := clicommon.NewTable("Files")
	t.AppendHeader(table.Row{"FID"})
	for _, fid := range splitFIDPairs(raw) {
		t.AppendRow(table.Row{fid})
	}
	t.Render()
}
