package cmd

import (
	"fmt"

	"gibdrop/cmd/gibdrop/globals"
	"gibdrop/cmd/gibdrop/utils"
	"gibdrop/internal/environment"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func check(ok bool) string {
	if ok {
		return "ok"
	}
	return "missing"
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that everything the miner needs is in place.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		v := globals.Get(cmd.Context())
		r := environment.NewChecker(v.Config).Check(cmd.Context())

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Check", "State", "Detail"})
		t.AppendRow(table.Row{"host", r.OS, r.Platform})
		t.AppendRow(table.Row{"docker cli", check(r.DockerCli != ""), r.DockerCli})
		t.AppendRow(table.Row{"docker daemon", check(r.DockerDaemon), ""})
		t.AppendRow(table.Row{"entry script", check(r.EntryScript), v.Config.Patch.EntryScript})
		t.AppendRow(table.Row{"patched", check(r.ScriptPatched), ""})
		t.AppendRow(table.Row{"cookies", check(r.CookieFile != ""), r.CookieFile})
		t.AppendRow(table.Row{"active list", check(r.ActiveList != ""), r.ActiveList})
		t.Render()

		if r.Ready() {
			fmt.Println("Ready to start the miner.")
			return
		}
		for _, problem := range r.Problems {
			fmt.Println("- " + problem)
		}
	},
}
