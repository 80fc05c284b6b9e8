package cmd

import (
	"fmt"

	"gibdrop/cmd/gibdrop/globals"
	"gibdrop/internal/patcher"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(patchCmd)
}

var patchCmd = &cobra.Command{
	Use:   "patch",
	Short: "Patch the miner's entry script to load the active streamer list.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		v := globals.Get(cmd.Context())
		bootstrap := patcher.NewBootstrap(v.Config, v.Tel, v.Output("patcher"))

		result, err := bootstrap.Patch(cmd.Context())
		if err != nil {
			fail("patch entry script", err)
		}

		script := v.Config.Patch.EntryScript
		if result.CallSiteReplaced {
			fmt.Printf("Patched the miner call of %s to use %s.\n", script, patcher.StreamerVariable)
		}
		if result.LoaderInserted {
			fmt.Printf("Inserted the streamer loader into %s.\n", script)
		}
		for _, problem := range result.Problems {
			fmt.Printf("Warning: %v\n", problem)
		}
		if !result.CallSiteReplaced && !result.LoaderInserted && len(result.Problems) == 0 {
			fmt.Printf("%s is already patched.\n", script)
		}
	},
}
