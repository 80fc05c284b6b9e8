package cmd

import (
	"fmt"
	"strings"

	"gibdrop/cmd/gibdrop/globals"
	"gibdrop/cmd/gibdrop/utils"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	streamersDropsCmd.Flags().Bool("use", false, "Make the drop streamers the active list.")

	streamersCmd.AddCommand(streamersSetCmd)
	streamersCmd.AddCommand(streamersUseCmd)
	streamersCmd.AddCommand(streamersDropsCmd)
	streamersCmd.AddCommand(streamersShowCmd)
	rootCmd.AddCommand(streamersCmd)
}

var streamersCmd = &cobra.Command{
	Use:   "streamers",
	Short: "Manage the streamer lists the miner watches.",
}

var streamersSetCmd = &cobra.Command{
	Use:   "set <streamer>[,<streamer>...]",
	Short: "Replace the default streamer list.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		v := globals.Get(cmd.Context())

		names := utils.SplitNames(args)
		if len(names) == 0 {
			fmt.Println("No streamers entered. Nothing was saved.")
			return
		}
		err := newStore(v).Save(v.Config.Lists.Default, names)
		if err != nil {
			fail("save default streamers", err)
		}
		fmt.Printf("Saved %d default streamers to %s.\n", len(names), v.Config.Lists.Default)
	},
}

// listAliases maps the short names accepted by `streamers use` to list files.
func listAliases(v *globals.Value) map[string]string {
	return map[string]string{
		"default":  v.Config.Lists.Default,
		"drops":    v.Config.Lists.RustDrops,
		"selected": v.Config.Lists.Selected,
	}
}

var streamersUseCmd = &cobra.Command{
	Use:   "use <default|drops|selected|file>",
	Short: "Point the active list at another streamer list.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		v := globals.Get(cmd.Context())
		store := newStore(v)

		name := args[0]
		if file, ok := listAliases(v)[name]; ok {
			name = file
		}

		names, err := store.Load(name)
		if err != nil {
			fail("read list", err)
		}
		if len(names) == 0 {
			fmt.Printf("Warning: %s is empty or missing, the miner will watch nobody.\n", name)
		}
		if !v.Config.Lists.Mounted(name) {
			fmt.Printf(
				"Warning: %s is not mounted into the miner container, only %s, %s and %s are. Copy it into one of them for `gibdrop miner start`.\n",
				name, v.Config.Lists.Default, v.Config.Lists.RustDrops, v.Config.Lists.Selected,
			)
		}
		err = store.SetActive(name)
		if err != nil {
			fail("set active list", err)
		}
		fmt.Printf("%s (%d streamers) is now the active list.\n", name, len(names))
	},
}

var streamersDropsCmd = &cobra.Command{
	Use:   "drops [--use]",
	Short: "Fetch the streamers of the dated drops campaign and save them.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		use, err := cmd.Flags().GetBool("use")
		if err != nil {
			fail("read flags", err)
		}

		v := globals.Get(cmd.Context())
		dated := newEngine(v).FetchDatedCampaign(cmd.Context())
		c := dated.Campaign

		switch {
		case dated.HasDates && !dated.IsActive:
			fmt.Printf("%s is not running (%s to %s).\n", c.Name, c.StartAt.Local().Format("Jan 02 15:04"), c.EndAt.Local().Format("Jan 02 15:04"))
			return
		case len(c.Streamers) == 0:
			fmt.Printf("No %s streamers were found.\n", c.Name)
			return
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"#", "Streamer"})
		for i, name := range c.Streamers {
			t.AppendRow(table.Row{i + 1, name})
		}
		t.Render()

		if c.SkippedNonASCII > 0 {
			fmt.Printf("Skipped %d streamers with non-ascii names.\n", c.SkippedNonASCII)
		}
		if c.GeneralDrops > 0 {
			fmt.Printf("There are also %d general drops.\n", c.GeneralDrops)
		} else {
			fmt.Println("No general drops found.")
		}

		store := newStore(v)
		err = store.Save(v.Config.Lists.RustDrops, c.Streamers)
		if err != nil {
			fail("save drop streamers", err)
		}
		fmt.Printf("Saved %d streamers to %s.\n", len(c.Streamers), v.Config.Lists.RustDrops)

		if !use {
			return
		}
		err = store.SetActive(v.Config.Lists.RustDrops)
		if err != nil {
			fail("set active list", err)
		}
		fmt.Println("Drop streamers set as active.")
	},
}

var streamersShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active list and its streamers.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		v := globals.Get(cmd.Context())

		name, names, err := newStore(v).LoadActive()
		if err != nil {
			fail("read active list", err)
		}
		if name == "" {
			fmt.Println("No active list, use `gibdrop streamers use` to pick one.")
			return
		}
		fmt.Printf("Active list: %s (%d streamers)\n", name, len(names))
		if len(names) > 0 {
			fmt.Println(strings.Join(names, ", "))
		}
	},
}
