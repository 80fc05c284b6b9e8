package cmd

import (
	"bufio"
	"fmt"
	"os"

	"gibdrop/cmd/gibdrop/globals"
	"gibdrop/cmd/gibdrop/utils"
	"gibdrop/internal/discovery"

	"github.com/spf13/cobra"
)

func init() {
	campaignsCmd.Flags().BoolP("select", "s", false, "Pick campaigns whose streamers become the active list.")
	rootCmd.AddCommand(campaignsCmd)
}

var campaignsCmd = &cobra.Command{
	Use:   "campaigns [--select]",
	Short: "List running drop campaigns and their eligible streamers.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		interactive, err := cmd.Flags().GetBool("select")
		if err != nil {
			fail("read flags", err)
		}

		v := globals.Get(cmd.Context())
		engine := newEngine(v)
		campaigns := engine.AggregateForSelection(cmd.Context(), loadCookies(v))
		if len(campaigns) == 0 {
			fmt.Println("No running campaigns with eligible streamers were found.")
			return
		}

		if !interactive {
			utils.CampaignTable(campaigns, nil).Render()
			return
		}
		selectCampaigns(v, campaigns)
	},
}

func selectCampaigns(v *globals.Value, campaigns []discovery.Campaign) {
	names := make([]string, len(campaigns))
	for i, c := range campaigns {
		names[i] = c.Name
	}

	reader := bufio.NewReader(os.Stdin)
	var selection discovery.Selection
	for {
		utils.CampaignTable(campaigns, &selection).Render()

		input, err := utils.Prompt(
			reader, os.Stdout,
			"Toggle campaigns by number or name, press enter to save or q to quit: ",
		)
		if err != nil || input == "q" {
			fmt.Println("Nothing saved.")
			return
		}
		if input == "" {
			break
		}

		choices, err := utils.ResolveChoices(input, names)
		if err != nil {
			fmt.Println(err)
			continue
		}
		for _, i := range choices {
			selection.Toggle(&campaigns[i])
		}
	}

	streamers := selection.Streamers()
	if len(streamers) == 0 {
		fmt.Println("No streamers selected, nothing saved.")
		return
	}

	store := newStore(v)
	err := store.Save(v.Config.Lists.Selected, streamers)
	if err != nil {
		fail("save selection", err)
	}
	err = store.SetActive(v.Config.Lists.Selected)
	if err != nil {
		fail("save selection", err)
	}
	fmt.Printf(
		"Saved %d streamers from %d campaigns to %s, it is now the active list.\n",
		len(streamers), selection.Len(), v.Config.Lists.Selected,
	)
}
