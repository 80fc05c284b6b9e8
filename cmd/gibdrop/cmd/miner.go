package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"gibdrop/cmd/gibdrop/globals"
	"gibdrop/cmd/gibdrop/utils"
	"gibdrop/internal/container"

	"github.com/spf13/cobra"
)

func init() {
	minerBuildCmd.Flags().Bool("if-needed", false, "Only build when the image is missing or out of date.")

	minerCmd.AddCommand(minerBuildCmd)
	minerCmd.AddCommand(minerStartCmd)
	minerCmd.AddCommand(minerStatusCmd)
	minerCmd.AddCommand(minerRestartCmd)
	rootCmd.AddCommand(minerCmd)
}

var minerCmd = &cobra.Command{
	Use:   "miner",
	Short: "Manage the miner's docker container.",
}

func build(cmd *cobra.Command, v *globals.Value, ifNeeded bool) {
	manager := newManager(v)
	if ifNeeded {
		needed, err := manager.NeedsRebuild(cmd.Context())
		if err != nil {
			fail("inspect image", err)
		}
		if !needed {
			fmt.Printf("%s is up to date.\n", v.Config.Container.FullImage())
			return
		}
	}

	fmt.Printf("Building %s from %s...\n", v.Config.Container.FullImage(), v.Config.Container.Dockerfile)
	err := manager.Build(cmd.Context(), os.Stdout)
	if err != nil {
		fail("docker build failed", err)
	}
	fmt.Println("Image built successfully.")
}

var minerBuildCmd = &cobra.Command{
	Use:   "build [--if-needed]",
	Short: "Build the patched miner image.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ifNeeded, err := cmd.Flags().GetBool("if-needed")
		if err != nil {
			fail("read flags", err)
		}
		build(cmd, globals.Get(cmd.Context()), ifNeeded)
	},
}

var minerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the miner container with the list files and entry script mounted.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		v := globals.Get(cmd.Context())
		build(cmd, v, true)

		confirm := utils.Confirm(bufio.NewReader(os.Stdin), os.Stdout)
		err := newManager(v).Run(cmd.Context(), confirm)
		if errors.Is(err, container.ErrCancelled) {
			fmt.Println("Cancelled, the existing container was left alone.")
			return
		}
		if err != nil {
			fail("start container", err)
		}
		fmt.Printf("Started %s, follow it with `docker logs -f %s`.\n", v.Config.Container.Name, v.Config.Container.Name)
	},
}

var minerStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state and recent logs of the miner container.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		v := globals.Get(cmd.Context())

		status, err := newManager(v).Status(cmd.Context())
		if err != nil {
			fail("container status", err)
		}
		if !status.Exists {
			fmt.Printf("No container named '%s' found, use `gibdrop miner start`.\n", v.Config.Container.Name)
			return
		}

		fmt.Println(status.Summary)
		if !status.Running {
			fmt.Println("The container exists but is not running, use `gibdrop miner restart`.")
			return
		}
		fmt.Println("Recent logs:")
		fmt.Print(status.RecentLogs)
	},
}

var minerRestartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Restart the miner container so it picks up the active list.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		v := globals.Get(cmd.Context())

		fmt.Printf("Restarting %s...\n", v.Config.Container.Name)
		err := newManager(v).Restart(cmd.Context(), os.Stdout)
		if errors.Is(err, container.ErrNoContainer) {
			fmt.Printf("No container named '%s' found, use `gibdrop miner start` first.\n", v.Config.Container.Name)
			return
		}
		if err != nil {
			fail("restart container", err)
		}
		fmt.Printf("\nThe miner is running, use `docker logs -f %s` to keep following it.\n", v.Config.Container.Name)
	},
}
