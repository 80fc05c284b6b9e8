package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gibdrop/cmd/gibdrop/globals"
	"gibdrop/internal/components/chrono"
	"gibdrop/internal/container"
	"gibdrop/internal/cookies"
	"gibdrop/internal/discovery"
	"gibdrop/internal/liststore"
	"gibdrop/internal/scrapers/facepunch"
	"gibdrop/internal/scrapers/twitchgql"
)

func newEngine(v *globals.Value) *discovery.Engine {
	return discovery.NewEngine(
		v.Config,
		chrono.NewStandardImpl(),
		v.Tel,
		facepunch.NewClient(v.Config.Vendor, v.Tel, v.Output("facepunch")),
		twitchgql.NewClient(v.Config.Vendor, v.Tel, v.Output("twitchgql")),
	)
}

func newStore(v *globals.Value) liststore.Store {
	return liststore.New(v.Config.ListDir(), v.Config.Lists.Active)
}

func newManager(v *globals.Value) *container.Manager {
	return container.NewManager(v.Config, container.ExecRunner{Dir: v.Config.WorkDir}, v.Tel)
}

// loadCookies never fails, an unreadable cookie file only disables the account
// campaigns.
func loadCookies(v *globals.Value) cookies.Jar {
	paths := make([]string, len(v.Config.Cookies.Paths))
	for i, p := range v.Config.Cookies.Paths {
		paths[i] = v.Config.Path(p)
	}

	jar, path, err := cookies.Load(paths)
	if err != nil {
		slog.Warn("failed to read cookies", "path", path, "err", err)
		return cookies.Jar{}
	}
	if path == "" {
		slog.Info("no cookie file found, only the public drops page will be checked")
		return jar
	}
	slog.Debug("loaded cookies", "path", path, "count", len(jar))
	return jar
}

// fail reports an error to the operator and exits, the raw output of a failed
// command is part of the message.
func fail(message string, err error) {
	var cmdErr *container.CommandError
	if errors.As(err, &cmdErr) {
		fmt.Fprintf(os.Stderr, "%s:\n%s\n", message, cmdErr.Error())
	} else {
		fmt.Fprintf(os.Stderr, "%s: %v\n", message, err)
	}
	os.Exit(1)
}
