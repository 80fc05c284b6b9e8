package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gibdrop/internal/config"
	"gibdrop/internal/container"
	"gibdrop/internal/liststore"
)

// a trimmed down copy of the miner's example.py, enough to exercise the patcher
const sampleEntryScript = `# -*- coding: utf-8 -*-

import logging
from TwitchChannelPointsMiner import TwitchChannelPointsMiner
from TwitchChannelPointsMiner.classes.entities.Streamer import Streamer, StreamerSettings
from TwitchChannelPointsMiner.classes.Settings import FollowersOrder

twitch_miner = TwitchChannelPointsMiner(
    username="your-twitch-username",
    password="write-your-secure-psw",
)

twitch_miner.mine(
    [
        Streamer("streamer-username01", settings=StreamerSettings(make_predictions=True)),
        Streamer("streamer-username02"),
    ],
    followers=False,
    followers_order=FollowersOrder.ASC
)
`

const sampleConfig = `{
  // overrides of the built-in defaults, see internal/config
  vendor: {
    timeout_seconds: 10,
  },
  discovery: {
    fallback_streamer_cap: 5,
  },
}
`

// exports to a collector listening on the default otlp grpc port
const sampleTelemetry = `{
  otlp: {
    traces: { grpc_endpoint: "localhost:4317" },
    metrics: { grpc_endpoint: "localhost:4317" },
  },
}
`

func writeIfMissing(path, contents string) error {
	_, err := os.Stat(path)
	if err == nil {
		fmt.Println("already exists", path)
		return nil
	}
	fmt.Println("creating", path)
	return os.WriteFile(path, []byte(contents), 0644)
}

// CreateWorkspace lays out a miner working directory with every file gibdrop
// reads or mounts.
func CreateWorkspace(dir string) error {
	cfg := config.Default()
	cfg.WorkDir = dir

	files := map[string]string{
		cfg.Patch.ExampleScript:    sampleEntryScript,
		config.FileName:            sampleConfig,
		"telemetry.example.json5":  sampleTelemetry,
		cfg.Container.Dockerfile:   container.Dockerfile(cfg),
		cfg.Container.Requirements: "",
	}
	for name, contents := range files {
		err := writeIfMissing(filepath.Join(dir, name), contents)
		if err != nil {
			return err
		}
	}

	for _, sub := range cfg.Container.DataDirs {
		err := os.MkdirAll(filepath.Join(dir, sub), 0777)
		if err != nil {
			return err
		}
	}

	store := liststore.New(cfg.ListDir(), cfg.Lists.Active)
	created, err := store.EnsureFiles(cfg.Lists.Files()...)
	if err != nil {
		return err
	}
	for _, name := range created {
		fmt.Println("creating", filepath.Join(dir, name))
	}
	return nil
}
