/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dirpx.dev/dos"
	"dirpx.dev/dos/config"
	"dirpx.dev/dos/internal/demo"
	"dirpx.dev/dos/manifest"
)

// renderer styles the panels of the current command.
var renderer = lipgloss.DefaultRenderer()

// setupOutput applies the color flag to fatih/color and lipgloss.
func setupOutput(cmd *cobra.Command, _ []string) error {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return err
	}
	var on bool
	switch mode {
	case "on":
		on = true
	case "off":
		on = false
	case "auto":
		f, ok := cmd.OutOrStdout().(*os.File)
		on = ok && isTerminal(f)
	default:
		return fmt.Errorf("invalid --color %q (want auto, on or off)", mode)
	}
	color.NoColor = !on
	if on {
		renderer = lipgloss.NewRenderer(cmd.OutOrStdout())
	} else {
		renderer = lipgloss.NewRenderer(io.Discard)
	}
	return nil
}

// loadRuntime builds a runtime from the --config file and defines the demo
// classes, then every --manifest.
func loadRuntime(cmd *cobra.Command) (*dos.Runtime, error) {
	cfg := config.DefaultConfig()
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if path != "" {
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	rt, err := dos.NewRuntime(dos.WithConfig(cfg), dos.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if _, err := demo.Define(rt); err != nil {
		return nil, fmt.Errorf("demo classes: %w", err)
	}
	manifests, err := cmd.Flags().GetStringSlice("manifest")
	if err != nil {
		return nil, err
	}
	for _, p := range manifests {
		m, err := manifest.Load(p)
		if err != nil {
			return nil, err
		}
		if _, err := manifest.Define(rt, m); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		logger.Debug("manifest defined", "path", p, "classes", len(m.Classes))
	}
	return rt, nil
}
