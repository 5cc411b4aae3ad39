/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package cli is the pwinlayout command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"pwinlayout/internal/config"
	"pwinlayout/internal/layout"
	applog "pwinlayout/internal/log"
	"pwinlayout/internal/notify"
	"pwinlayout/internal/pwin"
	"pwinlayout/internal/screen"
	"pwinlayout/internal/store"
)

// app is the state shared by all commands, loaded before any of them runs.
type app struct {
	configPath string
	cfg        config.Config
	password   string
	env        pwin.Env
	prefs      layout.Preferences
	notifier   *notify.Client
}

const notifyFlushTimeout = 2 * time.Second

func (a *app) load(cmd *cobra.Command) error {
	cfg, pw, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	applog.Init(cfg.Logging.Options())
	a.cfg, a.password = cfg, pw
	a.prefs = cfg.Player.Preferences()
	a.env = pwin.Env{
		Screens: screen.NewStatic(cfg.ScreenList()...),
		Policy:  a.prefs.Policy(),
	}
	a.notifier = notify.New(cmd.Context(), notify.Config{
		URL:     cfg.Notify.URL,
		Timeout: time.Duration(cfg.Notify.TimeoutMS) * time.Millisecond,
		Debug:   cfg.Notify.Debug,
	})
	applog.WithComponent("cli").Debug("config loaded",
		slog.String("command", cmd.Name()),
		slog.Int("screens", len(cfg.ScreenList())),
		slog.String("store", cfg.Store.Driver))
	return nil
}

// openStore opens the configured geometry store.
func (a *app) openStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, a.cfg.Store, a.password)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", a.cfg.Store.Driver, err)
	}
	return st, nil
}

// closeNotifier sends what is still queued and stops the notifier.
func (a *app) closeNotifier(ctx context.Context) {
	if a.notifier == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, notifyFlushTimeout)
	defer cancel()
	a.notifier.Flush(ctx)
	a.notifier.Close()
	a.notifier = nil
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "pwinlayout",
		Short: "Player window geometry engine",
		Long: `pwinlayout computes the frame of a video player window and the placement
of its title bar, on-screen controller, sidebars and video for a given
screen, video and set of layout preferences.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.load(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			a.closeNotifier(cmd.Context())
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default is the per-user pwinlayout/config.yaml)")

	root.AddCommand(
		newVersionCommand(),
		newGeometryCommand(a),
		newScaleCommand(a),
		newMPVCommand(a),
		newCropCommand(a),
		newRenderCommand(a),
		newCacheCommand(a),
		newUICommand(a),
	)
	return root
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
