/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	applog "pwinlayout/internal/log"
	"pwinlayout/internal/ui"
	"pwinlayout/internal/window"
)

func newUICommand(a *app) *cobra.Command {
	var f windowFlags
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Open the preview window (build with -tags fyne)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			l := applog.WithComponent("cli")

			var ws window.Store
			st, err := a.openStore(ctx)
			if err != nil {
				l.Warn("geometry store unavailable, running without it", slog.Any("err", err))
			} else {
				defer st.Close()
				ws = st
			}
			ctrl, err := f.controller(a, ws)
			if err != nil {
				return err
			}
			if ws != nil {
				if ok, err := ctrl.Restore(ctx); err != nil {
					l.Warn("restore failed", slog.Any("err", err))
				} else if ok {
					l.Info("restored window geometry", slog.String("slot", f.slot))
				}
			}
			if err := ui.Run(ctrl); err != nil {
				return err
			}
			if ws != nil {
				return ctrl.Snapshot(ctx)
			}
			return nil
		},
	}
	f.register(cmd)
	return cmd
}
