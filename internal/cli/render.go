/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pwinlayout/internal/export"
)

func newRenderCommand(a *app) *cobra.Command {
	var (
		f        windowFlags
		format   string
		out      string
		scale    float64
		noLabels bool
		noScreen bool
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Draw the window geometry as a PNG or PDF diagram",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if format != "png" && format != "pdf" {
				return fmt.Errorf("--format %q: want png or pdf", format)
			}
			if out == "" {
				out = "geometry." + format
			}
			ctrl, err := f.controller(a, nil)
			if err != nil {
				return err
			}
			g := ctrl.Geometry()
			opts := export.Options{Scale: scale, IncludeLabels: !noLabels}
			if !noScreen {
				scr := ctrl.Env().Screen(g.ScreenID)
				opts.Screen = &scr
			}
			if format == "png" {
				err = export.WritePNGFile(out, g, opts)
			} else {
				err = export.RenderPDF(out, g, opts)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", okStyle.Render("wrote"), out)
			return err
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&format, "format", "png", "output format: png or pdf")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default geometry.<format>)")
	cmd.Flags().Float64Var(&scale, "scale", 0.5, "output units per screen point")
	cmd.Flags().BoolVar(&noLabels, "no-labels", false, "omit box labels")
	cmd.Flags().BoolVar(&noScreen, "no-screen", false, "omit the screen and visible frame")
	return cmd
}
