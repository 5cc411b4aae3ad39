/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"pwinlayout/internal/store"
	"pwinlayout/internal/video"
)

func newGeometryCommand(a *app) *cobra.Command {
	var (
		f      windowFlags
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "geometry",
		Short: "Build the layout and window geometry for a video on a screen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, err := f.controller(a, nil)
			if err != nil {
				return err
			}
			g := ctrl.Geometry()
			if asJSON {
				data, err := store.Encode(g)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			return printGeometry(cmd.OutOrStdout(), "Geometry", g)
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the geometry as JSON")
	return cmd
}

func newScaleCommand(a *app) *cobra.Command {
	var (
		f                          windowFlags
		viewport, videoSize, winSz string
	)
	cmd := &cobra.Command{
		Use:   "scale",
		Short: "Resize the viewport, the video or the whole window",
		Long: `Resize one part of the window and let the rest follow. Exactly one of
--viewport, --video-size or --window must be given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			set := 0
			for _, s := range []string{viewport, videoSize, winSz} {
				if s != "" {
					set++
				}
			}
			if set != 1 {
				return errors.New("exactly one of --viewport, --video-size, --window is required")
			}
			ctrl, err := f.controller(a, nil)
			if err != nil {
				return err
			}
			before := ctrl.Geometry()
			env := ctrl.Env()
			var after = before
			switch {
			case viewport != "":
				sz, err := parseSize(viewport)
				if err != nil {
					return fmt.Errorf("--viewport: %w", err)
				}
				after = before.ScaleViewport(env, sz)
			case videoSize != "":
				sz, err := parseSize(videoSize)
				if err != nil {
					return fmt.Errorf("--video-size: %w", err)
				}
				after = before.ScaleVideo(env, sz)
			default:
				sz, err := parseSize(winSz)
				if err != nil {
					return fmt.Errorf("--window: %w", err)
				}
				after = ctrl.Resize(sz, false, true)
			}
			out := cmd.OutOrStdout()
			if err := printGeometry(out, "Before", before); err != nil {
				return err
			}
			return printGeometry(out, "After", after)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&viewport, "viewport", "", "requested viewport size WxH")
	cmd.Flags().StringVar(&videoSize, "video-size", "", "requested video size WxH")
	cmd.Flags().StringVar(&winSz, "window", "", "requested window size WxH")
	return cmd
}

func newMPVCommand(a *app) *cobra.Command {
	var f windowFlags
	cmd := &cobra.Command{
		Use:   "mpv <geometry>",
		Short: "Apply an mpv --geometry string such as 50%x50%+10+10",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := f.controller(a, nil)
			if err != nil {
				return err
			}
			g, err := ctrl.ApplyMPVGeometry(args[0])
			if err != nil {
				return err
			}
			return printGeometry(cmd.OutOrStdout(), "mpv "+args[0], g)
		},
	}
	f.register(cmd)
	return cmd
}

func newCropCommand(a *app) *cobra.Command {
	var f windowFlags
	cmd := &cobra.Command{
		Use:   "crop <WxH+X+Y>",
		Short: "Crop the video of an open window without moving the window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := f.controller(a, nil)
			if err != nil {
				return err
			}
			v := ctrl.Geometry().Video
			r, err := video.ParseCrop(args[0], v.RawSize())
			if err != nil {
				return err
			}
			before := ctrl.Geometry()
			after := ctrl.SetVideo(v.WithCrop(r))
			out := cmd.OutOrStdout()
			if err := printGeometry(out, "Before", before); err != nil {
				return err
			}
			return printGeometry(out, "Cropped "+video.FormatCrop(r, v.RawSize()), after)
		},
	}
	f.register(cmd)
	return cmd
}
