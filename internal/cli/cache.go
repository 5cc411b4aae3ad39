/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"pwinlayout/internal/config"
	"pwinlayout/internal/store"
)

func newCacheCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage saved window geometries",
	}
	cmd.AddCommand(
		newCacheSaveCommand(a),
		newCacheLoadCommand(a),
		newCacheListCommand(a),
		newCacheDeleteCommand(a),
		newCacheExportCommand(a),
		newCacheImportCommand(a),
		newCachePasswordCommand(),
	)
	return cmd
}

func newCacheSaveCommand(a *app) *cobra.Command {
	var f windowFlags
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Compute a window geometry and save it under --slot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()
			ctrl, err := f.controller(a, st)
			if err != nil {
				return err
			}
			if err := ctrl.Snapshot(cmd.Context()); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s slot %q\n", okStyle.Render("saved"), f.slot)
			return err
		},
	}
	f.register(cmd)
	return cmd
}

func newCacheLoadCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "load <slot>",
		Short: "Print a saved geometry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()
			g, ok, err := st.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %q", store.ErrNotFound, args[0])
			}
			return printGeometry(cmd.OutOrStdout(), "Slot "+args[0], g)
		},
	}
}

func newCacheListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved geometries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()
			recs, err := st.List(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), recordTable(recs))
			return err
		},
	}
}

func recordTable(recs []store.Record) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("241"))).
		Headers("SLOT", "MODE", "WINDOW", "VIDEO", "SAVED")
	for _, r := range recs {
		g := r.Geometry
		t.Row(r.Slot, g.Mode.String(), rectString(g.WindowFrame), sizeString(g.VideoSize),
			r.SavedAt.Local().Format(time.DateTime))
	}
	return t.String()
}

func newCacheDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <slot>",
		Short: "Delete a saved geometry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s slot %q\n", okStyle.Render("deleted"), args[0])
			return err
		},
	}
}

func newCacheExportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write all saved geometries to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()
			recs, err := st.List(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.ExportFile(args[0], recs); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %d geometries to %s\n", okStyle.Render("exported"), len(recs), args[0])
			return err
		},
	}
}

func newCacheImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Save every geometry of a JSON export file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := store.ImportFile(args[0])
			if err != nil {
				return err
			}
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()
			for _, r := range recs {
				if err := st.Save(cmd.Context(), r.Slot, r.Geometry); err != nil {
					return fmt.Errorf("save %q: %w", r.Slot, err)
				}
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %d geometries\n", okStyle.Render("imported"), len(recs))
			return err
		},
	}
}

func newCachePasswordCommand() *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Store the database password in the OS keyring (read from stdin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if remove {
				if err := config.DeleteStorePassword(); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("password removed"))
				return err
			}
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			pw := strings.TrimRight(line, "\r\n")
			if pw == "" {
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				return errors.New("empty password")
			}
			if err := config.SetStorePassword(pw); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("password stored"))
			return err
		},
	}
	cmd.Flags().BoolVar(&remove, "clear", false, "remove the stored password")
	return cmd
}
