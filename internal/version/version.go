/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package version holds build identification, overridable with -ldflags:
//
//	go build -ldflags "-X pwinlayout/internal/version.Version=1.2.0 -X pwinlayout/internal/version.Commit=abc123"
package version

import (
	"runtime/debug"
	"strings"
)

var (
	Version = "0.1.0-dev"
	Commit  = ""
)

// String returns the version, followed by the short commit when known.
func String() string {
	commit := Commit
	if commit == "" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" {
					commit = s.Value
				}
			}
		}
	}
	if len(commit) > 7 {
		commit = commit[:7]
	}
	if strings.TrimSpace(commit) == "" {
		return Version
	}
	return Version + "+" + commit
}
