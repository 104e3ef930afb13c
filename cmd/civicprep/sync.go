// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"github.com/spf13/cobra"

	"github.com/blinklabs-io/civicprep/internal/config"
	"github.com/blinklabs-io/civicprep/internal/node"
)

func syncCommand() *cobra.Command {
	var purge bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Keep the local election list in sync and serve metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				return errNoConfig
			}
			if cmd.Flags().Changed("purge-deleted") {
				cfg.PurgeDeleted = purge
			}
			logger := commonRun()
			return node.Run(cfg, logger)
		},
	}
	cmd.Flags().BoolVar(&purge, "purge-deleted", false, "remove deleted elections after every sync")
	return cmd
}
