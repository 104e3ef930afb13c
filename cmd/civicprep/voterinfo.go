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
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blinklabs-io/civicprep"
	"github.com/blinklabs-io/civicprep/database"
)

func voterInfoCommand() *cobra.Command {
	var address string
	var open bool
	cmd := &cobra.Command{
		Use:   "voterinfo <election id>",
		Short: "Show voter information for an election",
		Long: "Show voter information for an election. The address defaults " +
			"to the election's division, such as \"us - ca\".",
		Args: cobra.ExactArgs(1),
		RunE: withNode(func(ctx context.Context, cmd *cobra.Command, args []string, n *civicprep.Node) error {
			id, err := parseElectionID(args[0])
			if err != nil {
				return err
			}
			state, err := n.ElectionState(ctx)
			if err != nil {
				return err
			}
			defer state.Close()
			if err := state.SelectElection(id); err != nil {
				return err
			}
			e := state.Election().Get()
			if e == nil {
				return fmt.Errorf("election %d: %w", id, database.ErrElectionNotFound)
			}
			query := address
			if query == "" {
				query = e.Division().Query()
			}
			if err := state.LoadVoterInfo(ctx, id, query); err != nil {
				return err
			}
			info := state.VoterInfo().Get()
			if err := printVoterInfo(cmd.OutOrStdout(), globalFlags.json, info); err != nil {
				return err
			}
			if open {
				state.OpenURL(info.ElectionInfoURL())
				if url, ok := state.URL().Consume(); ok {
					fmt.Fprintf(cmd.OutOrStdout(), "open: %s\n", url)
				}
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&address, "address", "", "address to look up instead of the election's division")
	cmd.Flags().BoolVar(&open, "open", false, "print the election information link to open")
	return cmd
}
