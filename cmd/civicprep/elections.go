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
	"strconv"

	"github.com/spf13/cobra"

	"github.com/blinklabs-io/civicprep"
)

func parseElectionID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid election id %q: %w", arg, err)
	}
	return id, nil
}

func electionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "elections",
		Short: "List and manage elections",
	}
	cmd.AddCommand(
		electionsListCommand(),
		electionsSavedCommand(),
		electionsShowCommand(),
		electionsToggleSaveCommand(),
		electionsDeleteCommand(),
		electionsPurgeCommand(),
	)
	return cmd
}

func electionsListCommand() *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List elections that have not been deleted",
		Args:  cobra.NoArgs,
		RunE: withNode(func(ctx context.Context, cmd *cobra.Command, _ []string, n *civicprep.Node) error {
			if refresh {
				state, err := n.ElectionState(ctx)
				if err != nil {
					return err
				}
				defer state.Close()
				if _, err := state.RefreshElections(ctx); err != nil {
					return err
				}
			}
			elections, err := n.Database().AllElections()
			if err != nil {
				return err
			}
			return printElections(cmd.OutOrStdout(), globalFlags.json, elections)
		}),
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "fetch the election list from the API first")
	return cmd
}

func electionsSavedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "saved",
		Short: "List saved elections",
		Args:  cobra.NoArgs,
		RunE: withNode(func(ctx context.Context, cmd *cobra.Command, _ []string, n *civicprep.Node) error {
			elections, err := n.Database().AllSavedElections()
			if err != nil {
				return err
			}
			return printElections(cmd.OutOrStdout(), globalFlags.json, elections)
		}),
	}
}

func electionsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one election",
		Args:  cobra.ExactArgs(1),
		RunE: withNode(func(ctx context.Context, cmd *cobra.Command, args []string, n *civicprep.Node) error {
			id, err := parseElectionID(args[0])
			if err != nil {
				return err
			}
			e, err := n.Database().ElectionByID(id)
			if err != nil {
				return err
			}
			return printElection(cmd.OutOrStdout(), globalFlags.json, *e)
		}),
	}
}

func electionsToggleSaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle-save <id>",
		Short: "Save or unsave an election",
		Args:  cobra.ExactArgs(1),
		RunE: withNode(func(ctx context.Context, cmd *cobra.Command, args []string, n *civicprep.Node) error {
			id, err := parseElectionID(args[0])
			if err != nil {
				return err
			}
			e, err := n.Database().ElectionByID(id)
			if err != nil {
				return err
			}
			state, err := n.ElectionState(ctx)
			if err != nil {
				return err
			}
			defer state.Close()
			if err := state.ToggleSaved(*e); err != nil {
				return err
			}
			e, err = n.Database().ElectionByID(id)
			if err != nil {
				return err
			}
			return printElection(cmd.OutOrStdout(), globalFlags.json, *e)
		}),
	}
}

func electionsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Hide an election from every list",
		Args:  cobra.ExactArgs(1),
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
			if err := state.DeleteElection(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted election %d\n", id)
			return nil
		}),
	}
}

func electionsPurgeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Permanently remove deleted elections",
		Args:  cobra.NoArgs,
		RunE: withNode(func(ctx context.Context, cmd *cobra.Command, _ []string, n *civicprep.Node) error {
			count, err := n.Database().PurgeDeleted()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d elections\n", count)
			return nil
		}),
	}
}
