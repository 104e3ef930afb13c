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
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blinklabs-io/civicprep"
)

func addressCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Show or change the saved address",
	}
	cmd.AddCommand(
		addressShowCommand(),
		addressSetCommand(),
		addressClearCommand(),
	)
	return cmd
}

func addressShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the saved address",
		Args:  cobra.NoArgs,
		RunE: withNode(func(ctx context.Context, cmd *cobra.Command, _ []string, n *civicprep.Node) error {
			state, err := n.RepresentativeState()
			if err != nil {
				return err
			}
			defer state.Close()
			return printAddress(cmd.OutOrStdout(), globalFlags.json, state.Address().Get())
		}),
	}
}

func addressSetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change fields of the saved address",
		Args:  cobra.NoArgs,
	}
	addr := newAddressFlags(cmd)
	cmd.RunE = withNode(func(ctx context.Context, cmd *cobra.Command, _ []string, n *civicprep.Node) error {
		state, err := n.RepresentativeState()
		if err != nil {
			return err
		}
		defer state.Close()
		changed := addr.changed(cmd)
		if len(changed) == 0 {
			return errors.New("no address fields given")
		}
		for key, value := range changed {
			if err := state.UpdateField(key, value); err != nil {
				return err
			}
		}
		if err := n.Prefs().LastError().Get(); err != nil {
			return err
		}
		return printAddress(cmd.OutOrStdout(), globalFlags.json, state.Address().Get())
	})
	return cmd
}

func addressClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget the saved address",
		Args:  cobra.NoArgs,
		RunE: withNode(func(ctx context.Context, cmd *cobra.Command, _ []string, n *civicprep.Node) error {
			if err := n.Prefs().Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "address cleared")
			return nil
		}),
	}
}
