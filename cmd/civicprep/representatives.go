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

	"github.com/spf13/cobra"

	"github.com/blinklabs-io/civicprep"
	"github.com/blinklabs-io/civicprep/civic"
)

// addressFlags binds one flag per address field
type addressFlags struct {
	values map[string]*string
}

var addressFlagNames = map[string]string{
	"line1": civic.KeyLine1,
	"line2": civic.KeyLine2,
	"city":  civic.KeyCity,
	"state": civic.KeyState,
	"zip":   civic.KeyZip,
}

func newAddressFlags(cmd *cobra.Command) *addressFlags {
	f := &addressFlags{values: make(map[string]*string)}
	for name := range addressFlagNames {
		f.values[name] = cmd.Flags().String(name, "", "address "+name)
	}
	return f
}

// changed returns the address preference keys set on the command line
func (f *addressFlags) changed(cmd *cobra.Command) map[string]string {
	ret := make(map[string]string)
	for name, key := range addressFlagNames {
		if cmd.Flags().Changed(name) {
			ret[key] = *f.values[name]
		}
	}
	return ret
}

func representativesCommand() *cobra.Command {
	var lat, lng float64
	cmd := &cobra.Command{
		Use:   "representatives",
		Short: "Look up representatives for an address",
		Long: "Look up representatives for an address. Address flags update " +
			"the saved address; --lat and --lng fill it from a location.",
		Args: cobra.NoArgs,
	}
	addr := newAddressFlags(cmd)
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude for location lookup")
	cmd.Flags().Float64Var(&lng, "lng", 0, "longitude for location lookup")
	cmd.MarkFlagsRequiredTogether("lat", "lng")
	cmd.RunE = withNode(func(ctx context.Context, cmd *cobra.Command, _ []string, n *civicprep.Node) error {
		state, err := n.RepresentativeState()
		if err != nil {
			return err
		}
		defer state.Close()
		changed := addr.changed(cmd)
		if cmd.Flags().Changed("lat") {
			if len(changed) > 0 {
				return errors.New("address flags cannot be combined with --lat/--lng")
			}
			err = state.UseLocation(ctx, n.Geocoder(), lat, lng)
		} else {
			current := state.Address().Get()
			for key, value := range changed {
				current = current.WithField(key, value)
			}
			state.UpdateAddress(current)
			err = state.FetchRepresentatives(ctx)
		}
		if err != nil {
			return err
		}
		return printRepresentatives(cmd.OutOrStdout(), globalFlags.json, state.Representatives().Get())
	})
	return cmd
}
