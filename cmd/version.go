///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// SEMVER is the version of the node
const SEMVER = "1.0.0"

func init() {
	rootCmd.AddCommand(versionCmd)
}

func printVersion() {
	fmt.Printf("xx network Share Store v%s\n\n", SEMVER)
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	fmt.Printf("Dependencies:\n\n")
	for _, dep := range info.Deps {
		fmt.Printf("%s %s\n", dep.Path, dep.Version)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of the share store",
	Long: `Print the version number of the share store. This also prints the
versions of all of its dependencies.`,
	Run: func(cmd *cobra.Command, args []string) {
		printVersion()
	},
}
