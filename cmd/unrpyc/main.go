// Package main provides the unrpyc command line tool.
//
// Usage:
//
//	unrpyc decompile [path...]   Decompile .rpyc/.rpymc files to source
//	unrpyc dump [path...]        Print the raw object tree of archives
//	unrpyc watch [dir]           Decompile archives again as they change
//	unrpyc version               Print version information
//
// Examples:
//
//	unrpyc decompile game             Recursively decompile a game directory
//	unrpyc decompile -c game/*.rpyc   Overwrite existing .rpy files
//	unrpyc decompile -p 1 game        Decompile one file at a time
//	unrpyc dump --stdout script.rpyc  Print the object tree to stdout
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grindlemire/go-unrpyc/internal/debug"
	"github.com/grindlemire/go-unrpyc/internal/log"
)

const version = "0.1.0"

type rootFlags struct {
	config   string
	debugLog string
	quiet    bool
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:           "unrpyc",
		Short:         "Decompile compiled Ren'Py scripts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !flags.quiet {
				log.SetOutput(cmd.OutOrStdout())
			}
			if flags.debugLog != "" {
				return debug.Init(flags.debugLog)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			log.SetOutput(nil)
			return debug.Close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.config, "config", "", "path to a config file (default $UNRPYC_CONFIG or ./unrpyc.json)")
	pf.StringVar(&flags.debugLog, "debug-log", "", "append debug traces to this file (default $UNRPYC_DEBUG)")
	pf.BoolVarP(&flags.quiet, "quiet", "q", false, "only print errors")

	root.AddCommand(
		newDecompileCmd(&flags),
		newDumpCmd(),
		newWatchCmd(&flags),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "unrpyc version %s\n", version)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
