package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grindlemire/go-unrpyc/internal/rpyc"
)

func newDumpCmd() *cobra.Command {
	var (
		stdout  bool
		clobber bool
	)

	cmd := &cobra.Command{
		Use:   "dump [path...]",
		Short: "Print the raw object tree of archives",
		Long: `Print the decoded object tree of each archive instead of decompiling
it. The tree is written next to the archive with a .txt extension.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := collectArchives(args)
			if err != nil {
				return err
			}

			var errorCount int
			for _, f := range files {
				if err := dumpFile(cmd.OutOrStdout(), f.Path, stdout, clobber); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", f.Path, err)
					errorCount++
				}
			}
			if errorCount > 0 {
				return fmt.Errorf("%d file(s) had errors", errorCount)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&stdout, "stdout", false, "print to stdout instead of writing .txt files")
	cmd.Flags().BoolVarP(&clobber, "clobber", "c", false, "overwrite existing output files")
	return cmd
}

func dumpFile(stdout io.Writer, path string, toStdout, clobber bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	v, _, err := rpyc.Load(data)
	if err != nil {
		return err
	}

	if toStdout {
		return rpyc.Dump(stdout, v)
	}

	out := strings.TrimSuffix(path, ".rpyc")
	out = strings.TrimSuffix(out, ".rpymc") + ".txt"
	if !clobber {
		if _, err := os.Stat(out); err == nil {
			return fmt.Errorf("%s already exists, pass --clobber to overwrite", out)
		}
	}

	fh, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	w := bufio.NewWriter(fh)
	if err := rpyc.Dump(w, v); err != nil {
		fh.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		fh.Close()
		return fmt.Errorf("writing file: %w", err)
	}
	return fh.Close()
}
