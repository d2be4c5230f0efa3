package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grindlemire/go-unrpyc/internal/batch"
	"github.com/grindlemire/go-unrpyc/internal/config"
	"github.com/grindlemire/go-unrpyc/internal/log"
	"github.com/grindlemire/go-unrpyc/pkg/unrpyc"
)

type decompileFlags struct {
	clobber      bool
	processes    int
	lineFidelity bool
	initOffset   bool
	tagPlacement string
	noScreens    bool
	customNames  []string
}

func newDecompileCmd(root *rootFlags) *cobra.Command {
	var flags decompileFlags

	cmd := &cobra.Command{
		Use:   "decompile [path...]",
		Short: "Decompile .rpyc/.rpymc files",
		Long: `Decompile compiled Ren'Py scripts next to their archives.

Directories are searched recursively for .rpyc and .rpymc files. A
.rpyc file is written as .rpy and a .rpymc file as .rpym.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, root, &flags)
			if err != nil {
				return err
			}
			return runDecompile(cmd.Context(), cmd, cfg, args)
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&flags.clobber, "clobber", "c", false, "overwrite existing output files")
	f.IntVarP(&flags.processes, "processes", "p", 0, "number of files to decompile at once (default: CPU count)")
	f.BoolVarP(&flags.lineFidelity, "line-fidelity", "l", false, "keep every statement on its original line")
	f.BoolVar(&flags.initOffset, "init-offset", false, "guess an init offset statement from init priorities")
	f.StringVar(&flags.tagPlacement, "tag-placement", "", `where to write screen tags: "block" or "header"`)
	f.BoolVar(&flags.noScreens, "no-screen-code", false, "emit legacy screens as python instead of screen language")
	f.StringArrayVar(&flags.customNames, "sl-custom-names", nil, "custom screen displayable as class=name[-children], children is 0, 1 or many")
	return cmd
}

// loadConfig layers the flags the user actually set over the config
// file and environment.
func loadConfig(cmd *cobra.Command, root *rootFlags, flags *decompileFlags) (config.Config, error) {
	cfg, err := config.Load(root.config)
	if err != nil {
		return config.Config{}, err
	}

	set := cmd.Flags().Changed
	if set("clobber") {
		cfg.Clobber = flags.clobber
	}
	if set("processes") {
		if flags.processes < 1 {
			return config.Config{}, fmt.Errorf("--processes must be at least 1, got %d", flags.processes)
		}
		cfg.Processes = flags.processes
	}
	if set("line-fidelity") {
		cfg.Options.LineFidelity = flags.lineFidelity
	}
	if set("init-offset") {
		cfg.Options.AssumeInitOffset = flags.initOffset
	}
	if set("tag-placement") {
		p, err := config.ParseTagPlacement(flags.tagPlacement)
		if err != nil {
			return config.Config{}, err
		}
		cfg.Options.TagPlacement = p
	}
	if set("no-screen-code") {
		cfg.Options.DecompileEmbeddedCode = !flags.noScreens
	}
	for _, mapping := range flags.customNames {
		class, name, err := config.ParseDisplayable(mapping)
		if err != nil {
			return config.Config{}, err
		}
		cfg.AddDisplayable(class, name)
	}
	return cfg, nil
}

func runDecompile(ctx context.Context, cmd *cobra.Command, cfg config.Config, paths []string) error {
	files, err := collectArchives(paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.Info("No script files to decompile.")
		return nil
	}

	d := unrpyc.New()
	d.Options = cfg.Options

	summary := batch.Run(ctx, files, batch.Config{Processes: cfg.Processes}, decompileFile(d, cfg.Clobber))
	fmt.Fprintln(cmd.OutOrStdout(), summary)

	if summary.Failed > 0 || summary.Malformed > 0 {
		return fmt.Errorf("%d file(s) had errors", summary.Failed+summary.Malformed)
	}
	return nil
}

// decompileFile returns the batch job writing one archive's source.
func decompileFile(d *unrpyc.Decompiler, clobber bool) func(batch.File) batch.Result {
	return func(f batch.File) batch.Result {
		out := unrpyc.OutputPath(f.Path)
		log.Decompile("Decompiling %s to %s...", f.Path, out)

		if !clobber {
			if _, err := os.Stat(out); err == nil {
				log.Decompile("%s already exists. Pass --clobber to overwrite.", out)
				return batch.Result{Status: batch.Skipped}
			}
		}

		data, err := os.ReadFile(f.Path)
		if err != nil {
			return failed(fmt.Errorf("reading file: %w", err))
		}

		res, err := d.Decompile(f.Path, data)
		for _, line := range res.Log {
			log.Decompile("%s: %s", f.Path, line)
		}
		if err != nil {
			if unrpyc.IsMalformed(err) {
				log.Decompile("%v", err)
				return batch.Result{Status: batch.Malformed, Err: err}
			}
			return failed(err)
		}

		if err := os.WriteFile(out, []byte(res.Source), 0644); err != nil {
			return failed(fmt.Errorf("writing file: %w", err))
		}
		return batch.Result{Status: batch.Success}
	}
}

func failed(err error) batch.Result {
	log.Decompile("error: %v", err)
	return batch.Result{Status: batch.Failed, Err: err}
}
