package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/syncthing/notify"

	"github.com/grindlemire/go-unrpyc/internal/batch"
	"github.com/grindlemire/go-unrpyc/internal/config"
	"github.com/grindlemire/go-unrpyc/internal/log"
	"github.com/grindlemire/go-unrpyc/pkg/unrpyc"
)

// settle is how long a directory must stay quiet before changed
// archives are decompiled. The engine writes several files per compile.
const settle = 100 * time.Millisecond

func newWatchCmd(root *rootFlags) *cobra.Command {
	var flags decompileFlags

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Decompile archives again whenever they change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, root, &flags)
			if err != nil {
				return err
			}
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return watch(ctx, dir, cfg)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&flags.processes, "processes", "p", 0, "number of files to decompile at once (default: CPU count)")
	f.BoolVarP(&flags.lineFidelity, "line-fidelity", "l", false, "keep every statement on its original line")
	f.BoolVar(&flags.initOffset, "init-offset", false, "guess an init offset statement from init priorities")
	f.StringVar(&flags.tagPlacement, "tag-placement", "", `where to write screen tags: "block" or "header"`)
	f.StringArrayVar(&flags.customNames, "sl-custom-names", nil, "custom screen displayable as class=name[-children]")
	return cmd
}

// watch decompiles every archive under dir that changes until ctx is
// done. Output files are always overwritten.
func watch(ctx context.Context, dir string, cfg config.Config) error {
	// Buffered so notify does not drop an event while a batch runs.
	c := make(chan notify.EventInfo, 64)
	if err := notify.Watch(filepath.Join(dir, "..."), c, notify.Create|notify.Write|notify.Rename); err != nil {
		return err
	}
	defer notify.Stop(c)

	log.Watch("Watching %s for changed archives...", dir)

	d := unrpyc.New()
	d.Options = cfg.Options
	work := decompileFile(d, true)

	pending := map[string]bool{}
	var timer *time.Timer
	timeout := func() <-chan time.Time {
		if timer != nil {
			return timer.C
		}
		// block forever
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-c:
			if !unrpyc.IsArchive(ev.Path()) {
				continue
			}
			pending[ev.Path()] = true
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(settle)
		case <-timeout():
			timer = nil
			files := changedFiles(pending)
			clear(pending)
			if len(files) == 0 {
				continue
			}
			summary := batch.Run(ctx, files, batch.Config{Processes: cfg.Processes}, work)
			log.Watch("%s", summary)
		}
	}
}

// changedFiles turns the pending set into batch inputs, dropping
// archives that were removed again.
func changedFiles(pending map[string]bool) []batch.File {
	var files []batch.File
	for path := range pending {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, batch.File{Path: path, Size: info.Size()})
	}
	return files
}
