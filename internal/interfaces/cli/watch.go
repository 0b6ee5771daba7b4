package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/turtacn/phdg/internal/application/diagram"
	"github.com/turtacn/phdg/internal/config"
	"github.com/turtacn/phdg/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/phdg/pkg/errors"
)

// DefaultDebounce is how long watch waits after the last change before
// rebuilding.
const DefaultDebounce = 250 * time.Millisecond

type watchOptions struct {
	plotOptions
	debounce time.Duration
}

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	opts := &watchOptions{}
	cmd := &cobra.Command{
		Use:   "watch [kind...]",
		Short: "Re-render plots whenever the config or a local table changes",
		Long: "Render the named plot kinds (all of them when none is given), then watch the\n" +
			"config file and every file-backed free-energy table.  Each change reloads the\n" +
			"config, rebuilds the system and renders again.  Object-storage tables are not\n" +
			"watched.  Stop with Ctrl-C.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			return runWatch(cmd, cc, args, opts)
		},
	}
	cmd.Flags().StringVar(&opts.dir, "dir", "", "output directory (default: plots.output_dir)")
	cmd.Flags().BoolVar(&opts.dump, "dump", false, "also write the phase-diagram classification as "+DumpFile)
	cmd.Flags().DurationVar(&opts.debounce, "debounce", DefaultDebounce, "quiet period before rebuilding")
	return cmd
}

// watchSet tracks the files whose changes trigger a rebuild and the
// directories registered with the watcher.
type watchSet struct {
	w     *fsnotify.Watcher
	files map[string]bool
	dirs  map[string]bool
}

func (s *watchSet) track(paths []string) error {
	s.files = make(map[string]bool, len(paths))
	for _, p := range paths {
		s.files[p] = true
		dir := filepath.Dir(p)
		if s.dirs[dir] {
			continue
		}
		if err := s.w.Add(dir); err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "cannot watch directory").WithDetail(dir)
		}
		s.dirs[dir] = true
	}
	return nil
}

func (s *watchSet) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	p, err := filepath.Abs(ev.Name)
	return err == nil && s.files[p]
}

// watchedPaths returns the absolute paths of the config file and of every
// file-backed table, resolved the way the file loader resolves them.
func watchedPaths(configPath string, sys config.SystemConfig) []string {
	var paths []string
	add := func(p string) {
		if abs, err := filepath.Abs(p); err == nil {
			paths = append(paths, abs)
		}
	}
	if configPath != "" {
		add(configPath)
	}
	for _, sc := range sys.Substances {
		if diagram.Scheme(sc.Table) != "file" {
			continue
		}
		p := strings.TrimPrefix(sc.Table, "file://")
		if sys.BaseDir != "" && !filepath.IsAbs(p) {
			p = filepath.Join(sys.BaseDir, p)
		}
		add(p)
	}
	return paths
}

func runWatch(cmd *cobra.Command, cc *CLIContext, kinds []string, opts *watchOptions) error {
	ctx := cmd.Context()
	log := cc.Logger.Named("watch")

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "cannot start file watcher")
	}
	defer fw.Close()
	set := &watchSet{w: fw, dirs: map[string]bool{}}
	if err := set.track(watchedPaths(cc.ConfigPath, cc.Config.System)); err != nil {
		return err
	}

	rebuild := func(reload bool) {
		if reload {
			next, err := cc.reload()
			if err != nil {
				log.Error("config reload failed", logging.Err(err))
				return
			}
			cc = next
			if err := set.track(watchedPaths(cc.ConfigPath, cc.Config.System)); err != nil {
				log.Error("watch update failed", logging.Err(err))
			}
		}
		if err := renderOnce(ctx, cmd, cc, kinds, &opts.plotOptions); err != nil {
			log.Error("render failed", logging.Err(err))
		}
	}

	rebuild(false)
	log.Info("watching", logging.Int("files", len(set.files)), logging.Duration("debounce", opts.debounce))

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			log.Info("watch stopped")
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if set.relevant(ev) {
				log.Debug("change detected", logging.String("path", ev.Name), logging.String("op", ev.Op.String()))
				fire = time.After(opts.debounce)
			}
		case werr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", logging.Err(werr))
		case <-fire:
			fire = nil
			rebuild(true)
		}
	}
}

func renderOnce(ctx context.Context, cmd *cobra.Command, cc *CLIContext, kinds []string, opts *plotOptions) error {
	sys, err := cc.Service.BuildSystem(ctx, cc.Config.System)
	if err != nil {
		return err
	}
	paths, err := renderPlots(ctx, cc, sys, kinds, opts)
	for _, p := range paths {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", p)
	}
	return err
}

//Personal.AI order the ending
