package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/mpapenbr/iracelog-lapanalysis/log"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/cmd/source"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/config"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/publish"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/render/table"
)

var ErrFileSourceOnly = errors.New("watch requires --input")

var natsURL string // optional, publishing is off if empty

func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "derives the laps again whenever the input file changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			var conn publish.Conn
			if natsURL != "" {
				cfg, _ := config.Resolve()
				nc, err := publish.Connect(ctx, natsURL, cfg.WaitForServices)
				if err != nil {
					return err
				}
				defer nc.Close()
				conn = nc
			}
			w, err := newWatcher(ctx, cmd.OutOrStdout(), conn)
			if err != nil {
				return err
			}
			defer w.close()
			return w.run(ctx, nil)
		},
	}
	cmd.Flags().StringVar(&natsURL, "nats-url", "",
		"publish each derivation to this NATS server")
	cmd.Flags().StringVar(&config.SubjectPrefix, "subject-prefix",
		publish.DefaultSubjectPrefix, "prefix of the subject the laps are published to")
	return cmd
}

type watcher struct {
	src   *source.Setup
	out   io.Writer
	pub   *publish.Publisher
	log   *log.Logger
	fsw   *fsnotify.Watcher
	title string
}

func newWatcher(ctx context.Context, out io.Writer, conn publish.Conn) (*watcher, error) {
	if config.Input == "" {
		return nil, ErrFileSourceOnly
	}
	s, err := source.New(ctx)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		s.Close()
		return nil, err
	}
	w := &watcher{
		src:   s,
		out:   out,
		log:   log.GetFromContext(ctx).Named("watch"),
		fsw:   fsw,
		title: s.Selection.String(),
	}
	if conn != nil {
		w.pub = publish.New(conn,
			publish.WithSubjectPrefix(config.SubjectPrefix),
			publish.WithLogger(w.log))
	}
	// editors often replace the file, so the directory is watched
	if err := fsw.Add(filepath.Dir(s.File.Path())); err != nil {
		w.close()
		return nil, fmt.Errorf("watch %s: %w", s.File.Path(), err)
	}
	return w, nil
}

func (w *watcher) close() {
	w.fsw.Close()
	w.src.Close()
}

// run derives the laps once and then on every change of the input file
// until ctx is done. Each derivation is signaled on processed if not nil.
func (w *watcher) run(ctx context.Context, processed chan<- error) error {
	notify := func(err error) {
		if processed == nil {
			return
		}
		select {
		case processed <- err:
		case <-ctx.Done():
		}
	}
	notify(w.process(ctx))
	target := filepath.Clean(w.src.File.Path())
	for {
		select {
		case <-ctx.Done():
			w.log.Info("context done, stopping watch")
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				w.log.Info("watcher events channel closed, stopping watch")
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			w.log.Debug("change detected",
				log.String("file", event.Name), log.String("op", event.Op.String()))
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.src.File.Invalidate(ctx)
				notify(w.process(ctx))
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				w.log.Info("watcher errors channel closed, stopping watch")
				return nil
			}
			w.log.Error("watcher error", log.ErrorField(err))
		}
	}
}

func (w *watcher) process(ctx context.Context) error {
	res, err := w.src.Derive(ctx)
	if err != nil {
		w.log.Warn("could not derive laps", log.ErrorField(err))
		return err
	}
	if err := table.Render(w.out, res, table.WithTitle(w.title)); err != nil {
		return err
	}
	if w.pub != nil {
		if _, err := w.pub.Publish(w.src.Selection, res); err != nil {
			w.log.Error("could not publish laps", log.ErrorField(err))
			return err
		}
	}
	return nil
}
