package internal

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vadiminshakov/invoiceview/config"
	"github.com/vadiminshakov/invoiceview/internal/console"
	"github.com/vadiminshakov/invoiceview/internal/events"
	"github.com/vadiminshakov/invoiceview/internal/metrics"
	"github.com/vadiminshakov/invoiceview/internal/services/view"
	"github.com/vadiminshakov/invoiceview/internal/web"
)

const (
	metricsNamespace = "invoiceview"
	broadcastBuffer  = 4
)

// App wires a data source, the view and one renderer.
type App struct {
	Config      config.Config
	Source      view.Source
	View        *view.View
	Broadcaster *events.ViewBroadcaster
	Metrics     *metrics.Collector

	out      io.Writer
	prompter console.Prompter
	logger   *zap.Logger
}

// NewApp creates the source described by conf and the view around it.
func NewApp(conf config.Config, logger *zap.Logger) (*App, error) {
	src, err := createSource(conf)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create data source")
	}

	return newApp(conf, src, logger), nil
}

func newApp(conf config.Config, src view.Source, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("source", src.Name()), zap.String("ui", conf.UI))

	broadcaster := events.NewViewBroadcaster(broadcastBuffer)
	collector := metrics.NewCollector(metricsNamespace)
	v := view.New(
		view.WithLogger(logger),
		view.WithPublisher(broadcaster),
		view.WithRecorder(collector),
		view.WithLocale(conf.Locale),
		view.WithSortOnFilter(conf.SortOnFilter),
	)

	return &App{
		Config:      conf,
		Source:      src,
		View:        v,
		Broadcaster: broadcaster,
		Metrics:     collector,
		out:         os.Stdout,
		logger:      logger,
	}
}

// Run loads the invoice table and serves the configured renderer until it
// stops or ctx is cancelled. The renderer is available while the load is in
// flight; in print mode the table is printed once after the load.
func (a *App) Run(ctx context.Context) error {
	defer a.closeSource()

	if a.Config.UI == config.UIPrint {
		a.load(ctx)
		return console.Print(a.out, a.View.Snapshot(), time.Local)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.load(gctx)
		return nil
	})
	g.Go(func() error {
		// a stopped renderer aborts a load still in flight
		defer cancel()
		return a.render(gctx)
	})

	return g.Wait()
}

func (a *App) load(ctx context.Context) {
	if a.Config.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Config.FetchTimeout)
		defer cancel()
	}
	a.View.Load(ctx, a.Source)
}

func (a *App) render(ctx context.Context) error {
	switch a.Config.UI {
	case config.UIConsole:
		session := console.NewSession(a.View, a.prompter, a.out, a.logger)
		return errors.Wrap(session.Run(ctx), "console session")
	default:
		server := web.NewServer(a.Config.Addr, a.View, a.Broadcaster, a.Metrics.Handler(), a.logger)
		return errors.Wrap(server.Start(ctx), "web server")
	}
}

func (a *App) closeSource() {
	closer, ok := a.Source.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		a.logger.Warn("failed to close data source", zap.Error(err))
	}
}
