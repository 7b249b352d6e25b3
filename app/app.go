package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/myshop/myshop-manager/config"
	httpapi "github.com/myshop/myshop-manager/internal/api/http"
	"github.com/myshop/myshop-manager/internal/apisrv/admin"
	"github.com/myshop/myshop-manager/internal/apisrv/auth"
	"github.com/myshop/myshop-manager/internal/apisrv/frontend"
	"github.com/myshop/myshop-manager/internal/cache"
	"github.com/myshop/myshop-manager/internal/dependency"
	"github.com/myshop/myshop-manager/internal/mail"
	"github.com/myshop/myshop-manager/internal/ratelimit"
	"github.com/myshop/myshop-manager/internal/report"
	"github.com/myshop/myshop-manager/internal/stats"
	"github.com/myshop/myshop-manager/internal/store"
	"github.com/myshop/myshop-manager/internal/store/bunt"
	"golang.org/x/text/language"
)

const shutdownTimeout = 10 * time.Second

// App is the main application
type App struct {
	hs     *httpapi.Server
	db     dependency.Repository
	mailer dependency.Mailer
	c      *config.Config
	done   chan struct{}
}

// New returns a new instance of App. rep may be nil, in which case the
// store selected by the config is opened on Start.
func New(c *config.Config, rep dependency.Repository) *App {
	return &App{
		c:    c,
		done: make(chan struct{}),
		db:   rep,
	}
}

func openRepository(ctx context.Context, c *config.Config) (dependency.Repository, error) {
	if c.Storage.Type == config.StorageMySQL {
		ms, err := store.New(ctx, c.DB)
		if err != nil {
			return nil, err
		}
		return ms, nil
	}
	bs, err := bunt.New(ctx, c.Bunt)
	if err != nil {
		return nil, err
	}
	return bs, nil
}

// Start starts the app
func (a *App) Start(ctx context.Context) error {
	var err error
	slog.Default().InfoContext(ctx, "starting myshop manager",
		slog.String("storage", a.c.Storage.Type),
	)

	if a.db == nil {
		if a.db, err = openRepository(ctx, a.c); err != nil {
			return fmt.Errorf("couldn't open %s store: %w", a.c.Storage.Type, err)
		}
	}

	statsCache, err := cache.New(ctx, &a.c.Cache)
	if err != nil {
		return fmt.Errorf("couldn't create statistics cache: %w", err)
	}
	statsS, err := stats.New(&a.c.Stats, a.db, statsCache)
	if err != nil {
		return fmt.Errorf("couldn't create statistics service: %w", err)
	}

	tag := language.English
	if a.c.Shop.Language != "" {
		if tag, err = language.Parse(a.c.Shop.Language); err != nil {
			return fmt.Errorf("bad shop language %q: %w", a.c.Shop.Language, err)
		}
	}
	renderer, err := report.New(a.c.Shop.Name, tag, statsS.Location())
	if err != nil {
		return fmt.Errorf("couldn't create report renderer: %w", err)
	}

	a.mailer, err = mail.New(&a.c.Mailer, a.db.Mail())
	if err != nil {
		return fmt.Errorf("couldn't create mailer: %w", err)
	}
	if err := a.mailer.Start(ctx); err != nil {
		return fmt.Errorf("couldn't start mailer: %w", err)
	}

	limiter := ratelimit.NewCustomMultiKeyLimiter(a.c.RateLimit)
	authS, err := auth.New(&a.c.Auth, a.db.Admin(), limiter)
	if err != nil {
		return fmt.Errorf("failed create new auth server: %w", err)
	}

	adminS := admin.New(a.db, a.mailer, statsS, renderer, authS)
	frontendS := frontend.New(a.db, a.mailer, statsS, limiter)

	// start API server
	a.hs = httpapi.New(&a.c.HTTP)
	if err = a.hs.Start(ctx, adminS, frontendS); err != nil {
		return fmt.Errorf("cannot start http server: %w", err)
	}

	go func() {
		<-a.hs.Done()
		close(a.done)
	}()

	return nil
}

// Stop stops the application and waits for all services to exit
func (a *App) Stop(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if a.hs != nil {
		if err := a.hs.Stop(ctx); err != nil {
			slog.Default().ErrorContext(ctx, "can't stop http server", slog.String("err", err.Error()))
		}
	}
	if a.mailer != nil {
		if err := a.mailer.Stop(); err != nil {
			slog.Default().ErrorContext(ctx, "can't stop mailer", slog.String("err", err.Error()))
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}

// Done returns a channel that is closed after the http server has exited
func (a *App) Done() <-chan struct{} {
	return a.done
}
