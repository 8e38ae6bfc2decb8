package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"golang.org/x/text/language"

	"github.com/dmitrymomot/targetdesk/pkg/broadcast"
	"github.com/dmitrymomot/targetdesk/pkg/config"
	"github.com/dmitrymomot/targetdesk/pkg/credentials"
	"github.com/dmitrymomot/targetdesk/pkg/identity"
	"github.com/dmitrymomot/targetdesk/pkg/interceptor"
	"github.com/dmitrymomot/targetdesk/pkg/logger"
	"github.com/dmitrymomot/targetdesk/pkg/requestid"
	"github.com/dmitrymomot/targetdesk/pkg/session"
	"github.com/dmitrymomot/targetdesk/pkg/targets"
)

const appName = "targetdesk"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "targetdesk:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, in io.Reader, out io.Writer) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}
	credCfg := credentials.DefaultConfig()
	if err := config.Load(&credCfg); err != nil {
		return err
	}
	if err := defaultCookieFile(&credCfg); err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(cfg.Environment, appName),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithOutput(os.Stderr),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	store, closeStore, err := credentials.Open(ctx, credCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn("failed to close credential store", logger.Error(err))
		}
	}()

	// Every call the application makes goes through this client so the
	// interceptor sees all of them.
	client := &http.Client{Transport: requestid.NewTransport(http.DefaultTransport)}

	ident, err := identity.New(cfg.APIURL, identity.WithHTTPClient(client), identity.WithUserAgent(appName))
	if err != nil {
		return err
	}

	term := newTerminal(out)
	manager := session.New(store, ident, ident,
		session.WithNavigator(term),
		session.WithLogger(log),
	)
	defer manager.Close()

	events := broadcast.New[interceptor.Unauthorized](8)
	defer events.Close()
	reg := interceptor.New(client, events, interceptor.WithLogger(log))

	provider := session.NewProvider(manager, reg, events, session.WithProviderLogger(log))
	if cfg.Banner {
		printBanner(out)
	}

	ctx, err = provider.Mount(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := provider.Unmount(); err != nil && !errors.Is(err, session.ErrNotMounted) {
			log.Warn("failed to unmount session", logger.Error(err))
		}
	}()

	tc, err := targets.New(cfg.APIURL, manager.HTTPClient(client))
	if err != nil {
		return err
	}

	tag, err := language.Parse(cfg.Language)
	if err != nil {
		tag = language.Indonesian
	}

	app := newApp(session.Use(ctx), tc, term, bufio.NewReader(in), tag)
	runREPL(ctx, app, app.in, term)
	return nil
}

func printBanner(w io.Writer) {
	fig := figure.NewFigure(appName, "small", true)
	fmt.Fprintln(w, fig.String())
}
