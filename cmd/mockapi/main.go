package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/targetdesk/pkg/config"
	"github.com/dmitrymomot/targetdesk/pkg/httpserver"
	"github.com/dmitrymomot/targetdesk/pkg/identity"
	"github.com/dmitrymomot/targetdesk/pkg/logger"
	"github.com/dmitrymomot/targetdesk/pkg/mockapi"
	"github.com/dmitrymomot/targetdesk/pkg/requestid"
	"github.com/dmitrymomot/targetdesk/pkg/targets"
)

type appConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	DemoNIP     string `env:"MOCKAPI_DEMO_NIP" envDefault:"1001"`
	DemoPass    string `env:"MOCKAPI_DEMO_PASSWORD" envDefault:"demo"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "mockapi:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}
	var srvCfg httpserver.Config
	if err := config.Load(&srvCfg); err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(cfg.Environment, "mockapi"),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	api := mockapi.New(mockapi.WithLogger(log))
	if err := seed(api, cfg.DemoNIP, cfg.DemoPass); err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Get("/health", httpserver.HealthCheckHandler(log))
	r.Mount("/", api)

	srv := httpserver.NewFromConfig(srvCfg,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(ctx context.Context, addr string) {
			log.InfoContext(ctx, "demo account ready", logger.StaffID(cfg.DemoNIP), slog.String("addr", addr))
		}),
	)
	return srv.Run(ctx, r)
}

// seed creates a demo branch manager with a small team.
func seed(api *mockapi.Server, nip, password string) error {
	if err := api.AddAccount(nip, password, identity.Profile{
		Type:         "branch_manager",
		BranchName:   "KC Bandung",
		Name:         "Demo Manager",
		TotalTarget:  3_000_000_000,
		Achieved:     1_200_000_000,
		Percentage:   40,
		TargetMonth:  3,
		TargetYear:   2025,
		TargetSetted: true,
	}); err != nil {
		return err
	}

	api.SetBranch(targets.Branch{
		BranchID:   1,
		BranchName: "KC Bandung",
		Month:      3,
		Year:       2025,
		Products: []targets.BranchProduct{
			{ProductID: 1, ProductName: "KUR", TotalTarget: 2_000_000_000, UnassignedAmount: 2_000_000_000},
			{ProductID: 2, ProductName: "KPR", TotalTarget: 1_000_000_000, UnassignedAmount: 1_000_000_000},
		},
	})
	api.SetStaff([]targets.Staff{
		{NIP: "2001", Name: "Budi Santoso"},
		{NIP: "2002", Name: "Citra Lestari"},
		{NIP: "2003", Name: "Dewi Anggraini"},
	})
	return nil
}
