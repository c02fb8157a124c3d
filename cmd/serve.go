package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/examina/internal/auth"
	"github.com/abhisek/examina/internal/config"
	"github.com/abhisek/examina/internal/logging"
	"github.com/abhisek/examina/internal/payment"
	"github.com/abhisek/examina/internal/scheduler"
	"github.com/abhisek/examina/internal/server"
	"github.com/abhisek/examina/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and background jobs",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("config", "", "Directory holding examina.yaml")
	serveCmd.Flags().String("port", "", "Listen port (overrides server.port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	var extra []string
	if dir, _ := cmd.Flags().GetString("config"); dir != "" {
		extra = append(extra, dir)
	}
	cfg, err := config.Load(extra...)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if p, _ := cmd.Flags().GetString("port"); p != "" {
		cfg.Server.Port = p
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	gin.SetMode(cfg.Server.Mode)

	dsn := cfg.Database.DSN
	if cfg.Database.Driver == store.DriverSQLite && dsn == "" {
		if dsn, err = resolveDBPath(cmd); err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
	}
	st, err := store.OpenDriver(cfg.Database.Driver, dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	bank, err := loadBank(cmd)
	if err != nil {
		return err
	}

	authn, err := auth.NewAuthenticator(cfg.Auth.JWTSecret)
	if err != nil {
		return fmt.Errorf("init auth: %w", err)
	}

	gateway := payment.NewRazorpay(payment.RazorpayConfig{
		KeyID:     cfg.Razorpay.KeyID,
		KeySecret: cfg.Razorpay.KeySecret,
		BaseURL:   cfg.Razorpay.BaseURL,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := newProvider(ctx, st.EventRepo(), log)
	if err != nil {
		log.Warn("LLM provider not configured, chat and plan coaching disabled", zap.Error(err))
		provider = nil
	}

	sched := scheduler.New(st.ProfileRepo(), st.TokenRepo(), cfg.Scheduler.ExpirySweep, log)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	srv := server.New(server.Deps{
		Store:      st,
		Bank:       bank,
		Auth:       auth.NewService(authn, st.ProfileRepo(), st.TokenRepo()),
		Payments:   payment.NewService(gateway, cfg.Razorpay.KeySecret, st.PaymentRepo(), st.ProfileRepo(), log),
		Tutor:      provider,
		TutorLimit: cfg.Tutor.FreeLimit,
		Log:        log,
	})
	return srv.Run(ctx, ":"+cfg.Server.Port)
}
