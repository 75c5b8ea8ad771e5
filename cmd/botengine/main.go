package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/gestorzap/botengine/internal/api"
	"github.com/gestorzap/botengine/internal/flow"
	"github.com/gestorzap/botengine/internal/flowdef"
	"github.com/gestorzap/botengine/internal/lockfile"
	"github.com/gestorzap/botengine/internal/menu"
	"github.com/gestorzap/botengine/internal/messaging"
	"github.com/gestorzap/botengine/internal/notify"
	"github.com/gestorzap/botengine/internal/scheduler"
	"github.com/gestorzap/botengine/internal/store"
	"github.com/gestorzap/botengine/internal/twiliowhatsapp"
	"github.com/gestorzap/botengine/internal/util"
	"github.com/gestorzap/botengine/internal/whatsapp"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for bot engine state data
	DefaultStateDir = "/var/lib/botengine"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "botengine.db"
	// DefaultTenantID is the tenant bound to the messaging transport
	DefaultTenantID = "default"
)

func main() {
	initializeLogger()
	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	// One instance per state directory.
	lock, err := lockfile.Acquire(*flags.stateDir)
	if err != nil {
		slog.Error("Failed to acquire state directory lock", "error", err)
		os.Exit(1)
	}
	defer lock.Release()

	if err := run(flags); err != nil {
		slog.Error("Bot engine failed to run", "error", err)
		lock.Release()
		os.Exit(1)
	}
	slog.Info("Bot engine exited successfully")
}

func run(flags Flags) error {
	st, err := openStore(flags)
	if err != nil {
		return err
	}
	defer st.Close()

	engine := flow.NewEngine(st, buildNotifier(flags))
	engine.SetMenuHandler(menu.NewFrontend(st, nil))

	if *flags.flowDefsDir != "" {
		n, err := flowdef.InstallDir(st, *flags.flowDefsDir, *flags.tenantID)
		if err != nil {
			slog.Warn("Flow definition seeding failed", "error", err, "dir", *flags.flowDefsDir)
		} else {
			slog.Info("Flow definitions installed", "count", n, "dir", *flags.flowDefsDir)
		}
	}

	sched := scheduler.NewScheduler()
	defer sched.Stop()
	ttl := time.Duration(*flags.sessionTTL) * time.Minute
	if err := sched.AddSessionExpiry(st, ttl); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bridge, twilioSvc, err := buildTransport(flags, engine)
	if err != nil {
		return err
	}
	if bridge != nil {
		if err := bridge.Start(ctx); err != nil {
			return err
		}
		defer bridge.Stop()
	}

	server := api.NewServer(st, engine, twilioSvc, buildAPIOptions(flags)...)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
		cancel()
		return server.Shutdown()
	case err := <-errCh:
		return err
	}
}

// Config holds environment configuration
type Config struct {
	DatabaseURL  string
	WhatsAppDSN  string
	StateDir     string
	APIAddr      string
	APIKey       string
	TenantID     string
	Transport    string
	WebhookURL   string
	FlowDefsDir  string
	SessionTTL   int
	DebugLogging bool
}

// Flags holds command line flag values
type Flags struct {
	qrOutput    *string
	numeric     *bool
	stateDir    *string
	dbDSN       *string
	waDSN       *string
	apiAddr     *string
	apiKey      *string
	tenantID    *string
	transport   *string
	webhookURL  *string
	flowDefsDir *string
	sessionTTL  *int
}

// initializeLogger sets up structured logging
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("BOTENGINE_DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		WhatsAppDSN: os.Getenv("WHATSAPP_DB_DSN"),
		StateDir:    os.Getenv("BOTENGINE_STATE_DIR"),
		APIAddr:     os.Getenv("API_ADDR"),
		APIKey:      os.Getenv("API_KEY"),
		TenantID:    os.Getenv("TENANT_ID"),
		Transport:   os.Getenv("TRANSPORT"),
		WebhookURL:  os.Getenv("NOTIFY_WEBHOOK_URL"),
		FlowDefsDir: os.Getenv("FLOW_DEFS_DIR"),
		SessionTTL:  util.ParseIntEnv("SESSION_TTL_MINUTES", 30),
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No BOTENGINE_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}
	if config.TenantID == "" {
		config.TenantID = DefaultTenantID
	}
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}
	// The whatsmeow client keeps its own database next to ours by default.
	if config.WhatsAppDSN == "" {
		config.WhatsAppDSN = filepath.Join(config.StateDir, "whatsmeow.db")
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"WHATSAPP_DB_DSN_SET", config.WhatsAppDSN != "",
		"BOTENGINE_STATE_DIR", config.StateDir,
		"API_ADDR", config.APIAddr,
		"API_KEY_SET", config.APIKey != "",
		"TENANT_ID", config.TenantID,
		"TRANSPORT", config.Transport,
		"NOTIFY_WEBHOOK_URL_SET", config.WebhookURL != "",
		"FLOW_DEFS_DIR", config.FlowDefsDir,
		"SESSION_TTL_MINUTES", config.SessionTTL)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		qrOutput:    flag.String("qr-output", "", "path to write WhatsApp login QR code"),
		numeric:     flag.Bool("numeric-code", false, "use numeric WhatsApp login code instead of QR code"),
		stateDir:    flag.String("state-dir", config.StateDir, "state directory for bot engine data (overrides $BOTENGINE_STATE_DIR)"),
		dbDSN:       flag.String("db-dsn", config.DatabaseURL, "database DSN for the bot engine store (overrides $DATABASE_URL)"),
		waDSN:       flag.String("whatsapp-db-dsn", config.WhatsAppDSN, "database DSN for the whatsmeow store (overrides $WHATSAPP_DB_DSN)"),
		apiAddr:     flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		apiKey:      flag.String("api-key", config.APIKey, "bearer token for the admin API (overrides $API_KEY)"),
		tenantID:    flag.String("tenant", config.TenantID, "tenant bound to the messaging transport (overrides $TENANT_ID)"),
		transport:   flag.String("transport", config.Transport, "messaging transport: whatsmeow, twilio or none (overrides $TRANSPORT)"),
		webhookURL:  flag.String("notify-webhook", config.WebhookURL, "webhook URL for operator notifications (overrides $NOTIFY_WEBHOOK_URL)"),
		flowDefsDir: flag.String("flow-defs", config.FlowDefsDir, "directory of YAML flow definitions to install at boot (overrides $FLOW_DEFS_DIR)"),
		sessionTTL:  flag.Int("session-ttl", config.SessionTTL, "idle session expiry in minutes (overrides $SESSION_TTL_MINUTES)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"apiAddr", *flags.apiAddr,
		"tenant", *flags.tenantID,
		"transport", *flags.transport,
		"sessionTTL", *flags.sessionTTL)

	return flags
}

// ensureDirectoriesExist creates the state directory for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	if store.DetectDSNType(*flags.dbDSN) == "sqlite" {
		dir := filepath.Dir(*flags.dbDSN)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.MkdirAll(*flags.stateDir, 0755)
}

// openStore opens the configured store backend, auto-detecting the driver.
func openStore(flags Flags) (store.Store, error) {
	if store.DetectDSNType(*flags.dbDSN) == "postgres" {
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store")
		return store.NewPostgresStore(store.WithDSN(*flags.dbDSN))
	}
	slog.Debug("Detected SQLite DSN, configuring SQLite store", "db_path", *flags.dbDSN)
	return store.NewSQLiteStore(store.WithDSN(*flags.dbDSN))
}

// buildNotifier picks the notifier implementation for action nodes.
func buildNotifier(flags Flags) flow.Notifier {
	if *flags.webhookURL != "" {
		return notify.NewWebhookNotifier(*flags.webhookURL)
	}
	return notify.LogNotifier{}
}

// buildTransport wires the configured messaging transport to the engine.
// The Twilio service is returned separately so the API can feed its webhook.
func buildTransport(flags Flags, engine *flow.Engine) (*messaging.Bridge, *messaging.TwilioService, error) {
	switch *flags.transport {
	case "whatsmeow":
		waOpts := []whatsapp.Option{whatsapp.WithDBDSN(*flags.waDSN)}
		if *flags.qrOutput != "" {
			waOpts = append(waOpts, whatsapp.WithQRCodeOutput(*flags.qrOutput))
		}
		if *flags.numeric {
			waOpts = append(waOpts, whatsapp.WithNumericCode())
		}
		client, err := whatsapp.NewClient(waOpts...)
		if err != nil {
			return nil, nil, err
		}
		svc := messaging.NewWhatsAppService(client)
		return messaging.NewBridge(engine, svc, *flags.tenantID), nil, nil

	case "twilio":
		client, err := twiliowhatsapp.NewClient()
		if err != nil {
			return nil, nil, err
		}
		svc := messaging.NewTwilioService(client)
		return messaging.NewBridge(engine, svc, *flags.tenantID), svc, nil

	default:
		slog.Info("No messaging transport configured; API intake only", "transport", *flags.transport)
		return nil, nil, nil
	}
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	if *flags.apiKey != "" {
		apiOpts = append(apiOpts, api.WithAPIKey(*flags.apiKey))
	}
	return apiOpts
}
