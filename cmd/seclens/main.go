package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/seclens/seclens/internal/config"
	"github.com/seclens/seclens/internal/dashboard"
	"github.com/seclens/seclens/internal/notify"
	"github.com/seclens/seclens/internal/render"
	"github.com/seclens/seclens/internal/reports"
	"github.com/seclens/seclens/internal/scan"
	"github.com/seclens/seclens/internal/session"
	"github.com/seclens/seclens/internal/upstream"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

const usage = `seclens - scan dashboard console

Usage:
  seclens [flags] <command> [command flags]

Commands:
  login      -u <username> -p <password>   authenticate and store the session
  logout                                   clear the stored session
  scan       -domain <name> [-wait]        start a scan; -wait polls until complete
  dashboard  -id <scan-id>                 load and print a scan dashboard
  export     -id <scan-id> -o <file.pdf>   export a dashboard as PDF

Flags:
  -config <path>   configuration file (default config.yaml)
  -version         print version information
`

// app bundles everything a subcommand needs.
type app struct {
	cfg      *config.Config
	sessions session.Store
	client   *upstream.Client
	notifier notify.Notifier
	logger   *slog.Logger
}

// the CLI holds a single session; the store key is fixed
const cliSessionID = "default"

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if *showVersion {
		fmt.Printf("seclens v%s (built %s)\n", version, buildTime)
		os.Exit(0)
	}

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	sessionPath := cfg.Session.FilePath
	if sessionPath == "" {
		sessionPath, err = session.DefaultSessionPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to resolve session path: %v\n", err)
			os.Exit(1)
		}
	}
	store := session.NewFileStore(sessionPath)

	a := &app{
		cfg:      cfg,
		sessions: store,
		client: upstream.NewClient(upstream.Config{
			AuthBaseURL:       cfg.Upstream.AuthBaseURL,
			ScansBaseURL:      cfg.Upstream.ScansBaseURL,
			DashboardsBaseURL: cfg.Upstream.DashboardsBaseURL,
			RequestTimeout:    cfg.Upstream.RequestTimeout,
		}, session.Bind(store, cliSessionID), logger),
		notifier: notify.NewConsoleNotifier(slog.New(slog.NewTextHandler(os.Stderr, nil))),
		logger:   logger,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	cmd, args := flag.Arg(0), flag.Args()[1:]
	if err := a.run(ctx, cmd, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.cmdLogin(ctx, args)
	case "logout":
		return a.cmdLogout(ctx)
	case "scan":
		return a.cmdScan(ctx, args)
	case "dashboard":
		return a.cmdDashboard(ctx, args)
	case "export":
		return a.cmdExport(ctx, args)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("u", "", "Username")
	password := fs.String("p", "", "Password")
	fs.Parse(args)

	if *username == "" || *password == "" {
		return fmt.Errorf("login requires -u and -p")
	}

	auth := upstream.NewAuthenticator(a.client, a.sessions, a.notifier, a.logger)
	return auth.Login(ctx, cliSessionID, *username, *password)
}

func (a *app) cmdLogout(ctx context.Context) error {
	auth := upstream.NewAuthenticator(a.client, a.sessions, a.notifier, a.logger)
	return auth.Logout(ctx, cliSessionID)
}

func (a *app) cmdScan(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	domain := fs.String("domain", "", "Domain name to scan")
	wait := fs.Bool("wait", false, "Poll until the scan completes and print the dashboard")
	fs.Parse(args)

	if *domain == "" {
		return fmt.Errorf("scan requires -domain")
	}

	loader := dashboard.NewLoader(a.client, a.notifier, a.logger)
	ctrl := scan.NewController(a.client, nil, a.notifier, a.cfg.Scan.RefreshDelay, a.logger)

	handle, err := ctrl.Start(ctx, *domain)
	if err != nil {
		return err
	}

	if !*wait {
		fmt.Printf("Scan ID: %s\n", handle.ID)
		return nil
	}

	view, err := loader.PollUntilComplete(ctx, handle.ID, dashboard.PollOptions{
		BaseDelay: a.cfg.Scan.RefreshDelay,
	})
	if err != nil {
		return err
	}
	render.WriteText(os.Stdout, view)
	return nil
}

func (a *app) cmdDashboard(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ExitOnError)
	scanID := fs.String("id", "", "Scan ID")
	fs.Parse(args)

	if *scanID == "" {
		return fmt.Errorf("dashboard requires -id")
	}

	loader := dashboard.NewLoader(a.client, a.notifier, a.logger)

	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	view, err := loader.Load(loadCtx, *scanID)
	if err != nil {
		return err
	}
	render.WriteText(os.Stdout, view)
	return nil
}

func (a *app) cmdExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	scanID := fs.String("id", "", "Scan ID")
	outPath := fs.String("o", "", "Output PDF path")
	fs.Parse(args)

	if *scanID == "" || *outPath == "" {
		return fmt.Errorf("export requires -id and -o")
	}

	snap, err := a.client.FetchDashboard(ctx, *scanID)
	if err != nil {
		return err
	}
	view := dashboard.BuildView(snap)

	out, err := os.Create(*outPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	if err := reports.WritePDF(out, &view); err != nil {
		return err
	}
	fmt.Printf("Report written to %s\n", *outPath)
	return nil
}
