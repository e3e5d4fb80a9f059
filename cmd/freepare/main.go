package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/freepare/freepare/internal/datasource"
	"github.com/freepare/freepare/pkg/api"
	"github.com/freepare/freepare/pkg/config"
	"github.com/freepare/freepare/pkg/debug"
	"github.com/freepare/freepare/pkg/export"
	"github.com/freepare/freepare/pkg/hierarchy"
	"github.com/freepare/freepare/pkg/logging"
	"github.com/freepare/freepare/pkg/navigator"
	"github.com/freepare/freepare/pkg/session"
	"github.com/freepare/freepare/pkg/store"
	"github.com/freepare/freepare/pkg/ui"
	"github.com/freepare/freepare/pkg/version"
	"github.com/freepare/freepare/pkg/watcher"
)

func main() {
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	initFlag := flag.Bool("init", false, "Run the setup wizard and write the config file")
	configPath := flag.String("config", "", "Config file (default: $XDG_CONFIG_HOME/freepare/config.yaml)")
	apiURL := flag.String("api-url", "", "Backend base URL")
	token := flag.String("token", "", "Session token (overrides FREEPARE_TOKEN and the token file)")
	entitiesFile := flag.String("entities-file", "", "Browse a JSON or SQLite export instead of the backend")
	retries := flag.String("retries", "", "Extra attempts after a network error or 5xx")
	logFile := flag.String("log-file", "", "Write the event log to this file")
	logLevel := flag.String("log-level", "", "Log level: none, error, warn, info, debug")
	pathFlag := flag.String("path", "", "Start at this slash-separated path, e.g. UPSC/History")
	openRoute := flag.String("open-route", "", "Open a test on startup: /test?examId=<id>&testName=<name>")
	robotProgress := flag.Bool("robot-progress", false, "Print progress for the --path level as JSON and exit")
	robotMetrics := flag.Bool("robot-metrics", false, "Print load timings as JSON after --robot-progress")
	exportSQLite := flag.String("export-sqlite", "", "Export the tree with progress to a SQLite file and exit")
	exportMD := flag.String("export-md", "", "Export the tree with progress to a Markdown report and exit")
	exportTitle := flag.String("export-title", "", "Title for --export-md")
	flag.Parse()

	if *help {
		fmt.Println("Usage: freepare [options]")
		fmt.Println("\nA terminal navigator for FREEPARE exam-prep content.")
		fmt.Println("Browse exams, subjects, topics and papers, track completed tests and take them.")
		fmt.Println("\nOptions:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("freepare %s\n", version.Version)
		os.Exit(0)
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	_ = config.LoadDotEnv(".env")

	cfgFile := *configPath
	if cfgFile == "" {
		cfgFile = config.ConfigPath()
	}

	if *initFlag {
		base, _ := config.LoadFrom(cfgFile)
		cfg, err := config.NewWizard(base, cfgFile).Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s (backend %s)\n", cfgFile, cfg.API.BaseURL)
		os.Exit(0)
	}

	cfg, err := resolveConfig(cfgFile, flagOverrides{
		APIURL:       *apiURL,
		EntitiesFile: *entitiesFile,
		Retries:      *retries,
		LogFile:      *logFile,
		LogLevel:     *logLevel,
	}, os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	log, err := openLog(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	info, tok := resolveSession(*token, os.Getenv(config.EnvToken), cfg.Auth.TokenFile, time.Now(), log)

	client := newClient(cfg.API, tok, log)
	h, local, err := buildHierarchy(cfg, client, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	startPath := splitPath(*pathFlag)

	// Piped output gets JSON unless another mode was asked for.
	robot := *robotProgress || (*exportSQLite == "" && *exportMD == "" && *openRoute == "" && !term.IsTerminal(int(os.Stdout.Fd())))
	if robot || *exportSQLite != "" || *exportMD != "" {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		if err := h.Load(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading content: %v\n", err)
			os.Exit(1)
		}

		if *exportSQLite != "" {
			exp := export.NewSQLiteExporter(h.Tree.Forest(), h.Completed.Set())
			if err := exp.Export(*exportSQLite); err != nil {
				fmt.Fprintf(os.Stderr, "Error exporting: %v\n", err)
				os.Exit(1)
			}
			fmt.Fprintf(os.Stderr, "Exported %d entities to %s\n", len(exp.Flatten()), *exportSQLite)
		}
		if *exportMD != "" {
			ecfg := export.DefaultConfig()
			if *exportTitle != "" {
				ecfg.Title = *exportTitle
			}
			if err := export.SaveMarkdown(*exportMD, h.Tree.Forest(), h.Completed.Set(), ecfg); err != nil {
				fmt.Fprintf(os.Stderr, "Error exporting: %v\n", err)
				os.Exit(1)
			}
			fmt.Fprintf(os.Stderr, "Wrote report to %s\n", *exportMD)
		}

		if robot {
			if err := h.Navigate(startPath); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			if err := writeRobotProgress(os.Stdout, h, time.Now()); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
				os.Exit(1)
			}
			if *robotMetrics {
				if err := writeRobotMetrics(os.Stdout); err != nil {
					fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
					os.Exit(1)
				}
			}
		}
		os.Exit(0)
	}

	opts := []ui.Option{
		ui.WithLogger(log),
		ui.WithSearchVisible(cfg.UI.SearchVisible),
		ui.WithSession(info),
		ui.WithStartPath(startPath),
		ui.WithTheme(ui.ThemeFor(cfg.UI.Theme, lipgloss.DefaultRenderer())),
		ui.WithMarkdownStyle(markdownStyle(cfg.UI.Theme)),
	}
	if !local {
		opts = append(opts, ui.WithExamSource(client))
	}
	if *openRoute != "" {
		launch, ok := navigator.ParseRoute(*openRoute)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: invalid route %q (expected /test?examId=<id>&testName=<name>)\n", *openRoute)
			os.Exit(2)
		}
		if local {
			fmt.Fprintln(os.Stderr, "Error: --open-route needs the API backend")
			os.Exit(2)
		}
		opts = append(opts, ui.WithStartLaunch(launch))
	}

	if local {
		w, err := watcher.NewWatcher(cfg.Data.EntitiesFile)
		if err == nil {
			if err := w.Start(); err == nil {
				defer w.Stop()
				opts = append(opts, ui.WithWatcher(w))
			} else {
				log.Warn("live reload disabled", "path", cfg.Data.EntitiesFile, "err", err)
			}
		}
	}

	// Debug output on stderr would tear the alt screen.
	if debug.Enabled() {
		out, err := openDebugLog()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening debug log: %v\n", err)
			os.Exit(1)
		}
		defer out.Close()
		debug.SetOutput(out)
	}

	if err := runTUIProgram(ui.NewModel(h, opts...)); err != nil {
		fmt.Printf("Error running freepare: %v\n", err)
		os.Exit(1)
	}
}

// flagOverrides are the command-line values that win over env and file.
type flagOverrides struct {
	APIURL       string
	EntitiesFile string
	Retries      string
	LogFile      string
	LogLevel     string
}

// resolveConfig layers defaults, the config file, the environment and flags,
// then validates the result.
func resolveConfig(path string, fl flagOverrides, getenv func(string) string) (config.Config, error) {
	cfg := config.DefaultConfig()
	if path != "" {
		loaded, err := config.LoadFrom(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	cfg, err := config.ApplyEnv(cfg, getenv)
	if err != nil {
		return cfg, err
	}

	if v := strings.TrimSpace(fl.APIURL); v != "" {
		cfg.API.BaseURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(fl.EntitiesFile); v != "" {
		cfg.Data.EntitiesFile = v
	}
	if v := strings.TrimSpace(fl.Retries); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid --retries %q", fl.Retries)
		}
		cfg.API.Retries = n
	}
	if v := strings.TrimSpace(fl.LogFile); v != "" {
		cfg.Log.File = v
	}
	if v := strings.TrimSpace(fl.LogLevel); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}

	return cfg, cfg.Validate()
}

func openLog(lc config.LogConfig) (*logging.Logger, error) {
	if lc.File == "" {
		return logging.Nop(), nil
	}
	return logging.New(lc.File, lc.Level)
}

// resolveSession picks the token to send. An expired token is dropped so the
// backend answers anonymously instead of 401ing every request.
func resolveSession(flagToken, envToken, tokenFile string, now time.Time, log *logging.Logger) (session.Info, string) {
	tok := strings.TrimSpace(flagToken)
	if tok == "" {
		var err error
		tok, err = session.ReadToken(envToken, tokenFile)
		if err != nil {
			log.Warn("reading token", "err", err)
		}
	}
	if tok == "" {
		return session.Info{}, ""
	}

	info, err := session.Inspect(tok, now)
	if err != nil {
		log.Warn("token is not a JWT; sending as-is", "err", err)
		return session.Info{}, tok
	}
	if info.Expired {
		log.Info("session expired", "user", info.UserID, "expired_at", info.ExpiresAt)
		return info, ""
	}
	return info, tok
}

func newClient(ac config.APIConfig, token string, log *logging.Logger) *api.Client {
	opts := []api.Option{
		api.WithRetry(ac.Retries, ac.RetryDelay),
		api.WithLogger(log),
	}
	if ac.Timeout > 0 {
		opts = append(opts, api.WithTimeout(ac.Timeout))
	}
	if token != "" {
		opts = append(opts, api.WithToken(token))
	}
	return api.New(ac.BaseURL, opts...)
}

// buildHierarchy wires the stores to the configured source. local reports an
// offline file source, which cannot serve exams.
func buildHierarchy(cfg config.Config, client *api.Client, log *logging.Logger) (h *hierarchy.Hierarchy, local bool, err error) {
	location := cfg.Data.EntitiesFile
	if location == "" {
		location = client.BaseURL()
	}
	ds, err := datasource.Detect(location)
	if err != nil {
		return nil, false, err
	}
	if ds.Type == datasource.SourceTypeAPI && ds.Location != client.BaseURL() {
		return nil, false, fmt.Errorf("entities file %s is a URL; use --api-url instead", location)
	}
	src, err := datasource.LoadFromSource(ds, client)
	if err != nil {
		return nil, false, err
	}
	log.Debug("data source", "source", ds.String())

	h = hierarchy.New(
		store.NewTreeStore(src, store.WithLogger(log)),
		store.NewCompletedStore(src, store.WithLogger(log)),
	)
	return h, ds.IsLocal(), nil
}

func splitPath(raw string) []string {
	var out []string
	for _, seg := range strings.Split(raw, "/") {
		if seg = strings.TrimSpace(seg); seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

// openDebugLog appends to debug.log in the state directory.
func openDebugLog() (*os.File, error) {
	dir := config.StateDir()
	if dir == "" {
		return nil, errors.New("cannot determine state directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

func markdownStyle(theme string) string {
	switch theme {
	case "dark", "light":
		return theme
	}
	return "auto"
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
