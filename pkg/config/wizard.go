package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// Wizard walks the user through creating a config file.
type Wizard struct {
	cfg  Config
	path string
}

// NewWizard starts from base and saves to path.
func NewWizard(base Config, path string) *Wizard {
	return &Wizard{cfg: base, path: path}
}

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// Run asks for every setting, validates the result and writes it out.
func (w *Wizard) Run() (Config, error) {
	if w.path == "" {
		return w.cfg, errors.New("cannot determine config directory")
	}

	retries := strconv.Itoa(w.cfg.API.Retries)
	logFile := w.cfg.Log.File
	if logFile == "" {
		logFile = DefaultLogPath()
	}
	level := w.cfg.Log.Level
	if level == "" {
		level = "warn"
	}
	theme := w.cfg.UI.Theme
	if theme == "" {
		theme = "auto"
	}

	form := newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Backend URL").
				Description("Where entities, completed tests and exams are fetched from").
				Value(&w.cfg.API.BaseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Retries").
				Description("Extra attempts after a network error or 5xx (0-10)").
				Value(&retries).
				Validate(validateRetries),
			huh.NewInput().
				Title("Token file").
				Description("File holding your session token (leave empty to use FREEPARE_TOKEN)").
				Value(&w.cfg.Auth.TokenFile),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Offline entities file").
				Description("JSON or SQLite export to browse instead of the backend (optional)").
				Value(&w.cfg.Data.EntitiesFile),
			huh.NewSelect[string]().
				Title("Theme").
				Options(huh.NewOptions("auto", "dark", "light")...).
				Value(&theme),
			huh.NewConfirm().
				Title("Show the search box on startup?").
				Value(&w.cfg.UI.SearchVisible),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Log level").
				Options(
					huh.NewOption("Off", "none"),
					huh.NewOption("Errors", "error"),
					huh.NewOption("Warnings", "warn"),
					huh.NewOption("Info", "info"),
					huh.NewOption("Debug", "debug"),
				).
				Value(&level),
			huh.NewInput().
				Title("Log file").
				Value(&logFile),
		),
	)

	if err := form.Run(); err != nil {
		return w.cfg, err
	}

	w.cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(w.cfg.API.BaseURL), "/")
	w.cfg.API.Retries, _ = strconv.Atoi(strings.TrimSpace(retries))
	w.cfg.Auth.TokenFile = expandHome(strings.TrimSpace(w.cfg.Auth.TokenFile))
	w.cfg.Data.EntitiesFile = expandHome(strings.TrimSpace(w.cfg.Data.EntitiesFile))
	w.cfg.UI.Theme = theme
	w.cfg.Log.Level = level
	w.cfg.Log.File = ""
	if level != "none" {
		w.cfg.Log.File = expandHome(strings.TrimSpace(logFile))
	}

	if err := w.cfg.Validate(); err != nil {
		return w.cfg, err
	}
	if err := SaveTo(w.cfg, w.path); err != nil {
		return w.cfg, err
	}
	return w.cfg, nil
}

func validateURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("enter an http(s) URL")
	}
	return nil
}

func validateRetries(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > 10 {
		return fmt.Errorf("enter a number from 0 to 10")
	}
	return nil
}
