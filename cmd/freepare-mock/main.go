// Command freepare-mock serves a fixture over the FREEPARE REST routes for
// local development and demos.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/freepare/freepare/internal/mockapi"
	"github.com/freepare/freepare/pkg/logging"
	"github.com/freepare/freepare/pkg/session"
	"github.com/freepare/freepare/pkg/version"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8080", "Listen address")
	fixturePath := flag.String("fixture", "", "JSON fixture with entities, completedTests and exams (default: built-in sample)")
	requireAuth := flag.Bool("require-auth", false, "Reject /api/completed-tests without a token")
	jwtSecret := flag.String("jwt-secret", "", "Verify tokens with this HS256 secret and print a dev token")
	user := flag.String("user", "dev-user", "User id for the printed dev token")
	logLevel := flag.String("log-level", "info", "Log level: none, error, warn, info, debug")
	versionFlag := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("freepare-mock %s\n", version.Version)
		os.Exit(0)
	}

	log := logging.NewWithWriter(os.Stderr, *logLevel)
	defer log.Close()

	fixture := mockapi.SampleFixture()
	if *fixturePath != "" {
		f, err := mockapi.LoadFixture(*fixturePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fixture = f
	}

	opts := []mockapi.Option{
		mockapi.WithRequireAuth(*requireAuth),
		mockapi.WithLogger(log),
	}
	if *jwtSecret != "" {
		secret := []byte(*jwtSecret)
		opts = append(opts, mockapi.WithJWTSecret(secret))
		tok, err := session.Issue(secret, *user, 24*time.Hour, time.Now())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error issuing token: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("export FREEPARE_TOKEN=%s\n", tok)
	}

	server := &http.Server{
		Addr:              *addr,
		Handler:           mockapi.NewServer(fixture, opts...).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", *addr, "auth", *requireAuth)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info("shutting down")

		// give outstanding requests a deadline for completion
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
			_ = server.Close()
		}
	}
}
