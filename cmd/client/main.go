// Package main starts the interactive taxi dispatch client: it signs an
// operator in against the login endpoint and then serves the driver and
// reservation panels from a line-oriented shell.
package main

import (
	"cmp"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/markadai/taxidispatch/internal/client/auth"
	"github.com/markadai/taxidispatch/internal/client/profile"
	"github.com/markadai/taxidispatch/internal/client/reservations"
	"github.com/markadai/taxidispatch/internal/client/roster"
	"github.com/markadai/taxidispatch/internal/client/shell"
	"github.com/markadai/taxidispatch/internal/config"
	"github.com/markadai/taxidispatch/internal/logger"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, in io.Reader, out io.Writer) error {
	options, err := config.ParseClient(args, auth.DefaultEndpoint)
	if err != nil {
		return err
	}

	if options.ShowVersion {
		fmt.Fprintf(out, "Taxi Dispatch Client\nVersion: %s\nBuild Date: %s\n",
			cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return nil
	}

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		return err
	}
	zapLogger := log.Log

	httpClient, err := auth.NewHTTPClient(options.CAFile, options.Timeout)
	if err != nil {
		return err
	}
	authenticator := auth.New(options.Endpoint,
		auth.WithHTTPClient(httpClient),
		auth.WithLogger(zapLogger.Named("auth")),
	)
	zapLogger.Debug("client configured",
		zap.String("endpoint", authenticator.Endpoint()),
		zap.Bool("require_admin", options.RequireAdmin),
	)

	sh := shell.New(shell.Config{
		Auth:         authenticator,
		Roster:       roster.New(roster.SampleDrivers()...),
		Book:         reservations.New(reservations.SampleReservations()...),
		Settings:     profile.NewSettings(profile.Default(), zapLogger.Named("profile")),
		LoadDrivers:  roster.SampleDrivers,
		RequireAdmin: options.RequireAdmin,
		Logger:       zapLogger,
	}, in, out)
	sh.Run()
	return nil
}
