// Package main is the entry point for the dongne server.
//
// The binary has two commands:
//
//	dongne serve                          run the HTTP API (default)
//	dongne resolve --lat 36.35 --lon 127.38   print the region labels for a coordinate
//
// Both read configuration from the environment and an optional .env file;
// see internal/config for the variables.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/dongne/internal/config"
	"github.com/sakif/dongne/internal/geocode"
	"github.com/sakif/dongne/internal/logger"
	"github.com/sakif/dongne/internal/region"
	"github.com/sakif/dongne/internal/server"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:           "dongne",
	Short:         "Location-aware neighborhood feed backend",
	Long:          `Users post, comment and like; others find posts by administrative region, parent region, map viewport or radius.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Print the fine and coarse region labels for a coordinate",
	Long:  `Calls the configured geocoding provider once and prints both labels with their statuses. Diagnostic only; nothing is stored.`,
	RunE:  runResolve,
}

var (
	resolveLat float64
	resolveLon float64
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&envFile, "env", "e", ".env", "Optional dotenv file to load before reading the environment")

	resolveCmd.Flags().Float64Var(&resolveLat, "lat", math.NaN(), "Latitude in degrees")
	resolveCmd.Flags().Float64Var(&resolveLon, "lon", math.NaN(), "Longitude in degrees")
	_ = resolveCmd.MarkFlagRequired("lat")
	_ = resolveCmd.MarkFlagRequired("lon")

	rootCmd.AddCommand(serveCmd, resolveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the process logger.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(log)
	return cfg, log, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, log, nil)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	// Start blocks until SIGINT or SIGTERM.
	return srv.Start()
}

func runResolve(cmd *cobra.Command, args []string) error {
	if math.IsNaN(resolveLat) || math.IsNaN(resolveLon) {
		return fmt.Errorf("--lat and --lon must be numbers")
	}

	cfg, log, err := setup()
	if err != nil {
		return err
	}

	provider := geocode.NewKakaoClient(geocode.KakaoConfig{
		APIKey:  cfg.KakaoAPIKey,
		BaseURL: cfg.KakaoBaseURL,
		Timeout: cfg.GeocoderTimeout,
	}, log)
	resolver := region.NewResolver(provider, cfg.GeocoderTimeout, log)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	fine, coarse := resolver.Resolve(ctx, resolveLon, resolveLat)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "coordinate  lat=%g lon=%g\n", resolveLat, resolveLon)
	fmt.Fprintf(out, "fine        %-9s %s\n", fine.Status, fine)
	fmt.Fprintf(out, "coarse      %-9s %s\n", coarse.Status, coarse)
	return nil
}
