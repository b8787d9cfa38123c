package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mcvoid/jsonmin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	modeFlag   string
	outputFlag string
)

var rootCmd = &cobra.Command{
	Use:           "jsonmin [input]",
	Short:         "Strip insignificant whitespace from JSON",
	Long:          `jsonmin reads a JSON document and writes it back out with every byte of insignificant whitespace removed, validating the grammar along the way.

Pass a file path, or "-" (the default) to read from stdin.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func main() {
	rootCmd.Flags().StringVar(&modeFlag, "mode", "sport", "execution mode: eco, sport, or turbo")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "-", `output file path, or "-" for stdout`)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "jsonmin:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("jsonmin: building logger: %w", err)
	}
	defer logger.Sync()

	mode, err := parseMode(modeFlag)
	if err != nil {
		return err
	}

	in, closeIn, err := openInput(args)
	if err != nil {
		return err
	}
	defer closeIn()

	out, closeOut, err := openOutput(outputFlag)
	if err != nil {
		return err
	}
	defer closeOut()

	m := minify.New(minify.WithLogger(logger.Sugar()), minify.WithTurboFallback())
	stats, err := m.MinifyStream(mode, in, out)
	if err != nil {
		return fmt.Errorf("jsonmin: %w", err)
	}
	if stats.Degraded {
		logger.Sugar().Warnf("requested mode %s degraded to %s for this run", mode, stats.ModeUsed)
	}
	return nil
}

func parseMode(s string) (minify.Mode, error) {
	switch strings.ToLower(s) {
	case "eco":
		return minify.ECO, nil
	case "sport", "":
		return minify.SPORT, nil
	case "turbo":
		return minify.TURBO, nil
	default:
		return 0, fmt.Errorf("jsonmin: unknown mode %q (want eco, sport, or turbo)", s)
	}
}

func openInput(args []string) (io.Reader, func(), error) {
	if len(args) == 0 || args[0] == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("jsonmin: opening input: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("jsonmin: creating output: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// newLogger builds a zap logger at the level named by JSONMIN_LOG_LEVEL
// (default "warn"); an unrecognized level also falls back to "warn".
func newLogger() (*zap.Logger, error) {
	level := strings.ToLower(os.Getenv("JSONMIN_LOG_LEVEL"))
	if level == "" {
		level = "warn"
	}

	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = ""
	return cfg.Build()
}
