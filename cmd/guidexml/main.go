package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

// CLI is the guidexml command line.
type CLI struct {
	Verbose bool `short:"v" help:"Enable debug logging"`

	Build     BuildCmd     `cmd:"" help:"Build a guide from a documentation project"`
	Translate TranslateCmd `cmd:"" help:"Translate a single document into a standalone guide"`
}

// Global carries state shared by every command.
type Global struct {
	Ctx    context.Context
	Logger *slog.Logger
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("guidexml"),
		kong.Description("Translate documentation trees into GuideXML."),
		kong.UsageOnError(),
	)

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := kctx.Run(&Global{Ctx: ctx, Logger: logger})
	kctx.FatalIfErrorf(err)
}
