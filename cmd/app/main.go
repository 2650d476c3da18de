package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/ansuz/internal"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/mcpserver"
	pkgconfig "github.com/starford/ansuz/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if index := cmd.String("index"); index != "" {
		cfg.Site.Index = index
	}
	return cfg, nil
}

// printReport writes every diagnostic as a path:line: message line.
func printReport(rep interface{ Lines() []string }) {
	for _, line := range rep.Lines() {
		fmt.Println(line)
	}
}

func runBuild(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if root := cmd.Args().Get(0); root != "" {
		cfg.Site.Root = root
	}
	if out := cmd.Args().Get(1); out != "" {
		cfg.Site.Output = out
	}

	rep, err := internal.Build(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	printReport(rep)
	if rep.Failed() {
		return cli.Exit("build finished with unresolved links", 1)
	}
	return nil
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if root := cmd.Args().Get(0); root != "" {
		cfg.Site.Root = root
	}

	rep, err := internal.Check(ctx, cfg)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}
	printReport(rep)
	if rep.Failed() {
		return cli.Exit("check finished with unresolved links", 1)
	}
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Build once so the index reflects the current tree, then serve it.
	g, rep, err := internal.Snapshot(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	if err := db.ReplaceAll(g, rep); err != nil {
		return fmt.Errorf("index sync: %w", err)
	}

	return mcpserver.New(db).ServeStdio()
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}
	indexFlag := &cli.StringFlag{
		Name:  "index",
		Usage: "Root-relative path of the index document",
	}

	cmd := &cli.Command{
		Name:  "ansuz",
		Usage: "Static documentation-site builder with link-integrity checking",
		Commands: []*cli.Command{
			{
				Name:      "build",
				Usage:     "Build the site and write HTML output plus a diagnostics report",
				ArgsUsage: "<root> <outDir>",
				Flags:     []cli.Flag{configFlag, indexFlag},
				Action:    runBuild,
			},
			{
				Name:      "check",
				Usage:     "Validate link integrity without writing output",
				ArgsUsage: "<root>",
				Flags:     []cli.Flag{configFlag, indexFlag},
				Action:    runCheck,
			},
			{
				Name:   "serve",
				Usage:  "Build, watch, and serve the site with a query API",
				Flags:  []cli.Flag{configFlag, indexFlag},
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "Expose the built site over the Model Context Protocol on stdio",
				Flags:  []cli.Flag{configFlag, indexFlag},
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		if exitErr, ok := err.(cli.ExitCoder); ok {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}
