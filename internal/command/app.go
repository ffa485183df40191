// Package command implements the gopass command-line tool.
//
// It uses urfave/cli/v2 for command parsing, koanf (through confloader) for
// configuration and logrus for diagnostics. Each invocation builds one
// engine over the configured backend and closes it when the command ends.
package command

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	goPass "github.com/MrEthical07/goPass"
	"github.com/MrEthical07/goPass/internal/confloader"
	"github.com/MrEthical07/goPass/internal/logging"
)

// Build information, set via ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

const runtimeKey = "runtime"

// runtime is the per-invocation state created in Before and released in
// After.
type runtime struct {
	cfg    confloader.Config
	logger *logrus.Logger
	engine *goPass.Engine
	close  func() error
}

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "gopass",
		Usage:   "issue and verify short-lived single-use tokens",
		Version: fmt.Sprintf("%s (commit: %s)", Version, Commit),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			RegisterCommand(),
			GenerateCommand(),
			VerifyCommand(),
			DemoCommand(),
		},
		Before: setup,
		After:  teardown,
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML configuration file",
			EnvVars: []string{"GOPASS_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "env-file",
			Usage: "dotenv file loaded before configuration (default .env when present)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "log level: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "log format: text, json",
		},
		&cli.StringFlag{
			Name:    "backend",
			Aliases: []string{"b"},
			Usage:   "credential store: memory, redis, sqlite",
		},
		&cli.DurationFlag{
			Name:  "expiry",
			Usage: "token validity window",
		},
	}
}

func setup(c *cli.Context) error {
	if err := loadEnvFile(c.String("env-file")); err != nil {
		return err
	}

	var opts []confloader.Option
	if path := c.String("config"); path != "" {
		opts = append(opts, confloader.WithConfigFile(path))
	}
	cfg, err := confloader.NewLoader(opts...).Load()
	if err != nil {
		return cli.Exit(fmt.Sprintf("config: %v", err), 2)
	}

	if v := c.String("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v := c.String("log-format"); v != "" {
		cfg.Log.Format = v
	}
	if v := c.String("backend"); v != "" {
		cfg.Store.Backend = v
	}
	if c.IsSet("expiry") {
		cfg.Token.Expiry = c.Duration("expiry")
	}
	if err := cfg.Validate(); err != nil {
		return cli.Exit(fmt.Sprintf("config: %v", err), 2)
	}

	logger := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: c.App.ErrWriter,
	})

	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata[runtimeKey] = &runtime{cfg: cfg, logger: logger}
	return nil
}

// loadEnvFile loads path, or .env when path is empty and the file exists.
// Variables already set in the environment win.
func loadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return cli.Exit(fmt.Sprintf("load env file %s: %v", path, err), 2)
	}
	return nil
}

func teardown(c *cli.Context) error {
	rt := getRuntime(c)
	if rt == nil {
		return nil
	}
	if rt.engine != nil {
		rt.engine.Close()
	}
	if rt.close != nil {
		if err := rt.close(); err != nil {
			rt.logger.WithError(err).Warn("close credential store")
		}
	}
	return nil
}

func getRuntime(c *cli.Context) *runtime {
	if c.App.Metadata == nil {
		return nil
	}
	rt, _ := c.App.Metadata[runtimeKey].(*runtime)
	return rt
}

// engineFor opens the configured backend on first use and returns the
// engine bound to it.
func engineFor(c *cli.Context) (*goPass.Engine, error) {
	rt := getRuntime(c)
	if rt == nil {
		return nil, cli.Exit("not initialized", 2)
	}
	if rt.engine != nil {
		return rt.engine, nil
	}

	s, closeFn, err := openBackend(c.Context, rt.cfg, rt.logger)
	if err != nil {
		return nil, cli.Exit(err.Error(), 2)
	}
	rt.close = closeFn

	engine, err := newEngine(rt.cfg, s, rt.logger, c.App.ErrWriter)
	if err != nil {
		return nil, cli.Exit(err.Error(), 2)
	}
	rt.engine = engine
	return engine, nil
}
