package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	goPass "github.com/MrEthical07/goPass"
	"github.com/MrEthical07/goPass/internal/confloader"
	"github.com/MrEthical07/goPass/store"
)

// Exit codes.
const (
	exitRejected   = 1
	exitUsage      = 2
	exitCallerErr  = 3
	exitStoreError = 4
)

// RegisterCommand creates the register command.
func RegisterCommand() *cli.Command {
	return &cli.Command{
		Name:      "register",
		Usage:     "Create a user with no token",
		ArgsUsage: "<username>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("usage: gopass register <username>", exitUsage)
			}
			engine, err := engineFor(c)
			if err != nil {
				return err
			}

			username := c.Args().First()
			if err := engine.Register(c.Context, username); err != nil {
				return exitFor(err)
			}
			fmt.Fprintf(c.App.Writer, "registered %s\n", username)
			return nil
		},
	}
}

// GenerateCommand creates the generate command.
func GenerateCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Aliases:   []string{"gen"},
		Usage:     "Issue a new token for a user, replacing the previous one",
		ArgsUsage: "<username>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "register",
				Usage: "register the user first if missing",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("usage: gopass generate <username>", exitUsage)
			}
			engine, err := engineFor(c)
			if err != nil {
				return err
			}

			username := c.Args().First()
			if c.Bool("register") {
				if err := engine.Register(c.Context, username); err != nil {
					return exitFor(err)
				}
			}
			token, err := engine.Generate(c.Context, username)
			if err != nil {
				return exitFor(err)
			}
			fmt.Fprintln(c.App.Writer, token)
			return nil
		},
	}
}

// VerifyCommand creates the verify command. It exits 1 when the token is
// wrong or expired.
func VerifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Check a token for a user",
		ArgsUsage: "<username> <token>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("usage: gopass verify <username> <token>", exitUsage)
			}
			engine, err := engineFor(c)
			if err != nil {
				return err
			}

			ok, err := engine.Verify(c.Context, c.Args().Get(0), c.Args().Get(1))
			if err != nil {
				return exitFor(err)
			}
			if !ok {
				return cli.Exit("invalid", exitRejected)
			}
			fmt.Fprintln(c.App.Writer, "valid")
			return nil
		},
	}
}

// DemoCommand creates the demo command, which walks through issuing,
// checking, expiring and replacing a token on an in-memory store.
func DemoCommand() *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "Run an end-to-end walkthrough against an in-memory store",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "demo-expiry",
				Usage: "token validity used by the walkthrough",
				Value: time.Second,
			},
		},
		Action: func(c *cli.Context) error {
			rt := getRuntime(c)
			if rt == nil {
				return cli.Exit("not initialized", exitUsage)
			}
			cfg := rt.cfg
			cfg.Store.Backend = confloader.BackendMemory
			cfg.Token.Expiry = c.Duration("demo-expiry")
			if err := cfg.Validate(); err != nil {
				return cli.Exit(err.Error(), exitUsage)
			}

			engine, err := newEngine(cfg, store.NewMemoryStore(), rt.logger, c.App.ErrWriter)
			if err != nil {
				return cli.Exit(err.Error(), exitUsage)
			}
			defer engine.Close()

			return runDemo(c.Context, engine, func(format string, args ...any) {
				fmt.Fprintf(c.App.Writer, format+"\n", args...)
			})
		},
	}
}

func runDemo(ctx context.Context, engine *goPass.Engine, printf func(string, ...any)) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := engine.Register(ctx, "alice"); err != nil {
		return err
	}
	t1, err := engine.Generate(ctx, "alice")
	if err != nil {
		return err
	}
	printf("generate alice -> %s", t1)

	printf("verify alice <t1> -> %s", outcome(engine.Verify(ctx, "alice", t1)))
	printf("verify alice <other uuid> -> %s", outcome(engine.Verify(ctx, "alice", "00000000-0000-0000-0000-000000000000")))
	printf("verify alice nope -> %s", outcome(engine.Verify(ctx, "alice", "nope")))
	printf("verify bob <t1> -> %s", outcome(engine.Verify(ctx, "bob", t1)))

	wait := engine.Expiry() + 100*time.Millisecond
	printf("waiting %v", wait)
	select {
	case <-time.After(wait):
	case <-ctx.Done():
		return ctx.Err()
	}

	printf("verify alice <t1> after expiry -> %s", outcome(engine.Verify(ctx, "alice", t1)))

	t2, err := engine.Generate(ctx, "alice")
	if err != nil {
		return err
	}
	printf("generate alice -> %s", t2)
	printf("verify alice <t2> -> %s", outcome(engine.Verify(ctx, "alice", t2)))
	printf("verify alice <t1> -> %s", outcome(engine.Verify(ctx, "alice", t1)))
	return nil
}

func outcome(ok bool, err error) string {
	if err != nil {
		return "error: " + err.Error()
	}
	return strconv.FormatBool(ok)
}

// exitFor maps engine errors onto process exit codes.
func exitFor(err error) error {
	var credErr *goPass.CredentialError
	switch {
	case errors.As(err, &credErr):
		return cli.Exit(credErr.Error(), exitCallerErr)
	case errors.Is(err, goPass.ErrStoreUnavailable):
		return cli.Exit(err.Error(), exitStoreError)
	default:
		return cli.Exit(err.Error(), exitUsage)
	}
}
