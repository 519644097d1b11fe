// Command credctl manages credential records from the shell.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	goCred "github.com/MrEthical07/goCred"
	"github.com/MrEthical07/goCred/password"
	flag "github.com/spf13/pflag"
)

// errMismatch makes verify exit non-zero without an error log line.
var errMismatch = errors.New("password does not match")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errMismatch):
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	default:
		slog.Error("credctl failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts, err := parseOptions(args, stdin, stderr)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	if opts.Command == "digest" {
		hash, err := password.Digest(opts.Password, opts.Salt)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, hash)
		return nil
	}

	s, closeStore, err := openStore(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeStore(); closeErr != nil {
			slog.Error("error closing store", "error", closeErr)
		}
	}()

	cfg := goCred.DefaultConfig()
	cfg.Engine.Default = opts.Engine
	cfg.Audit.Enabled = opts.Audit

	b := goCred.New().WithConfig(cfg).WithStore(s)
	if opts.Audit {
		b = b.WithAuditSink(goCred.NewJSONWriterSink(stderr))
	}
	svc, err := b.Build()
	if err != nil {
		return err
	}
	defer svc.Close()

	switch opts.Command {
	case "register":
		rec, err := svc.Register(ctx, opts.Username, opts.Email, opts.Password)
		if err != nil {
			return err
		}
		slog.Info("record created", "username", rec.Username(), "engine", rec.Engine().String())
		fmt.Fprint(stdout, rec)

	case "verify":
		rec, err := svc.Authenticate(ctx, opts.Username, opts.Password)
		if errors.Is(err, goCred.ErrInvalidCredentials) {
			return errMismatch
		}
		if err != nil {
			return err
		}
		slog.Debug("password verified", "username", rec.Username(), "engine", rec.Engine().String())
		fmt.Fprintln(stdout, "ok")

	case "passwd":
		if err := svc.ChangePassword(ctx, opts.Username, opts.Password, opts.NewPassword); err != nil {
			if errors.Is(err, goCred.ErrInvalidCredentials) {
				return errMismatch
			}
			return err
		}
		slog.Info("password changed", "username", opts.Username)

	case "show":
		rec, err := svc.Lookup(ctx, opts.Username)
		if err != nil {
			return err
		}
		fmt.Fprint(stdout, rec)

	case "delete":
		if err := svc.Delete(ctx, opts.Username); err != nil {
			return err
		}
		slog.Info("record deleted", "username", opts.Username)
	}

	return nil
}
