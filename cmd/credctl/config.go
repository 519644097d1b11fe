package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/MrEthical07/goCred/password"
	flag "github.com/spf13/pflag"
)

// options holds the parsed command line. Flags fall back to GOCRED_* environment
// variables, then to built-in defaults.
type options struct {
	Command  string
	Username string

	Backend   string
	Path      string
	RedisAddr string
	Prefix    string
	Engine    password.Kind

	Email         string
	Password      string
	NewPassword   string
	PasswordStdin bool
	Salt          string

	Audit   bool
	Verbose bool
}

const usage = `usage: credctl <command> [username] [flags]

commands:
  register <username>   create a record (--password, --email)
  verify <username>     check --password against the stored record
  passwd <username>     change --password to --new-password
  show <username>       print the stored record
  delete <username>     remove the record
  digest                print the keyed transposition digest of --password and --salt

Passwords given as flags are visible in process listings. Prefer GOCRED_PASSWORD /
GOCRED_NEW_PASSWORD or --password-stdin (one password per line; passwd reads the
current password, then the new one).
`

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func parseOptions(args []string, stdin io.Reader, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("credctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SortFlags = false
	fs.Usage = func() {
		fmt.Fprint(stderr, usage, "\nflags:\n")
		fs.PrintDefaults()
	}

	engine := fs.StringP("engine", "e", envOr("GOCRED_ENGINE", password.KindKeyedTransposition.String()), "engine for new digests")
	fs.StringVarP(&opts.Backend, "backend", "b", envOr("GOCRED_BACKEND", "file"), "record store: file, redis or sqlite")
	fs.StringVar(&opts.Path, "path", envOr("GOCRED_PATH", ""), "file or sqlite database path")
	fs.StringVar(&opts.RedisAddr, "redis-addr", envOr("GOCRED_REDIS_ADDR", "127.0.0.1:6379"), "redis address")
	fs.StringVar(&opts.Prefix, "prefix", envOr("GOCRED_PREFIX", "gc"), "redis key prefix")
	fs.StringVar(&opts.Email, "email", "", "email stored with a new record")
	fs.StringVarP(&opts.Password, "password", "p", envOr("GOCRED_PASSWORD", ""), "password (visible in process listings, prefer GOCRED_PASSWORD)")
	fs.StringVar(&opts.NewPassword, "new-password", envOr("GOCRED_NEW_PASSWORD", ""), "replacement password for passwd (prefer GOCRED_NEW_PASSWORD)")
	fs.BoolVar(&opts.PasswordStdin, "password-stdin", false, "read passwords from stdin, one per line")
	fs.StringVar(&opts.Salt, "salt", "", "salt for digest")
	fs.BoolVar(&opts.Audit, "audit", false, "write audit events to stderr as JSON lines")
	fs.BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	kind, err := password.ParseKind(*engine)
	if err != nil {
		return opts, err
	}
	opts.Engine = kind

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return opts, errors.New("missing command")
	}
	opts.Command = rest[0]

	switch opts.Command {
	case "digest":
		if len(rest) != 1 {
			return opts, errors.New("digest takes no arguments")
		}
		if opts.PasswordStdin {
			return opts, readPasswords(stdin, &opts)
		}
		return opts, nil
	case "register", "verify", "passwd", "show", "delete":
		if len(rest) != 2 {
			return opts, fmt.Errorf("%s requires exactly one username", opts.Command)
		}
		opts.Username = rest[1]
	default:
		return opts, fmt.Errorf("unknown command %q", opts.Command)
	}

	switch opts.Backend {
	case "file":
		if opts.Path == "" {
			opts.Path = "credentials.txt"
		}
	case "sqlite":
		if opts.Path == "" {
			opts.Path = "credentials.db"
		}
	case "redis":
	default:
		return opts, fmt.Errorf("unknown backend %q", opts.Backend)
	}

	if opts.PasswordStdin {
		if fs.Changed("password") || fs.Changed("new-password") {
			return opts, errors.New("--password-stdin cannot be combined with --password or --new-password")
		}
		if err := readPasswords(stdin, &opts); err != nil {
			return opts, err
		}
	}

	if opts.Command == "passwd" && opts.NewPassword == "" {
		return opts, errors.New("passwd requires --new-password")
	}

	return opts, nil
}

// readPasswords fills Password from the first stdin line and, for passwd,
// NewPassword from the second.
func readPasswords(stdin io.Reader, opts *options) error {
	if stdin == nil {
		return errors.New("--password-stdin: no stdin")
	}
	rd := bufio.NewReader(stdin)

	next := func(what string) (string, error) {
		line, err := rd.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", fmt.Errorf("--password-stdin: reading %s: %w", what, err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	pw, err := next("password")
	if err != nil {
		return err
	}
	opts.Password = pw

	if opts.Command == "passwd" {
		newPw, err := next("new password")
		if err != nil {
			return err
		}
		opts.NewPassword = newPw
	}
	return nil
}
