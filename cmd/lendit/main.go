package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dusk-indust/lendit/internal/config"
)

// CLI flags parsed from command line.
type cliFlags struct {
	ConfigDir string
	Backend   string
	BaseURL   string
	User      int64
	Listen    string
	Seed      bool
	Latency   bool
	Debounce  time.Duration
	Timeout   time.Duration
	KuzuPath  string
	DataFile  string
	Yes       bool
	Version   bool
}

// version is set by goreleaser at build time.
var version = "dev"

const usage = `usage: lendit [flags] <command> [args]

commands:
  users                          list users
  user <id>                      show one user
  profile [id]                   show a user and their items (default: acting user)
  items [-owner id]              list items with their owners
  item <id>                      show one item
  search <text>                  search items by name or description
  watch                          read queries from stdin, search as you type
  add-item <name> <description>  add an item as the acting user
  edit-item <id> <name> <description> [-unavailable]
  set-available <id> <true|false>
  delete-item <id>               delete an item (asks first unless -yes)
  register <name> <email>        create a user
  delete-user <id>               delete a user and their items (asks first unless -yes)
  serve [-mcp addr]              serve the REST API over the configured backend
  mcp [-http addr]               serve the catalog as MCP tools (stdio by default)
  export [-format json|mermaid]  dump the catalog
  init [-force]                  write lendit.yml and .mcp.json into the config dir
  version                        print version
`

// terminal bundles the process's standard streams so commands can be tested.
type terminal struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	term := terminal{in: os.Stdin, out: os.Stdout, err: os.Stderr}
	if err := run(ctx, os.Args[1:], term); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, term terminal) error {
	var flags cliFlags

	fs := flag.NewFlagSet("lendit", flag.ContinueOnError)
	fs.SetOutput(term.err)
	fs.Usage = func() {
		fmt.Fprint(term.err, usage)
		fmt.Fprintln(term.err, "\nflags:")
		fs.PrintDefaults()
	}
	fs.StringVar(&flags.ConfigDir, "config-dir", ".", "directory holding lendit.yml")
	fs.StringVar(&flags.Backend, "backend", "", "catalog backend: remote, memory or kuzu")
	fs.StringVar(&flags.BaseURL, "base-url", "", "marketplace API base URL for the remote backend")
	fs.Int64Var(&flags.User, "user", 0, "acting user id")
	fs.StringVar(&flags.Listen, "listen", "", "listen address for serve")
	fs.BoolVar(&flags.Seed, "seed", true, "load sample data into in-process backends")
	fs.BoolVar(&flags.Latency, "latency", false, "simulate network latency in the memory backend")
	fs.DurationVar(&flags.Debounce, "debounce", 0, "search debounce window for watch")
	fs.DurationVar(&flags.Timeout, "timeout", 0, "HTTP timeout for the remote backend")
	fs.StringVar(&flags.KuzuPath, "kuzu-path", "", "database directory for the kuzu backend (empty: in-memory)")
	fs.StringVar(&flags.DataFile, "data", "", "load the memory backend from an exported JSON snapshot")
	fs.BoolVar(&flags.Yes, "yes", false, "do not ask before deleting")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if flags.Version {
		fmt.Fprintln(term.out, version)
		return nil
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return fmt.Errorf("no command given")
	}
	cmd, cmdArgs := rest[0], rest[1:]

	switch cmd {
	case "version":
		fmt.Fprintln(term.out, version)
		return nil
	case "help":
		fs.Usage()
		return nil
	}

	cfg, err := loadConfig(fs, flags)
	if err != nil {
		return err
	}

	if cmd == "init" {
		return runInit(flags.ConfigDir, cfg, cmdArgs, term)
	}

	cat, closeCat, err := openCatalog(ctx, cfg, flags.DataFile)
	if err != nil {
		return err
	}
	defer closeCat()

	a := &app{
		cfg:  cfg,
		cat:  cat,
		term: term,
		yes:  flags.Yes,
	}
	return a.dispatch(ctx, cmd, cmdArgs)
}

// loadConfig layers lendit.yml, LENDIT_* variables and explicitly set flags.
func loadConfig(fs *flag.FlagSet, flags cliFlags) (*config.ProjectConfig, error) {
	cfg, err := config.Load(flags.ConfigDir)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			cfg.Backend = config.Backend(strings.ToLower(flags.Backend))
		case "base-url":
			cfg.BaseURL = flags.BaseURL
		case "user":
			cfg.ActingUser = flags.User
		case "listen":
			cfg.Listen = flags.Listen
		case "seed":
			seed := flags.Seed
			cfg.Seed = &seed
		case "latency":
			cfg.Latency = flags.Latency
		case "debounce":
			cfg.Debounce = flags.Debounce
		case "timeout":
			cfg.Timeout = flags.Timeout
		case "kuzu-path":
			cfg.KuzuPath = flags.KuzuPath
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
