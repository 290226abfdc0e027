package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/japaniel/vocabreader/pkg/config"
	"github.com/japaniel/vocabreader/pkg/db"
)

type command struct {
	usage string
	run   func(a *app, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"import":   {"import [-url URL | FILE...] -lang LANG -user NAME", runImport},
	"search":   {"search -lang LANG [-offset N] QUERY", runSearch},
	"show":     {"show -id ID [-size small|medium|large] [-page N] [-user NAME]", runShow},
	"status":   {"status -user NAME -lang LANG -status known|learning|new WORD...", runStatus},
	"define":   {"define -user NAME -lang LANG WORD DEFINITION", runDefine},
	"words":    {"words -user NAME [-lang LANG]", runWords},
	"suggest":  {"suggest -user NAME -id ID [-dict PATH] [-download] [-apply]", runSuggest},
	"save":     {"save -user NAME -id ID", runSave},
	"unsave":   {"unsave -user NAME -id ID", runUnsave},
	"saved":    {"saved -user NAME [-offset N]", runSaved},
	"uploaded": {"uploaded -user NAME [-offset N]", runUploaded},
	"users":    {"users [-offset N]", runUsers},
}

type app struct {
	cfg  *config.Config
	log  *logrus.Entry
	conn *sql.DB
	out  io.Writer
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("vocabreader", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFlag := fs.String("config", "", "Path to a YAML config file")
	dbFlag := fs.String("db", "", "Path to SQLite database (overrides config)")
	fs.Usage = func() { printUsage(stderr, fs) }
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return flag.ErrHelp
	}
	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		fs.Usage()
		return fmt.Errorf("unknown command %q", fs.Arg(0))
	}

	cfg := config.Load()
	if *configFlag != "" {
		var err error
		if cfg, err = config.LoadFile(*configFlag); err != nil {
			return err
		}
	}
	if *dbFlag != "" {
		cfg.Database.Path = *dbFlag
	}

	logger := logrus.New()
	logger.SetOutput(stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logger.SetLevel(level)

	conn, err := db.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer conn.Close()

	a := &app{
		cfg:  cfg,
		log:  logger.WithField("service", "vocabreader"),
		conn: conn,
		out:  stdout,
	}
	return cmd.run(a, ctx, fs.Args()[1:])
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "usage: vocabreader [-config FILE] [-db PATH] COMMAND [flags]")
	fmt.Fprintln(w, "\ncommands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintln(w, "  "+commands[name].usage)
	}
	fmt.Fprintln(w, "\nglobal flags:")
	fs.PrintDefaults()
}
