// Консольная утилита для работы с документами редактора Blocks: создание и импорт записей,
// воспроизведение сценариев редактирования с отложенным сохранением, экспорт и очистка ревизий.
//
// Команды:
//   - new: создать запись из JSON документа или пустую.
//   - import: параллельный импорт JSON и HTML файлов.
//   - replay: применить сценарий действий к записи.
//   - export: выгрузить запись в json, html, md, txt или pdf.
//   - list: список записей.
//   - prune: удалить старые ревизии.
//   - serve-cron: очищать ревизии по расписанию до остановки процесса.
//
// Пример запуска: blocks -trace replay -entry <id> script.json
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/gorm"

	"github.com/aisa-it/blocks/internal/blocks/config"
	"github.com/aisa-it/blocks/internal/blocks/dao"
	"github.com/aisa-it/blocks/internal/blocks/gormlogger"
	stack_error "github.com/aisa-it/blocks/internal/blocks/stack-error"
)

var version string = "DEV"

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, app *app, args []string) error
}

var commands = []command{
	{"new", "new -title <title> [document.json]", runNew},
	{"import", "import [-workers N] <file.json|file.html>...", runImport},
	{"replay", "replay -entry <id> <script.json>", runReplay},
	{"export", "export -entry <id> [-format json|html|md|txt|pdf] [-o file]", runExport},
	{"list", "list", runList},
	{"prune", "prune [-keep N]", runPrune},
	{"serve-cron", "serve-cron", runServeCron},
}

// app общие зависимости команд.
type app struct {
	cfg   *config.Config
	db    *gorm.DB
	store *dao.Store
}

func main() {
	paramQueries := flag.Bool("paramQueries", true, "Mask queries params in log")
	trace := flag.Bool("trace", false, "Verbose logs and sql trace")
	envFile := flag.String("env", ".env", "Path to .env file")
	flag.Usage = usage
	flag.Parse()

	if *trace {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	// Set prod log format
	if version != "DEV" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{})))
	}

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}
	cmd, ok := findCommand(flag.Arg(0))
	if !ok {
		slog.Error("Unknown command", "command", flag.Arg(0))
		usage()
		os.Exit(2)
	}

	cfg, err := config.ReadConfig(*envFile)
	if err != nil {
		slog.Error("Read config", "err", err)
		os.Exit(1)
	}

	db, err := dao.Open(cfg.DatabaseDSN, &gorm.Config{
		Logger: gormlogger.NewGormLogger(slog.Default(), cfg.SlowQueryThreshold(), *paramQueries),
	})
	if err != nil {
		slog.Error("Fail init DB connection", "err", err)
		os.Exit(1)
	}

	store := dao.NewStore(db)
	if err := store.Migrate(); err != nil {
		slog.Error("Migrate entries", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{cfg: cfg, db: db, store: store}
	if err := cmd.run(ctx, a, flag.Args()[1:]); err != nil {
		stack_error.GetError(err, slog.String("command", cmd.name))
		stop()
		os.Exit(1)
	}
}

func findCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: blocks [flags] <command> [args]\n\nCommands:\n")
	for _, c := range commands {
		fmt.Fprintf(out, "  %s\n", c.usage)
	}
	fmt.Fprintf(out, "\nFlags:\n")
	flag.PrintDefaults()
}
