package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/aisa-it/blocks/internal/blocks"
	"github.com/aisa-it/blocks/internal/blocks/cronmanager"
	"github.com/aisa-it/blocks/internal/blocks/dao"
	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
	"github.com/aisa-it/blocks/internal/blocks/export"
	"github.com/aisa-it/blocks/internal/blocks/htmlimport"
	"github.com/aisa-it/blocks/internal/blocks/metrics"
	"github.com/aisa-it/blocks/internal/blocks/render"
	"github.com/aisa-it/blocks/internal/blocks/script"
	stack_error "github.com/aisa-it/blocks/internal/blocks/stack-error"
	"github.com/aisa-it/blocks/internal/blocks/validation"
)

const pruneJobName = "prune-revisions"

var (
	ErrUnknownFormat = errors.New("unknown format")
	errUsage         = errors.New("wrong arguments")
)

func runNew(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("new", flag.ContinueOnError)
	title := fs.String("title", "", "Entry title")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var doc *edtypes.Document
	if fs.NArg() > 0 {
		var err error
		doc, err = readDocument(fs.Arg(0))
		if err != nil {
			return stack_error.TrackErrorStack(err).AddContext("file", fs.Arg(0))
		}
	}

	entry, err := a.store.CreateEntry(ctx, *title, doc)
	if err != nil {
		return stack_error.TrackErrorStack(err)
	}
	fmt.Println(entry.ID)
	return nil
}

func runImport(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	workers := fs.Int("workers", 4, "Parallel imports")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: no files to import", errUsage)
	}

	ids, err := importFiles(ctx, a.store, fs.Args(), *workers)
	for i, file := range fs.Args() {
		if ids[i] != uuid.Nil {
			fmt.Printf("%s\t%s\n", ids[i], file)
		}
	}
	if err != nil {
		return stack_error.TrackErrorStack(err)
	}
	return nil
}

// importFiles создает по записи на файл. Возвращает идентификаторы в порядке файлов,
// uuid.Nil для файлов, которые не удалось импортировать.
func importFiles(ctx context.Context, store *dao.Store, files []string, workers int) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, len(files))
	v := validation.NewDocumentValidator()

	var mu sync.Mutex
	var errs []error

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, file := range files {
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			id, err := importFile(ctx, store, v, file)
			if err != nil {
				slog.Warn("Import file", "file", file, "err", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", file, err))
				mu.Unlock()
				return nil
			}
			ids[i] = id
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ids, err
	}
	return ids, errors.Join(errs...)
}

func importFile(ctx context.Context, store *dao.Store, v *validation.DocumentValidator, file string) (uuid.UUID, error) {
	doc, err := readDocument(file)
	if err != nil {
		return uuid.Nil, err
	}
	if err := v.ValidateDocument(doc); err != nil {
		return uuid.Nil, err
	}

	// нормализация как при открытии в редакторе
	e := blocks.New(doc)
	title := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	entry, err := store.CreateEntry(ctx, title, e.Document())
	if err != nil {
		return uuid.Nil, err
	}
	return entry.ID, nil
}

// readDocument читает JSON документ или HTML по расширению файла.
func readDocument(file string) (*edtypes.Document, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(file)) {
	case ".json":
		return edtypes.ParseDocument(f)
	case ".html", ".htm":
		return htmlimport.ParseDocument(f)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Ext(file))
}

func runReplay(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	entryID := fs.String("entry", "", "Entry id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: replay needs one script", errUsage)
	}

	id, err := uuid.FromString(*entryID)
	if err != nil {
		return stack_error.TrackErrorStack(err).AddContext("entry", *entryID)
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return stack_error.TrackErrorStack(err)
	}
	defer f.Close()
	actions, err := script.Parse(f)
	if err != nil {
		return stack_error.TrackErrorStack(err).AddContext("script", fs.Arg(0))
	}

	entry, err := replay(ctx, a, id, actions)
	if err != nil {
		return stack_error.TrackErrorStack(err).AddContext("entry", id)
	}
	slog.Info("Replay finished", "entry", entry.ID, "version", entry.Version, "actions", len(actions))
	return nil
}

// replay применяет сценарий к записи. Изменения сохраняются через отложенное уведомление,
// в конце отложенное изменение доставляется сразу.
func replay(ctx context.Context, a *app, id uuid.UUID, actions []script.Action) (*dao.Entry, error) {
	entry, err := a.store.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	collector := metrics.NewCollector()
	sink := a.store.Sink(ctx, id, collector.ObserveSave)
	e := blocks.New(&entry.Content,
		blocks.WithRegistry(blocks.DefaultRegistry(blocks.WithCodeLanguage(a.cfg.DefaultCodeLanguage))),
		blocks.WithBackendURL(a.cfg.BackendURLString()),
		blocks.WithStrict(a.cfg.Development),
		blocks.WithObserver(collector),
		blocks.WithChangeHandler(a.cfg.DebounceDelay(), sink),
	)
	defer e.Close()

	runErr := script.NewRunner().Run(ctx, e, actions)
	e.Flush()

	if err := e.Validate(); err != nil {
		slog.Warn("Document has invalid nodes", "entry", id, "err", err)
	}
	if a.cfg.MetricsFile != "" {
		if err := collector.WriteTextfile(a.cfg.MetricsFile); err != nil {
			slog.Warn("Write metrics", "file", a.cfg.MetricsFile, "err", err)
		}
	}
	if runErr != nil {
		return nil, runErr
	}
	return a.store.GetEntry(ctx, id)
}

func runExport(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	entryID := fs.String("entry", "", "Entry id")
	format := fs.String("format", "json", "json, html, md, txt or pdf")
	output := fs.String("o", "", "Output file, stdout by default")
	offline := fs.Bool("offline", false, "Do not load images for pdf")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := uuid.FromString(*entryID)
	if err != nil {
		return stack_error.TrackErrorStack(err).AddContext("entry", *entryID)
	}
	entry, err := a.store.GetEntry(ctx, id)
	if err != nil {
		return stack_error.TrackErrorStack(err).AddContext("entry", id)
	}

	var buf bytes.Buffer
	if err := exportEntry(ctx, a, entry, *format, !*offline, &buf); err != nil {
		return stack_error.TrackErrorStack(err).AddContext("format", *format)
	}

	if *output == "" {
		_, err = io.Copy(os.Stdout, &buf)
		return err
	}
	return os.WriteFile(*output, buf.Bytes(), 0o644)
}

func exportEntry(ctx context.Context, a *app, entry *dao.Entry, format string, loadImages bool, w io.Writer) error {
	registry := blocks.DefaultRegistry(blocks.WithCodeLanguage(a.cfg.DefaultCodeLanguage))
	nodes := entry.Content.Children

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(&entry.Content)
	case "html":
		html, err := render.HTML(registry.Render(nodes))
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, html)
		return err
	case "txt":
		text, err := render.PlainText(registry.Render(nodes))
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, text)
		return err
	case "md":
		return export.Markdown(nodes, w, a.cfg.BackendURLString())
	case "pdf":
		opts := export.PDFOptions{
			FontPath:   a.cfg.PDFFontPath,
			BackendURL: a.cfg.BackendURLString(),
		}
		if loadImages {
			opts.ImageLoader = export.HTTPImageLoader(nil)
		}
		return export.PDF(ctx, nodes, w, opts)
	}
	return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
}

func runList(ctx context.Context, a *app, _ []string) error {
	entries, err := a.store.ListEntries(ctx)
	if err != nil {
		return stack_error.TrackErrorStack(err)
	}
	for _, e := range entries {
		fmt.Printf("%s\tv%d\t%s\t%s\n", e.ID, e.Version, e.UpdatedAt.Format(time.DateTime), e.Title)
	}
	return nil
}

func runPrune(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("prune", flag.ContinueOnError)
	keep := fs.Int("keep", a.cfg.RevisionsKeep, "Revisions to keep per entry")
	if err := fs.Parse(args); err != nil {
		return err
	}

	deleted, err := a.store.PruneRevisions(ctx, *keep)
	if err != nil {
		return stack_error.TrackErrorStack(err)
	}
	slog.Info("Revisions pruned", "deleted", deleted, "keep", *keep)
	return nil
}

// pruneJobs реестр задач очистки ревизий.
func pruneJobs(ctx context.Context, a *app) cronmanager.JobRegistry {
	return cronmanager.JobRegistry{
		pruneJobName: {
			Schedule: a.cfg.PruneSchedule,
			Func: func() {
				deleted, err := a.store.PruneRevisions(ctx, a.cfg.RevisionsKeep)
				if err != nil {
					slog.Error("Prune revisions", "err", err)
					return
				}
				slog.Info("Revisions pruned", "deleted", deleted, "keep", a.cfg.RevisionsKeep)
			},
		},
	}
}

func runServeCron(ctx context.Context, a *app, _ []string) error {
	cm := cronmanager.NewCronManager(pruneJobs(ctx, a))
	if err := cm.LoadJobs(); err != nil {
		return stack_error.TrackErrorStack(err).AddContext("schedule", a.cfg.PruneSchedule)
	}

	cm.Start()
	slog.Info("Cron started", "jobs", cm.Scheduled(), "schedule", a.cfg.PruneSchedule)
	<-ctx.Done()

	slog.Info("Cron stopping")
	cm.Stop()
	return nil
}
