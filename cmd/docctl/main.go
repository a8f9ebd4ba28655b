// Command docctl drives the document views from a terminal against an
// in-process, freshly seeded store.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/liliang-cn/doclens/internal/cache"
	"github.com/liliang-cn/doclens/internal/config"
	"github.com/liliang-cn/doclens/internal/logging"
	"github.com/liliang-cn/doclens/internal/repository"
	"github.com/liliang-cn/doclens/internal/service"
	"github.com/liliang-cn/doclens/internal/state"
)

const usage = `usage: docctl [-config file] <command> [flags]

commands:
  list    [-page N] [-limit N]
  show    -id ID [-section headers|body|content] [-page N] [-doc-page N]
  upload  FILE
`

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	// keep the terminal for command output
	if cfg.Log.Level == "info" || cfg.Log.Level == "debug" {
		cfg.Log.Level = "warn"
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	app, closeFn, err := newApp(cfg, logger, os.Stdout)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer closeFn()

	if err := app.run(context.Background(), flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		closeFn()
		os.Exit(1)
	}
}

type app struct {
	store    *state.Store
	pageSize int
	out      io.Writer
}

func newApp(cfg *config.Config, logger *zap.Logger, out io.Writer) (*app, func(), error) {
	db, err := repository.NewDB(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}

	docRepo := repository.NewDocumentRepository(db)
	detailsRepo := repository.NewDetailsRepository(db)
	if cfg.Database.Seed {
		if err := repository.Seed(context.Background(), docRepo, detailsRepo); err != nil {
			db.Close()
			return nil, nil, err
		}
	}

	svc := service.NewDocumentService(
		docRepo,
		detailsRepo,
		cache.NewShardedCache(cfg.Cache.Shards, cfg.Cache.TTL),
		logger,
		service.OptionsFromConfig(cfg),
	)
	return &app{
		store:    state.NewStore(svc, logger),
		pageSize: cfg.Pagination.SectionPageSize,
		out:      out,
	}, func() { db.Close() }, nil
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "list":
		fs := flag.NewFlagSet("list", flag.ContinueOnError)
		page := fs.Int("page", 1, "list page")
		limit := fs.Int("limit", 10, "documents per page")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return a.list(ctx, *page, *limit)

	case "show":
		fs := flag.NewFlagSet("show", flag.ContinueOnError)
		id := fs.String("id", "", "document id")
		section := fs.String("section", "headers", "section to show")
		page := fs.Int("page", 1, "section page")
		docPage := fs.Int("doc-page", 1, "document page")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *id == "" {
			return fmt.Errorf("show: -id is required")
		}
		return a.show(ctx, *id, *section, *page, *docPage)

	case "upload":
		if len(args) != 1 {
			return fmt.Errorf("upload: expected exactly one file")
		}
		return a.upload(ctx, args[0])
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func (a *app) upload(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}

	file := describeFile(path, info)
	fmt.Fprintf(a.out, "Uploading %s (%s)...\n", file.Name, humanize.IBytes(uint64(file.Size)))
	doc, err := a.store.Upload(ctx, file)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Uploaded %s as %s (%s, %s)\n", doc.Title, doc.ID, doc.FileSize, doc.Status)
	return nil
}
