package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/nissyi-gh/donewithit/internal/config"
	"github.com/nissyi-gh/donewithit/internal/importer"
	"github.com/nissyi-gh/donewithit/internal/logging"
	"github.com/nissyi-gh/donewithit/internal/notify"
	"github.com/nissyi-gh/donewithit/internal/prompt"
	"github.com/nissyi-gh/donewithit/internal/store"
	"github.com/nissyi-gh/donewithit/internal/todo"
	"github.com/nissyi-gh/donewithit/internal/ui"
)

const shutdownTimeout = 5 * time.Second

type args struct {
	ConfigPath string
	Verbose    bool
	ImportFile string
	ExportFile string
	Prompt     bool
}

func parseArgs() args {
	var a args
	flag.StringVar(&a.ConfigPath, "config", "", "Path to configuration file")
	flag.BoolVar(&a.Verbose, "verbose", false, "Enable verbose logging")
	flag.StringVar(&a.ImportFile, "import", "", "Import tasks from a YAML file")
	flag.StringVar(&a.ExportFile, "export", "", "Export tasks to a YAML file (- for stdout)")
	flag.BoolVar(&a.Prompt, "prompt", false, "Print an LLM prompt that produces importable YAML")
	flag.Parse()
	return a
}

func main() {
	if err := run(parseArgs()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(a args) error {
	configPath := a.ConfigPath
	if configPath == "" {
		configPath = config.ResolveConfigPath()
	}
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, logCloser, err := logging.Open(cfg.LogPath(), cfg.Verbose || a.Verbose)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	ctx := context.Background()
	blobs, err := openBlobStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer blobs.Close()

	writer := store.NewWriter(blobs, logger)
	scheduler := notify.NewScheduler(0, logger)
	defer shutdown(writer, scheduler, logger)

	st := todo.New(scheduler, writer, todo.Options{
		DefaultCategory: cfg.DefaultCategory,
		Categories:      cfg.Categories,
		Palette:         cfg.Palette,
		Ordering:        cfg.Ordering(),
		Logger:          logger,
	})
	if err := st.Load(ctx, writer); err != nil {
		logger.Printf("load: %v", err)
	}

	switch {
	case a.Prompt:
		fmt.Print(prompt.GenerateNew(st.Categories()))
		return nil
	case a.ImportFile != "":
		return importFile(ctx, st, a.ImportFile)
	case a.ExportFile != "":
		return exportFile(st, a.ExportFile)
	}

	if err := st.RearmReminders(ctx); err != nil {
		logger.Printf("rearm reminders: %v", err)
	}
	return ui.Run(st, ui.Options{
		InitialTab: cfg.InitialTab(),
		Reminders:  scheduler.C(),
	})
}

func openBlobStore(ctx context.Context, s config.Storage) (store.BlobStore, error) {
	switch s.Driver {
	case config.DriverPostgres:
		return store.OpenPostgres(ctx, s.DSN, s.Table)
	case config.DriverMemory:
		return store.NewMemoryStore(), nil
	default:
		return store.OpenSQLite(s.Path)
	}
}

func shutdown(w *store.Writer, s *notify.Scheduler, logger *log.Logger) {
	s.Close()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := w.Close(ctx); err != nil {
		logger.Printf("flush pending saves: %v", err)
	}
	if n := w.Failures(); n > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d saves failed, see the log for details\n", n)
	}
}

func importFile(ctx context.Context, st *todo.Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	res, err := importer.Import(ctx, st, string(data))
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", w)
	}
	fmt.Printf("Imported %d tasks\n", res.Created)
	return nil
}

func exportFile(st *todo.Store, path string) error {
	data, err := importer.Export(st)
	if err != nil {
		return err
	}
	var out io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	_, err = out.Write(data)
	return err
}
