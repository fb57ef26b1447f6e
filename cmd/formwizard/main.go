package main

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formwizard/internal/store"
	"github.com/goliatone/go-formwizard/pkg/elements"
	"github.com/goliatone/go-formwizard/pkg/fields"
	"github.com/goliatone/go-formwizard/pkg/form"
	"github.com/goliatone/go-formwizard/pkg/openapi"
	"github.com/goliatone/go-formwizard/pkg/prompt"
	"github.com/goliatone/go-formwizard/pkg/scheme"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

//go:embed defaults.yaml
var builtinDefaults []byte

type config struct {
	schema         string
	defaults       string
	openapi        string
	operation      string
	db             string
	scheme         string
	verbose        bool
	nonInteractive bool
	sets           assignments
}

// assignments collects repeated -set key=value flags.
type assignments []string

func (a *assignments) String() string { return strings.Join(*a, ",") }

func (a *assignments) Set(value string) error {
	if !strings.Contains(value, "=") {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	*a = append(*a, value)
	return nil
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatalf("formwizard: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var driver prompt.Driver = prompt.NewSurveyDriver()
	if cfg.nonInteractive {
		driver = prompt.DefaultsDriver{Out: os.Stderr}
	}

	if err := run(ctx, cfg, driver, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, prompt.ErrAborted) {
			log.Fatalf("formwizard: aborted")
		}
		log.Fatalf("formwizard: %v", err)
	}
}

func parseFlags(args []string) (config, error) {
	var cfg config
	fs := flag.NewFlagSet("formwizard", flag.ContinueOnError)
	fs.StringVar(&cfg.schema, "schema", "", "field schema file (JSON or YAML)")
	fs.StringVar(&cfg.defaults, "defaults", "", "default values table (JSON or YAML); built-in table when empty")
	fs.StringVar(&cfg.openapi, "openapi", "", "OpenAPI document to derive the schema from")
	fs.StringVar(&cfg.operation, "operation", "", "operation id used with -openapi")
	fs.StringVar(&cfg.db, "db", "", "SQLite database for step state; in-memory when empty")
	fs.StringVar(&cfg.scheme, "scheme", "", "scheme id to resume; a new id when empty")
	fs.BoolVar(&cfg.verbose, "verbose", false, "log lifecycle traces to stderr")
	fs.BoolVar(&cfg.nonInteractive, "non-interactive", false, "answer every prompt with its current value")
	fs.Var(&cfg.sets, "set", "seed a value as parent.child=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	switch {
	case cfg.schema == "" && cfg.openapi == "":
		return cfg, errors.New("one of -schema or -openapi is required")
	case cfg.schema != "" && cfg.openapi != "":
		return cfg, errors.New("-schema and -openapi are mutually exclusive")
	case cfg.openapi != "" && cfg.operation == "":
		return cfg, errors.New("-operation is required with -openapi")
	}
	return cfg, nil
}

// run executes one step per parent key of the schema and writes the stored
// values as JSON to out.
func run(ctx context.Context, cfg config, driver prompt.Driver, out, errOut io.Writer) error {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if cfg.verbose {
		logger = slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	src, err := loadSchema(ctx, cfg)
	if err != nil {
		return err
	}
	defaults, err := loadDefaults(cfg.defaults)
	if err != nil {
		return err
	}
	factory, err := fields.NewFactory(src, defaults, fields.WithLogger(logger))
	if err != nil {
		var schemaErr *fields.SchemaError
		if errors.As(err, &schemaErr) {
			for _, issue := range schemaErr.Issues {
				fmt.Fprintf(errOut, "schema: %s\n", issue.Error())
			}
		}
		return err
	}

	id := scheme.NewID()
	if cfg.scheme != "" {
		if id, err = scheme.ParseID(cfg.scheme); err != nil {
			return err
		}
	}

	var backend wizard.Backend = wizard.NewMemoryBackend()
	if cfg.db != "" {
		db, err := store.Open(cfg.db)
		if err != nil {
			return err
		}
		defer db.Close()
		backend = db
	}
	container := wizard.NewContainer(backend, id)
	if err := container.Load(ctx); err != nil {
		return fmt.Errorf("load scheme %s: %w", id, err)
	}
	for _, assignment := range cfg.sets {
		key, value, _ := strings.Cut(assignment, "=")
		if err := container.Set(strings.TrimSpace(key), value); err != nil {
			return err
		}
	}

	parents := factory.Parents()
	all := wizard.NewCollection()
	for _, parent := range parents {
		group, err := elements.NewFieldGroup(factory, parent,
			elements.WithPrompter(driver),
			elements.WithLogger(logger),
		)
		if err != nil {
			return err
		}
		all.Add(group)
	}

	for index, parent := range parents {
		if err := driver.Info(ctx, fmt.Sprintf("Step %d/%d: %s", index+1, len(parents), parent)); err != nil {
			return err
		}
		f := form.New(parent, nil)
		step := wizard.NewStep(container, f, id, parent,
			wizard.WithElements(all.Select(index)),
			wizard.WithAllElements(all),
			wizard.WithLogger(logger),
		)
		if err := runStep(ctx, step, f); err != nil {
			return err
		}
	}

	if err := container.Save(ctx); err != nil {
		return fmt.Errorf("save scheme %s: %w", id, err)
	}
	fmt.Fprintf(errOut, "scheme: %s\n", id)

	encoded, err := json.MarshalIndent(container.Values(), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(encoded))
	return err
}

func runStep(ctx context.Context, step *wizard.Step, f *form.Form) error {
	if _, err := step.GetForm(ctx); err != nil {
		return err
	}
	if failures := f.Check(); len(failures) > 0 {
		lines := make([]string, 0, len(failures))
		for key, err := range failures {
			lines = append(lines, fmt.Sprintf("%s: %v", key, err))
		}
		sort.Strings(lines)
		return fmt.Errorf("step %s: invalid validators: %s", step.Name(), strings.Join(lines, "; "))
	}
	if err := step.Submit(ctx, wizard.Flatten(f.Defaults())); err != nil {
		return err
	}
	return step.SaveForm(ctx)
}

func loadSchema(ctx context.Context, cfg config) (fields.Source, error) {
	if cfg.openapi != "" {
		return openapi.LoadFile(ctx, cfg.openapi, cfg.operation)
	}
	return fields.LoadFile(cfg.schema)
}

func loadDefaults(path string) (fields.DefaultValues, error) {
	if path == "" {
		return fields.ParseDefaults(builtinDefaults, "defaults.yaml")
	}
	return fields.LoadDefaults(path)
}
