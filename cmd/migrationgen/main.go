package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/shopmonkeyus/go-common/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tordrt/migrationgen"
	"github.com/tordrt/migrationgen/internal/formatter"
)

const envPrefix = "MIGRATIONGEN"

// errReported marks errors whose details were already written to the user.
var errReported = errors.New("error already reported")

var (
	red    = color.New(color.FgRed, color.Bold).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
)

// config holds the resolved settings of one invocation. Every field can come
// from a flag, an environment variable or the config file, in that order.
type config struct {
	MySQLURL         string
	SQLitePath       string
	HCLFile          string
	YAMLFile         string
	Schema           string
	Tables           []string
	Exclude          []string
	Output           string
	OutputDir        string
	Format           string
	DefaultEngine    string
	WarnDropped      bool
	NamedForeignKeys bool
	Verbose          bool
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "migrationgen",
		Short: "Generate Laravel migrations from a MySQL schema",
		Long: `migrationgen reads a MySQL schema from a live database, a SQLite file, an Atlas HCL file or a YAML
catalog and writes one Laravel migration per table, ordered so that foreign keys only point to tables
that already exist.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfigFile(v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), loadConfig(v), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().String("config", "", "Config file (default: ./migrationgen.yaml if present)")
	cmd.Flags().String("mysql-url", "", "MySQL connection string")
	cmd.Flags().String("sqlite", "", "SQLite database file path")
	cmd.Flags().String("hcl", "", "Atlas HCL schema file")
	cmd.Flags().String("yaml", "", "YAML catalog file")
	cmd.Flags().StringP("schema", "s", "", "Schema to compile (default: the database of --mysql-url or the first schema with tables)")
	cmd.Flags().StringP("tables", "t", "", "Specific tables (comma-separated, optional)")
	cmd.Flags().StringP("exclude", "x", "", "Tables to leave out (comma-separated, optional)")
	cmd.Flags().StringP("output", "o", "", "Preview output file (default: stdout)")
	cmd.Flags().StringP("output-dir", "d", "", "Migrations directory to write the files to")
	cmd.Flags().StringP("format", "f", "text", "Preview format: text or markdown")
	cmd.Flags().String("default-engine", "InnoDB", "Storage engine that needs no engine directive")
	cmd.Flags().Bool("warn-dropped", false, "Warn about columns whose type has no migration equivalent")
	cmd.Flags().Bool("named-foreign-keys", false, "Pass the index name of each foreign key to foreign()")
	cmd.Flags().BoolP("verbose", "v", false, "Turn on debug logging")

	_ = v.BindPFlags(cmd.Flags())
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return cmd
}

func loadConfigFile(v *viper.Viper) error {
	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("migrationgen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(err, "failed to read config file")
	}
	return nil
}

func loadConfig(v *viper.Viper) *config {
	return &config{
		MySQLURL:         v.GetString("mysql-url"),
		SQLitePath:       v.GetString("sqlite"),
		HCLFile:          v.GetString("hcl"),
		YAMLFile:         v.GetString("yaml"),
		Schema:           v.GetString("schema"),
		Tables:           parseTableList(v.GetString("tables")),
		Exclude:          parseTableList(v.GetString("exclude")),
		Output:           v.GetString("output"),
		OutputDir:        v.GetString("output-dir"),
		Format:           v.GetString("format"),
		DefaultEngine:    v.GetString("default-engine"),
		WarnDropped:      v.GetBool("warn-dropped"),
		NamedForeignKeys: v.GetBool("named-foreign-keys"),
		Verbose:          v.GetBool("verbose"),
	}
}

// sourceURL turns the single source setting into a source URL
func (c *config) sourceURL() (string, error) {
	var sources []string
	if c.MySQLURL != "" {
		sources = append(sources, "mysql://"+strings.TrimPrefix(c.MySQLURL, "mysql://"))
	}
	if c.SQLitePath != "" {
		sources = append(sources, "sqlite://"+c.SQLitePath)
	}
	if c.HCLFile != "" {
		sources = append(sources, "hcl://"+c.HCLFile)
	}
	if c.YAMLFile != "" {
		sources = append(sources, "yaml://"+c.YAMLFile)
	}

	switch len(sources) {
	case 0:
		return "", errors.New("one of --mysql-url, --sqlite, --hcl or --yaml must be specified")
	case 1:
		return sources[0], nil
	default:
		return "", errors.New("only one of --mysql-url, --sqlite, --hcl or --yaml can be specified")
	}
}

func run(ctx context.Context, cfg *config, stdout, stderr io.Writer) error {
	sourceURL, err := cfg.sourceURL()
	if err != nil {
		return err
	}
	if cfg.Output != "" && cfg.OutputDir != "" {
		return errors.New("cannot use both --output-dir and --output flags")
	}
	if cfg.Format != "text" && cfg.Format != "markdown" {
		return errors.Newf("invalid format: %s (must be 'text' or 'markdown')", cfg.Format)
	}

	level := logger.LevelInfo
	if cfg.Verbose {
		level = logger.LevelTrace
	}
	log := logger.NewConsoleLogger(level)

	gen, err := migrationgen.Generate(ctx, sourceURL, &migrationgen.Options{
		Tables:           cfg.Tables,
		ExcludeTables:    cfg.Exclude,
		SchemaName:       cfg.Schema,
		DefaultEngine:    cfg.DefaultEngine,
		WarnDroppedTypes: cfg.WarnDropped,
		NamedForeignKeys: cfg.NamedForeignKeys,
		Logger:           log,
	})
	if err != nil {
		if cycle, ok := migrationgen.IsCircularReference(err); ok {
			_, _ = fmt.Fprintf(stderr, "%s\n%s\n", red(cycle.Title), cycle.Message)
			_, _ = fmt.Fprintf(stderr, "Tables involved: %s\n", strings.Join(cycle.Tables, ", "))
			return errors.Mark(err, errReported)
		}
		return err
	}

	log.Info("compiled %d tables of schema %s (%d columns skipped, %d dropped, %d foreign keys unresolved)",
		len(gen.Files), gen.Schema, len(gen.Result.Skipped), len(gen.Result.Dropped), len(gen.Result.Unresolved))

	if cfg.OutputDir != "" {
		return save(ctx, cfg.OutputDir, gen.Files, stdout)
	}

	writer := stdout
	if cfg.Output != "" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return errors.Wrap(err, "failed to create output file")
		}
		defer func() {
			if err := f.Close(); err != nil {
				log.Warn("failed to close output file: %v", err)
			}
		}()
		writer = f
	}

	if err := migrationgen.Preview(writer, gen.Files, cfg.Format); err != nil {
		return errors.Wrap(err, "failed to format output")
	}
	return nil
}

func save(ctx context.Context, dir string, files []formatter.File, stdout io.Writer) error {
	res, err := migrationgen.Save(ctx, dir, files)
	if res != nil {
		for _, path := range res.Created {
			_, _ = fmt.Fprintf(stdout, "%s %s\n", green("created"), path)
		}
		for _, path := range res.Overwritten {
			_, _ = fmt.Fprintf(stdout, "%s %s\n", yellow("overwritten"), path)
		}
	}
	if err != nil {
		var saveErr *formatter.SaveError
		if errors.As(err, &saveErr) {
			for _, fe := range saveErr.Files {
				_, _ = fmt.Fprintf(stdout, "%s %s: %v\n", red("failed"), cyan(fe.Path), fe.Err)
			}
			return errors.Mark(err, errReported)
		}
		return err
	}
	return nil
}

// parseTableList splits a comma-separated table list
func parseTableList(tables string) []string {
	if strings.TrimSpace(tables) == "" {
		return nil
	}

	var tableList []string
	for _, t := range strings.Split(tables, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tableList = append(tableList, t)
		}
	}
	return tableList
}

// reportError writes err and its hints unless they were already shown
func reportError(w io.Writer, err error) {
	if errors.Is(err, errReported) {
		return
	}
	_, _ = fmt.Fprintf(w, "%s %v\n", red("error:"), err)
	for _, hint := range errors.GetAllHints(err) {
		_, _ = fmt.Fprintf(w, "%s %s\n", cyan("hint:"), hint)
	}
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}
