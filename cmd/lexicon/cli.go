package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/hpungsan/lexicon/internal/artifact"
	"github.com/hpungsan/lexicon/internal/config"
	"github.com/hpungsan/lexicon/internal/db"
	"github.com/hpungsan/lexicon/internal/errors"
	"github.com/hpungsan/lexicon/internal/lexicon"
	"github.com/hpungsan/lexicon/internal/logging"
	"github.com/hpungsan/lexicon/internal/mcp"
	"github.com/hpungsan/lexicon/internal/ops"
	"github.com/hpungsan/lexicon/internal/web"
)

// env is the state shared by all commands of one invocation.
type env struct {
	stdout io.Writer
	stderr io.Writer

	baseDir string
	format  string
	cfg     *config.Config
	logger  *slog.Logger
	db      *sql.DB
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(stdout, stderr io.Writer) *cli.App {
	e := &env{stdout: stdout, stderr: stderr}

	app := &cli.App{
		Name:      "lexicon",
		Usage:     "Parse, index and browse the Life Lexicon",
		Version:   Version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "home", EnvVars: []string{"LEXICON_HOME"}, Usage: "Base directory (default: ~/.lexicon)"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "Output format: json|yaml"},
			&cli.StringFlag{Name: "log-level", Usage: "Log level: debug|info|warn|error (overrides config)"},
		},
		Before: e.setup,
		After:  e.close,
		Commands: []*cli.Command{
			buildCmd(e),
			showCmd(e),
			indexCmd(e),
			fetchCmd(e),
			listCmd(e),
			searchCmd(e),
			schemaCmd(e),
			serveCmd(e),
			mcpCmd(e),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// setup resolves the base directory, config, logger and output format.
func (e *env) setup(c *cli.Context) error {
	e.baseDir = c.String("home")
	if e.baseDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not determine home directory: %w", err)
		}
		e.baseDir = filepath.Join(homeDir, ".lexicon")
	}

	wd, err := os.Getwd()
	if err != nil {
		wd = e.baseDir
	}
	cfg, err := config.LoadWithRepo(e.baseDir, wd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	e.cfg = cfg

	level := cfg.LogLevel
	if c.IsSet("log-level") {
		level = c.String("log-level")
	}
	e.logger = logging.New(level, cfg.LogFormat, e.stderr)

	e.format = strings.ToLower(c.String("format"))
	if e.format != "json" && e.format != "yaml" {
		return outputError(errors.NewInvalidRequest(fmt.Sprintf("unknown format %q (want json or yaml)", e.format)))
	}
	return nil
}

func (e *env) close(*cli.Context) error {
	if e.db != nil {
		return e.db.Close()
	}
	return nil
}

// database opens the index on first use.
func (e *env) database() (*sql.DB, error) {
	if e.db != nil {
		return e.db, nil
	}
	database, err := db.Init(e.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	db.ConfigurePool(database, e.cfg)
	e.db = database
	return database, nil
}

// artifactPath is the configured artifact, or lexicon.bin in the base dir.
func (e *env) artifactPath() string {
	if e.cfg.ArtifactPath != "" {
		return e.cfg.ArtifactPath
	}
	return filepath.Join(e.baseDir, "lexicon"+artifact.Extension)
}

// sourcePath is --in when given, else the configured source.
func (e *env) sourcePath(c *cli.Context) string {
	if in := c.String("in"); in != "" {
		return in
	}
	return e.cfg.SourcePath
}

// loadCatalog reads the catalog a command works on. An explicit --in
// bypasses the artifact.
func (e *env) loadCatalog(c *cli.Context) (*ops.LoadOutput, error) {
	if in := c.String("in"); in != "" {
		return ops.Load(c.Context, ops.LoadInput{SourcePath: in})
	}
	return ops.Load(c.Context, ops.LoadInput{
		ArtifactPath: e.artifactPath(),
		SourcePath:   e.cfg.SourcePath,
	})
}

// inFlag is shared by the commands that read a catalog.
func inFlag() cli.Flag {
	return &cli.StringFlag{Name: "in", Aliases: []string{"i"}, Usage: "Lexicon text file (default: artifact, then config, then bundled)"}
}

// buildCmd creates the build command.
func buildCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Compile lexicon text into a binary artifact",
		Flags: []cli.Flag{
			inFlag(),
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Artifact path (default: ~/.lexicon/lexicon.bin)"},
			&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "Rebuild whenever the source file changes"},
		},
		Action: func(c *cli.Context) error {
			input := ops.BuildInput{
				Source: e.sourcePath(c),
				Output: c.String("out"),
			}
			if input.Output == "" {
				input.Output = e.artifactPath()
			}

			if c.Bool("watch") {
				if err := ops.Watch(c.Context, input, e.logger); err != nil {
					return outputError(err)
				}
				return nil
			}

			output, err := ops.Build(c.Context, input)
			if err != nil {
				return outputError(err)
			}
			e.logger.Debug("artifact built", "output", output.Output, "terms", output.Terms)
			return e.output(output)
		},
	}
}

// showCmd creates the show command.
func showCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a term straight from the catalog (no index needed)",
		ArgsUsage: "NAME",
		Flags:     []cli.Flag{inFlag()},
		Action: func(c *cli.Context) error {
			loaded, err := e.loadCatalog(c)
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Show(loaded.Lexicon, argString(c))
			if err != nil {
				return outputError(err)
			}
			return e.output(output)
		},
	}
}

// indexCmd creates the index command.
func indexCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "index",
		Usage: "Load the catalog into the local SQLite index",
		Flags: []cli.Flag{
			inFlag(),
			&cli.BoolFlag{Name: "force", Usage: "Re-index even if the catalog is unchanged"},
		},
		Action: func(c *cli.Context) error {
			loaded, err := e.loadCatalog(c)
			if err != nil {
				return outputError(err)
			}
			database, err := e.database()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			output, err := ops.Index(c.Context, database, loaded.Lexicon, ops.IndexInput{
				Source: loaded.Source,
				Force:  c.Bool("force"),
			})
			if err != nil {
				return outputError(err)
			}
			e.logger.Info("index ready", "source", loaded.Source, "build_id", output.BuildID, "terms", output.Terms, "skipped", output.Skipped)
			return e.output(output)
		},
	}
}

// fetchCmd creates the fetch command.
func fetchCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "Fetch a term from the index by exact name",
		ArgsUsage: "NAME",
		Action: func(c *cli.Context) error {
			database, err := e.database()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			output, err := ops.Fetch(c.Context, database, ops.FetchInput{Name: argString(c)})
			if err != nil {
				return outputError(err)
			}
			return e.output(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List indexed terms in catalog order",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "tag", Usage: "Filter by tag"},
			&cli.StringFlag{Name: "prefix", Usage: "Filter by name prefix (case-insensitive)"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			database, err := e.database()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			output, err := ops.List(c.Context, database, ops.ListInput{
				Tag:    c.String("tag"),
				Prefix: c.String("prefix"),
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return e.output(output)
		},
	}
}

// searchCmd creates the search command.
func searchCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search term names and descriptions",
		ArgsUsage: "QUERY",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "tag", Usage: "Filter by tag"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultSearchLimit, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			database, err := e.database()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			output, err := ops.Search(c.Context, database, ops.SearchInput{
				Query:  argString(c),
				Tag:    c.String("tag"),
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return e.output(output)
		},
	}
}

// schemaCmd creates the schema command.
func schemaCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the JSON Schema of a term",
		Action: func(c *cli.Context) error {
			enc := json.NewEncoder(e.stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(termSchema())
		},
	}
}

// termSchema reflects the JSON Schema of lexicon.Term.
func termSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{ExpandedStruct: true}
	s := r.Reflect(&lexicon.Term{})
	s.Title = "Life Lexicon term"
	return s
}

// serveCmd creates the serve command.
func serveCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web UI over the index",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Bind address (overrides config)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Port (overrides config)"},
		},
		Action: func(c *cli.Context) error {
			if c.IsSet("bind") {
				e.cfg.WebBind = c.String("bind")
			}
			if c.IsSet("port") {
				e.cfg.WebPort = c.Int("port")
			}

			database, err := e.database()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			srv, err := web.NewServer(database, e.cfg, e.logger, Version)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return web.Run(c.Context, srv, e.logger)
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Run the MCP server on stdio",
		Flags: []cli.Flag{inFlag()},
		Action: func(c *cli.Context) error {
			for _, name := range mcp.ValidateDisabledTools(e.cfg.DisabledTools) {
				e.logger.Warn("unknown tool in disabled_tools", "tool", name)
			}

			loaded, err := e.loadCatalog(c)
			if err != nil {
				return outputError(err)
			}
			database, err := e.database()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return mcp.Run(database, loaded.Lexicon, e.cfg, e.logger, Version)
		},
	}
}

// Helper functions

// output writes v to stdout in the selected format.
func (e *env) output(v any) error {
	if e.format == "yaml" {
		enc := yaml.NewEncoder(e.stdout)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(e.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	lErr := errors.As(err)
	msg := err.Error()
	if direct, ok := err.(*errors.LexError); ok {
		msg = direct.Message
	}
	return cli.Exit(fmt.Sprintf("[%s] %s", lErr.Code, msg), 1)
}

// argString joins positional arguments so multi-word names work unquoted.
func argString(c *cli.Context) string {
	return strings.Join(c.Args().Slice(), " ")
}
