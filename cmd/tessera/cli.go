package main

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/tesseralabs/tessera/internal/config"
	"github.com/tesseralabs/tessera/internal/errors"
	"github.com/tesseralabs/tessera/internal/ops"
	"github.com/tesseralabs/tessera/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config, baseDir string) *cli.App {
	app := &cli.App{
		Name:    "tessera",
		Usage:   "Qualitative coding workbench",
		Version: Version,
		Commands: []*cli.Command{
			serveCmd(db, cfg),
			statusCmd(db),
			loadCmd(db),
			showCmd(db),
			codeCmd(db),
			segmentCmd(db),
			autocodeCmd(db, cfg),
			estimateCmd(db, cfg),
			importCmd(db),
			exportCmd(db, baseDir),
			resetCmd(db),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// serveCmd creates the serve command.
func serveCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Interface to bind to"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8977, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(db, cfg, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// statusCmd creates the status command.
func statusCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Summarize the current project",
		Action: func(c *cli.Context) error {
			output, err := ops.Status(db)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// loadCmd creates the load command.
func loadCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "load",
		Usage:     "Load a document from a file or stdin (replaces the current document, clears segments)",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Display name (defaults to the file name)"},
		},
		Action: func(c *cli.Context) error {
			var name, content string

			if c.NArg() > 0 {
				path := c.Args().First()
				raw, err := os.ReadFile(path)
				if err != nil {
					return outputError(errors.NewValidation(fmt.Sprintf("failed to read file: %v", err)))
				}
				content = string(raw)
				name = filepath.Base(path)
			} else {
				if !stdinHasData() {
					return outputError(errors.NewValidation("provide a file argument or pipe document text via stdin"))
				}
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				content = text
				name = "stdin.txt"
			}

			if n := c.String("name"); n != "" {
				name = n
			}

			output, err := ops.LoadDocument(db, ops.LoadDocumentInput{Name: name, Content: content})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// showCmd creates the show command.
func showCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Show the loaded document and its sentences",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "content", Usage: "Include the full document text"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ShowDocument(db, ops.ShowDocumentInput{IncludeContent: c.Bool("content")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// codeCmd groups the codebook commands.
func codeCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "code",
		Usage: "Manage codes",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Create a code",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "What the code captures"},
					&cli.StringFlag{Name: "inclusion", Usage: "When to apply the code"},
					&cli.StringFlag{Name: "exclusion", Usage: "When not to apply the code"},
					&cli.StringFlag{Name: "color", Usage: "Hex color (allocated automatically when omitted)"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.AddCode(db, ops.AddCodeInput{
						Name:        c.Args().First(),
						Description: c.String("description"),
						Inclusion:   c.String("inclusion"),
						Exclusion:   c.String("exclusion"),
						Color:       c.String("color"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "update",
				Usage:     "Update fields of a code",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "New name"},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "New description"},
					&cli.StringFlag{Name: "inclusion", Usage: "New inclusion criteria"},
					&cli.StringFlag{Name: "exclusion", Usage: "New exclusion criteria"},
					&cli.StringFlag{Name: "color", Usage: "New hex color"},
				},
				Action: func(c *cli.Context) error {
					input := ops.UpdateCodeInput{ID: c.Args().First()}
					if c.IsSet("name") {
						v := c.String("name")
						input.Name = &v
					}
					if c.IsSet("description") {
						v := c.String("description")
						input.Description = &v
					}
					if c.IsSet("inclusion") {
						v := c.String("inclusion")
						input.Inclusion = &v
					}
					if c.IsSet("exclusion") {
						v := c.String("exclusion")
						input.Exclusion = &v
					}
					if c.IsSet("color") {
						v := c.String("color")
						input.Color = &v
					}

					output, err := ops.UpdateCode(db, input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a code and clear it from every segment",
				ArgsUsage: "[id]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Code name (instead of id)"},
				},
				Action: func(c *cli.Context) error {
					input := ops.DeleteCodeInput{Name: c.String("name")}
					if c.NArg() > 0 {
						input.ID = c.Args().First()
					}
					output, err := ops.DeleteCode(db, input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "list",
				Usage: "List all codes with usage counts",
				Action: func(c *cli.Context) error {
					output, err := ops.ListCodes(db)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// segmentCmd groups the segment commands.
func segmentCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "segment",
		Usage: "Manage segments",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Promote a document sentence to a segment",
				ArgsUsage: "<sentence-index>",
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return outputError(errors.NewValidation("sentence index is required"))
					}
					index, err := strconv.Atoi(c.Args().First())
					if err != nil {
						return outputError(errors.NewValidation("sentence index must be an integer"))
					}
					output, err := ops.AddSegment(db, ops.AddSegmentInput{SentenceIndex: index})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "list",
				Usage: "List all segments with their codes",
				Action: func(c *cli.Context) error {
					output, err := ops.ListSegments(db)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "toggle",
				Usage:     "Toggle a code assignment on a segment",
				ArgsUsage: "<segment-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "code", Usage: "Code ID"},
					&cli.StringFlag{Name: "code-name", Usage: "Code name (instead of id)"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.Toggle(db, ops.ToggleInput{
						SegmentID: c.Args().First(),
						CodeID:    c.String("code"),
						CodeName:  c.String("code-name"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// autocodeCmd creates the autocode command.
func autocodeCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "autocode",
		Usage: "Automatically assign codes to every segment (replaces all assignments)",
		Action: func(c *cli.Context) error {
			output, err := ops.Autocode(c.Context, db, cfg)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// estimateCmd creates the estimate command.
func estimateCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "estimate",
		Usage: "Preview the token cost of an autocode run",
		Action: func(c *cli.Context) error {
			output, err := ops.EstimateAutocode(db, cfg)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import codes or segments from a CSV file (or stdin)",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Required: true, Usage: "What to import: codes|segments"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "append", Usage: "append|overwrite"},
			&cli.BoolFlag{Name: "dry-run", Usage: "Report the column mapping and row partition without committing"},
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation prompt for overwrite imports"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ImportCSVInput{
				Kind:    c.String("kind"),
				Mode:    c.String("mode"),
				Apply:   !c.Bool("dry-run"),
				Confirm: c.Bool("yes"),
			}

			if c.NArg() > 0 {
				input.Path = c.Args().First()
			} else {
				if !stdinHasData() {
					return outputError(errors.NewValidation("provide a file argument or pipe CSV via stdin"))
				}
				data, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				input.Data = data
			}

			// Overwrite commits are destructive. Prompt when interactive;
			// otherwise --yes is required.
			if input.Apply && !input.Confirm && isOverwriteMode(input.Mode) && input.Data == "" && isTerminal() {
				input.Confirm = promptOverwrite(input.Kind)
			}

			output, err := ops.ImportCSV(db, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, baseDir string) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export segments with their codes to CSV",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Destination path, must end in .csv (defaults to the exports directory)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ExportCSV(db, baseDir, ops.ExportCSVInput{Path: c.String("output")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// resetCmd creates the reset command.
func resetCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "Delete the document, all codes, and all segments",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "confirm", Usage: "Required to perform the reset"},
		},
		Action: func(c *cli.Context) error {
			if !c.Bool("confirm") {
				return outputError(errors.NewValidation("pass --confirm to reset the project"))
			}
			output, err := ops.Reset(db)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// outputJSON writes indented JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats a structured error for the terminal.
func outputError(err error) error {
	if tErr, ok := err.(*errors.TesseraError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", tErr.Code, tErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData reports whether stdin is piped rather than a terminal.
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func isOverwriteMode(mode string) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "overwrite", "replace":
		return true
	}
	return false
}

// promptOverwrite asks for interactive confirmation on stderr so the JSON
// result on stdout stays clean.
func promptOverwrite(kind string) bool {
	fmt.Fprintf(os.Stderr, "Overwrite replaces all existing %s. Continue? [y/N]: ", kind)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
