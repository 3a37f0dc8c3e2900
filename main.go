package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"
	"github.com/mcncl/mpexplorer/internal/analyzer"
	"github.com/mcncl/mpexplorer/internal/config"
	"github.com/mcncl/mpexplorer/internal/decoder"
	"github.com/mcncl/mpexplorer/internal/errors"
	"github.com/mcncl/mpexplorer/internal/formatter"
	"github.com/mcncl/mpexplorer/internal/hexdump"
	"github.com/mcncl/mpexplorer/internal/models"
	"github.com/sirupsen/logrus"
)

// CLI defines the command-line interface
var CLI struct {
	Input           string `help:"Path to input MessagePack file. If not specified, reads from stdin." short:"i" type:"path"`
	Output          string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	Config          string `help:"Path to config file. If not specified, searches for .mpexplorer.yml." short:"c" type:"path"`
	Endian          string `help:"Byte order handling for multi-byte fields: auto, never or always."`
	MaxDepth        int    `help:"Maximum container nesting depth (default 10000)." name:"max-depth"`
	Limit           int    `help:"Maximum number of items, and of stream messages, to display (default 1000)." short:"l"`
	Stream          bool   `help:"Decode every concatenated message in the input."`
	ContinueOnError bool   `help:"In stream mode, skip a byte and retry after a decoding error." name:"continue-on-error"`
	Hex             bool   `help:"Append a hex dump of the input."`
	Summary         bool   `help:"Append a summary of the decoded data."`
	Offsets         bool   `help:"Show the byte range of every item."`
	Select          string `help:"Path of an item to describe and highlight in the hex dump, e.g. '$[1].{0}.value'."`
	Color           string `help:"Colorize output: auto, always or never."`
	Debug           bool   `help:"Enable debug logging." short:"d"`
	Version         bool   `help:"Show version information." short:"v"`
}

// Context holds the runtime context
type Context struct {
	Debug  bool
	Config *config.Config
	Log    *logrus.Logger
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	// Parse CLI arguments with Kong
	parser := kong.Must(&CLI,
		kong.Name("mpexplorer"),
		kong.Description("A tool to inspect MessagePack data as a typed tree"),
		kong.UsageOnError(),
	)

	if _, err := parser.Parse(os.Args[1:]); err != nil {
		// If there's an error parsing arguments, the usage will already be shown by kong.UsageOnError()
		os.Exit(1)
	}

	// Show version and exit if requested
	if CLI.Version {
		fmt.Printf("mpexplorer version %s\n", Version)
		return
	}

	ctx, err := newContext()
	if err == nil {
		err = run(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: mpexplorer --help\n")
		os.Exit(1)
	}
}

// newContext resolves configuration from the config file and CLI flags
func newContext() (*Context, error) {
	configPath := CLI.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	cfg, err := config.LoadConfigWithCLI(configPath, config.CLIOverrides{
		Endian:          CLI.Endian,
		MaxDepth:        CLI.MaxDepth,
		Limit:           CLI.Limit,
		Color:           CLI.Color,
		Offsets:         CLI.Offsets,
		Hex:             CLI.Hex,
		Summary:         CLI.Summary,
		Stream:          CLI.Stream,
		ContinueOnError: CLI.ContinueOnError,
		Debug:           CLI.Debug,
	})
	if err != nil {
		return nil, errors.NewConfigError("failed to load configuration", err)
	}

	log := newLogger(cfg.Dev.Debug)
	if configPath != "" {
		log.Debugf("using config file %s", configPath)
	}
	return &Context{Debug: cfg.Dev.Debug, Config: cfg, Log: log}, nil
}

func newLogger(debug bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if debug {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}

// run executes the main program logic
func run(ctx *Context) error {
	if ctx.Config == nil {
		ctx.Config = config.NewConfig()
	}
	if ctx.Log == nil {
		ctx.Log = newLogger(ctx.Debug)
	}
	cfg := ctx.Config

	// 1. Read MessagePack input
	data, err := readInput()
	if err != nil {
		return err
	}
	ctx.Log.WithFields(logrus.Fields{
		"bytes":     len(data),
		"endian":    cfg.EndianMode(),
		"max_depth": cfg.Decode.MaxDepth,
		"stream":    cfg.Stream.Enabled,
	}).Debug("decoding input")

	// 2. Decode into item trees
	msgs, err := decodeInput(ctx, data)
	if err != nil {
		return err
	}
	consumed := decoder.Consumed(msgs)
	ctx.Log.Debugf("decoded %d message(s), %d of %d bytes consumed", len(msgs), consumed, len(data))

	// 3. Render
	useColor := colorEnabled(cfg.ColorMode())
	formatterInst := formatter.NewFormatter(formatter.Options{
		Limit:   cfg.Display.Limit,
		Color:   useColor,
		Offsets: cfg.Display.Offsets,
	})

	var tree string
	if cfg.Stream.Enabled {
		tree, err = formatterInst.FormatMessages(msgs)
	} else {
		tree, err = formatterInst.Format(msgs[0].Item)
	}
	if err != nil {
		return errors.NewOutputError("failed to render decoded data", err)
	}

	var out strings.Builder
	out.WriteString(tree)

	if cfg.Display.Summary {
		summary, err := summarize(msgs)
		if err != nil {
			return err
		}
		out.WriteString("\n")
		out.WriteString(summary.String())
	}

	var highlight hexdump.Range
	if CLI.Select != "" {
		path, item, err := selectItem(msgs, CLI.Select)
		if err != nil {
			return err
		}
		highlight = hexdump.RangeOf(*item)
		out.WriteString("\nSelected: ")
		out.WriteString(formatterInst.Describe(path, item))
		out.WriteString("\n")
	}

	if cfg.Display.Hex {
		out.WriteString("\n")
		out.WriteString(hexdump.NewDumper(useColor).Dump(data, consumed, highlight))
	}

	// 4. Output the result
	return writeOutput(out.String())
}

// decodeInput decodes the first message, or every message in stream mode.
// A single failed message in single mode is returned as an error.
func decodeInput(ctx *Context, data []byte) ([]decoder.Message, error) {
	opts := ctx.Config.DecoderOptions()

	if ctx.Config.Stream.Enabled {
		msgs, err := decoder.DecodeAll(data, opts...)
		if err != nil {
			return nil, wrapDecodeError(err)
		}
		for _, msg := range msgs {
			if msg.Err != nil {
				ctx.Log.WithField("offset", msg.Offset).Debugf("skipped message %d: %v", msg.Index, msg.Err)
			}
		}
		return msgs, nil
	}

	item, rest, err := decoder.DecodeFirst(data, opts...)
	if err != nil {
		return nil, wrapDecodeError(err)
	}
	if len(rest) > 0 {
		ctx.Log.Warnf("%d trailing bytes after the first message; use --stream to decode them", len(rest))
	}
	return []decoder.Message{{Offset: 0, Item: item}}, nil
}

func wrapDecodeError(err error) error {
	if offset, ok := errors.DecodeOffset(err); ok {
		return errors.NewDecodingError(fmt.Sprintf("failed to decode message at offset %d", offset), err)
	}
	return errors.NewDecodingError("failed to decode message", err)
}

func summarize(msgs []decoder.Message) (analyzer.Summary, error) {
	analyzerInst := analyzer.NewAnalyzer()
	for i := range msgs {
		if msgs[i].Err != nil {
			analyzerInst.RecordFailure()
			continue
		}
		if _, err := analyzerInst.Analyze(&msgs[i].Item); err != nil {
			return analyzer.Summary{}, errors.NewAnalysisError("failed to summarize decoded data", err)
		}
	}
	return analyzerInst.Summary(), nil
}

// selectItem resolves a path against the first decoded message that has
// an item there
func selectItem(msgs []decoder.Message, expr string) (models.Path, *models.Item, error) {
	path, err := models.ParsePath(expr)
	if err != nil {
		return nil, nil, errors.NewInputError(fmt.Sprintf("invalid --select path: %v", err), err)
	}
	for i := range msgs {
		if msgs[i].Err != nil {
			continue
		}
		if item, ok := models.Lookup(&msgs[i].Item, path); ok {
			return path, item, nil
		}
	}
	return nil, nil, errors.NewInputError(fmt.Sprintf("no item at %s", path), nil)
}

// colorEnabled resolves auto mode against the output destination
func colorEnabled(mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		if CLI.Output != "" {
			return false
		}
		fd := os.Stdout.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
}

// readInput reads MessagePack bytes from file or stdin
func readInput() ([]byte, error) {
	if CLI.Input != "" {
		return decoder.ReadFile(CLI.Input)
	}

	// Check if stdin has data
	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return nil, errors.NewInputError("failed to access stdin", err)
	}

	// Binary input only makes sense when piped
	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		return nil, errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, errors.NewInputError("failed to read from stdin", err)
	}

	if len(data) == 0 {
		return nil, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}

	return data, nil
}

// writeOutput writes the rendered text to file or stdout
func writeOutput(text string) error {
	if CLI.Output != "" {
		// Write to file
		err := os.WriteFile(CLI.Output, []byte(text), 0644)
		if err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", CLI.Output), err)
		}
		fmt.Fprintf(os.Stderr, "Output written to %s\n", CLI.Output)
		return nil
	}

	// Write to stdout
	_, err := fmt.Println(strings.TrimRight(text, "\n"))
	if err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}
