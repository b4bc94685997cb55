package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/luachunk/chunk"
	"github.com/wippyai/luachunk/errors"
	"github.com/wippyai/luachunk/export"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func usage(fs *flag.FlagSet, w io.Writer) func() {
	return func() {
		fmt.Fprintln(w, "Usage: luachunk [flags] <file.luac>")
		fmt.Fprintln(w, "       luachunk -format json <file.luac>")
		fmt.Fprintln(w, "       luachunk -strip out.luac <file.luac>")
		fmt.Fprintln(w, "       luachunk -i <file.luac>  (interactive mode)")
		fmt.Fprintln(w, "Use - to read the chunk from stdin.")
		fmt.Fprintln(w)
		fs.PrintDefaults()
	}
}

// run executes the command and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("luachunk", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = usage(fs, stderr)

	var (
		configPath    = fs.String("config", "", "Path to config file (default ./"+defaultConfigFile+" if present)")
		format        = fs.String("format", string(export.FormatList), "Output format: list, json, yaml, cbor")
		full          = fs.Bool("full", false, "Include constants, locals and upvalues (debug tables in exports)")
		strs          = fs.String("strings", chunk.StringsLua.String(), "String layout: lua or cstring")
		validate      = fs.Bool("validate", false, "Check the decoded chunk for consistency")
		stripOut      = fs.String("strip", "", "Write a copy without debug info to this path")
		allowTrailing = fs.Bool("allow-trailing", false, "Accept bytes after the main function")
		maxDepth      = fs.Int("max-depth", chunk.DefaultMaxDepth, "Maximum function nesting depth")
		verbose       = fs.Bool("v", false, "Verbose logging to stderr")
		interactive   = fs.Bool("i", false, "Interactive mode with TUI")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 1
	}
	input := fs.Arg(0)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		printError(stderr, err)
		return 1
	}

	// Flags given on the command line win over the config file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			cfg.Output.Format = *format
		case "full":
			cfg.Output.Full = *full
		case "strings":
			cfg.Decode.Strings = *strs
		case "validate":
			cfg.Decode.Validate = *validate
		case "allow-trailing":
			cfg.Decode.AllowTrailing = *allowTrailing
		case "max-depth":
			cfg.Decode.MaxDepth = *maxDepth
		case "v":
			cfg.Log.Verbose = *verbose
		}
	})

	logger := newLogger(cfg.Log.Verbose, stderr)
	defer func() { _ = logger.Sync() }()
	chunk.SetLogger(logger)

	opts, err := cfg.options()
	if err != nil {
		printError(stderr, err)
		return 1
	}
	outFormat, err := cfg.format()
	if err != nil {
		printError(stderr, err)
		return 1
	}

	data, err := readInput(input, stdin)
	if err != nil {
		printError(stderr, err)
		return 1
	}
	logger.Debug("input read", zap.String("path", input), zap.Int("bytes", len(data)))

	c, err := chunk.DecodeWithOptions(data, opts)
	if err != nil {
		printError(stderr, err)
		return 1
	}
	logger.Info("chunk decoded",
		zap.String("source", c.Main.Source),
		zap.Int("functions", c.Main.Count()))

	if *stripOut != "" {
		if err := writeStripped(*stripOut, c, opts); err != nil {
			printError(stderr, err)
			return 1
		}
		logger.Info("stripped chunk written", zap.String("path", *stripOut))
	}

	if *interactive {
		if !isTerminal(stdout) {
			printError(stderr, errors.InvalidInput(errors.PhaseLoad, "-i needs a terminal"))
			return 1
		}
		if err := runInteractive(input, c, cfg.Output.Full); err != nil {
			printError(stderr, err)
			return 1
		}
		return 0
	}

	// -strip alone only writes the stripped copy.
	if *stripOut != "" && !flagSet(fs, "format") && !flagSet(fs, "full") {
		return 0
	}

	if outFormat.Binary() && isTerminal(stdout) {
		printError(stderr, errors.InvalidInput(errors.PhaseExport,
			fmt.Sprintf("refusing to write %s to a terminal", outFormat)))
		return 1
	}
	if err := export.Write(stdout, outFormat, c, cfg.Output.Full); err != nil {
		printError(stderr, err)
		return 1
	}
	return 0
}

func flagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Load("read "+path, err)
	}
	return data, nil
}

func writeStripped(path string, c *chunk.Chunk, opts chunk.Options) error {
	data, err := c.Strip().EncodeWithOptions(opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Load("write "+path, err)
	}
	return nil
}

// printError reports err, leading with its kind and offset when known.
func printError(w io.Writer, err error) {
	if e, ok := errors.As(err); ok && e.Offset >= 0 {
		fmt.Fprintf(w, "Error: %s at offset %d\n  %v\n", e.Kind, e.Offset, err)
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newLogger(verbose bool, w io.Writer) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(w),
		zap.DebugLevel,
	)
	return zap.New(core)
}
