package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/peterh/liner"
	"github.com/takoeight0821/shadergraph/codegen"
	"github.com/takoeight0821/shadergraph/config"
	"github.com/takoeight0821/shadergraph/driver"
	"github.com/takoeight0821/shadergraph/fold"
	"github.com/takoeight0821/shadergraph/graph"
)

func main() {
	const (
		inputUsage = "input file path"
	)
	var (
		inputPath  string
		outputPath string
		configPath string
		dumpTokens bool
		dumpAST    bool
		noFold     bool
	)
	flag.StringVar(&inputPath, "input", "", inputUsage)
	flag.StringVar(&inputPath, "i", "", inputUsage+" (shorthand)")
	flag.StringVar(&outputPath, "o", "", "write graphs to this file instead of stdout")
	flag.StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/"+config.RelPath+")")
	flag.BoolVar(&dumpTokens, "tokens", false, "dump raw tokens to stderr")
	flag.BoolVar(&dumpAST, "ast", false, "dump the parsed program to stderr")
	flag.BoolVar(&noFold, "no-fold", false, "disable constant folding")

	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg.DumpTokens = cfg.DumpTokens || dumpTokens
	cfg.DumpAST = cfg.DumpAST || dumpAST
	cfg.Fold = cfg.Fold && !noFold
	if outputPath != "" {
		cfg.Output = outputPath
	}

	if inputPath == "" {
		err = RunPrompt(cfg)
	} else {
		err = RunFile(cfg, inputPath)
	}
	if err != nil {
		printErrors(err)
		os.Exit(1)
	}
}

var history = filepath.Join(xdg.DataHome, "shadergraph", ".shadergraph_history")

func RunPrompt(cfg config.Config) error {
	line := liner.NewLiner()
	defer func() {
		if err := os.MkdirAll(filepath.Dir(history), os.ModePerm); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		if f, err := os.Create(history); err == nil {
			defer f.Close()
			if _, err := line.WriteHistory(f); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		}
		line.Close()
	}()

	if f, err := os.Open(history); err == nil {
		defer f.Close()
		if _, err := line.ReadHistory(f); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}

	for {
		input, err := line.Prompt("> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		line.AppendHistory(input)

		mem := graph.NewMemory()
		if err := Compile(cfg, input, mem); err != nil {
			printErrors(err)
		}
		if err := graph.WriteYAML(os.Stdout, mem.Graphs()); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

// RunFile compiles the file at path and writes the graphs. The graphs are
// written even when code generation stopped early.
func RunFile(cfg config.Config, path string) error {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	mem := graph.NewMemory()
	compileErr := Compile(cfg, string(bytes), mem)
	if len(mem.Graphs()) == 0 {
		return compileErr
	}

	return errors.Join(compileErr, writeGraphs(cfg.Output, mem.Graphs()))
}

// Compile runs the whole pipeline on source and emits the graphs into builder.
func Compile(cfg config.Config, source string, builder codegen.Builder) error {
	r := driver.NewPassRunner()
	if cfg.DumpTokens {
		r.TokenDump = os.Stderr
	}
	if cfg.DumpAST {
		r.ASTDump = os.Stderr
	}
	if cfg.Fold {
		r.AddPass(fold.Folder{})
	}
	r.AddPass(codegen.NewPass(builder, cfg.RootScope))

	_, err := r.RunSource(source)
	return err
}

func writeGraphs(path string, graphs []*graph.Graph) error {
	if path == "" {
		return graph.WriteYAML(os.Stdout, graphs)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return graph.WriteYAML(f, graphs)
}

func printErrors(err error) {
	if errs, ok := err.(interface{ Unwrap() []error }); ok {
		for _, err := range errs.Unwrap() {
			printErrors(err)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
