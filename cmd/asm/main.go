// Command asm is the mipsasm command-line front end: it drives one
// assembly run (C7) per source file given and, unless -a is given,
// writes the relocatable object file described in spec.md §6.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tstword/mipsasm/config"
	"github.com/tstword/mipsasm/internal/assembler"
	"github.com/tstword/mipsasm/internal/encoder"
	"github.com/tstword/mipsasm/objfile"
)

func main() {
	var (
		assembleOnly = flag.Bool("a", false, "assemble only, do not write object file")
		outPath      = flag.String("o", "a.obj", "output object path")
		textDump     = flag.String("t", "", "dump text segment raw bytes to this path")
		dataDump     = flag.String("d", "", "dump data segment raw bytes to this path")
		configPath   = flag.String("config", "", "path to a config.toml (default: platform config path)")
		showHelp     = flag.Bool("h", false, "show help")
	)
	flag.Parse()

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: asm [flags] <source.s> [source.s ...]")
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "asm: %s\n", err)
		os.Exit(2)
	}

	// Each input is assembled independently: there is no cross-file
	// linking (spec.md §1 Non-goals). With a single input the -o/-t/-d
	// paths are used verbatim as before; with more than one, per-file
	// paths are derived from each source's basename so later inputs
	// don't clobber earlier ones' output.
	srcPaths := flag.Args()
	multi := len(srcPaths) > 1

	failed := false
	for _, srcPath := range srcPaths {
		out, textOut, dataOut := *outPath, *textDump, *dataDump
		if multi {
			out, textOut, dataOut = derivedPaths(srcPath, *textDump != "", *dataDump != "")
		}
		if !assembleOne(cfg, srcPath, out, textOut, dataOut, *assembleOnly) {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

// derivedPaths builds per-file -o/-t/-d paths from srcPath's basename, used
// whenever more than one source file is given on the command line.
func derivedPaths(srcPath string, wantText, wantData bool) (out, text, data string) {
	base := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	out = base + ".obj"
	if wantText {
		text = base + ".text.bin"
	}
	if wantData {
		data = base + ".data.bin"
	}
	return out, text, data
}

// assembleOne runs one assembly (C7) and, unless assembleOnly, writes the
// object file. It reports its own diagnostics and returns false if the run
// failed for any reason (assembly diagnostics or I/O).
func assembleOne(cfg *config.Config, srcPath, outPath, textDump, dataDump string, assembleOnly bool) bool {
	asm := assembler.NewFromConfig(cfg)
	result := asm.AssembleFile(srcPath)

	for _, d := range result.Diagnostics.Errors {
		fmt.Fprintln(os.Stderr, d.Error())
	}
	if result.Failed() {
		return false
	}

	if textDump != "" {
		if err := dumpSegment(result.Encoder, encoder.Text, textDump); err != nil {
			fmt.Fprintf(os.Stderr, "asm: %s\n", err)
			os.Exit(2)
		}
	}
	if dataDump != "" {
		if err := dumpSegment(result.Encoder, encoder.Data, dataDump); err != nil {
			fmt.Fprintf(os.Stderr, "asm: %s\n", err)
			os.Exit(2)
		}
	}

	if assembleOnly {
		return true
	}

	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "asm: cannot create %s: %s\n", outPath, err)
		os.Exit(2)
	}
	defer out.Close()

	if err := objfile.Write(out, result.Encoder); err != nil {
		fmt.Fprintf(os.Stderr, "asm: %s\n", err)
		os.Exit(2)
	}
	return true
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

func dumpSegment(enc *encoder.Encoder, id int, path string) error {
	bytes, _, size := enc.Segment(id)
	return os.WriteFile(path, bytes[:size], 0644)
}

func printHelp() {
	fmt.Println("asm - a two-pass assembler for the MIPS-style instruction set")
	fmt.Println()
	fmt.Println("Usage: asm [flags] <source.s> [source.s ...]")
	fmt.Println()
	flag.PrintDefaults()
}
