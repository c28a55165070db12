// Command tracegen derives the gc.Traceable capability for user-defined
// aggregate types: it emits a file declaring the marker for every requested
// type, after verifying that each one is built entirely from traceable
// parts. Intended for go:generate:
//
//	//go:generate go run github.com/eko-lang/eko-gc/cmd/tracegen -types Node,Tree -out trace_gen.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/eko-lang/eko-gc/internal/tracegen"
)

const usage = "Usage: tracegen -types <name,...> [-pkg <generated package>] [-out <destination>] [-source <patterns,comma-separated>] [-tags <build-tags,comma-separated>] [-config <path>] [-watch]"

func main() {
	var (
		typeList string
		genPkg   string
		out      string
		sources  string
		tags     string
		cfgPath  string
		watch    bool
	)
	flag.StringVar(&typeList, "types", "", "type names to derive the capability for (comma-separated, required unless -config is set)")
	flag.StringVar(&genPkg, "pkg", "", "generated package name (default: target package name)")
	flag.StringVar(&out, "out", "", "destination file path (writes to file when set)")
	flag.StringVar(&sources, "source", "./...", "source package patterns (comma-separated)")
	flag.StringVar(&tags, "tags", "", "build tags (comma-separated)")
	flag.StringVar(&cfgPath, "config", "", "YAML config file; flags override its values when set")
	flag.BoolVar(&watch, "watch", false, "regenerate whenever a source directory changes (requires -out)")
	flag.Parse()

	opts := tracegen.GenOptions{
		Types:          splitList(typeList),
		PackageName:    genPkg,
		Destination:    out,
		SourcePatterns: splitList(sources),
		BuildTags:      splitList(tags),
	}
	if cfgPath != "" {
		cfg, err := tracegen.LoadConfig(cfgPath)
		if err != nil {
			fatal(err.Error())
		}
		opts = merge(cfg.Options(), opts)
	}
	if len(opts.Types) == 0 {
		fmt.Fprintln(os.Stderr, "Error: -types (or a config listing types) is required")
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if watch && opts.Destination == "" {
		fatal("-watch requires -out")
	}

	code, err := tracegen.Generate(opts)
	if err != nil {
		fatal(err.Error())
	}
	if opts.Destination == "" {
		fmt.Print(code)
	} else {
		fmt.Fprintln(os.Stderr, "Capability generated: "+opts.Destination)
	}

	if !watch {
		return
	}
	dirs, err := tracegen.SourceDirs(opts)
	if err != nil {
		fatal(err.Error())
	}
	w, err := tracegen.NewWatcher(opts, dirs)
	if err != nil {
		fatal(err.Error())
	}
	defer w.Close()
	for res := range w.Results() {
		if res.Err != nil {
			fmt.Fprintln(os.Stderr, "Error: "+res.Err.Error())
			continue
		}
		fmt.Fprintln(os.Stderr, "Capability regenerated: "+opts.Destination)
	}
}

// merge overlays non-empty flag values on top of config values.
func merge(base, flags tracegen.GenOptions) tracegen.GenOptions {
	if len(flags.Types) > 0 {
		base.Types = flags.Types
	}
	if flags.PackageName != "" {
		base.PackageName = flags.PackageName
	}
	if flags.Destination != "" {
		base.Destination = flags.Destination
	}
	if len(flags.SourcePatterns) > 0 && !isDefaultSource(flags.SourcePatterns) {
		base.SourcePatterns = flags.SourcePatterns
	}
	if len(base.SourcePatterns) == 0 {
		base.SourcePatterns = flags.SourcePatterns
	}
	if len(flags.BuildTags) > 0 {
		base.BuildTags = flags.BuildTags
	}
	return base
}

func isDefaultSource(patterns []string) bool {
	return len(patterns) == 1 && patterns[0] == "./..."
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, "Error: "+msg)
	os.Exit(1)
}
