// dwginspect decodes a DWG file and prints a summary or a JSON dump of its
// entities, driven by command-line flags layered over an optional YAML
// config file.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/zeebo/blake3"

	"seehuhn.de/go/dwg"
	"seehuhn.de/go/dwg/cache"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("dwginspect", pflag.ContinueOnError)
	format := flags.String("format", "", "output format: text or json")
	configPath := flags.String("config", "", "path to a YAML config file")
	useCache := flags.Bool("cache", false, "read/write the decode cache")
	shim := flags.String("shim", "", "path to the AC1027 downgrade converter")
	showVersion := flags.Bool("version", false, "print the version and exit")
	if err := flags.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if *showVersion {
		fmt.Println("dwginspect", version)
		return 0
	}

	if flags.NArg() < 2 || flags.Arg(0) != "inspect" {
		fmt.Fprintln(os.Stderr, "usage: dwginspect inspect [flags] <file.dwg>")
		return 2
	}
	path := flags.Arg(1)

	cfg := &dwg.InspectConfig{Format: "text"}
	if *configPath != "" {
		loaded, err := dwg.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "dwginspect:", err)
			return 1
		}
		cfg = loaded
	}
	if *format != "" {
		cfg.Format = *format
	}
	if *shim != "" {
		cfg.ConverterPath = *shim
	}

	doc, err := inspectDecode(path, cfg, *useCache)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dwginspect:", err)
		return 1
	}

	switch cfg.Format {
	case "json":
		printJSON(doc)
	default:
		printSummary(doc)
	}
	return 0
}

func inspectDecode(path string, cfg *dwg.InspectConfig, useCache bool) (*dwg.Document, error) {
	if useCache {
		buf, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		digest := blake3.Sum256(buf)
		if cd, ok := cache.ReadCached(digest); ok {
			return dwg.FromCache(cd), nil
		}
		doc, err := dwg.Decode(buf)
		if err != nil {
			return nil, err
		}
		_ = cache.Store(doc)
		return doc, nil
	}

	if cfg.ConverterPath != "" {
		return dwg.ReadWithShim(context.Background(), path, cfg.ConverterPath)
	}
	return dwg.Read(path)
}

func printSummary(doc *dwg.Document) {
	fmt.Printf("version: %s\n", doc.Version)
	if handles := doc.Handles(); len(handles) > 0 {
		lo, hi := handles[0], handles[0]
		for _, h := range handles[1:] {
			if h < lo {
				lo = h
			}
			if h > hi {
				hi = h
			}
		}
		fmt.Printf("handles: %X..%X (%d objects)\n", lo, hi, len(handles))
	}
	for _, name := range doc.LayoutNames() {
		layout := doc.Layout(name)
		fmt.Printf("layout %q: %d entities\n", name, len(layout.Entities()))
		for et, n := range layout.Count() {
			fmt.Printf("  %-12s %d\n", et, n)
		}
	}
}

func printJSON(doc *dwg.Document) {
	type row struct {
		Layout string         `json:"layout"`
		Type   string         `json:"type"`
		Handle string         `json:"handle"`
		Fields map[string]any `json:"fields"`
	}
	var rows []row
	for _, name := range doc.LayoutNames() {
		for _, e := range doc.Layout(name).Entities() {
			rows = append(rows, row{
				Layout: name,
				Type:   e.DXFType(),
				Handle: e.Handle().String(),
				Fields: e.DXF(),
			})
		}
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(rows)
}
