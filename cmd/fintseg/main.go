package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	fints "github.com/reoring/fints"
	"github.com/reoring/fints/catalog"
	"github.com/reoring/fints/internal/logging"
	"github.com/reoring/fints/metrics"
	"github.com/reoring/fints/wire"
)

func main() {
	logger := logging.New(os.Stderr, logging.ProfileRuntime, "fintseg")
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, logger))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer, logger zerolog.Logger) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}
	switch args[0] {
	case "parse":
		return parseCmd(args[1:], stdin, stdout, stderr, logger)
	case "schemas":
		return schemasCmd(args[1:], stdout, stderr, logger)
	default:
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "fintseg\n\nUsage:\n  fintseg parse [-in file] [-catalog file] [-strict|-strip] [-tokens] [-metrics]\n  fintseg schemas [-catalog file]\n\nparse reads a FinTS message (stdin by default) and prints one JSON line per segment.")
}

type parseOptions struct {
	in      string
	catalog string
	strict  bool
	strip   bool
	tokens  bool
	metrics bool
}

type segmentLine struct {
	Segment *fints.Segment     `json:"segment,omitempty"`
	Tokens  []fints.TokenGroup `json:"tokens,omitempty"`
	Error   string             `json:"error,omitempty"`
	Index   int                `json:"index"`
}

func parseCmd(args []string, stdin io.Reader, stdout, stderr io.Writer, logger zerolog.Logger) int {
	fs := newFlagSet("parse", stderr)
	var o parseOptions
	fs.StringVar(&o.in, "in", "", "message file (default stdin)")
	fs.StringVar(&o.catalog, "catalog", "", "segment catalog YAML replacing the built-in one")
	fs.BoolVar(&o.strict, "strict", false, "reject data after the last declared field")
	fs.BoolVar(&o.strip, "strip", false, "drop data after the last declared field")
	fs.BoolVar(&o.tokens, "tokens", false, "include the raw token groups of each segment")
	fs.BoolVar(&o.metrics, "metrics", false, "print parse counters to stderr when done")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if o.strict && o.strip {
		fmt.Fprintln(stderr, "fintseg: -strict and -strip are mutually exclusive")
		return 2
	}

	data, err := readInput(o.in, stdin)
	if err != nil {
		logger.Error().Err(err).Str("in", o.in).Msg("read failed")
		return 1
	}

	preg := prometheus.NewRegistry()
	collector := metrics.NewWithRegistry(preg)
	reg, err := loadRegistry(o.catalog, logger, fints.WithObserver(collector))
	if err != nil {
		logger.Error().Err(err).Msg("catalog load failed")
		return 1
	}

	raw, err := wire.Split(data)
	if err != nil {
		logger.Error().Err(err).Msg("tokenize failed")
		return 1
	}

	opt := fints.ParseOpt{}
	switch {
	case o.strict:
		opt.Trailing = fints.TrailingStrict
	case o.strip:
		opt.Trailing = fints.TrailingStrip
	}

	out := bufio.NewWriter(stdout)
	enc := json.NewEncoder(out)
	failed := 0
	for i, groups := range raw {
		line := segmentLine{Index: i + 1}
		if o.tokens {
			line.Tokens = groups
		}
		seg, err := reg.ParseSegment(groups, opt)
		if err != nil {
			failed++
			line.Error = err.Error()
			logger.Warn().Err(err).Int("index", i+1).Msg("segment rejected")
		} else {
			line.Segment = seg
		}
		if err := enc.Encode(line); err != nil {
			logger.Error().Err(err).Msg("encode failed")
			return 1
		}
	}
	if err := out.Flush(); err != nil {
		return 1
	}

	if o.metrics {
		if err := printCounters(stderr, preg); err != nil {
			logger.Error().Err(err).Msg("gather failed")
		}
	}
	logger.Info().Int("segments", len(raw)).Int("failed", failed).Msg("message parsed")
	if failed > 0 {
		return 1
	}
	return 0
}

func schemasCmd(args []string, stdout, stderr io.Writer, logger zerolog.Logger) int {
	fs := newFlagSet("schemas", stderr)
	var path string
	fs.StringVar(&path, "catalog", "", "segment catalog YAML replacing the built-in one")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	reg, err := loadRegistry(path, logger)
	if err != nil {
		logger.Error().Err(err).Msg("catalog load failed")
		return 1
	}
	for _, s := range reg.Schemas() {
		fmt.Fprintf(stdout, "%-8s %s\n", s.Name(), s.Doc())
	}
	return 0
}

func loadRegistry(path string, logger zerolog.Logger, opts ...fints.RegistryOption) (*fints.Registry, error) {
	copts := []catalog.Option{catalog.WithLogger(logger), catalog.WithRegistryOptions(opts...)}
	if path != "" {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		copts = append(copts, catalog.WithSource(src))
	}
	return catalog.Load(copts...)
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func printCounters(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	var lines []string
	for _, f := range families {
		for _, m := range f.GetMetric() {
			label := ""
			for _, lp := range m.GetLabel() {
				if label != "" {
					label += ","
				}
				label += lp.GetName() + "=" + lp.GetValue()
			}
			lines = append(lines, fmt.Sprintf("%s{%s} %g", f.GetName(), label, m.GetCounter().GetValue()))
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	return nil
}
