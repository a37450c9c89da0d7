package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/geoknoesis/rdf-tabular/dataset"
	"github.com/geoknoesis/rdf-tabular/engine"
	"github.com/geoknoesis/rdf-tabular/rdf"
	"github.com/geoknoesis/rdf-tabular/schema"
	"github.com/geoknoesis/rdf-tabular/tabular"
)

type convertFlags struct {
	noHeader     bool
	noHasPrefix  bool
	delimiter    string
	casing       string
	whenNoHeader string
	datatypes    []string
	format       string
	outDir       string
}

func convertCmd(g *globalFlags) *cobra.Command {
	f := &convertFlags{}

	cmd := &cobra.Command{
		Use:   "convert FILE|GLOB...",
		Short: "Convert files into RDF and store the runs",
		Long: `Convert reads each file, stores the resulting run and writes the requested
serializations. Arguments may be doublestar globs such as "data/**/*.csv".

Without --out, a single format is written to stdout.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := parseFormats(f.format)
			if err != nil {
				return err
			}
			if f.outDir == "" && len(formats) > 1 {
				return fmt.Errorf("--out is required with more than one format")
			}
			paths, err := expandInputs(args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := setup(ctx, cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			opts, err := f.options(a.defaults)
			if err != nil {
				return err
			}
			if f.outDir != "" {
				if err := os.MkdirAll(f.outDir, 0o755); err != nil {
					return fmt.Errorf("create output directory: %w", err)
				}
			}

			for _, path := range paths {
				if err := convertFile(cmd, a, path, &opts, formats, f.outDir); err != nil {
					return err
				}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&f.noHeader, "no-header", false, "Treat the first row as data")
	flags.BoolVar(&f.noHasPrefix, "no-has-prefix", false, "Do not prefix predicate names with \"has\"")
	flags.StringVar(&f.delimiter, "delimiter", "", "Delimiter (auto, comma, tab)")
	flags.StringVar(&f.casing, "casing", "", "Predicate casing (camelCase, PascalCase, snake_case, SHOUT_CASE)")
	flags.StringVar(&f.whenNoHeader, "when-no-header", "", "Column names without a header row (ordinal, index)")
	flags.StringArrayVar(&f.datatypes, "datatype", nil, "Column datatype as key=datatype (repeatable)")
	flags.StringVarP(&f.format, "format", "f", string(rdf.FormatTurtle), "Output format, comma separated list, or all")
	flags.StringVarP(&f.outDir, "out", "o", "", "Directory to write outputs to")

	return cmd
}

func convertFile(cmd *cobra.Command, a *app, path string, opts *dataset.FileOptions, formats []rdf.Format, outDir string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	filename := filepath.Base(path)
	res, err := a.engine.Run(cmd.Context(), engine.Input{Filename: filename, Data: file, Options: opts})
	logResult(a.logger, filename, res, err)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	for _, format := range formats {
		text, _ := res.Outputs.Get(format)
		if outDir == "" {
			if _, err := fmt.Fprint(cmd.OutOrStdout(), text); err != nil {
				return err
			}
			continue
		}
		target := filepath.Join(outDir, outputName(filename, format))
		if err := os.WriteFile(target, []byte(text), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", target, err)
		}
		a.logger.Debug("Wrote output", "path", target, "format", format)
	}
	return nil
}

// options applies the command line on top of defaults.
func (f *convertFlags) options(defaults dataset.FileOptions) (dataset.FileOptions, error) {
	opts := defaults
	var err error
	if f.noHeader {
		opts.TreatFirstRowAsHeader = false
	}
	if f.noHasPrefix {
		opts.Predicate.PrefixHas = false
	}
	if f.delimiter != "" {
		if opts.Delimiter, err = tabular.ParseDelimiter(f.delimiter); err != nil {
			return opts, err
		}
	}
	if f.casing != "" {
		if opts.Predicate.Casing, err = schema.ParseCasing(f.casing); err != nil {
			return opts, err
		}
	}
	if f.whenNoHeader != "" {
		if opts.Predicate.WhenNoHeader, err = schema.ParseHeaderMode(f.whenNoHeader); err != nil {
			return opts, err
		}
	}
	if len(f.datatypes) > 0 {
		datatypes := make(map[string]string, len(defaults.Datatypes)+len(f.datatypes))
		for k, v := range defaults.Datatypes {
			datatypes[k] = v
		}
		for _, a := range f.datatypes {
			key, dt, err := dataset.ParseDatatypeAssignment(a)
			if err != nil {
				return opts, err
			}
			datatypes[key] = dt
		}
		opts.Datatypes = datatypes
	}
	return opts, nil
}

func parseFormats(value string) ([]rdf.Format, error) {
	if strings.EqualFold(strings.TrimSpace(value), "all") {
		return rdf.Formats(), nil
	}
	var formats []rdf.Format
	seen := make(map[rdf.Format]bool)
	for _, part := range strings.Split(value, ",") {
		format, ok := rdf.ParseFormat(part)
		if !ok {
			return nil, fmt.Errorf("%w: %q", rdf.ErrUnsupportedFormat, strings.TrimSpace(part))
		}
		if !seen[format] {
			seen[format] = true
			formats = append(formats, format)
		}
	}
	return formats, nil
}

// expandInputs resolves glob arguments and keeps plain paths as they are.
func expandInputs(args []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			add(arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %s", arg)
		}
		for _, m := range matches {
			add(m)
		}
	}
	return out, nil
}

func outputName(filename string, format rdf.Format) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	info, ok := rdf.GetFormatInfo(format)
	if !ok {
		return base + "." + string(format)
	}
	return base + info.Extension
}
