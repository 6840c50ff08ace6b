package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/a3tai/mcp-pdf-form/internal/assets"
	"github.com/a3tai/mcp-pdf-form/internal/config"
	"github.com/a3tai/mcp-pdf-form/internal/form"
	"github.com/a3tai/mcp-pdf-form/internal/pdf"
	"github.com/a3tai/mcp-pdf-form/internal/yamlutil"
)

type options struct {
	formPath   string
	valuesPath string
	outName    string
	outputDir  string
	format     string
	demo       bool
	verbose    bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := pflag.NewFlagSet(args[0], pflag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.formPath, "form", "", "PDF form to fill (default: bundled form)")
	fs.StringVar(&opts.valuesPath, "values", "", "YAML or JSON file with the records to write")
	fs.StringVar(&opts.outName, "out", "", "Save the filled form under this file name")
	fs.StringVar(&opts.outputDir, "output", ".", "Directory receiving the saved form")
	fs.StringVar(&opts.format, "format", "yaml", "Output format: yaml, json")
	fs.BoolVar(&opts.demo, "demo", false, "Write the demo record set")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [options]\n\n", args[0])
		fmt.Fprintf(stderr, "Reads the fields of a PDF form, optionally fills them and saves the result.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  %s                                   # print the fields of the bundled form\n", args[0])
		fmt.Fprintf(stderr, "  %s --values=values.yaml --out=a.pdf  # fill and save\n", args[0])
	}

	if err := fs.Parse(args[1:]); err != nil {
		return nil, err
	}
	if opts.format != "yaml" && opts.format != "json" {
		return nil, fmt.Errorf("invalid format: %s (must be yaml or json)", opts.format)
	}
	if opts.demo && opts.valuesPath != "" {
		return nil, errors.New("--demo and --values are mutually exclusive")
	}
	return opts, nil
}

// loadValues reads the records of a values file. Unknown keys are rejected.
func loadValues(path string) ([]form.FormValue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read values file: %w", err)
	}

	var values []form.FormValue
	if err := yamlutil.UnmarshalStrict(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse values file %s: %w", path, err)
	}
	return values, nil
}

func printValues(w io.Writer, format string, values []form.FormValue) error {
	var (
		out []byte
		err error
	)
	if format == "json" {
		out, err = json.MarshalIndent(values, "", "  ")
		out = append(out, '\n')
	} else {
		out, err = yamlutil.Marshal(values)
	}
	if err != nil {
		return fmt.Errorf("failed to encode form data: %w", err)
	}
	_, err = w.Write(out)
	return err
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	log.SetOutput(io.Discard)
	if opts.verbose {
		log.SetOutput(stderr)
		_, _ = maxprocs.Set(maxprocs.Logger(log.Printf))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	serviceOpts := pdf.ServiceOptions{
		MaxFileSize: config.DefaultMaxFileSize,
		Scale:       config.DefaultScale,
		RevokeDelay: -1,
	}
	if opts.outName != "" {
		serviceOpts.OutputDirectory = opts.outputDir
	}
	service, err := pdf.NewService(serviceOpts)
	if err != nil {
		return err
	}

	if opts.formPath != "" {
		err = service.LoadFile(ctx, opts.formPath)
	} else {
		err = service.Load(ctx, assets.Form(), assets.FormName)
	}
	if err != nil {
		return fmt.Errorf("failed to load form: %w", err)
	}

	var values []form.FormValue
	switch {
	case opts.demo:
		values = form.DemoValues()
	case opts.valuesPath != "":
		if values, err = loadValues(opts.valuesPath); err != nil {
			return err
		}
	}

	current, err := service.ReadForm(ctx)
	if err != nil {
		return err
	}
	records := current.Values

	if values != nil {
		written, err := service.WriteForm(ctx, pdf.WriteFormRequest{Values: values})
		if err != nil {
			return err
		}
		for _, id := range written.Ignored {
			fmt.Fprintf(stderr, "warning: no field with id %s\n", id)
		}
		records = written.Values
	}

	if err := printValues(stdout, opts.format, records); err != nil {
		return err
	}

	if opts.outName != "" {
		saved, err := service.SaveForm(ctx, pdf.SaveFormRequest{FileName: opts.outName})
		if err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Saved %s (%d bytes)\n", saved.Download.Location, saved.Download.Size)
	}

	return nil
}

func main() {
	if err := run(context.Background(), os.Args, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
