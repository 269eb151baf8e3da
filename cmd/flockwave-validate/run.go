package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"

	fw "github.com/collmot/flockwave-spec"
	"github.com/collmot/flockwave-spec/pkg/logger"
	"github.com/collmot/flockwave-spec/pkg/validator"
	"github.com/collmot/flockwave-spec/stream"
	"github.com/collmot/flockwave-spec/worker"
)

const stdinName = "-"

func validateMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		if sub := cfg.Main.FindSub(cc, args[0]); sub != nil {
			err = sub.Run(cc, args[1:])
			if errors.Is(err, cli.ErrUsage) {
				sub.Usage(cc, err)
				os.Exit(sub.Exit(cc, err))
			}
			return err
		}
	}

	s, err := cfg.settings()
	if err != nil {
		return err
	}
	configureLogging(s)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	valid, err := run(ctx, s, args, cc.In, cc.Out)
	if err != nil {
		return err
	}
	if !valid {
		return cli.ExitCodeErr(1)
	}
	return nil
}

// run validates the sources named by args, or the examples directory if
// there are none, and prints the verdict to out. It returns false if a
// source failed.
func run(ctx context.Context, s Settings, args []string, in io.Reader, out io.Writer) (bool, error) {
	opts, err := s.Options()
	if err != nil {
		return false, err
	}
	v, err := validator.New(opts...)
	if err != nil {
		return false, err
	}

	examples := len(args) == 0
	var jobs []worker.Job
	if examples {
		jobs, err = exampleJobs(s.Examples)
	} else {
		jobs, err = fileJobs(args, in)
	}
	if err != nil {
		return false, err
	}
	logger.Debug("Validating %d source(s) against %s%s", len(jobs), s.Schema, s.Pointer)

	if s.Stream {
		return runStream(ctx, v, s, jobs, out)
	}

	result, err := v.Batch(ctx, s.Schema, s.Pointer, jobs)
	if err != nil {
		return false, err
	}
	if result.Err != nil {
		return false, result.Err
	}

	p := newPrinter(out, useColor(s.Color, out))
	switch {
	case s.Output == OutputJSON:
		err = p.json(result)
	case examples:
		err = p.examples(result)
	default:
		err = p.files(result)
	}
	if err != nil {
		return false, err
	}
	return !result.HasErrors(), nil
}

// runStream validates every message of every source and prints each
// invalid message followed by a summary line per source.
func runStream(ctx context.Context, v *validator.Validator, s Settings, jobs []worker.Job, out io.Writer) (bool, error) {
	p := newPrinter(out, useColor(s.Color, out))
	valid := true
	for _, job := range jobs {
		results, err := v.Stream(ctx, s.Schema, s.Pointer, bytes.NewReader(job.Data))
		if err != nil {
			return false, err
		}
		agg := stream.Aggregate(results)
		if err := p.stream(job.Name, agg); err != nil {
			return false, err
		}
		if agg.HasErrors() {
			valid = false
		}
	}
	return valid, ctx.Err()
}

// exampleJobs collects the *.json files of dir, sorted by name.
func exampleJobs(dir string) ([]worker.Job, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("invalid examples directory %q: %w", dir, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no example messages found in %s", dir)
	}
	sort.Strings(matches)
	return readJobs(matches, nil)
}

// fileJobs expands glob patterns in args and reads the named files. The
// name "-" stands for r.
func fileJobs(args []string, r io.Reader) ([]worker.Job, error) {
	var names []string
	for _, arg := range args {
		if arg == stdinName {
			names = append(names, arg)
			continue
		}
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			// Let the read fail with a proper error.
			matches = []string{arg}
		}
		names = append(names, matches...)
	}
	return readJobs(names, r)
}

func readJobs(names []string, stdin io.Reader) ([]worker.Job, error) {
	jobs := make([]worker.Job, 0, len(names))
	for i, name := range names {
		var (
			data []byte
			err  error
		)
		if name == stdinName {
			if stdin == nil {
				stdin = os.Stdin
			}
			data, err = io.ReadAll(stdin)
			name = "<stdin>"
		} else {
			data, err = os.ReadFile(name)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		jobs = append(jobs, worker.Job{Index: i, Name: name, Data: data})
	}
	return jobs, nil
}

// printer writes batch results in human or machine readable form.
type printer struct {
	w     io.Writer
	valid *color.Color
	bad   *color.Color
}

func newPrinter(w io.Writer, colored bool) *printer {
	p := &printer{
		w:     w,
		valid: color.New(color.FgGreen),
		bad:   color.New(color.FgRed, color.Bold),
	}
	if colored {
		p.valid.EnableColor()
		p.bad.EnableColor()
	} else {
		p.valid.DisableColor()
		p.bad.DisableColor()
	}
	return p
}

// files prints one line per checked source and the error of the first
// failure.
func (p *printer) files(result *worker.BatchResult) error {
	for _, r := range result.Reports {
		c := p.valid
		if !r.Valid() {
			c = p.bad
		}
		if _, err := c.Fprintln(p.w, r.Summary()); err != nil {
			return err
		}
	}
	return p.failure(result)
}

// examples prints a single verdict for the whole directory.
func (p *printer) examples(result *worker.BatchResult) error {
	if !result.HasErrors() {
		_, err := p.valid.Fprintln(p.w, "All tested messages were valid.")
		return err
	}
	if _, err := p.bad.Fprintln(p.w, result.FirstFailure().Summary()); err != nil {
		return err
	}
	return p.failure(result)
}

func (p *printer) failure(result *worker.BatchResult) error {
	failed := result.FirstFailure()
	if failed == nil {
		return nil
	}
	_, err := fmt.Fprintf(p.w, "\n%v\n", failed.Err)
	return err
}

// stream prints the outcome of streaming validation of a source.
func (p *printer) stream(source string, agg *stream.StreamResult) error {
	indices := make([]int, 0, len(agg.Failures))
	for i := range agg.Failures {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	for _, i := range indices {
		if _, err := p.bad.Fprintf(p.w, "%s: %v\n", source, agg.Failures[i]); err != nil {
			return err
		}
	}
	for _, err := range agg.ProcessingErrors {
		if _, err := p.bad.Fprintf(p.w, "%s: %v\n", source, err); err != nil {
			return err
		}
	}
	c := p.valid
	if agg.HasErrors() {
		c = p.bad
	}
	_, err := c.Fprintf(p.w, "%s: %s\n", source, agg.Summary())
	return err
}

type reportOutput struct {
	Source   string `json:"source"`
	Valid    bool   `json:"valid"`
	Messages int    `json:"messages"`
	Error    string `json:"error,omitempty"`
	Summary  string `json:"summary"`
}

type batchOutput struct {
	Valid     bool           `json:"valid"`
	Sources   int            `json:"sources"`
	Checked   int            `json:"checked"`
	Messages  int            `json:"messages"`
	Reports   []reportOutput `json:"reports"`
	ElapsedMS int64          `json:"elapsedMs"`
}

// json prints the batch result as an indented JSON document.
func (p *printer) json(result *worker.BatchResult) error {
	out := batchOutput{
		Valid:     !result.HasErrors(),
		Sources:   result.TotalJobs,
		Checked:   result.CompletedJobs,
		Messages:  result.MessageCount(),
		Reports:   make([]reportOutput, 0, len(result.Reports)),
		ElapsedMS: result.TotalDuration.Milliseconds(),
	}
	for _, r := range result.Reports {
		out.Reports = append(out.Reports, toReportOutput(r))
	}
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func toReportOutput(r *fw.Report) reportOutput {
	ro := reportOutput{
		Source:   r.Source,
		Valid:    r.Valid(),
		Messages: r.Count,
		Summary:  r.Summary(),
	}
	if r.Err != nil {
		ro.Error = r.Err.Error()
	}
	return ro
}
