// Package processor assembles a project directory into a single document. It
// walks the directory while respecting ignore patterns, captures file content,
// folds the files into a tree and serializes that tree together with the
// caller's instructions.
package processor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/holonoms/promptpal/internal/document"
	"github.com/holonoms/promptpal/internal/fileinfo"
	"github.com/holonoms/promptpal/internal/filetree"
	"github.com/holonoms/promptpal/internal/tokenizer"
	"github.com/holonoms/promptpal/internal/walker"
)

// Options configures a Processor.
type Options struct {
	// OutputFile is excluded from the scan. It is not written by the processor.
	OutputFile string
	// IgnoreFile overrides ignore file discovery.
	IgnoreFile string
	// Content selects how much of each file is captured.
	Content fileinfo.Mode
	// Instructions is embedded verbatim. InstructionsFile, when set, is read
	// instead.
	Instructions     string
	InstructionsFile string
	FollowSymlinks   bool
	// Counter enables token counting when non-nil.
	Counter tokenizer.Counter
	Logger  *zap.Logger
}

// Result summarizes a processing run.
type Result struct {
	Files  int
	Bytes  int64
	Tokens *tokenizer.Summary
}

// Processor handles the concatenation of project files into a single document
type Processor struct {
	rootDir string
	opts    Options
	logger  *zap.Logger
}

// New creates a new Processor instance
func New(rootDir string, opts Options) (*Processor, error) {
	if rootDir == "" {
		rootDir = "."
	}
	if opts.Instructions != "" && opts.InstructionsFile != "" {
		return nil, fmt.Errorf("instructions and instructions file are mutually exclusive")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Processor{
		rootDir: filepath.Clean(rootDir),
		opts:    opts,
		logger:  logger,
	}, nil
}

// Collect scans the root directory and reads every included file.
func (p *Processor) Collect(ctx context.Context) ([]fileinfo.Record, error) {
	matcher, ignoreFile, err := walker.NewMatcher(p.rootDir, walker.IgnoreRules{
		IgnoreFile: p.opts.IgnoreFile,
		OutputFile: p.opts.OutputFile,
	})
	if err != nil {
		return nil, err
	}
	if ignoreFile != "" {
		p.logger.Debug("Using ignore file", zap.String("path", ignoreFile))
	}

	paths, err := walker.Scan(p.rootDir, walker.Options{
		FollowSymlinks: p.opts.FollowSymlinks,
		Matcher:        matcher,
		Logger:         p.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect files: %w", err)
	}
	p.logger.Debug("Scanned directory", zap.String("root", p.rootDir), zap.Int("files", len(paths)))

	return fileinfo.Gather(ctx, p.rootDir, paths, p.opts.Content, p.logger)
}

// Process writes the document for the root directory to w.
func (p *Processor) Process(ctx context.Context, w io.Writer) (Result, error) {
	run, err := p.prepare(ctx)
	if err != nil {
		return Result{}, err
	}
	return run.write(w)
}

// ProcessToFile writes the document to path, creating or truncating it. The
// file is only touched once the files have been collected, so a failed scan
// leaves an existing document in place.
func (p *Processor) ProcessToFile(ctx context.Context, path string) (Result, error) {
	run, err := p.prepare(ctx)
	if err != nil {
		return Result{}, err
	}

	out, err := os.Create(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create output file: %w", err)
	}

	result, err := run.write(out)
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close output file: %w", closeErr)
	}
	return result, err
}

// pending is a collected run waiting to be serialized.
type pending struct {
	instructions string
	records      []fileinfo.Record
	result       Result
}

func (p *Processor) prepare(ctx context.Context) (*pending, error) {
	instructions, err := p.instructions()
	if err != nil {
		return nil, err
	}

	records, err := p.Collect(ctx)
	if err != nil {
		return nil, err
	}

	run := &pending{
		instructions: instructions,
		records:      records,
		result:       Result{Files: len(records)},
	}
	if p.opts.Counter != nil {
		summary, err := tokenizer.CountRecords(p.opts.Counter, records)
		if err != nil {
			return nil, err
		}
		for _, file := range summary.Files {
			p.logger.Debug("Counted tokens", zap.String("path", file.Path), zap.Int("tokens", file.Tokens))
		}
		run.result.Tokens = &summary
	}
	return run, nil
}

func (r *pending) write(w io.Writer) (Result, error) {
	counter := &countingWriter{w: w}
	if err := document.Write(counter, filetree.Build(r.records), r.instructions); err != nil {
		return Result{}, fmt.Errorf("failed to write document: %w", err)
	}

	result := r.result
	result.Bytes = counter.n
	return result, nil
}

func (p *Processor) instructions() (string, error) {
	if p.opts.InstructionsFile == "" {
		return p.opts.Instructions, nil
	}
	data, err := os.ReadFile(p.opts.InstructionsFile)
	if err != nil {
		return "", fmt.Errorf("failed to read instructions file: %w", err)
	}
	return string(data), nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}
