package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/holonoms/promptpal/internal/config"
	"github.com/holonoms/promptpal/internal/fileinfo"
	"github.com/holonoms/promptpal/internal/processor"
	"github.com/holonoms/promptpal/internal/tokenizer"
)

// newTokensCmd creates the tokens command
func newTokensCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens [directory]",
		Short: "Count tokens per file without generating a document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Directory = args[0]
			}
			return runTokens(cmd, opts)
		},
	}

	return cmd
}

func runTokens(cmd *cobra.Command, opts *Options) error {
	opts.SetDefaults()

	cfg, err := config.New(opts.Directory)
	if err != nil {
		return fmt.Errorf("unable to load config: %w", err)
	}

	mode, err := opts.contentMode(cfg)
	if err != nil {
		return err
	}
	// Counting needs content; without an explicit preview count whole files.
	if mode.Kind == fileinfo.ContentNone {
		mode = fileinfo.FullContent()
	}

	model := opts.model(cfg)
	counter, err := tokenizer.NewCounter(model)
	if err != nil {
		return err
	}

	p, err := processor.New(opts.Directory, processor.Options{
		OutputFile:     opts.OutputFile,
		IgnoreFile:     opts.IgnoreFile,
		Content:        mode,
		FollowSymlinks: opts.followSymlinks(cfg),
		Logger:         opts.Logger(),
	})
	if err != nil {
		return fmt.Errorf("unable to create processor: %w", err)
	}

	records, err := p.Collect(cmd.Context())
	if err != nil {
		return fmt.Errorf("unable to process files: %w", err)
	}

	summary, err := tokenizer.CountRecords(counter, records)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, file := range summary.Files {
		fmt.Fprintf(out, "File: %s, Token count: %d\n", file.Path, file.Tokens)
	}
	fmt.Fprintf(out, "Total: %d tokens (%s, context size %d)\n", summary.Total, counter.Name(), tokenizer.ContextSize(model))

	return nil
}
