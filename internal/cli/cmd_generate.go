package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/holonoms/promptpal/internal/config"
	"github.com/holonoms/promptpal/internal/processor"
	"github.com/holonoms/promptpal/internal/tokenizer"
	"github.com/holonoms/promptpal/internal/util"
)

// newGenerateCmd creates the generate command
func newGenerateCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [directory]",
		Short: "Generate the document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Directory = args[0]
			}
			return runGenerate(cmd, opts)
		},
	}

	return cmd
}

func runGenerate(cmd *cobra.Command, opts *Options) error {
	opts.SetDefaults()
	logger := opts.Logger()

	p, err := newProcessor(opts)
	if err != nil {
		return err
	}

	var result processor.Result
	if opts.OutputFile == "" {
		result, err = p.Process(cmd.Context(), cmd.OutOrStdout())
	} else {
		logger.Info(fmt.Sprintf("Generating '%s'...", opts.OutputFile))
		result, err = p.ProcessToFile(cmd.Context(), opts.OutputFile)
	}
	if err != nil {
		return fmt.Errorf("unable to process files: %w", err)
	}

	if opts.OutputFile != "" {
		logger.Info(fmt.Sprintf("Generated '%s' (%s)", opts.OutputFile, util.FormatSize(result.Bytes)),
			zap.Int("files", result.Files))
	}
	if result.Tokens != nil {
		logger.Info("Token count", zap.Int("tokens", result.Tokens.Total))
	}

	return nil
}

// newProcessor builds a processor from the options merged with the project
// configuration found in the target directory.
func newProcessor(opts *Options) (*processor.Processor, error) {
	cfg, err := config.New(opts.Directory)
	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}

	mode, err := opts.contentMode(cfg)
	if err != nil {
		return nil, err
	}

	var counter tokenizer.Counter
	if opts.tokensEnabled(cfg) {
		counter, err = tokenizer.NewCounter(opts.model(cfg))
		if err != nil {
			return nil, err
		}
	}

	p, err := processor.New(opts.Directory, processor.Options{
		OutputFile:       opts.OutputFile,
		IgnoreFile:       opts.IgnoreFile,
		Content:          mode,
		Instructions:     opts.Instructions,
		InstructionsFile: opts.InstructionsFile,
		FollowSymlinks:   opts.followSymlinks(cfg),
		Counter:          counter,
		Logger:           opts.Logger(),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create processor: %w", err)
	}
	return p, nil
}
