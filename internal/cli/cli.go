// Package cli provides the command-line interface for promptpal.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/holonoms/promptpal/internal/util"
)

var (
	// Default version for development/non-release builds
	// GoReleaser overrides this for release builds with the git tag.
	// See .goreleaser.yml
	version = "dev"
)

// flagValues holds raw flag values before they are copied into Options.
// Only flags the user actually set are copied, so unset flags fall back to
// the configuration.
type flagValues struct {
	preview        int64
	full           bool
	followSymlinks bool
	tokens         bool
}

// NewRootCmd creates the root command with all subcommands
func NewRootCmd(opts *Options) *cobra.Command {
	flags := &flagValues{}

	rootCmd := &cobra.Command{
		Use:          "promptpal [directory]",
		Short:        "Render a directory as a single document for language models",
		Version:      version,
		SilenceUsage: true,
		// NB: ArbitraryArgs is required to avoid interpreting the first argument
		// as a subcommand. This is necessary for the use case `promptpal [folder]`,
		// where folder would otherwise be interpreted as a subcommand and fail.
		Args: cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			applyChangedFlags(cmd, opts, flags)
			logger, err := util.NewLogger(opts.Debug)
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
		// When no subcommand is supplied, execute the generate command
		RunE: newGenerateCmd(opts).RunE,
	}

	// Add global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&opts.OutputFile, "output", "o", "", "Output file (default: stdout)")
	pf.StringVar(&opts.IgnoreFile, "ignore", "", "Ignore file (default: .promptpalignore, then .gitignore)")
	pf.Int64VarP(&flags.preview, "preview", "p", 0, "Capture at most this many bytes of each file (0 disables content)")
	pf.BoolVarP(&flags.full, "full", "f", false, "Capture the full content of each file")
	pf.StringVarP(&opts.Instructions, "instructions", "i", "", "Instructions to embed in the document")
	pf.StringVar(&opts.InstructionsFile, "instructions-file", "", "Read instructions from a file")
	pf.BoolVar(&flags.followSymlinks, "follow-symlinks", true, "Follow symbolic links")
	pf.BoolVarP(&flags.tokens, "tokens", "t", false, "Count tokens of the captured content")
	pf.StringVarP(&opts.Model, "model", "m", "", "Model used for token counting (default: gpt-3.5-turbo)")
	pf.CountVarP(&opts.Debug, "debug", "d", "Turn debugging information on")
	rootCmd.MarkFlagsMutuallyExclusive("instructions", "instructions-file")

	// Add commands
	rootCmd.AddCommand(
		newGenerateCmd(opts),
		newTokensCmd(opts),
		newConfigCmd(),
	)

	return rootCmd
}

func applyChangedFlags(cmd *cobra.Command, opts *Options, flags *flagValues) {
	changed := cmd.Flags().Changed
	if changed("preview") {
		opts.PreviewLength = &flags.preview
	}
	if changed("full") {
		opts.FullContent = &flags.full
	}
	if changed("follow-symlinks") {
		opts.FollowSymlinks = &flags.followSymlinks
	}
	if changed("tokens") {
		opts.Tokens = &flags.tokens
	}
}
