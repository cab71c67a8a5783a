package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/holonoms/promptpal/internal/config"
	"github.com/holonoms/promptpal/internal/tokenizer"
)

// ConfigOption represents a configuration option
type ConfigOption struct {
	Key         string
	Description string
	Default     string
	ValidValues []string // For enumerated values like true/false
	Validator   func(string) error
}

// Registry of all available configuration options
var configOptions = []ConfigOption{
	{
		Key:         "content.preview_length",
		Description: "Number of bytes captured per file (0 disables content)",
		Default:     "0",
		Validator:   validateNonNegativeInt,
	},
	{
		Key:         "content.full",
		Description: "Capture the full content of each file",
		Default:     "false",
		ValidValues: []string{"true", "false"},
		Validator:   validateBoolOption,
	},
	{
		Key:         "processor.follow_symlinks",
		Description: "Follow symbolic links when traversing directories",
		Default:     "true",
		ValidValues: []string{"true", "false"},
		Validator:   validateBoolOption,
	},
	{
		Key:         "tokens.enabled",
		Description: "Count tokens when generating a document",
		Default:     "false",
		ValidValues: []string{"true", "false"},
		Validator:   validateBoolOption,
	},
	{
		Key:         "tokens.model",
		Description: "Model used for token counting (stored globally)",
		Default:     tokenizer.DefaultModel,
	},
}

// MARK: Sub-commands

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage project configuration",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all configuration values",
			Args:  cobra.NoArgs,
			RunE: withConfig(func(out io.Writer, cfg *config.Config, _ []string) error {
				fmt.Fprintf(out, "Available configuration options:\n\n")
				for _, option := range configOptions {
					fmt.Fprintf(out, "  %s\n    Description: %s\n    Default: %s\n    Current: %s\n\n",
						option.Key, option.Description, option.Default, currentValue(cfg, option))
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:               "get <key>",
			Short:             "Get a configuration value",
			Args:              cobra.ExactArgs(1),
			ValidArgsFunction: completeConfig,
			RunE: withConfig(func(out io.Writer, cfg *config.Config, args []string) error {
				option, err := lookupConfigOption(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s = %s\n", option.Key, currentValue(cfg, *option))
				return nil
			}),
		},
		&cobra.Command{
			Use:               "set <key> <value>",
			Short:             "Set a configuration value",
			Args:              cobra.ExactArgs(2),
			ValidArgsFunction: completeConfig,
			RunE: withConfig(func(out io.Writer, cfg *config.Config, args []string) error {
				key, value := args[0], args[1]
				option, err := lookupConfigOption(key)
				if err != nil {
					return err
				}
				if option.Validator != nil {
					if err := option.Validator(value); err != nil {
						return fmt.Errorf("invalid value for %s: %w", key, err)
					}
				}
				if err := cfg.Set(key, value); err != nil {
					return fmt.Errorf("unable to set config: %w", err)
				}
				fmt.Fprintf(out, "Set %s = %s\n", key, value)
				return nil
			}),
		},
		&cobra.Command{
			Use:               "unset <key>",
			Short:             "Unset a configuration value",
			Args:              cobra.ExactArgs(1),
			ValidArgsFunction: completeConfig,
			RunE: withConfig(func(out io.Writer, cfg *config.Config, args []string) error {
				if err := cfg.Delete(args[0]); err != nil {
					return fmt.Errorf("unable to unset config: %w", err)
				}
				fmt.Fprintf(out, "Unset %s\n", args[0])
				return nil
			}),
		},
	)

	return cmd
}

// MARK: Helpers

// withConfig loads the project configuration of the working directory before
// running fn.
func withConfig(fn func(io.Writer, *config.Config, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New(".")
		if err != nil {
			return fmt.Errorf("unable to load config: %w", err)
		}
		return fn(cmd.OutOrStdout(), cfg, args)
	}
}

func currentValue(cfg *config.Config, option ConfigOption) string {
	if cfg.Has(option.Key) {
		return cfg.Get(option.Key)
	}
	return option.Default + " (default)"
}

func lookupConfigOption(key string) (*ConfigOption, error) {
	for i := range configOptions {
		if configOptions[i].Key == key {
			return &configOptions[i], nil
		}
	}
	return nil, fmt.Errorf("unknown configuration option: %s\n\nRun 'promptpal config list' to see available options", key)
}

// completeConfig completes option keys, then for set the enumerated values of
// the chosen option.
func completeConfig(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	switch {
	case len(args) == 0:
		keys := make([]string, 0, len(configOptions))
		for _, option := range configOptions {
			keys = append(keys, option.Key)
		}
		return keys, cobra.ShellCompDirectiveNoFileComp
	case len(args) == 1 && cmd.Name() == "set":
		if option, err := lookupConfigOption(args[0]); err == nil {
			return option.ValidValues, cobra.ShellCompDirectiveNoFileComp
		}
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

// MARK: Validators

// validateBoolOption validates that a value is either "true" or "false"
func validateBoolOption(value string) error {
	if value != "true" && value != "false" {
		return fmt.Errorf("value must be either 'true' or 'false', got: %s", value)
	}
	return nil
}

// validateNonNegativeInt validates that a value is a whole number of zero or more
func validateNonNegativeInt(value string) error {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n < 0 {
		return fmt.Errorf("value must be a non-negative integer, got: %s", value)
	}
	return nil
}
