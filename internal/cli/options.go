// Package cli provides the command-line interface for promptpal
package cli

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/holonoms/promptpal/internal/config"
	"github.com/holonoms/promptpal/internal/fileinfo"
	"github.com/holonoms/promptpal/internal/tokenizer"
)

// Options holds the command-line options shared across commands
type Options struct {
	// OutputFile specifies the path where the document will be written.
	// If empty, the document is printed to stdout.
	OutputFile string

	// IgnoreFile specifies a custom ignore file to use instead of the default .gitignore.
	// If empty, promptpal will:
	// - look for .promptpalignore first, then
	// - fall back to .gitignore if present
	// - use a sane internal list of ignore patterns (see internal/walker/ignore.go)
	IgnoreFile string

	// Directory specifies the root directory to process.
	// If empty, defaults to the current directory (".").
	Directory string

	// Instructions is embedded verbatim at the top of the document.
	Instructions string

	// InstructionsFile is read and embedded instead of Instructions.
	InstructionsFile string

	// PreviewLength is the number of bytes captured per file. Zero disables
	// content. If nil, the value from config will be used.
	PreviewLength *int64

	// FullContent captures entire files and takes precedence over PreviewLength.
	// If nil, the value from config will be used.
	FullContent *bool

	// FollowSymlinks determines whether symbolic links are followed.
	// If nil, the value from config will be used. If set, it overrides the config.
	FollowSymlinks *bool

	// Tokens enables token counting. If nil, the value from config will be used.
	Tokens *bool

	// Model selects the tokenizer. If empty, the value from config will be used.
	Model string

	// Debug raises the log level when greater than zero.
	Debug int

	logger *zap.Logger
}

// SetDefaults sets default values for options
func (o *Options) SetDefaults() {
	if o.Directory == "" {
		o.Directory = "."
	}
}

// Logger returns the logger for the current command, or a no-op logger
// before one has been configured.
func (o *Options) Logger() *zap.Logger {
	if o.logger == nil {
		return zap.NewNop()
	}
	return o.logger
}

// contentMode resolves the content flags against cfg.
func (o *Options) contentMode(cfg *config.Config) (fileinfo.Mode, error) {
	full := cfg.GetBool("content.full", false)
	if o.FullContent != nil {
		full = *o.FullContent
	}
	if full {
		return fileinfo.FullContent(), nil
	}

	var preview int64
	if o.PreviewLength != nil {
		preview = *o.PreviewLength
	} else if cfg.Has("content.preview_length") {
		value, err := strconv.ParseInt(cfg.Get("content.preview_length"), 10, 64)
		if err != nil {
			return fileinfo.Mode{}, fmt.Errorf("invalid content.preview_length: %w", err)
		}
		preview = value
	}
	if preview < 0 {
		return fileinfo.Mode{}, fmt.Errorf("preview length must not be negative, got %d", preview)
	}
	return fileinfo.Preview(preview), nil
}

func (o *Options) followSymlinks(cfg *config.Config) bool {
	if o.FollowSymlinks != nil {
		return *o.FollowSymlinks
	}
	return cfg.GetBool("processor.follow_symlinks", true)
}

func (o *Options) tokensEnabled(cfg *config.Config) bool {
	if o.Tokens != nil {
		return *o.Tokens
	}
	return cfg.GetBool("tokens.enabled", false)
}

func (o *Options) model(cfg *config.Config) string {
	if o.Model != "" {
		return o.Model
	}
	if cfg.Has("tokens.model") {
		return cfg.Get("tokens.model")
	}
	return tokenizer.DefaultModel
}
