// Package tokenizer estimates how many model tokens the collected content
// will consume.
package tokenizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/holonoms/promptpal/internal/fileinfo"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-3.5-turbo"

	defaultEncodingName = "cl100k_base"
	defaultContextSize  = 4096
)

// contextSizes lists context windows by model prefix, longest prefix first.
var contextSizes = []struct {
	prefix string
	size   int
}{
	{"gpt-4o", 128000},
	{"gpt-4-turbo", 128000},
	{"gpt-4-32k", 32768},
	{"gpt-4", 8192},
	{"gpt-3.5-turbo-instruct", 4096},
	{"gpt-3.5-turbo", 16385},
}

// Counter estimates token counts for text.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

type tiktokenCounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

func (c tiktokenCounter) Name() string {
	return c.name
}

func (c tiktokenCounter) CountString(input string) (int, error) {
	if c.encoding == nil {
		return 0, errors.New("nil tiktoken encoder")
	}
	return len(c.encoding.Encode(input, nil, nil)), nil
}

// NewCounter returns a Counter for model. Models without a registered
// encoding fall back to cl100k_base.
func NewCounter(model string) (Counter, error) {
	model = normalize(model)

	encoding, err := tiktoken.EncodingForModel(model)
	if err == nil && encoding != nil {
		return tiktokenCounter{encoding: encoding, name: model}, nil
	}

	fallback, err := tiktoken.GetEncoding(defaultEncodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tokenizer: %w", err)
	}
	return tiktokenCounter{encoding: fallback, name: defaultEncodingName}, nil
}

// ContextSize returns the context window of model in tokens.
func ContextSize(model string) int {
	model = normalize(model)
	for _, entry := range contextSizes {
		if strings.HasPrefix(model, entry.prefix) {
			return entry.size
		}
	}
	return defaultContextSize
}

func normalize(model string) string {
	model = strings.ToLower(strings.TrimSpace(model))
	if model == "" {
		return DefaultModel
	}
	return model
}

// FileCount is the token estimate for one collected file.
type FileCount struct {
	Path   string
	Tokens int
}

// Summary aggregates token estimates across records.
type Summary struct {
	Files []FileCount
	Total int
}

// CountRecords counts the captured content of each record. Records without
// content are left out.
func CountRecords(counter Counter, records []fileinfo.Record) (Summary, error) {
	if counter == nil {
		return Summary{}, errors.New("nil tokenizer counter")
	}

	var summary Summary
	for _, record := range records {
		text, ok := record.Content()
		if !ok {
			continue
		}
		tokens, err := counter.CountString(text)
		if err != nil {
			return Summary{}, fmt.Errorf("failed to count tokens for %s: %w", record.Path, err)
		}
		summary.Files = append(summary.Files, FileCount{Path: record.Path, Tokens: tokens})
		summary.Total += tokens
	}
	return summary, nil
}
