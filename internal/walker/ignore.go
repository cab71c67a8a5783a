package walker

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// IgnoreFileName is the project-specific ignore file, preferred over
// .gitignore when present.
const IgnoreFileName = ".promptpalignore"

// extraIgnores defines patterns for files that should typically be ignored
const extraIgnores = `
# === Non-binary files that are typically committed but irrelevant
# === for LLMs assistance (e.g. logs, package lock files, etc.)
.promptpal
.promptpalignore
.git/
CHANGELOG*
*LICENSE*
*.lock
*-lock.json
*-lock.yaml
go.sum
*.log

# === Binary files
# Image files
*.png
*.jpg
*.jpeg
*.gif
*.bmp
*.ico
*.webp

# Document files
*.pdf
*.doc
*.docx
*.xls
*.xlsx
*.ppt
*.pptx

# Archive files
*.zip
*.tar
*.gz
*.7z
*.rar

# Executable and library files
*.exe
*.dll
*.so
*.dylib

# Media files
*.mp3
*.mp4
*.avi
*.mov
*.wav

# Font files
*.ttf
*.otf
*.woff
*.woff2

# Generic binary files
*.bin
`

// IgnoreRules describes where ignore patterns come from.
type IgnoreRules struct {
	// IgnoreFile is an explicit ignore file. When empty, .promptpalignore
	// and then .gitignore in the root are used if present.
	IgnoreFile string
	// OutputFile is always ignored so a previous run never feeds itself.
	OutputFile string
}

// NewMatcher builds the ignore matcher for root. It returns the ignore file
// that was used, if any.
func NewMatcher(root string, rules IgnoreRules) (gitignore.Matcher, string, error) {
	ignoreFile := rules.IgnoreFile
	if ignoreFile == "" {
		ignoreFile = findIgnoreFile(root)
	}

	var patterns []gitignore.Pattern

	// The built-in list only applies alongside the conventional ignore files.
	base := filepath.Base(ignoreFile)
	if ignoreFile == "" || base == ".gitignore" || base == IgnoreFileName {
		patterns = append(patterns, parsePatterns(extraIgnores)...)
	}

	if ignoreFile != "" {
		data, err := os.ReadFile(ignoreFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read ignore file: %w", err)
		}
		patterns = append(patterns, parsePatterns(string(data))...)
	}

	if rules.OutputFile != "" {
		if rel, ok := relativeTo(root, rules.OutputFile); ok {
			patterns = append(patterns, gitignore.ParsePattern("/"+rel, nil))
		}
	}

	return gitignore.NewMatcher(patterns), ignoreFile, nil
}

func findIgnoreFile(root string) string {
	for _, name := range []string{IgnoreFileName, ".gitignore"} {
		candidate := filepath.Join(root, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func parsePatterns(text string) []gitignore.Pattern {
	var patterns []gitignore.Pattern
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	return patterns
}

// relativeTo returns target relative to root, slash separated, when target
// lies inside root.
func relativeTo(root, target string) (string, bool) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absRoot, absTarget)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
