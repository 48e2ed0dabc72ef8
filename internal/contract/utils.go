package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Grade label constants.
const (
	ExcellentValue = "Excellent" // Excellent value
	GoodValue      = "Good"      // Good value
	FairValue      = "Fair"      // Fair value
	PoorValue      = "Poor"      // Poor value
)

// Color variables for console output.
var (
	ExcellentColor = color.New(color.FgGreen, color.Bold) // ExcellentColor represents efficient code.
	GoodColor      = color.New(color.FgCyan)              // GoodColor represents minor findings.
	FairColor      = color.New(color.FgYellow)            // FairColor represents standard caution.
	PoorColor      = color.New(color.FgRed, color.Bold)   // PoorColor represents wasteful code.
)

// GetPlainLabel returns a plain text grade for an eco-score in [0,1].
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(score float64) string {
	switch {
	case score >= 0.9:
		return ExcellentValue
	case score >= 0.7:
		return GoodValue
	case score >= 0.4:
		return FairValue
	default:
		return PoorValue
	}
}

// GetColorLabel returns a colored grade for console output (table).
func GetColorLabel(score float64) string {
	text := GetPlainLabel(score)

	switch text {
	case ExcellentValue:
		return ExcellentColor.Sprint(text)
	case GoodValue:
		return GoodColor.Sprint(text)
	case FairValue:
		return FairColor.Sprint(text)
	default:
		return PoorColor.Sprint(text)
	}
}

// SelectOutputFile returns the file handle for output. An empty path means stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// ShouldIgnore returns true if the given path matches any of the exclude patterns.
// It supports simple glob patterns (using filepath.Match) when the pattern
// contains wildcard characters (*, ?, [ ]). Patterns ending with '/' match a
// directory segment. Patterns starting with '.' are treated as suffix matches.
// A user can provide patterns like "venv/", "tests/", "*_pb2.py".
func ShouldIgnore(path string, excludes []string) bool {
	slashed := filepath.ToSlash(path)
	for _, ex := range excludes {
		ex = strings.TrimSpace(ex)
		if ex == "" {
			continue
		}

		if strings.ContainsAny(ex, "*?[") {
			pat := strings.ReplaceAll(ex, "**", "*")
			if ok, err := filepath.Match(pat, slashed); err == nil && ok {
				return true
			}
			if ok, err := filepath.Match(pat, filepath.Base(slashed)); err == nil && ok {
				return true
			}
			continue
		}

		switch {
		case strings.HasSuffix(ex, "/"):
			if strings.HasPrefix(slashed, ex) || strings.Contains(slashed, "/"+ex) {
				return true
			}
		case strings.HasPrefix(ex, "."):
			if strings.HasSuffix(slashed, ex) {
				return true
			}
		case strings.Contains(slashed, ex):
			return true
		}
	}
	return false
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the result cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".ecoscore_cache.db"
	}
	return filepath.Join(homeDir, ".ecoscore_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for run history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".ecoscore_history.db"
	}
	return filepath.Join(homeDir, ".ecoscore_history.db")
}

// NormalizeRepoPath normalizes a user-provided path relative to the repo root
// and ensures it's within the repository boundaries.
func NormalizeRepoPath(repoPath, userPath string) (string, error) {
	if filepath.IsAbs(userPath) {
		relPath, err := filepath.Rel(repoPath, userPath)
		if err != nil {
			return "", fmt.Errorf("path is outside repository: %s", userPath)
		}
		userPath = relPath
	}

	cleanPath := filepath.Clean(userPath)
	if cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path is outside repository: %s", userPath)
	}

	// Git paths always use forward slashes
	normalized := strings.ReplaceAll(cleanPath, string(filepath.Separator), "/")
	return strings.TrimPrefix(normalized, "./"), nil
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 so there is room for the prefix and one character.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// ParseColorMode resolves the --color flag. "auto" enables color only when
// stdout is a terminal.
func ParseColorMode(s string) (bool, error) {
	if strings.EqualFold(s, "auto") || s == "" {
		fd := os.Stdout.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd), nil
	}
	return ParseBoolString(s)
}
