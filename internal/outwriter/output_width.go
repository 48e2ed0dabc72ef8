package outwriter

import (
	"os"

	"golang.org/x/term"

	"github.com/huangsam/ecoscore/internal/contract"
)

// Path column bounds for table output.
const (
	minPathWidth = 15
	maxPathWidth = 70
)

// GetMaxTablePathWidth calculates the maximum width for file paths in table output
// based on terminal width and table configuration.
func GetMaxTablePathWidth(cfg *contract.Config) int {
	termWidth := cfg.Width

	if termWidth <= 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Conservative default for narrow terminals and CI
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	// Score + Grade + Status + Suggestions with borders/padding
	baseWidth := 40

	// Per-category columns
	if cfg.Verbose {
		baseWidth += 40
	}

	// Table borders, separators, and padding
	baseWidth += 20

	available := termWidth - baseWidth
	if available < minPathWidth {
		return minPathWidth
	}
	if available > maxPathWidth {
		return maxPathWidth
	}
	return available
}
