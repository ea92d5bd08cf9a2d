package output

import (
	"io"
	"os"

	"github.com/charmbracelet/x/term"
)

// ValidateColorMode accepts the --color values auto, always and never.
func ValidateColorMode(mode string) error {
	switch mode {
	case "", "auto", "always", "never":
		return nil
	}
	return NewUserError("invalid --color value " + mode + ": use auto, always or never")
}

// ResolveColorMode reports whether output should be styled. NO_COLOR only
// affects auto.
func ResolveColorMode(mode string, isTTY bool) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	return isTTY && os.Getenv("NO_COLOR") == ""
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}
