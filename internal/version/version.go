package version

import (
	"strings"

	"github.com/fatih/color"
)

// Build metadata for the vela CLI.
// These variables can be overridden at release time via -ldflags.

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)

	// Version is the semantic version of the CLI.
	Version = versionMajorColor.Sprint("0") + "." + versionMinorColor.Sprint("1") + "." + versionPatchColor.Sprint("0") + "-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Plain returns Version with color escapes stripped, for JSON payloads and
// piped output. When colors are globally off the two are identical.
func Plain() string {
	return stripEscapes(Version)
}

func stripEscapes(s string) string {
	if !strings.ContainsRune(s, 0x1b) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inEscape := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inEscape:
			if c == 'm' {
				inEscape = false
			}
		case c == 0x1b:
			inEscape = true
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
