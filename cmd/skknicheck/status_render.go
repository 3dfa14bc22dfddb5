package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"skknicheck/internal/records"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

// statusKind is a check outcome shown as a bracketed tag.
type statusKind struct {
	tag   string
	color string
}

var (
	statusOK    = statusKind{tag: "OK", color: ansiGreen}
	statusWarn  = statusKind{tag: "WARN", color: ansiYellow}
	statusError = statusKind{tag: "ERROR", color: ansiRed}
)

const statusLabelWidth = 16

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	line := fmt.Sprintf("  %-*s [%s]", statusLabelWidth, label+":", kind.tag)
	if message != "" {
		line += " " + message
	}
	return paint(line, kind.color, colorize)
}

// colorStatus renders a classification label: red for revoked, green for
// active, yellow for lookup errors.
func colorStatus(status records.Status, colorize bool) string {
	label := status.String()
	switch status {
	case records.StatusDicabut:
		return paint(label, ansiRed, colorize)
	case records.StatusBerlaku:
		return paint(label, ansiGreen, colorize)
	case records.StatusError:
		return paint(label, ansiYellow, colorize)
	default:
		return label
	}
}

func paint(s, color string, colorize bool) string {
	if !colorize || color == "" {
		return s
	}
	return color + s + ansiReset
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
