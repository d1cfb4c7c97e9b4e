package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"karaparty/internal/api"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 18
	statusIndent     = "  "
)

func (k statusKind) label() string {
	switch k {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func (k statusKind) paint(s string) string {
	code := ansiBlue
	switch k {
	case statusOK:
		code = ansiGreen
	case statusWarn:
		code = ansiYellow
	case statusError:
		code = ansiRed
	}
	return code + s + ansiReset
}

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	state := "[" + kind.label() + "]"
	if message != "" {
		state += " " + message
	}
	line := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", state)
	if colorize {
		return kind.paint(line)
	}
	return line
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		return []string{statusInfo.paint(line), statusInfo.paint(rule)}
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// statusLines renders the daemon snapshot as labelled status rows grouped
// by section.
func statusLines(status api.DaemonStatus, colorize bool) []string {
	var lines []string
	section := func(title string) {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, renderSectionHeader(title, colorize)...)
	}
	row := func(label string, kind statusKind, message string) {
		lines = append(lines, renderStatusLine(label, kind, message, colorize))
	}

	section("Daemon")
	if status.Running {
		row("Daemon", statusOK, fmt.Sprintf("Running (pid %d)", status.PID))
	} else {
		row("Daemon", statusError, "Not running")
	}
	row("Lock file", statusInfo, status.LockFilePath)
	row("Dispatch log", statusInfo, status.DispatchLogPath)

	section("Dispatcher")
	d := status.Dispatcher
	if d.Running {
		row("Scheduler", statusOK, fmt.Sprintf("every %s", time.Duration(d.IntervalSeconds)*time.Second))
	} else {
		row("Scheduler", statusWarn, "stopped")
	}
	row("Dispatch count", statusInfo, strconv.Itoa(d.DispatchCount))
	row("Staged", statusInfo, strconv.Itoa(d.Staged))
	last := "never"
	if d.LastCycleAt != "" {
		last = fmt.Sprintf("%s (%s)", d.LastCycleAt, d.LastCycleID)
	}
	row("Last cycle", statusInfo, last)
	if d.UploadFailures > 0 {
		row("Upload failures", statusWarn, fmt.Sprintf("%d of %d released", d.UploadFailures, d.Released))
	} else {
		row("Released", statusOK, strconv.Itoa(d.Released))
	}
	if d.LastError != "" {
		row("Last error", statusError, d.LastError)
	}

	if len(status.Checks) > 0 {
		section("Checks")
		for _, check := range status.Checks {
			kind := statusOK
			if !check.Passed {
				kind = statusError
			}
			row(check.Name, kind, check.Detail)
		}
	}
	return lines
}
