// Package session orchestrates graph-building debate sessions: running
// context-enhanced debates, distilling them into nodes, wiring edges,
// branching on tensions, and checkpointing everything to disk.
package session

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"agora/dialectic/internal/graph"
	"agora/dialectic/internal/llm"
)

// Logger mirrors the session narrative to a markdown log file and, with a
// [session] prefix, to a console writer. A nil generator disables the
// one-line turn summaries but not the logging.
type Logger struct {
	file    *os.File
	console io.Writer
	gen     llm.Generator
	model   string
	start   time.Time
}

// NewLogger opens (and truncates) the markdown log at path.
func NewLogger(path string, gen llm.Generator, model string) (*Logger, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating log file: %w", err)
	}

	l := &Logger{
		file:    f,
		console: os.Stderr,
		gen:     gen,
		model:   model,
		start:   time.Now(),
	}
	fmt.Fprintf(f, "# Dialectical Debate Log\nStarted: %s\n\n", l.start.Format("2006-01-02 15:04:05"))
	return l, nil
}

// Log writes one line to both sinks.
func (l *Logger) Log(text string) {
	fmt.Fprintln(l.file, text)
	fmt.Fprintf(l.console, "[session] %s\n", text)
}

// Logf is Log with formatting.
func (l *Logger) Logf(format string, args ...any) {
	l.Log(fmt.Sprintf(format, args...))
}

// Section logs a major section header.
func (l *Logger) Section(title string) {
	sep := strings.Repeat("=", 80)
	l.Log("\n" + sep)
	l.Log(title)
	l.Log(sep + "\n")
}

// Subsection logs a minor header.
func (l *Logger) Subsection(title string) {
	sep := strings.Repeat("-", 80)
	l.Log("\n" + sep)
	l.Log(title)
	l.Log(sep + "\n")
}

// Turn logs a debate turn, prefixed with a generated one-line summary when
// a generator is available. Summary failures degrade to plain logging.
func (l *Logger) Turn(turn graph.Turn) {
	l.Logf("\n**%s** (Round %d):", turn.Speaker, turn.Round)
	if summary := l.summarize(turn); summary != "" {
		l.Logf("_Summary: %s_", summary)
	}
	l.Logf("\n%s\n", turn.Content)
}

func (l *Logger) summarize(turn graph.Turn) string {
	if l.gen == nil {
		return ""
	}
	out, err := l.gen.Generate(
		"Generate a single-sentence summary (max 15 words) capturing the core argument or move made.",
		fmt.Sprintf("Agent: %s\nContent: %s\n\nOne-sentence summary:", turn.Speaker, turn.Content),
		0.3, l.model)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// Close writes the closing timestamps and releases the log file.
func (l *Logger) Close() error {
	end := time.Now()
	l.Section("SESSION COMPLETE")
	l.Logf("Ended: %s", end.Format("2006-01-02 15:04:05"))
	l.Logf("Duration: %.1f seconds", end.Sub(l.start).Seconds())
	return l.file.Close()
}
