// Package preflight verifies that the external tools the pipeline shells
// out to can be resolved before any job starts.
package preflight

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"

	"github.com/nguyentantai21042004/transcribe-flow/internal/config"
)

// ErrMissingRequired is returned by Verify when a required tool is absent.
var ErrMissingRequired = errors.New("required tool not found")

// Resolver locates executables. It is satisfied by executor.Executor.
type Resolver interface {
	LookPath(name string) (string, error)
}

// Requirement defines an external dependency.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Requirement
	Available bool
	Path      string
	Detail    string
}

// Requirements lists the tools cfg refers to.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{Name: "FFmpeg", Command: cfg.Tools.FFmpeg, Description: "audio extraction"},
		{Name: "Whisper", Command: cfg.Whisper.BinaryPath, Description: "speech recognition"},
		{Name: "FFprobe", Command: cfg.Tools.FFprobe, Description: "duration probe for split", Optional: true},
	}
}

// Check evaluates the provided requirements and reports availability.
func Check(r Resolver, requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		status := Status{Requirement: req}
		if req.Command == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		path, err := r.LookPath(req.Command)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", req.Command)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Path = path
		results = append(results, status)
	}
	return results
}

// Verify fails if any required tool is unavailable.
func Verify(results []Status) error {
	var missing []string
	for _, s := range results {
		if !s.Available && !s.Optional {
			missing = append(missing, s.Command)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingRequired, strings.Join(missing, ", "))
	}
	return nil
}

// Render draws results as a table. Terminals get rounded borders.
func Render(w io.Writer, results []Status) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if isTerminal(w) {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}

	tw.AppendHeader(table.Row{"Tool", "Command", "Status", "Details"})
	for _, s := range results {
		state := "ok"
		detail := s.Path
		if !s.Available {
			state = "missing"
			if s.Optional {
				state = "missing (optional)"
			}
			detail = s.Detail
		}
		tw.AppendRow(table.Row{s.Name, s.Command, state, detail})
	}
	tw.Render()
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
