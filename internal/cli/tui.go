package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/topotab/topotab/pkg/errors"
	"github.com/topotab/topotab/pkg/pipeline"
)

// =============================================================================
// Batch Progress - interactive multi-file conversion display
// =============================================================================

// fileState tracks one input through the batch.
type fileState int

const (
	filePending fileState = iota
	fileRunning
	fileDone
	fileFailed
)

type fileStartMsg struct{ path string }

type fileDoneMsg struct {
	path string
	err  error
	note string
}

type batchDoneMsg struct{}

type frameMsg time.Time

// batchModel is the bubbletea model for the batch conversion display.
type batchModel struct {
	paths     []string
	state     map[string]fileState
	note      map[string]string
	frame     int
	frames    []string
	completed int
}

func newBatchModel(paths []string) batchModel {
	state := make(map[string]fileState, len(paths))
	for _, p := range paths {
		state[p] = filePending
	}
	return batchModel{
		paths:  paths,
		state:  state,
		note:   make(map[string]string, len(paths)),
		frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	}
}

func (m batchModel) Init() tea.Cmd {
	return tickFrame()
}

func tickFrame() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m batchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case frameMsg:
		m.frame++
		return m, tickFrame()
	case fileStartMsg:
		m.state[msg.path] = fileRunning
	case fileDoneMsg:
		m.completed++
		if msg.err != nil {
			m.state[msg.path] = fileFailed
			m.note[msg.path] = errors.UserMessage(msg.err)
		} else {
			m.state[msg.path] = fileDone
			m.note[msg.path] = msg.note
		}
	case batchDoneMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m batchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Converting"))
	b.WriteString("\n\n")

	for _, path := range m.paths {
		var icon string
		switch m.state[path] {
		case filePending:
			icon = StyleDim.Render("·")
		case fileRunning:
			icon = styleIconSpinner.Render(m.frames[m.frame%len(m.frames)])
		case fileDone:
			icon = styleIconSuccess.Render(iconSuccess)
		case fileFailed:
			icon = styleIconError.Render(iconError)
		}

		b.WriteString("  " + icon + " " + StyleValue.Render(path))
		if note := m.note[path]; note != "" {
			b.WriteString("  " + StyleDim.Render(note))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.completed, len(m.paths))))
	b.WriteString("\n")

	return b.String()
}

// =============================================================================
// Runner Integration
// =============================================================================

// runBatchTUI converts the inputs concurrently while the bubbletea program
// shows per-file progress. Conversion and display are independent: if the
// terminal refuses the display, the conversions still finish and the batch
// result is complete either way.
func runBatchTUI(ctx context.Context, runner *pipeline.Runner, paths []string, opts pipeline.Options) *pipeline.BatchResult {
	batch := &pipeline.BatchResult{Failures: make(map[string]error)}
	if opts.OutputPath != "" {
		for _, path := range paths {
			batch.Failures[path] = errors.New(errors.ErrCodeInvalidConfig,
				"an explicit output path cannot apply to %d inputs", len(paths))
		}
		return batch
	}

	prog := tea.NewProgram(newBatchModel(paths), tea.WithContext(ctx), tea.WithOutput(os.Stderr))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	go func() {
		for _, path := range paths {
			wg.Add(1)
			go func(path string) {
				defer wg.Done()
				prog.Send(fileStartMsg{path: path})
				res, err := runner.Execute(ctx, path, opts)
				mu.Lock()
				if err != nil {
					batch.Failures[path] = err
				} else {
					batch.Results = append(batch.Results, res)
				}
				mu.Unlock()
				note := ""
				if res != nil {
					note = strings.Join(res.Outputs, ", ")
				}
				prog.Send(fileDoneMsg{path: path, err: err, note: note})
			}(path)
		}
		wg.Wait()
		prog.Send(batchDoneMsg{})
	}()

	_, _ = prog.Run()
	wg.Wait()
	return batch
}
