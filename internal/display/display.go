// Package display renders pipeline progress to a terminal: a spinner
// while a stage's model call is in flight, one line per completed
// stage, and boxed summaries at the end of a run.
package display

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/christophervuu/flow/internal/model"
	"github.com/christophervuu/flow/internal/trace"
)

// Spinner frames using braille characters
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Display handles terminal output for a foreground run.
type Display struct {
	out io.Writer
	mu  sync.Mutex

	spinMu     sync.Mutex
	spinning   bool
	spinStop   chan struct{}
	spinDone   chan struct{}
	spinMsg    string
	stageStart time.Time
	runStart   time.Time
}

// New creates a display writing to out.
func New(out io.Writer) *Display {
	now := time.Now()
	return &Display{out: out, runStart: now, stageStart: now}
}

// StartSpinner begins the loading spinner with a message.
func (d *Display) StartSpinner(msg string) {
	d.spinMu.Lock()
	if d.spinning {
		d.spinMu.Unlock()
		return
	}
	d.spinning = true
	d.spinMsg = msg
	d.spinStop = make(chan struct{})
	d.spinDone = make(chan struct{})
	d.spinMu.Unlock()

	go func() {
		defer close(d.spinDone)
		frame := 0
		first := true
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-d.spinStop:
				fmt.Fprintf(d.out, "\033[1A\r\033[K")
				return
			case <-ticker.C:
				elapsed := formatElapsed(time.Since(d.stageStart))
				if first {
					fmt.Fprintf(d.out, "   %s %s (%s)\n", spinnerFrames[frame], d.spinMsg, elapsed)
					first = false
				} else {
					fmt.Fprintf(d.out, "\033[1A\r\033[K   %s %s (%s)\n", spinnerFrames[frame], d.spinMsg, elapsed)
				}
				frame = (frame + 1) % len(spinnerFrames)
			}
		}
	}()
}

// StopSpinner stops the loading spinner.
func (d *Display) StopSpinner() {
	d.spinMu.Lock()
	if !d.spinning {
		d.spinMu.Unlock()
		return
	}
	d.spinning = false
	close(d.spinStop)
	d.spinMu.Unlock()
	<-d.spinDone
}

// Sink returns a trace sink that narrates stage progress. Chain it
// after the trace writer so display problems never affect the log.
func (d *Display) Sink() trace.Sink {
	return func(evt trace.Event) {
		d.StopSpinner()
		d.mu.Lock()
		defer d.mu.Unlock()

		switch evt.Kind {
		case trace.KindStageStart:
			d.stageStart = time.Now()
			fmt.Fprintf(d.out, "   %s %s\n", StyleMuted.Render("▶"), evt.AgentName)
			d.startAfterUnlock(evt.AgentName)
		case trace.KindModelCall:
			fmt.Fprintf(d.out, "   %s %s model call (%s)\n",
				StyleMuted.Render(">"), evt.AgentName, formatMillis(evt.DurationMs))
		case trace.KindJSONParseFailure:
			fmt.Fprintf(d.out, "   %s %s: output was not valid JSON\n",
				StyleWarning.Render("[!!]"), evt.AgentName)
		case trace.KindRetryUsed:
			fmt.Fprintf(d.out, "   %s %s: retrying once\n",
				StyleWarning.Render("..."), evt.AgentName)
			d.startAfterUnlock(evt.AgentName + " (retry)")
		case trace.KindStageEnd:
			fmt.Fprintf(d.out, "   %s %s done\n", StyleSuccess.Render("[ok]"), evt.AgentName)
		}
	}
}

// startAfterUnlock restarts the spinner once the current event line is
// printed. Runs the spinner goroutine outside the display mutex.
func (d *Display) startAfterUnlock(msg string) {
	go d.StartSpinner(truncate(msg, 40))
}

// ShowRunHeader displays the run banner.
func (d *Display) ShowRunHeader(runID, title, generator string) {
	lines := []string{
		StyleTitle.Render(title),
		StyleMuted.Render(fmt.Sprintf("run %s", runID)),
		StyleMuted.Render(fmt.Sprintf("generator: %s", generator)),
	}
	fmt.Fprintln(d.out, HeaderBox().Render(strings.Join(lines, "\n")))
}

// ShowQuestions lists blocking questions when a run pauses.
func (d *Display) ShowQuestions(questions []model.Question) {
	d.StopSpinner()
	var b strings.Builder
	b.WriteString(StyleWarning.Render("Blocking questions"))
	for _, q := range questions {
		if !q.Blocking {
			continue
		}
		fmt.Fprintf(&b, "\n%s %s", StyleBold.Render(q.ID+":"), q.Text)
	}
	fmt.Fprintln(d.out, QuestionBox().Render(b.String()))
}

// ShowCompleted displays the success summary for a finished run.
func (d *Display) ShowCompleted(runID, docPath string) {
	d.StopSpinner()
	elapsed := time.Since(d.runStart).Round(time.Second)
	lines := []string{
		StyleSuccess.Render("Run completed"),
		fmt.Sprintf("Design doc: %s", docPath),
		StyleMuted.Render(fmt.Sprintf("run %s in %s", runID, elapsed)),
	}
	fmt.Fprintln(d.out, SuccessBox().Render(strings.Join(lines, "\n")))
}

// ShowError displays an error summary.
func (d *Display) ShowError(msg string) {
	d.StopSpinner()
	fmt.Fprintln(d.out, ErrorBox().Render(StyleError.Render("[!!] ")+msg))
}

// ShowInfo displays an info message.
func (d *Display) ShowInfo(format string, args ...interface{}) {
	fmt.Fprintf(d.out, format, args...)
}

// formatElapsed formats duration with fixed width (always 6 chars like " 1.04s")
func formatElapsed(d time.Duration) string {
	secs := d.Seconds()
	if secs < 10 {
		return fmt.Sprintf("%5.2fs", secs)
	} else if secs < 100 {
		return fmt.Sprintf("%5.1fs", secs)
	}
	return fmt.Sprintf("%5.0fs", secs)
}

func formatMillis(ms int64) string {
	return formatElapsed(time.Duration(ms) * time.Millisecond)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
