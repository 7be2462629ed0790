package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	domain "github.com/bryanwahyu/checkdeck/internal/domain/checks"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	passStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dividerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
)

// inbox buffers notifications so they print after the spinner is gone.
type inbox struct {
	mu   sync.Mutex
	msgs []domain.Notification
}

func (b *inbox) Notify(kind domain.NotificationKind, message string) {
	b.mu.Lock()
	b.msgs = append(b.msgs, domain.Notification{Kind: kind, Message: message})
	b.mu.Unlock()
}

func (b *inbox) drain() []domain.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.msgs
	b.msgs = nil
	return out
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// withSpinner runs action behind a spinner when out is a terminal.
func withSpinner(out io.Writer, plain bool, title string, action func()) error {
	if plain || !isTerminal(out) {
		action()
		return nil
	}
	return spinner.New().Title(title).Action(action).Run()
}

func statusLabel(s domain.Status) string {
	switch s {
	case domain.StatusSuccess:
		return passStyle.Render("PASS")
	case domain.StatusFailed:
		return failStyle.Render("FAIL")
	case domain.StatusRunning:
		return warnStyle.Render("RUN ")
	}
	return dimStyle.Render("IDLE")
}

func printHeader(out io.Writer, title string) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, titleStyle.Render("  "+title))
	fmt.Fprintln(out)
}

func printVerdict(out io.Writer, name string, v domain.Verdict, oracleErr string) {
	label := passStyle.Render("✓")
	if !v.Success {
		label = failStyle.Render("✗")
	}
	fmt.Fprintf(out, "  %s  %s  %s\n", label, name, dimStyle.Render(v.Message))
	for _, d := range v.Details {
		fmt.Fprintf(out, "       %s\n", dimStyle.Render("- "+d))
	}
	if oracleErr != "" {
		fmt.Fprintf(out, "       %s\n", warnStyle.Render("oracle: "+oracleErr))
	}
}

func printNotifications(out io.Writer, msgs []domain.Notification) {
	if len(msgs) == 0 {
		return
	}
	fmt.Fprintln(out, dividerStyle.Render("  "+strings.Repeat("─", 40)))
	for _, n := range msgs {
		style := dimStyle
		switch n.Kind {
		case domain.NotifySuccess:
			style = passStyle
		case domain.NotifyError:
			style = failStyle
		}
		fmt.Fprintf(out, "  %s %s\n", style.Render("•"), n.Message)
	}
}
