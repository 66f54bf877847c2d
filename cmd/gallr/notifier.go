package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/gallr/internal/debuglog"
)

var (
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA86B")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#95E1D3"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
)

// cliNotifier prints session notifications to w, one per line.
type cliNotifier struct {
	w io.Writer
}

func newCLINotifier(w io.Writer) *cliNotifier {
	return &cliNotifier{w: w}
}

func (n *cliNotifier) Warn(message string) {
	debuglog.Warnf("notify: %s", message)
	fmt.Fprintln(n.w, warnStyle.Render("! "+message))
}

func (n *cliNotifier) Info(message string) {
	debuglog.Infof("notify: %s", message)
	fmt.Fprintln(n.w, infoStyle.Render(message))
}

func (n *cliNotifier) Failure(message string) {
	debuglog.Errorf("notify: %s", message)
	fmt.Fprintln(n.w, failureStyle.Render("✗ "+message))
}
