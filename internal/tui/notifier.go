package tui

import (
	"sync"

	"github.com/pders01/gallr/internal/debuglog"
)

// Status is one line shown in the status bar.
type Status struct {
	Text string
	Kind StatusKind
}

// Notifier shows session notifications in the status bar. It is safe for
// concurrent use and never blocks.
type Notifier struct {
	mu      sync.Mutex
	current Status
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) Warn(message string) {
	debuglog.Warnf("notify: %s", message)
	n.post(message, StatusWarn)
}

func (n *Notifier) Info(message string) {
	debuglog.Infof("notify: %s", message)
	n.post(message, StatusInfo)
}

func (n *Notifier) Failure(message string) {
	debuglog.Errorf("notify: %s", message)
	n.post(message, StatusError)
}

func (n *Notifier) post(text string, kind StatusKind) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = Status{Text: text, Kind: kind}
}

// Current returns the latest status.
func (n *Notifier) Current() Status {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

func (n *Notifier) Clear() {
	n.post("", StatusInfo)
}
