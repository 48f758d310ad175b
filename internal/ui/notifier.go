package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/Mohsinsiddi/heroicdash/internal/session"
)

// Notifier prints session notices as styled lines.
type Notifier struct {
	mu  sync.Mutex
	out io.Writer
}

// NewNotifier writes notices to out.
func NewNotifier(out io.Writer) *Notifier {
	return &Notifier{out: out}
}

// Notify implements session.Notifier.
func (n *Notifier) Notify(notice session.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.out, FormatNotice(notice))
}

// FormatNotice renders a notice as "<icon> Title: message".
func FormatNotice(n session.Notice) string {
	text := n.Title
	if n.Message != "" {
		text += ": " + n.Message
	}
	switch n.Level {
	case session.LevelError:
		return Err(text)
	case session.LevelWarning:
		return Warn(text)
	}
	if n.Kind == session.KindConnected || n.Kind == session.KindNetworkSwitched {
		return Success(text)
	}
	return Info(text)
}
