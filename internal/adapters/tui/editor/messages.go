package editor

import (
	"sync"

	"github.com/bnema/inline-edit/internal/application"
)

// sessionChangedMsg carries the latest session snapshot into the update loop.
type sessionChangedMsg struct {
	snap application.Snapshot[string]
}

type flashClearMsg struct {
	id int
}

type saveDoneMsg struct{}

type quitReadyMsg struct{}

type replaceDoneMsg struct {
	result application.SelectionResult
}

type assistDoneMsg struct {
	result application.SelectionResult
	err    error
}

// Notifier hands session snapshots to the editor. It keeps only the newest
// snapshot so a slow UI never blocks the session. Snapshots older than one
// already delivered are dropped.
type Notifier struct {
	mu     sync.Mutex
	latest uint64
	ch     chan application.Snapshot[string]
}

func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan application.Snapshot[string], 1)}
}

// Notify is suitable as a session OnChange callback.
func (n *Notifier) Notify(snap application.Snapshot[string]) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if snap.Version <= n.latest {
		return
	}
	n.latest = snap.Version

	for {
		select {
		case n.ch <- snap:
			return
		default:
		}
		select {
		case <-n.ch:
		default:
		}
	}
}

func (n *Notifier) wait() sessionChangedMsg {
	return sessionChangedMsg{snap: <-n.ch}
}
