package views

import (
	"context"
	"errors"
	"time"

	"github.com/darkhz/tview"

	"github.com/darkhz/hotspotctl/ui/theme"
)

// statusBarView holds the status bar, which displays informational and error
// messages, and the condensed help text.
type statusBarView struct {
	// MessageBox is an area to display messages.
	MessageBox *tview.TextView

	// Help is an area to display help keybindings.
	Help *tview.TextView

	sctx    context.Context
	scancel context.CancelFunc
	msgchan chan message

	*Views
}

type message struct {
	text    string
	persist bool
}

func (s *statusBarView) Initialize() error {
	s.MessageBox = tview.NewTextView()
	s.MessageBox.SetDynamicColors(true)
	s.MessageBox.SetBackgroundColor(theme.GetColor(theme.ThemeBackground))

	s.Help = tview.NewTextView()
	s.Help.SetDynamicColors(true)
	s.Help.SetBackgroundColor(theme.GetColor(theme.ThemeBackground))

	s.msgchan = make(chan message, 10)
	s.sctx, s.scancel = context.WithCancel(context.Background())

	go s.startStatus()

	s.layout.AddItem(s.MessageBox, 1, 0, false)

	return nil
}

func (s *statusBarView) SetRootView(root *Views) {
	s.Views = root
}

func (s *statusBarView) Release() {
	if s.scancel != nil {
		s.scancel()
	}
}

// InfoMessage sends an info message to the status bar.
// A persistent message is displayed again after any subsequent message is cleared.
func (s *statusBarView) InfoMessage(text string, persist bool) {
	s.send(message{theme.ColorWrap(theme.ThemeStatusInfo, text), persist})
}

// ErrorMessage sends an error message to the status bar.
func (s *statusBarView) ErrorMessage(err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}

	s.send(message{theme.ColorWrap(theme.ThemeStatusError, "Error: "+err.Error()), false})
}

// send queues a message, and drops it if the queue is full.
func (s *statusBarView) send(msg message) {
	if s.msgchan == nil {
		return
	}

	select {
	case s.msgchan <- msg:
	default:
	}
}

// startStatus starts the message event loop.
func (s *statusBarView) startStatus() {
	var text string
	var cleared bool

	t := time.NewTicker(2 * time.Second)
	defer t.Stop()

	for {
		select {
		case <-s.sctx.Done():
			return

		case msg, ok := <-s.msgchan:
			if !ok {
				return
			}

			t.Reset(2 * time.Second)

			cleared = false

			if msg.persist {
				text = msg.text
			}

			s.app.InstantDraw(func() {
				s.MessageBox.SetText(msg.text)
			})

		case <-t.C:
			if cleared {
				continue
			}

			cleared = true

			s.app.InstantDraw(func() {
				s.MessageBox.SetText(text)
			})
		}
	}
}
