package upload

import (
	"fmt"
	"sync"
	"testing"

	"pagesmith/internal/logging"
)

type gatedClipboard struct {
	mu      sync.Mutex
	writes  []string
	entered chan struct{}
	release chan struct{}
	fail    error
}

func (g *gatedClipboard) WriteText(text string) error {
	if g.entered != nil {
		g.entered <- struct{}{}
		<-g.release
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail != nil {
		return g.fail
	}
	g.writes = append(g.writes, text)
	return nil
}

func TestClipboardMailboxKeepsLatestValue(t *testing.T) {
	clip := &gatedClipboard{entered: make(chan struct{}), release: make(chan struct{})}
	mailbox := newClipboardMailbox(clip, &sync.Mutex{}, logging.NewNop())

	mailbox.Publish("first")
	<-clip.entered

	// The worker is blocked writing "first"; these queue up and collapse.
	mailbox.Publish("second")
	mailbox.Publish("third")

	clip.entered = nil
	close(clip.release)
	mailbox.Close()

	clip.mu.Lock()
	defer clip.mu.Unlock()
	if len(clip.writes) != 2 || clip.writes[0] != "first" || clip.writes[1] != "third" {
		t.Fatalf("unexpected clipboard writes %v", clip.writes)
	}
}

func TestClipboardMailboxIgnoresPublishAfterClose(t *testing.T) {
	clip := &gatedClipboard{}
	mailbox := newClipboardMailbox(clip, &sync.Mutex{}, logging.NewNop())
	mailbox.Close()
	mailbox.Publish("late")
	mailbox.Close()
	if len(clip.writes) != 0 {
		t.Fatalf("expected no writes after close, got %v", clip.writes)
	}
}

func TestClipboardMailboxSurvivesUnavailableClipboard(t *testing.T) {
	clip := &gatedClipboard{fail: fmt.Errorf("%w: headless", ErrClipboardUnavailable)}
	mailbox := newClipboardMailbox(clip, &sync.Mutex{}, logging.NewNop())
	for i := range 3 {
		mailbox.Publish(fmt.Sprintf("url-%d", i))
	}
	mailbox.Close()
	if !mailbox.warned {
		t.Fatal("expected unavailable clipboard to be noted")
	}
}
