package upload

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Op is the kind of filesystem change carried by an Event.
type Op uint8

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRename
	OpRemove
)

// Event is one filesystem change inside a watched directory.
type Event struct {
	Path string
	Op   Op
}

// EventSource delivers filesystem events for added directories.
type EventSource interface {
	Add(dir string) error
	Events() <-chan Event
	Errors() <-chan error
	Close() error
}

// FSNotifySource adapts fsnotify to EventSource.
type FSNotifySource struct {
	watcher *fsnotify.Watcher
	events  chan Event
	errors  chan error
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// NewFSNotifySource starts an fsnotify watcher.
func NewFSNotifySource() (*FSNotifySource, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	s := &FSNotifySource{
		watcher: watcher,
		events:  make(chan Event),
		errors:  make(chan error),
		done:    make(chan struct{}),
	}
	s.wg.Add(1)
	go s.forward()
	return s, nil
}

func (s *FSNotifySource) Add(dir string) error {
	if err := s.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	return nil
}

func (s *FSNotifySource) Events() <-chan Event { return s.events }

func (s *FSNotifySource) Errors() <-chan error { return s.errors }

func (s *FSNotifySource) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.watcher.Close()
		s.wg.Wait()
	})
	return err
}

func (s *FSNotifySource) forward() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			op := translateOp(ev.Op)
			if op == 0 {
				continue
			}
			select {
			case s.events <- Event{Path: ev.Name, Op: op}:
			case <-s.done:
				return
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			select {
			case s.errors <- err:
			case <-s.done:
				return
			}
		}
	}
}

func translateOp(op fsnotify.Op) Op {
	var out Op
	if op.Has(fsnotify.Create) {
		out |= OpCreate
	}
	if op.Has(fsnotify.Write) {
		out |= OpWrite
	}
	if op.Has(fsnotify.Rename) {
		out |= OpRename
	}
	if op.Has(fsnotify.Remove) {
		out |= OpRemove
	}
	return out
}
