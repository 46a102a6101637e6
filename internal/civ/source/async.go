package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ziadkadry99/civcards/internal/civ"
)

// ErrNotLoaded is returned while the dataset is still loading.
var ErrNotLoaded = errors.New("dataset not loaded")

// State is the load state of a [Source].
type State int32

const (
	Pending State = iota
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Source loads one civilization in the background and hands out the
// dataset once it is available. It is safe for concurrent use.
type Source struct {
	civ    string
	loader *Loader

	once  sync.Once
	done  chan struct{}
	state atomic.Int32
	ds    atomic.Pointer[civ.Dataset]
	err   error // written once before state becomes Failed
}

// New returns a pending source for civName. Nothing is loaded until
// [Source.Start] is called.
func New(loader *Loader, civName string) *Source {
	return &Source{civ: civName, loader: loader, done: make(chan struct{})}
}

// Static returns a source that is already Ready with ds.
func Static(ds *civ.Dataset) *Source {
	s := &Source{civ: ds.Name, done: make(chan struct{})}
	s.once.Do(func() {
		s.ds.Store(ds)
		s.state.Store(int32(Ready))
		close(s.done)
	})
	return s
}

// Civ returns the civilization name this source loads.
func (s *Source) Civ() string { return s.civ }

// Start begins loading in a new goroutine. Later calls do nothing.
func (s *Source) Start(ctx context.Context) {
	s.once.Do(func() {
		go s.load(ctx)
	})
}

func (s *Source) load(ctx context.Context) {
	defer close(s.done)

	start := time.Now()
	ds, err := s.loader.Load(ctx, s.civ)
	if err != nil {
		s.err = err
		s.state.Store(int32(Failed))
		slog.Error("dataset load failed", "civ", s.civ, "error", err)
		return
	}

	s.ds.Store(ds)
	s.state.Store(int32(Ready))
	slog.Info("dataset loaded", "civ", s.civ, "entities", ds.Size(), "took", time.Since(start).Round(time.Millisecond))
}

// State reports the current load state.
func (s *Source) State() State { return State(s.state.Load()) }

// Dataset returns the loaded dataset without blocking. It returns
// [ErrNotLoaded] while pending and the load error once failed.
func (s *Source) Dataset() (*civ.Dataset, error) {
	switch s.State() {
	case Ready:
		return s.ds.Load(), nil
	case Failed:
		return nil, s.err
	}
	return nil, ErrNotLoaded
}

// Wait blocks until loading finishes or ctx is done.
func (s *Source) Wait(ctx context.Context) (*civ.Dataset, error) {
	select {
	case <-s.done:
		return s.Dataset()
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for dataset: %w", ctx.Err())
	}
}
