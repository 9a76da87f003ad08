package speech

import (
	"context"
	"sync"
)

// Arena owns one Adapter and lends it to a single holder at a time.
type Arena struct {
	mu      sync.Mutex
	adapter *Adapter
	holder  *Handle
}

// NewArena creates an arena around adapter. A nil adapter behaves as one
// without any capability.
func NewArena(adapter *Adapter) *Arena {
	if adapter == nil {
		adapter = NewAdapter(nil, nil)
	}
	return &Arena{adapter: adapter}
}

// Acquire checks the adapter out. It fails with ErrBusy while another
// handle is held.
func (a *Arena) Acquire() (*Handle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.holder != nil {
		return nil, ErrBusy
	}
	h := &Handle{arena: a}
	a.holder = h
	return h, nil
}

// Held reports whether a handle is checked out.
func (a *Arena) Held() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.holder != nil
}

func (a *Arena) giveBack(h *Handle) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.holder == h {
		a.holder = nil
	}
}

// Handle is exclusive access to the arena's adapter. It runs at most one
// speech operation at a time.
type Handle struct {
	arena *Arena

	mu       sync.Mutex
	released bool
	cancel   context.CancelFunc
	idle     chan struct{} // closed when the running operation returns
}

// CanSpeak reports whether synthesis is available through this handle.
func (h *Handle) CanSpeak() bool {
	return h.arena.adapter.CanSpeak()
}

// CanRecognize reports whether recognition is available through this handle.
func (h *Handle) CanRecognize() bool {
	return h.arena.adapter.CanRecognize()
}

// Speak runs Adapter.Speak while holding the handle's operation slot.
func (h *Handle) Speak(ctx context.Context, text string) error {
	ctx, done, err := h.begin(ctx)
	if err != nil {
		return err
	}
	defer done()
	return h.arena.adapter.Speak(ctx, text)
}

// RecognizeOnce runs Adapter.RecognizeOnce while holding the handle's operation slot.
func (h *Handle) RecognizeOnce(ctx context.Context) (string, error) {
	ctx, done, err := h.begin(ctx)
	if err != nil {
		return "", err
	}
	defer done()
	return h.arena.adapter.RecognizeOnce(ctx)
}

func (h *Handle) begin(ctx context.Context) (context.Context, func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released {
		return nil, nil, ErrReleased
	}
	if h.cancel != nil {
		return nil, nil, ErrBusy
	}

	opCtx, cancel := context.WithCancel(ctx)
	idle := make(chan struct{})
	h.cancel = cancel
	h.idle = idle
	done := func() {
		cancel()
		h.mu.Lock()
		h.cancel = nil
		h.idle = nil
		h.mu.Unlock()
		close(idle)
	}
	return opCtx, done, nil
}

// Release cancels the running operation, waits for it to return, and gives
// the adapter back to the arena. It is safe to call more than once. Callers
// must not hold locks the running operation's caller needs.
func (h *Handle) Release() {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return
	}
	h.released = true
	idle := h.idle
	if h.cancel != nil {
		h.cancel()
	}
	h.mu.Unlock()

	if idle != nil {
		<-idle
	}
	h.arena.giveBack(h)
}
