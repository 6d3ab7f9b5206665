package network

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/automoto/rtspawn/shared/messages"
	"github.com/automoto/rtspawn/systems"
)

// Loopback is an in-memory transport between one host and any number of
// observers. Sends only queue; nothing is delivered until Pump, so callers
// decide exactly when each side sees the other's traffic. Delivery is
// reliable and in order, matching what the websocket transport provides.
//
// Sends may come from any goroutine. Pump must run on the goroutine that
// owns the host and observer worlds.
type Loopback struct {
	mu        sync.Mutex
	queue     []func() error
	host      *systems.IntentProcessor
	observers map[string]*systems.Replicator
	order     []string
	duplicate bool
}

func NewLoopback() *Loopback {
	return &Loopback{observers: make(map[string]*systems.Replicator)}
}

// BindHost sets the processor that receives intents from every uplink.
func (l *Loopback) BindHost(host *systems.IntentProcessor) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.host = host
}

// AddObserver registers an observer that receives all host broadcasts.
func (l *Loopback) AddObserver(name string, r *systems.Replicator) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.observers[name]; !ok {
		l.order = append(l.order, name)
	}
	l.observers[name] = r
}

// DuplicateIntents makes every intent arrive at the host twice.
func (l *Loopback) DuplicateIntents(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.duplicate = on
}

// Uplink returns the intent uplink for sender.
func (l *Loopback) Uplink(sender string) systems.Uplink {
	return loopbackUplink{l: l, sender: sender}
}

type loopbackUplink struct {
	l      *Loopback
	sender string
}

func (u loopbackUplink) SendIntent(req messages.IntentRequest) error {
	u.l.mu.Lock()
	defer u.l.mu.Unlock()
	if u.l.host == nil {
		return ErrNotConnected
	}
	deliver := func() error {
		if err := u.l.host.HandleRemoteIntent(u.sender, req); err != nil {
			return fmt.Errorf("intent from %s: %w", u.sender, err)
		}
		return nil
	}
	u.l.queue = append(u.l.queue, deliver)
	if u.l.duplicate {
		u.l.queue = append(u.l.queue, deliver)
	}
	return nil
}

func (l *Loopback) BroadcastDesiredPosition(evt messages.DesiredPositionEvent) error {
	l.broadcast(func(r *systems.Replicator) error {
		return r.ApplyDesiredPosition(evt)
	})
	return nil
}

func (l *Loopback) BroadcastDesiredState(evt messages.DesiredStateEvent) error {
	l.broadcast(func(r *systems.Replicator) error {
		_, err := r.ApplyDesiredState(evt)
		return err
	})
	return nil
}

func (l *Loopback) PublishViews(views []messages.ViewSync) error {
	views = slices.Clone(views)
	l.broadcast(func(r *systems.Replicator) error {
		r.ApplyViews(views)
		return nil
	})
	return nil
}

func (l *Loopback) broadcast(apply func(*systems.Replicator) error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, name := range l.order {
		r := l.observers[name]
		l.queue = append(l.queue, func() error {
			if err := apply(r); err != nil {
				return fmt.Errorf("deliver to %s: %w", name, err)
			}
			return nil
		})
	}
}

// Pump delivers queued messages in order, including any queued while
// pumping, until the queue is empty. It returns the number delivered and
// every delivery error joined.
func (l *Loopback) Pump() (int, error) {
	var errs []error
	n := 0
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return n, errors.Join(errs...)
		}
		next := l.queue[0]
		l.queue = l.queue[1:]
		l.mu.Unlock()

		if err := next(); err != nil {
			errs = append(errs, err)
		}
		n++
	}
}

// Pending reports how many messages are queued.
func (l *Loopback) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}
