package netmon

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmdmdm-nz/linkmond/internal/runtime"
	log "github.com/sirupsen/logrus"
)

// subscriberQueueLimit bounds the live backlog of a subscriber that stops
// reading.
const subscriberQueueLimit = 1024

type link struct {
	LinkState
	generation uint64
}

type Service struct {
	watcher Watcher
	now     func() time.Time

	mu         sync.RWMutex
	links      map[int32]*link
	generation uint64

	ready     chan struct{}
	readyOnce sync.Once

	subsMu           sync.Mutex
	subs             map[int]*runtime.SubQueue[InterfaceEvent]
	nextSubscriberID int
	closed           bool
}

func NewService(watcher Watcher) *Service {
	return &Service{
		watcher: watcher,
		now:     time.Now,
		links:   make(map[int32]*link),
		ready:   make(chan struct{}),
		subs:    make(map[int]*runtime.SubQueue[InterfaceEvent]),
	}
}

// Subscribe returns a channel that first carries the current state of every
// known interface and then every state change.
func (s *Service) Subscribe() (<-chan InterfaceEvent, func()) {
	s.subsMu.Lock()
	if s.closed {
		s.subsMu.Unlock()
		ch := make(chan InterfaceEvent)
		close(ch)
		return ch, func() {}
	}

	// Snapshot under subsMu so no broadcast can slip between the snapshot
	// and the registration.
	snapshot := s.Links()

	sub := runtime.NewSubQueue[InterfaceEvent](len(snapshot)+8, subscriberQueueLimit)
	id := s.nextSubscriberID
	s.nextSubscriberID++
	s.subs[id] = sub
	s.subsMu.Unlock()

	for _, st := range snapshot {
		sub.SendSnapshot(eventFromState(st))
	}

	sub.SetPaused(false)

	unsub := func() {
		s.subsMu.Lock()
		if q, ok := s.subs[id]; ok {
			delete(s.subs, id)
			q.Close()
		}
		s.subsMu.Unlock()
	}
	return sub.Chan(), unsub
}

// Links returns the last known state of every interface, sorted by name.
func (s *Service) Links() []LinkState {
	s.mu.RLock()
	out := make([]LinkState, 0, len(s.links))
	for _, l := range s.links {
		out = append(out, l.LinkState)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b LinkState) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return int(a.Index) - int(b.Index)
	})
	return out
}

// Link looks up an interface by name.
func (s *Service) Link(name string) (LinkState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.links {
		if l.Name == name {
			return l.LinkState, true
		}
	}
	return LinkState{}, false
}

// Ready is closed once the first interface snapshot has been loaded.
func (s *Service) Ready() <-chan struct{} {
	return s.ready
}

func (s *Service) IsReady() bool {
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

func (s *Service) Start(ctx context.Context) error {
	log.Info("Starting link monitoring service")

	err := s.watcher.Start(ctx, s.handleWatcherEvent)
	if err != nil {
		log.WithError(err).Error("Link watcher failed")
		return err
	}

	log.Info("Stopping link monitoring service")
	return nil
}

func (s *Service) Close() error {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for id, q := range s.subs {
		q.Close()
		delete(s.subs, id)
	}
	return nil
}

func (s *Service) handleWatcherEvent(ev InterfaceEvent) {
	switch ev.Type {
	case snapshotBegin:
		s.mu.Lock()
		s.generation++
		s.mu.Unlock()
	case snapshotEnd:
		s.pruneStale()
		s.readyOnce.Do(func() {
			log.WithField("links", len(s.Links())).Info("Link snapshot loaded")
			close(s.ready)
		})
	case LinkUp, LinkDown:
		s.updateLink(ev)
	default:
		log.WithField("type", ev.Type).Warn("Ignoring unknown watcher event")
	}
}

// updateLink records the new state and publishes it when the carrier state
// changed or the interface is new.
func (s *Service) updateLink(ev InterfaceEvent) {
	// Subscribers must see changes in the order they were applied.
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	s.mu.Lock()
	l, known := s.links[ev.Index]
	if !known {
		l = &link{LinkState: LinkState{Index: ev.Index}}
		s.links[ev.Index] = l
	}
	l.generation = s.generation

	changed := !known || l.Up != ev.Up()
	if ev.InterfaceName != "" && l.Name != ev.InterfaceName {
		if known {
			log.WithFields(log.Fields{
				"index": ev.Index,
				"from":  l.Name,
				"to":    ev.InterfaceName,
			}).Debug("Interface renamed")
		}
		l.Name = ev.InterfaceName
	}
	evicted := s.evictNameLocked(l.Name, ev.Index)
	if changed {
		l.Up = ev.Up()
		l.Since = s.now()
	}
	out := eventFromState(l.LinkState)
	s.mu.Unlock()

	for _, st := range evicted {
		log.WithFields(log.Fields{
			"interface": st.Name,
			"index":     st.Index,
			"newIndex":  ev.Index,
		}).Info("Interface re-created under a new index")
		if st.Up {
			s.broadcastLocked(InterfaceEvent{Type: LinkDown, InterfaceName: st.Name, Index: st.Index})
		}
	}

	if !changed {
		log.WithFields(log.Fields{
			"interface": out.InterfaceName,
			"state":     out.Type,
		}).Trace("Link state unchanged")
		return
	}

	log.WithFields(log.Fields{
		"interface": out.InterfaceName,
		"index":     out.Index,
		"state":     out.Type,
	}).Info("Link state changed")

	s.broadcastLocked(out)
}

// evictNameLocked drops every entry other than keep that holds name. An
// interface deleted and re-created gets a new index, and no RTM_DELLINK is
// seen for the old one.
func (s *Service) evictNameLocked(name string, keep int32) []LinkState {
	if name == "" {
		return nil
	}
	var evicted []LinkState
	for index, l := range s.links {
		if index != keep && l.Name == name {
			evicted = append(evicted, l.LinkState)
			delete(s.links, index)
		}
	}
	return evicted
}

// pruneStale forgets interfaces that were missing from the latest snapshot.
// Those that were up are published as down.
func (s *Service) pruneStale() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	s.mu.Lock()
	var gone []LinkState
	for index, l := range s.links {
		if l.generation != s.generation {
			gone = append(gone, l.LinkState)
			delete(s.links, index)
		}
	}
	s.mu.Unlock()

	for _, st := range gone {
		log.WithField("interface", st.Name).Info("Interface disappeared")
		if st.Up {
			s.broadcastLocked(InterfaceEvent{Type: LinkDown, InterfaceName: st.Name, Index: st.Index})
		}
	}
}

func (s *Service) broadcastLocked(ev InterfaceEvent) {
	for _, sub := range s.subs {
		sub.Enqueue(ev)
	}
}
