package advertise

import (
	"context"
	"fmt"
	"net"
	"slices"
	"sync"

	"github.com/dmdmdm-nz/zeroconf"
	log "github.com/sirupsen/logrus"

	"github.com/dmdmdm-nz/linkmond/internal/netmon"
)

type server interface {
	Shutdown()
}

// registerFunc publishes the service. It can be overridden in tests.
var registerFunc = func(instance, service, domain string, port int, text []string, ifaces []net.Interface) (server, error) {
	return zeroconf.Register(instance, service, domain, port, text, ifaces)
}

// interfaceByIndex resolves interfaces for registration. It can be
// overridden in tests.
var interfaceByIndex = net.InterfaceByIndex

// Service announces the API over mDNS. With a netmon stream attached it only
// answers on interfaces whose carrier is up and re-registers as links change.
type Service struct {
	instance string
	port     int
	txt      []string

	ifCh    <-chan netmon.InterfaceEvent
	ifUnsub func()

	mu     sync.Mutex
	up     map[int32]string // ifindex to last reported name
	server server
	closed bool
}

func NewService(instance string, port int, version string) *Service {
	return &Service{
		instance: instance,
		port:     port,
		txt:      TxtRecords(version),
		up:       make(map[int32]string),
	}
}

// AttachNetmon wires the link stream (must be called before Start).
func (s *Service) AttachNetmon(ch <-chan netmon.InterfaceEvent, unsub func()) {
	s.ifCh = ch
	s.ifUnsub = unsub
}

func (s *Service) Start(ctx context.Context) error {
	log.WithFields(log.Fields{
		"instance": s.instance,
		"service":  ServiceType,
		"port":     s.port,
	}).Info("Starting mDNS advertisement")
	defer log.Info("Stopping mDNS advertisement")

	if s.ifCh == nil {
		if err := s.register(nil); err != nil {
			return err
		}
		<-ctx.Done()
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-s.ifCh:
			if !ok {
				return nil
			}
			if !s.apply(ev) {
				continue
			}
			if err := s.reregister(); err != nil {
				return err
			}
		}
	}
}

func (s *Service) Close() error {
	if s.ifUnsub != nil {
		s.ifUnsub()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.shutdownLocked()
	return nil
}

// Interfaces returns the last reported names of the interfaces advertised
// on, sorted.
func (s *Service) Interfaces() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.up))
	for _, name := range s.up {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// apply records a link event and reports whether the set of up interfaces
// changed. Interfaces are tracked by index so a rename cannot leave a stale
// entry behind.
func (s *Service) apply(ev netmon.InterfaceEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, wasUp := s.up[ev.Index]
	switch {
	case ev.Up() && !wasUp:
		s.up[ev.Index] = ev.InterfaceName
		return true
	case !ev.Up() && wasUp:
		delete(s.up, ev.Index)
		return true
	case ev.Up() && ev.InterfaceName != "" && ev.InterfaceName != name:
		s.up[ev.Index] = ev.InterfaceName
	}
	return false
}

func (s *Service) upIndexes() []int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	indexes := make([]int32, 0, len(s.up))
	for index := range s.up {
		indexes = append(indexes, index)
	}
	slices.Sort(indexes)
	return indexes
}

func (s *Service) reregister() error {
	indexes := s.upIndexes()

	ifaces := make([]net.Interface, 0, len(indexes))
	for _, index := range indexes {
		iface, err := interfaceByIndex(int(index))
		if err != nil {
			log.WithField("index", index).WithError(err).Debug("Skipping interface for mDNS")
			continue
		}

		s.mu.Lock()
		if known, ok := s.up[index]; ok && known != iface.Name {
			log.WithFields(log.Fields{
				"index": index,
				"from":  known,
				"to":    iface.Name,
			}).Debug("Interface renamed since last link event")
			s.up[index] = iface.Name
		}
		s.mu.Unlock()

		ifaces = append(ifaces, *iface)
	}

	if len(ifaces) == 0 {
		s.mu.Lock()
		s.shutdownLocked()
		s.mu.Unlock()
		log.Debug("No interfaces up, mDNS advertisement paused")
		return nil
	}
	return s.register(ifaces)
}

// register replaces the current registration. A nil ifaces registers on
// every multicast interface.
func (s *Service) register(ifaces []net.Interface) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.shutdownLocked()

	srv, err := registerFunc(s.instance, ServiceType, Domain, s.port, s.txt, ifaces)
	if err != nil {
		return fmt.Errorf("error registering %s: %w", ServiceType, err)
	}
	s.server = srv

	names := make([]string, 0, len(ifaces))
	for _, iface := range ifaces {
		names = append(names, iface.Name)
	}
	log.WithField("interfaces", names).Debug("Registered mDNS service")
	return nil
}

func (s *Service) shutdownLocked() {
	if s.server != nil {
		s.server.Shutdown()
		s.server = nil
	}
}
