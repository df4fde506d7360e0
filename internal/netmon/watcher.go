package netmon

import "context"

// Watcher reports carrier state changes of network interfaces.
type Watcher interface {
	// Start seeds the current state of every interface, then calls callback
	// for each change. Each full snapshot is bracketed by snapshot markers.
	// Blocks until ctx is cancelled or an error occurs.
	Start(ctx context.Context, callback func(InterfaceEvent)) error
}

// WatcherConfig tunes the notification socket.
type WatcherConfig struct {
	// BufferSize is the receive buffer for one datagram batch.
	BufferSize int
	// SocketBuffer sets SO_RCVBUF when positive.
	SocketBuffer int
}
