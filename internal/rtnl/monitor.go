package rtnl

import (
	"context"
	"errors"
	"io"
)

// DefaultBufferSize fits several full RTM_NEWLINK messages, which carry
// statistics blocks well past 1 KiB on current kernels.
const DefaultBufferSize = 32 * 1024

// Transport delivers raw netlink datagrams. Receive blocks until data is
// available and returns 0 or io.EOF once the underlying socket is closed.
type Transport interface {
	Receive(ctx context.Context, b []byte) (int, error)
}

// Reporter receives everything the monitor decodes. Calls are made from the
// monitor goroutine, one buffer at a time.
type Reporter interface {
	ReportLink(ev LinkEvent)
	ReportMalformed(d Diagnostic)
}

// Monitor receives buffers from t until end of stream and decodes each one
// into r. It returns nil at end of stream and any other transport error
// as-is. The buffer is reused across receives.
func Monitor(ctx context.Context, t Transport, r Reporter, bufSize int) error {
	if bufSize < SizeofHeader {
		bufSize = DefaultBufferSize
	}
	buf := make([]byte, bufSize)

	for {
		n, err := t.Receive(ctx, buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if n == 0 {
			return nil
		}

		DecodeBatch(buf[:n], r)
	}
}
