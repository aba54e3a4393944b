package ports

import (
	"context"
	"io"
)

// Link is a duplex byte stream to the host. Writes carry whole newline-terminated
// lines; reads yield arbitrary chunks and return io.EOF once the host is gone.
type Link interface {
	io.ReadWriteCloser
}

// HostLauncher locates and starts the host.
//
// Launch returns an error wrapping domain.ErrHostToolNotFound when the host cannot be
// located and domain.ErrLaunchFailed when it was located but did not start. Any other
// error means a required local resource is missing and is treated as fatal.
type HostLauncher interface {
	Launch(ctx context.Context) (Link, error)
}
