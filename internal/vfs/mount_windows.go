//go:build windows

package vfs

import (
	"context"

	"github.com/stirante/dokan-go"
)

// Serve mounts fs at mountPoint and blocks until the file system is
// unmounted. Cancelling ctx unmounts it.
func Serve(ctx context.Context, fs *ProxyFS, mountPoint string) error {
	m, err := dokan.Mount(&dokan.Config{
		Path:       mountPoint,
		FileSystem: fs,
	})
	if err != nil {
		return err
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			m.Close()
		case <-done:
		}
	}()

	return m.BlockTillDone()
}
