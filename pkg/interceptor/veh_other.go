//go:build !windows || !amd64

package interceptor

// Vectored exception handling only exists on Windows; elsewhere the
// lifecycle is a no-op so the portable pipeline and its tests still run.

func (i *Interceptor) platformInstall() error { return nil }

func (i *Interceptor) platformUninstall() error { return nil }
