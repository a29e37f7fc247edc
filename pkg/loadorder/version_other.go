//go:build !windows

package loadorder

// Version resources are a PE concept; nothing to read elsewhere.
func fileVersion(string) string { return "" }
