//go:build !windows

package ansi

// setConsoleMode is a no-op; Unix terminals interpret escapes natively.
func setConsoleMode() error {
	return nil
}
