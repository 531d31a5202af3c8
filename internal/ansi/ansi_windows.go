//go:build windows

package ansi

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// setConsoleMode turns on VT processing for the standard output console so
// the cursor addressing of the chart is honored.
func setConsoleMode() error {
	h := windows.Handle(windows.Stdout)
	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		// Not a console: output is redirected.
		return nil
	}
	if mode&windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING != 0 {
		return nil
	}
	if err := windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING); err != nil {
		return fmt.Errorf("enable virtual terminal processing: %w", err)
	}
	return nil
}
