//go:build windows

package output

import (
	"golang.org/x/sys/windows"
)

// getTerminalWidth returns the current terminal width
func getTerminalWidth() int {
	if width, ok := columnsEnv(); ok {
		return width
	}

	handle, err := windows.GetStdHandle(windows.STD_OUTPUT_HANDLE)
	if err != nil {
		return defaultWidth
	}

	var info windows.ConsoleScreenBufferInfo
	if err := windows.GetConsoleScreenBufferInfo(handle, &info); err == nil {
		width := int(info.Window.Right - info.Window.Left + 1)
		if width > 0 {
			return width
		}
	}

	return defaultWidth
}
