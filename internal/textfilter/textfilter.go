// Package textfilter classifies archive entries as text-like or binary
// before they reach the scene parser.
package textfilter

const scanWindow = 512

// IsText reports whether data looks like a text blob: non-empty, and
// every byte within the first min(512, len(data)) bytes is either a tab,
// newline, carriage return, or printable ASCII (0x20..0x7E).
func IsText(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	window := data
	if len(window) > scanWindow {
		window = window[:scanWindow]
	}

	for _, b := range window {
		if !isTextByte(b) {
			return false
		}
	}
	return true
}

func isTextByte(b byte) bool {
	switch b {
	case 0x09, 0x0A, 0x0D:
		return true
	}
	return b >= 0x20 && b <= 0x7E
}
