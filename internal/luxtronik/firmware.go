// internal/luxtronik/firmware.go
package luxtronik

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
)

var firmwareRe = regexp.MustCompile(`V\d+\.\d+\.\d+(-\d+)?`)

// ExtractFirmwareVersion finds a version such as V3.91.0 or V2.88.1-9086
// inside a firmware file name.
func ExtractFirmwareVersion(name string) (string, bool) {
	v := firmwareRe.FindString(name)
	return v, v != ""
}

// FirmwareVersion is opaque text. Only the minor component is ever
// interpreted, and it is parsed at most once.
type FirmwareVersion struct {
	text  string
	minor func() (int, bool)
}

func NewFirmwareVersion(text string) FirmwareVersion {
	return FirmwareVersion{
		text:  text,
		minor: sync.OnceValues(func() (int, bool) { return parseMinor(text) }),
	}
}

func (f FirmwareVersion) String() string { return f.text }

// Minor returns 91 for V3.91.0.
func (f FirmwareVersion) Minor() (int, bool) {
	if f.minor == nil {
		return 0, false
	}
	return f.minor()
}

func (f FirmwareVersion) MarshalText() ([]byte, error) { return []byte(f.text), nil }

func parseMinor(text string) (int, bool) {
	text = strings.TrimLeft(strings.TrimSpace(text), "Vv")
	parts := strings.Split(text, ".")
	if len(parts) < 2 {
		return 0, false
	}

	digits := parts[1]
	end := 0
	for end < len(digits) && digits[end] >= '0' && digits[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}

	n, err := strconv.Atoi(digits[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// firmwareFromChars joins the firmware character slots, skipping NULs.
func firmwareFromChars(values []int32) string {
	var b strings.Builder
	for _, v := range values {
		if v > 0x20 && v < 0x7F {
			b.WriteByte(byte(v))
		}
	}
	return b.String()
}
