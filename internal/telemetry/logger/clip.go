// Package logger provides structured logging for calcmesh.
package logger

import (
	"fmt"
	"log/slog"
	"unicode/utf8"
)

// DefaultMaxValueLen is the default limit for string attribute values.
// Expressions arrive from untrusted clients and may be up to the request
// size limit; logs keep only a prefix.
const DefaultMaxValueLen = 256

// clipAttr shortens string values longer than maxLen bytes, recursing
// into groups. maxLen < 0 disables clipping.
func clipAttr(a slog.Attr, maxLen int) slog.Attr {
	if maxLen < 0 {
		return a
	}

	switch a.Value.Kind() {
	case slog.KindString:
		if s := a.Value.String(); len(s) > maxLen {
			return slog.String(a.Key, Clip(s, maxLen))
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		clipped := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			clipped[i] = clipAttr(attr, maxLen)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(clipped...)}
	}
	return a
}

// Clip returns s unchanged if it fits in maxLen bytes. Otherwise it
// returns the longest valid UTF-8 prefix within maxLen bytes followed by
// a marker with the number of bytes dropped.
func Clip(s string, maxLen int) string {
	if maxLen < 0 || len(s) <= maxLen {
		return s
	}

	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return fmt.Sprintf("%s...(+%d bytes)", s[:cut], len(s)-cut)
}
