package logger

import (
	"log/slog"
	"time"
)

// Error records err under "error". A nil error yields an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// StaffID records the staff number (NIP) under "nip". Empty yields an empty Attr.
func StaffID(nip string) slog.Attr {
	if nip == "" {
		return slog.Attr{}
	}
	return slog.String("nip", nip)
}

func Branch(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("branch", name)
}

func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// State records a state name, typically a session lifecycle state.
func State(name string) slog.Attr {
	return slog.String("state", name)
}

func Endpoint(url string) slog.Attr {
	return slog.String("endpoint", url)
}

// Status records an HTTP status code under "status".
func Status(code int) slog.Attr {
	return slog.Int("status", code)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
