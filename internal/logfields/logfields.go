package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyVersion    = "version"
	KeyDocID      = "doc_id"
	KeyTarget     = "target"
	KeySidebar    = "sidebar"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyCount      = "count"
	KeySubject    = "subject"
	KeyURL        = "url"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Version(name string) slog.Attr   { return slog.String(KeyVersion, name) }
func DocID(id string) slog.Attr       { return slog.String(KeyDocID, id) }
func Target(id string) slog.Attr      { return slog.String(KeyTarget, id) }
func Sidebar(name string) slog.Attr   { return slog.String(KeySidebar, name) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
