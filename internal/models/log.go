package models

import "time"

// LogClass is the severity class attached to a log line
type LogClass string

const (
	ClassInfo    LogClass = "info"
	ClassSuccess LogClass = "success"
	ClassWarning LogClass = "warning"
	ClassDanger  LogClass = "danger"
)

type LogEntry struct {
	Timestamp time.Time
	Message   string
	Class     LogClass
	TunnelID  string // Empty for communication log entries
}
