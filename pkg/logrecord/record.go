// Package logrecord defines the immutable unit the rest of the pipeline
// operates on: one parsed line of a web-proxy log.
package logrecord

import (
	"strings"
	"time"
)

// Record is one validated web-proxy log line. All fields are set once at
// parse time and never mutated afterward.
type Record struct {
	Timestamp      time.Time
	Username       string
	Department     string
	SrcIP          string
	DstIP          string
	Protocol       string
	HTTPMethod     string
	URL            string
	StatusCode     int
	BytesSent      int64
	BytesReceived  int64
	Action         string
	URLCategory    string
	ThreatCategory string
	RiskScore      int
	UserAgent      string
}

// Domain returns the URL substring up to, but not including, the first "/".
// This is the only sanctioned way to derive a domain from a Record's URL;
// callers outside the grouper should not need it, but it is exported so the
// grouper and tests share one definition.
func Domain(url string) string {
	if i := strings.IndexByte(url, '/'); i >= 0 {
		return url[:i]
	}
	return url
}

// Path returns the URL substring after the first "/", or "" if there is none.
func Path(url string) string {
	if i := strings.IndexByte(url, '/'); i >= 0 {
		return url[i+1:]
	}
	return ""
}
