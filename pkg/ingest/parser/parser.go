// Package parser reads web-proxy log CSVs into validated LogRecords.
package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jihwankim/beaconwatch/pkg/logrecord"
)

const timestampLayout = "2006-01-02 15:04:05"

// requiredColumns is the fixed header set the parser demands. Extra columns
// are permitted and ignored.
var requiredColumns = []string{
	"timestamp", "username", "department", "src_ip", "dst_ip", "protocol",
	"http_method", "url", "status_code", "bytes_sent", "bytes_received",
	"action", "url_category", "threat_category", "risk_score", "user_agent",
}

// Stats summarises one parse pass.
type Stats struct {
	TotalRows int
	Parsed    int
	Dropped   int
}

// Parser turns a CSV reader into a sequence of LogRecords.
type Parser struct{}

// New returns a Parser. The type carries no state today but is kept as a
// value so callers have a stable extension point for future options.
func New() *Parser {
	return &Parser{}
}

// ParseFile opens path and parses it as a log CSV.
func (p *Parser) ParseFile(path string) ([]logrecord.Record, Stats, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	return p.Parse(f)
}

// Parse reads every row from r, dropping rows with unparseable numeric or
// timestamp fields (counted in Stats, not returned as an error). A missing
// required column is a configuration error and aborts immediately.
func (p *Parser) Parse(r io.Reader) ([]logrecord.Record, Stats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, Stats{}, nil
		}
		return nil, Stats{}, fmt.Errorf("read header: %w", err)
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, Stats{}, err
	}

	var (
		records []logrecord.Record
		stats   Stats
	)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, Stats{}, fmt.Errorf("read row: %w", err)
		}

		stats.TotalRows++
		rec, ok := parseRow(row, index)
		if !ok {
			stats.Dropped++
			continue
		}
		stats.Parsed++
		records = append(records, rec)
	}

	return records, stats, nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrMissingColumns, missing)
	}
	return index, nil
}

func parseRow(row []string, index map[string]int) (logrecord.Record, bool) {
	field := func(name string) (string, bool) {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return "", false
		}
		return row[i], true
	}

	ts, ok := field("timestamp")
	if !ok {
		return logrecord.Record{}, false
	}
	timestamp, err := time.Parse(timestampLayout, ts)
	if err != nil {
		return logrecord.Record{}, false
	}

	statusStr, _ := field("status_code")
	status, err := strconv.Atoi(statusStr)
	if err != nil {
		return logrecord.Record{}, false
	}

	bytesSentStr, _ := field("bytes_sent")
	bytesSent, err := strconv.ParseInt(bytesSentStr, 10, 64)
	if err != nil || bytesSent < 0 {
		return logrecord.Record{}, false
	}

	bytesReceivedStr, _ := field("bytes_received")
	bytesReceived, err := strconv.ParseInt(bytesReceivedStr, 10, 64)
	if err != nil || bytesReceived < 0 {
		return logrecord.Record{}, false
	}

	riskStr, _ := field("risk_score")
	risk, err := strconv.Atoi(riskStr)
	if err != nil {
		return logrecord.Record{}, false
	}

	username, _ := field("username")
	department, _ := field("department")
	srcIP, _ := field("src_ip")
	dstIP, _ := field("dst_ip")
	protocol, _ := field("protocol")
	method, _ := field("http_method")
	url, _ := field("url")
	action, _ := field("action")
	urlCategory, _ := field("url_category")
	threatCategory, _ := field("threat_category")
	userAgent, _ := field("user_agent")

	return logrecord.Record{
		Timestamp:      timestamp,
		Username:       username,
		Department:     department,
		SrcIP:          srcIP,
		DstIP:          dstIP,
		Protocol:       protocol,
		HTTPMethod:     method,
		URL:            url,
		StatusCode:     status,
		BytesSent:      bytesSent,
		BytesReceived:  bytesReceived,
		Action:         action,
		URLCategory:    urlCategory,
		ThreatCategory: threatCategory,
		RiskScore:      risk,
		UserAgent:      userAgent,
	}, true
}
