package synth

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/jihwankim/beaconwatch/pkg/logrecord"
)

var logHeader = []string{
	"timestamp", "username", "department", "src_ip", "dst_ip", "protocol",
	"http_method", "url", "status_code", "bytes_sent", "bytes_received",
	"action", "url_category", "threat_category", "risk_score", "user_agent",
}

var groundTruthHeader = []string{
	"timestamp", "username", "src_ip", "url", "is_anomaly", "anomaly_type",
	"anomaly_severity", "tier_detection",
}

const timestampLayout = "2006-01-02 15:04:05"

// WriteLog writes the sanitised log CSV (no label columns).
func WriteLog(path string, records []logrecord.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("synth: create log file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(logHeader); err != nil {
		return fmt.Errorf("synth: write log header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.Timestamp.Format(timestampLayout),
			r.Username,
			r.Department,
			r.SrcIP,
			r.DstIP,
			r.Protocol,
			r.HTTPMethod,
			r.URL,
			strconv.Itoa(r.StatusCode),
			strconv.FormatInt(r.BytesSent, 10),
			strconv.FormatInt(r.BytesReceived, 10),
			r.Action,
			r.URLCategory,
			r.ThreatCategory,
			strconv.Itoa(r.RiskScore),
			r.UserAgent,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("synth: write log row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// WriteGroundTruth writes the ground-truth CSV, restricted to injected
// anomalies.
func WriteGroundTruth(path string, rows []GroundTruthRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("synth: create ground truth file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(groundTruthHeader); err != nil {
		return fmt.Errorf("synth: write ground truth header: %w", err)
	}
	for _, r := range rows {
		row := []string{
			r.Timestamp.Format(timestampLayout),
			r.Username,
			r.SrcIP,
			r.URL,
			strconv.FormatBool(r.IsAnomaly),
			r.AnomalyType,
			r.AnomalySeverity,
			r.TierDetection,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("synth: write ground truth row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
