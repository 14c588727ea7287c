package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCSV = `timestamp,username,department,src_ip,dst_ip,protocol,http_method,url,status_code,bytes_sent,bytes_received,action,url_category,threat_category,risk_score,user_agent
2026-01-01 09:00:00,alice,Engineering,10.0.0.1,93.184.216.34,https,GET,example.com/page,200,512,2048,allowed,business,none,5,Mozilla/5.0
`

func TestParse_ValidRows(t *testing.T) {
	records, stats, err := New().Parse(strings.NewReader(validCSV))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, stats.Parsed)
	assert.Equal(t, 0, stats.Dropped)
	assert.Equal(t, "alice", records[0].Username)
	assert.Equal(t, "example.com/page", records[0].URL)
}

func TestParse_MissingRequiredColumnErrors(t *testing.T) {
	csv := "timestamp,username\n2026-01-01 09:00:00,alice\n"
	_, _, err := New().Parse(strings.NewReader(csv))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumns)
}

func TestParse_DropsUnparseableRowsWithoutFailing(t *testing.T) {
	header := "timestamp,username,department,src_ip,dst_ip,protocol,http_method,url,status_code,bytes_sent,bytes_received,action,url_category,threat_category,risk_score,user_agent\n"
	goodRow := "2026-01-01 09:00:00,alice,Engineering,10.0.0.1,93.184.216.34,https,GET,example.com/page,200,512,2048,allowed,business,none,5,Mozilla/5.0\n"
	badRow := "not-a-timestamp,bob,Finance,10.0.0.2,93.184.216.35,https,GET,example.com/other,200,512,2048,allowed,business,none,5,Mozilla/5.0\n"

	records, stats, err := New().Parse(strings.NewReader(header + goodRow + badRow))
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1, stats.Parsed)
	assert.Equal(t, 1, stats.Dropped)
	assert.Equal(t, 2, stats.TotalRows)
}

func TestParse_EmptyInputYieldsNoRecords(t *testing.T) {
	records, stats, err := New().Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 0, stats.TotalRows)
}

func TestParseFile_MissingFileErrors(t *testing.T) {
	_, _, err := New().ParseFile("/nonexistent/path/to/log.csv")
	require.Error(t, err)
}
