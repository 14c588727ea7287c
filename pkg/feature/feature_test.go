package feature

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihwankim/beaconwatch/pkg/ingest/grouper"
	"github.com/jihwankim/beaconwatch/pkg/logrecord"
)

func beaconGroup(n int, interval time.Duration) []logrecord.Record {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	records := make([]logrecord.Record, n)
	for i := 0; i < n; i++ {
		records[i] = logrecord.Record{
			Username:  "alice",
			URL:       "c2.example/beacon",
			BytesSent: 512,
			Timestamp: start.Add(time.Duration(i) * interval),
		}
	}
	return records
}

func TestExtract_DropsGroupsBelowGroupMin(t *testing.T) {
	groups := map[grouper.Key][]logrecord.Record{
		{SrcIP: "10.0.0.1", Domain: "c2.example"}: beaconGroup(5, time.Minute),
	}
	vectors := Extract(groups, 30)
	assert.Empty(t, vectors)
}

func TestExtract_DropsZeroIntervalGroups(t *testing.T) {
	rec := logrecord.Record{Username: "alice", URL: "a.com/x"}
	records := make([]logrecord.Record, 40)
	for i := range records {
		records[i] = rec // identical timestamps => avg_interval == 0
	}
	groups := map[grouper.Key][]logrecord.Record{
		{SrcIP: "10.0.0.1", Domain: "a.com"}: records,
	}
	vectors := Extract(groups, 30)
	assert.Empty(t, vectors)
}

func TestExtract_ComputesRegularBeaconFeatures(t *testing.T) {
	groups := map[grouper.Key][]logrecord.Record{
		{SrcIP: "10.0.0.1", Domain: "c2.example"}: beaconGroup(60, 5*time.Minute),
	}
	vectors := Extract(groups, 30)

	require.Len(t, vectors, 1)
	v := vectors[0]
	assert.Equal(t, "10.0.0.1", v.SrcIP)
	assert.Equal(t, "c2.example", v.Domain)
	assert.Equal(t, 60, v.RequestCnt)
	assert.InDelta(t, 300, v.Values[0], 1e-6) // avg_interval_s
	assert.InDelta(t, 0, v.Values[1], 1e-6)   // cv, perfectly regular
	assert.InDelta(t, 0, v.Values[2], 1e-6)   // bytes_sent_cv, constant bytes
	assert.InDelta(t, 1.0/60, v.Values[3], 1e-6)
}

func TestExtract_SortsBySrcIPThenDomain(t *testing.T) {
	groups := map[grouper.Key][]logrecord.Record{
		{SrcIP: "10.0.0.2", Domain: "a.com"}: beaconGroup(40, time.Minute),
		{SrcIP: "10.0.0.1", Domain: "b.com"}: beaconGroup(40, time.Minute),
		{SrcIP: "10.0.0.1", Domain: "a.com"}: beaconGroup(40, time.Minute),
	}
	vectors := Extract(groups, 30)
	require.Len(t, vectors, 3)
	assert.Equal(t, "10.0.0.1", vectors[0].SrcIP)
	assert.Equal(t, "a.com", vectors[0].Domain)
	assert.Equal(t, "10.0.0.1", vectors[1].SrcIP)
	assert.Equal(t, "b.com", vectors[1].Domain)
	assert.Equal(t, "10.0.0.2", vectors[2].SrcIP)
}

func TestRound4(t *testing.T) {
	assert.Equal(t, 1.2346, Round4(1.23456789))
}
