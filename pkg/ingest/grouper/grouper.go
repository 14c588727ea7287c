// Package grouper partitions log records by (src_ip, domain).
package grouper

import (
	"sort"

	"github.com/jihwankim/beaconwatch/pkg/logrecord"
)

// Key is the ordered pair used for all per-destination aggregation.
type Key struct {
	SrcIP  string
	Domain string
}

// Group partitions records by (src_ip, extract_domain(url)), sorting each
// group's records ascending by timestamp. This is the sole place the domain
// is derived from a record's URL.
func Group(records []logrecord.Record) map[Key][]logrecord.Record {
	groups := make(map[Key][]logrecord.Record)
	for _, r := range records {
		key := Key{SrcIP: r.SrcIP, Domain: logrecord.Domain(r.URL)}
		groups[key] = append(groups[key], r)
	}
	for _, g := range groups {
		sort.Slice(g, func(i, j int) bool {
			return g[i].Timestamp.Before(g[j].Timestamp)
		})
	}
	return groups
}
