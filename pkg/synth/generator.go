package synth

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/jihwankim/beaconwatch/pkg/logrecord"
)

// Config parameterises one synthetic dataset generation run.
type Config struct {
	Seed           int64
	NumUsers       int
	NumDays        int
	StartDate      time.Time
	Departments    []DepartmentProfile
	BeaconProfiles []BeaconProfile
	C2Domains      []string
}

// DefaultConfig returns a Config seeded with the reference profiles, for the
// end-to-end scenarios in the design notes (seed 42, 3 users, 5 days).
func DefaultConfig(startDate time.Time) Config {
	return Config{
		Seed:           42,
		NumUsers:       3,
		NumDays:        5,
		StartDate:      startDate,
		Departments:    DefaultDepartments,
		BeaconProfiles: DefaultBeaconProfiles,
		C2Domains:      DefaultC2Domains,
	}
}

// GroundTruthRow is one labelled anomalous row of the ground-truth CSV.
type GroundTruthRow struct {
	Timestamp       time.Time
	Username        string
	SrcIP           string
	URL             string
	IsAnomaly       bool
	AnomalyType     string
	AnomalySeverity string
	TierDetection   string
}

// Result is one generation run's output: a sanitised log and its matching
// ground truth.
type Result struct {
	Log         []logrecord.Record
	GroundTruth []GroundTruthRow
}

// Generator produces a deterministic, labelled synthetic dataset.
type Generator struct {
	cfg Config
	rng *rand.Rand
}

// New returns a Generator seeded from cfg.Seed.
func New(cfg Config) *Generator {
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))} //nolint:gosec
}

// Generate builds the user population's normal-traffic baseline, then
// appends beaconing bursts per cfg.BeaconProfiles.
func (g *Generator) Generate() Result {
	users := g.buildUsers()

	var log []logrecord.Record
	for _, u := range users {
		log = append(log, g.normalTraffic(u)...)
	}

	var groundTruth []GroundTruthRow
	for i, profile := range g.cfg.BeaconProfiles {
		target := users[i%len(users)]
		c2Domain := g.cfg.C2Domains[i%len(g.cfg.C2Domains)]
		rows, gt := g.injectBeacon(target, c2Domain, profile)
		log = append(log, rows...)
		groundTruth = append(groundTruth, gt...)
	}

	sort.Slice(log, func(i, j int) bool { return log[i].Timestamp.Before(log[j].Timestamp) })
	sort.Slice(groundTruth, func(i, j int) bool { return groundTruth[i].Timestamp.Before(groundTruth[j].Timestamp) })

	return Result{Log: log, GroundTruth: groundTruth}
}

func (g *Generator) buildUsers() []UserProfile {
	users := make([]UserProfile, g.cfg.NumUsers)
	for i := 0; i < g.cfg.NumUsers; i++ {
		dept := g.cfg.Departments[i%len(g.cfg.Departments)]
		users[i] = UserProfile{
			Username:          fmt.Sprintf("user%03d", i),
			Department:        dept.Name,
			SrcIP:             fmt.Sprintf("10.%d.%d.%d", (i/254)%254, (i/1)%254+1, (i%254)+2),
			DailyMeanRequests: 40 + g.rng.Float64()*60,
		}
	}
	return users
}

func (g *Generator) department(name string) DepartmentProfile {
	for _, d := range g.cfg.Departments {
		if d.Name == name {
			return d
		}
	}
	return g.cfg.Departments[0]
}

func (g *Generator) normalTraffic(u UserProfile) []logrecord.Record {
	dept := g.department(u.Department)
	var records []logrecord.Record

	for day := 0; day < g.cfg.NumDays; day++ {
		dayStart := g.cfg.StartDate.AddDate(0, 0, day)
		isWeekend := dayStart.Weekday() == time.Saturday || dayStart.Weekday() == time.Sunday
		if isWeekend && g.rng.Float64() > 0.20 {
			continue
		}

		count := int(math.Max(10, math.Round(u.DailyMeanRequests+g.rng.NormFloat64()*u.DailyMeanRequests*0.2)))
		for i := 0; i < count; i++ {
			ts := g.workHourBiasedTimestamp(dayStart, dept)
			records = append(records, g.normalRequest(u, dept, ts))
		}
	}
	return records
}

func (g *Generator) workHourBiasedTimestamp(dayStart time.Time, dept DepartmentProfile) time.Time {
	var hour int
	if g.rng.Float64() < 0.80 {
		span := dept.WorkHourEnd - dept.WorkHourStart
		hour = dept.WorkHourStart + g.rng.Intn(span)
	} else {
		hour = g.rng.Intn(24)
	}
	minute := g.rng.Intn(60)
	second := g.rng.Intn(60)
	return time.Date(dayStart.Year(), dayStart.Month(), dayStart.Day(), hour, minute, second, 0, dayStart.Location())
}

func (g *Generator) normalRequest(u UserProfile, dept DepartmentProfile, ts time.Time) logrecord.Record {
	domain := dept.Domains[g.rng.Intn(len(dept.Domains))]
	if g.rng.Float64() < 0.10 {
		domain = FabricatedDomains[g.rng.Intn(len(FabricatedDomains))]
	}

	bytesSent := int64(math.Max(50, dept.BytesSentMean+g.rng.NormFloat64()*dept.BytesSentMean*0.3))
	bytesReceived := int64(math.Max(100, dept.BytesReceivedMean+g.rng.NormFloat64()*dept.BytesReceivedMean*0.3))

	return logrecord.Record{
		Timestamp:      ts,
		Username:       u.Username,
		Department:     u.Department,
		SrcIP:          u.SrcIP,
		DstIP:          fabricatedDstIP(domain),
		Protocol:       "https",
		HTTPMethod:     "GET",
		URL:            domain + "/" + randomPath(g.rng),
		StatusCode:     200,
		BytesSent:      bytesSent,
		BytesReceived:  bytesReceived,
		Action:         "allowed",
		URLCategory:    "business",
		ThreatCategory: "none",
		RiskScore:      g.rng.Intn(20),
		UserAgent:      dept.UserAgents[g.rng.Intn(len(dept.UserAgents))],
	}
}

// injectBeacon emits periodic requests to c2Domain from the target user's
// host, with Gaussian jitter around the profile's interval.
func (g *Generator) injectBeacon(u UserProfile, c2Domain string, profile BeaconProfile) ([]logrecord.Record, []GroundTruthRow) {
	var records []logrecord.Record
	var groundTruth []GroundTruthRow

	end := g.cfg.StartDate.AddDate(0, 0, profile.NumDays)
	t := g.cfg.StartDate
	for t.Before(end) {
		jitter := g.rng.NormFloat64() * profile.JitterSeconds
		rec := logrecord.Record{
			Timestamp:      t,
			Username:       u.Username,
			Department:     u.Department,
			SrcIP:          u.SrcIP,
			DstIP:          fabricatedDstIP(c2Domain),
			Protocol:       "https",
			HTTPMethod:     "POST",
			URL:            c2Domain + "/beacon",
			StatusCode:     200,
			BytesSent:      512,
			BytesReceived:  64,
			Action:         "allowed",
			URLCategory:    "unknown",
			ThreatCategory: "command-and-control",
			RiskScore:      90,
			UserAgent:      "curl/7.68.0",
		}
		records = append(records, rec)
		groundTruth = append(groundTruth, GroundTruthRow{
			Timestamp:       t,
			Username:        u.Username,
			SrcIP:           u.SrcIP,
			URL:             rec.URL,
			IsAnomaly:       true,
			AnomalyType:     "beaconing_" + profile.Name,
			AnomalySeverity: beaconSeverity(profile),
			TierDetection:   "",
		})

		step := time.Duration(profile.IntervalSeconds+jitter) * time.Second
		if step <= 0 {
			step = time.Duration(profile.IntervalSeconds) * time.Second
		}
		t = t.Add(step)
	}

	return records, groundTruth
}

func beaconSeverity(p BeaconProfile) string {
	switch p.Name {
	case "obvious", "fast":
		return "critical"
	default:
		return "high"
	}
}

func fabricatedDstIP(domain string) string {
	h := 0
	for _, c := range domain {
		h = h*31 + int(c)
	}
	if h < 0 {
		h = -h
	}
	return fmt.Sprintf("203.0.%d.%d", (h/256)%256, h%256)
}

func randomPath(rng *rand.Rand) string {
	segments := []string{"api", "v1", "v2", "resource", "assets", "static", "data"}
	return fmt.Sprintf("%s/%s/%d", segments[rng.Intn(len(segments))], segments[rng.Intn(len(segments))], rng.Intn(10000))
}
