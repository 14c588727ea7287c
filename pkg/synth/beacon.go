package synth

// BeaconProfile is one injected beaconing pattern: a period, jitter, and
// duration.
type BeaconProfile struct {
	Name            string
	IntervalSeconds float64
	JitterSeconds   float64
	NumDays         int
}

// DefaultBeaconProfiles are the three reference profiles used across the
// end-to-end evaluation scenarios.
var DefaultBeaconProfiles = []BeaconProfile{
	{Name: "obvious", IntervalSeconds: 300, JitterSeconds: 4, NumDays: 5},
	{Name: "subtle", IntervalSeconds: 1800, JitterSeconds: 45, NumDays: 5},
	{Name: "fast", IntervalSeconds: 60, JitterSeconds: 3, NumDays: 3},
}

// DefaultC2Domains are the fixed pool of malicious-looking destinations a
// beacon profile is assigned to.
var DefaultC2Domains = []string{
	"malware-c2.ru", "update-service.top", "telemetry-sync.xyz", "cdn-relay.biz",
}
