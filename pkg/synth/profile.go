// Package synth generates reproducible, labelled synthetic web-proxy logs:
// a department-driven normal-traffic baseline plus injected beaconing
// bursts, used to build evaluation datasets.
package synth

// DepartmentProfile describes one department's typical browsing behaviour.
type DepartmentProfile struct {
	Name              string
	Domains           []string
	WorkHourStart     int
	WorkHourEnd       int
	BytesSentMean     float64
	BytesReceivedMean float64
	UserAgents        []string
}

// DefaultDepartments mirrors a handful of plausible corporate departments;
// each gets its own domain list and work-hour window.
var DefaultDepartments = []DepartmentProfile{
	{
		Name:              "Engineering",
		Domains:           []string{"github.com", "stackoverflow.com", "docs.google.com", "jira.internal.corp", "npmjs.com"},
		WorkHourStart:     9,
		WorkHourEnd:       19,
		BytesSentMean:     2200,
		BytesReceivedMean: 45000,
		UserAgents:        []string{"Mozilla/5.0 (X11; Linux x86_64) Chrome/124.0", "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_4) Safari/605.1.15"},
	},
	{
		Name:              "Finance",
		Domains:           []string{"outlook.office.com", "workday.com", "sap.corp.internal", "bloomberg.com", "docs.google.com"},
		WorkHourStart:     8,
		WorkHourEnd:       17,
		BytesSentMean:     1400,
		BytesReceivedMean: 28000,
		UserAgents:        []string{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/124.0", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Edge/124.0"},
	},
	{
		Name:              "Sales",
		Domains:           []string{"salesforce.com", "linkedin.com", "outlook.office.com", "zoom.us", "docusign.com"},
		WorkHourStart:     8,
		WorkHourEnd:       18,
		BytesSentMean:     1800,
		BytesReceivedMean: 32000,
		UserAgents:        []string{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/124.0"},
	},
	{
		Name:              "HR",
		Domains:           []string{"workday.com", "linkedin.com", "outlook.office.com", "glassdoor.com"},
		WorkHourStart:     9,
		WorkHourEnd:       17,
		BytesSentMean:     1200,
		BytesReceivedMean: 22000,
		UserAgents:        []string{"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_4) Safari/605.1.15"},
	},
}

// FabricatedDomains is sampled for the 10% of normal requests that go
// outside a user's department domain list.
var FabricatedDomains = []string{
	"weather.com", "news.ycombinator.com", "amazon.com", "wikipedia.org", "dropbox.com",
}

// UserProfile is one synthetic employee.
type UserProfile struct {
	Username          string
	Department        string
	SrcIP             string
	DailyMeanRequests float64
}
