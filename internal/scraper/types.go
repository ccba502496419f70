// Package scraper defines core types shared across subsystems.
package scraper

import (
	"net/http"
	"time"
)

// Leader is one head of state as returned by the leaders directory,
// enriched with a biography once one has been resolved.
type Leader struct {
	ID           string  `json:"id"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	BirthDate    string  `json:"birth_date,omitempty"`
	DeathDate    string  `json:"death_date,omitempty"`
	PlaceOfBirth string  `json:"place_of_birth,omitempty"`
	WikipediaURL string  `json:"wikipedia_url"`
	StartMandate string  `json:"start_mandate,omitempty"`
	EndMandate   string  `json:"end_mandate,omitempty"`
	Country      string  `json:"country"`
	Biography    *string `json:"biography"`
}

// DisplayName joins the leader's first and last name for log lines.
func (l Leader) DisplayName() string {
	switch {
	case l.FirstName == "":
		return l.LastName
	case l.LastName == "":
		return l.FirstName
	default:
		return l.FirstName + " " + l.LastName
	}
}

// Biography is the cached extraction result for one leader. An empty
// Content is a valid entry: it records that the source page was scanned
// and no qualifying paragraph was found, so later runs skip the page.
type Biography struct {
	LeaderID string `json:"leader_id"`
	Content  string `json:"content"`
}

// Dataset maps a country code to its leaders in directory order.
type Dataset map[string][]Leader

// CountryOutcome is the terminal state of one country within a run.
type CountryOutcome string

// Country outcomes recorded in the run report.
const (
	CountryDone   CountryOutcome = "done"
	CountryFailed CountryOutcome = "failed"
)

// LeaderOutcome is the terminal state of one leader within a run.
type LeaderOutcome string

// Leader outcomes recorded in the run report.
const (
	LeaderResolved LeaderOutcome = "resolved"
	LeaderSkipped  LeaderOutcome = "skipped"
	LeaderFailed   LeaderOutcome = "failed"
)

// RunReport summarizes one pipeline run.
type RunReport struct {
	RunID           string    `json:"run_id"`
	Started         time.Time `json:"started_at"`
	Finished        time.Time `json:"finished_at"`
	CountriesDone   int       `json:"countries_done"`
	CountriesFailed int       `json:"countries_failed"`
	LeadersResolved int       `json:"leaders_resolved"`
	LeadersSkipped  int       `json:"leaders_skipped"`
	LeadersFailed   int       `json:"leaders_failed"`
	OutputURI       string    `json:"output_uri"`
}

// FetchRequest captures everything needed to fetch a URL.
type FetchRequest struct {
	URL     string
	Headers http.Header
}

// FetchResponse is the result returned by a Fetcher implementation.
// A non-2xx status is reported here, not as an error; classification
// is the caller's job.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}
