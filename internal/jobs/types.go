// Package jobs defines the job data model shared across subsystems and the
// normalization rules that turn source-shaped records into canonical documents.
package jobs

import "time"

// WorkMode classifies where a job is performed.
type WorkMode string

// Work mode values persisted in the job store.
const (
	WorkModeRemote WorkMode = "Remote"
	WorkModeHybrid WorkMode = "Hybrid"
	WorkModeOnSite WorkMode = "On-site"
)

// ExperienceLevel classifies seniority inferred from the posting text.
type ExperienceLevel string

// Experience level values persisted in the job store.
const (
	ExperienceInternship ExperienceLevel = "Internship"
	ExperienceEntry      ExperienceLevel = "Entry Level"
	ExperienceMid        ExperienceLevel = "Mid Level"
	ExperienceSenior     ExperienceLevel = "Senior Level"
	ExperienceManagement ExperienceLevel = "Management"
)

// NotSpecified is the sentinel stored for optional identity fields that the
// source did not provide.
const NotSpecified = "Not specified"

// RawJob is the source-shaped record produced by an extractor. Fields are
// best-effort: any of them may be empty depending on the source layout.
type RawJob struct {
	JobID         string
	Title         string
	Company       string
	Location      string
	JobTypes      []string
	Experience    string
	Description   string
	Summary       string
	PostedDate    string
	SourceURL     string
	CompanyURL    string
	CompanyLogo   string
	CompanySize   string
	CompanyStatus string
	CompanyRating *float64
	Requirements  []string
	Benefits      []string
	Skills        []string
	HasEasyApply  bool
	Source        string
}

// Quality summarizes how complete a document is over the fixed field
// checklist {title, company, location, description, jobTypes, postedDate}.
type Quality struct {
	Score         int      `json:"score"`
	FilledFields  int      `json:"filled_fields"`
	TotalFields   int      `json:"total_fields"`
	MissingFields []string `json:"missing_fields"`
}

// Document is the canonical, persisted shape of a job posting. It is created
// once by Normalize and never mutated afterwards.
type Document struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`

	Description  string   `json:"description"`
	Summary      string   `json:"summary"`
	Requirements []string `json:"requirements"`

	JobTypes        []string        `json:"job_types"`
	WorkMode        WorkMode        `json:"work_mode"`
	ExperienceLevel ExperienceLevel `json:"experience_level"`

	CompanyRating *float64 `json:"company_rating,omitempty"`
	CompanySize   string   `json:"company_size,omitempty"`
	CompanyStatus string   `json:"company_status,omitempty"`
	CompanyURL    string   `json:"company_url,omitempty"`
	CompanyLogo   string   `json:"company_logo,omitempty"`
	Industry      string   `json:"industry,omitempty"`

	SourceURL string `json:"source_url,omitempty"`
	JobID     string `json:"job_id,omitempty"`
	Source    string `json:"source"`

	Skills         []string `json:"skills"`
	SearchKeywords []string `json:"search_keywords"`
	PostedDate     string   `json:"posted_date,omitempty"`
	HasEasyApply   bool     `json:"has_easy_apply"`

	Quality Quality `json:"quality"`

	ScrapedAt time.Time `json:"scraped_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidationError reports a record that is missing a mandatory field. It is a
// terminal per-record outcome, distinguishable from persistence failures.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	msg := "job record is missing mandatory fields:"
	for _, f := range e.Missing {
		msg += " " + f
	}
	return msg
}

// Validation is the result of re-checking a document before persistence.
// Errors make the document unsaveable; warnings are informational only.
type Validation struct {
	Valid    bool
	Errors   []string
	Warnings []string
	Score    int
}
