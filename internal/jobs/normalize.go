package jobs

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// qualityFields is the fixed checklist that the quality score is computed
// over. Field names match the persisted document shape.
var qualityFields = []string{
	"title", "company", "location", "description", "jobTypes", "postedDate",
}

const summaryLimit = 100

// Normalize converts a source-shaped record into a canonical document.
// It fails with *ValidationError when the sanitized title or company is
// empty; every other shortfall degrades to defaults, warnings or a lower
// quality score. All timestamps are stamped with now and never touched again.
func Normalize(raw RawJob, now time.Time) (Document, error) {
	title := sanitize(raw.Title)
	company := sanitize(raw.Company)
	location := sanitize(raw.Location)
	description := sanitize(raw.Description)
	postedDate := sanitize(raw.PostedDate)
	jobTypes := sanitizeAll(raw.JobTypes)

	var missing []string
	if title == "" {
		missing = append(missing, "title")
	}
	if company == "" {
		missing = append(missing, "company")
	}
	if len(missing) > 0 {
		return Document{}, &ValidationError{Missing: missing}
	}

	quality := scoreQuality(title, company, location, description, postedDate, jobTypes)

	if location == "" {
		location = NotSpecified
	}

	doc := Document{
		Title:        title,
		Company:      company,
		Location:     location,
		Description:  description,
		Summary:      summarize(sanitize(raw.Summary), description),
		Requirements: sanitizeAll(raw.Requirements),

		JobTypes:        jobTypes,
		WorkMode:        classifyWorkMode(location, jobTypes),
		ExperienceLevel: classifyExperience(title, description),

		CompanyRating: raw.CompanyRating,
		CompanySize:   sanitize(raw.CompanySize),
		CompanyStatus: sanitize(raw.CompanyStatus),
		CompanyURL:    sanitize(raw.CompanyURL),
		CompanyLogo:   sanitize(raw.CompanyLogo),

		SourceURL: sanitize(raw.SourceURL),
		JobID:     sanitize(raw.JobID),
		Source:    sanitize(raw.Source),

		Skills:         MatchSkills(title, description, strings.Join(raw.Requirements, " ")),
		SearchKeywords: searchKeywords(title, company, location),
		PostedDate:     postedDate,
		HasEasyApply:   raw.HasEasyApply,

		Quality: quality,

		ScrapedAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return doc, nil
}

// Validate re-checks a document the way the persistence gateway does before
// writing. Missing title or company are hard errors; an out-of-range rating
// or a low quality score only produce warnings.
func Validate(doc Document) Validation {
	v := Validation{Score: doc.Quality.Score}
	if doc.Title == "" {
		v.Errors = append(v.Errors, "title is required")
	}
	if doc.Company == "" {
		v.Errors = append(v.Errors, "company is required")
	}
	if doc.CompanyRating != nil && (*doc.CompanyRating < 0 || *doc.CompanyRating > 5) {
		v.Warnings = append(v.Warnings, fmt.Sprintf("company rating %.1f outside [0,5]", *doc.CompanyRating))
	}
	if doc.Quality.Score < 50 {
		v.Warnings = append(v.Warnings, "low data quality score")
	}
	v.Valid = len(v.Errors) == 0
	return v
}

// sanitize trims the string and collapses internal whitespace runs to a
// single space. Empty-after-trim becomes the empty string.
func sanitize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func sanitizeAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if clean := sanitize(item); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

// summarize prefers the source-provided summary and otherwise derives one
// from the description, truncated at summaryLimit runes with an ellipsis.
func summarize(summary, description string) string {
	if summary != "" {
		return summary
	}
	runes := []rune(description)
	if len(runes) <= summaryLimit {
		return description
	}
	return string(runes[:summaryLimit]) + "..."
}

func scoreQuality(title, company, location, description, postedDate string, jobTypes []string) Quality {
	present := map[string]bool{
		"title":       title != "",
		"company":     company != "",
		"location":    location != "",
		"description": description != "",
		"jobTypes":    len(jobTypes) > 0,
		"postedDate":  postedDate != "",
	}
	q := Quality{TotalFields: len(qualityFields)}
	for _, field := range qualityFields {
		if present[field] {
			q.FilledFields++
		} else {
			q.MissingFields = append(q.MissingFields, field)
		}
	}
	q.Score = int(math.Round(float64(q.FilledFields) / float64(q.TotalFields) * 100))
	return q
}

// searchKeywords collects lowercase tokens of length >= 3 from the title and
// location plus the full company name, deduplicated in insertion order.
func searchKeywords(title, company, location string) []string {
	seen := make(map[string]struct{})
	var keywords []string
	add := func(word string) {
		if _, dup := seen[word]; dup {
			return
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
	}
	for _, word := range strings.Fields(strings.ToLower(title)) {
		if len(word) >= 3 {
			add(word)
		}
	}
	add(strings.ToLower(company))
	if location != "" && location != NotSpecified {
		for _, word := range strings.Fields(strings.ToLower(location)) {
			if len(word) >= 3 {
				add(word)
			}
		}
	}
	return keywords
}
