package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/jobs"
)

const wellfoundOrigin = "https://wellfound.com"

var (
	wellfoundJobID       = regexp.MustCompile(`/jobs/(\d+)-`)
	wellfoundCompanySize = regexp.MustCompile(`(\d+[-–]\d+|\d+\+)\s*Employees`)
)

// wellfoundExtractor parses Wellfound search results. The page groups jobs
// under company cards, so one card can yield several records sharing the
// company metadata and description.
type wellfoundExtractor struct {
	logger *zap.Logger
}

func (e *wellfoundExtractor) Source() string { return SourceWellfound }

func (e *wellfoundExtractor) Extract(snapshot string) ([]jobs.RawJob, error) {
	doc, err := parseSnapshot(snapshot)
	if err != nil {
		return nil, err
	}

	var records []jobs.RawJob
	eachListing(doc, `[data-test="StartupResult"]`, e.logger, func(_ int, card *goquery.Selection) {
		records = append(records, e.extractCard(card)...)
	})
	return records, nil
}

func (e *wellfoundExtractor) extractCard(card *goquery.Selection) []jobs.RawJob {
	header := card.Find(`[data-testid="startup-header"]`).First()
	companySel := header.Find(`a[href^="/company/"]`).First()
	company := strings.TrimSpace(companySel.Find("h2").First().Text())
	if company == "" {
		company = "Unknown Company"
	}
	companyURL := absoluteURL(wellfoundOrigin, companySel.AttrOr("href", ""))
	description := strings.TrimSpace(header.Parent().Find("span.text-xs.text-neutral-1000").First().Text())

	var companySize string
	if m := wellfoundCompanySize.FindStringSubmatch(card.Find("span.text-xs.italic.text-neutral-500").Text()); m != nil {
		companySize = m[1]
	}
	companyStatus := strings.TrimSpace(card.Find(".text-pop-green").First().Text())

	var records []jobs.RawJob
	card.Find(`.min-h-\[50px\].items-end.justify-between`).Each(func(_ int, row *goquery.Selection) {
		titleSel := row.Find("a.text-sm.font-semibold.text-brand-burgandy").First()
		title := strings.TrimSpace(titleSel.Text())
		if title == "" {
			return
		}
		jobPath := titleSel.AttrOr("href", "")

		jobType := strings.TrimSpace(row.Find(".whitespace-nowrap.rounded-lg.bg-accent-yellow-100").First().Text())
		if jobType == "" {
			jobType = "Full-time"
		}

		location := firstSpanMatching(row, func(text string) bool {
			return strings.Contains(text, "Remote") ||
				strings.Contains(text, "•") ||
				strings.Contains(text, "United States") ||
				strings.Contains(text, "Everywhere")
		})
		experience := firstSpanMatching(row, func(text string) bool {
			return strings.Contains(text, "years") || strings.Contains(text, "exp")
		})

		var jobID string
		if m := wellfoundJobID.FindStringSubmatch(jobPath); m != nil {
			jobID = m[1]
		}

		records = append(records, jobs.RawJob{
			JobID:         jobID,
			Title:         title,
			Company:       company,
			Location:      location,
			JobTypes:      []string{jobType},
			Experience:    experience,
			Description:   description,
			PostedDate:    strings.TrimSpace(row.Find(".text-xs.lowercase.text-dark-a").First().Text()),
			SourceURL:     absoluteURL(wellfoundOrigin, jobPath),
			CompanyURL:    companyURL,
			CompanySize:   companySize,
			CompanyStatus: companyStatus,
			Skills:        jobs.MatchSkills(title, description),
			HasEasyApply:  true,
			Source:        SourceWellfound,
		})
	})
	return records
}

// firstSpanMatching returns the text of the first pl-1 text-xs span whose
// content satisfies the predicate. Wellfound does not label these spans, so
// content sniffing is the only way to tell location from experience.
func firstSpanMatching(row *goquery.Selection, match func(string) bool) string {
	var found string
	row.Find("span.pl-1.text-xs").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if match(text) {
			found = text
			return false
		}
		return true
	})
	return found
}
