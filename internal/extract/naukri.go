package extract

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/jobs"
)

const naukriOrigin = "https://www.naukri.com"

// naukriExtractor parses Naukri search-result pages. Listings are
// `.srp-jobtuple-wrapper` cards; most fields carry a text-content fallback
// because the layout periodically swaps attribute placement.
type naukriExtractor struct {
	logger *zap.Logger
}

func (e *naukriExtractor) Source() string { return SourceNaukri }

func (e *naukriExtractor) Extract(snapshot string) ([]jobs.RawJob, error) {
	doc, err := parseSnapshot(snapshot)
	if err != nil {
		return nil, err
	}

	var records []jobs.RawJob
	eachListing(doc, ".srp-jobtuple-wrapper", e.logger, func(i int, card *goquery.Selection) {
		record, ok := e.extractCard(card)
		if !ok {
			e.logger.Debug("listing without title skipped", zap.Int("index", i))
			return
		}
		records = append(records, record)
	})
	return records, nil
}

func (e *naukriExtractor) extractCard(card *goquery.Selection) (jobs.RawJob, bool) {
	titleSel := card.Find(".title").First()
	title := strings.TrimSpace(titleSel.Text())
	if title == "" {
		return jobs.RawJob{}, false
	}

	companySel := card.Find(".comp-name").First()
	company := strings.TrimSpace(companySel.Text())
	if company == "" {
		company = "Unknown Company"
	}

	description := strings.TrimSpace(card.Find(".job-desc").First().Text())

	var rating *float64
	if text := strings.TrimSpace(card.Find(".rating .main-2").First().Text()); text != "" {
		if value, err := strconv.ParseFloat(text, 64); err == nil {
			rating = &value
		}
	}

	var tagSkills []string
	card.Find(".tags-gt .tag-li").Each(func(_ int, tag *goquery.Selection) {
		if skill := strings.TrimSpace(tag.Text()); skill != "" {
			tagSkills = append(tagSkills, skill)
		}
	})
	// Tags are authoritative; the lexicon scan is only an inference fallback.
	skills := tagSkills
	if len(skills) == 0 {
		skills = jobs.MatchSkills(title, description)
	}

	return jobs.RawJob{
		JobID:         card.AttrOr("data-job-id", ""),
		Title:         title,
		Company:       company,
		Location:      attrOrText(card.Find(".locWdth").First(), "title"),
		JobTypes:      []string{"Full-time"},
		Experience:    attrOrText(card.Find(".expwdth").First(), "title"),
		Description:   description,
		PostedDate:    strings.TrimSpace(card.Find(".job-post-day").First().Text()),
		SourceURL:     absoluteURL(naukriOrigin, titleSel.AttrOr("href", "")),
		CompanyURL:    absoluteURL(naukriOrigin, companySel.AttrOr("href", "")),
		CompanyLogo:   card.Find(".logoImage").First().AttrOr("src", ""),
		CompanyRating: rating,
		Requirements:  skills,
		Skills:        skills,
		HasEasyApply:  true,
		Source:        SourceNaukri,
	}, true
}
