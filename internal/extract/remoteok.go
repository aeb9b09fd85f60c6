package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/jobs"
)

const remoteOKOrigin = "https://remoteok.io"

// remoteOKExtractor parses RemoteOK listing rows. The board is all-remote,
// so location is fixed and skills come straight from the tag column.
type remoteOKExtractor struct {
	logger *zap.Logger
}

func (e *remoteOKExtractor) Source() string { return SourceRemoteOK }

func (e *remoteOKExtractor) Extract(snapshot string) ([]jobs.RawJob, error) {
	doc, err := parseSnapshot(snapshot)
	if err != nil {
		return nil, err
	}

	var records []jobs.RawJob
	eachListing(doc, "tr.job", e.logger, func(i int, row *goquery.Selection) {
		record, ok := e.extractRow(row)
		if !ok {
			e.logger.Debug("listing without title skipped", zap.Int("index", i))
			return
		}
		records = append(records, record)
	})
	return records, nil
}

func (e *remoteOKExtractor) extractRow(row *goquery.Selection) (jobs.RawJob, bool) {
	title := strings.TrimSpace(row.Find(".company h2").First().Text())
	if title == "" {
		return jobs.RawJob{}, false
	}

	company := strings.TrimSpace(row.Find(".company h3").First().Text())
	if company == "" {
		company = "Remote Company"
	}

	var skills []string
	row.Find(".tags .tag").Each(func(_ int, tag *goquery.Selection) {
		if skill := strings.TrimSpace(tag.Text()); skill != "" {
			skills = append(skills, skill)
		}
	})

	href := row.Find("a.preventLink").First().AttrOr("href", "")
	jobID := row.AttrOr("data-id", "")
	if jobID == "" && href != "" {
		parts := strings.Split(strings.TrimSuffix(href, "/"), "/")
		jobID = parts[len(parts)-1]
	}

	dateSel := row.Find(".time time").First()

	return jobs.RawJob{
		JobID:        jobID,
		Title:        title,
		Company:      company,
		Location:     "Remote",
		JobTypes:     []string{"Full-time"},
		Description:  strings.Join(skills, ", "),
		Summary:      fmt.Sprintf("%s at %s - Remote position", title, company),
		PostedDate:   attrOrText(dateSel, "datetime"),
		SourceURL:    absoluteURL(remoteOKOrigin, href),
		Requirements: skills,
		Skills:       skills,
		HasEasyApply: true,
		Source:       SourceRemoteOK,
	}, true
}
