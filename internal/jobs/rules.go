package jobs

import "strings"

// skillLexicon is the fixed list of technology keywords used for inferred
// skill matching. Matching is a lowercase substring test, so multi-word
// entries like "spring boot" match as written.
var skillLexicon = []string{
	"javascript", "python", "java", "react", "angular", "vue", "node.js",
	"express", "mongodb", "mysql", "postgresql", "sql", "nosql", "redis",
	"docker", "kubernetes", "aws", "azure", "gcp", "git", "html", "css",
	"sass", "less", "webpack", "babel", "typescript", "php", "laravel",
	"symfony", "django", "flask", "spring boot", "microservices", "rest api",
	"graphql", "agile", "scrum", "devops", "ci/cd", "jenkins", "terraform",
	"ansible", "linux", "ubuntu", "centos", "nginx", "apache",
}

// experienceRule pairs an experience level with the keywords that imply it.
type experienceRule struct {
	level    ExperienceLevel
	keywords []string
}

// experienceRules is scanned in order and the first matching group wins.
// Internship precedes the seniority groups so that a title like
// "Senior Intern" still classifies as an internship.
var experienceRules = []experienceRule{
	{ExperienceInternship, []string{"intern", "internship"}},
	{ExperienceEntry, []string{"entry", "junior", "fresher", "associate"}},
	{ExperienceSenior, []string{"senior", "lead", "principal"}},
	{ExperienceManagement, []string{"manager", "director", "head of"}},
}

// remoteCues and hybridCues drive work-mode classification over the
// lowercased location and job-type strings.
var (
	remoteCues = []string{"remote", "work from home"}
	hybridCues = []string{"hybrid"}
)

// classifyWorkMode derives the work mode from location and job-type text.
// Remote cues win over hybrid; the default is on-site.
func classifyWorkMode(location string, jobTypes []string) WorkMode {
	text := strings.ToLower(location + " " + strings.Join(jobTypes, " "))
	for _, cue := range remoteCues {
		if strings.Contains(text, cue) {
			return WorkModeRemote
		}
	}
	for _, cue := range hybridCues {
		if strings.Contains(text, cue) {
			return WorkModeHybrid
		}
	}
	return WorkModeOnSite
}

// classifyExperience derives the experience level from title and description.
// No matching group defaults to mid level.
func classifyExperience(title, description string) ExperienceLevel {
	text := strings.ToLower(title + " " + description)
	for _, rule := range experienceRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.level
			}
		}
	}
	return ExperienceMid
}

// MatchSkills scans the given text fragments against the skill lexicon and
// returns matched entries with duplicates removed, in lexicon order.
func MatchSkills(fragments ...string) []string {
	text := strings.ToLower(strings.Join(fragments, " "))
	var found []string
	for _, skill := range skillLexicon {
		if strings.Contains(text, skill) {
			found = append(found, skill)
		}
	}
	return found
}
