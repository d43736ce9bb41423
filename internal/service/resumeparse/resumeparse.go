// Package resumeparse derives structured résumé fields from extracted
// plain text using fixed keyword vocabularies.
package resumeparse

import (
	"sort"
	"strings"
)

var skillVocabulary = func() []string {
	groups := [][]string{
		// programming languages
		{"python", "javascript", "java", "c++", "c#", "ruby", "php", "swift", "kotlin", "go", "rust", "typescript"},
		// frameworks
		{"react", "angular", "vue", "django", "flask", "fastapi", "express", "spring", "laravel", "rails"},
		// databases
		{"mysql", "postgresql", "mongodb", "redis", "sqlite", "oracle", "cassandra"},
		// cloud & tooling
		{"aws", "azure", "gcp", "docker", "kubernetes", "jenkins", "git", "gitlab", "github"},
		// concepts
		{"machine learning", "data science", "blockchain", "api", "microservices", "devops", "agile", "scrum"},
	}
	var all []string
	for _, g := range groups {
		all = append(all, g...)
	}
	return all
}()

var experienceVerbs = []string{
	"worked", "developed", "managed", "led", "created", "designed",
	"implemented", "built", "maintained", "deployed",
}

var educationWords = []string{
	"university", "college", "degree", "bachelor", "master", "phd",
	"diploma", "certification", "institute",
}

// Skills returns the deduplicated, title-cased skills found in text,
// sorted for stable output.
func Skills(text string) []string {
	lower := strings.ToLower(text)
	seen := map[string]bool{}
	var found []string
	for _, skill := range skillVocabulary {
		if strings.Contains(lower, skill) {
			title := titleCase(skill)
			if !seen[title] {
				seen[title] = true
				found = append(found, title)
			}
		}
	}
	sort.Strings(found)
	return found
}

// Experience returns up to 5 lines that read like work-experience bullet
// points: long enough to carry content, containing an action verb, and
// not an education line.
func Experience(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) <= 30 {
			continue
		}
		lower := strings.ToLower(line)
		if !containsAny(lower, experienceVerbs) {
			continue
		}
		if containsAny(lower, []string{"university", "college", "school", "education"}) {
			continue
		}
		out = append(out, line)
		if len(out) == 5 {
			break
		}
	}
	return out
}

// Education returns up to 3 lines mentioning an education keyword.
func Education(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) <= 15 {
			continue
		}
		if !containsAny(strings.ToLower(line), educationWords) {
			continue
		}
		out = append(out, line)
		if len(out) == 3 {
			break
		}
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
