// Package usecase contains the scoring engine and the run orchestration that
// ties the portal scrapers to filtering, reporting and delivery.
package usecase

import (
	"regexp"
	"sort"
	"strings"

	"tenderscan/internal/domain"
)

const (
	workBaseScore    = 40
	workExtraScore   = 5
	workExtraCap     = 20
	locationScore    = 20
	budgetScore      = 15
	budgetPartial    = 8
	portalBonusScore = 15
)

// specialtyPortals are the defence-sector sources whose tenders get a
// priority bonus.
var specialtyPortals = map[string]bool{
	domain.PortalHSL:     true,
	domain.PortalDefproc: true,
}

// ScoreTender computes the 0-100 relevance score of t against the profile
// and records the reasons on the tender itself.
func ScoreTender(t *domain.Tender, profile domain.Profile) {
	corpus := strings.ToLower(strings.Join([]string{
		t.Title, t.Description, t.Category, t.Department,
	}, " "))

	t.MatchScore = 0
	t.MatchedKeywords = nil
	t.BudgetInRange = nil
	t.LocationMatch = false

	// A single exclude hit zeroes the tender; only the exclusion reasons
	// survive as tags.
	if excluded := hitsIn(corpus, profile.ExcludeKeywords); len(excluded) > 0 {
		for _, kw := range excluded {
			t.MatchedKeywords = append(t.MatchedKeywords, "EXCLUDED:"+kw)
		}
		return
	}

	score := 0

	workHits := hitsIn(corpus, profile.WorkKeywords)
	if len(workHits) > 0 {
		bonus := workExtraScore * (len(workHits) - 1)
		if bonus > workExtraCap {
			bonus = workExtraCap
		}
		score += workBaseScore + bonus
		t.MatchedKeywords = append(t.MatchedKeywords, workHits...)
	}

	// Locations match on word boundaries against a narrower corpus so that
	// short codes like "AP" cannot match inside unrelated words.
	locationCorpus := strings.ToLower(strings.Join([]string{
		t.Location, t.Department, t.Title,
	}, " "))
	locationHits := wordHitsIn(locationCorpus, profile.Locations)
	if len(locationHits) > 0 {
		score += locationScore
		t.LocationMatch = true
		for _, kw := range locationHits {
			t.MatchedKeywords = append(t.MatchedKeywords, "LOC:"+kw)
		}
	}

	switch {
	case t.BudgetMax != nil:
		inRange := profile.BudgetMin <= *t.BudgetMax && *t.BudgetMax <= profile.BudgetMax
		t.BudgetInRange = &inRange
		if inRange {
			score += budgetScore
		}
	case t.BudgetMin != nil:
		// Only the floor is published; partial credit when it still fits.
		fits := *t.BudgetMin <= profile.BudgetMax
		t.BudgetInRange = &fits
		if fits {
			score += budgetPartial
		}
	}

	if specialtyPortals[t.Portal] {
		score += portalBonusScore
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	t.MatchScore = score
}

// FilterAndSort keeps tenders scoring at least minScore and orders them by
// score descending, then deadline ascending with unknown deadlines last. The
// sort is stable.
func FilterAndSort(tenders []domain.Tender, minScore int) []domain.Tender {
	var kept []domain.Tender
	for _, t := range tenders {
		if t.MatchScore >= minScore {
			kept = append(kept, t)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].MatchScore != kept[j].MatchScore {
			return kept[i].MatchScore > kept[j].MatchScore
		}
		di, dj := kept[i].Deadline, kept[j].Deadline
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return di.Before(*dj)
		}
	})

	return kept
}

// hitsIn returns the keywords present in corpus as substrings, in profile
// order. Corpus must already be lowercased.
func hitsIn(corpus string, keywords []string) []string {
	var hits []string
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if strings.Contains(corpus, strings.ToLower(kw)) {
			hits = append(hits, kw)
		}
	}
	return hits
}

// wordHitsIn returns the keywords present in corpus as whole words or
// phrases, in profile order.
func wordHitsIn(corpus string, keywords []string) []string {
	var hits []string
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(strings.ToLower(kw)) + `\b`)
		if err != nil {
			continue
		}
		if re.MatchString(corpus) {
			hits = append(hits, kw)
		}
	}
	return hits
}
