// Package resolver ranks known repos against a free-text query, combining
// fuzzy match scores with a recency/frequency bonus. The create pipeline does
// not call it: it resolves repo_selector by exact id, name or path only.
package resolver

import (
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/boshu2/taskboard/internal/store"
	"github.com/boshu2/taskboard/internal/types"
)

const repoSelectionUsagePrefix = "repo-select:"

// RepoSelectionCommandID builds the command_usage key used to track how
// often a repo is picked via selector ranking, for the recency/frequency
// bonus in RankRepos.
func RepoSelectionCommandID(repoID string) string {
	return repoSelectionUsagePrefix + repoID
}

// UsageByRepoID filters a flat command-usage list down to the repo-selection
// entries, keyed by repo id.
func UsageByRepoID(freqs []store.CommandFrequency) map[string]store.CommandFrequency {
	out := make(map[string]store.CommandFrequency, len(freqs))
	for _, f := range freqs {
		if repoID, ok := strings.CutPrefix(f.CommandID, repoSelectionUsagePrefix); ok {
			out[repoID] = f
		}
	}
	return out
}

type candidate struct {
	repoIdx int
	text    string
	bonus   float64
}

// repoMatchCandidates produces the weighted set of strings a query can match
// against for one repo: its display name, full path, basename, and the last
// two/three path segments joined, each with its own relevance weight.
func repoMatchCandidates(repoIdx int, repo types.Repo) []candidate {
	seen := make(map[string]bool)
	var out []candidate
	add := func(value string, bonus float64) {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return
		}
		key := strings.ToLower(trimmed)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, candidate{repoIdx: repoIdx, text: trimmed, bonus: bonus})
	}

	add(repo.Name, 90)
	add(repo.Path, 65)

	base := filepath.Base(repo.Path)
	add(base, 85)

	var segments []string
	for _, seg := range strings.Split(filepath.ToSlash(repo.Path), "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	if len(segments) >= 2 {
		add(segments[len(segments)-2]+"/"+segments[len(segments)-1], 88)
	}
	if len(segments) >= 3 {
		add(segments[len(segments)-3]+"/"+segments[len(segments)-2]+"/"+segments[len(segments)-1], 92)
	}

	return out
}

// recencyFrequencyBonus rewards repos picked often and recently: a capped
// linear frequency term (use count, capped at 20) plus a decay term for
// recency, scaled by weight.
func recencyFrequencyBonus(freq store.CommandFrequency, now time.Time, weight float64) float64 {
	frequencyTerm := float64(freq.UseCount)
	if frequencyTerm > 20 {
		frequencyTerm = 20
	}
	recencyTerm := 0.0
	if freq.LastUsed != nil {
		age := now.Sub(*freq.LastUsed).Hours() / 24
		if age < 0 {
			age = 0
		}
		recencyTerm = 10 / (1 + age)
	}
	return (frequencyTerm + recencyTerm) * weight
}

// RankRepos ranks repos against query, returning their indices best match
// first. An empty query ranks purely by usage bonus, preserving registration
// order among ties. Repos with no fuzzy match against any candidate string
// are excluded when query is non-empty.
func RankRepos(query string, repos []types.Repo, usage map[string]store.CommandFrequency, now time.Time) []int {
	if len(repos) == 0 {
		return nil
	}

	type scored struct {
		idx   int
		score float64
	}
	var ranked []scored

	normalized := strings.TrimSpace(query)
	if normalized == "" {
		for i, repo := range repos {
			bonus := 0.0
			if freq, ok := usage[repo.ID]; ok {
				bonus = recencyFrequencyBonus(freq, now, 0.35)
			}
			ranked = append(ranked, scored{idx: i, score: bonus})
		}
	} else {
		var candidates []candidate
		for i, repo := range repos {
			candidates = append(candidates, repoMatchCandidates(i, repo)...)
		}
		texts := make([]string, len(candidates))
		for i, c := range candidates {
			texts[i] = c.text
		}
		matches := fuzzy.Find(normalized, texts)
		sort.Sort(matches)

		best := make(map[int]float64)
		for _, m := range matches {
			c := candidates[m.Index]
			score := float64(m.Score) + c.bonus
			if current, ok := best[c.repoIdx]; !ok || score > current {
				best[c.repoIdx] = score
			}
		}
		for repoIdx, score := range best {
			bonus := 0.0
			if freq, ok := usage[repos[repoIdx].ID]; ok {
				bonus = recencyFrequencyBonus(freq, now, 0.35)
			}
			ranked = append(ranked, scored{idx: repoIdx, score: score + bonus})
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].idx < ranked[j].idx
	})

	out := make([]int, len(ranked))
	for i, r := range ranked {
		out[i] = r.idx
	}
	return out
}
