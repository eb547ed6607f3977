// ABOUTME: Tiered account search ranking over the account directory
// ABOUTME: Selects basic, multi-term, fuzzy, or direct-id strategy and ranks by priority then score
package search

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/harper/discovery/internal/logging"
	"github.com/harper/discovery/internal/models"
)

// Directory is the account source the ranker searches
type Directory interface {
	// Candidates returns live accounts with a name and type, modified on or after cutoff
	Candidates(ctx context.Context, cutoff time.Time) ([]models.Account, error)
	// ByID returns a live account by primary key, or nil
	ByID(ctx context.Context, id string) (*models.Account, error)
}

// Scores and weights of the ranking tiers
const (
	ScorePrefix    = 100.0
	ScoreSubstring = 70.0
	ScorePhonetic  = 60.0
	WeightName     = 100.0
	WeightIndustry = 80.0
)

// NoThreshold disables the relevance threshold when set as Options.MinRelevance
const NoThreshold = -1.0

// DefaultMinSimilarity is the similarity a field needs to enter the
// similarity tier when the matcher declares no floor of its own
const DefaultMinSimilarity = 0.8

// directID matches the account key format: prefix 001, 15 or 18 alphanumerics
var directID = regexp.MustCompile(`^001[A-Za-z0-9]{12}([A-Za-z0-9]{3})?$`)

// Options tunes a Ranker
type Options struct {
	Tenant         string
	Cutoff         time.Time
	MinRelevance   float64
	MinSimilarity  float64
	MaxResults     int
	FuzzyMinLength int
	MaxTerms       int
	Cache          *Cache
	Logger         *log.Logger
}

// DefaultOptions returns the standard ranking parameters
func DefaultOptions() Options {
	return Options{
		Tenant:         "default",
		Cutoff:         time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		MinRelevance:   30,
		MaxResults:     20,
		FuzzyMinLength: 6,
		MaxTerms:       3,
	}
}

// Ranker ranks directory accounts against free-text queries
type Ranker struct {
	dir     Directory
	matcher Matcher
	opts    Options
	logger  *log.Logger
}

// NewRanker creates a Ranker. Zero-valued options take their defaults; a zero
// MinSimilarity takes the matcher's floor. Use NoThreshold to keep every
// scored match.
func NewRanker(dir Directory, matcher Matcher, opts Options) *Ranker {
	defaults := DefaultOptions()
	if opts.Tenant == "" {
		opts.Tenant = defaults.Tenant
	}
	if opts.Cutoff.IsZero() {
		opts.Cutoff = defaults.Cutoff
	}
	if opts.MinRelevance == 0 {
		opts.MinRelevance = defaults.MinRelevance
	}
	if opts.MinSimilarity <= 0 {
		opts.MinSimilarity = similarityFloor(matcher)
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = defaults.MaxResults
	}
	if opts.FuzzyMinLength <= 0 {
		opts.FuzzyMinLength = defaults.FuzzyMinLength
	}
	if opts.MaxTerms <= 0 {
		opts.MaxTerms = defaults.MaxTerms
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Ranker{dir: dir, matcher: matcher, opts: opts, logger: logger}
}

// Plan describes how a query will be ranked
type Plan struct {
	Strategy models.SearchStrategy
	Terms    []string
}

// SplitTerms splits a query on commas and whitespace, lowercased
func SplitTerms(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	return fields
}

// IsDirectID reports whether query is a well-formed account key
func IsDirectID(query string) bool {
	return directID.MatchString(strings.TrimSpace(query))
}

// PlanQuery selects the strategy for a query once. An empty plan (no terms)
// means the query yields no results.
func (r *Ranker) PlanQuery(query string) Plan {
	q := strings.TrimSpace(query)
	if IsDirectID(q) {
		return Plan{Strategy: models.StrategyDirect, Terms: []string{q}}
	}
	terms := SplitTerms(q)
	switch {
	case len(terms) == 0:
		return Plan{}
	case len(terms) > 1:
		return Plan{Strategy: models.StrategyMultiTerm, Terms: terms}
	case utf8.RuneCountInString(terms[0]) >= r.opts.FuzzyMinLength:
		return Plan{Strategy: models.StrategyFuzzy, Terms: terms}
	default:
		return Plan{Strategy: models.StrategyBasic, Terms: terms}
	}
}

// Search ranks accounts against query. Empty or unparseable queries return
// no results and no error.
func (r *Ranker) Search(ctx context.Context, query string) ([]models.AccountMatch, error) {
	plan := r.PlanQuery(query)
	if plan.Strategy == "" {
		return []models.AccountMatch{}, nil
	}
	if plan.Strategy == models.StrategyDirect {
		return r.direct(ctx, plan.Terms[0])
	}

	key := CacheKey(r.opts.Tenant, strings.Join(plan.Terms, " "), plan.Strategy)
	if cached, ok := r.opts.Cache.Get(key); ok {
		r.logger.Debug("search cache hit", "query", query, "strategy", plan.Strategy)
		return cached, nil
	}

	candidates, err := r.dir.Candidates(ctx, r.opts.Cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to load search candidates: %w", err)
	}

	var scored []models.AccountMatch
	switch plan.Strategy {
	case models.StrategyMultiTerm:
		scored = r.multiTerm(candidates, plan.Terms)
	case models.StrategyFuzzy:
		scored = r.fuzzy(candidates, plan.Terms[0])
	default:
		scored = r.basic(candidates, plan.Terms[0])
	}

	results := r.assemble(scored)
	r.opts.Cache.Set(key, results)

	r.logger.Debug("search ranked",
		"query", query,
		"strategy", plan.Strategy,
		"candidates", len(candidates),
		"results", len(results))
	return results, nil
}

func (r *Ranker) direct(ctx context.Context, id string) ([]models.AccountMatch, error) {
	account, err := r.dir.ByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account %s: %w", id, err)
	}
	if account == nil {
		return []models.AccountMatch{}, nil
	}
	return []models.AccountMatch{{
		Account:  *account,
		Score:    ScorePrefix,
		Priority: models.PriorityDirect,
		Strategy: models.StrategyDirect,
	}}, nil
}

// basic: name prefix beats name substring
func (r *Ranker) basic(candidates []models.Account, term string) []models.AccountMatch {
	var matches []models.AccountMatch
	for _, a := range candidates {
		name := strings.ToLower(a.Name)
		switch {
		case strings.HasPrefix(name, term):
			matches = append(matches, match(a, ScorePrefix, models.PriorityPrefix, models.StrategyBasic))
		case strings.Contains(name, term):
			matches = append(matches, match(a, ScoreSubstring, models.PrioritySubstring, models.StrategyBasic))
		}
	}
	return matches
}

// multiTerm: share of the first MaxTerms terms found in name, industry, or description
func (r *Ranker) multiTerm(candidates []models.Account, terms []string) []models.AccountMatch {
	if len(terms) > r.opts.MaxTerms {
		terms = terms[:r.opts.MaxTerms]
	}

	var matches []models.AccountMatch
	for _, a := range candidates {
		fields := []string{strings.ToLower(a.Name), strings.ToLower(a.Industry), strings.ToLower(a.Description)}
		matched := 0
		for _, term := range terms {
			for _, f := range fields {
				if strings.Contains(f, term) {
					matched++
					break
				}
			}
		}
		if matched == 0 {
			continue
		}
		score := float64(matched) / float64(len(terms)) * 100
		matches = append(matches, match(a, score, models.PriorityPrefix, models.StrategyMultiTerm))
	}
	return matches
}

// fuzzy: prefix tier, then similarity tier, then phonetic tier. A record
// lands in the strongest tier it qualifies for.
func (r *Ranker) fuzzy(candidates []models.Account, term string) []models.AccountMatch {
	termCode := r.matcher.PhoneticCode(term)

	var matches []models.AccountMatch
	for _, a := range candidates {
		name := strings.ToLower(a.Name)
		if strings.HasPrefix(name, term) {
			matches = append(matches, match(a, ScorePrefix, models.PriorityPrefix, models.StrategyFuzzy))
			continue
		}

		nameScore, nameOK := r.fieldScore(term, name, WeightName)
		industryScore, industryOK := r.fieldScore(term, strings.ToLower(a.Industry), WeightIndustry)
		score := max(nameScore, industryScore)
		if (nameOK || industryOK) && score >= r.opts.MinRelevance {
			matches = append(matches, match(a, roundScore(score), models.PrioritySimilar, models.StrategyFuzzy))
			continue
		}

		if termCode != "" && r.phoneticMatch(termCode, name) {
			matches = append(matches, match(a, ScorePhonetic, models.PriorityPhonetic, models.StrategyFuzzy))
		}
	}
	return matches
}

// fieldScore is the field weight on a substring hit, else similarity × weight.
// A field whose best similarity is under the floor does not match.
func (r *Ranker) fieldScore(term, field string, weight float64) (float64, bool) {
	if field == "" {
		return 0, false
	}
	if strings.Contains(field, term) {
		return weight, true
	}
	sim := r.similarity(term, field)
	if sim < r.opts.MinSimilarity {
		return 0, false
	}
	return sim * weight, true
}

// similarity is the best score of term against the whole field or any word in it
func (r *Ranker) similarity(term, field string) float64 {
	best := r.matcher.Similarity(term, field)
	for _, word := range words(field) {
		if s := r.matcher.Similarity(term, word); s > best {
			best = s
		}
	}
	return best
}

func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// phoneticMatch compares the term's code against the whole name and each word
func (r *Ranker) phoneticMatch(termCode, name string) bool {
	if r.matcher.PhoneticCode(name) == termCode {
		return true
	}
	for _, word := range words(name) {
		if r.matcher.PhoneticCode(word) == termCode {
			return true
		}
	}
	return false
}

// assemble applies the relevance threshold, keeps the best match per
// account, orders by priority, score, then name, and truncates
func (r *Ranker) assemble(scored []models.AccountMatch) []models.AccountMatch {
	best := make(map[string]models.AccountMatch, len(scored))
	for _, m := range scored {
		if m.Score < r.opts.MinRelevance {
			continue
		}
		if current, ok := best[m.Account.ID]; !ok || m.Better(current) {
			best[m.Account.ID] = m
		}
	}

	results := make([]models.AccountMatch, 0, len(best))
	for _, m := range best {
		results = append(results, m)
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Better(results[j]) != results[j].Better(results[i]) {
			return results[i].Better(results[j])
		}
		return results[i].Account.ID < results[j].Account.ID
	})

	if len(results) > r.opts.MaxResults {
		results = results[:r.opts.MaxResults]
	}
	return results
}

func match(a models.Account, score float64, priority int, strategy models.SearchStrategy) models.AccountMatch {
	return models.AccountMatch{Account: a, Score: score, Priority: priority, Strategy: strategy}
}

// roundScore keeps two decimals so equal inputs produce equal, printable scores
func roundScore(s float64) float64 {
	return float64(int64(s*100+0.5)) / 100
}
