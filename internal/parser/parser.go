// Package parser turns free text returned by the text-generation service into
// ingredient records.
//
// The expected line shape is
//
//	[Ingredient: ]<name> : <ecode> : <description> : <Halal|Haram|Mushbooh>
//
// Text that does not follow it degrades through a per-line fallback and a
// single-ingredient synthesis step before yielding an empty result.
package parser

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/halalcheck/internal/catalog"
	"github.com/JaimeStill/halalcheck/internal/status"
)

// Tier identifies which parsing stage produced a result.
type Tier string

const (
	TierStructured  Tier = "structured"
	TierFallback    Tier = "fallback"
	TierSynthesized Tier = "synthesized"
	TierEmpty       Tier = "empty"
)

// Sentinel answers the prompts ask the service to return when it has nothing.
const (
	NoIngredients = "No ingredients available"
	NoData        = "No data available"
)

const (
	defaultECode = "N/A"
	prefixWord   = "Ingredient"
)

var lineRe = regexp.MustCompile(
	`(?im)^[ \t]*(?:Ingredient:[ \t]*)?([^:\n]+?)[ \t]*:[ \t]*([^:\n]*?)[ \t]*:[ \t]*([^:\n]*?)[ \t]*:[ \t]*(Halal|Haram|Mushbooh)[ \t]*$`,
)

// Input is one block of generated text and the context it was requested for.
type Input struct {
	Text string
	// Subject is the product name, or the joined names of a batched list.
	Subject string
	Country string
	// Batch marks text answering a list of ingredient names. Lines named
	// after the subject are kept, and when nothing parses each listed name
	// is considered for a single-ingredient record instead of the subject.
	Batch bool
	Names []string
}

// Result holds the deduplicated records and the stage that produced them.
type Result struct {
	Ingredients []catalog.Ingredient
	Tier        Tier
}

// Parser converts generated text into ingredient records.
type Parser struct {
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Parser.
func New(logger *slog.Logger) *Parser {
	return &Parser{
		logger: logger.With("system", "parser"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Parse extracts ingredient records from in.Text. An empty result is a valid
// outcome, not an error.
func (p *Parser) Parse(in Input) Result {
	text := strings.ReplaceAll(in.Text, "\r\n", "\n")

	found := p.structured(text, in)
	tier := TierStructured

	if len(found) == 0 && strings.TrimSpace(text) != "" {
		found = p.fallback(text, in)
		tier = TierFallback
	}

	if len(found) == 0 {
		found = p.synthesize(in)
		tier = TierSynthesized
	}

	if len(found) == 0 {
		p.logger.Warn("no ingredients parsed", "subject", in.Subject)
		return Result{Ingredients: []catalog.Ingredient{}, Tier: TierEmpty}
	}

	found = dedupe(found)
	p.logger.Info("ingredients parsed", "subject", in.Subject, "count", len(found), "tier", tier)
	return Result{Ingredients: found, Tier: tier}
}

// synthesize treats whole-food subjects as their own single ingredient.
func (p *Parser) synthesize(in Input) []catalog.Ingredient {
	subjects := []string{in.Subject}
	if in.Batch {
		subjects = in.Names
	}

	var found []catalog.Ingredient
	for _, name := range subjects {
		name = strings.TrimSpace(name)
		if name == "" || !singleIngredient(name) {
			continue
		}
		s := singleIngredientStatus(name)
		found = append(found, p.record(name, "", "", s, in.Country))
		p.logger.Info("treating subject as single ingredient", "subject", name, "status", s)
	}
	return found
}

func (p *Parser) structured(text string, in Input) []catalog.Ingredient {
	var found []catalog.Ingredient
	for _, m := range lineRe.FindAllStringSubmatch(text, -1) {
		if rec, ok := p.fromMatch(m, in); ok {
			found = append(found, rec)
		}
	}
	return found
}

func (p *Parser) fallback(text string, in Input) []catalog.Ingredient {
	p.logger.Warn("structured parse found nothing, scanning lines", "subject", in.Subject)

	var found []catalog.Ingredient
	for line := range strings.SplitSeq(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isSentinel(line) {
			continue
		}

		if m := lineRe.FindStringSubmatch(line); m != nil {
			if rec, ok := p.fromMatch(m, in); ok {
				found = append(found, rec)
			}
			continue
		}

		if invalidName(line) || p.rejected(line, in) {
			p.logger.Debug("skipping non-ingredient line", "line", line)
			continue
		}

		found = append(found, p.record(line, "", "", status.Mushbooh, in.Country))
	}
	return found
}

func (p *Parser) fromMatch(m []string, in Input) (catalog.Ingredient, bool) {
	name := strings.TrimSpace(m[1])
	if p.rejected(name, in) || invalidName(name) {
		p.logger.Debug("skipping invalid ingredient name", "name", name)
		return catalog.Ingredient{}, false
	}

	s, err := status.ParseVote(m[4])
	if err != nil {
		return catalog.Ingredient{}, false
	}

	return p.record(name, strings.TrimSpace(m[2]), strings.TrimSpace(m[3]), s, in.Country), true
}

func (p *Parser) rejected(name string, in Input) bool {
	if strings.TrimSpace(name) == "" || strings.EqualFold(name, prefixWord) {
		return true
	}
	return !in.Batch && strings.EqualFold(name, strings.TrimSpace(in.Subject))
}

func (p *Parser) record(name, ecode, description string, s status.Status, country string) catalog.Ingredient {
	if ecode == "" {
		ecode = defaultECode
	}
	if description == "" {
		description = name
	}

	now := p.now()
	return catalog.Ingredient{
		ID:          uuid.New(),
		Name:        name,
		Status:      s,
		ECode:       ecode,
		Description: description,
		Scope:       catalog.NewScope(country, s),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func dedupe(items []catalog.Ingredient) []catalog.Ingredient {
	seen := make(map[string]struct{}, len(items))
	out := make([]catalog.Ingredient, 0, len(items))
	for _, i := range items {
		key := strings.ToLower(i.Name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, i)
	}
	return out
}
