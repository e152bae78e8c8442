package pipeline

import (
	"fmt"

	"github.com/couchcryptid/athletics-records-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/athletics-records-etl/internal/domain"
)

// enriched holds both record tables after the reference joins.
type enriched struct {
	men   []domain.EnrichedRecord
	women []domain.EnrichedRecord
}

// enrich reads the stored record sets and joins them with the continent and
// birth date reference files.
func (p *Pipeline) enrich() (enriched, error) {
	continents, err := csvfile.ReadContinents(p.cfg.ContinentsPath())
	if err != nil {
		return enriched{}, fmt.Errorf("read continents: %w", err)
	}
	birthDates, err := csvfile.ReadBirthDates(p.cfg.DOBPath())
	if err != nil {
		return enriched{}, fmt.Errorf("read birth dates: %w", err)
	}
	e := domain.NewEnricher(domain.NewContinentIndex(continents), birthDates, p.cfg.NameMatchThreshold, p.cfg.ReferenceYear)

	var out enriched
	for _, sex := range []domain.Sex{domain.SexMen, domain.SexWomen} {
		set, err := p.store.ReadSet(sex)
		if err != nil {
			return enriched{}, fmt.Errorf("read %s records: %w", sex, err)
		}
		records, stats := e.Enrich(set)
		p.recordEnrichStats(sex, stats)
		if sex == domain.SexMen {
			out.men = records
		} else {
			out.women = records
		}
	}
	p.logger.Info("records enriched",
		"men", len(out.men),
		"women", len(out.women),
		"reference_year", e.ReferenceYear(),
	)
	return out, nil
}

func (p *Pipeline) recordEnrichStats(sex domain.Sex, stats domain.EnrichStats) {
	label := string(sex)
	p.metrics.EnrichmentMisses.WithLabelValues(label, "nationality").Add(float64(len(stats.UnmatchedNationality)))
	p.metrics.EnrichmentMisses.WithLabelValues(label, "athlete").Add(float64(len(stats.UnmatchedAthletes)))
	p.metrics.EnrichmentMisses.WithLabelValues(label, "date").Add(float64(stats.UnparsedDates))
	p.metrics.FuzzyMatches.WithLabelValues(label).Add(float64(stats.FuzzyMatches))

	if len(stats.UnmatchedNationality) > 0 {
		p.logger.Warn("nationality codes without a continent", "sex", label, "codes", stats.UnmatchedNationality)
	}
	if len(stats.UnmatchedAthletes) > 0 {
		p.logger.Warn("athletes without a birth date", "sex", label, "athletes", stats.UnmatchedAthletes)
	}
	if stats.UnparsedDates > 0 {
		p.logger.Warn("unparseable record dates", "sex", label, "count", stats.UnparsedDates)
	}
}
