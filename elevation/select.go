package elevation

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

const (
	acceptCoverage  = 0.99
	replaceMargin   = 0.05
	minimumCoverage = 0.20
)

// SelectSource scores the sources in SourcePriority order. A source
// reaching 99% coverage wins immediately; otherwise a later source only
// displaces the current best when it covers more than 5 points more. The
// query is rejected when the best source covers less than 20%.
func SelectSource(box BoundingBox, loader CoverageLoader) (Candidate, error) {
	if box.Area() <= 0 {
		return Candidate{}, validationf("bounding box has zero area")
	}

	var best Candidate
	for _, src := range SourcePriority {
		cov, err := loader.LoadCoverage(src)
		if err != nil {
			return Candidate{}, fmt.Errorf("load %s coverage: %w", src, err)
		}
		cand := cov.Score(box)
		cand.Source = src
		log.Debug().
			Stringer("dem", src).
			Float64("coverage", cand.Coverage).
			Int("tiles", len(cand.Tiles)).
			Msg("scored DEM source")

		if cand.Coverage >= acceptCoverage {
			best = cand
			break
		}
		if best.Coverage == 0 || cand.Coverage > best.Coverage+replaceMargin {
			best = cand
		}
	}

	if best.Coverage < minimumCoverage {
		return Candidate{}, &CoverageError{Best: best.Source, Coverage: best.Coverage}
	}
	return best, nil
}
