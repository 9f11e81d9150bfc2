package orbit

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Candidate is a parsed orbit file name, e.g.
// S1A_OPER_AUX_POEORB_OPOD_20170121T121430_V20161231T225943_20170102T005943.EOF
type Candidate struct {
	Name     string
	Platform string
	Start    time.Time
	End      time.Time
}

func ParseCandidate(name string) (Candidate, error) {
	name = strings.ReplaceAll(name, " ", "")
	fields := splitName(strings.TrimSuffix(name, ".EOF"))
	if len(fields) < 8 || len(name) < 3 {
		return Candidate{}, parseErr("orbit file", name, "unexpected field count")
	}
	start, err := time.Parse(timeLayout, strings.TrimPrefix(fields[6], "V"))
	if err != nil {
		return Candidate{}, parseErr("orbit file", name, err.Error())
	}
	end, err := time.Parse(timeLayout, fields[7])
	if err != nil {
		return Candidate{}, parseErr("orbit file", name, err.Error())
	}
	return Candidate{Name: name, Platform: name[:3], Start: start, End: end}, nil
}

// Covers reports whether the validity window strictly contains t.
func (c Candidate) Covers(t time.Time) bool {
	return c.Start.Before(t) && c.End.After(t)
}

// Score is the smaller of the two gaps between t and the window edges.
func (c Candidate) Score(t time.Time) time.Duration {
	return min(t.Sub(c.Start), c.End.Sub(t))
}

// Best picks the listed file for platform whose window is most centred on
// t. Earlier entries win ties. Names that do not parse are skipped.
func Best(platform string, t time.Time, names []string) (Candidate, bool) {
	var (
		best  Candidate
		score time.Duration
		found bool
	)
	for _, name := range names {
		c, err := ParseCandidate(name)
		if err != nil {
			log.Debug().Err(err).Msg("skipping listing entry")
			continue
		}
		if c.Platform != platform || !c.Covers(t) {
			continue
		}
		if s := c.Score(t); !found || s > score {
			best, score, found = c, s, true
		}
	}
	return best, found
}
