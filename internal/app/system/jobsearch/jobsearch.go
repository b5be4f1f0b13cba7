// internal/app/system/jobsearch/jobsearch.go
package jobsearch

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrUnknownRome is returned when a ROME code is not in the referential.
var ErrUnknownRome = errors.New("jobsearch: unknown ROME code")

// Contract types accepted by SearchJobs.
const (
	ContractCDI         = "CDI"
	ContractCDD         = "CDD"
	ContractAlternance  = "Alternance"
	ContractInterim     = "Interim"
	ContractIndependant = "Independant"
)

// RomeCode is one entry of the ROME referential.
type RomeCode struct {
	Code       string `yaml:"code" json:"code"`
	Label      string `yaml:"label" json:"label"`
	Definition string `yaml:"definition" json:"definition"`
}

// JobOffer is a published job offer.
type JobOffer struct {
	ID           string    `yaml:"id" json:"id"`
	Title        string    `yaml:"title" json:"title"`
	Company      string    `yaml:"company" json:"company"`
	Location     string    `yaml:"location" json:"location"`
	ContractType string    `yaml:"contractType" json:"contractType"`
	Salary       string    `yaml:"salary" json:"salary,omitempty"`
	Description  string    `yaml:"description" json:"description"`
	Skills       []string  `yaml:"skills" json:"skills"`
	RomeCode     string    `yaml:"romeCode" json:"romeCode,omitempty"`
	PublishedAt  time.Time `yaml:"-" json:"publishedAt"`
	URL          string    `yaml:"url" json:"url,omitempty"`
}

// Training is a course leading to one or more occupations.
type Training struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Provider    string   `yaml:"provider" json:"provider"`
	Duration    string   `yaml:"duration" json:"duration"`
	Location    string   `yaml:"location" json:"location"`
	Description string   `yaml:"description" json:"description"`
	TargetJobs  []string `yaml:"targetJobs" json:"targetJobs"`
	RomeCode    string   `yaml:"romeCode" json:"romeCode,omitempty"`
	Certifying  bool     `yaml:"certifying" json:"certifying"`
	CPFEligible bool     `yaml:"cpfEligible" json:"cpfEligible"`
	URL         string   `yaml:"url" json:"url,omitempty"`
}

// JobQuery filters SearchJobs. Empty fields do not filter.
type JobQuery struct {
	RomeCode     string
	Keywords     string
	Location     string
	ContractType string
}

// TrainingQuery filters SearchTrainings.
type TrainingQuery struct {
	RomeCode string
	Keywords string
	CPFOnly  bool
}

// Searcher answers the job and training lookups.
type Searcher interface {
	SearchRome(ctx context.Context, skills []string) ([]RomeCode, error)
	RomeDetails(ctx context.Context, code string) (RomeCode, error)
	SearchJobs(ctx context.Context, q JobQuery) ([]JobOffer, error)
	SearchTrainings(ctx context.Context, q TrainingQuery) ([]Training, error)
	RelatedJobs(ctx context.Context, romeCode string) ([]string, error)
}

//go:embed catalog.yaml
var catalogYAML []byte

type romeEntry struct {
	RomeCode `yaml:",inline"`
	Jobs     []string `yaml:"jobs"`
}

type keywordEntry struct {
	Keyword string   `yaml:"keyword"`
	Codes   []string `yaml:"codes"`
}

type catalogFile struct {
	Rome      []romeEntry    `yaml:"rome"`
	Keywords  []keywordEntry `yaml:"keywords"`
	Fallback  []string       `yaml:"fallback"`
	Offers    []JobOffer     `yaml:"offers"`
	Trainings []Training     `yaml:"trainings"`
}

// Catalog serves every lookup from the embedded referential.
type Catalog struct {
	rome      map[string]romeEntry
	keywords  []keywordEntry
	fallback  []string
	offers    []JobOffer
	trainings []Training
	now       func() time.Time
}

// NewCatalog parses the embedded referential.
func NewCatalog() (*Catalog, error) {
	return parseCatalog(catalogYAML)
}

func parseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("jobsearch: parse catalog: %w", err)
	}
	c := &Catalog{
		rome:      make(map[string]romeEntry, len(f.Rome)),
		keywords:  f.Keywords,
		fallback:  f.Fallback,
		offers:    f.Offers,
		trainings: f.Trainings,
		now:       time.Now,
	}
	for _, r := range f.Rome {
		c.rome[r.Code] = r
	}
	for _, code := range f.Fallback {
		if _, ok := c.rome[code]; !ok {
			return nil, fmt.Errorf("jobsearch: fallback code %s not in referential", code)
		}
	}
	return c, nil
}

// SearchRome maps free-text skills onto ROME codes by keyword. Codes are
// returned in first-match order; when nothing matches the fallback codes are
// returned.
func (c *Catalog) SearchRome(_ context.Context, skills []string) ([]RomeCode, error) {
	seen := make(map[string]bool)
	var out []RomeCode
	for _, skill := range skills {
		s := strings.ToLower(skill)
		for _, kw := range c.keywords {
			if !strings.Contains(s, kw.Keyword) {
				continue
			}
			for _, code := range kw.Codes {
				if r, ok := c.rome[code]; ok && !seen[code] {
					seen[code] = true
					out = append(out, r.RomeCode)
				}
			}
		}
	}
	if len(out) == 0 {
		for _, code := range c.fallback {
			out = append(out, c.rome[code].RomeCode)
		}
	}
	return out, nil
}

// RomeDetails returns one referential entry.
func (c *Catalog) RomeDetails(_ context.Context, code string) (RomeCode, error) {
	r, ok := c.rome[code]
	if !ok {
		return RomeCode{}, fmt.Errorf("%w: %s", ErrUnknownRome, code)
	}
	return r.RomeCode, nil
}

// SearchJobs filters the sample offers.
func (c *Catalog) SearchJobs(_ context.Context, q JobQuery) ([]JobOffer, error) {
	kw := strings.ToLower(q.Keywords)
	loc := strings.ToLower(q.Location)
	now := c.now().UTC()

	out := []JobOffer{}
	for _, o := range c.offers {
		if q.RomeCode != "" && o.RomeCode != q.RomeCode {
			continue
		}
		if kw != "" && !strings.Contains(strings.ToLower(o.Title), kw) && !strings.Contains(strings.ToLower(o.Description), kw) {
			continue
		}
		if loc != "" && !strings.Contains(strings.ToLower(o.Location), loc) {
			continue
		}
		if q.ContractType != "" && o.ContractType != q.ContractType {
			continue
		}
		o.PublishedAt = now
		out = append(out, o)
	}
	return out, nil
}

// SearchTrainings filters the sample trainings.
func (c *Catalog) SearchTrainings(_ context.Context, q TrainingQuery) ([]Training, error) {
	kw := strings.ToLower(q.Keywords)
	out := []Training{}
	for _, t := range c.trainings {
		if q.RomeCode != "" && t.RomeCode != q.RomeCode {
			continue
		}
		if kw != "" && !strings.Contains(strings.ToLower(t.Title), kw) && !strings.Contains(strings.ToLower(t.Description), kw) {
			continue
		}
		if q.CPFOnly && !t.CPFEligible {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// RelatedJobs lists occupation titles for a code; unknown codes give none.
func (c *Catalog) RelatedJobs(_ context.Context, romeCode string) ([]string, error) {
	r, ok := c.rome[romeCode]
	if !ok || len(r.Jobs) == 0 {
		return []string{}, nil
	}
	return append([]string(nil), r.Jobs...), nil
}
