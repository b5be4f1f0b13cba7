// internal/app/bootstrap/instrument.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/bilanhub/internal/app/system/genai"
	"github.com/dalemusser/bilanhub/internal/app/system/jobsearch"
	"github.com/dalemusser/bilanhub/internal/app/system/metrics"
	"github.com/dalemusser/bilanhub/internal/app/system/objectstore"
	"github.com/dalemusser/bilanhub/internal/app/system/pdfgen"
)

type observedGenerator struct {
	genai.Generator
	m *metrics.Metrics
}

func (o observedGenerator) Generate(ctx context.Context, p genai.Prompt) (string, error) {
	s, err := o.Generator.Generate(ctx, p)
	o.m.ObserveExternal("ai", err)
	return s, err
}

type observedObjects struct {
	objectstore.Store
	m *metrics.Metrics
}

func (o observedObjects) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	url, err := o.Store.Put(ctx, key, data, contentType)
	o.m.ObserveExternal("object_storage", err)
	return url, err
}

type observedRenderer struct {
	pdfgen.Renderer
	m *metrics.Metrics
}

func (o observedRenderer) Render(kind pdfgen.Kind, data any) ([]byte, error) {
	b, err := o.Renderer.Render(kind, data)
	o.m.ObserveExternal("pdf", err)
	return b, err
}

// observedSearcher only counts live offer searches; the other lookups are
// served from the embedded catalog.
type observedSearcher struct {
	jobsearch.Searcher
	m *metrics.Metrics
}

func (o observedSearcher) SearchJobs(ctx context.Context, q jobsearch.JobQuery) ([]jobsearch.JobOffer, error) {
	jobs, err := o.Searcher.SearchJobs(ctx, q)
	o.m.ObserveExternal("job_search", err)
	return jobs, err
}
