// internal/app/features/jobsearch/jobsearch.go
package jobsearch

import (
	"context"
	"errors"

	"github.com/dalemusser/bilanhub/internal/app/system/apperr"
	"github.com/dalemusser/bilanhub/internal/app/system/jobsearch"
	"github.com/dalemusser/bilanhub/internal/app/system/timeouts"
)

type romeInput struct {
	Skills []string `json:"skills" validate:"max=50,dive,max=200"`
}

type codeInput struct {
	Code string `json:"code" validate:"required,max=10"`
}

type relatedInput struct {
	RomeCode string `json:"romeCode" validate:"required,max=10"`
}

type jobsInput struct {
	RomeCode     string `json:"romeCode" validate:"max=10"`
	Keywords     string `json:"keywords" validate:"max=200"`
	Location     string `json:"location" validate:"max=200"`
	ContractType string `json:"contractType" validate:"omitempty,oneof=CDI CDD Alternance Interim Independant"`
}

type trainingsInput struct {
	RomeCode string `json:"romeCode" validate:"max=10"`
	Keywords string `json:"keywords" validate:"max=200"`
	CPFOnly  bool   `json:"cpfOnly"`
}

func failed(err error) error { return apperr.External("job search", err) }

func (h *Handler) searchRome(ctx context.Context, in romeInput) ([]jobsearch.RomeCode, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), h.Log, "jobsearch.searchRome")
	defer cancel()

	out, err := h.Search.SearchRome(ctx, in.Skills)
	if err != nil {
		return nil, failed(err)
	}
	if out == nil {
		out = []jobsearch.RomeCode{}
	}
	return out, nil
}

func (h *Handler) getRomeDetails(ctx context.Context, in codeInput) (jobsearch.RomeCode, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "jobsearch.getRomeDetails")
	defer cancel()

	r, err := h.Search.RomeDetails(ctx, in.Code)
	if errors.Is(err, jobsearch.ErrUnknownRome) {
		return jobsearch.RomeCode{}, apperr.NotFound("ROME code " + in.Code)
	}
	if err != nil {
		return jobsearch.RomeCode{}, failed(err)
	}
	return r, nil
}

func (h *Handler) searchJobs(ctx context.Context, in jobsInput) ([]jobsearch.JobOffer, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), h.Log, "jobsearch.searchJobs")
	defer cancel()

	out, err := h.Search.SearchJobs(ctx, jobsearch.JobQuery{
		RomeCode:     in.RomeCode,
		Keywords:     in.Keywords,
		Location:     in.Location,
		ContractType: in.ContractType,
	})
	if err != nil {
		return nil, failed(err)
	}
	return out, nil
}

func (h *Handler) searchTrainings(ctx context.Context, in trainingsInput) ([]jobsearch.Training, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), h.Log, "jobsearch.searchTrainings")
	defer cancel()

	out, err := h.Search.SearchTrainings(ctx, jobsearch.TrainingQuery{
		RomeCode: in.RomeCode,
		Keywords: in.Keywords,
		CPFOnly:  in.CPFOnly,
	})
	if err != nil {
		return nil, failed(err)
	}
	return out, nil
}

func (h *Handler) getRelatedJobs(ctx context.Context, in relatedInput) ([]string, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "jobsearch.getRelatedJobs")
	defer cancel()

	out, err := h.Search.RelatedJobs(ctx, in.RomeCode)
	if err != nil {
		return nil, failed(err)
	}
	return out, nil
}
