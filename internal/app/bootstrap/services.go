// internal/app/bootstrap/services.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/bilanhub/internal/app/system/advisor"
	"github.com/dalemusser/bilanhub/internal/app/system/genai"
	"github.com/dalemusser/bilanhub/internal/app/system/jobsearch"
	"github.com/dalemusser/bilanhub/internal/app/system/metrics"
	"github.com/dalemusser/bilanhub/internal/app/system/objectstore"
	"github.com/dalemusser/bilanhub/internal/app/system/pdfgen"
	"github.com/dalemusser/bilanhub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Services are the external collaborators handlers depend on. Each one is
// wrapped so its calls are counted in the metrics registry.
type Services struct {
	Objects  objectstore.Store
	Advisor  advisor.Advisor
	Search   jobsearch.Searcher
	PDF      pdfgen.Renderer
	AILimit  *ratelimit.Limiter
	IPLimit  *ratelimit.Limiter
	Metrics  *metrics.Metrics
	LocalDir string // set when objects are served from disk
}

// BuildServices constructs the collaborators selected by appCfg.
func BuildServices(ctx context.Context, appCfg AppConfig, m *metrics.Metrics, logger *zap.Logger) (Services, error) {
	svc := Services{Metrics: m}

	switch appCfg.StorageType {
	case "s3":
		s3, err := objectstore.NewS3(ctx, objectstore.S3Config{
			Region:    appCfg.StorageS3Region,
			Bucket:    appCfg.StorageS3Bucket,
			Prefix:    appCfg.StorageS3Prefix,
			Endpoint:  appCfg.StorageS3Endpoint,
			PublicURL: appCfg.StorageS3PublicURL,
		})
		if err != nil {
			return Services{}, err
		}
		svc.Objects = observedObjects{s3, m}
		logger.Info("object storage: s3",
			zap.String("bucket", appCfg.StorageS3Bucket),
			zap.Bool("presigned", appCfg.StorageS3PublicURL == ""))
	default:
		local, err := objectstore.NewLocal(appCfg.StorageLocalPath, appCfg.StorageLocalURL)
		if err != nil {
			return Services{}, err
		}
		svc.Objects = observedObjects{local, m}
		svc.LocalDir = appCfg.StorageLocalPath
		logger.Info("object storage: local", zap.String("path", appCfg.StorageLocalPath))
	}

	var gen genai.Generator
	switch appCfg.AIProvider {
	case "ollama":
		g, err := genai.NewOllama(appCfg.OllamaURL, appCfg.OllamaModel, nil)
		if err != nil {
			return Services{}, err
		}
		gen = g
	default:
		g, err := genai.NewOpenAI(genai.OpenAIConfig{
			APIKey:  appCfg.AIAPIKey,
			BaseURL: appCfg.AIBaseURL,
			Model:   appCfg.AIModel,
		})
		if err != nil {
			return Services{}, err
		}
		gen = g
	}
	adv, err := advisor.New(observedGenerator{gen, m})
	if err != nil {
		return Services{}, fmt.Errorf("advisor: %w", err)
	}
	svc.Advisor = adv
	logger.Info("ai provider configured", zap.String("provider", appCfg.AIProvider))

	catalog, err := jobsearch.NewCatalog()
	if err != nil {
		return Services{}, fmt.Errorf("job catalog: %w", err)
	}
	if appCfg.FranceTravailClientID != "" {
		svc.Search = observedSearcher{jobsearch.NewFranceTravail(ctx, jobsearch.FranceTravailConfig{
			ClientID:     appCfg.FranceTravailClientID,
			ClientSecret: appCfg.FranceTravailClientSecret,
		}, catalog), m}
		logger.Info("job search: France Travail API")
	} else {
		svc.Search = observedSearcher{catalog, m}
		logger.Info("job search: embedded catalog")
	}

	svc.PDF = observedRenderer{pdfgen.New(), m}
	svc.AILimit = ratelimit.New(appCfg.AIRateLimitPerMinute, appCfg.AIRateLimitBurst)
	svc.IPLimit = ratelimit.New(appCfg.PublicRateLimitPerMinute, appCfg.PublicRateLimitBurst)
	return svc, nil
}
