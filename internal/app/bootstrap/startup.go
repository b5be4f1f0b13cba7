// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/bilanhub/internal/app/system/pdfgen"
	"github.com/dalemusser/bilanhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})
	cur := timeouts.Current()
	logger.Info("deadlines configured",
		zap.Duration("short", cur.Short),
		zap.Duration("medium", cur.Medium),
		zap.Duration("long", cur.Long))

	if err := pdfgen.SetLicense(appCfg.PDFLicenseKey); err != nil {
		logger.Error("pdf license rejected", zap.Error(err))
		return err
	}
	if appCfg.PDFLicenseKey == "" {
		logger.Warn("pdf_license_key is empty; generated reports carry the unlicensed watermark")
	}
	return nil
}
