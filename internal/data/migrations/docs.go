package migrations

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	docsdata "soliditydocs/app/internal/data/docs"
)

// MigrateDocs applies the search index schema using Gorm's AutoMigrate and logs progress.
func MigrateDocs(ctx context.Context, db *gorm.DB, logger *logrus.Logger) error {
	if db == nil {
		return eris.New("gorm DB is required")
	}

	logFields := logrus.Fields{"component": "docs.migrate"}
	if logger != nil {
		logger.WithFields(logFields).Info("applying docs schema")
	}

	if err := db.WithContext(ctx).AutoMigrate(&docsdata.PageRow{}); err != nil {
		if logger != nil {
			logger.WithFields(logFields).WithField("error", err.Error()).Error("docs schema migration failed")
		}
		return eris.Wrap(err, "auto migrating docs schema")
	}

	if logger != nil {
		logger.WithFields(logFields).Info("docs schema migration complete")
	}

	return nil
}
