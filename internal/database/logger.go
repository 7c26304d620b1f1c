package database

import (
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
	"moul.io/zapgorm2"
)

const slowQueryThreshold = 200 * time.Millisecond

// newGormLogger routes gorm's query log through zap. Missing rows are an
// expected outcome for lookups and are not logged as errors.
func newGormLogger(log *zap.Logger) gormlogger.Interface {
	l := zapgorm2.New(log.Named("gorm"))
	l.SlowThreshold = slowQueryThreshold
	l.IgnoreRecordNotFoundError = true
	return l.LogMode(gormlogger.Warn)
}
