// Логирование запросов GORM с возможностью трассировки, фильтрации параметров и выделения медленных запросов.
//
// Основные возможности:
//   - Логирование запросов GORM с использованием slog.
//   - Трассировка медленных запросов, превышающих заданный порог времени.
//   - Фильтрация параметров запросов для безопасной подстановки в SQL.
package gormlogger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"
	gormLog "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

type GormLogger struct {
	SlowThreshold        time.Duration
	ParameterizedQueries bool
	level                gormLog.LogLevel
	logger               *slog.Logger
}

func NewGormLogger(logger *slog.Logger, slowThreshold time.Duration, paramQueries bool) *GormLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &GormLogger{logger: logger, SlowThreshold: slowThreshold, ParameterizedQueries: paramQueries, level: gormLog.Info}
}

func (gl *GormLogger) LogMode(level gormLog.LogLevel) gormLog.Interface {
	l := *gl
	l.level = level
	return &l
}

func (gl *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if gl.level >= gormLog.Info {
		gl.logger.InfoContext(ctx, fmt.Sprintf(msg, data...), slog.String("file", utils.FileWithLineNum()))
	}
}

func (gl *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if gl.level >= gormLog.Warn {
		gl.logger.WarnContext(ctx, fmt.Sprintf(msg, data...), slog.String("file", utils.FileWithLineNum()))
	}
}

func (gl *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if gl.level >= gormLog.Error {
		gl.logger.ErrorContext(ctx, fmt.Sprintf(msg, data...), slog.String("file", utils.FileWithLineNum()))
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormLog.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormLog.Error:
		l.logger.ErrorContext(ctx, "SQL error",
			slog.String("file", utils.FileWithLineNum()),
			slog.String("elapsed", elapsed.String()),
			slog.Int64("rowsCount", rows),
			slog.String("err", err.Error()),
			slog.String("sql", sql),
		)
	case elapsed > l.SlowThreshold && l.SlowThreshold != 0 && l.level >= gormLog.Warn:
		// Ignore DELETE
		if strings.Contains(sql, "DELETE") {
			return
		}

		slowLog := fmt.Sprintf("SLOW SQL >= %v", l.SlowThreshold)
		l.logger.WarnContext(ctx, slowLog,
			slog.String("file", utils.FileWithLineNum()),
			slog.String("elapsed", elapsed.String()),
			slog.Int64("rowsCount", rows),
			slog.String("sql", sql),
		)
	case l.level >= gormLog.Info:
		l.logger.DebugContext(ctx, "SQL trace",
			slog.String("file", utils.FileWithLineNum()),
			slog.String("elapsed", elapsed.String()),
			slog.Int64("rowsCount", rows),
			slog.String("sql", sql),
		)
	}
}

func (l *GormLogger) ParamsFilter(ctx context.Context, sql string, params ...interface{}) (string, []interface{}) {
	if l.ParameterizedQueries {
		return sql, nil
	}
	return sql, params
}
