// Управление конфигурацией редактора из переменных окружения.
// Содержит структуру Config для хранения параметров и функцию ReadConfig для их загрузки.
//
// Основные возможности:
//   - Чтение файла .env, если он есть. Окружение процесса при этом не меняется.
//   - Загрузка конфигурации из переменных окружения с использованием тегов struct.
//   - Преобразование типов данных из переменных окружения (string, int, bool).
//   - Маскировка секретных значений (пароли в DSN) в логах.
//   - Значения по умолчанию и ограничения для задержки сохранения и числа хранимых ревизий.
package config

import (
	"log/slog"
	"net/url"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/aisa-it/blocks/internal/blocks/debounce"
	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
)

const (
	DefaultDatabaseDSN   = "blocks.db"
	DefaultRevisionsKeep = 20
	DefaultPruneSchedule = "@hourly"
	maxDebounceMS        = 10000
	defaultSlowQueryMS   = 200
)

type Config struct {
	DatabaseDSN string `env:"DATABASE_URL"`

	BackendURLRaw string `env:"BLOCKS_BACKEND_URL"`
	BackendURL    *url.URL

	DebounceMS          int    `env:"BLOCKS_DEBOUNCE_MS"`
	DefaultCodeLanguage string `env:"BLOCKS_DEFAULT_CODE_LANGUAGE"`

	RevisionsKeep int    `env:"BLOCKS_REVISIONS_KEEP"`
	PruneSchedule string `env:"BLOCKS_PRUNE_SCHEDULE"`

	Development bool `env:"BLOCKS_DEV"`

	MetricsFile string `env:"BLOCKS_METRICS_FILE"`

	SlowQueryMS int `env:"BLOCKS_SLOW_QUERY_MS"`

	PDFFontPath string `env:"BLOCKS_PDF_FONT"`
}

// ReadConfig загружает .env из envFiles (по умолчанию ".env"), затем переменные окружения.
// Переменные окружения процесса имеют приоритет над .env. Отсутствие файла не ошибка.
func ReadConfig(envFiles ...string) (*Config, error) {
	return readConfig(os.LookupEnv, envFiles...)
}

func readConfig(lookup func(string) (string, bool), envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	src, err := loadEnvSource(lookup, envFiles...)
	if err != nil {
		return nil, err
	}

	config := &Config{}
	envConfig(src, "env", config)

	if config.BackendURLRaw != "" {
		config.BackendURL, err = url.Parse(config.BackendURLRaw)
		if err != nil {
			slog.Error("BLOCKS_BACKEND_URL incorrect", "err", err)
			return nil, err
		}
	}

	if config.DatabaseDSN == "" {
		config.DatabaseDSN = DefaultDatabaseDSN
	}
	if config.DebounceMS <= 0 || config.DebounceMS > maxDebounceMS {
		config.DebounceMS = int(debounce.DefaultDelay / time.Millisecond)
	}
	if config.DefaultCodeLanguage == "" {
		config.DefaultCodeLanguage = edtypes.DefaultCodeLanguage
	}
	if config.RevisionsKeep <= 0 {
		config.RevisionsKeep = DefaultRevisionsKeep
	}
	if config.PruneSchedule == "" {
		config.PruneSchedule = DefaultPruneSchedule
	}
	if config.SlowQueryMS <= 0 {
		config.SlowQueryMS = defaultSlowQueryMS
	}

	return config, nil
}

// DebounceDelay задержка сохранения изменений.
func (c *Config) DebounceDelay() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

func (c *Config) SlowQueryThreshold() time.Duration {
	return time.Duration(c.SlowQueryMS) * time.Millisecond
}

// BackendURLString адрес бэкенда для относительных адресов медиатеки, пустая строка если не задан.
func (c *Config) BackendURLString() string {
	if c.BackendURL == nil {
		return ""
	}
	return strings.TrimSuffix(c.BackendURL.String(), "/")
}

// Присваивает полям в переданной структуре значения переменных из src. Название переменной для каждого поля лежит в теге этого поля.
func envConfig(src *envSource, key string, s interface{}) {
	v := reflect.ValueOf(s).Elem()
	typeParam := v.Type()
	for i := 0; i < v.NumField(); i++ {
		fName := typeParam.Field(i).Name
		fEnvTag := typeParam.Field(i).Tag.Get(key)

		if fEnvTag == "" {
			continue
		}
		value, source, ok := src.Get(fEnvTag)
		if !ok {
			continue
		}

		slog.Info("Set config value",
			slog.String("key", typeParam.Name()+"."+fName),
			slog.String("value", maskValue(fName, value)),
			slog.String("source", source),
		)

		switch v.Field(i).Interface().(type) {
		case string:
			v.Field(i).SetString(value)
		case int:
			v.Field(i).SetInt(int64(src.Int(fEnvTag)))
		case bool:
			v.Field(i).SetBool(src.Bool(fEnvTag))
		}
	}
}

// maskValue прячет пароль в DSN и значения секретных полей.
func maskValue(field, value string) string {
	lower := strings.ToLower(field)
	if strings.Contains(lower, "pass") || strings.Contains(lower, "secret") || strings.Contains(lower, "token") {
		return maskSecret(value)
	}
	if strings.Contains(lower, "dsn") {
		if u, err := url.Parse(value); err == nil && u.User != nil {
			if _, ok := u.User.Password(); ok {
				return u.Redacted()
			}
		}
	}
	return value
}

func maskSecret(s string) string {
	r := []rune(s)
	if len(r) <= 2 {
		return strings.Repeat("*", len(r))
	}
	return string(r[0]) + strings.Repeat("*", len(r)-2) + string(r[len(r)-1])
}
