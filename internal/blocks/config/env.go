package config

import (
	"errors"
	"io/fs"
	"strconv"

	"github.com/joho/godotenv"
)

// sourceEnvironment источник значений из окружения процесса.
const sourceEnvironment = "ENVIRONMENT"

// envSource переменные окружения процесса поверх значений из .env файлов.
// Файлы не меняют окружение процесса. Из нескольких файлов побеждает первый.
type envSource struct {
	lookup func(string) (string, bool)
	files  []envFile
}

type envFile struct {
	name   string
	values map[string]string
}

// loadEnvSource читает .env файлы по порядку. Отсутствующие файлы пропускаются.
func loadEnvSource(lookup func(string) (string, bool), names ...string) (*envSource, error) {
	src := &envSource{lookup: lookup}
	for _, name := range names {
		values, err := godotenv.Read(name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		src.files = append(src.files, envFile{name: name, values: values})
	}
	return src, nil
}

// Get значение переменной и откуда оно взято. Пустое значение считается незаданным.
func (e *envSource) Get(key string) (value, source string, ok bool) {
	if e.lookup != nil {
		if v, exist := e.lookup(key); exist && v != "" {
			return v, sourceEnvironment, true
		}
	}
	for _, f := range e.files {
		if v := f.values[key]; v != "" {
			return v, f.name, true
		}
	}
	return "", "", false
}

// Int - возвращает числовое значение переменной. Если возникла ошибка при обработке, возвращается 0
func (e *envSource) Int(key string) int {
	val, _, _ := e.Get(key)
	v, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return v
}

// Bool - возвращает логическое значение переменной. Если возникла ошибка при обработке, возвращается false
func (e *envSource) Bool(key string) bool {
	val, _, _ := e.Get(key)
	v, err := strconv.ParseBool(val)
	if err != nil {
		return false
	}
	return v
}
