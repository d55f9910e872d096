// Пакет для управления cron-задачами.
//
// Основные возможности:
//   - Загрузка задач из реестра.
//   - Добавление задач в cron-расписание.
//   - Удаление задач из cron-расписания.
//   - Запуск задачи вне расписания.
//   - Запуск и остановка cron-диспетчера.
package cronmanager

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

type CronJobFunc func()

type Job struct {
	Func     CronJobFunc
	Schedule string
}

type JobRegistry map[string]Job

type CronManager struct {
	dispatcher  *cron.Cron
	jobs        map[string]cron.EntryID
	mu          sync.Mutex
	jobRegistry JobRegistry
}

// slogCronLogger пишет сообщения диспетчера в slog.
type slogCronLogger struct {
	logger *slog.Logger
}

func (l slogCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l slogCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}

// NewCronManager создает новый менеджер для планирования задач.
// Параметры:
//   - jobRegistry: реестр задач
//
// Возвращает:
//   - *CronManager: созданный менеджер для планирования задач
func NewCronManager(jobRegistry JobRegistry) *CronManager {
	logger := slogCronLogger{logger: slog.Default()}
	dispatcher := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger)),
	)

	return &CronManager{
		dispatcher:  dispatcher,
		jobs:        make(map[string]cron.EntryID),
		jobRegistry: jobRegistry,
	}
}

// LoadJobs загружает задачи из реестра, заменяя уже запланированные.
//
// Возвращает:
//   - error: ошибки задач, которые не удалось добавить
func (cm *CronManager) LoadJobs() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	// Clear existing jobs
	for name, entryID := range cm.jobs {
		cm.dispatcher.Remove(entryID)
		delete(cm.jobs, name)
	}

	var errs []error
	for name, job := range cm.jobRegistry {
		if err := cm.addJob(name, job.Schedule); err != nil {
			slog.Error("Error adding job", "name", name, "err", err)
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (cm *CronManager) addJob(name, schedule string) error {
	job, exists := cm.jobRegistry[name]
	if !exists {
		return fmt.Errorf("no job function registered for name: %s", name)
	}

	id, err := cm.dispatcher.AddFunc(schedule, job.Func)
	if err != nil {
		return fmt.Errorf("failed to add job '%s': %w", name, err)
	}
	cm.jobs[name] = id
	return nil
}

// RemoveJob убирает задачу из расписания.
func (cm *CronManager) RemoveJob(name string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if entryID, exists := cm.jobs[name]; exists {
		cm.dispatcher.Remove(entryID)
		delete(cm.jobs, name)
	}
}

// Scheduled имена задач, стоящих в расписании.
func (cm *CronManager) Scheduled() []string {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	res := make([]string, 0, len(cm.jobs))
	for name := range cm.jobs {
		res = append(res, name)
	}
	return res
}

// RunJob выполняет задачу из реестра сразу, в текущей горутине.
func (cm *CronManager) RunJob(name string) error {
	job, exists := cm.jobRegistry[name]
	if !exists {
		return fmt.Errorf("no job function registered for name: %s", name)
	}
	job.Func()
	return nil
}

func (cm *CronManager) Start() {
	cm.dispatcher.Start()
}

// Stop останавливает диспетчер и ждет завершения запущенных задач.
func (cm *CronManager) Stop() {
	ctx := cm.dispatcher.Stop()
	<-ctx.Done()
}
