// DAO (Data Access Object) - хранение документов редактора и их ревизий в базе данных через GORM.
//
// Основные возможности:
//   - Подключение к SQLite (файл или память) и PostgreSQL по DSN.
//   - Создание, чтение и сохранение записей с текущим содержимым и номером версии.
//   - Каждое сохранение добавляет ревизию, старые ревизии удаляются по расписанию.
//   - Sink адаптирует запись к отложенному сохранению изменений редактора.
package dao

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofrs/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
)

var ErrEntryNotFound = errors.New("entry not found")

// GenUUID генерирует уникальный идентификатор в формате UUID. Не принимает параметров и возвращает UUID.
//
// Возвращает:
//   - uuid.UUID: UUID, представляющий собой уникальный идентификатор.
func GenUUID() uuid.UUID {
	u2, _ := uuid.NewV4()
	return u2
}

// Entry документ редактора: текущее содержимое и номер последней сохраненной версии.
type Entry struct {
	ID uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title   string           `json:"title" gorm:"index"`
	Content edtypes.Document `json:"content"`
	Version int              `json:"version" gorm:"default:1"`
}

// Revision снимок содержимого записи после сохранения.
type Revision struct {
	ID      uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	EntryID uuid.UUID `gorm:"type:uuid;index:revision_entry_version,unique" json:"entry_id"`
	Version int       `gorm:"index:revision_entry_version,unique" json:"version"`

	CreatedAt time.Time        `json:"created_at"`
	Content   edtypes.Document `json:"content"`

	Entry *Entry `json:"-" gorm:"foreignKey:EntryID;constraint:OnDelete:CASCADE"`
}

func (Entry) TableName() string { return "entries" }

func (Revision) TableName() string { return "entry_revisions" }

// Open подключается к базе по DSN: postgres:// и postgresql:// открываются драйвером PostgreSQL,
// остальное считается путем к файлу SQLite (":memory:" для базы в памяти).
func Open(dsn string, config *gorm.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dialector = postgres.New(postgres.Config{DSN: dsn})
	} else {
		dialector = sqlite.Open(dsn)
	}
	if config == nil {
		config = &gorm.Config{}
	}
	db, err := gorm.Open(dialector, config)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// Store операции над записями и ревизиями.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&Entry{}, &Revision{})
}

// CreateEntry создает запись с первой ревизией. nil doc означает пустое состояние.
func (s *Store) CreateEntry(ctx context.Context, title string, doc *edtypes.Document) (*Entry, error) {
	if doc == nil {
		doc = edtypes.DefaultDocument()
	}
	entry := Entry{
		ID:      GenUUID(),
		Title:   title,
		Content: *doc,
		Version: 1,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		return tx.Create(&Revision{
			ID:      GenUUID(),
			EntryID: entry.ID,
			Version: entry.Version,
			Content: entry.Content,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}
	return &entry, nil
}

func (s *Store) GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error) {
	var entry Entry
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("get entry %s: %w", id, err)
	}
	return &entry, nil
}

// ListEntries записи от последней измененной к первой.
func (s *Store) ListEntries(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	if err := s.db.WithContext(ctx).Order("updated_at DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// SaveContent сохраняет нормализованное значение редактора (nil для пустого состояния),
// увеличивает версию и добавляет ревизию.
func (s *Store) SaveContent(ctx context.Context, id uuid.UUID, value []*edtypes.Node) (*Entry, error) {
	doc := edtypes.NewDocument(value...)

	var entry Entry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Entry{}).Where("id = ?", id).Updates(map[string]interface{}{
			"content":    doc,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrEntryNotFound
		}
		if err := tx.Where("id = ?", id).First(&entry).Error; err != nil {
			return err
		}
		return tx.Create(&Revision{
			ID:      GenUUID(),
			EntryID: entry.ID,
			Version: entry.Version,
			Content: entry.Content,
		}).Error
	})
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("save entry %s: %w", id, err)
	}
	return &entry, nil
}

// ListRevisions ревизии записи от новой к старой.
func (s *Store) ListRevisions(ctx context.Context, id uuid.UUID) ([]Revision, error) {
	var revisions []Revision
	if err := s.db.WithContext(ctx).
		Where("entry_id = ?", id).
		Order("version DESC").
		Find(&revisions).Error; err != nil {
		return nil, fmt.Errorf("list revisions %s: %w", id, err)
	}
	return revisions, nil
}

// PruneRevisions оставляет у каждой записи keep последних ревизий. Возвращает число удаленных.
func (s *Store) PruneRevisions(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		keep = 1
	}

	var ids []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&Entry{}).Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("prune revisions: %w", err)
	}

	var deleted int64
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}

		var versions []int
		if err := s.db.WithContext(ctx).Model(&Revision{}).
			Where("entry_id = ?", id).
			Order("version DESC").
			Offset(keep-1).
			Limit(1).
			Pluck("version", &versions).Error; err != nil {
			return deleted, fmt.Errorf("prune revisions %s: %w", id, err)
		}
		if len(versions) == 0 {
			continue
		}

		res := s.db.WithContext(ctx).
			Where("entry_id = ? AND version < ?", id, versions[0]).
			Delete(&Revision{})
		if res.Error != nil {
			return deleted, fmt.Errorf("prune revisions %s: %w", id, res.Error)
		}
		deleted += res.RowsAffected
	}
	return deleted, nil
}

// Sink функция сохранения для отложенного уведомления редактора. Ошибки логируются,
// время начала и результат каждого сохранения передаются в onSave.
func (s *Store) Sink(ctx context.Context, id uuid.UUID, onSave ...func(start time.Time, err error)) func(value []*edtypes.Node) {
	return func(value []*edtypes.Node) {
		start := time.Now()
		entry, err := s.SaveContent(ctx, id, value)
		for _, f := range onSave {
			f(start, err)
		}
		if err != nil {
			slog.Error("Save entry content", "entry", id, "err", err)
			return
		}
		slog.Debug("Entry saved", "entry", id, "version", entry.Version)
	}
}
