package orm

import (
	"log"
	"os"
	"sync"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/pescuma/vulndig/lib/consoles"
	"github.com/pescuma/vulndig/lib/model"
	"github.com/pescuma/vulndig/lib/storages"
)

type gormStorage struct {
	mutex   sync.RWMutex
	db      *gorm.DB
	console consoles.Console

	fixes  *model.Fixes
	repos  *model.Repositories
	config *map[string]string
}

func NewGormStorage(d gorm.Dialector, console consoles.Console) (storages.Storage, error) {
	l := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: false,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(d, &gorm.Config{
		Logger: l,
	})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&sqlConfig{},
		&sqlFix{},
		&sqlRepository{},
	)
	if err != nil {
		return nil, err
	}

	return &gormStorage{
		db:      db,
		console: console,
	}, nil
}

func (s *gormStorage) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}

	return db.Close()
}

func (s *gormStorage) LoadFixes() (*model.Fixes, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.fixes != nil {
		return s.fixes, nil
	}

	s.console.Printf("Loading fixes...\n")

	result := model.NewFixes()

	var fixes []*sqlFix
	err := s.db.Find(&fixes).Error
	if err != nil {
		return nil, err
	}

	for _, sf := range fixes {
		toModelFix(result, sf)
	}

	s.fixes = result
	return result, nil
}

func (s *gormStorage) WriteFixes() error {
	if s.fixes == nil {
		return nil
	}

	return s.writeFixes(s.fixes.List())
}

func (s *gormStorage) WriteFix(fix *model.Fix) error {
	return s.writeFixes([]*model.Fix{fix})
}

func (s *gormStorage) writeFixes(fixes []*model.Fix) error {
	if len(fixes) == 0 {
		return nil
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	rows := lo.Map(fixes, func(f *model.Fix, _ int) *sqlFix { return toSqlFix(f) })

	return s.session().Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows).Error
}

func (s *gormStorage) LoadRepositories() (*model.Repositories, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.repos != nil {
		return s.repos, nil
	}

	s.console.Printf("Loading repositories...\n")

	result := model.NewRepositories()

	var repos []*sqlRepository
	err := s.db.Find(&repos).Error
	if err != nil {
		return nil, err
	}

	for _, sr := range repos {
		toModelRepository(result, sr)
	}

	s.repos = result
	return result, nil
}

func (s *gormStorage) WriteRepositories() error {
	if s.repos == nil {
		return nil
	}

	return s.writeRepositories(s.repos.List())
}

func (s *gormStorage) WriteRepository(repo *model.Repository) error {
	return s.writeRepositories([]*model.Repository{repo})
}

func (s *gormStorage) writeRepositories(repos []*model.Repository) error {
	if len(repos) == 0 {
		return nil
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	rows := lo.Map(repos, func(r *model.Repository, _ int) *sqlRepository { return toSqlRepository(r) })

	return s.session().Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows).Error
}

func (s *gormStorage) LoadConfig() (*map[string]string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.config != nil {
		return s.config, nil
	}

	result := map[string]string{}

	var configs []*sqlConfig
	err := s.db.Find(&configs).Error
	if err != nil {
		return nil, err
	}

	for _, sc := range configs {
		result[sc.Key] = sc.Value
	}

	s.config = &result
	return &result, nil
}

func (s *gormStorage) WriteConfig() error {
	if s.config == nil {
		return nil
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	rows := make([]*sqlConfig, 0, len(*s.config))
	for k, v := range *s.config {
		rows = append(rows, &sqlConfig{Key: k, Value: v})
	}

	if len(rows) == 0 {
		return nil
	}

	return s.session().Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows).Error
}

func (s *gormStorage) session() *gorm.DB {
	now := time.Now().Local()
	return s.db.Session(&gorm.Session{
		NowFunc:         func() time.Time { return now },
		CreateBatchSize: 300,
	})
}
