package storage

import (
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) SaveRun(run *Run) error {
	return r.db.Create(run).Error
}

// RecentRuns returns up to limit runs, newest first.
func (r *Repository) RecentRuns(limit int) ([]Run, error) {
	var runs []Run
	err := r.db.Order("created_at DESC, id DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

// LastSuccessfulRun returns the newest completed run for company.
func (r *Repository) LastSuccessfulRun(company string) (*Run, error) {
	var run Run
	err := r.db.Where("company = ? AND status = ?", company, StatusOK).
		Order("created_at DESC, id DESC").First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
