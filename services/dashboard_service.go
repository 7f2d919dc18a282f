package services

import (
	"context"

	"sim-talenta-gtk-api/config"
	"sim-talenta-gtk-api/models"

	"gorm.io/gorm"
)

type DashboardStats struct {
	TotalUsers        int64            `json:"totalUsers"`
	TotalSekolah      int64            `json:"totalSekolah"`
	TotalGtk          int64            `json:"totalGtk"`
	TotalTalenta      int64            `json:"totalTalenta"`
	UnverifiedTalenta int64            `json:"unverifiedTalenta"`
	GtkByJenis        map[string]int64 `json:"gtkByJenis"`
	TalentaByJenis    map[string]int64 `json:"talentaByJenis"`
	SekolahByStatus   map[string]int64 `json:"sekolahByStatus"`
	RecentGtk         []models.Gtk     `json:"recentGtk"`
}

type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	if db == nil {
		db = config.DB
	}
	return &DashboardService{db: db}
}

type groupCount struct {
	Key   string
	Count int64
}

// Stats limits GTK figures to sekolahID when it is set.
func (s *DashboardService) Stats(ctx context.Context, sekolahID string) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	gtkScope := func(tx *gorm.DB) *gorm.DB {
		if sekolahID != "" {
			return tx.Where("sekolah_id = ?", sekolahID)
		}
		return tx
	}

	talentaScope := func(tx *gorm.DB) *gorm.DB {
		if sekolahID != "" {
			return tx.Where("gtk_id IN (?)", s.db.Model(&models.Gtk{}).Select("id").Where("sekolah_id = ?", sekolahID))
		}
		return tx
	}

	stats := &DashboardStats{
		GtkByJenis:      map[string]int64{},
		TalentaByJenis:  map[string]int64{},
		SekolahByStatus: map[string]int64{},
	}
	if err := db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Sekolah{}).Count(&stats.TotalSekolah).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Gtk{}).Scopes(gtkScope).Count(&stats.TotalGtk).Error; err != nil {
		return nil, err
	}

	var byJenis []groupCount
	if err := db.Model(&models.Gtk{}).Scopes(gtkScope).
		Select("jenis AS `key`, COUNT(*) AS count").
		Group("jenis").
		Scan(&byJenis).Error; err != nil {
		return nil, err
	}
	for _, row := range byJenis {
		stats.GtkByJenis[row.Key] = row.Count
	}

	if err := db.Model(&models.Talenta{}).Scopes(talentaScope).Count(&stats.TotalTalenta).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Talenta{}).Scopes(talentaScope).
		Where("is_verified = ?", false).
		Count(&stats.UnverifiedTalenta).Error; err != nil {
		return nil, err
	}
	var talentaByJenis []groupCount
	if err := db.Model(&models.Talenta{}).Scopes(talentaScope).
		Select("jenis AS `key`, COUNT(*) AS count").
		Group("jenis").
		Scan(&talentaByJenis).Error; err != nil {
		return nil, err
	}
	for _, row := range talentaByJenis {
		stats.TalentaByJenis[row.Key] = row.Count
	}

	var byStatus []groupCount
	if err := db.Model(&models.Sekolah{}).
		Select("status AS `key`, COUNT(*) AS count").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, row := range byStatus {
		stats.SekolahByStatus[row.Key] = row.Count
	}

	if err := db.Model(&models.Gtk{}).Scopes(gtkScope).
		Preload("Sekolah").
		Order("created_at DESC").
		Limit(5).
		Find(&stats.RecentGtk).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
