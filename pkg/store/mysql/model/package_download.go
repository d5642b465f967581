package model

import "time"

// PackageDownload is one day of download counts for one registry package
type PackageDownload struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Date        string    `gorm:"column:date;size:10;not null;uniqueIndex:uk_date_registry_package" json:"date"`
	Registry    string    `gorm:"column:registry;size:16;not null;uniqueIndex:uk_date_registry_package" json:"registry"`
	PackageName string    `gorm:"column:package_name;size:128;not null;uniqueIndex:uk_date_registry_package" json:"packageName"`
	Downloads   int       `gorm:"column:downloads;not null;default:0" json:"downloads"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"createdAt"`
}

// TableName overrides the table name
func (PackageDownload) TableName() string {
	return "package_downloads"
}
