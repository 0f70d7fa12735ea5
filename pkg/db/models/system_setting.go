package models

import "time"

// SystemSetting is a generic key/value row for singleton configuration such
// as the default city. Last writer wins; there is no versioning.
type SystemSetting struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Well-known setting keys.
const (
	SettingDefaultCity           = "default_city"
	SettingMarketplaceFeePercent = "marketplace_fee_percent"
)
