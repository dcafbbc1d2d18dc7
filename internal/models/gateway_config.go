package models

import (
	"time"

	"gorm.io/datatypes"
)

// GatewayConfig holds the configuration of one deposit gateway (the
// simulated USDT gateway in the default setup). The driver-specific
// settings live in the JSON blob.
type GatewayConfig struct {
	ID        uint   `gorm:"primarykey"`
	UUID      string `gorm:"type:varchar(36);uniqueIndex;not null"`
	Name      string `gorm:"type:varchar(100);not null"`
	Driver    string `gorm:"type:varchar(50);not null"`
	Config    datatypes.JSON
	Enable    bool `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
