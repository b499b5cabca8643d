package models

import (
	"dbs/src/types"
)

type Dorm struct {
	ID       uint    `gorm:"primarykey" json:"id"`
	Name     string  `json:"name,omitempty"`
	Slug     string  `gorm:"index" json:"slug,omitempty"`
	About    *string `json:"about,omitempty"`
	Address  string  `json:"address,omitempty"`
	OwnerID  uint    `json:"owner_id,omitempty"`
	Verified bool    `gorm:"default:false" json:"verified"`

	Owner User   `gorm:"foreignKey:owner_id" json:"-"`
	Rooms []Room `gorm:"foreignKey:dorm_id" json:"rooms,omitempty"`

	types.Timestamps
}
