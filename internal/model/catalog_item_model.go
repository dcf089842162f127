package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type CatalogItem struct {
	ProductId        int64                       `gorm:"primaryKey;autoIncrement:false"`
	Name             string                      `gorm:"type:varchar(255);not null"`
	Description      string                      `gorm:"type:text"`
	ShortDescription string                      `gorm:"type:text"`
	Categories       datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Tags             datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Price            string                      `gorm:"type:varchar(64)"`
	PriceValue       *float64                    `gorm:"index"` // parsed Price, null when unparseable
	RegularPrice     string                      `gorm:"type:varchar(64)"`
	SalePrice        *string                     `gorm:"type:varchar(64)"`
	StockStatus      string                      `gorm:"type:varchar(32);index;default:'instock'"`
	Rating           float64                     `gorm:"default:0;index"`
	ReviewCount      int                         `gorm:"default:0"`
	ImageUrl         *string                     `gorm:"type:text"`
	Permalink        *string                     `gorm:"type:text"`
	Status           string                      `gorm:"type:varchar(32);index;default:'publish'"`
	EmbeddingText    string                      `gorm:"type:text"`
	EmbeddingValue   *pgvector.Vector            `gorm:"type:vector(1536)"` // text-embedding-3-small
	CreatedAt        time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt        time.Time                   `gorm:"autoUpdateTime;index"`
}

func (CatalogItem) TableName() string {
	return "catalog_items"
}
