package entity

import (
	"time"
)

const (
	StockStatusInStock    = "instock"
	StockStatusOutOfStock = "outofstock"

	StatusPublish = "publish"
)

type CatalogItem struct {
	ProductId        int64
	Name             string
	Description      string
	ShortDescription string
	Categories       []string
	Tags             []string
	Price            string
	RegularPrice     string
	SalePrice        *string
	StockStatus      string
	Rating           float64
	ReviewCount      int
	ImageUrl         *string
	Permalink        *string
	Status           string
	EmbeddingText    string
	EmbeddingValue   []float32
	CreatedAt        time.Time
	UpdatedAt        *time.Time
}

// IsComplete reports whether the record carries the fields a recommendation needs.
func (c *CatalogItem) IsComplete() bool {
	return c != nil && c.ProductId != 0 && c.Name != "" && c.Description != "" && c.Price != ""
}

// RankedResult is a catalog item paired with its current relevance score.
// Score starts as raw similarity and is adjusted by personalization.
type RankedResult struct {
	Item  *CatalogItem
	Score float64
}

type CatalogStats struct {
	TotalProducts     int64
	UpdatedLast30Days int64
	Published         int64
}
