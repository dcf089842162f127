package specification

import (
	"encoding/json"
	"strconv"
	"time"

	"gorm.io/gorm"
)

type ByProductID struct {
	ID int64
}

func (s ByProductID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("product_id = ?", s.ID)
}

type ExcludeProductID struct {
	ID int64
}

func (s ExcludeProductID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("product_id <> ?", s.ID)
}

type ByStockStatus struct {
	Status string
}

func (s ByStockStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("stock_status = ?", s.Status)
}

// ByPublicationStatus filters on the feed status ("publish", "draft", ...).
type ByPublicationStatus struct {
	Status string
}

func (s ByPublicationStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// InCategory matches items whose jsonb categories array contains Category.
type InCategory struct {
	Category string
}

func (s InCategory) Apply(db *gorm.DB) *gorm.DB {
	containment, _ := json.Marshal([]string{s.Category})
	return db.Where("categories @> ?::jsonb", string(containment))
}

// PriceBetween filters on the parsed price column. Nil bounds are open.
type PriceBetween struct {
	Min *float64
	Max *float64
}

func (s PriceBetween) Apply(db *gorm.DB) *gorm.DB {
	if s.Min != nil {
		db = db.Where("price_value >= ?", *s.Min)
	}
	if s.Max != nil {
		db = db.Where("price_value <= ?", *s.Max)
	}
	return db
}

type MinRating struct {
	Rating float64
}

func (s MinRating) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("rating >= ?", s.Rating)
}

type UpdatedSince struct {
	Since time.Time
}

func (s UpdatedSince) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("updated_at >= ?", s.Since)
}

type HasEmbedding struct{}

func (s HasEmbedding) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("embedding_value IS NOT NULL")
}

// FromFilters translates request filters into specifications. Only known keys
// are honoured; anything else is ignored so callers cannot inject columns.
func FromFilters(filters map[string]interface{}) []Specification {
	var specs []Specification
	if v, ok := asString(filters["stock_status"]); ok {
		specs = append(specs, ByStockStatus{Status: v})
	}
	if v, ok := asString(filters["status"]); ok {
		specs = append(specs, ByPublicationStatus{Status: v})
	}
	if v, ok := asString(filters["category"]); ok {
		specs = append(specs, InCategory{Category: v})
	}

	var priceRange PriceBetween
	if v, ok := asFloat(filters["min_price"]); ok {
		priceRange.Min = &v
	}
	if v, ok := asFloat(filters["max_price"]); ok {
		priceRange.Max = &v
	}
	if priceRange.Min != nil || priceRange.Max != nil {
		specs = append(specs, priceRange)
	}

	if v, ok := asFloat(filters["min_rating"]); ok {
		specs = append(specs, MinRating{Rating: v})
	}
	return specs
}

func asString(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok && s != ""
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
