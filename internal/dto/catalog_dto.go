package dto

import (
	"time"

	"ai-recommendation-be/internal/entity"
)

type UpsertCatalogItemRequest struct {
	ProductId        int64    `json:"product_id" validate:"required,gt=0"`
	Name             string   `json:"name" validate:"required"`
	Description      string   `json:"description" validate:"required"`
	ShortDescription string   `json:"short_description"`
	Categories       []string `json:"categories"`
	Tags             []string `json:"tags"`
	Price            string   `json:"price" validate:"required"`
	RegularPrice     string   `json:"regular_price"`
	SalePrice        *string  `json:"sale_price"`
	StockStatus      string   `json:"stock_status" validate:"omitempty,oneof=instock outofstock onbackorder"`
	Rating           float64  `json:"rating" validate:"gte=0,lte=5"`
	ReviewCount      int      `json:"review_count" validate:"gte=0"`
	ImageUrl         *string  `json:"image_url"`
	Permalink        *string  `json:"permalink"`
	Status           string   `json:"status"`
}

type UpsertCatalogItemResponse struct {
	ProductId int64 `json:"product_id"`
	Embedded  bool  `json:"embedded"`
}

type CatalogStatsResponse struct {
	TotalProducts     int64 `json:"total_products"`
	UpdatedLast30Days int64 `json:"updated_last_30_days"`
	Published         int64 `json:"published"`
}

type SyncCatalogResponse struct {
	Queued int `json:"queued"`
}

// EmbedCatalogItemMessage is the payload of an embedding job.
type EmbedCatalogItemMessage struct {
	Item       UpsertCatalogItemRequest `json:"item"`
	Source     string                   `json:"source"`
	EnqueuedAt time.Time                `json:"enqueued_at"`
}

func (r *UpsertCatalogItemRequest) ToEntity() *entity.CatalogItem {
	stock := r.StockStatus
	if stock == "" {
		stock = entity.StockStatusOutOfStock
	}
	status := r.Status
	if status == "" {
		status = entity.StatusPublish
	}
	return &entity.CatalogItem{
		ProductId:        r.ProductId,
		Name:             r.Name,
		Description:      r.Description,
		ShortDescription: r.ShortDescription,
		Categories:       nonNilStrings(r.Categories),
		Tags:             nonNilStrings(r.Tags),
		Price:            r.Price,
		RegularPrice:     r.RegularPrice,
		SalePrice:        r.SalePrice,
		StockStatus:      stock,
		Rating:           r.Rating,
		ReviewCount:      r.ReviewCount,
		ImageUrl:         r.ImageUrl,
		Permalink:        r.Permalink,
		Status:           status,
	}
}

// NewUpsertCatalogItemRequest turns a feed item back into a request payload
// so queued jobs and direct upserts share one validation path.
func NewUpsertCatalogItemRequest(item *entity.CatalogItem) UpsertCatalogItemRequest {
	return UpsertCatalogItemRequest{
		ProductId:        item.ProductId,
		Name:             item.Name,
		Description:      item.Description,
		ShortDescription: item.ShortDescription,
		Categories:       item.Categories,
		Tags:             item.Tags,
		Price:            item.Price,
		RegularPrice:     item.RegularPrice,
		SalePrice:        item.SalePrice,
		StockStatus:      item.StockStatus,
		Rating:           item.Rating,
		ReviewCount:      item.ReviewCount,
		ImageUrl:         item.ImageUrl,
		Permalink:        item.Permalink,
		Status:           item.Status,
	}
}
