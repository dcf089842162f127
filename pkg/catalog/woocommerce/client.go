// Package woocommerce pages through a WooCommerce products endpoint and
// turns the feed into catalog items.
package woocommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ai-recommendation-be/internal/entity"

	"github.com/microcosm-cc/bluemonday"
)

const DefaultPageSize = 100

var stripPolicy = bluemonday.StrictPolicy()

type named struct {
	Name string `json:"name"`
}

type image struct {
	Src string `json:"src"`
}

// Product mirrors the subset of the WooCommerce v3 product payload we use.
type Product struct {
	Id               int64   `json:"id"`
	Name             string  `json:"name"`
	Status           string  `json:"status"`
	Description      string  `json:"description"`
	ShortDescription string  `json:"short_description"`
	Categories       []named `json:"categories"`
	Tags             []named `json:"tags"`
	Price            string  `json:"price"`
	RegularPrice     string  `json:"regular_price"`
	SalePrice        string  `json:"sale_price"`
	StockStatus      string  `json:"stock_status"`
	Images           []image `json:"images"`
	Permalink        string  `json:"permalink"`
	AverageRating    string  `json:"average_rating"`
	RatingCount      int     `json:"rating_count"`
}

type Client struct {
	endpoint string
	key      string
	secret   string
	pageSize int
	http     *http.Client
}

// NewClient takes the full products endpoint, e.g.
// https://shop.example.com/wp-json/wc/v3/products.
func NewClient(endpoint, key, secret string, pageSize int) *Client {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Client{
		endpoint: endpoint,
		key:      key,
		secret:   secret,
		pageSize: pageSize,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchPage returns one page of published products. Pages start at 1.
func (c *Client) FetchPage(ctx context.Context, page int) ([]Product, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("woocommerce endpoint is not configured")
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("per_page", strconv.Itoa(c.pageSize))
	q.Set("page", strconv.Itoa(page))
	q.Set("status", entity.StatusPublish)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.key != "" {
		req.SetBasicAuth(c.key, c.secret)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("woocommerce request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("woocommerce error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var products []Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("unmarshal products: %w", err)
	}
	return products, nil
}

// FetchAll walks every page and hands each converted page to fn. It stops
// after an empty or short page.
func (c *Client) FetchAll(ctx context.Context, fn func(items []*entity.CatalogItem) error) (int, error) {
	total := 0
	for page := 1; ; page++ {
		products, err := c.FetchPage(ctx, page)
		if err != nil {
			return total, fmt.Errorf("page %d: %w", page, err)
		}
		if len(products) == 0 {
			return total, nil
		}

		items := make([]*entity.CatalogItem, 0, len(products))
		for i := range products {
			items = append(items, products[i].ToCatalogItem())
		}
		if err := fn(items); err != nil {
			return total, err
		}
		total += len(items)

		if len(products) < c.pageSize {
			return total, nil
		}
	}
}

func (p *Product) ToCatalogItem() *entity.CatalogItem {
	item := &entity.CatalogItem{
		ProductId:        p.Id,
		Name:             CleanHTML(p.Name),
		Description:      CleanHTML(p.Description),
		ShortDescription: CleanHTML(p.ShortDescription),
		Categories:       names(p.Categories),
		Tags:             names(p.Tags),
		Price:            orDefault(p.Price, "0"),
		RegularPrice:     orDefault(p.RegularPrice, "0"),
		StockStatus:      orDefault(p.StockStatus, entity.StockStatusOutOfStock),
		ReviewCount:      p.RatingCount,
		Status:           orDefault(p.Status, entity.StatusPublish),
	}
	if p.SalePrice != "" {
		sale := p.SalePrice
		item.SalePrice = &sale
	}
	if len(p.Images) > 0 && p.Images[0].Src != "" {
		src := p.Images[0].Src
		item.ImageUrl = &src
	}
	if p.Permalink != "" {
		link := p.Permalink
		item.Permalink = &link
	}
	if rating, err := strconv.ParseFloat(p.AverageRating, 64); err == nil {
		item.Rating = rating
	}
	return item
}

// CleanHTML strips markup and entities and collapses whitespace.
func CleanHTML(s string) string {
	if s == "" {
		return ""
	}
	// keep words from adjacent block elements apart
	spaced := strings.ReplaceAll(s, ">", "> ")
	text := html.UnescapeString(stripPolicy.Sanitize(spaced))
	return strings.Join(strings.Fields(text), " ")
}

func names(in []named) []string {
	out := make([]string, 0, len(in))
	for _, n := range in {
		if n.Name != "" {
			out = append(out, html.UnescapeString(n.Name))
		}
	}
	return out
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
