package bakeryapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// Category is a product category.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Product is a catalog item as served by the API.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    *Category `json:"category,omitempty"`
	CategoryID  int64     `json:"category_id,omitempty"`
	IsActive    bool      `json:"is_active"`
	ImageURL    string    `json:"image,omitempty"`
}

// CategoryName returns the category display name, empty when uncategorised.
func (p Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}

// ProductInput is the write payload for creating or updating a product.
type ProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	CategoryID  int64   `json:"category_id"`
	IsActive    bool    `json:"is_active"`
}

// ListParams filters a product listing. Zero values mean "no filter".
type ListParams struct {
	Search   string
	Category string // category slug
}

// productListPayload absorbs both response shapes the API serves: a paginated
// envelope with a results array, or a bare list.
type productListPayload struct {
	products []Product
}

func (p *productListPayload) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &p.products)
	}
	var envelope struct {
		Results []Product `json:"results"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	p.products = envelope.Results
	return nil
}

// ListProducts fetches products, optionally filtered by search term and
// category slug.
func (c *Client) ListProducts(ctx context.Context, params ListParams) ([]Product, error) {
	query := url.Values{}
	if params.Search != "" {
		query.Set("search", params.Search)
	}
	if params.Category != "" {
		query.Set("category", params.Category)
	}

	path := "/api/products/"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var payload productListPayload
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, errors.Wrap(err, "[Client.ListProducts]")
	}
	if payload.products == nil {
		return []Product{}, nil
	}
	return payload.products, nil
}

// GetProduct fetches a single product by ID.
func (c *Client) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var product Product
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("/api/products/%d/", id), nil, &product); err != nil {
		return nil, errors.Wrap(err, "[Client.GetProduct]")
	}
	return &product, nil
}

// CreateProduct creates a product. Requires an authenticated client.
func (c *Client) CreateProduct(ctx context.Context, input ProductInput) (*Product, error) {
	var product Product
	if err := c.doJSON(ctx, http.MethodPost, "/api/products/", input, &product); err != nil {
		return nil, errors.Wrap(err, "[Client.CreateProduct]")
	}
	return &product, nil
}

// UpdateProduct replaces a product's fields. Requires an authenticated client.
func (c *Client) UpdateProduct(ctx context.Context, id int64, input ProductInput) (*Product, error) {
	var product Product
	if err := c.doJSON(ctx, http.MethodPut, c.endpoint("/api/products/%d/", id), input, &product); err != nil {
		return nil, errors.Wrap(err, "[Client.UpdateProduct]")
	}
	return &product, nil
}

// DeleteProduct removes a product. Requires an authenticated client.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	if err := c.doJSON(ctx, http.MethodDelete, c.endpoint("/api/products/%d/", id), nil, nil); err != nil {
		return errors.Wrap(err, "[Client.DeleteProduct]")
	}
	return nil
}

// SetProductActive toggles a product's availability. Requires an
// authenticated client.
func (c *Client) SetProductActive(ctx context.Context, id int64, active bool) error {
	body := map[string]bool{"is_active": active}
	if err := c.doJSON(ctx, http.MethodPatch, c.endpoint("/api/products/%d/", id), body, nil); err != nil {
		return errors.Wrap(err, "[Client.SetProductActive]")
	}
	return nil
}

// ListCategories fetches all product categories.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.doJSON(ctx, http.MethodGet, "/api/categories/", nil, &categories); err != nil {
		return nil, errors.Wrap(err, "[Client.ListCategories]")
	}
	return categories, nil
}
