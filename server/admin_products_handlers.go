package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jafsabakes/storefront/bakeryapi"
)

// productForm is the product create/update form payload.
type productForm struct {
	Name        string `validate:"required"`
	Description string
	Price       float64 `validate:"required,gt=0"`
	CategoryID  int64   `validate:"required"`
	IsActive    bool
}

func (f productForm) input() bakeryapi.ProductInput {
	return bakeryapi.ProductInput{
		Name:        f.Name,
		Description: f.Description,
		Price:       f.Price,
		CategoryID:  f.CategoryID,
		IsActive:    f.IsActive,
	}
}

// AdminProductsPageData contains data for rendering the product management page
type AdminProductsPageData struct {
	AdminPageData
	Products   []bakeryapi.Product
	Categories []bakeryapi.Category
	LoadError  bool
}

// AdminProductsHandler renders the product management page (GET /admin/products)
func (s *Server) AdminProductsHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("admin_products.html")

	return func(w http.ResponseWriter, r *http.Request) {
		data := AdminProductsPageData{
			AdminPageData: AdminPageData{
				AppName: s.config.GetAppName(),
				User:    userFromContext(r.Context()),
				Tab:     "products",
				Flashes: s.flashes.Pop(s.profileID(w, r)),
			},
		}

		products, err := s.api.ListProducts(r.Context(), bakeryapi.ListParams{})
		if err != nil {
			s.log.Error().Err(err).Msg("failed to load products for admin")
			data.LoadError = true
			renderHTML(w, tmpl, data)
			return
		}
		data.Products = products

		if categories, err := s.api.ListCategories(r.Context()); err == nil {
			data.Categories = categories
		}

		renderHTML(w, tmpl, data)
	}
}

// AdminProductCreateHandler creates a product (POST /admin/products)
func (s *Server) AdminProductCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := s.parseProductForm(w, r)
		if !ok {
			return
		}

		api, err := s.authedAPI(r.Context(), sessionFromContext(r.Context()))
		if err != nil {
			s.productActionFailed(w, r, "create product", err)
			return
		}

		product, err := api.CreateProduct(r.Context(), form.input())
		if err != nil {
			s.productActionFailed(w, r, "create product", err)
			return
		}

		s.flashes.Add(s.profileID(w, r), "Created "+product.Name)
		http.Redirect(w, r, RouteAdminProducts, http.StatusSeeOther)
	}
}

// AdminProductUpdateHandler replaces a product's fields (POST /admin/products/{id})
func (s *Server) AdminProductUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := productIDFromPath(w, r)
		if !ok {
			return
		}
		form, ok := s.parseProductForm(w, r)
		if !ok {
			return
		}

		api, err := s.authedAPI(r.Context(), sessionFromContext(r.Context()))
		if err != nil {
			s.productActionFailed(w, r, "update product", err)
			return
		}

		product, err := api.UpdateProduct(r.Context(), id, form.input())
		if err != nil {
			s.productActionFailed(w, r, "update product", err)
			return
		}

		s.flashes.Add(s.profileID(w, r), "Updated "+product.Name)
		http.Redirect(w, r, RouteAdminProducts, http.StatusSeeOther)
	}
}

// AdminProductToggleHandler flips a product's availability (POST /admin/products/{id}/toggle)
func (s *Server) AdminProductToggleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := productIDFromPath(w, r)
		if !ok {
			return
		}
		active := r.FormValue("active") == "true"

		api, err := s.authedAPI(r.Context(), sessionFromContext(r.Context()))
		if err != nil {
			s.productActionFailed(w, r, "toggle product", err)
			return
		}

		if err := api.SetProductActive(r.Context(), id, active); err != nil {
			s.productActionFailed(w, r, "toggle product", err)
			return
		}

		http.Redirect(w, r, RouteAdminProducts, http.StatusSeeOther)
	}
}

// AdminProductDeleteHandler removes a product (POST /admin/products/{id}/delete)
func (s *Server) AdminProductDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := productIDFromPath(w, r)
		if !ok {
			return
		}

		api, err := s.authedAPI(r.Context(), sessionFromContext(r.Context()))
		if err != nil {
			s.productActionFailed(w, r, "delete product", err)
			return
		}

		if err := api.DeleteProduct(r.Context(), id); err != nil && !bakeryapi.IsNotFound(err) {
			s.productActionFailed(w, r, "delete product", err)
			return
		}

		s.flashes.Add(s.profileID(w, r), "Product deleted")
		http.Redirect(w, r, RouteAdminProducts, http.StatusSeeOther)
	}
}

// parseProductForm decodes and validates the product form. On validation
// failure the visitor is sent back to the products page with the problems
// queued as notices, and ok is false.
func (s *Server) parseProductForm(w http.ResponseWriter, r *http.Request) (productForm, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return productForm{}, false
	}

	price, _ := strconv.ParseFloat(strings.TrimSpace(r.FormValue("price")), 64)
	categoryID, _ := strconv.ParseInt(r.FormValue("category_id"), 10, 64)

	form := productForm{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Price:       price,
		CategoryID:  categoryID,
		IsActive:    r.FormValue("is_active") == "on" || r.FormValue("is_active") == "true",
	}

	if err := s.validate.Struct(form); err != nil {
		profileID := s.profileID(w, r)
		for _, msg := range productFormErrors(err) {
			s.flashes.Add(profileID, msg)
		}
		http.Redirect(w, r, RouteAdminProducts, http.StatusSeeOther)
		return productForm{}, false
	}
	return form, true
}

// productFormErrors maps validation failures to the messages shown inline.
func productFormErrors(err error) []string {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{"Invalid product details"}
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		switch fieldErr.Field() {
		case "Name":
			messages = append(messages, "Product name is required")
		case "Price":
			messages = append(messages, "Price must be greater than zero")
		case "CategoryID":
			messages = append(messages, "Category is required")
		default:
			messages = append(messages, "Invalid product details")
		}
	}
	return messages
}

func (s *Server) productActionFailed(w http.ResponseWriter, r *http.Request, action string, err error) {
	s.log.Error().Err(err).Msg("failed to " + action)
	s.flashes.Add(s.profileID(w, r), "Failed to "+action)
	http.Redirect(w, r, RouteAdminProducts, http.StatusSeeOther)
}

func productIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "404 - Page Not Found", http.StatusNotFound)
		return 0, false
	}
	return id, true
}
