// Package apitest provides an in-process fake of the bakery REST API for
// tests and local development. It implements the same wire contract as the
// real backend: JWT bearer auth, product and category endpoints, and the
// token endpoint returning {access, refresh} pairs.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/jafsabakes/storefront/bakeryapi"
)

const (
	// InvalidCredentialsDetail is the detail message the token endpoint
	// returns for rejected credentials.
	InvalidCredentialsDetail = "Invalid credentials"

	accessTokenTTL = 30 * time.Minute
)

type user struct {
	ID           int64
	Username     string
	PasswordHash string
	IsStaff      bool
	IsSuperuser  bool
}

// Server is a fake bakery API backed by in-memory fixtures.
type Server struct {
	httpServer *httptest.Server
	signingKey []byte

	mu         sync.RWMutex
	users      map[string]user
	products   map[int64]bakeryapi.Product
	categories []bakeryapi.Category
	nextID     int64

	// Paginated switches product listings to the {"results": [...]}
	// envelope instead of a bare JSON array.
	Paginated bool
}

// NewServer starts a fake API server. Call Close when done.
func NewServer() *Server {
	s := &Server{
		signingKey: []byte("apitest-signing-key"),
		users:      make(map[string]user),
		products:   make(map[int64]bakeryapi.Product),
		nextID:     1,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/token/", s.tokenHandler)
	mux.HandleFunc("GET /api/products/", s.listProductsHandler)
	mux.HandleFunc("POST /api/products/", s.createProductHandler)
	mux.HandleFunc("GET /api/products/{id}/", s.getProductHandler)
	mux.HandleFunc("PUT /api/products/{id}/", s.updateProductHandler)
	mux.HandleFunc("PATCH /api/products/{id}/", s.patchProductHandler)
	mux.HandleFunc("DELETE /api/products/{id}/", s.deleteProductHandler)
	mux.HandleFunc("GET /api/categories/", s.listCategoriesHandler)

	s.httpServer = httptest.NewServer(mux)
	return s
}

// URL returns the server's base URL.
func (s *Server) URL() string {
	return s.httpServer.URL
}

// Close shuts the server down.
func (s *Server) Close() {
	s.httpServer.Close()
}

// AddUser registers a login with the given role flags.
func (s *Server) AddUser(id int64, username, password string, isStaff, isSuperuser bool) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic("apitest: hash password: " + err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = user{
		ID:           id,
		Username:     username,
		PasswordHash: string(hash),
		IsStaff:      isStaff,
		IsSuperuser:  isSuperuser,
	}
}

// AddCategory registers a category fixture.
func (s *Server) AddCategory(id int64, name, slug string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append(s.categories, bakeryapi.Category{ID: id, Name: name, Slug: slug})
}

// AddProduct stores a product fixture, assigning an ID when absent, and
// returns the stored product.
func (s *Server) AddProduct(p bakeryapi.Product) bakeryapi.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.nextID
		s.nextID++
	} else if p.ID >= s.nextID {
		s.nextID = p.ID + 1
	}
	s.products[p.ID] = p
	return p
}

// MintAccessToken issues an access token the way the real backend does:
// HS256 with user_id and role flags in the payload.
func (s *Server) MintAccessToken(id int64, isStaff, isSuperuser bool) string {
	claims := jwtlib.MapClaims{
		"token_type":   "access",
		"user_id":      id,
		"is_staff":     isStaff,
		"is_superuser": isSuperuser,
		"iat":          time.Now().Unix(),
		"exp":          time.Now().Add(accessTokenTTL).Unix(),
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		panic("apitest: sign token: " + err.Error())
	}
	return signed
}

func (s *Server) mintRefreshToken(id int64) string {
	claims := jwtlib.MapClaims{
		"token_type": "refresh",
		"user_id":    id,
		"iat":        time.Now().Unix(),
		"exp":        time.Now().Add(24 * time.Hour).Unix(),
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		panic("apitest: sign token: " + err.Error())
	}
	return signed
}

func (s *Server) tokenHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Malformed request"})
		return
	}

	s.mu.RLock()
	account, ok := s.users[req.Username]
	s.mu.RUnlock()

	if !ok || bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": InvalidCredentialsDetail})
		return
	}

	writeJSON(w, http.StatusOK, bakeryapi.TokenPair{
		Access:  s.MintAccessToken(account.ID, account.IsStaff, account.IsSuperuser),
		Refresh: s.mintRefreshToken(account.ID),
	})
}

// requireStaff validates the bearer token and the is_staff flag. Returns
// false after writing the error response when the request is not allowed.
func (s *Server) requireStaff(w http.ResponseWriter, r *http.Request) bool {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
		return false
	}

	token, err := jwtlib.Parse(parts[1], func(t *jwtlib.Token) (any, error) {
		return s.signingKey, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type"})
		return false
	}

	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type"})
		return false
	}
	isStaff, _ := claims["is_staff"].(bool)
	isSuperuser, _ := claims["is_superuser"].(bool)
	if !isStaff && !isSuperuser {
		writeJSON(w, http.StatusForbidden, map[string]string{"detail": "You do not have permission to perform this action."})
		return false
	}
	return true
}

func (s *Server) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	search := strings.ToLower(r.URL.Query().Get("search"))
	category := r.URL.Query().Get("category")

	s.mu.RLock()
	matched := make([]bakeryapi.Product, 0, len(s.products))
	for _, p := range s.products {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		if category != "" && (p.Category == nil || p.Category.Slug != category) {
			continue
		}
		matched = append(matched, p)
	}
	s.mu.RUnlock()

	sortProductsByID(matched)

	if s.Paginated {
		writeJSON(w, http.StatusOK, map[string]any{"count": len(matched), "results": matched})
		return
	}
	writeJSON(w, http.StatusOK, matched)
}

func (s *Server) getProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}

	s.mu.RLock()
	product, ok := s.products[id]
	s.mu.RUnlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) createProductHandler(w http.ResponseWriter, r *http.Request) {
	if !s.requireStaff(w, r) {
		return
	}

	var input bakeryapi.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Malformed request"})
		return
	}

	s.mu.Lock()
	product := bakeryapi.Product{
		ID:          s.nextID,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Category:    s.categoryByIDLocked(input.CategoryID),
		IsActive:    input.IsActive,
	}
	s.nextID++
	s.products[product.ID] = product
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, product)
}

func (s *Server) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	if !s.requireStaff(w, r) {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}

	var input bakeryapi.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Malformed request"})
		return
	}

	s.mu.Lock()
	product, ok := s.products[id]
	if !ok {
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price
	product.Category = s.categoryByIDLocked(input.CategoryID)
	product.IsActive = input.IsActive
	s.products[id] = product
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, product)
}

func (s *Server) patchProductHandler(w http.ResponseWriter, r *http.Request) {
	if !s.requireStaff(w, r) {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}

	var patch struct {
		IsActive *bool `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Malformed request"})
		return
	}

	s.mu.Lock()
	product, ok := s.products[id]
	if !ok {
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	if patch.IsActive != nil {
		product.IsActive = *patch.IsActive
	}
	s.products[id] = product
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, product)
}

func (s *Server) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	if !s.requireStaff(w, r) {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}

	s.mu.Lock()
	_, ok := s.products[id]
	delete(s.products, id)
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	categories := make([]bakeryapi.Category, len(s.categories))
	copy(categories, s.categories)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) categoryByIDLocked(id int64) *bakeryapi.Category {
	for i := range s.categories {
		if s.categories[i].ID == id {
			c := s.categories[i]
			return &c
		}
	}
	return nil
}

func sortProductsByID(products []bakeryapi.Product) {
	sort.Slice(products, func(i, j int) bool {
		return products[i].ID < products[j].ID
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
