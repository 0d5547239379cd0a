package bakeryapi_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/jafsabakes/storefront/bakeryapi"
	"github.com/jafsabakes/storefront/bakeryapi/apitest"
)

type clientFixture struct {
	api    *apitest.Server
	client *bakeryapi.Client
}

func newClientFixture(t *testing.T) *clientFixture {
	t.Helper()

	api := apitest.NewServer()
	t.Cleanup(api.Close)

	api.AddUser(7, "admin", "secret123", true, false)
	api.AddCategory(1, "Cakes", "cakes")
	api.AddCategory(2, "Snacks", "snacks")

	return &clientFixture{
		api:    api,
		client: bakeryapi.NewClient(api.URL()),
	}
}

func (f *clientFixture) authed(t *testing.T) *bakeryapi.Client {
	t.Helper()
	token := f.api.MintAccessToken(7, true, false)
	return f.client.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
}

func TestClient_Login(t *testing.T) {
	ctx := context.Background()
	f := newClientFixture(t)

	t.Run("valid credentials", func(t *testing.T) {
		pair, err := f.client.Login(ctx, "admin", "secret123")
		require.NoError(t, err)
		require.NotEmpty(t, pair.Access)
		require.NotEmpty(t, pair.Refresh)
	})

	t.Run("rejected credentials carry the server detail", func(t *testing.T) {
		_, err := f.client.Login(ctx, "admin", "wrong")
		var apiErr *bakeryapi.AuthError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, 401, apiErr.StatusCode)
		require.Equal(t, apitest.InvalidCredentialsDetail, apiErr.Detail)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := f.client.Login(ctx, "ghost", "whatever")
		var apiErr *bakeryapi.AuthError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, 401, apiErr.StatusCode)
	})
}

func TestClient_LoginUnreachable(t *testing.T) {
	client := bakeryapi.NewClient("http://127.0.0.1:1")

	_, err := client.Login(context.Background(), "admin", "secret123")
	require.ErrorIs(t, err, bakeryapi.ErrUnreachable)
}

func TestClient_ListProducts(t *testing.T) {
	ctx := context.Background()
	f := newClientFixture(t)

	cakes := &bakeryapi.Category{ID: 1, Name: "Cakes", Slug: "cakes"}
	snacks := &bakeryapi.Category{ID: 2, Name: "Snacks", Slug: "snacks"}
	f.api.AddProduct(bakeryapi.Product{Name: "Chocolate Cake", Description: "Rich and dark", Price: 450, Category: cakes, IsActive: true})
	f.api.AddProduct(bakeryapi.Product{Name: "Samosa", Description: "Crispy snack", Price: 15, Category: snacks, IsActive: true})

	t.Run("all products", func(t *testing.T) {
		products, err := f.client.ListProducts(ctx, bakeryapi.ListParams{})
		require.NoError(t, err)
		require.Len(t, products, 2)
	})

	t.Run("search filter", func(t *testing.T) {
		products, err := f.client.ListProducts(ctx, bakeryapi.ListParams{Search: "chocolate"})
		require.NoError(t, err)
		require.Len(t, products, 1)
		require.Equal(t, "Chocolate Cake", products[0].Name)
	})

	t.Run("category filter", func(t *testing.T) {
		products, err := f.client.ListProducts(ctx, bakeryapi.ListParams{Category: "snacks"})
		require.NoError(t, err)
		require.Len(t, products, 1)
		require.Equal(t, "Samosa", products[0].Name)
	})

	t.Run("paginated envelope is handled the same as a bare list", func(t *testing.T) {
		f.api.Paginated = true
		defer func() { f.api.Paginated = false }()

		products, err := f.client.ListProducts(ctx, bakeryapi.ListParams{})
		require.NoError(t, err)
		require.Len(t, products, 2)
	})

	t.Run("no matches yields an empty slice", func(t *testing.T) {
		products, err := f.client.ListProducts(ctx, bakeryapi.ListParams{Search: "nonexistent"})
		require.NoError(t, err)
		require.NotNil(t, products)
		require.Empty(t, products)
	})
}

func TestClient_ProductCRUD(t *testing.T) {
	ctx := context.Background()
	f := newClientFixture(t)
	authed := f.authed(t)

	created, err := authed.CreateProduct(ctx, bakeryapi.ProductInput{
		Name:        "Plum Cake",
		Description: "Christmas special",
		Price:       350,
		CategoryID:  1,
		IsActive:    true,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, "Cakes", created.CategoryName())

	updated, err := authed.UpdateProduct(ctx, created.ID, bakeryapi.ProductInput{
		Name:        "Plum Cake",
		Description: "Christmas special",
		Price:       375,
		CategoryID:  1,
		IsActive:    true,
	})
	require.NoError(t, err)
	require.Equal(t, 375.0, updated.Price)

	require.NoError(t, authed.SetProductActive(ctx, created.ID, false))
	got, err := f.client.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, got.IsActive)

	require.NoError(t, authed.DeleteProduct(ctx, created.ID))
	_, err = f.client.GetProduct(ctx, created.ID)
	require.True(t, bakeryapi.IsNotFound(err))
}

func TestClient_MutationsRequireAuth(t *testing.T) {
	ctx := context.Background()
	f := newClientFixture(t)

	_, err := f.client.CreateProduct(ctx, bakeryapi.ProductInput{Name: "Bun", Price: 10, CategoryID: 2})
	var apiErr *bakeryapi.AuthError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 401, apiErr.StatusCode)
}

func TestClient_MutationsRequireStaff(t *testing.T) {
	ctx := context.Background()
	f := newClientFixture(t)

	token := f.api.MintAccessToken(99, false, false)
	nonStaff := f.client.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))

	_, err := nonStaff.CreateProduct(ctx, bakeryapi.ProductInput{Name: "Bun", Price: 10, CategoryID: 2})
	var apiErr *bakeryapi.AuthError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 403, apiErr.StatusCode)
}

func TestClient_ListCategories(t *testing.T) {
	f := newClientFixture(t)

	categories, err := f.client.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	require.Equal(t, "cakes", categories[0].Slug)
}
