package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jafsabakes/storefront/bakeryapi"
	"github.com/jafsabakes/storefront/bakeryapi/apitest"
	"github.com/jafsabakes/storefront/credstore"
	"github.com/jafsabakes/storefront/customers"
	fakecustomerrepo "github.com/jafsabakes/storefront/customers/repofake"
	"github.com/jafsabakes/storefront/customers/sqliterepo"
	"github.com/jafsabakes/storefront/internal/config"
	"github.com/jafsabakes/storefront/server"
	"github.com/jafsabakes/storefront/session"
)

const credentialTTL = 30 * 24 * time.Hour

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	api, apiCleanup, err := newAPIClient(c, logger)
	if err != nil {
		return err
	}
	defer apiCleanup()

	customerRepo, repoCleanup, err := newCustomerRepo(c)
	if err != nil {
		return err
	}
	defer repoCleanup()

	if err := customers.SeedDemoData(context.Background(), customerRepo); err != nil {
		return fmt.Errorf("seed customer registry: %w", err)
	}

	flashes := server.NewFlashStore()
	sessions := session.NewRegistry(newCredentialStore(c), api,
		session.WithRegistryLogger(logger),
		session.WithScratchFactory(flashes.ScratchFor),
	)

	handler, err := server.New(c, server.Deps{
		Sessions:  sessions,
		API:       api,
		Customers: customerRepo,
		Flashes:   flashes,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func newCredentialStore(c config.Config) credstore.Store {
	if addr := c.GetRedisAddr(); addr != "" {
		return credstore.NewRedisStore(redis.NewClient(&redis.Options{Addr: addr}), credentialTTL)
	}
	return credstore.NewInMemoryStore()
}

// newAPIClient connects to the configured bakery API. Without one configured,
// DEV mode runs against an in-process fake seeded with demo fixtures.
func newAPIClient(c config.Config, logger zerolog.Logger) (*bakeryapi.Client, func(), error) {
	if baseURL := c.GetAPIBaseURL(); baseURL != "" {
		return bakeryapi.NewClient(baseURL, bakeryapi.WithLogger(logger)), func() {}, nil
	}
	if c.GetEnv() != "DEV" {
		return nil, nil, errors.New("BAKERY_API_URL must be set outside DEV")
	}

	fake := apitest.NewServer()
	seedDevFixtures(fake)
	log.Printf("No bakery API configured, using in-process fake at %s\n", fake.URL())
	return bakeryapi.NewClient(fake.URL(), bakeryapi.WithLogger(logger)), fake.Close, nil
}

func seedDevFixtures(fake *apitest.Server) {
	fake.AddUser(1, "admin", "admin123", true, true)
	fake.AddCategory(1, "Cakes", "cakes")
	fake.AddCategory(2, "Snacks", "snacks")
	fake.AddCategory(3, "Breads", "breads")

	cakes := &bakeryapi.Category{ID: 1, Name: "Cakes", Slug: "cakes"}
	snacks := &bakeryapi.Category{ID: 2, Name: "Snacks", Slug: "snacks"}
	breads := &bakeryapi.Category{ID: 3, Name: "Breads", Slug: "breads"}
	fake.AddProduct(bakeryapi.Product{Name: "Chocolate Truffle Cake", Description: "Rich chocolate layers", Price: 550, Category: cakes, IsActive: true})
	fake.AddProduct(bakeryapi.Product{Name: "Plum Cake", Description: "Christmas special", Price: 350, Category: cakes, IsActive: true})
	fake.AddProduct(bakeryapi.Product{Name: "Samosa", Description: "Crispy potato samosa", Price: 15, Category: snacks, IsActive: true})
	fake.AddProduct(bakeryapi.Product{Name: "Whole Wheat Bread", Description: "Baked fresh daily", Price: 45, Category: breads, IsActive: true})
}

func newCustomerRepo(c config.Config) (customers.Repo, func(), error) {
	if path := c.GetCustomerDBPath(); path != "" {
		repo, err := sqliterepo.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open customer db: %w", err)
		}
		return repo, func() { _ = repo.Close() }, nil
	}
	return fakecustomerrepo.NewFakeCustomerRepo(), func() {}, nil
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
