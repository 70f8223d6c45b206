package integration

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"shopstream/internal/cart"
	"shopstream/internal/checkout"
	"shopstream/internal/config"
	"shopstream/internal/coupon"
	"shopstream/internal/handler"
	"shopstream/internal/model"
	"shopstream/internal/notify"
	"shopstream/internal/repository"
	"shopstream/internal/router"
	"shopstream/internal/service"
	"shopstream/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestAPIKey is the key the test server expects.
const TestAPIKey = "test-api-key"

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container with the schema applied.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := repository.NewPoolFromConnString(ctx, connStr, config.DatabaseConfig{
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := repository.ApplySchema(ctx, pool); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedProducts upserts the test catalogue.
func SeedProducts(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	products := []model.Product{
		{ID: "P001", Name: "Wireless Headphones", Price: decimal.RequireFromString("100.00"), Images: []string{"hp.jpg"}, Category: "Electronics", InStock: true},
		{ID: "P002", Name: "Ceramic Mug", Price: decimal.RequireFromString("20.00"), Images: []string{"mug.jpg"}, Category: "Home", InStock: true},
		{ID: "P003", Name: "Notebook", Price: decimal.RequireFromString("9.99"), Images: []string{}, Category: "Stationery", InStock: true},
	}

	if err := repository.NewProductRepository(pool, zerolog.Nop()).Upsert(context.Background(), products); err != nil {
		t.Fatalf("failed to seed products: %v", err)
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_items", "orders", "products"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// TestServer is the fully wired API plus the pieces tests inspect directly.
type TestServer struct {
	Handler  http.Handler
	Cart     *cart.Store
	Wizard   *checkout.Wizard
	Notifier *notify.LogNotifier
}

// NewTestServer wires the API the way cmd/api does, with the cart persisted
// to st.
func NewTestServer(t *testing.T, pool *pgxpool.Pool, st storage.Storage) *TestServer {
	t.Helper()

	logger := zerolog.Nop()
	ctx := context.Background()

	notifier := notify.NewLogNotifier(20, logger)
	store, err := cart.Open(ctx, st, notifier, logger)
	if err != nil {
		t.Fatalf("failed to open cart: %v", err)
	}

	registry, err := coupon.NewRegistry(ctx, nil, coupon.NewFileLoader(logger), logger)
	if err != nil {
		t.Fatalf("failed to create promo registry: %v", err)
	}

	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	productService := service.NewProductService(productRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, registry, logger)
	wizard := checkout.NewWizard(store, orderService, registry, notifier, logger)

	h := router.New(router.Handlers{
		Product:       handler.NewProductHandler(productService, logger),
		Order:         handler.NewOrderHandler(orderService, logger),
		Cart:          handler.NewCartHandler(store, productService, registry, logger),
		Checkout:      handler.NewCheckoutHandler(wizard, logger),
		Notifications: handler.NewNotificationHandler(notifier, logger),
	}, TestAPIKey, logger)

	return &TestServer{Handler: h, Cart: store, Wizard: wizard, Notifier: notifier}
}
