package httpserver

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"minishop/internal/cart"
	"minishop/internal/domain"
	checkoutsvc "minishop/internal/service/checkout"
	productsvc "minishop/internal/service/product"
	"minishop/internal/upload"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type productService interface {
	List(ctx context.Context, category string) ([]domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, in productsvc.CreateInput) (*domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

type cartProvider interface {
	State() cart.State
	Dispatch(ctx context.Context, a cart.Action) (cart.State, error)
	Ready() <-chan struct{}
}

type checkoutService interface {
	Checkout(ctx context.Context, in checkoutsvc.Input) (*checkoutsvc.Order, error)
}

type imageStore interface {
	SaveImage(name string, data []byte) (string, error)
	Dir() string
}

type notificationSource interface {
	Subscribe() (<-chan cart.Notification, func())
}

// Deps groups the services the router needs. DB, Uploads and Notifications
// are optional.
type Deps struct {
	DB            pinger
	ProductSvc    productService
	Cart          cartProvider
	CheckoutSvc   checkoutService
	Uploads       imageStore
	Notifications notificationSource
	CORSOrigins   []string
	Heartbeat     time.Duration
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, deps Deps) (*gin.Engine, error) {
	if deps.ProductSvc == nil || deps.Cart == nil || deps.CheckoutSvc == nil {
		return nil, errors.New("httpserver: product service, cart and checkout are required")
	}

	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: deps.CORSOrigins,
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
			MaxAge:       12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.DB, deps.Cart))

	if deps.Uploads != nil {
		router.Static(strings.TrimSuffix(upload.URLPrefix, "/"), deps.Uploads.Dir())
	}

	heartbeat := deps.Heartbeat
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	h := &handlers{
		logger:        logger,
		products:      deps.ProductSvc,
		cart:          deps.Cart,
		checkout:      deps.CheckoutSvc,
		uploads:       deps.Uploads,
		notifications: deps.Notifications,
		heartbeat:     heartbeat,
	}

	api := router.Group("/api")
	api.GET("/products", h.listProducts)
	api.POST("/products/add", h.addProduct)
	api.GET("/categories", h.listCategories)
	api.GET("/test", h.catalogCheck)

	api.GET("/cart", h.getCart)
	api.POST("/cart/actions", h.dispatchCart)
	if deps.Notifications != nil {
		api.GET("/cart/notifications", h.streamNotifications)
	}

	api.GET("/checkout/summary", h.checkoutSummary)
	api.POST("/checkout", h.placeOrder)

	return router, nil
}

type handlers struct {
	logger        *log.Logger
	products      productService
	cart          cartProvider
	checkout      checkoutService
	uploads       imageStore
	notifications notificationSource
	heartbeat     time.Duration
}
