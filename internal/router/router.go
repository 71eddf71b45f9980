// Package router wires repositories, services and handlers into a fiber app.
package router

import (
	"time"

	"brass-inventory/internal/handler"
	"brass-inventory/internal/lock"
	"brass-inventory/internal/middleware"
	"brass-inventory/internal/model"
	"brass-inventory/internal/repository"
	"brass-inventory/internal/service"
	"brass-inventory/internal/ws"
	"brass-inventory/pkg/config"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the process-level resources the app is built from.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Locker lock.Locker
	Hub    *ws.Hub       // nil disables /ws and event publishing
	Cache  *redis.Client // nil disables the dashboard cache
}

// New builds the app. Services are created here so tests and main share the wiring.
func New(d Deps) *fiber.App {
	cfg := d.Config
	if cfg == nil {
		cfg = &config.Config{AppName: "Brass Inventory API", AllowedOrigins: "*"}
	}
	if d.Locker == nil {
		d.Locker = lock.NewLocalLocker()
	}
	var notifier service.Notifier
	if d.Hub != nil {
		notifier = d.Hub
	}

	// Repositories
	productRepo := repository.NewProductRepo(d.DB)
	ledgerRepo := repository.NewLedgerRepo(d.DB)
	invoiceRepo := repository.NewInvoiceRepo(d.DB)
	purchaseRepo := repository.NewPurchaseRepo(d.DB)
	paymentRepo := repository.NewPaymentRepo(d.DB)
	customerRepo := repository.NewCustomerRepo(d.DB)
	supplierRepo := repository.NewSupplierRepo(d.DB)
	reportRepo := repository.NewReportRepo(d.DB)
	idemRepo := repository.NewIdempotencyRepo(d.DB)

	// Services
	stock := service.NewStockKeeper(productRepo, ledgerRepo)
	invService := service.NewInventoryService(productRepo, ledgerRepo, stock, d.Locker, d.DB, notifier)
	invoiceService := service.NewInvoiceService(invoiceRepo, customerRepo, productRepo, paymentRepo, stock, d.Locker, d.DB, notifier)
	purchaseService := service.NewPurchaseService(purchaseRepo, supplierRepo, productRepo, paymentRepo, stock, d.Locker, d.DB, notifier)
	partyService := service.NewPartyService(customerRepo, supplierRepo, reportRepo, d.DB)
	reportService := service.NewReportService(reportRepo)
	dashService := service.NewDashboardService(ledgerRepo, reportRepo, d.Cache)

	// Handlers
	productHandler := handler.NewProductHandler(invService)
	invHandler := handler.NewInventoryHandler(invService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	purchaseHandler := handler.NewPurchaseHandler(purchaseService)
	partyHandler := handler.NewPartyHandler(partyService)
	reportHandler := handler.NewReportHandler(reportService)
	dashHandler := handler.NewDashboardHandler(dashService)
	authHandler := handler.NewAuthHandler()

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ErrorHandler: middleware.ErrorHandler,
		BodyLimit:    cfg.BodyLimitBytes,
	})

	// Middleware
	app.Use(recover.New()) // Panic recovery
	app.Use(logger.New())  // Logging request
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
	}))
	if cfg.RateLimitMax > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimitMax,
			Expiration: cfg.RateLimitWindow,
			Next: func(c *fiber.Ctx) bool {
				return c.Path() == "/health"
			},
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := d.DB.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.Ping(); err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "database unavailable")
		}
		return c.JSON(fiber.Map{"status": "ok", "time": time.Now().UTC()})
	})

	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	api.Post("/auth/validate-token", authHandler.ValidateToken)

	// ============ PROTECTED ROUTES ============
	// Tokens are issued by the identity provider; every route below requires one.
	protected := api.Group("", middleware.RequireAuth(), middleware.Idempotency(idemRepo))

	protected.Get("/auth/me", authHandler.Me)
	protected.Get("/privileges", authHandler.GetPrivileges)

	// Dashboard Routes (anyone who can see stock or reports)
	dashboardView := middleware.RequireAnyPrivilege(model.PrivInventoryView, model.PrivReportView, model.PrivProductView)
	protected.Get("/dashboard/stats", dashboardView, dashHandler.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", dashboardView, dashHandler.GetStockMovement)

	// Product Routes
	protected.Get("/products", middleware.RequirePrivilege(model.PrivProductView), productHandler.GetProducts)
	protected.Get("/products/:id", middleware.RequirePrivilege(model.PrivProductView), productHandler.GetProduct)
	protected.Post("/products", middleware.RequirePrivilege(model.PrivProductCreate), productHandler.CreateProduct)
	protected.Put("/products/:id", middleware.RequirePrivilege(model.PrivProductUpdate), productHandler.UpdateProduct)
	protected.Delete("/products/:id", middleware.RequirePrivilege(model.PrivProductDelete), productHandler.DeleteProduct)
	protected.Get("/products/:id/verify-ledger", middleware.RequirePrivilege(model.PrivInventoryView), invHandler.VerifyLedger)

	// Customer & Supplier Routes
	protected.Get("/customers", middleware.RequirePrivilege(model.PrivPartyView), partyHandler.GetCustomers)
	protected.Get("/customers/:id", middleware.RequirePrivilege(model.PrivPartyView), partyHandler.GetCustomer)
	protected.Post("/customers", middleware.RequirePrivilege(model.PrivPartyManage), partyHandler.CreateCustomer)
	protected.Put("/customers/:id", middleware.RequirePrivilege(model.PrivPartyManage), partyHandler.UpdateCustomer)
	protected.Delete("/customers/:id", middleware.RequirePrivilege(model.PrivPartyManage), partyHandler.DeleteCustomer)
	protected.Get("/suppliers", middleware.RequirePrivilege(model.PrivPartyView), partyHandler.GetSuppliers)
	protected.Get("/suppliers/:id", middleware.RequirePrivilege(model.PrivPartyView), partyHandler.GetSupplier)
	protected.Post("/suppliers", middleware.RequirePrivilege(model.PrivPartyManage), partyHandler.CreateSupplier)
	protected.Put("/suppliers/:id", middleware.RequirePrivilege(model.PrivPartyManage), partyHandler.UpdateSupplier)
	protected.Delete("/suppliers/:id", middleware.RequirePrivilege(model.PrivPartyManage), partyHandler.DeleteSupplier)
	protected.Post("/parties/reconcile", middleware.RequirePrivilege(model.PrivPartyManage), partyHandler.Reconcile)

	// Invoice Routes
	protected.Get("/invoices", middleware.RequirePrivilege(model.PrivInvoiceView), invoiceHandler.GetInvoices)
	protected.Get("/invoices/:id", middleware.RequirePrivilege(model.PrivInvoiceView), invoiceHandler.GetInvoice)
	protected.Post("/invoices", middleware.RequirePrivilege(model.PrivInvoiceCreate), invoiceHandler.CreateInvoice)
	protected.Patch("/invoices/:id", middleware.RequirePrivilege(model.PrivInvoiceUpdate), invoiceHandler.UpdateInvoice)
	protected.Delete("/invoices/:id", middleware.RequirePrivilege(model.PrivInvoiceDelete), invoiceHandler.DeleteInvoice)
	protected.Get("/invoices/:id/payments", middleware.RequirePrivilege(model.PrivInvoiceView), invoiceHandler.GetPayments)
	protected.Post("/invoices/:id/payments", middleware.RequirePrivilege(model.PrivInvoiceUpdate), invoiceHandler.RecordPayment)

	// Purchase Routes
	protected.Get("/purchases", middleware.RequirePrivilege(model.PrivPurchaseView), purchaseHandler.GetPurchases)
	protected.Get("/purchases/:id", middleware.RequirePrivilege(model.PrivPurchaseView), purchaseHandler.GetPurchase)
	protected.Post("/purchases", middleware.RequirePrivilege(model.PrivPurchaseCreate), purchaseHandler.CreatePurchase)
	protected.Patch("/purchases/:id", middleware.RequirePrivilege(model.PrivPurchaseUpdate), purchaseHandler.UpdatePurchase)
	protected.Delete("/purchases/:id", middleware.RequirePrivilege(model.PrivPurchaseDelete), purchaseHandler.DeletePurchase)
	protected.Get("/purchases/:id/payments", middleware.RequirePrivilege(model.PrivPurchaseView), purchaseHandler.GetPayments)
	protected.Post("/purchases/:id/payments", middleware.RequirePrivilege(model.PrivPurchaseUpdate), purchaseHandler.RecordPayment)

	// Inventory Routes
	protected.Post("/inventory/stock-in", middleware.RequirePrivilege(model.PrivInventoryManage), invHandler.StockIn)
	protected.Post("/inventory/stock-out", middleware.RequirePrivilege(model.PrivInventoryManage), invHandler.StockOut)
	protected.Post("/inventory/adjust", middleware.RequirePrivilege(model.PrivInventoryManage), invHandler.Adjust)
	protected.Get("/inventory/stock-report", middleware.RequirePrivilege(model.PrivInventoryView), invHandler.GetStockReport)
	protected.Get("/inventory/ledger", middleware.RequirePrivilege(model.PrivInventoryView), invHandler.GetLedger)

	// Report Routes
	protected.Get("/reports/stock-valuation", middleware.RequirePrivilege(model.PrivReportView), reportHandler.GetStockValuation)
	protected.Get("/reports/gst", middleware.RequirePrivilege(model.PrivReportView), reportHandler.GetGSTReport)
	protected.Get("/reports/profit-loss", middleware.RequirePrivilege(model.PrivReportView), reportHandler.GetProfitLoss)

	// WebSocket Route
	if d.Hub != nil {
		hub := d.Hub
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return c.SendStatus(fiber.StatusUpgradeRequired)
		})
		app.Get("/ws", websocket.New(func(c *websocket.Conn) {
			if !hub.Join(c) {
				return
			}
			defer hub.Leave(c)

			for {
				// Keep alive loop
				if _, _, err := c.ReadMessage(); err != nil {
					break
				}
			}
		}))
	}

	return app
}
