package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/Owujuah/apex-living/config"
	adminGateway "github.com/Owujuah/apex-living/internal/api/v1/admin/gateway"
	adminStats "github.com/Owujuah/apex-living/internal/api/v1/admin/stats"
	adminTransaction "github.com/Owujuah/apex-living/internal/api/v1/admin/transaction"
	adminUser "github.com/Owujuah/apex-living/internal/api/v1/admin/user"
	"github.com/Owujuah/apex-living/internal/api/v1/auth"
	"github.com/Owujuah/apex-living/internal/api/v1/contract"
	"github.com/Owujuah/apex-living/internal/api/v1/dashboard"
	"github.com/Owujuah/apex-living/internal/api/v1/listing"
	userRoutes "github.com/Owujuah/apex-living/internal/api/v1/user"
	"github.com/Owujuah/apex-living/internal/api/v1/wallet"
	"github.com/Owujuah/apex-living/internal/middleware"
	"github.com/Owujuah/apex-living/internal/notifier"
	"github.com/Owujuah/apex-living/internal/services"
)

// Services bundles every constructed service so main can wire
// subscriptions and seeding against the same instances the router uses.
type Services struct {
	Auth         *services.AuthService
	Users        *services.UserService
	Listings     *services.ListingService
	Contracts    *services.ContractService
	Wallet       *services.WalletService
	Stats        *services.StatsService
	Transactions *services.TransactionService
	Gateways     *services.GatewayService
}

func BuildServices(cfg *config.Config, db *gorm.DB, rdb *redis.Client, bus *notifier.Bus) *Services {
	stats := services.NewStatsService(db, rdb)
	return &Services{
		Auth:         services.NewAuthService(db, cfg.JWTSecret),
		Users:        services.NewUserService(db, rdb, bus),
		Listings:     services.NewListingService(db, bus, stats),
		Contracts:    services.NewContractService(db, bus, stats, cfg.LedgerSecret),
		Wallet:       services.NewWalletService(db, bus, stats, cfg.LedgerSecret),
		Stats:        stats,
		Transactions: services.NewTransactionService(db),
		Gateways:     services.NewGatewayService(db),
	}
}

func NewRouter(cfg *config.Config, svc *Services) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Logger(), gin.Recovery())

	// Configure CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:8080"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := auth.NewHandler(svc.Auth)
	userHandler := userRoutes.NewHandler(svc.Users)
	listingHandler := listing.NewHandler(svc.Listings)
	contractHandler := contract.NewHandler(svc.Contracts)
	walletHandler := wallet.NewHandler(svc.Wallet, svc.Gateways)
	dashboardHandler := dashboard.NewHandler(svc.Stats)
	adminStatsHandler := adminStats.NewHandler(svc.Stats)
	adminUserHandler := adminUser.NewHandler(svc.Users, svc.Wallet)
	adminTransactionHandler := adminTransaction.NewHandler(svc.Transactions)
	adminGatewayHandler := adminGateway.NewHandler(svc.Gateways)

	// API v1
	v1 := router.Group("/api/v1")
	{
		authHandler.RegisterRoutes(v1.Group("/auth"))
		listingHandler.RegisterPublicRoutes(v1.Group("/listings"))
		walletHandler.RegisterNotifyRoutes(v1.Group("/wallet"))

		authorized := v1.Group("/")
		authorized.Use(middleware.AuthMiddleware(svc.Users, cfg.JWTSecret))
		{
			userHandler.RegisterRoutes(authorized.Group("/users"))
			listingHandler.RegisterAuthorizedRoutes(authorized.Group("/listings"))
			contractHandler.RegisterRoutes(authorized.Group("/contracts"))
			walletHandler.RegisterRoutes(authorized.Group("/wallet"))
			dashboardHandler.RegisterRoutes(authorized.Group("/dashboard"))
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware(svc.Users, cfg.JWTSecret))
		{
			adminStatsHandler.RegisterRoutes(admin.Group("/stats"))
			adminUserHandler.RegisterRoutes(admin.Group("/users"))
			adminTransactionHandler.RegisterRoutes(admin.Group("/transactions"))
			adminGatewayHandler.RegisterRoutes(admin.Group("/gateways"))
		}
	}

	return router
}
