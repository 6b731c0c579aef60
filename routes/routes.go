package routes

import (
	"detailpro-backend/config"
	"detailpro-backend/controllers"
	"detailpro-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func SetupRouter(cfg *config.Config, ctl *controllers.Controller, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	origins := make(map[string]bool, len(cfg.Server.CORSOrigins))
	for _, o := range cfg.Server.CORSOrigins {
		origins[o] = true
	}
	r.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) bool {
			return origins[origin]
		},
	}))

	r.Use(config.PerformanceLogger(log))

	authRequired := utils.AuthMiddleware(cfg.JWT.Secret)

	auth := r.Group("/auth")
	{
		auth.POST("/register", ctl.Register)
		auth.POST("/login", ctl.Login)

		auth.Use(authRequired)
		auth.GET("/me", ctl.Me)
		auth.PUT("/profile", ctl.UpdateProfile)
	}

	api := r.Group("/api")
	api.Use(authRequired)
	{
		clients := api.Group("/clients")
		{
			clients.POST("", ctl.CreateClient)
			clients.GET("", ctl.GetClients)
			clients.GET("/:id", ctl.GetClient)
			clients.PUT("/:id", ctl.UpdateClient)
			clients.DELETE("/:id", ctl.DeleteClient)
		}
		api.GET("/vehicles", ctl.GetVehicles)

		products := api.Group("/products")
		{
			products.POST("", ctl.CreateProduct)
			products.GET("", ctl.GetProducts)
			products.GET("/:id", ctl.GetProduct)
			products.PUT("/:id", ctl.UpdateProduct)
			products.DELETE("/:id", ctl.DeleteProduct)
			products.GET("/:id/cost", ctl.GetProductCost)
		}

		services := api.Group("/services")
		{
			services.POST("", ctl.CreateService)
			services.GET("", ctl.GetServices)
			services.GET("/:id", ctl.GetService)
			services.PUT("/:id", ctl.UpdateService)
			services.DELETE("/:id", ctl.DeleteService)
			services.GET("/:id/cost", ctl.GetServiceCost)
		}

		methods := api.Group("/payment-methods")
		{
			methods.POST("", ctl.CreatePaymentMethod)
			methods.GET("", ctl.GetPaymentMethods)
			methods.GET("/:id", ctl.GetPaymentMethod)
			methods.PUT("/:id", ctl.UpdatePaymentMethod)
			methods.PUT("/:id/installments", ctl.UpdateInstallments)
			methods.DELETE("/:id", ctl.DeletePaymentMethod)
		}

		quotes := api.Group("/quotes")
		{
			quotes.POST("/calculate", ctl.CalculateQuote)
			quotes.POST("", ctl.CreateQuote)
			quotes.GET("", ctl.GetQuotes)
			quotes.GET("/:id", ctl.GetQuote)
			quotes.PUT("/:id", ctl.UpdateQuote)
			quotes.DELETE("/:id", ctl.DeleteQuote)
			quotes.PATCH("/:id/status", ctl.UpdateQuoteStatus)
			quotes.POST("/:id/close", ctl.CloseQuote)
			quotes.POST("/:id/not-realized", ctl.MarkNotRealized)
			quotes.PUT("/:id/schedule", ctl.ScheduleQuote)
		}
		api.POST("/sales", ctl.CreateSale)
		api.GET("/agenda", ctl.GetAgenda)

		accounts := api.Group("/accounts")
		{
			accounts.POST("", ctl.CreateAccount)
			accounts.GET("", ctl.GetAccounts)
			accounts.GET("/:id", ctl.GetAccount)
			accounts.PUT("/:id", ctl.UpdateAccount)
			accounts.DELETE("/:id", ctl.DeleteAccount)
		}

		transactions := api.Group("/transactions")
		{
			transactions.POST("", ctl.CreateTransaction)
			transactions.GET("", ctl.GetTransactions)
			transactions.GET("/:id", ctl.GetTransaction)
			transactions.PUT("/:id", ctl.UpdateTransaction)
			transactions.DELETE("/:id", ctl.DeleteTransaction)
		}

		planned := api.Group("/planned-items")
		{
			planned.POST("", ctl.CreatePlannedItem)
			planned.GET("", ctl.GetPlannedItems)
			planned.GET("/:id", ctl.GetPlannedItem)
			planned.PUT("/:id", ctl.UpdatePlannedItem)
			planned.DELETE("/:id", ctl.DeletePlannedItem)
			planned.POST("/:id/realize", ctl.RealizePlannedItem)
		}

		settings := api.Group("/settings")
		{
			settings.GET("", ctl.GetSettings)
			settings.PUT("", ctl.UpdateSettings)
			settings.GET("/hourly-cost", ctl.GetHourlyCost)
			settings.GET("/costs", ctl.GetOperationalCosts)
			settings.POST("/costs", ctl.CreateOperationalCost)
			settings.PUT("/costs/:id", ctl.UpdateOperationalCost)
			settings.DELETE("/costs/:id", ctl.DeleteOperationalCost)
		}

		api.GET("/dashboard", ctl.GetDashboardOverview)
		api.GET("/reports", ctl.GetReportAnalytics)

		reminders := api.Group("/reminders")
		{
			reminders.GET("/logs", ctl.GetReminderLogs)
			reminders.POST("/send", ctl.SendReminders)
		}
	}

	return r
}
