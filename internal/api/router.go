package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/api/middleware"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/config"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/service"
)

// Services bundles the services the router dispatches to.
type Services struct {
	System      *service.SystemService
	User        *service.UserService
	Transaction *service.TransactionService
	Import      *service.ImportService
	Basis       *service.BasisService
	Price       *service.PriceService
}

// NewRouter creates and configures the HTTP router.
// Reads are open; everything that changes stored data sits behind the API key middleware.
func NewRouter(s Services, cfg *config.Config, log logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.NewLogger(log))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	systemHandler := handlers.NewSystemHandler(s.System)
	userHandler := handlers.NewUserHandler(s.User)
	transactionHandler := handlers.NewTransactionHandler(s.Transaction)
	importHandler := handlers.NewImportHandler(s.Import)
	basisHandler := handlers.NewBasisHandler(s.Basis)
	priceHandler := handlers.NewPriceHandler(s.Price)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/user", func(r chi.Router) {
			r.Get("/", userHandler.Users)
			r.With(custommiddleware.APIKeyMiddleware).Post("/", userHandler.CreateUser)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", userHandler.GetUser)
				r.Get("/transaction", transactionHandler.Transactions)
				r.Get("/taxdoc", importHandler.TaxDocs)
				r.Get("/report", basisHandler.Reports)
				r.Get("/report.csv", basisHandler.ReportCSV)

				r.Group(func(r chi.Router) {
					r.Use(custommiddleware.APIKeyMiddleware)
					r.Post("/transaction", transactionHandler.CreateTransaction)
					r.Post("/import", importHandler.Import)
					r.Post("/basis", basisHandler.Run)
				})
			})
		})

		r.Route("/transaction/{uuid}", func(r chi.Router) {
			r.Use(custommiddleware.ValidateUUIDMiddleware)
			r.Get("/", transactionHandler.GetTransaction)
			r.With(custommiddleware.APIKeyMiddleware).Delete("/", transactionHandler.DeleteTransaction)
		})

		r.Route("/taxdoc/{uuid}", func(r chi.Router) {
			r.Use(custommiddleware.ValidateUUIDMiddleware)
			r.Get("/", importHandler.DownloadTaxDoc)
			r.With(custommiddleware.APIKeyMiddleware).Delete("/", importHandler.DeleteTaxDoc)
		})

		r.Get("/import/formats", importHandler.Formats)

		r.With(custommiddleware.APIKeyMiddleware).Post("/basis", basisHandler.RunAll)

		r.Route("/price", func(r chi.Router) {
			r.Use(custommiddleware.APIKeyMiddleware)
			r.Post("/refresh", priceHandler.Refresh)
			r.Post("/update", priceHandler.Update)
		})
	})

	return r
}
