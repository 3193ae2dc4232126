package router

import (
	"expvar"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/savor-pos/api/internal/config"
	"github.com/savor-pos/api/internal/database"
	"github.com/savor-pos/api/internal/enum"
	"github.com/savor-pos/api/internal/handler"
	"github.com/savor-pos/api/internal/middleware"
	"github.com/savor-pos/api/internal/notify"
	"github.com/savor-pos/api/internal/service"
	"github.com/savor-pos/api/internal/ws"
)

// Deps holds everything the router needs to wire the handlers.
type Deps struct {
	Cfg    *config.Config
	Pool   *pgxpool.Pool
	Hub    *ws.Hub
	Events *notify.Publisher
}

// New builds the HTTP routing tree: open auth routes, branch-scoped
// API routes behind JWT auth, ADMIN routes, and the websocket board.
func New(deps Deps) http.Handler {
	queries := database.New(deps.Pool)
	notifier := &handler.Notifier{Hub: deps.Hub, Events: deps.Events}

	orderSvc := service.NewOrderService(deps.Pool, func(db database.DBTX) service.OrderStore {
		return database.New(db)
	})
	billingSvc := service.NewBillingService(deps.Pool, deps.Pool, func(db database.DBTX) service.BillingStore {
		return database.New(db)
	})

	authH := handler.NewAuthHandler(queries, deps.Cfg.JWTSecret)
	orderH := handler.NewOrderHandler(queries, orderSvc, notifier)
	billH := handler.NewBillHandler(queries, billingSvc, notifier)
	kitchenH := handler.NewKitchenHandler(queries, orderSvc, notifier)
	hallH := handler.NewHallHandler(queries)
	dishH := handler.NewDishHandler(queries)
	customerH := handler.NewCustomerHandler(queries)
	userH := handler.NewUserHandler(queries)
	branchH := handler.NewBranchHandler(queries)
	reportH := handler.NewReportHandler(queries)

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/debug/vars", expvar.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		authH.RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(deps.Cfg.JWTSecret))

			r.Route("/branches/{bid}", func(r chi.Router) {
				r.Use(middleware.RequireBranch)

				// Front of house: orders and settlement.
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(enum.UserRoleAdmin, enum.UserRoleManager, enum.UserRoleCashier))
					orderH.RegisterRoutes(r)
					billH.RegisterRoutes(r)
				})

				// Kitchen board.
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(enum.UserRoleAdmin, enum.UserRoleManager, enum.UserRoleKitchen))
					kitchenH.RegisterRoutes(r)
				})

				// Back office.
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(enum.UserRoleAdmin, enum.UserRoleManager))
					hallH.RegisterRoutes(r)
					dishH.RegisterRoutes(r)
					customerH.RegisterRoutes(r)
					userH.RegisterRoutes(r)
					reportH.RegisterRoutes(r)
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enum.UserRoleAdmin))
				branchH.RegisterRoutes(r)
				reportH.RegisterAdminRoutes(r)
			})
		})
	})

	r.Get("/ws/branches/{bid}/board", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(deps.Hub, deps.Cfg.JWTSecret, w, r)
	})

	return r
}
