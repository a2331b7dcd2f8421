package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ray-remotestate/menuboard/handlers"
	"github.com/ray-remotestate/menuboard/imagehost"
	"github.com/ray-remotestate/menuboard/metrics"
	"github.com/ray-remotestate/menuboard/middlewares"
	"github.com/ray-remotestate/menuboard/models"
	"github.com/ray-remotestate/menuboard/response"
)

type Server struct {
	Router *mux.Router
	server *http.Server
}

type Options struct {
	Uploader           imagehost.Uploader
	LoginRatePerMinute int
}

const (
	readTimeout       = 5 * time.Minute
	readHeaderTimeout = 30 * time.Second
	writeTimeout      = 5 * time.Minute
)

func SetupRoutes(opts Options) *Server {
	router := mux.NewRouter()
	router.Use(metrics.InstrumentHandler)

	loginLimiter := middlewares.NewRateLimiter(opts.LoginRatePerMinute, opts.LoginRatePerMinute)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]bool{"alive": true})
	}).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	router.HandleFunc("/menu", handlers.GetMenu).Methods(http.MethodGet)
	router.HandleFunc("/categories", handlers.ListCategories).Methods(http.MethodGet)
	router.HandleFunc("/table-types", handlers.ListTableTypes).Methods(http.MethodGet)
	router.Handle("/login", loginLimiter.Handler(http.HandlerFunc(handlers.Login))).Methods(http.MethodPost)
	router.HandleFunc("/refresh", handlers.Refresh).Methods(http.MethodPost)

	// admin n subadmin
	adminSub := router.PathPrefix("/admin").Subrouter()
	adminSub.Use(middlewares.AuthMiddleware)
	adminSub.Use(middlewares.RoleBasedMiddleware(models.RoleAdmin, models.RoleSubAdmin))

	// admin only
	admin := adminSub.NewRoute().Subrouter()
	admin.Use(middlewares.RoleBasedMiddleware(models.RoleAdmin))

	admin.HandleFunc("/users", handlers.ListUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users", handlers.CreateUser).Methods(http.MethodPost)
	admin.HandleFunc("/roles", handlers.ListRoles).Methods(http.MethodGet)
	admin.HandleFunc("/roles/{id}/permissions", handlers.SetRolePermissions).Methods(http.MethodPut)

	adminSub.HandleFunc("/logout", handlers.Logout).Methods(http.MethodPost)
	adminSub.HandleFunc("/me", handlers.Me).Methods(http.MethodGet)

	adminSub.HandleFunc("/categories", handlers.ListCategories).Methods(http.MethodGet)
	adminSub.HandleFunc("/categories", handlers.CreateCategory).Methods(http.MethodPost)
	adminSub.HandleFunc("/categories/{id}", handlers.UpdateCategory).Methods(http.MethodPut)
	adminSub.HandleFunc("/categories/{id}", handlers.DeleteCategory).Methods(http.MethodDelete)

	adminSub.HandleFunc("/table-types", handlers.ListTableTypes).Methods(http.MethodGet)
	adminSub.HandleFunc("/table-types", handlers.CreateTableType).Methods(http.MethodPost)
	adminSub.HandleFunc("/table-types/{id}", handlers.UpdateTableType).Methods(http.MethodPut)
	adminSub.HandleFunc("/table-types/{id}", handlers.DeleteTableType).Methods(http.MethodDelete)

	adminSub.HandleFunc("/menu-items", handlers.ListMenuItems).Methods(http.MethodGet)
	adminSub.HandleFunc("/menu-items", handlers.CreateMenuItem).Methods(http.MethodPost)
	adminSub.HandleFunc("/menu-items/{id}", handlers.GetMenuItem).Methods(http.MethodGet)
	adminSub.HandleFunc("/menu-items/{id}", handlers.UpdateMenuItem).Methods(http.MethodPut)
	adminSub.HandleFunc("/menu-items/{id}", handlers.DeleteMenuItem).Methods(http.MethodDelete)

	adminSub.HandleFunc("/uploads", handlers.UploadImage(opts.Uploader)).Methods(http.MethodPost)

	return &Server{
		Router: router,
	}
}

// Handler is the router wrapped with request logging, so unmatched
// requests are logged too.
func (svr *Server) Handler() http.Handler {
	return middlewares.LoggingMiddleware(svr.Router)
}

func (svr *Server) Run(port string) error {
	svr.server = &http.Server{
		Addr:              port,
		Handler:           svr.Handler(),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}
	return svr.server.ListenAndServe()
}

func (svr *Server) Shutdown(timeout time.Duration) error {
	if svr.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return svr.server.Shutdown(ctx)
}
