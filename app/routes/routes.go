package routes

import (
	"net/http"
	"strings"

	"yatube/app/controllers"
	"yatube/app/metrics"
	"yatube/app/middleware"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Options are the router-level settings.
type Options struct {
	// BasePath mounts every application route under a prefix, e.g. "/blog".
	BasePath string
	// Dev relaxes the HTTPS-only security headers and logs panic stacks.
	Dev bool
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(deps *controllers.Deps, m *metrics.Metrics, opts Options) *mux.Router {
	router := mux.NewRouter().StrictSlash(true)

	postController := controllers.NewPostController(deps)
	commentController := controllers.NewCommentController(deps)
	followController := controllers.NewFollowController(deps)
	authController := controllers.NewAuthController(deps)
	adminController := controllers.NewAdminController(deps)

	// Apply global middleware
	router.Use(middleware.Recoverer(deps.Logger, opts.Dev))
	router.Use(middleware.Logger(deps.Logger))
	router.Use(middleware.SecureHeaders(opts.Dev))
	router.Use(middleware.Metrics(m))
	router.Use(deps.Identity.LoadUser)

	router.NotFoundHandler = http.HandlerFunc(postController.NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deps.Logger.Debug("method not allowed", zap.String("method", r.Method), zap.String("path", r.URL.Path))
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	router.Handle("/metrics", m.Handler()).Methods("GET")

	app := router
	if base := strings.TrimRight(opts.BasePath, "/"); base != "" {
		app = router.PathPrefix(base).Subrouter()
	}
	auth := deps.Identity.RequireLogin

	// Feeds
	app.HandleFunc("/", postController.Index).Methods("GET")
	app.HandleFunc("/group/{slug}/", postController.GroupPosts).Methods("GET")
	app.HandleFunc("/profile/{username}/", postController.Profile).Methods("GET")
	app.Handle("/follow/", auth(http.HandlerFunc(followController.Index))).Methods("GET")

	// Posts and comments
	app.Handle("/posts/create/", auth(http.HandlerFunc(postController.Create))).Methods("GET", "POST")
	app.HandleFunc("/posts/{id:[0-9]+}/", postController.Show).Methods("GET", "POST")
	app.Handle("/posts/{id:[0-9]+}/edit/", auth(http.HandlerFunc(postController.Edit))).Methods("GET", "POST")
	app.Handle("/posts/{id:[0-9]+}/comment/", auth(http.HandlerFunc(commentController.Create))).Methods("POST")

	// Subscriptions
	app.Handle("/profile/{username}/follow/", auth(http.HandlerFunc(followController.Follow))).Methods("POST")
	app.Handle("/profile/{username}/unfollow/", auth(http.HandlerFunc(followController.Unfollow))).Methods("POST")

	// Accounts
	app.HandleFunc("/auth/login/", authController.Login).Methods("GET", "POST")
	app.HandleFunc("/auth/signup/", authController.Signup).Methods("GET", "POST")
	app.HandleFunc("/auth/logout/", authController.Logout).Methods("POST")
	app.Handle("/auth/delete/", auth(http.HandlerFunc(authController.Delete))).Methods("POST")

	// Staff and media
	app.Handle("/admin/cache/invalidate/", auth(http.HandlerFunc(adminController.InvalidateCache))).Methods("POST")
	app.HandleFunc("/media/{path:.+}", adminController.Media).Methods("GET")

	return router
}
