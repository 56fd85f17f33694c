package mockapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/itchan-dev/tunetag/shared/metrics"
)

// NewRouter wires every backend route under /api, the object storage under
// /storage and a liveness probe.
func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(securityHeaders)
	r.Use(metrics.Middleware)

	// browser front-ends call the API cross-origin
	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/UserAuthentication", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/deleteUser", h.DeleteUser)
			r.Post("/changePassword", h.ChangePassword)
			r.Post("/_getUserById", h.GetUserById)
		})
		r.Route("/FileUrl", func(r chi.Router) {
			r.Post("/requestUpload", h.RequestUpload)
			r.Post("/confirmUpload", h.ConfirmUpload)
			r.Post("/_getFilesByUser", h.GetFilesByUser)
			r.Post("/_getFileById", h.GetFileById)
			r.Post("/getViewUrl", h.GetViewUrl)
		})
		r.Route("/Comment", func(r chi.Router) {
			r.Post("/register", h.RegisterCommentResource)
			r.Post("/_getCommentsByResource", h.GetCommentsByResource)
			r.Post("/addComment", h.AddComment)
			r.Post("/removeComment", h.RemoveComment)
		})
		r.Route("/MusicTagging", func(r chi.Router) {
			r.Post("/registerResource", h.RegisterTaggedResource)
			r.Post("/addTag", h.AddTag)
			r.Post("/_getRegistryByResource", h.GetRegistryByResource)
			r.Post("/_getRegistriesByTags", h.GetRegistriesByTags)
		})
	})

	r.Put("/storage/*", h.PutObject)
	r.Get("/storage/*", h.GetObject)

	return r
}
