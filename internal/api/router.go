package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/askpdf/askpdf/internal/api/handlers"
	"github.com/askpdf/askpdf/internal/api/middleware"
)

// Deps carries the constructed services the router exposes. All
// construction happens in main; the router only wires routes.
type Deps struct {
	Documents handlers.DocumentService
	Chat      handlers.AnswerService
	DB        *pgxpool.Pool // nil when running on the memory backend
	Redis     *redis.Client // nil when redis is not configured
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	health := handlers.NewHealthHandler(deps.DB, deps.Redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	docH := handlers.NewDocumentHandler(deps.Documents)
	chatH := handlers.NewChatHandler(deps.Chat)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/documents", func(r chi.Router) {
			r.Post("/", docH.Add)
			r.Put("/{fileID}", docH.Update)
			r.Delete("/{fileID}", docH.Delete)
		})

		r.Post("/chat", chatH.Chat)
	})

	return r
}
