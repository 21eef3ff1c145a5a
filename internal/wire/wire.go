package wire

import (
	"context"
	"net/http"
	"time"

	"instamakaan/internal/adaptor"
	"instamakaan/internal/data/repository"
	"instamakaan/internal/usecase"
	"instamakaan/pkg/mailer"
	"instamakaan/pkg/middleware"
	"instamakaan/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const healthTimeout = 2 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// App holds the assembled HTTP application.
type App struct {
	Router *chi.Mux
}

// Wiring builds services, handlers and routes.
func Wiring(
	repo *repository.Repository,
	store Pinger,
	mail mailer.Mailer,
	tokens *utils.TokenIssuer,
	config *utils.Config,
	logger *zap.Logger,
) *App {
	service := usecase.NewService(repo, tokens, mail, config, logger)
	handler := adaptor.NewHandler(service, logger)

	return &App{
		Router: setupRouter(handler, store, tokens, config, logger),
	}
}

func setupRouter(
	handler *adaptor.Handler,
	store Pinger,
	tokens *utils.TokenIssuer,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.CORSOrigins))

	wireAuth(r, handler.Auth, tokens, config, logger)

	if config.App.UploadsDir != "" {
		files := http.StripPrefix("/uploads/", http.FileServer(http.Dir(config.App.UploadsDir)))
		r.Handle("/uploads/*", files)
	}

	r.Get("/health", health(store, logger))

	return r
}

func health(store Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			logger.Error("Health check failed", zap.Error(err))
			utils.ResponseServiceUnavailable(w, "Database unreachable")
			return
		}
		utils.ResponseSuccess(w, "OK", nil)
	}
}
