package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/hemanthreddykoduru/StudentNotes/internal/infra/logging"
	"github.com/hemanthreddykoduru/StudentNotes/internal/usecase"
)

// maxWebhookBody caps the raw webhook payload read into memory.
const maxWebhookBody = 1 << 20

type Deps struct {
	Orders       usecase.OrderUseCase
	Confirm      usecase.ConfirmUseCase
	Webhooks     usecase.WebhookUseCase
	Entitlements usecase.EntitlementUseCase
	Config       usecase.ConfigUseCase
	Auth         *Authenticator
	// BeforeScrape runs on every /metrics request, e.g. to sample pool stats.
	BeforeScrape func()
}

type Server struct {
	deps    Deps
	log     *zerolog.Logger
	timeout time.Duration
	srv     *http.Server
}

func NewServer(deps Deps, requestTimeout time.Duration, logger *zerolog.Logger) *Server {
	return &Server{deps: deps, log: logger, timeout: requestTimeout}
}

func (s *Server) logger(r *http.Request) *zerolog.Logger {
	return logging.With(r.Context(), s.log)
}

// Routes builds the full handler tree.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	metricsHandler := promhttp.Handler()
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		if s.deps.BeforeScrape != nil {
			s.deps.BeforeScrape()
		}
		metricsHandler.ServeHTTP(w, r)
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/payments", func(r chi.Router) {
			r.Post("/webhook", s.handleWebhook)
			r.Group(func(r chi.Router) {
				r.Use(s.deps.Auth.RequireUser)
				r.Post("/create-order", s.handleCreateOrder)
				r.Post("/create-subscription-order", s.handleCreateSubscriptionOrder)
				r.Post("/verify", s.handleVerify)
				r.Post("/verify-subscription", s.handleVerifySubscription)
				r.Get("/subscription-status", s.handleSubscriptionStatus)
				r.Get("/purchases", s.handlePurchases)
			})
		})
		r.With(s.deps.Auth.OptionalUser).Get("/notes/{id}", s.handleGetNote)
		r.Get("/config/{key}", s.handleGetConfig)
		r.With(s.deps.Auth.RequireUser).Post("/config/{key}", s.handleSetConfig)
	})

	return Chain(r,
		TraceID(),
		Recover(s.log),
		RequestLog(s.log),
		Timeout(s.timeout),
	)
}

// Start serves on port until Shutdown is called.
func (s *Server) Start(port int) error {
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info().Int("port", port).Msg("http server listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
