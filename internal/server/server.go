package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xela07ax/traveldesk/internal/domain"
	"github.com/xela07ax/traveldesk/internal/handler"
	"github.com/xela07ax/traveldesk/internal/infra"
	"github.com/xela07ax/traveldesk/internal/infra/auth"
	"go.uber.org/zap"
)

type Server struct {
	router  *chi.Mux
	logger  *zap.Logger
	cfg     *infra.Config
	metrics *infra.Metrics

	// Проверка RS256 токенов на входе в защищенный периметр
	authValidator auth.TokenValidator

	// Регистратор для /metrics (nil в тестах)
	registry *prometheus.Registry

	// Обработчики бизнес-доменов
	authHandler     *handler.AuthHandler     // /api/auth
	travelHandler   *handler.TravelHandler   // /api/travel-requests
	commentHandler  *handler.CommentHandler  // /api/comments
	documentHandler *handler.DocumentHandler // /api/documents
	userHandler     *handler.UserHandler     // /api/users (Admin)
}

// New инициализирует HTTP-сервер со всеми зависимостями
func New(
	cfg *infra.Config,
	logger *zap.Logger,
	metrics *infra.Metrics,
	registry *prometheus.Registry,
	validator auth.TokenValidator,
	authH *handler.AuthHandler,
	travelH *handler.TravelHandler,
	commentH *handler.CommentHandler,
	documentH *handler.DocumentHandler,
	userH *handler.UserHandler,
) *Server {
	s := &Server{
		router:          chi.NewRouter(),
		logger:          logger.Named("api"),
		cfg:             cfg,
		metrics:         metrics,
		registry:        registry,
		authValidator:   validator,
		authHandler:     authH,
		travelHandler:   travelH,
		commentHandler:  commentH,
		documentHandler: documentH,
		userHandler:     userH,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware (для всех) ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(infra.TracingMiddleware)
	r.Use(s.durationMiddleware)

	// --- 2. ПУБЛИЧНЫЕ РОУТЫ (Открыты для всех) ---
	r.Group(func(r chi.Router) {
		// Логин и регистрация должны быть доступны без токена
		r.Post("/api/auth/login", s.authHandler.Login)
		r.Post("/api/auth/register", s.authHandler.Register)

		// Healthcheck для мониторинга
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		if s.registry != nil {
			r.Method(http.MethodGet, "/metrics",
				promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
		}
	})

	// --- 3. ЗАЩИЩЕННЫЙ ПЕРИМЕТР (Требуют RS256 токен) ---
	r.Group(func(r chi.Router) {
		r.Use(auth.NewMiddleware(s.authValidator, s.logger))

		// Заявки и переходы жизненного цикла
		r.Route("/api/travel-requests", func(r chi.Router) {
			r.Post("/", s.travelHandler.Create)
			r.Get("/", s.travelHandler.ListOwn)

			// Очередь менеджера: подано, ждет решения
			r.With(auth.RequireRoles(domain.RoleManager, domain.RoleHRTravelAdmin)).
				Get("/pending", s.travelHandler.ListPending)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.travelHandler.Get)
				r.Post("/submit", s.travelHandler.Submit)
				r.Post("/approve", s.travelHandler.Approve)
				r.Post("/disapprove", s.travelHandler.Disapprove)
				r.Post("/return-to-employee", s.travelHandler.ReturnToEmployee)
				r.Delete("/", s.travelHandler.Delete)
			})
		})

		// Комментарии к заявке
		r.Route("/api/comments/{travelRequestId}", func(r chi.Router) {
			r.Get("/", s.commentHandler.List)
			r.Post("/", s.commentHandler.Add)
		})

		// Вложения (multipart upload)
		r.Route("/api/documents", func(r chi.Router) {
			r.Post("/upload/{travelRequestId}", s.documentHandler.Upload)
			r.Get("/{travelRequestId}", s.documentHandler.List)
			r.Delete("/{id}", s.documentHandler.Delete)
		})

		// Администрирование учетных записей
		r.Route("/api/users", func(r chi.Router) {
			r.Use(auth.RequireRoles(domain.RoleAdmin))

			r.Get("/total", s.userHandler.Total)
			r.Get("/grid", s.userHandler.Grid)
			r.Post("/", s.userHandler.Add)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.userHandler.Get)
				r.Put("/", s.userHandler.Edit)
				r.Delete("/", s.userHandler.Delete)
				r.Post("/assign-role", s.userHandler.AssignRole)
			})
		})
	})
}

// durationMiddleware пишет латентность запроса в гистограмму.
// Маршрут берем из chi route pattern, чтобы не плодить метки по ID заявок.
func (s *Server) durationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.RequestDuration.
			WithLabelValues(route, r.Method, strconv.Itoa(ww.Status())).
			Observe(time.Since(start).Seconds())
	})
}

// ServeHTTP позволяет использовать Server как стандартный http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
