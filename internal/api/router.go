package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/bellavista/carehome-cms/internal/api/handler"
	"github.com/bellavista/carehome-cms/internal/api/middleware"
	"github.com/bellavista/carehome-cms/internal/core/ports"
	"github.com/bellavista/carehome-cms/internal/core/service"
	infrahttp "github.com/bellavista/carehome-cms/internal/infrastructure/http"
	"github.com/bellavista/carehome-cms/internal/infrastructure/http/handlers"
)

const (
	globalRateLimit  = 300
	globalRateWindow = time.Minute
)

// Options are the HTTP surface settings taken from configuration.
type Options struct {
	AllowedOrigins []string
	AllowAnyOrigin bool
	MaxUploadMB    int
	CSRFEnabled    bool
	HSTS           bool
	// UploadDir is served at /uploads when files are kept on local disk.
	UploadDir string
}

// Deps holds everything the router wires into handlers.
type Deps struct {
	Log     zerolog.Logger
	Options Options

	Tokens ports.TokenVerifier
	Auth   ports.AuthService
	Users  ports.UserService
	CSRF   *service.CSRFManager
	Audit  *service.AuditLog

	Homes     ports.HomeService
	News      ports.NewsService
	FAQs      ports.FAQService
	Events    ports.EventService
	Vacancies ports.VacancyService
	Visits    ports.VisitService
	Reviews   ports.ReviewService
	Meals     ports.MealPlanService
	Kiosk     ports.KioskService
	Uploads   ports.UploadService

	ImportReviews handler.ImportTrigger

	LoginLimiter  *service.RateLimiter
	SubmitLimiter *service.RateLimiter

	Health *handlers.HealthHandler
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestMeta())
	e.Use(requestLogger(d.Log))
	e.Use(middleware.SecurityHeaders(d.Options.HSTS))
	e.Use(echomiddleware.CORSWithConfig(corsConfig(d.Options)))
	e.Use(middleware.GlobalRateLimit(globalRateLimit, globalRateWindow))
	e.Use(echomiddleware.BodyLimit(bodyLimit(d.Options.MaxUploadMB)))
	e.Use(echoprometheus.NewMiddleware("cms"))

	if d.Health != nil {
		infrahttp.RegisterOps(e, d.Health)
	}
	if d.Options.UploadDir != "" {
		e.Static("/uploads", d.Options.UploadDir)
	}

	api := e.Group("/api")
	if d.Options.CSRFEnabled {
		api.Use(middleware.CSRF(d.CSRF, d.Log))
	}

	authn := middleware.Authenticate(d.Tokens)
	superadmin := func(resource string) []echo.MiddlewareFunc {
		return []echo.MiddlewareFunc{authn, middleware.RequireSuperadmin(d.Audit, resource)}
	}
	submit := middleware.RateLimit(d.SubmitLimiter)

	// --- Auth ---
	authH := handler.NewAuthHandler(d.Auth, d.Users, d.CSRF)
	api.POST("/auth/login", authH.Login, middleware.LoginRateLimit(d.LoginLimiter, d.Auth))
	api.POST("/auth/logout", authH.Logout, authn)
	api.GET("/auth/me", authH.Me, authn)
	api.GET("/auth/session", authH.Session, authn)
	api.POST("/auth/users", authH.CreateUser, superadmin("user")...)
	api.GET("/csrf-token", authH.CSRFToken)

	// --- Homes ---
	homeH := handler.NewHomeHandler(d.Homes)
	api.GET("/homes", homeH.List)
	api.GET("/homes/:id", homeH.Get)
	api.POST("/homes", homeH.Create, superadmin("home")...)
	api.PUT("/homes/:id", homeH.Update, authn, middleware.AuthorizeHome(middleware.HomeFromParam("id"), d.Audit, "home"))
	api.DELETE("/homes/:id", homeH.Delete, superadmin("home")...)
	api.POST("/homes/backup", homeH.Backup, superadmin("home_backup")...)
	api.GET("/homes/backups", homeH.ListBackups, superadmin("home_backup")...)
	api.POST("/homes/restore", homeH.Restore, superadmin("home_backup")...)

	// --- News and FAQ ---
	newsH := handler.NewNewsHandler(d.News, d.FAQs)
	api.GET("/news", newsH.List)
	api.GET("/news/:id", newsH.Get)
	api.POST("/news", newsH.Create, superadmin("news")...)
	api.PUT("/news/:id", newsH.Update, superadmin("news")...)
	api.DELETE("/news/:id", newsH.Delete, superadmin("news")...)
	api.GET("/faqs", newsH.ListFAQs)
	api.POST("/faqs", newsH.CreateFAQ, superadmin("faq")...)
	api.DELETE("/faqs/:id", newsH.DeleteFAQ, superadmin("faq")...)

	// --- Events ---
	eventH := handler.NewEventHandler(d.Events)
	api.GET("/events", eventH.List)
	api.GET("/events/:id", eventH.Get)
	api.POST("/events", eventH.Create, superadmin("event")...)
	api.PUT("/events/:id", eventH.Update, superadmin("event")...)
	api.DELETE("/events/:id", eventH.Delete, superadmin("event")...)

	// --- Vacancies and applications ---
	vacancyH := handler.NewVacancyHandler(d.Vacancies, d.Uploads)
	api.GET("/vacancies", vacancyH.List)
	api.GET("/vacancies/:id", vacancyH.Get)
	api.POST("/vacancies", vacancyH.Create, superadmin("vacancy")...)
	api.PUT("/vacancies/:id", vacancyH.Update, superadmin("vacancy")...)
	api.DELETE("/vacancies/:id", vacancyH.Delete, superadmin("vacancy")...)
	api.POST("/apply", vacancyH.Apply, submit)
	api.GET("/applications", vacancyH.ListApplications, superadmin("job_application")...)

	// --- Tours and enquiries ---
	visitH := handler.NewVisitHandler(d.Visits)
	api.POST("/scheduled-tours", visitH.RequestTour, submit)
	api.GET("/scheduled-tours", visitH.ListTours, superadmin("scheduled_tour")...)
	api.PUT("/scheduled-tours/:id", visitH.UpdateTourStatus, superadmin("scheduled_tour")...)
	api.POST("/care-enquiries", visitH.SubmitEnquiry, submit)
	api.GET("/care-enquiries", visitH.ListEnquiries, superadmin("care_enquiry")...)

	// --- Reviews ---
	reviewH := handler.NewReviewHandler(d.Reviews, d.ImportReviews)
	api.GET("/reviews", reviewH.List)
	api.POST("/reviews", reviewH.Submit, submit)
	api.DELETE("/reviews/:id", reviewH.Delete, superadmin("review")...)
	api.POST("/reviews/import", reviewH.Import, superadmin("review")...)

	// --- Meal plans ---
	mealH := handler.NewMealPlanHandler(d.Meals, service.GroupByDay)
	mealHome := middleware.HomeFromLookup("id", func(ctx context.Context, id string) (string, error) {
		plan, err := d.Meals.Get(ctx, id)
		if err != nil {
			return "", err
		}
		return plan.HomeID, nil
	})
	bodyHome := middleware.AuthorizeHome(middleware.HomeFromBody(), d.Audit, "meal_plan")
	api.GET("/meal-plans/:homeId", mealH.List)
	api.POST("/meal-plans", mealH.Create, authn, bodyHome)
	api.POST("/meal-plans/bulk", mealH.BulkCreate, authn, bodyHome)
	api.POST("/meal-plans/copy-week", mealH.CopyWeek, authn, bodyHome)
	api.PUT("/meal-plans/:id", mealH.Update, authn,
		middleware.AuthorizeHome(mealHome, d.Audit, "meal_plan"),
		middleware.AuthorizeHome(middleware.HomeFromBodyOr(mealHome), d.Audit, "meal_plan"))
	api.DELETE("/meal-plans/:id", mealH.Delete, authn, middleware.AuthorizeHome(mealHome, d.Audit, "meal_plan"))

	// --- Kiosk ---
	kioskH := handler.NewKioskHandler(d.Kiosk, d.Homes)
	api.POST("/kiosk/check-in", kioskH.CheckIn, submit)
	api.POST("/kiosk/check-out/:id", kioskH.CheckOut)
	api.GET("/kiosk/check-ins", kioskH.List, authn)

	// --- Uploads and audit ---
	api.POST("/upload", handler.NewUploadHandler(d.Uploads).Upload, authn)
	api.GET("/audit-log", handler.NewAuditHandler(d.Audit).List, superadmin("audit_log")...)

	return e
}

// corsConfig only reflects configured origins. A wildcard is honoured only
// when explicitly allowed, and never together with credentials.
func corsConfig(o Options) echomiddleware.CORSConfig {
	cfg := echomiddleware.CORSConfig{
		AllowOrigins:     o.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType, "X-CSRF-Token", echo.HeaderXRequestID},
		ExposeHeaders:    []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           3600,
	}
	if o.AllowAnyOrigin {
		cfg.AllowOrigins = []string{"*"}
		cfg.AllowCredentials = false
	}
	if len(cfg.AllowOrigins) == 0 {
		// An empty list makes echo allow every origin.
		cfg.AllowOriginFunc = func(string) (bool, error) { return false, nil }
	}
	return cfg
}

func bodyLimit(mb int) string {
	if mb <= 0 {
		mb = 50
	}
	return strconv.Itoa(mb) + "M"
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Path(), "/health") || c.Path() == "/metrics"
		},
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			switch {
			case v.Status >= 500:
				ev = log.Error().Err(v.Error)
			case v.Status >= 400:
				ev = log.Warn()
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
