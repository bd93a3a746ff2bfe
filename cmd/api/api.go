package main

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"partsfit/docs" //this is required to generate swagger docs
	"partsfit/internal/auth"
	"partsfit/internal/cache"
	"partsfit/internal/domain/storage"
	"partsfit/internal/fitment"
	"partsfit/internal/ratelimiter"
)

type application struct {
	config        config
	store         *storage.Container
	logger        *zap.SugaredLogger
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
	cache         *cache.Store
	matcher       *fitment.Matcher
}

type config struct {
	addr           string
	db             dbConfig
	redis          redisConfig
	env            string
	apiURL         string
	frontendURL    string
	auth           authConfig
	rateLimiter    ratelimiter.Config
	cacheTTL       time.Duration
	jaegerEndpoint string
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	refreshSecret string
	secret        string
	iss           string
}

type basicConfig struct {
	user string
	pass string
}

type dbConfig struct {
	addr        string
	maxConns    int32
	maxIdleTime string
}

type redisConfig struct {
	addr     string
	password string
	db       int
}

// Cache namespaces for the public listings. Admin writes invalidate them.
const (
	cacheParts    = "parts"
	cacheProducts = "products"
)

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(app.MetricsMiddleware)

	origins := []string{"http://localhost:3000"}
	if app.config.frontendURL != "" {
		origins = []string{app.config.frontendURL}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "X-Cache"},
		AllowCredentials: true, // refresh cookie
		MaxAge:           300,
	}))

	if app.config.rateLimiter.Enabled {
		r.Use(app.RateLimiterMiddleware)
	}

	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/v1/swagger/index.html", http.StatusFound)
	})
	r.Handle("/metrics", promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/v1/swagger/doc.json")))

		r.Post("/fitment", app.fitmentHandler)

		r.Route("/parts", func(r chi.Router) {
			r.With(app.cache.Middleware(cacheParts)).Get("/", app.listPartsHandler)
			r.Get("/{partID}", app.getPartHandler)
		})

		r.Route("/products", func(r chi.Router) {
			r.With(app.cache.Middleware(cacheProducts)).Get("/", app.listProductsHandler)
			r.Get("/all", app.listAllProductsHandler)
			r.Get("/{slug}", app.getProductDetailHandler)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", app.listCategoriesHandler)
			r.Get("/{slug}", app.getCategoryHandler)
			r.Get("/{slug}/children", app.listChildCategoriesHandler)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", app.loginHandler)
			r.Post("/refresh", app.refreshTokenHandler)
			r.Post("/logout", app.logoutHandler)
			r.With(app.AdminAuthMiddleware).Get("/me", app.meHandler)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(app.AdminAuthMiddleware)

			r.Route("/categories", func(r chi.Router) {
				r.Post("/", app.createCategoryHandler)
				r.Get("/{categoryID}", app.getCategoryByIDHandler)
				r.Patch("/{categoryID}", app.updateCategoryHandler)
				r.Delete("/{categoryID}", app.deleteCategoryHandler)
			})

			r.Route("/products", func(r chi.Router) {
				r.Post("/", app.createProductHandler)
				r.Get("/", app.adminListProductsHandler)
				r.Get("/{productID}", app.getProductByIDHandler)
				r.Patch("/{productID}", app.updateProductHandler)
				r.Delete("/{productID}", app.deleteProductHandler)
			})

			r.Route("/parts", func(r chi.Router) {
				r.Post("/", app.createPartHandler)
				r.Patch("/{partID}", app.updatePartHandler)
				r.Delete("/{partID}", app.deletePartHandler)
			})
		})
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/v1"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      otelhttp.NewHandler(mux, "partsfit-api"),
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	// Implementing graceful shutdown
	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}

// invalidateListings drops cached public listings after an admin write.
func (app *application) invalidateListings(ctx context.Context, namespaces ...string) {
	for _, ns := range namespaces {
		if err := app.cache.Invalidate(ctx, ns); err != nil {
			app.logger.Warnw("cache invalidation failed", "namespace", ns, "error", err.Error())
		}
	}
}
