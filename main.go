// Main entry point of the meal planner API. It is responsible for loading
// configuration, opening database connections, wiring services and handlers,
// composing the HTTP middleware pipeline, and starting the server with
// graceful shutdown.
//
// The pipeline order on gated routes is fixed: rate limiter first, then the
// validation gate, then the auth guard, then the handler. Quota exhaustion is
// therefore reported before anything is revealed about the credential, and no
// handler ever sees an unvalidated body.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/user/mealplanner-go/apperror"
	"github.com/user/mealplanner-go/auth"
	"github.com/user/mealplanner-go/background"
	"github.com/user/mealplanner-go/config"
	"github.com/user/mealplanner-go/db"
	"github.com/user/mealplanner-go/meals"
	"github.com/user/mealplanner-go/planfeed"
	"github.com/user/mealplanner-go/ratelimit"
	"github.com/user/mealplanner-go/recipes"
	"github.com/user/mealplanner-go/users"
	"github.com/user/mealplanner-go/validation"
)

func main() {
	// .env is a development convenience; in production the variables are set
	// directly in the environment.
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading it: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Database pools: one for request traffic, one for migrations/seeding.
	appPool, seedPool, err := db.NewDBPools(cfg.DBPools)
	if err != nil {
		log.Fatalf("Failed to create database pools: %v", err)
	}
	defer appPool.Close()
	defer seedPool.Close()

	if err := db.RunMigrations(cfg.DBPools.SeedPool, cfg.Server.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Validation gate: schemas are registered once here and read-only afterwards.
	gate := validation.NewGate()
	if err := gate.Register(validation.DefaultSchemas()...); err != nil {
		log.Fatalf("Failed to register validation schemas: %v", err)
	}

	// Rate limiter. With REDIS_URL set the counting windows live in Redis and
	// are shared across instances; otherwise they stay in process memory and
	// a background janitor sweeps out elapsed ones.
	var limiterStore ratelimit.Store
	var janitorStop chan struct{}
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Failed to parse REDIS_URL: %v", err)
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()
		limiterStore = ratelimit.NewRedisStore(redisClient)
		log.Println("Rate limiter using Redis window store")
	} else {
		memStore := ratelimit.NewMemoryStore()
		limiterStore = memStore
		janitorStop = make(chan struct{})
		background.StartWindowJanitor(memStore, cfg.RateLimit.SweepInterval, janitorStop)
		log.Println("Rate limiter using in-memory window store")
	}

	limiter := ratelimit.New(limiterStore,
		ratelimit.Policy{
			Class:   "login",
			Quota:   cfg.RateLimit.Login.Quota,
			Window:  cfg.RateLimit.Login.Window,
			Message: cfg.RateLimit.Login.Message,
		},
		ratelimit.Policy{
			Class:   "signup",
			Quota:   cfg.RateLimit.Signup.Quota,
			Window:  cfg.RateLimit.Signup.Window,
			Message: cfg.RateLimit.Signup.Message,
		},
	)

	// Services and handlers, wired by constructor injection.
	feed := planfeed.NewBroadcaster()
	feedHandlers := planfeed.NewHandlers(feed)

	authService := auth.NewAuthService(appPool, *cfg.Auth)
	authHandlers := auth.NewHandlers(authService)

	userService := users.NewUserService(appPool)
	userHandlers := users.NewUserHandlers(userService)

	recipeService := recipes.NewRecipeService(appPool)
	recipeHandlers := recipes.NewRecipeHandler(recipeService)

	mealService := meals.NewMealService(appPool, recipeService, feed)
	mealHandlers := meals.NewMealHandlers(mealService)

	// Router and global middleware. Chi requires all middleware to be
	// registered before any routes.
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	// RealIP rewrites RemoteAddr from proxy headers; the rate limiter keys on it.
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Panic safety net: anything Recoverer misses upstream of it still gets a
	// structured 500 envelope instead of a bare stack trace.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				if rvr := recover(); rvr != nil {
					log.Printf("Panic: %+v", rvr)
					writeError(ww, r, apperror.NewInternalError("internal server error", nil))
				}
			}()
			next.ServeHTTP(ww, r)
		})
	})

	guard := auth.Guard(cfg.Auth)

	// Account routes. Login and signup are the gated route classes: limiter,
	// then validation. Profile routes add the guard between validation and
	// the handler.
	r.Route("/api/users", func(r chi.Router) {
		r.With(
			ratelimit.Middleware(limiter, "login"),
			validation.Middleware(gate, validation.SchemaLogin),
		).Post("/login", authHandlers.HandleLogin())

		r.With(
			ratelimit.Middleware(limiter, "signup"),
			validation.Middleware(gate, validation.SchemaSignup),
		).Post("/signup", authHandlers.HandleSignup())

		r.Post("/refresh", authHandlers.HandleRefreshToken())

		r.With(guard).Get("/{userID}", userHandlers.HandleGetProfile())
		r.With(
			validation.Middleware(gate, validation.SchemaProfile),
			guard,
		).Patch("/{userID}", userHandlers.HandleUpdateProfile())
	})

	// Meal plan routes, all behind the guard.
	r.Route("/api/meals", func(r chi.Router) {
		r.With(guard).Get("/{userID}", mealHandlers.HandleGetPlan())
		r.With(
			validation.Middleware(gate, validation.SchemaNewMeals),
			guard,
		).Post("/{userID}/postnewmeals", mealHandlers.HandleGenerateWeek())
	})

	// Reference data and the plan event stream.
	r.Route("/api/recipes", recipeHandlers.RegisterRoutes)
	r.Get("/api/intolerances", recipeHandlers.HandleListIntolerances())
	r.With(guard).Get("/api/feed/plans", feedHandlers.HandleStream())

	addr := fmt.Sprintf(":%s", cfg.Server.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
		// ReadTimeout/IdleTimeout bound slow clients; WriteTimeout is left
		// unset because the SSE feed holds its response open indefinitely.
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// The server runs in its own goroutine so main can block on the shutdown
	// signal below.
	go func() {
		log.Printf("Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if janitorStop != nil {
		close(janitorStop)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped gracefully")
}

// writeError is a local helper for the panic recovery middleware; it mirrors
// auth.WriteError without pulling handler packages into main's error path.
func writeError(w http.ResponseWriter, r *http.Request, appErr *apperror.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	if err := json.NewEncoder(w).Encode(appErr.ToResponse(r.URL.Path)); err != nil {
		http.Error(w, `{"message":"failed to encode error response"}`, http.StatusInternalServerError)
	}
}
