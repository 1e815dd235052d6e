package main

import (
	"context"
	"log"
	"os"

	"github.com/example/task-tracker/config"
	"github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/domain/user"
	"github.com/example/task-tracker/modules/activity"
	"github.com/example/task-tracker/modules/api"
	"github.com/example/task-tracker/modules/auth"
	"github.com/example/task-tracker/modules/cache"
	tasks "github.com/example/task-tracker/modules/task"
	"github.com/example/task-tracker/storage"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

func main() {
	log.Println("=== Task Tracker ===")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := storage.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := storage.Migrate(db, &user.User{}, &task.Task{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	var accountOpts []auth.AccountOption
	var profileCache *cache.ProfileCache
	if cfg.RedisAddr != "" {
		profileCache, err = cache.Connect(context.Background(), cfg.RedisAddr, cfg.ProfileCacheTTL)
		if err != nil {
			log.Printf("Warning: profile cache disabled: %v", err)
			profileCache = nil
		} else {
			accountOpts = append(accountOpts, auth.WithProfileCache(profileCache))
			log.Printf("Profile cache connected at %s", cfg.RedisAddr)
		}
	}

	tokens, err := auth.NewJWTManager(auth.JWTConfig{
		SecretKey:     cfg.JWTSecret,
		TokenDuration: cfg.TokenTTL,
		Issuer:        cfg.JWTIssuer,
	})
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	activityModule := activity.NewModule()
	authModule := auth.NewModule(db, tokens, cfg.BcryptCost, accountOpts...)
	taskModule := tasks.NewModule(db)
	checks := []api.HealthChecker{authModule, taskModule, activityModule}
	if profileCache != nil {
		checks = append(checks, profileCache)
	}
	apiModule := api.NewModule(
		api.Config{Addr: cfg.HTTPAddr, CORSOrigins: cfg.CORSOrigins},
		auth.NewIdentityResolver(tokens),
		checks...,
	)

	// Order: event consumers and service providers first, then the API
	app.Register(activityModule)
	app.Register(authModule)
	app.Register(taskModule)
	app.Register(apiModule)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg.HTTPAddr)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				if err := app.Stop(ctx); err != nil {
					return err
				}
				if profileCache != nil {
					if err := profileCache.Close(); err != nil {
						log.Printf("Warning: failed to close profile cache: %v", err)
					}
				}
				return storage.Close(db)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(addr string) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("REST API Endpoints (%s):", addr)
	log.Println("")
	log.Println("  Public Endpoints:")
	log.Println("  GET    /health                  - Health check")
	log.Println("  POST   /api/auth/signup         - Create an account")
	log.Println("  POST   /api/auth/signin         - Sign in and get a token")
	log.Println("")
	log.Println("  Protected Endpoints (require Bearer token):")
	log.Println("  GET    /api/auth/me             - Current user")
	log.Println("  POST   /api/tasks               - Create a task")
	log.Println("  GET    /api/tasks               - List your tasks")
	log.Println("  GET    /api/tasks/:id           - Get a task")
	log.Println("  PUT    /api/tasks/:id           - Update a task")
	log.Println("  PATCH  /api/tasks/:id/complete  - Complete a task")
	log.Println("  DELETE /api/tasks/:id           - Delete a task")
	log.Println("  GET    /api/activity            - Your task event counts")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
