package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"feedbacktriage/internal/api"
	"feedbacktriage/internal/config"
	"feedbacktriage/internal/llm"
	"feedbacktriage/internal/ratelimit"
	"feedbacktriage/internal/store"
	"feedbacktriage/internal/triage"
	"feedbacktriage/internal/validate"
)

type App struct {
	Config  config.Config
	Store   *store.Store
	Limiter ratelimit.Limiter
	LLM     llm.Provider
	Handler *api.Handler

	redisLimiter *ratelimit.Redis
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	st, err := store.Open(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx, st.DB()); err != nil {
		st.Close()
		return nil, err
	}

	a := &App{Config: cfg, Store: st}

	if cfg.Redis.URL != "" {
		redisLimiter, err := ratelimit.NewRedis(cfg.Redis.URL, cfg.RateLimit.Calls, cfg.RateLimit.Period)
		if err != nil {
			st.Close()
			return nil, err
		}
		if err := redisLimiter.Ping(ctx); err != nil {
			redisLimiter.Close()
			st.Close()
			return nil, err
		}
		a.Limiter = redisLimiter
		a.redisLimiter = redisLimiter
	} else {
		a.Limiter = ratelimit.NewMemory(cfg.RateLimit.Calls, cfg.RateLimit.Period)
	}

	provider, err := llm.New(llm.Config{
		Provider:        cfg.LLM.Provider,
		Model:           cfg.LLM.Model,
		APIKey:          cfg.APIKey(),
		Timeout:         cfg.LLM.Timeout,
		AzureEndpoint:   cfg.LLM.AzureEndpoint,
		AzureDeployment: cfg.LLM.AzureDeployment,
		AzureAPIVersion: cfg.LLM.AzureAPIVersion,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.LLM = provider
	log.Printf("llm provider ready: %s (%s)", provider.Name(), provider.Model())

	validator := validate.New(cfg.Validation.MinLength, cfg.Validation.MaxLength)
	a.Handler = api.NewHandler(validator, triage.New(provider), st, a.Limiter)

	return a, nil
}

func (a *App) Close() error {
	var err error
	if a.Store != nil {
		err = a.Store.Close()
	}
	if a.redisLimiter != nil {
		_ = a.redisLimiter.Close()
	}
	return err
}

func (a *App) Serve(ctx context.Context) error {
	mux := http.NewServeMux()
	a.Handler.RegisterRoutes(mux)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := a.Store.Ping(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		if a.redisLimiter != nil {
			if err := a.redisLimiter.Ping(r.Context()); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{
		Addr:              a.Config.HTTP.Addr,
		Handler:           a.Handler.RateLimit(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	log.Printf("listening on %s", a.Config.HTTP.Addr)
	return srv.ListenAndServe()
}
