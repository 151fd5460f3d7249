package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mlin/bilingo/internal/api"
	"github.com/mlin/bilingo/internal/catalog"
	"github.com/mlin/bilingo/internal/llm"
	"github.com/mlin/bilingo/internal/milestones"
	"github.com/mlin/bilingo/internal/progression"
	"github.com/mlin/bilingo/internal/session"
	"github.com/mlin/bilingo/internal/store"
)

// shutdownGrace is how long in-flight requests get to finish.
const shutdownGrace = 10 * time.Second

// App owns the service wiring: storage, domain services, and the HTTP
// host around them.
type App struct {
	store    *store.Store
	sessions *session.Manager
	handler  *api.Handler
	cfg      api.Config
}

// New builds the application over the database at dbPath.
func New(dbPath string) (*App, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	sessions := session.NewManager(session.NewStore())
	detector := milestones.NewDetector()
	engine := progression.NewEngine(catalog.Default())

	cfg := api.LoadConfig()

	llmCfg := llm.ConfigFromEnv()
	if err := llmCfg.Validate(); err != nil {
		st.Close()
		return nil, err
	}
	narrator, err := llm.NewProvider(llmCfg, st.EventRepo())
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("initializing LLM provider: %w", err)
	}

	handler := api.NewHandler(sessions, detector, engine,
		st.EventRepo(), st.SessionRepo(), narrator)

	return &App{
		store:    st,
		sessions: sessions,
		handler:  handler,
		cfg:      cfg,
	}, nil
}

// Close releases the storage resources.
func (a *App) Close() error {
	return a.store.Close()
}

// Run serves HTTP until the context is cancelled or an interrupt
// arrives, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:    a.cfg.Addr,
		Handler: a.handler.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("bilingo listening on %s", a.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
