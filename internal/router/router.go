package router

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"

	"vet-records/internal/adapters/storage/query"
	"vet-records/internal/domain/records"
	"vet-records/internal/domain/schema"
	"vet-records/internal/domain/softdelete"
	"vet-records/internal/domain/txn"
	"vet-records/internal/domain/uniqueness"
	"vet-records/internal/domain/validation"
	"vet-records/internal/middleware"
	"vet-records/internal/platform/logger"
	"vet-records/internal/platform/metrics"
	"vet-records/internal/ports/auth"
	"vet-records/internal/ports/store"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	DB      *sql.DB
	Dialect store.Dialect

	Logger  logger.Logger    // opcional
	Metrics *metrics.Metrics // opcional; sin métricas no se expone /metrics
	Tracer  trace.Tracer     // opcional
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(log))
	r.Use(middleware.RequestLog(log))

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	svcs := records.NewServices(NewDeps(opts.DB, opts.Dialect, log, opts.Metrics, opts.Tracer))

	// Rutas por entidad, cada una con su control de rol
	r.Route("/owners", func(sr chi.Router) {
		sr.Use(middleware.RequireAccess(schema.Owner))
		records.Mount(sr, svcs.Owners)
	})
	r.Route("/pets", func(sr chi.Router) {
		sr.Use(middleware.RequireAccess(schema.Pet))
		records.Mount(sr, svcs.Pets)
	})
	r.Route("/appointments", func(sr chi.Router) {
		sr.Use(middleware.RequireAccess(schema.Appointment))
		records.Mount(sr, svcs.Appointments)
	})
	r.Route("/invoices", func(sr chi.Router) {
		sr.Use(middleware.RequireAccess(schema.Invoice))
		records.Mount(sr, svcs.Invoices)
	})

	return r
}

// NewDeps arma la cadena validación -> unicidad -> transacción -> baja lógica
// sobre un mismo pool.
func NewDeps(db *sql.DB, dialect store.Dialect, log logger.Logger, m *metrics.Metrics, tracer trace.Tracer) records.Deps {
	runner := query.NewRunner(db, dialect)

	opts := []txn.Option{txn.WithTracer(tracer)}
	if m != nil {
		opts = append(opts, txn.WithRecorder(m))
	}
	coord := txn.NewCoordinator(db, log, opts...)

	return records.Deps{
		DB:          db,
		Dialect:     dialect,
		Validator:   validation.New(runner),
		Guard:       uniqueness.New(runner, dialect),
		Coordinator: coord,
		SoftDelete:  softdelete.New(coord, dialect),
	}
}
