package evolutionhandler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"skima/internal/domain/evolution"
	"skima/internal/platform/jobs"
	"skima/internal/platform/requestctx"
	"skima/internal/transport/http/api"
	"skima/internal/transport/http/middleware"
	"skima/internal/transport/http/shared"
)

type Computer interface {
	Compute(ctx context.Context, spec evolution.RangeSpec) (*evolution.Result, error)
}

type SnapshotStore interface {
	TakeSnapshot(ctx context.Context) (jobs.Snapshot, error)
	ListSnapshots(ctx context.Context, limit int) ([]jobs.Snapshot, error)
}

type Handler struct {
	Evolution Computer
	Snapshots SnapshotStore
	Company   string
	Logger    *slog.Logger
	Now       func() time.Time
}

func NewHandler(evo Computer, snapshots SnapshotStore, company string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Evolution: evo, Snapshots: snapshots, Company: company, Logger: logger, Now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/skills/evolution", func(r chi.Router) {
		r.Get("/", h.handleEvolution)
		r.Get("/report", h.handleReport)
		r.Get("/snapshots", h.handleListSnapshots)
		r.With(middleware.RequireAuth).Post("/snapshots", h.handleTakeSnapshot)
	})
}

func rangeSpec(r *http.Request) evolution.RangeSpec {
	q := r.URL.Query()
	return evolution.RangeSpec{
		Preset:    q.Get("range"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
	}
}

func (h *Handler) compute(w http.ResponseWriter, r *http.Request) (*evolution.Result, bool) {
	spec := rangeSpec(r)
	res, err := h.Evolution.Compute(r.Context(), spec)
	if err != nil {
		requestctx.Logger(r.Context(), h.Logger).Error("evolution compute failed", "range", spec.Preset, "err", err)
		api.Fail(w, http.StatusInternalServerError, "evolution_failed", "Error al calcular la evolución", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	return res, true
}

// handleEvolution writes the result without the envelope; the dashboard
// reads meta, chartData, employees and insights at the top level.
func (h *Handler) handleEvolution(w http.ResponseWriter, r *http.Request) {
	res, ok := h.compute(w, r)
	if !ok {
		return
	}
	api.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	res, ok := h.compute(w, r)
	if !ok {
		return
	}
	now := h.Now().UTC()
	var buf bytes.Buffer
	if err := evolution.WriteReportPDF(&buf, res, h.Company, now); err != nil {
		requestctx.Logger(r.Context(), h.Logger).Error("evolution report failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "report_failed", "No se pudo generar el informe", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="evolucion-%s-%s.pdf"`, res.Meta.StartDate, res.Meta.EndDate))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	limit := shared.ParseLimit(r, 24, 120)
	snaps, err := h.Snapshots.ListSnapshots(r.Context(), limit)
	if err != nil {
		requestctx.Logger(r.Context(), h.Logger).Error("list snapshots failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "snapshots_failed", "No se pudieron obtener los históricos", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, snaps, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleTakeSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Snapshots.TakeSnapshot(r.Context())
	if err != nil {
		requestctx.Logger(r.Context(), h.Logger).Error("take snapshot failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "snapshot_failed", "No se pudo registrar el histórico", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, snap, middleware.GetRequestID(r.Context()))
}
