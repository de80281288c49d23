package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Rion4/FedGrid-AIINNOVATION/internal/dashboard"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/grid"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/series"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/snapshot"
)

// latest loads the newest snapshot; any failure is logged and reads as
// "no data" so views fall back to placeholders.
func (s *Server) latest(r *http.Request) *snapshot.Snapshot {
	snap, err := s.Loader.Latest(r.Context())
	if err != nil {
		zap.L().Debug("api: latest snapshot", zap.Error(err))
		return nil
	}
	return snap
}

func (s *Server) handleRegions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"regions": grid.Regions(),
		"frame":   grid.Frame(),
	})
}

func (s *Server) handleLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.latest(r))
}

func (s *Server) handleUserDashboard(w http.ResponseWriter, r *http.Request) {
	cons, err := series.NewGenerator().User(series.Day)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dashboard.User{
		Card:        dashboard.NewCard(s.latest(r)),
		Consumption: cons,
		Period:      series.Day,
	})
}

func (s *Server) handleUserConsumption(w http.ResponseWriter, r *http.Request) {
	p := series.Period(r.URL.Query().Get("period"))
	if p == "" {
		p = series.Day
	}
	ser, err := series.NewGenerator().User(p)
	if errors.Is(err, series.ErrUnknownPeriod) {
		writeError(w, http.StatusBadRequest, "period must be day, week, month or year")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"period": p, "series": ser})
}

func (s *Server) handleUserSimulate(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"forecast": series.NewGenerator().SimulateForecast()})
}
