package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Rion4/FedGrid-AIINNOVATION/internal/dashboard"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/grid"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/heatmap"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/insights"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/report"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/series"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/snapshot"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) region(w http.ResponseWriter, r *http.Request) (grid.Region, bool) {
	key := r.URL.Query().Get("region")
	if key == "" {
		key = grid.DefaultRegion
	}
	reg, err := grid.Lookup(key)
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown region %q", key))
		return reg, false
	}
	return reg, true
}

// recent returns the newest snapshot and the one before it; either may be nil.
func (s *Server) recent(r *http.Request) (cur, prev *snapshot.Snapshot) {
	snaps, err := s.Loader.Recent(r.Context(), 2)
	if err != nil {
		zap.L().Debug("api: recent snapshots", zap.Error(err))
	}
	if len(snaps) > 0 {
		cur = snaps[0]
	}
	if len(snaps) > 1 {
		prev = snaps[1]
	}
	return cur, prev
}

func (s *Server) handleOperatorDashboard(w http.ResponseWriter, r *http.Request) {
	reg, ok := s.region(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, dashboard.NewOperator(reg, s.latest(r), series.NewGenerator()))
}

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	frame := grid.Frame()
	zoom := frame.Zoom
	if z := r.URL.Query().Get("zoom"); z != "" {
		n, err := strconv.Atoi(z)
		if err != nil {
			writeError(w, http.StatusBadRequest, "zoom must be an integer")
			return
		}
		zoom = min(max(n, frame.MinZoom), frame.MaxZoom)
	}

	format := r.URL.Query().Get("format")
	if format != "" && format != "points" && format != "geojson" {
		writeError(w, http.StatusBadRequest, "format must be points or geojson")
		return
	}

	layer := heatmap.NewSynthesizer(s.HeatmapSeed).Build(grid.Regions(), s.latest(r), zoom)
	if format != "geojson" {
		writeJSON(w, http.StatusOK, layer)
		return
	}

	body, err := json.Marshal(heatmap.FeatureCollection(layer.Points))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode geojson")
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	w.Write(body) //nolint:errcheck
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	cur, prev := s.recent(r)
	writeJSON(w, http.StatusOK, map[string]any{"insights": insights.NewAnalyzer().Analyze(cur, prev)})
}

// handleInsightStream pushes random operational insights as server-sent
// events until the client disconnects.
func (s *Server) handleInsightStream(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(": connected\n\n")); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		zap.L().Warn("api: streaming unsupported", zap.Error(err))
		return
	}

	err := s.NewFeed().Run(r.Context(), func(in insights.Insight) error {
		data, err := json.Marshal(in)
		if err != nil {
			return eris.Wrap(err, "api: marshal insight")
		}
		if _, err := fmt.Fprintf(w, "event: insight\ndata: %s\n\n", data); err != nil {
			return eris.Wrap(err, "api: write event")
		}
		return rc.Flush()
	})
	if err != nil {
		zap.L().Debug("api: insight stream ended", zap.Error(err))
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	reg, ok := s.region(w, r)
	if !ok {
		return
	}
	cur, prev := s.recent(r)
	now := s.Now()

	var buf bytes.Buffer
	err := report.Write(&buf, report.Input{
		GeneratedAt: now,
		Dashboard:   dashboard.NewOperator(reg, cur, series.NewGenerator()),
		Insights:    insights.NewAnalyzer().Analyze(cur, prev),
	})
	if err != nil {
		zap.L().Error("api: build report", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not build report")
		return
	}

	name := fmt.Sprintf("fedgrid-%s-%s.xlsx", reg.Key, now.UTC().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w) //nolint:errcheck
}
