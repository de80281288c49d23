package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/Rion4/FedGrid-AIINNOVATION/internal/chat"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/dashboard"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/heatmap"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/identity"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/identity/mocks"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/insights"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/resilience"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/series"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/shell"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/snapshot"
)

var (
	userSess = &identity.Session{AccessToken: "user-token", User: identity.User{ID: "u-1", Email: "user@example.com"}}
	opSess   = &identity.Session{AccessToken: "op-token", User: identity.User{ID: "op-1", Email: "op@example.com"}}
)

type echoBackend struct{}

func (echoBackend) Name() string { return "echo" }

func (echoBackend) Generate(_ context.Context, _ string, turns []chat.Turn) (string, error) {
	return "echo: " + turns[len(turns)-1].Text, nil
}

type harness struct {
	srv      *Server
	provider *mocks.MockProvider
	dir      *snapshot.DirSource
	handler  http.Handler
}

func userID(id string) any {
	return mock.MatchedBy(func(s *identity.Session) bool { return s != nil && s.User.ID == id })
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	p := &mocks.MockProvider{}
	p.On("Verify", mock.Anything, "user-token").Return(userSess, nil).Maybe()
	p.On("Verify", mock.Anything, "op-token").Return(opSess, nil).Maybe()
	p.On("Verify", mock.Anything, mock.Anything).Return(nil, identity.ErrInvalidToken).Maybe()
	p.On("Role", mock.Anything, userID("u-1")).Return(identity.RoleUser, nil).Maybe()
	p.On("Role", mock.Anything, userID("op-1")).Return(identity.RoleOperator, nil).Maybe()

	dir := snapshot.NewDirSource(t.TempDir())
	srv := &Server{
		Shell:       &shell.Shell{Provider: p},
		Loader:      snapshot.NewLoader(dir, snapshot.MaxIndex),
		Assistant:   chat.NewAssistant(echoBackend{}, nil),
		Breakers:    resilience.NewBreakers(resilience.BreakerConfig{}),
		HeatmapSeed: 7,
		NewFeed: func() *insights.Feed {
			return &insights.Feed{
				Rand:    rand.New(rand.NewPCG(1, 1)),
				Initial: time.Millisecond,
				Every:   5 * time.Millisecond,
				Catalog: insights.Operational,
			}
		},
		Now: func() time.Time { return time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC) },
	}
	return &harness{srv: srv, provider: p, dir: dir, handler: srv.Router()}
}

func (h *harness) save(t *testing.T, s *snapshot.Snapshot) {
	t.Helper()
	data, err := snapshot.Encode(s)
	require.NoError(t, err)
	require.NoError(t, h.dir.Save(context.Background(), s.Index, data))
}

func (h *harness) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func sample(index int, predicted float64) *snapshot.Snapshot {
	return &snapshot.Snapshot{
		Index:                 index,
		PredictedKW:           predicted,
		ActualKW:              predicted * 0.97,
		ErrorPercent:          3.1,
		ModelVersion:          "2.1.4",
		TimestampUTC:          "2026-03-01T07:00:00.000000Z",
		Status:                "✅ Success",
		AggregationMethod:     "weighted_average",
		FederatedErrorPercent: 2.5,
		TotalNodes:            2,
		FederatedNodes: []snapshot.FederatedNode{
			{NodeID: "node_1", NodeName: "North Mangaluru Substation", NodeWeight: 0.5, AccuracyScore: 94, LocalPredictionKW: predicted / 2},
			{NodeID: "node_2", NodeName: "South Mangaluru Substation", NodeWeight: 0.5, AccuracyScore: 92, LocalPredictionKW: predicted / 2},
		},
	}
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "breakers")
}

func TestCORSPreflight(t *testing.T) {
	h := newHarness(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/regions", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSignIn_User(t *testing.T) {
	h := newHarness(t)
	creds := identity.Credentials{Email: "user@example.com", Password: "pw"}
	h.provider.On("SignIn", mock.Anything, creds).Return(userSess, nil)

	rec := h.do(t, http.MethodPost, "/api/auth/signin", "", map[string]string{"email": " user@example.com ", "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[signInResponse](t, rec)
	assert.Equal(t, shell.ViewUser, body.View)
	assert.Equal(t, "user-token", body.Session.AccessToken)
}

func TestSignIn_OperatorModeWithUserRole(t *testing.T) {
	h := newHarness(t)
	h.provider.On("SignIn", mock.Anything, mock.Anything).Return(userSess, nil)
	h.provider.On("SignOut", mock.Anything, userSess).Return(nil).Once()

	rec := h.do(t, http.MethodPost, "/api/auth/signin", "", map[string]string{"email": "user@example.com", "password": "pw", "mode": "operator"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access Denied: You do not have operator privileges.", decode[errorBody](t, rec).Error)
	h.provider.AssertCalled(t, "SignOut", mock.Anything, userSess)
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	h := newHarness(t)
	h.provider.On("SignIn", mock.Anything, mock.Anything).
		Return(nil, &identity.ProviderError{Err: identity.ErrInvalidCredentials, Message: "Invalid login credentials"})

	rec := h.do(t, http.MethodPost, "/api/auth/signin", "", map[string]string{"email": "a@b.c", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid login credentials", decode[errorBody](t, rec).Error)
}

func TestSignIn_BadInput(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodPost, "/api/auth/signin", "", map[string]string{"email": "a@b.c", "password": "x", "mode": "admin"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/auth/signin", "", map[string]string{"email": "", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignIn_ProviderDown(t *testing.T) {
	h := newHarness(t)
	h.provider.On("SignIn", mock.Anything, mock.Anything).Return(nil, eris.New("dial tcp: refused"))

	rec := h.do(t, http.MethodPost, "/api/auth/signin", "", map[string]string{"email": "a@b.c", "password": "x"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSignUp(t *testing.T) {
	h := newHarness(t)
	h.provider.On("SignUp", mock.Anything, mock.Anything).Return(nil)

	rec := h.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{"email": "new@example.com", "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, shell.SignUpMessage, decode[map[string]string](t, rec)["message"])

	rec = h.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{"email": "new@example.com", "password": "pw", "mode": "operator"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Sign up is not available for operators from this page.", decode[errorBody](t, rec).Error)
}

func TestSignOut(t *testing.T) {
	h := newHarness(t)
	h.provider.On("SignOut", mock.Anything, userSess).Return(eris.New("already gone"))

	rec := h.do(t, http.MethodPost, "/api/auth/signout", "user-token", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSession(t *testing.T) {
	h := newHarness(t)

	body := decode[sessionResponse](t, h.do(t, http.MethodGet, "/api/session", "", nil))
	assert.Equal(t, shell.ViewAuth, body.View)
	assert.Nil(t, body.User)

	body = decode[sessionResponse](t, h.do(t, http.MethodGet, "/api/session", "bogus", nil))
	assert.Equal(t, shell.ViewAuth, body.View)

	body = decode[sessionResponse](t, h.do(t, http.MethodGet, "/api/session", "op-token", nil))
	assert.Equal(t, shell.ViewOperator, body.View)
	require.NotNil(t, body.User)
	assert.Equal(t, "op@example.com", body.User.Email)
}

func TestRequiresSession(t *testing.T) {
	h := newHarness(t)
	for _, path := range []string{"/api/regions", "/api/user/dashboard", "/api/operator/dashboard"} {
		rec := h.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	}
}

func TestOperatorRoutesRejectUsers(t *testing.T) {
	h := newHarness(t)
	for _, path := range []string{"/api/operator/dashboard", "/api/operator/heatmap", "/api/operator/insights", "/api/operator/report.xlsx"} {
		rec := h.do(t, http.MethodGet, path, "user-token", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
	}
}

func TestRegions(t *testing.T) {
	h := newHarness(t)
	body := decode[map[string]json.RawMessage](t, h.do(t, http.MethodGet, "/api/regions", "user-token", nil))
	var regions []map[string]any
	require.NoError(t, json.Unmarshal(body["regions"], &regions))
	assert.Len(t, regions, 6)
	assert.Contains(t, body, "frame")
}

func TestLatestSnapshot(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodGet, "/api/snapshot/latest", "user-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))

	h.save(t, sample(37, 2400))
	h.save(t, sample(52, 2600))
	snap := decode[snapshot.Snapshot](t, h.do(t, http.MethodGet, "/api/snapshot/latest", "user-token", nil))
	assert.InDelta(t, 2600, snap.PredictedKW, 1e-9)
}

func TestUserDashboard_Placeholders(t *testing.T) {
	h := newHarness(t)
	body := decode[dashboard.User](t, h.do(t, http.MethodGet, "/api/user/dashboard", "user-token", nil))
	assert.Equal(t, "1.25", body.Card.PredictedMWh)
	assert.Equal(t, "✅ Success", body.Card.Status)
	assert.Equal(t, dashboard.WaitingForData, body.Card.LastUpdate)
	assert.False(t, body.Card.Live)
	assert.Len(t, body.Consumption.Values, 24)
	assert.Equal(t, series.Day, body.Period)
}

func TestUserDashboard_Live(t *testing.T) {
	h := newHarness(t)
	h.save(t, sample(3, 2712.4))
	body := decode[dashboard.User](t, h.do(t, http.MethodGet, "/api/user/dashboard", "user-token", nil))
	assert.Equal(t, "2.71", body.Card.PredictedMWh)
	assert.True(t, body.Card.Live)
	require.NotNil(t, body.Card.Federated)
	assert.Equal(t, 2, body.Card.Federated.TotalNodes)
}

func TestUserConsumption(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodGet, "/api/user/consumption?period=week", "user-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Period string `json:"period"`
		Series struct {
			Labels []string `json:"labels"`
		} `json:"series"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "week", body.Period)
	assert.Len(t, body.Series.Labels, 7)

	rec = h.do(t, http.MethodGet, "/api/user/consumption?period=decade", "user-token", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserSimulate(t *testing.T) {
	h := newHarness(t)
	body := decode[map[string]string](t, h.do(t, http.MethodPost, "/api/user/simulate", "user-token", nil))
	assert.Regexp(t, `^\d{2}\.\d kWh$`, body["forecast"])
}

func TestOperatorDashboard(t *testing.T) {
	h := newHarness(t)
	h.save(t, sample(9, 2500))

	rec := h.do(t, http.MethodGet, "/api/operator/dashboard?region=south_mangaluru", "op-token", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Region struct {
			Key string `json:"key"`
		} `json:"region"`
		Nodes struct {
			Aggregation string `json:"aggregation"`
		} `json:"nodes"`
		NodeCount int `json:"node_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "south_mangaluru", body.Region.Key)
	assert.Equal(t, "WEIGHTED AVERAGE", body.Nodes.Aggregation)
	assert.Equal(t, 2, body.NodeCount)

	rec = h.do(t, http.MethodGet, "/api/operator/dashboard?region=atlantis", "op-token", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHeatmap_Points(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodGet, "/api/operator/heatmap?zoom=14", "op-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var layer heatmap.Layer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &layer))
	assert.Equal(t, 14, layer.Zoom)
	assert.Len(t, layer.Regions, 6)
	require.NotNil(t, layer.Bounds)
	for _, p := range layer.Points {
		assert.GreaterOrEqual(t, p.Intensity, 0.1)
		assert.LessOrEqual(t, p.Intensity, 1.0)
	}
}

func TestHeatmap_ZoomClampedAndValidated(t *testing.T) {
	h := newHarness(t)
	layer := decode[heatmap.Layer](t, h.do(t, http.MethodGet, "/api/operator/heatmap?zoom=30", "op-token", nil))
	assert.Equal(t, 16, layer.Zoom)

	rec := h.do(t, http.MethodGet, "/api/operator/heatmap?zoom=far", "op-token", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = h.do(t, http.MethodGet, "/api/operator/heatmap?format=kml", "op-token", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHeatmap_GeoJSON(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodGet, "/api/operator/heatmap?format=geojson", "op-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.NotEmpty(t, fc.Features)
	assert.Equal(t, "Point", fc.Features[0].Geometry.Type)
}

func TestInsights(t *testing.T) {
	h := newHarness(t)

	body := decode[map[string][]insights.Insight](t, h.do(t, http.MethodGet, "/api/operator/insights", "op-token", nil))
	assert.Empty(t, body["insights"])

	prev := sample(1, 2000)
	cur := sample(2, 2900)
	h.save(t, prev)
	h.save(t, cur)
	body = decode[map[string][]insights.Insight](t, h.do(t, http.MethodGet, "/api/operator/insights", "op-token", nil))
	require.NotEmpty(t, body["insights"])
	titles := make([]string, 0, len(body["insights"]))
	for _, in := range body["insights"] {
		titles = append(titles, in.Title)
	}
	assert.Contains(t, titles, "High Consumption Alert")
	assert.Contains(t, titles, "Peak Load Warning")
}

func TestInsightStream(t *testing.T) {
	h := newHarness(t)
	ts := httptest.NewServer(h.handler)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/operator/insights/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer op-token")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	sc := bufio.NewScanner(resp.Body)
	var events []insights.Insight
	for sc.Scan() && len(events) < 2 {
		line := sc.Text()
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			var in insights.Insight
			require.NoError(t, json.Unmarshal([]byte(data), &in))
			events = append(events, in)
		}
	}
	require.Len(t, events, 2)
	for _, e := range events {
		assert.NotEmpty(t, e.Title)
	}
}

func TestReport(t *testing.T) {
	h := newHarness(t)
	h.save(t, sample(5, 2500))

	rec := h.do(t, http.MethodGet, "/api/operator/report.xlsx?region=east_mangaluru", "op-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "fedgrid-east_mangaluru-20260301.xlsx")

	f, err := xlsx.OpenBinary(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Len(t, f.Sheets, 6)
}

func TestChat(t *testing.T) {
	h := newHarness(t)

	welcome := decode[chatResponse](t, h.do(t, http.MethodGet, "/api/chat/welcome", "", nil))
	require.Len(t, welcome.Transcript, 1)

	rec := h.do(t, http.MethodPost, "/api/chat", "user-token", chatRequest{Transcript: welcome.Transcript, Message: "hello"})
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[chatResponse](t, rec)
	require.Len(t, got.Transcript, 3)
	assert.Equal(t, "echo: hello", got.Transcript[2].Text)

	rec = h.do(t, http.MethodPost, "/api/chat", "user-token", chatRequest{Message: "hi"})
	assert.Len(t, decode[chatResponse](t, rec).Transcript, 3)

	rec = h.do(t, http.MethodPost, "/api/chat", "user-token", chatRequest{
		Transcript: chat.Transcript{{Role: "system", Text: "x"}},
		Message:    "hi",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
