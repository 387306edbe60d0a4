package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/DoyleJ11/draft-arena/internal/archive"
	"github.com/DoyleJ11/draft-arena/internal/lobby"
	"github.com/DoyleJ11/draft-arena/internal/registry"
	"github.com/DoyleJ11/draft-arena/internal/timer"
)

func newAPI(t *testing.T) (http.Handler, *registry.Registry) {
	t.Helper()
	log := zaptest.NewLogger(t)
	ctx, cancel := context.WithCancel(context.Background())

	reg := registry.New(ctx, registry.Options{Expiry: time.Hour}, log)
	timers := timer.New(ctx, timer.DefaultConfig(), log)
	lb := lobby.New(ctx, reg, timers, archive.Nop{}, log)
	t.Cleanup(func() {
		cancel()
		<-lb.Done()
		timers.Close()
		reg.Destroy()
	})

	return SetupRoutes(Deps{
		Lobby:    lb,
		Registry: reg,
		Timers:   timers,
		Games:    archive.Nop{},
		Origins:  []string{"*"},
		Log:      log,
	}), reg
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode()
	require.NoError(t, err)
	assert.Len(t, code, codeLength)
	for _, c := range code {
		assert.Contains(t, codeAlphabet, string(c))
	}
}

func TestHealthz(t *testing.T) {
	h, _ := newAPI(t)

	rec := do(t, h, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "ok", body["status"])
	stats, ok := body["stats"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 0, stats["sessions"])
}

func TestCreateDraft(t *testing.T) {
	h, reg := newAPI(t)

	rec := do(t, h, http.MethodPost, "/api/drafts", `{"blueTeamName":"Alpha","redTeamName":"Bravo"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	id, _ := decode(t, rec)["draftId"].(string)
	require.Len(t, id, codeLength)

	s, ok := reg.Get(id)
	require.True(t, ok)
	assert.Equal(t, "Alpha", s.BlueTeamName)
	assert.Equal(t, "Bravo", s.RedTeamName)
	assert.Equal(t, 1, s.GameNumber)
}

func TestCreateDraft_EmptyBodyUsesPlaceholders(t *testing.T) {
	h, reg := newAPI(t)

	rec := do(t, h, http.MethodPost, "/api/drafts", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	id, _ := decode(t, rec)["draftId"].(string)

	s, ok := reg.Get(id)
	require.True(t, ok)
	assert.Equal(t, "Blue Team", s.BlueTeamName)
	assert.Equal(t, "Red Team", s.RedTeamName)
}

func TestCreateDraft_Rejections(t *testing.T) {
	h, _ := newAPI(t)

	tests := []struct {
		name string
		body string
		code string
	}{
		{"duplicate names", `{"blueTeamName":"Same","redTeamName":"Same"}`, "DUPLICATE_TEAM_NAMES"},
		{"malformed body", `{"blueTeamName":`, "BAD_REQUEST"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/drafts", tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			errBody, _ := decode(t, rec)["error"].(map[string]any)
			assert.Equal(t, tc.code, errBody["code"])
		})
	}
}

func TestGetSession(t *testing.T) {
	h, reg := newAPI(t)

	rec := do(t, h, http.MethodGet, "/api/sessions/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	_, err := reg.CreateSession("d1", "Alpha", "Bravo", nil, 1)
	require.NoError(t, err)

	rec = do(t, h, http.MethodGet, "/api/sessions/d1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "d1", body["id"])
	assert.Equal(t, "ban1", body["stage"])
	assert.Nil(t, body["phaseTimeLeft"])
}

func TestListSessions(t *testing.T) {
	h, reg := newAPI(t)

	for _, id := range []string{"a", "b"} {
		_, err := reg.CreateSession(id, "Alpha", "Bravo", nil, 1)
		require.NoError(t, err)
	}

	rec := do(t, h, http.MethodGet, "/api/sessions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, 2, body["count"])
	assert.Len(t, body["sessions"], 2)
}

func TestListGames_EmptyWithoutArchive(t *testing.T) {
	h, _ := newAPI(t)

	rec := do(t, h, http.MethodGet, "/api/sessions/d1/games", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "d1", body["draftId"])
	assert.Empty(t, body["games"])
}

func TestCORSPreflight(t *testing.T) {
	h, _ := newAPI(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/drafts", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
