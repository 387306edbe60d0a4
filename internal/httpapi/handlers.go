package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"

	"github.com/DoyleJ11/draft-arena/internal/engine"
	"github.com/DoyleJ11/draft-arena/internal/types"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
	maxAttempts  = 8
)

func GenerateCode() (string, error) {
	return gonanoid.Generate(codeAlphabet, codeLength)
}

type createDraftRequest struct {
	BlueTeamName string            `json:"blueTeamName"`
	RedTeamName  string            `json:"redTeamName"`
	FearlessBans []engine.Champion `json:"fearlessBans"`
	GameNumber   int               `json:"gameNumber"`
}

// CreateDraft reserves a fresh draft id. Missing names fall back to the
// placeholders so captains can claim them on join.
func CreateDraft(d Deps, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createDraftRequest
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "BAD_REQUEST", "Malformed request body")
				return
			}
		}
		if strings.TrimSpace(req.BlueTeamName) == "" {
			req.BlueTeamName = engine.PlaceholderBlueName
		}
		if strings.TrimSpace(req.RedTeamName) == "" {
			req.RedTeamName = engine.PlaceholderRedName
		}

		var code string
		for range maxAttempts {
			c, err := GenerateCode()
			if err != nil {
				log.Error("failed to generate draft id", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "CREATE_DRAFT_ERROR", "Failed to generate draft id")
				return
			}
			if _, taken := d.Registry.Get(c); !taken {
				code = c
				break
			}
			log.Info("collision on draft id, regenerating", zap.String("draft_id", c))
		}
		if code == "" {
			writeError(w, http.StatusServiceUnavailable, "CREATE_DRAFT_ERROR", "Failed to generate draft id")
			return
		}

		if _, err := d.Registry.CreateSession(code, req.BlueTeamName, req.RedTeamName, req.FearlessBans, req.GameNumber); err != nil {
			var verr *engine.ValidationError
			if errors.As(err, &verr) {
				writeError(w, http.StatusBadRequest, verr.Code, verr.Message)
				return
			}
			log.Error("failed to create draft", zap.String("draft_id", code), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "CREATE_DRAFT_ERROR", "An unexpected error occurred")
			return
		}

		writeJSON(w, http.StatusCreated, struct {
			DraftID string `json:"draftId"`
		}{DraftID: code})
	}
}

func Healthz(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := d.Lobby.Stats(r.Context())
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "UNAVAILABLE", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Status    string    `json:"status"`
			Timestamp time.Time `json:"timestamp"`
			Stats     any       `json:"stats"`
		}{Status: "ok", Timestamp: time.Now().UTC(), Stats: stats})
	}
}

func ListSessions(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions := d.Registry.List()
		slices.SortFunc(sessions, func(a, b engine.Session) int { return a.CreatedAt.Compare(b.CreatedAt) })

		out := make([]types.Summary, 0, len(sessions))
		for _, s := range sessions {
			out = append(out, types.NewSummary(s))
		}
		writeJSON(w, http.StatusOK, struct {
			Count    int             `json:"count"`
			Sessions []types.Summary `json:"sessions"`
		}{Count: len(out), Sessions: out})
	}
}

func GetSession(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		s, ok := d.Registry.Get(id)
		if !ok {
			writeError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "Session not found")
			return
		}
		var left *int
		if ps := d.Timers.PhaseState(id); ps.Active {
			left = &ps.TimeLeft
		}
		writeJSON(w, http.StatusOK, types.NewSnapshot(s, left))
	}
}

func ListGames(d Deps, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		games, err := d.Games.Games(r.Context(), id)
		if err != nil {
			log.Error("failed to list games", zap.String("draft_id", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "ARCHIVE_ERROR", "An unexpected error occurred")
			return
		}
		writeJSON(w, http.StatusOK, struct {
			DraftID string `json:"draftId"`
			Games   any    `json:"games"`
		}{DraftID: id, Games: games})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, struct {
		Error types.ErrorPayload `json:"error"`
	}{Error: types.ErrorPayload{Message: message, Code: code}})
}
