package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/matchwatch/internal/domain/match"
	"github.com/riskibarqy/matchwatch/internal/domain/roster"
	"github.com/riskibarqy/matchwatch/internal/platform/logging"
	"github.com/riskibarqy/matchwatch/internal/usecase"
)

// Tracker is the slice of usecase.TrackerService the API serves.
type Tracker interface {
	GetRecord(ctx context.Context, playerID string) (match.Record, bool, error)
	GetAllRecords(ctx context.Context) (map[string]match.Record, error)
	Status(ctx context.Context) usecase.TrackerStatus
	TriggerCycle(ctx context.Context) (usecase.CycleResult, error)
	UpdatePlayerTeam(ctx context.Context, playerID, team string) (roster.Player, error)
}

type Handler struct {
	tracker   Tracker
	logger    *logging.Logger
	validator *validator.Validate
}

func NewHandler(tracker Tracker, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		tracker:   tracker,
		logger:    logger,
		validator: validator.New(),
	}
}

type recordListDTO struct {
	Items   []match.Record `json:"items"`
	Count   int            `json:"count"`
	HasLive bool           `json:"has_live"`
}

type updateTeamRequest struct {
	Team string `json:"team" validate:"required,max=120"`
}

type playerDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Team   string `json:"team"`
	League string `json:"league,omitempty"`
}

type cycleDTO struct {
	ID         string `json:"id"`
	Mode       string `json:"mode"`
	Teams      int    `json:"teams"`
	Players    int    `json:"players"`
	Failures   int    `json:"failures"`
	HasLive    bool   `json:"has_live"`
	DurationMS int64  `json:"duration_ms"`
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListRecords serves every exposed record. ?status= and ?team= narrow the list.
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListRecords")
	defer span.End()

	records, err := h.tracker.GetAllRecords(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list records failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	statusFilter := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status")))
	teamFilter := strings.TrimSpace(r.URL.Query().Get("team"))

	out := recordListDTO{Items: make([]match.Record, 0, len(records))}
	for _, rec := range records {
		if statusFilter != "" && string(rec.Status) != statusFilter {
			continue
		}
		if teamFilter != "" && !strings.EqualFold(rec.Team, teamFilter) {
			continue
		}
		if rec.Status == match.StatusLive {
			out.HasLive = true
		}
		out.Items = append(out.Items, rec)
	}
	sort.Slice(out.Items, func(i, j int) bool { return out.Items[i].PlayerID < out.Items[j].PlayerID })
	out.Count = len(out.Items)

	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "GetRecord")
	defer span.End()

	playerID := r.PathValue("playerID")
	rec, ok, err := h.tracker.GetRecord(ctx, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "get record failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: no record for player %s yet", usecase.ErrNotFound, playerID))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rec)
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "GetStatus")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.tracker.Status(ctx))
}

func (h *Handler) TriggerCycle(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "TriggerCycle")
	defer span.End()

	result, err := h.tracker.TriggerCycle(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "triggered cycle failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, cycleDTO{
		ID:         result.ID,
		Mode:       string(result.Mode),
		Teams:      result.Teams,
		Players:    result.Players,
		Failures:   result.Failures,
		HasLive:    result.HasLive,
		DurationMS: result.Duration.Milliseconds(),
	})
}

func (h *Handler) UpdatePlayerTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "UpdatePlayerTeam")
	defer span.End()

	var payload updateTeamRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	payload.Team = strings.TrimSpace(payload.Team)
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	playerID := r.PathValue("playerID")
	p, err := h.tracker.UpdatePlayerTeam(ctx, playerID, payload.Team)
	if err != nil {
		h.logger.WarnContext(ctx, "update player team failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerDTO{ID: p.ID, Name: p.Name, Team: p.Team, League: p.League})
}
