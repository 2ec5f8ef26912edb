package dicehandlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	chatdomain "github.com/Black-And-White-Club/shared-dice/app/modules/chat/domain"
	diceservice "github.com/Black-And-White-Club/shared-dice/app/modules/dice/application"
	dicedomain "github.com/Black-And-White-Club/shared-dice/app/modules/dice/domain"
	dicetypeservice "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/application"
	dicetypedomain "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/domain"
	participantservice "github.com/Black-And-White-Club/shared-dice/app/modules/participant/application"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
	"github.com/Black-And-White-Club/shared-dice/app/shared/attr"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
)

// ChatHistory lists stored chat messages.
type ChatHistory interface {
	Recent(ctx context.Context, limit int) ([]chatdomain.Message, error)
}

// ReconcileScheduler enqueues a bulk reconciliation. An empty at means now.
type ReconcileScheduler interface {
	ScheduleReconcile(ctx context.Context, at string) (time.Time, error)
}

// DiceHandlers serves the HTTP action API.
type DiceHandlers struct {
	dice      diceservice.Service
	dieTypes  dicetypeservice.Service
	chat      ChatHistory
	scheduler ReconcileScheduler
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewDiceHandlers creates a new DiceHandlers instance.
func NewDiceHandlers(
	dice diceservice.Service,
	dieTypes dicetypeservice.Service,
	chat ChatHistory,
	scheduler ReconcileScheduler,
	logger *slog.Logger,
	tracer trace.Tracer,
) *DiceHandlers {
	return &DiceHandlers{
		dice:      dice,
		dieTypes:  dieTypes,
		chat:      chat,
		scheduler: scheduler,
		logger:    logger,
		tracer:    tracer,
	}
}

// Routes registers every handler on r, which is expected to be mounted at
// /api/dice.
func (h *DiceHandlers) Routes(r chi.Router) {
	r.Route("/types", func(r chi.Router) {
		r.Get("/", h.ListDieTypes)
		r.Post("/", h.CreateDieType)
		r.Put("/{dieTypeID}", h.UpdateDieType)
		r.Delete("/{dieTypeID}", h.DeleteDieType)
		r.Get("/{dieTypeID}/chart.png", h.HoldingsChart)
	})
	r.Route("/participants/{participantID}", func(r chi.Router) {
		r.Get("/", h.GetHoldings)
		r.Post("/add", h.action(dicetypedomain.ActionAdd))
		r.Post("/remove", h.action(dicetypedomain.ActionRemove))
		r.Post("/gift", h.action(dicetypedomain.ActionGift))
		r.Post("/reconcile", h.Reconcile)
	})
	r.Post("/use", h.action(dicetypedomain.ActionUse))
	r.Post("/reconcile", h.ScheduleReconcile)
	r.Get("/tray", h.Tray)
	r.Get("/ledger.xlsx", h.ExportLedger)
	r.Get("/chat", h.RecentChat)
}

type actionRequest struct {
	DieTypeID   string         `json:"die_type_id"`
	Amount      *int           `json:"amount,omitempty"`
	ChatMessage *bool          `json:"chat_message,omitempty"`
	MessageData map[string]any `json:"message_data,omitempty"`
}

func (req actionRequest) options() []diceservice.ActionOption {
	var opts []diceservice.ActionOption
	if req.Amount != nil {
		opts = append(opts, diceservice.WithAmount(*req.Amount))
	}
	if req.ChatMessage != nil && !*req.ChatMessage {
		opts = append(opts, diceservice.WithoutChatMessage())
	}
	if len(req.MessageData) > 0 {
		opts = append(opts, diceservice.WithMessageData(req.MessageData))
	}
	return opts
}

type actionResponse struct {
	Success bool `json:"success"`
}

func (h *DiceHandlers) action(action dicetypedomain.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := h.tracer.Start(r.Context(), "DiceHandlers."+string(action))
		defer span.End()

		var req actionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, fmt.Sprintf("Failed to decode request body: %v", err), http.StatusBadRequest)
			return
		}
		if req.DieTypeID == "" {
			http.Error(w, "die_type_id is required", http.StatusBadRequest)
			return
		}

		target := participantdomain.ID(chi.URLParam(r, "participantID"))
		opts := req.options()

		var ok bool
		var err error
		switch action {
		case dicetypedomain.ActionAdd:
			ok, err = h.dice.Add(ctx, target, req.DieTypeID, opts...)
		case dicetypedomain.ActionRemove:
			ok, err = h.dice.Remove(ctx, target, req.DieTypeID, opts...)
		case dicetypedomain.ActionGift:
			ok, err = h.dice.Gift(ctx, target, req.DieTypeID, opts...)
		case dicetypedomain.ActionUse:
			ok, err = h.dice.Use(ctx, req.DieTypeID, opts...)
		}
		if err != nil {
			h.writeError(ctx, w, err)
			return
		}
		writeJSON(w, http.StatusOK, actionResponse{Success: ok})
	}
}

func (h *DiceHandlers) GetHoldings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	participantID := participantdomain.ID(chi.URLParam(r, "participantID"))

	if dieTypeID := r.URL.Query().Get("die_type_id"); dieTypeID != "" {
		qty, err := h.dice.GetUserDie(ctx, participantID, dieTypeID)
		if err != nil {
			h.writeError(ctx, w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{dieTypeID: qty})
		return
	}

	held, err := h.dice.GetUserDice(ctx, participantID)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, held)
}

func (h *DiceHandlers) ListDieTypes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var types []dicetypedomain.DieType
	var err error
	if name := r.URL.Query().Get("name"); name != "" {
		types, err = h.dice.FindDiceTypesByName(ctx, name)
	} else {
		types, err = h.dieTypes.GetAll(ctx)
	}
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	if types == nil {
		types = []dicetypedomain.DieType{}
	}
	writeJSON(w, http.StatusOK, types)
}

// CreateDieType fills fields missing from the body with the defaults of a
// new die type.
func (h *DiceHandlers) CreateDieType(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	d := dicetypedomain.New()
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		http.Error(w, fmt.Sprintf("Failed to decode request body: %v", err), http.StatusBadRequest)
		return
	}

	created, err := h.dieTypes.Create(ctx, d)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *DiceHandlers) UpdateDieType(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var changes dicetypedomain.Changes
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		http.Error(w, fmt.Sprintf("Failed to decode request body: %v", err), http.StatusBadRequest)
		return
	}

	updated, err := h.dieTypes.Update(ctx, chi.URLParam(r, "dieTypeID"), changes)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *DiceHandlers) DeleteDieType(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.dieTypes.Delete(ctx, chi.URLParam(r, "dieTypeID")); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DiceHandlers) HoldingsChart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	png, err := h.dice.HoldingsChart(ctx, chi.URLParam(r, "dieTypeID"))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func (h *DiceHandlers) Reconcile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	participantID := participantdomain.ID(chi.URLParam(r, "participantID"))
	result := h.dice.CleanInvalidData(ctx, participantID)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": result != dicedomain.CleanupFailed,
		"result":  result.String(),
	})
}

type scheduleRequest struct {
	At string `json:"at,omitempty"`
}

// ScheduleReconcile accepts an empty body as "now".
func (h *DiceHandlers) ScheduleReconcile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req scheduleRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, fmt.Sprintf("Failed to decode request body: %v", err), http.StatusBadRequest)
			return
		}
	}
	if h.scheduler == nil {
		http.Error(w, "reconciliation queue is not configured", http.StatusServiceUnavailable)
		return
	}

	at, err := h.scheduler.ScheduleReconcile(ctx, req.At)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"success": true, "scheduled_at": at})
}

func (h *DiceHandlers) Tray(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rows, err := h.dice.Tray(ctx)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *DiceHandlers) ExportLedger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data, err := h.dice.ExportLedger(ctx)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="ledger.xlsx"`)
	w.Write(data)
}

type chatMessageResponse struct {
	ID        string         `json:"id"`
	AuthorID  string         `json:"author_id"`
	Action    string         `json:"action"`
	DieTypeID string         `json:"die_type_id"`
	TargetID  *string        `json:"target_id,omitempty"`
	Content   string         `json:"content"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func (h *DiceHandlers) RecentChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	messages, err := h.chat.Recent(ctx, limit)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	out := make([]chatMessageResponse, 0, len(messages))
	for _, m := range messages {
		resp := chatMessageResponse{
			ID:        m.ID.String(),
			AuthorID:  string(m.AuthorID),
			Action:    string(m.Action),
			DieTypeID: m.DieTypeID,
			Content:   m.Content,
			Data:      m.Data,
			CreatedAt: m.CreatedAt,
		}
		if m.TargetID != nil {
			target := string(*m.TargetID)
			resp.TargetID = &target
		}
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
}

// writeError maps caller bugs, unknown ids included, to 400 and missing
// registry privilege to 403. Anything else is logged as 500.
func (h *DiceHandlers) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, dicedomain.ErrInvalidAmount),
		errors.Is(err, dicedomain.ErrInvalidSchedule),
		errors.Is(err, dicetypedomain.ErrInvalidDieType),
		errors.Is(err, dicetypeservice.ErrUnknownDieType),
		errors.Is(err, participantservice.ErrUnknownParticipant):
		status = http.StatusBadRequest
	case errors.Is(err, dicetypeservice.ErrForbidden):
		status = http.StatusForbidden
	}

	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "API request failed", attr.ExtractCorrelationID(ctx), attr.Error(err))
		http.Error(w, http.StatusText(status), status)
		return
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
