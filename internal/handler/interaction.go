package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/slack-go/slack"

	"kintai-bot/internal/date"
	"kintai-bot/internal/i18n"
	"kintai-bot/internal/model"
	"kintai-bot/internal/render"
	"kintai-bot/internal/service"
)

// handlerTimeout bounds the detached work that continues after the inbound
// event has been acknowledged.
const handlerTimeout = 10 * time.Second

type blockAction struct {
	fn func(ctx context.Context, ev service.ButtonEvent) error
	// dateGated actions only run when the pressed message carries today's
	// date; registration is date-agnostic.
	dateGated bool
}

type InteractionHandler struct {
	svc       *service.AttendanceService
	channelID string
	actions   map[string]blockAction

	wg sync.WaitGroup // in-flight detached handlers, drained on shutdown
}

func NewInteractionHandler(svc *service.AttendanceService, channelID string) *InteractionHandler {
	h := &InteractionHandler{svc: svc, channelID: channelID}
	h.actions = map[string]blockAction{
		render.ActionOffice: {dateGated: true, fn: func(ctx context.Context, ev service.ButtonEvent) error {
			return svc.SelectWorkStyle(ctx, ev, model.WorkStyleOffice)
		}},
		render.ActionRemote: {dateGated: true, fn: func(ctx context.Context, ev service.ButtonEvent) error {
			return svc.SelectWorkStyle(ctx, ev, model.WorkStyleRemote)
		}},
		render.ActionList:     {dateGated: true, fn: svc.ListDay},
		render.ActionDepart:   {dateGated: true, fn: svc.Depart},
		render.ActionRegister: {dateGated: false, fn: svc.RegisterTrigger},
	}
	return h
}

// HandleInteraction is the single Slack interactivity endpoint. Block actions
// are acknowledged immediately and processed detached; view submissions are
// answered synchronously because validation errors ride in the response body.
func (h *InteractionHandler) HandleInteraction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	payload := r.FormValue("payload")
	if payload == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	var cb slack.InteractionCallback
	if err := json.Unmarshal([]byte(payload), &cb); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	switch cb.Type {
	case slack.InteractionTypeBlockActions:
		if len(cb.ActionCallback.BlockActions) == 0 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		actionID := cb.ActionCallback.BlockActions[0].ActionID
		ev := buttonEvent(&cb)
		w.WriteHeader(http.StatusOK)
		h.spawn(func(ctx context.Context) {
			h.dispatchBlockAction(ctx, actionID, ev)
		})

	case slack.InteractionTypeViewSubmission:
		h.handleViewSubmission(w, &cb)

	default:
		log.Printf("ignoring interaction type %q", cb.Type)
		w.WriteHeader(http.StatusOK)
	}
}

// dispatchBlockAction routes one acknowledged button press. Handler failures
// are logged with the action name; nothing propagates past here.
func (h *InteractionHandler) dispatchBlockAction(ctx context.Context, actionID string, ev service.ButtonEvent) {
	entry, ok := h.actions[actionID]
	if !ok {
		log.Printf("unknown action_id %q (user=%s)", actionID, ev.UserID)
		return
	}

	if entry.dateGated {
		d, err := date.Extract(ev.MessageText)
		if err != nil {
			// Malformed message, not a user mistake.
			log.Printf("ERROR %s: %v (user=%s)", actionID, err, ev.UserID)
			return
		}
		if !date.IsCurrent(d) {
			if err := h.svc.RejectStaleDate(ctx, ev.TriggerID); err != nil {
				log.Printf("ERROR %s: %v (user=%s)", actionID, err, ev.UserID)
			}
			return
		}
		ev.Date = d
	}

	if err := entry.fn(ctx, ev); err != nil {
		log.Printf("ERROR %s: %v (user=%s day=%s)", actionID, err, ev.UserID, ev.Date)
	}
}

func (h *InteractionHandler) handleViewSubmission(w http.ResponseWriter, cb *slack.InteractionCallback) {
	if cb.View.CallbackID != render.CallbackRegisterMember {
		log.Printf("unknown callback_id %q", cb.View.CallbackID)
		w.WriteHeader(http.StatusOK)
		return
	}

	code := strings.TrimSpace(viewValue(cb, render.RegisterCodeBlockID, render.RegisterCodeAction))
	name := strings.TrimSpace(viewValue(cb, render.RegisterNameBlockID, render.RegisterNameAction))

	required := i18n.T(context.Background(), "register.error.required")
	errs := map[string]string{}
	if code == "" {
		errs[render.RegisterCodeBlockID] = required
	}
	if name == "" {
		errs[render.RegisterNameBlockID] = required
	}
	if len(errs) > 0 {
		writeJSON(w, slack.NewErrorsViewSubmissionResponse(errs))
		return
	}

	meta := cb.View.PrivateMetadata
	w.WriteHeader(http.StatusOK)
	h.spawn(func(ctx context.Context) {
		if err := h.svc.RegisterMember(ctx, code, name, meta); err != nil {
			log.Printf("ERROR register member %s: %v", code, err)
		}
	})
}

// HandleDaily posts the day's interactive attendance message to the
// configured channel. Meant to be hit by a scheduler, not by Slack.
func (h *InteractionHandler) HandleDaily(w http.ResponseWriter, r *http.Request) {
	ts, err := h.svc.PostDailyMessage(r.Context(), h.channelID)
	if err != nil {
		log.Printf("ERROR post daily message: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"ts": ts})
}

// RegisterRoutes registers all routes on the given mux.
func (h *InteractionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /interactions", h.HandleInteraction)
	mux.HandleFunc("POST /internal/daily", h.HandleDaily)
}

// Drain waits for detached handler work to finish. Called during shutdown so
// acknowledged presses are not lost.
func (h *InteractionHandler) Drain() {
	h.wg.Wait()
}

// spawn runs fn detached with its own timeout context; panics are contained
// and logged.
func (h *InteractionHandler) spawn(fn func(ctx context.Context)) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("ERROR handler panic: %v", r)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
		defer cancel()
		fn(ctx)
	}()
}

func buttonEvent(cb *slack.InteractionCallback) service.ButtonEvent {
	return service.ButtonEvent{
		UserID:      cb.User.ID,
		UserName:    cb.User.Name,
		ChannelID:   cb.Channel.ID,
		MessageTS:   cb.Message.Timestamp,
		MessageText: cb.Message.Text,
		TriggerID:   cb.TriggerID,
	}
}

func viewValue(cb *slack.InteractionCallback, blockID, actionID string) string {
	if cb.View.State == nil {
		return ""
	}
	return cb.View.State.Values[blockID][actionID].Value
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR encoding response: %v", err)
	}
}
