package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/balansoire/auto-qcm/internal/auth"
	"github.com/balansoire/auto-qcm/internal/genai"
	"github.com/balansoire/auto-qcm/internal/qcm"
	"github.com/balansoire/auto-qcm/internal/quota"
)

// API ties the endpoints to their collaborators. Ledger is nil when no
// row-store is configured, which makes quota enforcement inert.
type API struct {
	Store    qcm.Store
	Ledger   quota.Ledger
	Selector *genai.Selector
	DevMode  bool
}

func New(store qcm.Store, ledger quota.Ledger, sel *genai.Selector, devMode bool) *API {
	return &API{Store: store, Ledger: ledger, Selector: sel, DevMode: devMode}
}

type generateRequest struct {
	Skills     []string `json:"skills"`
	Count      int      `json:"count"`
	Name       *string  `json:"name"`
	Difficulty string   `json:"difficulty"`
}

// POST /generate_qcm
func (a *API) GenerateQCM(w http.ResponseWriter, r *http.Request) {
	userID := auth.SubjectFromContext(r.Context())

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	count := req.Count
	if count == 0 {
		count = 10
	}
	if count < 1 {
		count = 1
	}
	if count > 50 {
		count = 50
	}
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = "entretien"
	}

	// Admission: only when a ledger is configured. A read failure here is a
	// hard 500, quota integrity beats availability.
	if a.Ledger != nil {
		role, err := a.Ledger.ResolveRole(r.Context(), userID)
		if err != nil {
			log.Printf("[autoqcm] quota lookup failed for %s: %v", userID, err)
			http.Error(w, "Configuration des quotas QCM invalide. Contactez l'administrateur.",
				http.StatusInternalServerError)
			return
		}
		limit, ok := quota.LimitFor(role)
		if !ok {
			http.Error(w, "Rôle utilisateur inconnu, génération de QCM interdite.",
				http.StatusForbidden)
			return
		}
		if !limit.Unlimited {
			_, total, err := a.Ledger.Usage(r.Context(), userID)
			if err != nil {
				log.Printf("[autoqcm] usage lookup failed for %s: %v", userID, err)
				http.Error(w, "Configuration des quotas QCM invalide. Contactez l'administrateur.",
					http.StatusInternalServerError)
				return
			}
			if total >= limit.Max {
				http.Error(w, "Limite de génération de QCM atteinte pour votre rôle.",
					http.StatusForbidden)
				return
			}
		}
	}

	res := a.Selector.Generate(r.Context(), genai.Request{
		Skills:     req.Skills,
		Count:      count,
		Name:       req.Name,
		Difficulty: difficulty,
	})

	writeJSON(w, http.StatusOK, res.Quiz)

	// Post-hoc bookkeeping: best effort, never fails the request. The
	// response is already written at this point, so a client disconnect
	// must not cancel the counter update.
	if a.Ledger != nil {
		if err := a.Ledger.Record(context.WithoutCancel(r.Context()), userID, res.Backend); err != nil {
			log.Printf("[autoqcm] failed to record usage for %s model=%s: %v",
				userID, res.Backend, err)
		}
	}
}

type saveRequest struct {
	UserID string   `json:"user_id"`
	QCM    qcm.Quiz `json:"qcm"`
	Score  *int     `json:"score"`
}

// POST /save_qcm
func (a *API) SaveQCM(w http.ResponseWriter, r *http.Request) {
	userID := auth.SubjectFromContext(r.Context())

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID != userID && !a.DevMode {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if err := qcm.ValidateQuiz(&req.QCM); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rec := qcm.Record{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		Name:      req.QCM.Name,
		Quiz:      req.QCM,
		Score:     req.Score,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.Store.Save(r.Context(), rec); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": rec.ID})
}

// GET /history/{userID}
func (a *API) History(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	items, err := a.Store.ListByUser(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// GET /qcm/{qid}
func (a *API) GetQCM(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "qid")
	rec, err := a.Store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, qcm.ErrNotFound) {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// DELETE /qcm/{qid} — idempotent, deleting an absent record succeeds.
func (a *API) DeleteQCM(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "qid")
	if err := a.Store.Delete(r.Context(), id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type usageStatsResponse struct {
	Role     string             `json:"role"`
	Limit    *int               `json:"limit"`
	Total    int                `json:"total"`
	PerModel []quota.ModelUsage `json:"per_model"`
}

// GET /usage_stats
func (a *API) UsageStats(w http.ResponseWriter, r *http.Request) {
	if a.Ledger == nil {
		writeJSON(w, http.StatusOK, usageStatsResponse{
			Role: "dev", PerModel: []quota.ModelUsage{},
		})
		return
	}
	userID := auth.SubjectFromContext(r.Context())
	role, err := a.Ledger.ResolveRole(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	limit, ok := quota.LimitFor(role)
	if !ok {
		// Stats are informational: an unrecognized role reports the
		// default role's limit rather than failing, like the original.
		limit, _ = quota.LimitFor(quota.DefaultRole)
	}
	perModel, total, err := a.Ledger.Usage(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	resp := usageStatsResponse{Role: role, Total: total, PerModel: perModel}
	if !limit.Unlimited {
		resp.Limit = &limit.Max
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /
func Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"name":    "Auto QCM API",
		"version": "0.1.0",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
