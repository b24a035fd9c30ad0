package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sgladkov/admoderation/internal/api/shared"
	"github.com/sgladkov/admoderation/internal/service"
)

const asyncAcceptedMessage = "Moderation request accepted"

// ModerationHandler exposes the moderation operations over HTTP.
type ModerationHandler struct {
	service service.ModerationService
	logger  *slog.Logger
}

// NewModerationHandler creates a handler over the given moderation service.
func NewModerationHandler(svc service.ModerationService, log *slog.Logger) *ModerationHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ModerationHandler{
		service: svc,
		logger:  log.With(slog.String("component", "moderation_handler")),
	}
}

// Predict handles POST /predict. The advertisement fields come from the
// request body; nothing is read from or written to the database.
func (h *ModerationHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity, "Invalid advertisement fields")
		return
	}

	prediction := h.service.Predict(r.Context(), service.PredictionInput{
		SellerID:       req.SellerID,
		VerifiedSeller: req.IsVerifiedSeller,
		ItemID:         req.ItemID,
		Name:           req.Name,
		Description:    req.Description,
		Category:       req.Category,
		ImagesQty:      req.ImagesQty,
	})

	shared.RespondWithJSON(w, r, http.StatusOK, PredictionResponse{
		IsViolation: prediction.IsViolation,
		Probability: prediction.Probability,
	})
}

// SimplePredict handles POST /simple_predict?item_id=N. The advertisement
// is loaded from the store and scored, with a read-through cache in front.
func (h *ModerationHandler) SimplePredict(w http.ResponseWriter, r *http.Request) {
	itemID, err := shared.ParseIDQueryParam(r, "item_id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	prediction, err := h.service.PredictListing(r.Context(), itemID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, PredictionResponse{
		IsViolation: prediction.IsViolation,
		Probability: prediction.Probability,
	})
}

// AsyncPredict handles POST /async_predict?item_id=N. It creates a pending
// moderation task and hands it to the workers via the queue.
func (h *ModerationHandler) AsyncPredict(w http.ResponseWriter, r *http.Request) {
	itemID, err := shared.ParseIDQueryParam(r, "item_id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	task, err := h.service.EnqueueModeration(r.Context(), itemID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AsyncPredictResponse{
		TaskID:  task.ID,
		Status:  string(task.Status),
		Message: asyncAcceptedMessage,
	})
}

// Result handles GET /moderation_result/{task_id}.
func (h *ModerationHandler) Result(w http.ResponseWriter, r *http.Request) {
	taskID, err := shared.ParseIDPathParam("task_id", chi.URLParam(r, "task_id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	task, err := h.service.Result(r.Context(), taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ModerationResultResponse{
		TaskID:      task.ID,
		Status:      string(task.Status),
		IsViolation: task.IsViolation,
		Probability: task.Probability,
		ErrorMsg:    task.ErrorMessage,
	})
}

// Close handles POST /close?item_id=N. The advertisement is removed along
// with its moderation tasks and cached prediction.
func (h *ModerationHandler) Close(w http.ResponseWriter, r *http.Request) {
	itemID, err := shared.ParseIDQueryParam(r, "item_id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := h.service.CloseListing(r.Context(), itemID); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CloseResponse{
		Message: "Advertisement closed",
	})
}

// Health handles GET /health.
func (h *ModerationHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		h.logger.Error("failed to write health response", "error", err)
	}
}
