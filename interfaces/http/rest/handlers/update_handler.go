package handlers

import (
	"encoding/json"
	"net/http"

	"invitelinks-backend/application/services"
	"invitelinks-backend/pkg/common"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// UpdateHandler handles invite-links update requests
type UpdateHandler struct {
	factory  services.UpdaterFactory
	validate *validator.Validate
	logger   *zap.Logger
}

// NewUpdateHandler creates a new UpdateHandler
func NewUpdateHandler(factory services.UpdaterFactory, logger *zap.Logger) *UpdateHandler {
	return &UpdateHandler{
		factory:  factory,
		validate: validator.New(),
		logger:   logger,
	}
}

// Update runs the aggregation-and-reconciliation job for the requested
// accounts. The response is always one of the five fixed messages.
func (h *UpdateHandler) Update(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("Update request panicked", zap.Any("panic", rec))
			common.RespondMessage(w, http.StatusInternalServerError, common.MsgError)
		}
	}()

	var req services.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondMessage(w, http.StatusBadRequest, common.MsgMissingAccounts)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		common.RespondMessage(w, http.StatusBadRequest, common.MsgMissingAccounts)
		return
	}

	updater, err := h.factory.Updater(r.Context(), req.Credentials)
	if err != nil {
		h.logger.Error("Failed to build updater", zap.Error(err))
		common.RespondMessage(w, http.StatusInternalServerError, common.MsgError)
		return
	}

	if err := updater.Run(r.Context(), req.Accounts); err != nil {
		h.logger.Error("Update run failed", zap.Error(err))
		common.RespondMessage(w, http.StatusOK, common.MsgFailure)
		return
	}

	common.RespondMessage(w, http.StatusOK, common.MsgSuccess)
}
