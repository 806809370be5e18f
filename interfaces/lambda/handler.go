// Package lambda dispatches Lambda invocations: direct invoke events carry
// the update payload themselves, while function-URL/API-Gateway requests are
// proxied through the HTTP router.
package lambda

import (
	"context"
	"encoding/json"
	"net/http"

	"invitelinks-backend/application/ports"
	"invitelinks-backend/application/services"
	"invitelinks-backend/pkg/common"

	"github.com/aws/aws-lambda-go/events"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DirectEvent is the payload of a direct Lambda invocation. The API key may
// arrive as a field or as a header-style entry.
type DirectEvent struct {
	APIKey      string                   `json:"apiKey"`
	Headers     map[string]string        `json:"headers"`
	Accounts    []map[string][]string    `json:"accounts"`
	Credentials *ports.StaticCredentials `json:"credentials"`
}

// Handler routes Lambda invocations to the update service.
type Handler struct {
	factory   services.UpdaterFactory
	apiKey    string
	chiLambda *chiadapter.ChiLambdaV2
	logger    *zap.Logger
}

// New creates a Handler. router must be the chi mux the HTTP surface uses.
func New(factory services.UpdaterFactory, apiKey string, router http.Handler, logger *zap.Logger) *Handler {
	h := &Handler{
		factory: factory,
		apiKey:  apiKey,
		logger:  logger,
	}
	if mux, ok := router.(*chi.Mux); ok {
		h.chiLambda = chiadapter.NewV2(mux)
	}
	return h
}

// Handle is the Lambda entrypoint. Payloads shaped like an HTTP API request
// are proxied through the router; anything else is treated as a direct
// invoke event.
func (h *Handler) Handle(ctx context.Context, raw json.RawMessage) (events.APIGatewayV2HTTPResponse, error) {
	var probe struct {
		RawPath string `json:"rawPath"`
	}
	if err := json.Unmarshal(raw, &probe); err == nil && probe.RawPath != "" && h.chiLambda != nil {
		var req events.APIGatewayV2HTTPRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return response(http.StatusInternalServerError, common.MsgError), nil
		}
		return h.chiLambda.ProxyWithContextV2(ctx, req)
	}

	var evt DirectEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		return response(http.StatusInternalServerError, common.MsgError), nil
	}
	return h.handleDirect(ctx, evt), nil
}

// handleDirect serves a direct invoke: auth, then accounts validation, then
// the run, with the fixed response messages.
func (h *Handler) handleDirect(ctx context.Context, evt DirectEvent) (resp events.APIGatewayV2HTTPResponse) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("Direct invocation panicked", zap.Any("panic", rec))
			resp = response(http.StatusInternalServerError, common.MsgError)
		}
	}()

	if h.apiKey == "" {
		h.logger.Warn("API_KEY environment variable is not set")
	}

	provided := evt.APIKey
	if provided == "" {
		if v, ok := evt.Headers["x-api-key"]; ok {
			provided = v
		} else if v, ok := evt.Headers["X-Api-Key"]; ok {
			provided = v
		}
	}
	if provided == "" || provided != h.apiKey {
		return response(http.StatusUnauthorized, common.MsgUnauthorized)
	}

	if len(evt.Accounts) == 0 {
		return response(http.StatusBadRequest, common.MsgMissingAccounts)
	}

	updater, err := h.factory.Updater(ctx, evt.Credentials)
	if err != nil {
		h.logger.Error("Failed to build updater", zap.Error(err))
		return response(http.StatusInternalServerError, common.MsgError)
	}

	if err := updater.Run(ctx, evt.Accounts); err != nil {
		h.logger.Error("Update run failed", zap.Error(err))
		return response(http.StatusOK, common.MsgFailure)
	}

	return response(http.StatusOK, common.MsgSuccess)
}

func response(status int, message string) events.APIGatewayV2HTTPResponse {
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       common.MessageBody(message),
	}
}
