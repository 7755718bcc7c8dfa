package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HandleLambda serves the stand-in behind an API Gateway proxy integration,
// with the same routes and reply shapes as Routes.
func (h *Handler) HandleLambda(_ context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := headerValue(event.Headers, chiMiddleware.RequestIDHeader)
	if requestID == "" {
		requestID = event.RequestContext.RequestID
	}
	if requestID == "" {
		requestID = newUUID()
	}
	origin := headerValue(event.Headers, "Origin")

	route := event.Resource
	if route == "" {
		route = event.Path
	}

	var resp events.APIGatewayProxyResponse
	switch {
	case event.HTTPMethod == http.MethodOptions:
		resp = lambdaResponse(http.StatusOK, "", "text/plain", origin, requestID)
	case event.HTTPMethod == http.MethodGet && route == "/health":
		resp = lambdaResponse(http.StatusOK, ".", "text/plain", origin, requestID)
	case event.HTTPMethod == http.MethodPost && route == "/query":
		body := event.Body
		if event.IsBase64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(body)
			if err != nil {
				resp = h.lambdaJSON(http.StatusUnprocessableEntity, invalidBody, origin, requestID)
				break
			}
			body = string(decoded)
		}
		status, out := h.answer(requestID, strings.NewReader(body))
		resp = h.lambdaJSON(status, out, origin, requestID)
	default:
		resp = h.lambdaJSON(http.StatusNotFound, errorResponse{Status: "error", Message: "not found"}, origin, requestID)
	}

	h.logger.Info("lambda request",
		zap.String("request_id", requestID),
		zap.String("method", event.HTTPMethod),
		zap.String("path", route),
		zap.Int("status", resp.StatusCode),
	)
	return resp, nil
}

func (h *Handler) lambdaJSON(status int, v any, origin, requestID string) events.APIGatewayProxyResponse {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("encode response", zap.String("request_id", requestID), zap.Error(err))
		return lambdaResponse(http.StatusInternalServerError, `{"status":"error","message":"internal error"}`, "application/json", origin, requestID)
	}
	return lambdaResponse(status, string(data), "application/json", origin, requestID)
}

func lambdaResponse(status int, body, contentType, origin, requestID string) events.APIGatewayProxyResponse {
	headers := corsHeaders(origin)
	headers["Content-Type"] = contentType
	headers[chiMiddleware.RequestIDHeader] = requestID
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       body,
	}
}

// headerValue looks a header up case-insensitively; API Gateway passes
// headers through as the client sent them.
func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

var newUUID = func() string {
	return uuid.NewString()
}
