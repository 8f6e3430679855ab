package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"faq-bot/internal/usecase"
)

const (
	correlationHeader = "X-Correlation-Id"
	questionParam     = "question"
)

var corsHeaders = map[string]string{
	"Access-Control-Allow-Credentials": "true",
	"Access-Control-Allow-Methods":     "POST, GET, OPTIONS, DELETE",
	"Access-Control-Max-Age":           "3600",
	"Access-Control-Allow-Headers":     "Content-Type, Accept, X-Requested-With, remember-me",
}

type Answerer interface {
	Answer(ctx context.Context, in usecase.AnswerInput) (usecase.AnswerOutput, error)
}

type Handler struct {
	uc Answerer
}

type askRequest struct {
	Question *string `json:"question"`
}

type answerResponse struct {
	Answer               string `json:"answer"`
	ConversationComplete bool   `json:"conversationComplete"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func NewHandler(uc Answerer) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: answerer must not be nil")
	}
	return &Handler{uc: uc}, nil
}

// Handle serves GET /api/v1/getAnswer?question=... and the equivalent POST
// with a JSON body.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := headerValue(req.Headers, correlationHeader)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	origin := headerValue(req.Headers, "Origin")

	var (
		question string
		err      *usecase.Error
	)
	switch req.HTTPMethod {
	case http.MethodOptions:
		return respond(http.StatusNoContent, "", correlationID, origin), nil
	case http.MethodGet:
		question, err = questionFromQuery(req)
	case http.MethodPost:
		question, err = questionFromBody(req)
	default:
		return jsonResponse(http.StatusMethodNotAllowed, errorResponse{Error: "METHOD_NOT_ALLOWED", Message: "method_not_allowed"}, correlationID, origin), nil
	}
	if err != nil {
		return errorResult(err, correlationID, origin), nil
	}

	out, answerErr := h.uc.Answer(ctx, usecase.AnswerInput{Question: question, CorrelationID: correlationID})
	if answerErr != nil {
		var ucErr *usecase.Error
		if !errors.As(answerErr, &ucErr) {
			ucErr = &usecase.Error{Code: usecase.ErrorInternal, Reason: "internal_error", Err: answerErr}
		}
		if statusFor(ucErr.Code) >= http.StatusInternalServerError {
			slog.ErrorContext(ctx, "answer failed",
				"correlation_id", correlationID,
				"code", ucErr.Code,
				"reason", ucErr.Reason,
				"error", answerErr,
			)
		}
		return errorResult(ucErr, correlationID, origin), nil
	}

	return jsonResponse(http.StatusOK, answerResponse{
		Answer:               out.Response.Answer,
		ConversationComplete: out.Response.ConversationComplete,
	}, correlationID, origin), nil
}

func questionFromQuery(req events.APIGatewayProxyRequest) (string, *usecase.Error) {
	if q, ok := req.QueryStringParameters[questionParam]; ok {
		return q, nil
	}
	if qs := req.MultiValueQueryStringParameters[questionParam]; len(qs) > 0 {
		return qs[0], nil
	}
	return "", &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: "missing_question"}
}

func questionFromBody(req events.APIGatewayProxyRequest) (string, *usecase.Error) {
	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return "", &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: "invalid_body", Err: err}
		}
		body = decoded
	}
	var in askRequest
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return "", &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: "invalid_body", Err: err}
	}
	if in.Question == nil {
		return "", &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: "missing_question"}
	}
	return *in.Question, nil
}

func statusFor(code usecase.ErrorCode) int {
	switch code {
	case usecase.ErrorInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errorResult(err *usecase.Error, correlationID, origin string) events.APIGatewayProxyResponse {
	return jsonResponse(statusFor(err.Code), errorResponse{Error: string(err.Code), Message: err.Reason}, correlationID, origin)
}

func jsonResponse(status int, v any, correlationID, origin string) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"INTERNAL_ERROR","message":"internal_error"}`)
	}
	return respond(status, string(body), correlationID, origin)
}

func respond(status int, body, correlationID, origin string) events.APIGatewayProxyResponse {
	headers := map[string]string{
		"Content-Type":    "application/json",
		correlationHeader: correlationID,
	}
	for k, v := range corsHeaders {
		headers[k] = v
	}
	if origin != "" {
		headers["Access-Control-Allow-Origin"] = origin
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       body,
	}
}

func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
