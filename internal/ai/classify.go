package ai

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aws/smithy-go"

	"github.com/amishk599/resumegen/internal/model"
)

// Message fragments the inference service uses when a model cannot be
// invoked on demand and has to go through an inference profile.
var capacityMarkers = []string{"on-demand throughput", "inference profile"}

var accessCodes = map[string]bool{
	"AccessDeniedException": true,
}

var throttleCodes = map[string]bool{
	"ThrottlingException":         true,
	"TooManyRequestsException":    true,
	"ServiceUnavailableException": true,
	"ModelNotReadyException":      true,
	"InternalServerException":     true,
}

var throttleMarkers = []string{"throttl", "too many requests", "service unavailable", "try again later"}

// ClassifyMessage maps a service error code and message onto an ErrorKind.
// Message checks are case-insensitive substring matches and run before code
// checks, since capacity restrictions arrive as plain validation errors.
func ClassifyMessage(code, message string) model.ErrorKind {
	msg := strings.ToLower(message)
	for _, m := range capacityMarkers {
		if strings.Contains(msg, m) {
			return model.KindCapacityRestricted
		}
	}
	if accessCodes[code] || strings.Contains(msg, "access") {
		return model.KindAccessDenied
	}
	if throttleCodes[code] {
		return model.KindThrottled
	}
	for _, m := range throttleMarkers {
		if strings.Contains(msg, m) {
			return model.KindThrottled
		}
	}
	return model.KindUnknown
}

// Classify converts any invocation failure into an *model.InvocationError.
// It is the only place service errors are inspected.
func Classify(target string, err error) *model.InvocationError {
	var invErr *model.InvocationError
	if errors.As(err, &invErr) {
		return invErr
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return &model.InvocationError{
			Target:  target,
			Kind:    ClassifyMessage(apiErr.ErrorCode(), apiErr.ErrorMessage()),
			Message: apiErr.ErrorMessage(),
			Err:     err,
		}
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		msg := ""
		if httpErr.Err != nil {
			msg = httpErr.Err.Error()
		}
		kind := ClassifyMessage("", msg)
		if kind == model.KindUnknown {
			kind = classifyStatus(httpErr.StatusCode)
		}
		return &model.InvocationError{Target: target, Kind: kind, Message: msg, Err: err}
	}

	return &model.InvocationError{
		Target: target,
		Kind:   ClassifyMessage("", err.Error()),
		Err:    err,
	}
}

func classifyStatus(status int) model.ErrorKind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return model.KindAccessDenied
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return model.KindThrottled
	default:
		return model.KindUnknown
	}
}
