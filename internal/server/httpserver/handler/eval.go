// Package handler provides HTTP request handlers for the calcmesh ops API.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/yndnr/calcmesh-go/internal/core/domain"
	"github.com/yndnr/calcmesh-go/internal/core/service"
)

// handleEval handles POST /v1/eval.
func (h *Handler) handleEval(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	var req EvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(w, r, domain.ErrRequestTooLarge.WithDetails(fmt.Sprintf("limit is %d bytes", tooLarge.Limit)), -1)
			return
		}
		h.fail(w, r, domain.ErrInvalidEncoding.WithDetails("invalid JSON body"), -1)
		return
	}

	size := len(req.Expression)
	switch {
	case req.Expression == "":
		h.fail(w, r, domain.ErrEmptyRequest, size)
		return
	case !utf8.ValidString(req.Expression):
		h.fail(w, r, domain.ErrInvalidEncoding, size)
		return
	}

	res, err := h.ev.Evaluate(r.Context(), req.Expression)
	if err != nil {
		h.fail(w, r, err, size)
		return
	}

	h.metrics.ObserveRequest(service.Outcome(nil), size)
	h.writeJSON(w, r, http.StatusOK, EvalResponse{
		Result:     res.Text,
		Scale:      res.Scale,
		DurationUS: res.Duration.Microseconds(),
	})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, size int) {
	h.metrics.ObserveRequest(service.Outcome(err), size)
	h.handleServiceError(w, r, err)
}
