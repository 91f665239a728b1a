package server

import (
	"errors"
	"net/http"

	"github.com/benpsk/go-items/internal/item"
)

func (h handler) createItem(w http.ResponseWriter, r *http.Request) {
	body, err := readBodyWithLimit(w, r, defaultRequestBodyLimitBytes)
	if err != nil {
		if isRequestBodyTooLarge(err) {
			writeErrorJSON(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeErrorJSON(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	in, err := item.DecodeCreate(body)
	if err != nil {
		h.writeItemError(w, r, "create item", err)
		return
	}

	created, err := h.items.Create(r.Context(), in)
	if err != nil {
		h.writeItemError(w, r, "create item", err)
		return
	}
	writeJSON(w, http.StatusOK, item.NewRead(created))
}

func (h handler) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.List(r.Context())
	if err != nil {
		h.writeItemError(w, r, "list items", err)
		return
	}
	writeJSON(w, http.StatusOK, item.NewReads(items))
}

func (h handler) writeItemError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var ve *item.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": ve.Errors})
		return
	}

	logRequestError(r, op, err)
	writeErrorJSON(w, http.StatusInternalServerError, err.Error())
}
