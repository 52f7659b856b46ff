// Package handler — HTTP-граница сервиса. Здесь живет разбор тел запросов,
// enum-строк и единое отображение доменных ошибок в статус-коды.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/xela07ax/traveldesk/internal/domain"
)

type errorBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// writeError переводит классификацию доменной ошибки в HTTP-статус.
// Нетипизированные ошибки наружу не просачиваются: клиент видит 500
// с нейтральным текстом, детали остаются в логах.
func writeError(w http.ResponseWriter, err error) {
	var status int
	message := err.Error()

	switch domain.KindOf(err) {
	case domain.KindValidation, domain.KindInvalidState:
		status = http.StatusBadRequest
	case domain.KindAuthorization:
		status = http.StatusForbidden
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindConflict:
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
		message = "Internal server error"
	}

	writeJSON(w, status, errorBody{Message: message})
}
