package http

import (
	"encoding/json"
	"net/http"
)

const (
	codeMethodNotAllowed       = "method_not_allowed"
	codeNotFound               = "not_found"
	codeInvalidRequestBody     = "invalid_request_body"
	codeInvalidID              = "invalid_id"
	codeInvalidQuantity        = "invalid_quantity"
	codeInvalidPrice           = "invalid_price"
	codeDescriptionRequired    = "description_required"
	codeBuyerRequired          = "buyer_required"
	codeEventNameRequired      = "event_name_required"
	codeTicketTypeNameRequired = "ticket_type_name_required"
	codeEventNotFound          = "event_not_found"
	codeCartNotFound           = "cart_not_found"
	codeCartLineNotFound       = "cart_line_not_found"
	codeCartEmpty              = "cart_empty"
	codeTicketTypeNotFound     = "ticket_type_not_found"
	codeTicketTypeInactive     = "ticket_type_inactive"
	codeSoldOut                = "sold_out"
	codeOrderNotFound          = "order_not_found"
	codeOrderNotPaid           = "order_not_paid"
	codeOrderAlreadyPaid       = "order_already_paid"
	codeOrderCancelled         = "order_cancelled"
	codeAlreadyCheckedIn       = "already_checked_in"
	codeCheckoutContention     = "checkout_contention"
	codeForbidden              = "forbidden"
	codeInternalError          = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
