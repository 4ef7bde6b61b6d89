package handler

import (
	"net/http"
	"strings"

	"github.com/go-faster/jx"
)

const (
	contactSentMsg     = "Thanks! Your message was sent."
	contactReceivedMsg = "Message received, but notifications are not configured."
)

// SubmitContact forwards a contact form to the operator push channel and
// acknowledges the customer by email. When neither channel delivers, the
// submission is still accepted with a neutral status.
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	message := strings.TrimSpace(r.FormValue("message"))

	res := h.flow.SubmitContact(r.Context(), name, email, message)

	msg := contactReceivedMsg
	if res.Sent() {
		msg = contactSentMsg
	}

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("ok", func(e *jx.Encoder) { e.Bool(true) })
		e.Field("sent", func(e *jx.Encoder) { e.Bool(res.Sent()) })
		e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
	})
	writeJSON(w, http.StatusOK, &e)
}
