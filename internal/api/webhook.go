package api

import (
	"io"
	"net/http"
)

const maxWebhookBody = 64 << 10

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		s.logger.Warn().Err(err).Msg("webhook body unreadable")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	out := s.svc.Reconciler.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if out.Body == "" {
		w.WriteHeader(out.Status)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(out.Status)
	_, _ = io.WriteString(w, out.Body)
}
