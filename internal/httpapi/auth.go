package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/stageworks/backstage/internal/authgate"
)

// handleAuthLink starts the email-link flow.
func (s *Server) handleAuthLink(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.gate.SubmitEmail(r.Context(), req.Email); err != nil {
		if errors.Is(err, authgate.ErrAccessDenied) {
			writeError(w, http.StatusForbidden, "acceso denegado: correo no autorizado")
			return
		}
		s.logger.Error().Err(err).Msg("issuing sign-in link failed")
		writeError(w, http.StatusBadGateway, "no se pudo enviar el enlace")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"message": "enlace enviado, revisa tu bandeja de entrada",
	})
}

// handleAuthConfirm redeems a returned link token together with the
// re-entered email. The token alone never establishes a session.
func (s *Server) handleAuthConfirm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Register the returned token; a token already seen on a previous
	// request simply does not re-trigger the transition.
	s.gate.HandleReturn(req.Token)

	sess, err := s.gate.Confirm(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, authgate.ErrAccessDenied):
			writeError(w, http.StatusForbidden, "acceso denegado: correo no autorizado")
		case errors.Is(err, authgate.ErrNoPendingLink):
			writeError(w, http.StatusConflict, "no hay enlace pendiente de confirmación")
		default:
			writeError(w, http.StatusUnauthorized, "enlace inválido o expirado")
		}
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleAuthSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.gate.SignOut(r.Context()); err != nil {
		s.logger.Warn().Err(err).Msg("sign-out reported an error")
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "sesión cerrada"})
}
