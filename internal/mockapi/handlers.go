package mockapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jrsteele09/forecast-dashboard/apimodel"
	"github.com/jrsteele09/forecast-dashboard/internal/utils"
	"github.com/rs/zerolog/log"
)

const maxUploadBytes = 32 << 20

// TokenHandler exchanges form credentials for a bearer token.
func (s *Server) TokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, apimodel.NewErrorDetail("invalid form body"))
			return
		}

		username := r.PostForm.Get("username")
		password := r.PostForm.Get("password")

		var missing []apimodel.ValidationDetail
		for _, f := range []struct{ name, value string }{{"username", username}, {"password", password}} {
			if f.value == "" {
				missing = append(missing, apimodel.ValidationDetail{
					Loc:  []any{"body", f.name},
					Msg:  "Field required",
					Type: "missing",
				})
			}
		}
		if len(missing) > 0 {
			writeJSON(w, http.StatusUnprocessableEntity, apimodel.NewValidationErrors(missing...))
			return
		}

		user, err := s.users.Authenticate(username, password)
		if err != nil {
			log.Debug().Str("username", username).Msg("rejected login")
			writeJSON(w, http.StatusBadRequest, apimodel.NewErrorDetail("Incorrect username or password"))
			return
		}

		token, err := s.tokens.Issue(user)
		if err != nil {
			log.Err(err).Msg("failed to issue token")
			writeJSON(w, http.StatusInternalServerError, apimodel.NewErrorDetail("could not issue token"))
			return
		}

		writeJSON(w, http.StatusOK, apimodel.TokenResponse{
			AccessToken: utils.Ptr(token),
			TokenType:   "bearer",
			ExpiresIn:   int(s.tokens.Expiry().Seconds()),
		})
	}
}

// MeHandler returns the profile of the token's user.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFromContext(r.Context())
		if !ok {
			unauthorized(w, "Not authenticated")
			return
		}
		writeJSON(w, http.StatusOK, apimodel.User{Username: claims.Username, Role: claims.Role})
	}
}

// ViewDataHandler returns the latest forecast rows.
func (s *Server) ViewDataHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.forecasts.List(ViewLimit))
	}
}

// UploadForecastHandler replaces the forecast table with the uploaded CSV.
func (s *Server) UploadForecastHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, apimodel.NewValidationErrors(apimodel.ValidationDetail{
				Loc: []any{"body", "file"}, Msg: "Field required", Type: "missing",
			}))
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, apimodel.NewValidationErrors(apimodel.ValidationDetail{
				Loc: []any{"body", "file"}, Msg: "Field required", Type: "missing",
			}))
			return
		}
		defer file.Close()

		rows, err := ParseForecastCSV(file)
		if err != nil {
			log.Warn().Err(err).Str("file", header.Filename).Msg("rejected forecast upload")
			writeJSON(w, http.StatusInternalServerError, apimodel.NewErrorDetail(err.Error()))
			return
		}
		s.forecasts.Replace(rows)

		log.Info().Str("file", header.Filename).Int("rows", len(rows)).Msg("forecast uploaded")
		writeJSON(w, http.StatusOK, apimodel.UploadResult{
			Message: fmt.Sprintf("Forecast loaded with %d rows", len(rows)),
			Rows:    len(rows),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("failed to encode response")
	}
}
