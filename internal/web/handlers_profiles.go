package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/sheetguard/internal/core"
	"github.com/JonMunkholm/sheetguard/internal/store"
	"github.com/JonMunkholm/sheetguard/internal/validation"
)

// maxJSONBody bounds profile and rule request bodies.
const maxJSONBody = 1 << 20

// decodeJSON reads a JSON request body of at most limit bytes into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidRequest, err)
	}
	return nil
}

// handleListProfiles returns all profiles, filtered by the q name search.
func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.service.ListProfiles(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		fail(w, r, err)
		return
	}
	if profiles == nil {
		profiles = []store.Profile{}
	}
	writeJSON(w, http.StatusOK, profiles)
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var in core.ProfileInput
	if err := decodeJSON(w, r, maxJSONBody, &in); err != nil {
		fail(w, r, err)
		return
	}

	profile, err := s.service.CreateProfile(withClient(r), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/profiles/"+profile.ID)
	writeJSON(w, http.StatusCreated, profile)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.service.GetProfile(r.Context(), chi.URLParam(r, "profileID"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// handleUpdateProfile replaces the profile's name and description.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in core.ProfileInput
	if err := decodeJSON(w, r, maxJSONBody, &in); err != nil {
		fail(w, r, err)
		return
	}

	profile, err := s.service.UpdateProfile(withClient(r), chi.URLParam(r, "profileID"), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteProfile(withClient(r), chi.URLParam(r, "profileID")); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddRule(w http.ResponseWriter, r *http.Request) {
	var def validation.RuleDefinition
	if err := decodeJSON(w, r, maxJSONBody, &def); err != nil {
		fail(w, r, err)
		return
	}

	rule, err := s.service.AddRule(withClient(r), chi.URLParam(r, "profileID"), def)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

// handleUpdateRule replaces a rule in place. The id in the path wins over
// any id in the body.
func (s *Server) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	var def validation.RuleDefinition
	if err := decodeJSON(w, r, maxJSONBody, &def); err != nil {
		fail(w, r, err)
		return
	}

	rule, err := s.service.UpdateRule(withClient(r), chi.URLParam(r, "profileID"), chi.URLParam(r, "ruleID"), def)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	err := s.service.DeleteRule(withClient(r), chi.URLParam(r, "profileID"), chi.URLParam(r, "ruleID"))
	if err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSetSample stores the header row of an uploaded sample file on the
// profile.
func (s *Server) handleSetSample(w http.ResponseWriter, r *http.Request) {
	up, cleanup, err := s.readUpload(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}
	defer cleanup()

	profile, err := s.service.SetSampleHeaders(withClient(r), chi.URLParam(r, "profileID"), up)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
