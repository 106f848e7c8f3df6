package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"business-directory/internal/models"
	"business-directory/internal/registration"
	"business-directory/internal/wizard"
)

type sessionResponse struct {
	SessionID string     `json:"sessionId"`
	Steps     []stepView `json:"steps"`
	State     stateView  `json:"state"`
}

type stateView struct {
	CurrentStep         int                 `json:"currentStep"`
	TotalSteps          int                 `json:"totalSteps"`
	StepName            string              `json:"stepName"`
	Status              string              `json:"status"`
	Draft               map[string]string   `json:"draft"`
	ValidationErrors    map[string]string   `json:"validationErrors"`
	LastSubmissionError string              `json:"lastSubmissionError,omitempty"`
	Submitting          bool                `json:"submitting"`
	SavedRecord         *models.SavedRecord `json:"savedRecord,omitempty"`
}

func viewState(st wizard.State) stateView {
	return stateView{
		CurrentStep:         st.CurrentStep,
		TotalSteps:          st.TotalSteps,
		StepName:            st.StepName,
		Status:              string(st.Status),
		Draft:               st.Draft,
		ValidationErrors:    st.ValidationErrors,
		LastSubmissionError: st.LastSubmissionError,
		Submitting:          st.Submitting,
		SavedRecord:         st.SavedRecord,
	}
}

type stepView struct {
	Name   string      `json:"name"`
	Fields []fieldView `json:"fields"`
}

type fieldView struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

func describeSteps(steps []wizard.Step) []stepView {
	out := make([]stepView, len(steps))
	for i, st := range steps {
		out[i] = stepView{Name: st.Name, Fields: make([]fieldView, len(st.Fields))}
		for j, f := range st.Fields {
			out[i].Fields[j] = fieldView{Name: f.Name, Label: f.Label, Required: f.Required}
		}
	}
	return out
}

func bearerToken(r *http.Request) string {
	return strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
}

func (s *Server) handleBegin(w http.ResponseWriter, r *http.Request) {
	session, err := s.deps.Registrar.Begin(r.Context(), bearerToken(r))
	if err != nil {
		if errors.Is(err, registration.ErrUnauthenticated) {
			writeError(w, http.StatusUnauthorized, "sign in to register a business")
			return
		}
		s.fail(w, err)
		return
	}
	id := s.sessions.add(session)
	writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID: id,
		Steps:     describeSteps(session.Steps()),
		State:     viewState(session.State()),
	})
}

// session resolves the caller and the path id. A session that belongs to
// someone else is reported as not found.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*registration.Session, string, bool) {
	user, ok := s.authenticate(w, r)
	if !ok {
		return nil, "", false
	}
	id := r.PathValue("id")
	session, ok := s.sessions.get(id)
	if !ok || session.Owner().ID != user.ID {
		writeError(w, http.StatusNotFound, "registration session not found")
		return nil, id, false
	}
	return session, id, true
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	session, _, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewState(session.State()))
}

type setFieldsRequest struct {
	Step   int               `json:"step"`
	Fields map[string]string `json:"fields"`
}

// handleSetFields applies each value through the wizard; the response lists
// the names it ignored because they are not fields of the current step.
func (s *Server) handleSetFields(w http.ResponseWriter, r *http.Request) {
	session, _, ok := s.session(w, r)
	if !ok {
		return
	}
	var req setFieldsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ignored := make([]string, 0)
	for name, value := range req.Fields {
		if !session.SetField(req.Step, name, value) {
			ignored = append(ignored, name)
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"state": viewState(session.State()), "ignored": ignored})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	session, _, ok := s.session(w, r)
	if !ok {
		return
	}
	moved := session.Advance()
	s.writeTransition(w, moved, session.State())
}

func (s *Server) handleRetreat(w http.ResponseWriter, r *http.Request) {
	session, _, ok := s.session(w, r)
	if !ok {
		return
	}
	moved := session.Retreat()
	s.writeTransition(w, moved, session.State())
}

func (s *Server) writeTransition(w http.ResponseWriter, moved bool, state wizard.State) {
	status := http.StatusOK
	if !moved {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, map[string]interface{}{"moved": moved, "state": viewState(state)})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	session, id, ok := s.session(w, r)
	if !ok {
		return
	}

	// The save outlives the request; a client that goes away does not turn
	// a pending submit into a failure.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), s.submitTimeout)
	defer cancel()

	saved, err := session.Submit(ctx)
	if err == nil {
		s.sessions.remove(id)
		writeJSON(w, http.StatusCreated, map[string]interface{}{"record": saved, "state": viewState(session.State())})
		return
	}

	status := http.StatusUnprocessableEntity
	switch {
	case errors.Is(err, wizard.ErrSubmitInFlight):
		status = http.StatusConflict
	case errors.Is(err, wizard.ErrSubmissionFailed):
		status = http.StatusBadGateway
	case errors.Is(err, wizard.ErrCancelled), errors.Is(err, wizard.ErrNotEditing):
		status = http.StatusGone
	}
	writeJSON(w, status, map[string]interface{}{"error": err.Error(), "state": viewState(session.State())})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	session, id, ok := s.session(w, r)
	if !ok {
		return
	}
	session.Cancel()
	s.sessions.remove(id)
	w.WriteHeader(http.StatusNoContent)
}
