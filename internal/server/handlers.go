package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/BharathSadineni/Eventually-Yours-shopping-app-Project/internal/recommend"
	"github.com/BharathSadineni/Eventually-Yours-shopping-app-Project/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"status": "error", "message": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "shopping recommendation backend is running",
	})
}

func (s *Server) handleInitSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id := s.store.Init(req.SessionID)
	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "success",
		"message":    "session initialized",
		"session_id": id,
	})
}

type userInfoRequest struct {
	SessionID  string          `json:"session_id"`
	Age        string          `json:"age"`
	Gender     string          `json:"gender"`
	Categories json.RawMessage `json:"categories"`
	Interests  string          `json:"interests"`
	Location   string          `json:"location"`
	BudgetMin  json.RawMessage `json:"budgetMin"`
	BudgetMax  json.RawMessage `json:"budgetMax"`
}

func (s *Server) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	var req userInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := r.Header.Get("X-Session-Id")
	if sessionID == "" {
		sessionID = req.SessionID
	}

	profile := session.Profile{
		Age:                req.Age,
		Gender:             req.Gender,
		FavoriteCategories: decodeCategories(req.Categories),
		Interests:          req.Interests,
		ShoppingMethod:     "online",
		Location:           req.Location,
		BudgetRange:        budgetRange(req.BudgetMin, req.BudgetMax),
	}

	sessionID = s.store.SetProfile(sessionID, profile)
	s.log.Info("stored user profile",
		zap.String("session", sessionID),
		zap.String("location", profile.Location),
		zap.String("budget", profile.BudgetRange))

	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "success",
		"message":    "user information stored",
		"session_id": sessionID,
	})
}

// decodeCategories accepts either a JSON array of strings or a single
// string, the two shapes the frontend has sent historically.
func decodeCategories(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return []string{single}
	}
	return nil
}

// budgetRange joins min and max into "<low>-<high>". Either side may arrive
// as a JSON number or string; both must be present for a range to form.
func budgetRange(minRaw, maxRaw json.RawMessage) string {
	low := scalarText(minRaw)
	high := scalarText(maxRaw)
	if low == "" || high == "" {
		return ""
	}
	return low + "-" + high
}

func scalarText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		if num == float64(int64(num)) {
			return fmt.Sprintf("%d", int64(num))
		}
		return fmt.Sprintf("%g", num)
	}
	return ""
}

type recommendationsRequest struct {
	SessionID string `json:"session_id"`
	recommend.ShoppingInput
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	var req recommendationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := s.store.Get(req.SessionID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session")
		return
	}
	if len(sess.Profile.FavoriteCategories) == 0 && sess.Profile.Location == "" {
		writeError(w, http.StatusBadRequest, "no user data found, complete your profile first")
		return
	}

	if !s.store.MarkRunning(req.SessionID) {
		writeJSON(w, http.StatusAccepted, map[string]string{
			"status":  "processing",
			"message": "request already being processed",
		})
		return
	}
	defer s.store.ClearRunning(req.SessionID)

	ctx, done := s.trackRun(req.SessionID, r.Context())
	defer done()

	resp := s.svc.Recommend(ctx, sess.Profile, req.ShoppingInput)

	if err := s.store.SaveResults(req.SessionID, resp); err != nil {
		// Session was cleaned up mid-run; still return the payload.
		s.log.Warn("could not save results", zap.String("session", req.SessionID), zap.Error(err))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRequestStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if s.store.IsRunning(sessionID) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "processing",
			"message": "request is being processed",
		})
		return
	}
	sess, err := s.store.Get(sessionID)
	if err == nil && sess.HasResult {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "completed",
			"message": "request completed successfully",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "idle",
		"message": "no active request",
	})
}

func (s *Server) handleCancelRequest(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	cancelled := s.cancelRun(sessionID)
	if s.store.ClearRunning(sessionID) {
		cancelled = true
	}
	if !cancelled {
		writeError(w, http.StatusNotFound, "no active request to cancel")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "request cancelled",
	})
}

func (s *Server) handleCleanupSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.cancelRun(req.SessionID)
	if err := s.store.Delete(req.SessionID); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "session cleaned up",
	})
}

func (s *Server) handleExportData(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	sess, err := s.store.Get(sessionID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   sess.Profile,
	})
}

func (s *Server) handleWorkerStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"stats":  s.store.Stats(),
	})
}
