package mockapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/targetdesk/pkg/logger"
	"github.com/dmitrymomot/targetdesk/pkg/targets"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		NIP      string `json:"nip"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "invalid request"})
		return
	}

	s.mu.RLock()
	acc, ok := s.accounts[in.NIP]
	s.mu.RUnlock()

	if !ok || bcrypt.CompareHashAndPassword(acc.hash, []byte(in.Password)) != nil {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "invalid credentials"})
		return
	}

	token, err := s.IssueToken(in.NIP)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": err.Error()})
		return
	}

	s.logger.InfoContext(r.Context(), "login", logger.Component("mockapi"), logger.StaffID(in.NIP))
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": token})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	fails, msg := s.profileFails, s.profileMessage
	acc, ok := s.accounts[nipFrom(r)]
	var profile any
	if ok {
		p := acc.profile
		profile = &p
	}
	s.mu.RUnlock()

	if fails || !ok {
		body := map[string]any{"success": false}
		if msg != "" {
			body["message"] = msg
		}
		writeJSON(w, http.StatusOK, body)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": profile})
}

func (s *Server) handleBranch(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	b := s.branch
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": b})
}

func (s *Server) handleAssignments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	month, merr := strconv.Atoi(q.Get("month"))
	year, yerr := strconv.Atoi(q.Get("year"))
	if merr != nil || yerr != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "month and year are required"})
		return
	}

	search := strings.ToLower(strings.TrimSpace(q.Get("search")))

	s.mu.RLock()
	out := make([]targets.Staff, 0, len(s.staff))
	inPeriod := s.branch.Month == 0 || (s.branch.Month == month && s.branch.Year == year)
	for _, st := range s.staff {
		if search != "" && !strings.Contains(strings.ToLower(st.Name), search) && !strings.Contains(st.NIP, search) {
			continue
		}
		if !inPeriod {
			st.HasTarget = false
			st.TotalTarget = 0
			st.TargetDetails = nil
		}
		out = append(out, st)
	}
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": out})
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	nip := chi.URLParam(r, "nip")

	var in targets.Assignment
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request"})
		return
	}
	for _, t := range in.Targets {
		if t.Amount <= 0 {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"errors": map[string]any{"amount": []string{"amount must be greater than 0"}},
			})
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.staff {
		if s.staff[i].NIP == nip {
			idx = i
			break
		}
	}
	if idx < 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "marketing tidak ditemukan"})
		return
	}

	st := &s.staff[idx]
	previous := make(map[int]float64, len(st.TargetDetails))
	for _, d := range st.TargetDetails {
		previous[d.ProductID] = d.Amount
	}

	details := make([]targets.ProductTarget, 0, len(in.Targets))
	for _, t := range in.Targets {
		name := ""
		for i := range s.branch.Products {
			bp := &s.branch.Products[i]
			if bp.ProductID != t.ProductID {
				continue
			}
			name = bp.ProductName
			bp.AssignedAmount += t.Amount - previous[t.ProductID]
			bp.UnassignedAmount = bp.TotalTarget - bp.AssignedAmount
		}
		details = append(details, targets.ProductTarget{ProductID: t.ProductID, ProductName: name, Amount: t.Amount})
	}

	st.TargetDetails = details
	st.TotalTarget = targets.Total(details)
	st.HasTarget = len(details) > 0

	s.logger.InfoContext(r.Context(), "targets assigned",
		logger.Component("mockapi"), logger.StaffID(nip), slog.String("manager", nipFrom(r)))
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "target berhasil disimpan"})
}
