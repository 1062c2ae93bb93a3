package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/scythe504/taboo-backend/internal"
	"github.com/scythe504/taboo-backend/internal/game"
	"github.com/scythe504/taboo-backend/internal/utils"
)

const codeAttempts = 5

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// Apply CORS middleware
	r.Use(s.corsMiddleware)

	r.HandleFunc("/", s.HelloWorldHandler)
	r.HandleFunc("/health", s.HealthHandler).Methods(http.MethodGet)

	r.HandleFunc("/matches", s.CreateMatchHandler).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/matches/{matchCode}", s.GetMatchHandler).Methods(http.MethodGet)
	r.HandleFunc("/players/{playerId}/points", s.PlayerPointsHandler).Methods(http.MethodGet)

	r.HandleFunc("/ws/{matchCode}", s.engine.HandleWebSocket)

	return r
}

// CORS middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// CORS Headers
		w.Header().Set("Access-Control-Allow-Origin", "*") // Wildcard allows all origins
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Credentials", "false") // Credentials not allowed with wildcard origins

		// If it's a websocket upgrade, skip further CORS checks
		if strings.ToLower(r.Header.Get("Upgrade")) == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeResponse wraps data in internal.Response with timing information.
func writeResponse(w http.ResponseWriter, status int, startTime int64, data any) {
	endTime := time.Now().UnixMilli()
	resp := internal.Response{
		StatusCode:    status,
		RespStartTime: startTime,
		RespEndTime:   endTime,
		NetRespTime:   endTime - startTime,
		Data:          data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Errorf("[writeResponse] Error encoding response: %v", err)
	}
}

func (s *Server) HelloWorldHandler(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, http.StatusOK, time.Now().UnixMilli(), map[string]string{"message": "Hello World"})
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()

	health := map[string]any{"live_matches": s.engine.MatchCount()}
	status := http.StatusOK
	if s.db != nil {
		stats := s.db.Health()
		health["database"] = stats
		if stats["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
	}
	writeResponse(w, status, startTime, health)
}

type createMatchRequest struct {
	Code   string               `json:"code"`
	Roster []internal.PlayerDTO `json:"roster"`
}

// CreateMatchHandler registers a match for a complete roster. A code is
// generated when the request does not carry one.
func (s *Server) CreateMatchHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()

	var req createMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResponse(w, http.StatusBadRequest, startTime, "invalid request body")
		return
	}
	if err := game.ValidateRoster(req.Roster, internal.MaxPlayersPerMatch); err != nil {
		writeResponse(w, http.StatusBadRequest, startTime, err.Error())
		return
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code != "" {
		if !s.engine.CreateMatch(code, req.Roster) {
			writeResponse(w, http.StatusConflict, startTime, "match code already in use")
			return
		}
		writeResponse(w, http.StatusCreated, startTime, map[string]string{"match_code": code})
		return
	}

	for range codeAttempts {
		code = utils.GenerateMatchCode()
		if s.engine.CreateMatch(code, req.Roster) {
			writeResponse(w, http.StatusCreated, startTime, map[string]string{"match_code": code})
			return
		}
	}
	log.Errorf("[CreateMatchHandler] No free match code after %d attempts", codeAttempts)
	writeResponse(w, http.StatusServiceUnavailable, startTime, "could not allocate a match code")
}

// GetMatchHandler reports a live match, or the stored results of a finished one.
func (s *Server) GetMatchHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()
	code := mux.Vars(r)["matchCode"]

	if snapshot, ok := s.engine.Snapshot(code); ok {
		writeResponse(w, http.StatusOK, startTime, snapshot)
		return
	}

	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		results, err := s.db.ResultsForMatch(ctx, code)
		if err != nil {
			log.WithField("match", code).Errorf("[GetMatchHandler] %v", err)
			writeResponse(w, http.StatusInternalServerError, startTime, "could not load match results")
			return
		}
		if len(results) > 0 {
			writeResponse(w, http.StatusOK, startTime, map[string]any{
				"code":    code,
				"status":  internal.StatusFinished,
				"results": results,
			})
			return
		}
	}

	writeResponse(w, http.StatusNotFound, startTime, game.ErrMatchNotFound.Error())
}

func (s *Server) PlayerPointsHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()
	playerID := mux.Vars(r)["playerId"]

	if s.db == nil {
		writeResponse(w, http.StatusServiceUnavailable, startTime, "no database configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	points, err := s.db.PlayerPoints(ctx, playerID)
	if err != nil {
		log.Errorf("[PlayerPointsHandler] %v", err)
		writeResponse(w, http.StatusInternalServerError, startTime, "could not load points")
		return
	}
	writeResponse(w, http.StatusOK, startTime, map[string]any{"player_id": playerID, "points": points})
}
