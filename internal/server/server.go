package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/scythe504/taboo-backend/internal/database"
	"github.com/scythe504/taboo-backend/internal/game"
)

type Server struct {
	port int

	db     database.Service
	engine *game.Engine
}

func NewServer(port int, db database.Service, engine *game.Engine) *http.Server {
	s := &Server{
		port:   port,
		db:     db,
		engine: engine,
	}

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
