package web

import (
	"github.com/kozaktomas/face-attendance/internal/web/handlers"
)

func (s *Server) setupRoutes(deps Deps) {
	detectHandler := handlers.NewDetectHandler(deps.Recognizer)
	enrollHandler := handlers.NewEnrollHandler(deps.Enroller)
	statsHandler := handlers.NewStatsHandler(deps.Attendance)
	enrolledHandler := handlers.NewEnrolledHandler(deps.Provider)

	s.router.Get("/health", handlers.HealthCheck)

	s.router.Post("/detect", detectHandler.Detect)
	s.router.Post("/enroll", enrollHandler.Enroll)
	s.router.Get("/stats", statsHandler.Get)
	s.router.Get("/enrolled-ids", enrolledHandler.List)
}
