package http

import (
	"net/http"

	"github.com/rs/cors"
	"live-quiz-service/internal/app"
)

// NewRouter wires every route and wraps the mux in a permissive CORS policy.
func NewRouter(service *app.QuizService, hub *Hub) http.Handler {
	ws := NewWSHandler(service, hub)
	rest := NewRESTHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", ws.ServeWS)
	mux.HandleFunc("GET /rounds", rest.Rounds)
	mux.HandleFunc("POST /api/auth/register", rest.Register)
	mux.HandleFunc("POST /api/auth/login", rest.Login)
	mux.HandleFunc("POST /api/response/submit-answer", rest.SubmitAnswer)
	mux.HandleFunc("GET /api/response/active-question", rest.ActiveQuestion)
	mux.HandleFunc("GET /leaderboard", rest.Leaderboard)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(mux)
}
