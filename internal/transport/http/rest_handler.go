package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
)

// RESTHandler serves the request/response endpoints next to the websocket.
type RESTHandler struct {
	service *app.QuizService
}

func NewRESTHandler(service *app.QuizService) *RESTHandler {
	return &RESTHandler{service: service}
}

type questionView struct {
	ID       string   `json:"id"`
	Text     string   `json:"questionText"`
	Options  []string `json:"options"`
	IsActive bool     `json:"isActive"`
}

type roundView struct {
	ID        string         `json:"id"`
	Number    int            `json:"roundNumber"`
	IsActive  bool           `json:"isActive"`
	Questions []questionView `json:"questions"`
}

type registerRequest struct {
	Name       string `json:"name"`
	EmployeeID string `json:"employeeId"`
	Department string `json:"department"`
}

type loginRequest struct {
	EmployeeID string `json:"employeeId"`
}

type submitRequest struct {
	QuestionID string  `json:"questionId"`
	UserEmpID  string  `json:"userEmpId"`
	UserName   string  `json:"userName"`
	Answer     string  `json:"answer"`
	TimeTaken  float64 `json:"timeTaken"`
}

type submitResponse struct {
	IsCorrect bool   `json:"isCorrect"`
	Message   string `json:"message"`
}

// Rounds lists every round without revealing correct options.
func (h *RESTHandler) Rounds(w http.ResponseWriter, r *http.Request) {
	rounds, err := h.service.ListRounds(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]roundView, 0, len(rounds))
	for _, round := range rounds {
		view := roundView{ID: round.ID, Number: round.Number, IsActive: round.IsActive}
		view.Questions = make([]questionView, 0, len(round.Questions))
		for _, q := range round.Questions {
			public := q.Public()
			view.Questions = append(view.Questions, questionView{
				ID:       public.ID,
				Text:     public.Text,
				Options:  public.Options,
				IsActive: q.IsActive,
			})
		}
		views = append(views, view)
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *RESTHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}
	participant, err := h.service.Register(r.Context(), domain.Participant{
		EmployeeID: req.EmployeeID,
		Name:       req.Name,
		Department: req.Department,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, participant)
}

func (h *RESTHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	participant, err := h.service.Login(r.Context(), req.EmployeeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "logged in", "user": participant})
}

func (h *RESTHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !decode(w, r, &req) {
		return
	}
	correct, err := h.service.SubmitAnswer(r.Context(), domain.AnswerSubmission{
		QuestionID:      req.QuestionID,
		ParticipantID:   req.UserEmpID,
		ParticipantName: req.UserName,
		Answer:          req.Answer,
		TimeTaken:       req.TimeTaken,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{IsCorrect: correct, Message: "response recorded"})
}

func (h *RESTHandler) ActiveQuestion(w http.ResponseWriter, r *http.Request) {
	active, err := h.service.ActiveQuestion(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, active)
}

// Leaderboard computes one page without broadcasting it.
func (h *RESTHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	scope, err := domain.ParseScope(query.Get("scope"))
	if err != nil {
		writeError(w, err)
		return
	}
	page, ok := intParam(w, query.Get("page"))
	if !ok {
		return
	}
	pageSize, ok := intParam(w, query.Get("pageSize"))
	if !ok {
		return
	}
	board, err := h.service.Leaderboard(r.Context(), scope, query.Get("scopeId"), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Code: codeValidation, Message: "malformed JSON body"})
		return false
	}
	return true
}

// intParam parses an optional integer query value; empty means zero.
func intParam(w http.ResponseWriter, raw string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Code: codeValidation, Message: "invalid integer " + strconv.Quote(raw)})
		return 0, false
	}
	return n, true
}
