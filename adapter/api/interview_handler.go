package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/panelist/internal/interviews/application/commands"
	"github.com/felixgeelhaar/panelist/internal/interviews/application/queries"
	"github.com/felixgeelhaar/panelist/internal/interviews/domain"
)

// maxBodyBytes bounds request bodies, templates included.
const maxBodyBytes = 1 << 20

// InterviewHandler handles interview API requests.
type InterviewHandler struct {
	create *commands.CreateInterviewHandler
	submit *commands.SubmitInterviewHandler
	delete *commands.DeleteInterviewHandler
	imprt  *commands.ImportInterviewHandler
	export *commands.ExportInterviewHandler
	get    *queries.GetInterviewHandler
	list   *queries.ListInterviewsHandler
	logger *slog.Logger
}

// InterviewHandlerConfig holds dependencies for the interview handler.
type InterviewHandlerConfig struct {
	Create *commands.CreateInterviewHandler
	Submit *commands.SubmitInterviewHandler
	Delete *commands.DeleteInterviewHandler
	Import *commands.ImportInterviewHandler
	Export *commands.ExportInterviewHandler
	Get    *queries.GetInterviewHandler
	List   *queries.ListInterviewsHandler
	Logger *slog.Logger
}

// NewInterviewHandler creates a new interview handler.
func NewInterviewHandler(cfg InterviewHandlerConfig) *InterviewHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &InterviewHandler{
		create: cfg.Create,
		submit: cfg.Submit,
		delete: cfg.Delete,
		imprt:  cfg.Import,
		export: cfg.Export,
		get:    cfg.Get,
		list:   cfg.List,
		logger: cfg.Logger,
	}
}

// InterviewResponse is the API form of an interview: its draft plus identity
// and candidate counts.
type InterviewResponse struct {
	ID         uuid.UUID `json:"id"`
	OwnerEmail string    `json:"owner_email"`
	commands.Draft
	Stats     *domain.Stats `json:"stats,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// SaveResponse is returned by every write that runs a save.
type SaveResponse struct {
	Interview InterviewResponse   `json:"interview"`
	Counts    commands.SaveCounts `json:"counts"`
}

// CreateInterviewRequest is the body of POST /api/v1/interviews.
type CreateInterviewRequest struct {
	Title string `json:"title"`
}

func toInterviewResponse(interview *domain.Interview) InterviewResponse {
	return InterviewResponse{
		ID:         interview.ID(),
		OwnerEmail: interview.OwnerEmail(),
		Draft:      commands.DraftFromInterview(interview),
		Stats:      interview.Stats(),
		CreatedAt:  interview.CreatedAt(),
		UpdatedAt:  interview.UpdatedAt(),
	}
}

func toSaveResponse(result *commands.SaveResult) SaveResponse {
	return SaveResponse{
		Interview: toInterviewResponse(result.Interview),
		Counts:    result.Counts,
	}
}

// List handles GET /api/v1/interviews
func (h *InterviewHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.list.Handle(r.Context(), queries.ListInterviewsQuery{
		OwnerEmail: ownerFrom(r),
		Status:     r.URL.Query().Get("status"),
	})
	if err != nil {
		fail(w, r, h.logger, "failed to list interviews", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"interviews": summaries,
		"total":      len(summaries),
	})
}

// Create handles POST /api/v1/interviews
func (h *InterviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateInterviewRequest
	if !decodeBody(w, r, &req) {
		return
	}

	interview, err := h.create.Handle(r.Context(), commands.CreateInterviewCommand{
		OwnerEmail: ownerFrom(r),
		Title:      req.Title,
	})
	if err != nil {
		fail(w, r, h.logger, "failed to create interview", err)
		return
	}

	writeJSON(w, http.StatusCreated, toInterviewResponse(interview))
}

// Import handles POST /api/v1/interviews/import with a YAML template body.
func (h *InterviewHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, ErrBadRequest.WithMessage("failed to read template"))
		return
	}

	result, err := h.imprt.Handle(r.Context(), commands.ImportInterviewCommand{
		OwnerEmail: ownerFrom(r),
		Data:       data,
	})
	if err != nil {
		fail(w, r, h.logger, "failed to import interview", err)
		return
	}

	writeJSON(w, http.StatusCreated, toSaveResponse(result))
}

// Get handles GET /api/v1/interviews/{interviewID}
func (h *InterviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "interviewID")
	if !ok {
		return
	}

	interview, err := h.get.Handle(r.Context(), queries.GetInterviewQuery{
		InterviewID: id,
		OwnerEmail:  ownerFrom(r),
	})
	if err != nil {
		fail(w, r, h.logger, "failed to get interview", err)
		return
	}

	writeJSON(w, http.StatusOK, toInterviewResponse(interview))
}

// Submit handles PUT /api/v1/interviews/{interviewID}. The body is the full
// edited interview; tasks and criteria without an id are created.
func (h *InterviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "interviewID")
	if !ok {
		return
	}

	var draft commands.Draft
	if !decodeBody(w, r, &draft) {
		return
	}

	h.runSubmit(w, r, commands.SubmitInterviewCommand{
		InterviewID: id,
		OwnerEmail:  ownerFrom(r),
		Draft:       draft,
	})
}

// Publish handles POST /api/v1/interviews/{interviewID}/publish
func (h *InterviewHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, domain.StatusLive)
}

// Close handles POST /api/v1/interviews/{interviewID}/close
func (h *InterviewHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, domain.StatusClosed)
}

// transition saves the stored interview with a new status.
func (h *InterviewHandler) transition(w http.ResponseWriter, r *http.Request, status domain.Status) {
	id, ok := pathID(w, r, "interviewID")
	if !ok {
		return
	}

	owner := ownerFrom(r)
	current, err := h.get.Handle(r.Context(), queries.GetInterviewQuery{InterviewID: id, OwnerEmail: owner})
	if err != nil {
		fail(w, r, h.logger, "failed to load interview", err)
		return
	}

	draft := commands.DraftFromInterview(current)
	draft.Status = status.String()
	h.runSubmit(w, r, commands.SubmitInterviewCommand{InterviewID: id, OwnerEmail: owner, Draft: draft})
}

func (h *InterviewHandler) runSubmit(w http.ResponseWriter, r *http.Request, cmd commands.SubmitInterviewCommand) {
	result, err := h.submit.Handle(r.Context(), cmd)
	if err != nil {
		fail(w, r, h.logger, "failed to save interview", err)
		return
	}

	writeJSON(w, http.StatusOK, toSaveResponse(result))
}

// Delete handles DELETE /api/v1/interviews/{interviewID}
func (h *InterviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "interviewID")
	if !ok {
		return
	}

	err := h.delete.Handle(r.Context(), commands.DeleteInterviewCommand{
		InterviewID: id,
		OwnerEmail:  ownerFrom(r),
	})
	if err != nil {
		fail(w, r, h.logger, "failed to delete interview", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /api/v1/interviews/{interviewID}/export
func (h *InterviewHandler) Export(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "interviewID")
	if !ok {
		return
	}

	data, err := h.export.Handle(r.Context(), commands.ExportInterviewCommand{
		InterviewID: id,
		OwnerEmail:  ownerFrom(r),
	})
	if err != nil {
		fail(w, r, h.logger, "failed to export interview", err)
		return
	}

	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write export", "error", err)
	}
}

// pathID parses a uuid path value, writing a 400 when it is malformed.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, ErrBadRequest.WithMessage("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// decodeBody decodes a JSON body into dst, writing a 400 when it is invalid.
// Unknown fields are ignored so a fetched interview can be sent back as is.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeError(w, ErrBadRequest.WithMessage("invalid request body: "+err.Error()))
		return false
	}
	return true
}
