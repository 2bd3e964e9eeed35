package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"coursecatalog/internal/api/httpx"
	"coursecatalog/internal/api/v1/dto"
	"coursecatalog/internal/authz"
	"coursecatalog/internal/model"
	"coursecatalog/internal/service"
	"coursecatalog/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Guard returns the middleware enforcing the policy for action.
type Guard func(action authz.Action) func(http.Handler) http.Handler

// CourseHandler handles course-related endpoints
type CourseHandler struct {
	courseService service.CourseService
	images        *storage.ImageStore
	validate      *validator.Validate
	logger        zerolog.Logger
}

// NewCourseHandler creates a new CourseHandler. images may be nil when
// uploads are not configured.
func NewCourseHandler(courseService service.CourseService, images *storage.ImageStore, validate *validator.Validate, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		courseService: courseService,
		images:        images,
		validate:      validate,
		logger:        logger.With().Str("handler", "CourseHandler").Logger(),
	}
}

// RegisterRoutes mounts course routes
func (h *CourseHandler) RegisterRoutes(r chi.Router, guard Guard) {
	r.Route("/courses", func(r chi.Router) {
		r.Get("/", h.listCourses)
		r.With(guard(authz.ActionCreateCourse)).Post("/", h.createCourse)
		r.Get("/{courseID}", h.getCourse)
		r.With(guard(authz.ActionEditCourse)).Patch("/{courseID}", h.updateCourse)
		r.With(guard(authz.ActionDeleteCourse)).Delete("/{courseID}", h.deleteCourse)
		r.With(guard(authz.ActionEditCourse)).Post("/{courseID}/image-upload-url", h.createImageUploadURL)
	})
}

func (h *CourseHandler) listCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courseService.ListCourses(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list courses")
		httpx.WriteError(w, http.StatusInternalServerError, httpx.CodeInternal, "Failed to retrieve courses")
		return
	}
	resp := make([]dto.CourseResponseDTO, 0, len(courses))
	for i := range courses {
		resp = append(resp, dto.NewCourseResponse(&courses[i]))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *CourseHandler) getCourse(w http.ResponseWriter, r *http.Request) {
	course, err := h.courseService.GetCourseByID(r.Context(), chi.URLParam(r, "courseID"))
	if err != nil {
		h.writeError(w, err, "Failed to retrieve course")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.NewCourseResponse(course))
}

func (h *CourseHandler) createCourse(w http.ResponseWriter, r *http.Request) {
	var req dto.CourseCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeInvalidRequest, "Invalid JSON payload: "+err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeInvalidRequest, "Validation failed: "+err.Error())
		return
	}

	in := service.CourseInput{Title: req.Title, Topics: req.Topics}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.Price != nil {
		in.Price = *req.Price
	}
	if req.IsPaid != nil {
		in.IsPaid = *req.IsPaid
	}
	if req.ImageURL != nil {
		in.ImageURL = *req.ImageURL
	}
	if req.Link != nil {
		in.Link = *req.Link
	}

	created, err := h.courseService.CreateCourse(r.Context(), in)
	if err != nil {
		h.writeError(w, err, "Failed to create course")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, dto.NewCourseResponse(created))
}

func (h *CourseHandler) updateCourse(w http.ResponseWriter, r *http.Request) {
	var req dto.CourseUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeInvalidRequest, "Invalid JSON payload: "+err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeInvalidRequest, "Validation failed: "+err.Error())
		return
	}

	updated, err := h.courseService.UpdateCourse(r.Context(), chi.URLParam(r, "courseID"), model.CoursePatch{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		IsPaid:      req.IsPaid,
		ImageURL:    req.ImageURL,
		Link:        req.Link,
		Topics:      req.Topics,
	})
	if err != nil {
		h.writeError(w, err, "Failed to update course")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.NewCourseResponse(updated))
}

func (h *CourseHandler) deleteCourse(w http.ResponseWriter, r *http.Request) {
	if err := h.courseService.DeleteCourse(r.Context(), chi.URLParam(r, "courseID")); err != nil {
		h.writeError(w, err, "Failed to delete course")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.DeleteResponseDTO{Success: true})
}

func (h *CourseHandler) createImageUploadURL(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		httpx.WriteError(w, http.StatusServiceUnavailable, httpx.CodeUnavailable, "Image uploads are not configured")
		return
	}
	var req dto.ImageUploadRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeInvalidRequest, "Invalid JSON payload: "+err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeInvalidRequest, "Validation failed: "+err.Error())
		return
	}

	course, err := h.courseService.GetCourseByID(r.Context(), chi.URLParam(r, "courseID"))
	if err != nil {
		h.writeError(w, err, "Failed to retrieve course")
		return
	}
	upload, err := h.images.PresignCourseImage(r.Context(), course.CourseID, req.ContentType)
	if err != nil {
		h.writeError(w, err, "Failed to create upload URL")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, upload)
}

// writeError maps service errors onto HTTP responses.
func (h *CourseHandler) writeError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		httpx.WriteError(w, http.StatusNotFound, httpx.CodeNotFound, "Course not found")
	case errors.Is(err, service.ErrInvalidCourse), errors.Is(err, storage.ErrUnsupportedContentType):
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeInvalidRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg(msg)
		httpx.WriteError(w, http.StatusInternalServerError, httpx.CodeInternal, msg)
	}
}
