package corehandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"plenum/internal/domain/auth"
	"plenum/internal/domain/core"
	"plenum/internal/platform/logging"
	"plenum/internal/transport/http/api"
	"plenum/internal/transport/http/middleware"
	"plenum/internal/transport/http/shared"
)

type Service interface {
	ListEmployees(ctx context.Context, companyID string, limit, offset int) ([]core.Employee, error)
	GetEmployee(ctx context.Context, companyID, employeeID string) (core.Employee, error)
	CreateEmployee(ctx context.Context, emp core.Employee) (string, error)
	ListCourses(ctx context.Context, companyID string) ([]core.Course, error)
	CreateCourse(ctx context.Context, course core.Course) (string, error)
	ListExams(ctx context.Context, companyID string) ([]core.Exam, error)
	CreateExam(ctx context.Context, exam core.Exam) (string, error)
	ListEnrollments(ctx context.Context, companyID, employeeID string) ([]core.Enrollment, error)
	CreateEnrollment(ctx context.Context, enrollment core.Enrollment) (string, error)
	ListEmployeeExams(ctx context.Context, companyID, employeeID string) ([]core.EmployeeExam, error)
	CreateEmployeeExam(ctx context.Context, record core.EmployeeExam) (string, error)
	Delete(ctx context.Context, entity, companyID, id string) error
}

type Handler struct {
	Service Service
	Audit   shared.AuditRecorder
}

func NewHandler(service Service, audit shared.AuditRecorder) *Handler {
	return &Handler{Service: service, Audit: audit}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	write := middleware.RequireRole(auth.RoleAdmin)

	r.Get("/employees", h.handleListEmployees)
	r.With(write).Post("/employees", h.handleCreateEmployee)
	r.Get("/employees/{employeeID}", h.handleGetEmployee)
	r.With(write).Delete("/employees/{employeeID}", h.deleteHandler(core.EntityEmployee, "employeeID"))

	r.Get("/courses", h.handleListCourses)
	r.With(write).Post("/courses", h.handleCreateCourse)
	r.With(write).Delete("/courses/{courseID}", h.deleteHandler(core.EntityCourse, "courseID"))

	r.Get("/exams", h.handleListExams)
	r.With(write).Post("/exams", h.handleCreateExam)
	r.With(write).Delete("/exams/{examID}", h.deleteHandler(core.EntityExam, "examID"))

	r.Get("/enrollments", h.handleListEnrollments)
	r.With(write).Post("/enrollments", h.handleCreateEnrollment)
	r.With(write).Delete("/enrollments/{enrollmentID}", h.deleteHandler(core.EntityEnrollment, "enrollmentID"))

	r.Get("/exam-records", h.handleListEmployeeExams)
	r.With(write).Post("/exam-records", h.handleCreateEmployeeExam)
	r.With(write).Delete("/exam-records/{recordID}", h.deleteHandler(core.EntityEmployeeExam, "recordID"))
}

func currentUser(w http.ResponseWriter, r *http.Request) (auth.UserContext, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
	}
	return user, ok
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}

func writeStoreError(w http.ResponseWriter, r *http.Request, err error, action string) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, core.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "resource not found", reqID)
	case errors.Is(err, core.ErrReferenceNotFound):
		api.Fail(w, http.StatusNotFound, "reference_not_found", "referenced employee, course or exam not found", reqID)
	case errors.Is(err, core.ErrDuplicate):
		api.Fail(w, http.StatusConflict, "duplicate", "resource already exists", reqID)
	default:
		logging.From(r.Context()).Error(action+" failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, strings.ReplaceAll(action, " ", "_")+"_failed", "failed to "+action, reqID)
	}
}

func (h *Handler) created(w http.ResponseWriter, r *http.Request, user auth.UserContext, entity, id string, after any) {
	shared.Audit(r, h.Audit, user.CompanyID, user.UserID, entity+".create", entity, id, after)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	page := shared.ParsePagination(r, 100, 500)
	employees, err := h.Service.ListEmployees(r.Context(), user.CompanyID, page.Limit, page.Offset)
	if err != nil {
		writeStoreError(w, r, err, "list employees")
		return
	}
	out := make([]core.Employee, 0, len(employees))
	for _, emp := range employees {
		core.FilterEmployeeFields(&emp, user)
		out = append(out, emp)
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	emp, err := h.Service.GetEmployee(r.Context(), user.CompanyID, chi.URLParam(r, "employeeID"))
	if err != nil {
		writeStoreError(w, r, err, "get employee")
		return
	}
	core.FilterEmployeeFields(&emp, user)
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

type employeeRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	CPF      string `json:"cpf"`
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var payload employeeRequest
	if !decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("fullName", payload.FullName, "is required")
	if email := strings.TrimSpace(payload.Email); email != "" && !strings.Contains(email, "@") {
		v.Add("email", "must be a valid email address")
	}
	if strings.TrimSpace(payload.CPF) != "" && !core.ValidCPF(payload.CPF) {
		v.Add("cpf", "must be a valid CPF")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateEmployee(r.Context(), core.Employee{
		CompanyID: user.CompanyID,
		FullName:  payload.FullName,
		Email:     payload.Email,
		CPF:       payload.CPF,
	})
	if err != nil {
		writeStoreError(w, r, err, "create employee")
		return
	}
	h.created(w, r, user, core.EntityEmployee, id, map[string]string{"fullName": strings.TrimSpace(payload.FullName)})
}

func (h *Handler) handleListCourses(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	courses, err := h.Service.ListCourses(r.Context(), user.CompanyID)
	if err != nil {
		writeStoreError(w, r, err, "list courses")
		return
	}
	if courses == nil {
		courses = []core.Course{}
	}
	api.Success(w, courses, middleware.GetRequestID(r.Context()))
}

type catalogRequest struct {
	Title        string `json:"title"`
	CourseCode   string `json:"courseCode"`
	Code         string `json:"code"`
	ValidityDays *int   `json:"validityDays"`
}

func validateCatalog(payload catalogRequest) *shared.Validator {
	v := shared.NewValidator()
	v.Required("title", payload.Title, "is required")
	v.PositiveInt("validityDays", payload.ValidityDays)
	return v
}

func (h *Handler) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var payload catalogRequest
	if !decode(w, r, &payload) {
		return
	}
	if validateCatalog(payload).Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	course := core.Course{CompanyID: user.CompanyID, Title: payload.Title, Code: payload.CourseCode, ValidityDays: payload.ValidityDays}
	id, err := h.Service.CreateCourse(r.Context(), course)
	if err != nil {
		writeStoreError(w, r, err, "create course")
		return
	}
	h.created(w, r, user, core.EntityCourse, id, course)
}

func (h *Handler) handleListExams(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	exams, err := h.Service.ListExams(r.Context(), user.CompanyID)
	if err != nil {
		writeStoreError(w, r, err, "list exams")
		return
	}
	if exams == nil {
		exams = []core.Exam{}
	}
	api.Success(w, exams, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateExam(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var payload catalogRequest
	if !decode(w, r, &payload) {
		return
	}
	if validateCatalog(payload).Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	exam := core.Exam{CompanyID: user.CompanyID, Title: payload.Title, Code: payload.Code, ValidityDays: payload.ValidityDays}
	id, err := h.Service.CreateExam(r.Context(), exam)
	if err != nil {
		writeStoreError(w, r, err, "create exam")
		return
	}
	h.created(w, r, user, core.EntityExam, id, exam)
}

func (h *Handler) handleListEnrollments(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	enrollments, err := h.Service.ListEnrollments(r.Context(), user.CompanyID, strings.TrimSpace(r.URL.Query().Get("employeeId")))
	if err != nil {
		writeStoreError(w, r, err, "list enrollments")
		return
	}
	if enrollments == nil {
		enrollments = []core.Enrollment{}
	}
	api.Success(w, enrollments, middleware.GetRequestID(r.Context()))
}

type enrollmentRequest struct {
	EmployeeID     string `json:"employeeId"`
	CourseID       string `json:"courseId"`
	CompletionDate string `json:"completionDate"`
	CertificateURL string `json:"certificateUrl"`
}

func optionalDate(v *shared.Validator, field, raw string) *time.Time {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parsed, ok := v.Date(field, raw)
	if !ok {
		return nil
	}
	return &parsed
}

func (h *Handler) handleCreateEnrollment(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var payload enrollmentRequest
	if !decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.UUID("employeeId", payload.EmployeeID)
	v.UUID("courseId", payload.CourseID)
	completion := optionalDate(v, "completionDate", payload.CompletionDate)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	enrollment := core.Enrollment{
		CompanyID:      user.CompanyID,
		EmployeeID:     payload.EmployeeID,
		CourseID:       payload.CourseID,
		CompletionDate: completion,
		CertificateURL: payload.CertificateURL,
	}
	id, err := h.Service.CreateEnrollment(r.Context(), enrollment)
	if err != nil {
		writeStoreError(w, r, err, "create enrollment")
		return
	}
	h.created(w, r, user, core.EntityEnrollment, id, enrollment)
}

func (h *Handler) handleListEmployeeExams(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	records, err := h.Service.ListEmployeeExams(r.Context(), user.CompanyID, strings.TrimSpace(r.URL.Query().Get("employeeId")))
	if err != nil {
		writeStoreError(w, r, err, "list exam records")
		return
	}
	if records == nil {
		records = []core.EmployeeExam{}
	}
	api.Success(w, records, middleware.GetRequestID(r.Context()))
}

type examRecordRequest struct {
	EmployeeID string `json:"employeeId"`
	ExamID     string `json:"examId"`
	ExamDate   string `json:"examDate"`
}

func (h *Handler) handleCreateEmployeeExam(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var payload examRecordRequest
	if !decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.UUID("employeeId", payload.EmployeeID)
	v.UUID("examId", payload.ExamID)
	examDate := optionalDate(v, "examDate", payload.ExamDate)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	record := core.EmployeeExam{
		CompanyID:  user.CompanyID,
		EmployeeID: payload.EmployeeID,
		ExamID:     payload.ExamID,
		ExamDate:   examDate,
	}
	id, err := h.Service.CreateEmployeeExam(r.Context(), record)
	if err != nil {
		writeStoreError(w, r, err, "create exam record")
		return
	}
	h.created(w, r, user, core.EntityEmployeeExam, id, record)
}

func (h *Handler) deleteHandler(entity, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		id := chi.URLParam(r, param)
		v := shared.NewValidator()
		v.UUID("id", id)
		if v.HasIssues() {
			api.Fail(w, http.StatusNotFound, "not_found", "resource not found", middleware.GetRequestID(r.Context()))
			return
		}
		if err := h.Service.Delete(r.Context(), entity, user.CompanyID, id); err != nil {
			writeStoreError(w, r, err, "delete "+entity)
			return
		}
		shared.Audit(r, h.Audit, user.CompanyID, user.UserID, entity+".delete", entity, id, nil)
		api.Success(w, map[string]string{"id": id, "status": "deleted"}, middleware.GetRequestID(r.Context()))
	}
}
