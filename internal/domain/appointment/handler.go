package appointment

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/apperror"
	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	desk := api.Group("", auth.RequireRole(auth.RoleReception))
	desk.POST("/appointments", h.Book)
	desk.POST("/appointments/:id/payment", h.CapturePayment)
	desk.POST("/appointments/:id/release", h.Release)
	desk.POST("/appointments/:id/cancel", h.Cancel)
	desk.PUT("/appointments/:id/discount", h.UpdateDiscount)
	desk.POST("/patients/:id/appointments/delete", h.BulkDelete)

	api.GET("/appointments", h.List)
	api.GET("/appointments/:id", h.Get)
	api.GET("/patients/:id/appointments", h.ListByPatient)
	api.GET("/patients/:id/status-counts", h.StatusCounts)
	api.GET("/doctors/:id/appointments", h.DoctorDay)
	api.GET("/doctors/:id/calendar", h.DoctorCalendar)
	api.GET("/schedules/:id", h.GetSchedule)

	clinicians := api.Group("", auth.RequireRole(auth.RoleDoctor, auth.RoleReception))
	clinicians.POST("/patients/:id/history", h.AddHistory)
	clinicians.POST("/schedules", h.CreateSchedule)
	clinicians.PUT("/schedules/:id", h.UpdateSchedule)
	clinicians.DELETE("/schedules/:id", h.DeleteSchedule)
	api.GET("/patients/:id/history", h.PatientHistory)
}

type bookRequest struct {
	PatientID int64  `json:"patient_id"`
	DoctorID  int64  `json:"doctor_id"`
	ServiceID int64  `json:"service_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	Discount  *int   `json:"discount"`
}

func (h *Handler) Book(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	rec, err := h.svc.Book(c.Request().Context(), BookInput{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		ServiceID: req.ServiceID,
		Date:      date,
		StartTime: req.StartTime,
		Discount:  req.Discount,
	})
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, rec)
}

type paymentRequest struct {
	Method string `json:"method"`
}

func (h *Handler) CapturePayment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req paymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.svc.CapturePayment(c.Request().Context(), id, req.Method)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Release(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rec, err := h.svc.Release(c.Request().Context(), id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rec, err := h.svc.Cancel(c.Request().Context(), id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, rec)
}

type discountRequest struct {
	Discount *int `json:"discount"`
}

func (h *Handler) UpdateDiscount(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req discountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.svc.UpdateDiscount(c.Request().Context(), id, req.Discount)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rec, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) List(c echo.Context) error {
	var q ListQuery
	if raw := c.QueryParam("doctor_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "doctor_id must be an integer")
		}
		q.DoctorID = id
	}
	if raw := c.QueryParam("department_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "department_id must be an integer")
		}
		q.DepartmentID = id
	}
	if raw := c.QueryParam("date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		q.Date = &date
	}
	q.Status = Status(c.QueryParam("status"))

	p := pagination.FromContext(c)
	records, total, err := h.svc.List(c.Request().Context(), q, p.Limit, p.Offset)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	if records == nil {
		records = []Record{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(records, total, p.Limit, p.Offset))
}

func (h *Handler) ListByPatient(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	records, err := h.svc.ListByPatient(c.Request().Context(), id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, records)
}

func (h *Handler) StatusCounts(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	counts, err := h.svc.StatusCounts(c.Request().Context(), id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, counts)
}

func (h *Handler) DoctorDay(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	date, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	records, err := h.svc.DoctorDay(c.Request().Context(), id, date)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, records)
}

type scheduleRequest struct {
	DoctorID  int64  `json:"doctor_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Available bool   `json:"available"`
}

func (r scheduleRequest) toInput() (ScheduleInput, error) {
	date, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return ScheduleInput{}, echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	return ScheduleInput{
		DoctorID:  r.DoctorID,
		Date:      date,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Available: r.Available,
	}, nil
}

func (h *Handler) CreateSchedule(c echo.Context) error {
	var req scheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in, err := req.toInput()
	if err != nil {
		return err
	}
	sch, err := h.svc.CreateSchedule(c.Request().Context(), in)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, sch)
}

func (h *Handler) UpdateSchedule(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req scheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in, err := req.toInput()
	if err != nil {
		return err
	}
	sch, err := h.svc.UpdateSchedule(c.Request().Context(), id, in)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, sch)
}

func (h *Handler) GetSchedule(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	sch, err := h.svc.GetSchedule(c.Request().Context(), id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, sch)
}

func (h *Handler) DeleteSchedule(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteSchedule(c.Request().Context(), id); err != nil {
		return apperror.ToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DoctorCalendar(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	from, err := time.Parse("2006-01-02", c.QueryParam("from"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "from must be YYYY-MM-DD")
	}
	to := from
	if raw := c.QueryParam("to"); raw != "" {
		to, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "to must be YYYY-MM-DD")
		}
	}
	schedules, err := h.svc.DoctorCalendar(c.Request().Context(), id, from, to)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, schedules)
}

type bulkDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

func (h *Handler) BulkDelete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req bulkDeleteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.BulkDelete(c.Request().Context(), id, req.IDs); err != nil {
		return apperror.ToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) AddHistory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var rec HistoryRecord
	if err := c.Bind(&rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec.PatientID = id
	if err := h.svc.AddHistory(c.Request().Context(), &rec); err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, rec)
}

type historyResponse struct {
	Records []HistoryRecord `json:"records"`
	Total   int             `json:"total"`
	Visited int             `json:"visited"`
}

func (h *Handler) PatientHistory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	records, err := h.svc.PatientHistory(c.Request().Context(), id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	if records == nil {
		records = []HistoryRecord{}
	}
	resp := historyResponse{Records: records, Total: len(records)}
	for _, rec := range records {
		if rec.Outcome == OutcomeVisited {
			resp.Visited++
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func pathID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
