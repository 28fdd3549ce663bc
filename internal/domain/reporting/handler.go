package reporting

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/apperror"
	"github.com/clinic/clinic/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	reports := api.Group("/reports", auth.RequireRole(auth.RoleAdmin))
	reports.GET("/doctor-summary", h.DoctorSummary)
	reports.GET("/clinic-summary", h.ClinicSummary)
	reports.GET("/doctor-daily-bonus", h.DoctorDailyBonus)

	// Patient-scoped reports back the front-desk screens, so reception reads
	// them too.
	patientReports := api.Group("/reports/patients", auth.RequireRole(auth.RoleAdmin, auth.RoleReception))
	patientReports.GET("/:id/history", h.PatientHistory)
	patientReports.GET("/:id/payments", h.PatientPayments)
}

// filterOptions collects the raw query params; validation happens in
// FromOptions so every report rejects the same typos.
func filterOptions(c echo.Context) map[string]string {
	options := make(map[string]string)
	for key, values := range c.QueryParams() {
		if len(values) > 0 {
			options[key] = values[0]
		}
	}
	return options
}

func patientID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperror.ToHTTP(apperror.Validationf("invalid patient id"))
	}
	return id, nil
}

func (h *Handler) PatientHistory(c echo.Context) error {
	id, err := patientID(c)
	if err != nil {
		return err
	}
	report, err := h.svc.PatientHistory(c.Request().Context(), id, filterOptions(c))
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) PatientPayments(c echo.Context) error {
	id, err := patientID(c)
	if err != nil {
		return err
	}
	report, err := h.svc.PatientPayments(c.Request().Context(), id, filterOptions(c))
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) DoctorSummary(c echo.Context) error {
	report, err := h.svc.DoctorSummary(c.Request().Context(), filterOptions(c))
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) ClinicSummary(c echo.Context) error {
	report, err := h.svc.ClinicSummary(c.Request().Context(), filterOptions(c))
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) DoctorDailyBonus(c echo.Context) error {
	report, err := h.svc.DoctorDailyBonus(c.Request().Context(), filterOptions(c))
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, report)
}
