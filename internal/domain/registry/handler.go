package registry

import (
	"net/http"
	"strconv"

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
	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/departments", h.CreateDepartment)
	admin.PUT("/departments/:id", h.RenameDepartment)
	admin.DELETE("/departments/:id", h.DeleteDepartment)
	admin.POST("/services", h.CreateService)
	admin.PUT("/services/:id", h.UpdateService)

	api.GET("/departments", h.ListDepartments)
	api.GET("/departments/:id", h.GetDepartment)
	api.GET("/services", h.ListServices)
	api.GET("/services/:id", h.GetService)
	api.GET("/price-list", h.PriceList)
}

func pathID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

type departmentRequest struct {
	Name string `json:"name"`
}

func (h *Handler) CreateDepartment(c echo.Context) error {
	var req departmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.CreateDepartment(c.Request().Context(), req.Name)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) RenameDepartment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req departmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.RenameDepartment(c.Request().Context(), id, req.Name)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) DeleteDepartment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteDepartment(c.Request().Context(), id); err != nil {
		return apperror.ToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetDepartment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	d, err := h.svc.GetDepartment(c.Request().Context(), id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListDepartments(c echo.Context) error {
	departments, err := h.svc.ListDepartments(c.Request().Context())
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, departments)
}

func (h *Handler) CreateService(c echo.Context) error {
	var ms MedicalService
	if err := c.Bind(&ms); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateService(c.Request().Context(), &ms); err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, ms)
}

func (h *Handler) UpdateService(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var ms MedicalService
	if err := c.Bind(&ms); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ms.ID = id
	if err := h.svc.UpdateService(c.Request().Context(), &ms); err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, ms)
}

func (h *Handler) GetService(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ms, err := h.svc.GetService(c.Request().Context(), id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, ms)
}

func (h *Handler) ListServices(c echo.Context) error {
	p := pagination.FromContext(c)
	departmentID, _ := strconv.ParseInt(c.QueryParam("department_id"), 10, 64)

	services, total, err := h.svc.ListServices(c.Request().Context(), departmentID, p.Limit, p.Offset)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(services, total, p.Limit, p.Offset))
}

func (h *Handler) PriceList(c echo.Context) error {
	entries, err := h.svc.PriceList(c.Request().Context())
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, entries)
}
