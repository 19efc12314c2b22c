package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/clinistock-api/internal/application/dto"
	"github.com/jhoicas/clinistock-api/internal/application/inventory"
)

// CaseHandler maneja las peticiones HTTP de casos clínicos (protegido).
type CaseHandler struct {
	uc      *inventory.CaseUseCase
	closeUC *inventory.CloseCaseUseCase
}

// NewCaseHandler construye el handler.
func NewCaseHandler(uc *inventory.CaseUseCase, closeUC *inventory.CloseCaseUseCase) *CaseHandler {
	return &CaseHandler{uc: uc, closeUC: closeUC}
}

// Create godoc
// @Summary      Crear caso clínico
// @Tags         cases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCaseRequest  true  "Datos del caso"
// @Success      201   {object}  dto.CaseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/cases [post]
func (h *CaseHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCaseRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	created, err := h.uc.Create(c.Context(), inventory.CreateCaseInput{
		PatientRef:  in.PatientRef,
		Description: in.Description,
		ScheduledAt: in.ScheduledAt,
		Notes:       in.Notes,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toCaseResponse(created))
}

// GetByID godoc
// @Summary      Obtener caso por ID
// @Tags         cases
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del caso"
// @Success      200  {object}  dto.CaseResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cases/{id} [get]
func (h *CaseHandler) GetByID(c *fiber.Ctx) error {
	found, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toCaseResponse(found))
}

// Readiness godoc
// @Summary      Estado de preparación del caso
// @Description  Devuelve el estado cacheado; con recompute=true lo recalcula
//
//	desde las reservas dentro de una transacción.
//
// @Tags         cases
// @Security     Bearer
// @Produce      json
// @Param        id         path   string  true   "ID del caso"
// @Param        recompute  query  bool    false  "Recalcular desde las reservas"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cases/{id}/readiness [get]
func (h *CaseHandler) Readiness(c *fiber.Ctx) error {
	recompute := c.QueryBool("recompute", false)
	readiness, err := h.uc.Readiness(c.Context(), c.Params("id"), recompute)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"case_id": c.Params("id"), "readiness": readiness})
}

// Close godoc
// @Summary      Cerrar caso
// @Description  Libera los holds no consumidos, cancela las reservas activas y
//
//	deja el acta de cierre con líneas usadas y liberadas.
//
// @Tags         cases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true   "ID del caso"
// @Param        body  body  dto.CloseCaseRequest  false  "Notas de cierre"
// @Success      200   {object}  dto.CaseClosureResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cases/{id}/close [post]
func (h *CaseHandler) Close(c *fiber.Ctx) error {
	var in dto.CloseCaseRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	closure, err := h.closeUC.Close(c.Context(), c.Params("id"), in.Notes, GetUserID(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toCaseClosureResponse(closure))
}

// GetClosure godoc
// @Summary      Obtener acta de cierre de un caso
// @Tags         cases
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del caso"
// @Success      200  {object}  dto.CaseClosureResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cases/{id}/closure [get]
func (h *CaseHandler) GetClosure(c *fiber.Ctx) error {
	closure, err := h.closeUC.GetClosure(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toCaseClosureResponse(closure))
}
