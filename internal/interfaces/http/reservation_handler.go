package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/clinistock-api/internal/application/dto"
	"github.com/jhoicas/clinistock-api/internal/application/inventory"
)

// ReservationHandler maneja las peticiones HTTP de reservas de material (protegido).
type ReservationHandler struct {
	uc *inventory.ReservationUseCase
}

// NewReservationHandler construye el handler.
func NewReservationHandler(uc *inventory.ReservationUseCase) *ReservationHandler {
	return &ReservationHandler{uc: uc}
}

func toCreateInput(in dto.CreateReservationRequest, actor string) inventory.CreateReservationInput {
	autoSelect := true
	if in.AutoSelect != nil {
		autoSelect = *in.AutoSelect
	}
	return inventory.CreateReservationInput{
		CaseID:           in.CaseID,
		ProductID:        in.ProductID,
		RequestedQty:     in.Quantity,
		LotID:            in.LotID,
		AutoSelect:       autoSelect,
		RequestedLotText: in.RequestedLotText,
		Notes:            in.Notes,
		Actor:            actor,
	}
}

// Create godoc
// @Summary      Crear reserva de material para un caso
// @Description  Toma el hold sobre el lote indicado, o elige lote por FEFO si
//
//	auto_select está activo; sin existencia la reserva queda en backorder.
//
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReservationRequest  true  "case_id, product_id, quantity y opcionalmente lot_id"
// @Success      201   {object}  dto.ReservationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reservations [post]
func (h *ReservationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.uc.Create(c.Context(), toCreateInput(in, GetUserID(c)))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toReservationResponse(res))
}

// CreateBatch godoc
// @Summary      Crear varias reservas para un caso (todo o nada)
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BatchReservationRequest  true  "case_id e items"
// @Success      201   {array}   dto.ReservationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reservations/batch [post]
func (h *ReservationHandler) CreateBatch(c *fiber.Ctx) error {
	var in dto.BatchReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "items vacío"})
	}
	actor := GetUserID(c)
	items := make([]inventory.CreateReservationInput, 0, len(in.Items))
	for _, item := range in.Items {
		items = append(items, toCreateInput(item, actor))
	}
	list, err := h.uc.CreateBatch(c.Context(), in.CaseID, actor, items)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toReservationResponses(list))
}

// GetByID godoc
// @Summary      Obtener reserva por ID
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la reserva"
// @Success      200  {object}  dto.ReservationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id} [get]
func (h *ReservationHandler) GetByID(c *fiber.Ctx) error {
	res, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toReservationResponse(res))
}

// ListByCase godoc
// @Summary      Listar reservas de un caso
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del caso"
// @Success      200  {array}  dto.ReservationResponse
// @Router       /api/cases/{id}/reservations [get]
func (h *ReservationHandler) ListByCase(c *fiber.Ctx) error {
	list, err := h.uc.ListByCase(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toReservationResponses(list))
}

// Confirm godoc
// @Summary      Confirmar reserva (pending -> confirmed)
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la reserva"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id}/confirm [post]
func (h *ReservationHandler) Confirm(c *fiber.Ctx) error {
	if err := h.uc.MarkConfirmed(c.Context(), c.Params("id"), GetUserID(c)); err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "reserva confirmada"})
}

// Prepare godoc
// @Summary      Marcar reserva alistada (confirmed -> prepared)
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la reserva"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id}/prepare [post]
func (h *ReservationHandler) Prepare(c *fiber.Ctx) error {
	if err := h.uc.MarkPrepared(c.Context(), c.Params("id"), GetUserID(c)); err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "reserva alistada"})
}

// Use godoc
// @Summary      Registrar consumo de una reserva
// @Description  Consume del lote la cantidad usada (por defecto la solicitada)
//
//	y libera el remanente del hold si se usó menos.
//
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la reserva"
// @Param        body  body  dto.MarkUsedRequest  false  "used_quantity y evidence_refs opcionales"
// @Success      200   {object}  map[string]string
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reservations/{id}/use [post]
func (h *ReservationHandler) Use(c *fiber.Ctx) error {
	var in dto.MarkUsedRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	if err := h.uc.MarkUsed(c.Context(), c.Params("id"), in.UsedQuantity, in.EvidenceRefs, GetUserID(c)); err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "consumo registrado"})
}

// Cancel godoc
// @Summary      Cancelar reserva y liberar el hold
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la reserva"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id}/cancel [post]
func (h *ReservationHandler) Cancel(c *fiber.Ctx) error {
	if err := h.uc.Cancel(c.Context(), c.Params("id"), GetUserID(c)); err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "reserva cancelada"})
}

// DirectUsage godoc
// @Summary      Registrar uso directo de material (agregado en procedimiento)
// @Description  Crea una reserva que nace consumida: requiere existencia
//
//	inmediata, toma y consume el hold en la misma transacción.
//
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DirectUsageRequest  true  "case_id, product_id, quantity"
// @Success      201   {object}  dto.ReservationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reservations/direct-usage [post]
func (h *ReservationHandler) DirectUsage(c *fiber.Ctx) error {
	var in dto.DirectUsageRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.uc.CreateDirectUsage(c.Context(), inventory.DirectUsageInput{
		CaseID:       in.CaseID,
		ProductID:    in.ProductID,
		Quantity:     in.Quantity,
		LotID:        in.LotID,
		EvidenceRefs: in.EvidenceRefs,
		Notes:        in.Notes,
		Actor:        GetUserID(c),
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toReservationResponse(res))
}
