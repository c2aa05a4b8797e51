package controller

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/meetsik24/Split-Bill-Platform-Backend/bill"
	"github.com/meetsik24/Split-Bill-Platform-Backend/config"
	"github.com/meetsik24/Split-Bill-Platform-Backend/model"
	"github.com/meetsik24/Split-Bill-Platform-Backend/phone"
	"github.com/meetsik24/Split-Bill-Platform-Backend/utils"
)

// BillStore is what the REST surface needs from the bill layer.
type BillStore interface {
	Create(ctx context.Context, creatorPhone string, creatorName string, amount float64, memberPhones []string, description string) (*model.Bill, error)
	MarkPaid(ctx context.Context, billId string, memberPhone string) (bool, error)
	GetById(ctx context.Context, id string) (*model.Bill, error)
	GetByCreatorPhone(ctx context.Context, creatorPhone string) ([]model.Bill, error)
}

type BillController struct {
	Bills BillStore
}

// CreateBill creates a bill over REST. Unlike the USSD flow, which silently
// drops invalid member numbers, the API rejects a request containing any.
func (ctl *BillController) CreateBill(c *fiber.Ctx) error {
	type createBillRequest struct {
		CreatorPhone string   `json:"creator_phone" validate:"required"`
		CreatorName  string   `json:"creator_name" validate:"required"`
		Amount       float64  `json:"amount" validate:"required,gt=0"`
		MemberPhones []string `json:"member_phones" validate:"required,min=1"`
		Description  string   `json:"description"`
	}
	request := createBillRequest{}
	if err := c.BodyParser(&request); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := Validate.Struct(request); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "missing or invalid fields: "+err.Error())
	}
	creatorPhone, err := phone.Normalize(request.CreatorPhone)
	if err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "invalid creator phone number")
	}
	members := make([]string, 0, len(request.MemberPhones))
	for _, raw := range request.MemberPhones {
		normalized, err := phone.Normalize(raw)
		if err != nil {
			return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "invalid member phone number: "+raw)
		}
		members = append(members, normalized)
	}

	created, err := ctl.Bills.Create(c.Context(), creatorPhone, request.CreatorName, request.Amount, members, request.Description)
	if err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "",
			utils.Logger{LogLevel: utils.ERROR, Message: "CreateBill: " + err.Error(), ServiceName: config.ServiceName})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": 201, "message": "bill created", "data": created})
}

func (ctl *BillController) GetBill(c *fiber.Ctx) error {
	found, err := ctl.Bills.GetById(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, bill.ErrNotFound) {
			return utils.JsonErrorResponse(c, fiber.StatusNotFound, "bill not found")
		}
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "",
			utils.Logger{LogLevel: utils.ERROR, Message: "GetBill: " + err.Error(), ServiceName: config.ServiceName})
	}
	return c.JSON(fiber.Map{"status": 200, "data": found})
}

func (ctl *BillController) ListByCreator(c *fiber.Ctx) error {
	creator := c.Query("creator")
	if creator == "" {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "creator query parameter is required")
	}
	creatorPhone, err := phone.Normalize(creator)
	if err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "invalid creator phone number")
	}
	bills, err := ctl.Bills.GetByCreatorPhone(c.Context(), creatorPhone)
	if err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "",
			utils.Logger{LogLevel: utils.ERROR, Message: "ListByCreator: " + err.Error(), ServiceName: config.ServiceName})
	}
	return c.JSON(fiber.Map{"status": 200, "data": bills})
}

func (ctl *BillController) MarkPaid(c *fiber.Ctx) error {
	type markPaidRequest struct {
		Phone string `json:"phone" validate:"required"`
	}
	request := markPaidRequest{}
	if err := c.BodyParser(&request); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := Validate.Struct(request); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "phone is required")
	}
	memberPhone, err := phone.Normalize(request.Phone)
	if err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "invalid phone number")
	}
	flipped, err := ctl.Bills.MarkPaid(c.Context(), c.Params("id"), memberPhone)
	if err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "",
			utils.Logger{LogLevel: utils.ERROR, Message: "MarkPaid: " + err.Error(), ServiceName: config.ServiceName})
	}
	if !flipped {
		return utils.JsonErrorResponse(c, fiber.StatusNotFound, "member not found or already paid")
	}
	return c.JSON(fiber.Map{"status": 200, "message": "payment recorded"})
}
