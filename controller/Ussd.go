package controller

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/meetsik24/Split-Bill-Platform-Backend/config"
	"github.com/meetsik24/Split-Bill-Platform-Backend/session"
	"github.com/meetsik24/Split-Bill-Platform-Backend/ussd"
	"github.com/meetsik24/Split-Bill-Platform-Backend/utils"
)

var Validate = validator.New()

func ServiceStatusCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": 200, "message": "Welcome to the BillSplit USSD API service. This service is running!"})
}

type USSDController struct {
	Engine   *ussd.Engine
	Sessions session.Store
}

// gateways deliver turns as GET query strings or POST form bodies
func turnParam(c *fiber.Ctx, name string) string {
	if value := c.Query(name); value != "" {
		return value
	}
	return c.FormValue(name)
}

// Webhook handles one USSD turn. Input validation failures are answered on
// the USSD channel itself, never as HTTP errors. A malformed request is
// rejected before the engine runs and never touches stored session state;
// any in-flight dialogue for that id stays put until its TTL reaps it.
func (ctl *USSDController) Webhook(c *fiber.Ctx) error {
	type turnRequest struct {
		SessionId   string `validate:"required"`
		ServiceCode string `validate:"required"`
		PhoneNumber string `validate:"required"`
		Text        string
	}
	request := turnRequest{
		SessionId:   turnParam(c, "sessionId"),
		ServiceCode: turnParam(c, "serviceCode"),
		PhoneNumber: turnParam(c, "phoneNumber"),
		Text:        turnParam(c, "text"),
	}
	if err := Validate.Struct(request); err != nil {
		return utils.USSDResponse(c, request.SessionId, request.ServiceCode, "END", "Invalid request data, missing required fields")
	}
	message, end, err := ctl.Engine.ProcessTurn(c.Context(), request.SessionId, request.PhoneNumber, request.Text)
	if err != nil {
		utils.LogMessage("error", fmt.Sprintf("USSD turn failed: %v", err), config.ServiceName)
	}
	status := "CON"
	if end {
		status = "END"
	}
	return utils.USSDResponse(c, request.SessionId, request.ServiceCode, status, message)
}

// Diagnostic surface, wired only in development mode.

func (ctl *USSDController) GetSession(c *fiber.Ctx) error {
	sess, err := ctl.Sessions.Get(c.Params("id"))
	if err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "",
			utils.Logger{LogLevel: utils.ERROR, Message: "GetSession: " + err.Error(), ServiceName: config.ServiceName})
	}
	if sess == nil {
		return utils.JsonErrorResponse(c, fiber.StatusNotFound, "session not found")
	}
	return c.JSON(fiber.Map{"status": 200, "data": sess})
}

func (ctl *USSDController) SessionCount(c *fiber.Ctx) error {
	count, err := ctl.Sessions.Count()
	if err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "",
			utils.Logger{LogLevel: utils.ERROR, Message: "SessionCount: " + err.Error(), ServiceName: config.ServiceName})
	}
	return c.JSON(fiber.Map{"status": 200, "data": fiber.Map{"count": count}})
}

func (ctl *USSDController) ClearSessions(c *fiber.Ctx) error {
	if err := ctl.Sessions.Clear(); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "",
			utils.Logger{LogLevel: utils.ERROR, Message: "ClearSessions: " + err.Error(), ServiceName: config.ServiceName})
	}
	return c.JSON(fiber.Map{"status": 200, "message": "sessions cleared"})
}
