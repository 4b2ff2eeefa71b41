package handler

import (
	"github.com/labstack/echo/v4"
	"net/http"
	"promptlib/cmd/internal/contract"
	"promptlib/cmd/internal/utils/apierror"
	"strconv"
)

type PromptService interface {
	GetAllPrompts() ([]*contract.PromptResponse, apierror.ErrorResponse)
	GetPromptByID(promptId int) (*contract.PromptResponse, apierror.ErrorResponse)
	CreatePrompt(req *contract.PromptRequest) (*contract.CreatedResponse, apierror.ErrorResponse)
	UpdatePrompt(promptId int, req *contract.PromptRequest) apierror.ErrorResponse
	DeletePrompt(promptId int) apierror.ErrorResponse
	SetLocked(promptId int, req *contract.LockRequest) apierror.ErrorResponse
}

type DefaultPromptRoute struct {
	PromptService PromptService
}

func NewPromptDefault(promptService PromptService) *DefaultPromptRoute {
	return &DefaultPromptRoute{PromptService: promptService}
}

func (p *DefaultPromptRoute) GetPrompts(c echo.Context) error {
	prompts, err := p.PromptService.GetAllPrompts()
	if err != nil {
		return c.JSON(err.Code(), err)
	}
	return c.JSON(http.StatusOK, prompts)
}

func (p *DefaultPromptRoute) GetPrompt(c echo.Context) error {
	id, apierr := parseID(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	prompt, apierr := p.PromptService.GetPromptByID(id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, prompt)
}

func (p *DefaultPromptRoute) CreatePrompt(c echo.Context) error {
	var req contract.PromptRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	created, apierr := p.PromptService.CreatePrompt(&req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, created)
}

func (p *DefaultPromptRoute) UpdatePrompt(c echo.Context) error {
	id, apierr := parseID(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	var req contract.PromptRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	if apierr := p.PromptService.UpdatePrompt(id, &req); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusNoContent)
}

func (p *DefaultPromptRoute) DeletePrompt(c echo.Context) error {
	id, apierr := parseID(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	if apierr := p.PromptService.DeletePrompt(id); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusNoContent)
}

func (p *DefaultPromptRoute) SetLock(c echo.Context) error {
	id, apierr := parseID(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	var req contract.LockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	if apierr := p.PromptService.SetLocked(id, &req); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusNoContent)
}

func parseID(c echo.Context) (int, apierror.ErrorResponse) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, apierror.NewInvalidParamTypeError("id", "int")
	}

	if id <= 0 {
		return 0, apierror.InvalidIDError
	}
	return id, nil
}
