package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/auth"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/config"
)

// Service is the interface for a web handler service.
type Service interface {
	Init(router fiber.Router, cfg *config.Config, authService *auth.Service) error
}
