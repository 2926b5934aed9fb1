package controllers

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/didierrc/KusiBot/kusibot/config"
	"github.com/didierrc/KusiBot/kusibot/services"
	"github.com/didierrc/KusiBot/kusibot/types"
)

type AuthController struct {
	auth *services.AuthService
	cfg  config.Config
}

func NewAuthController(auth *services.AuthService, cfg config.Config) *AuthController {
	return &AuthController{auth: auth, cfg: cfg}
}

func (c *AuthController) Register(ctx context.Context, req types.RegisterRequest) error {
	_, err := c.auth.Register(ctx, req.Username, req.Email, req.Password, req.IsProfessional)
	return err
}

func (c *AuthController) Login(ctx context.Context, req types.LoginRequest) (string, error) {
	user, err := c.auth.Login(ctx, req.Identifier, req.Password)
	if err != nil {
		return "", err
	}
	claims := jwt.MapClaims{
		"user_id":         user.ID,
		"is_professional": user.IsProfessional,
		"exp":             time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(c.cfg.JWTSecret))
}
