package services

import (
	"strings"
	"time"

	"github.com/aiguild/guildtracker/internal/config"
	"github.com/aiguild/guildtracker/internal/models"
	"github.com/aiguild/guildtracker/internal/utils"
)

// AuthService checks the single shared admin credential and issues
// expiring tokens. There are no user accounts: the credential lives in
// configuration and the password is stored pre-hashed.
type AuthService struct {
	adminCfg *config.AdminConfig
	jwtCfg   *config.JWTConfig
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{
		adminCfg: &cfg.Admin,
		jwtCfg:   &cfg.JWT,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	Token    string    `json:"token"`
	ExpireAt time.Time `json:"expire_at"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
}

// Login verifies the admin credential. The username comparison is
// case-insensitive; the password is checked against the configured
// bcrypt hash. An empty configured hash fails closed. The error never
// says which part was wrong.
func (s *AuthService) Login(req *LoginRequest) (*LoginResult, error) {
	if s.adminCfg.PasswordHash == "" {
		return nil, models.ErrInvalidCredentials
	}
	if !strings.EqualFold(req.Username, s.adminCfg.Username) {
		return nil, models.ErrInvalidCredentials
	}
	if !utils.CheckPassword(req.Password, s.adminCfg.PasswordHash) {
		return nil, models.ErrInvalidCredentials
	}

	hours := s.jwtCfg.ExpireHour
	if hours <= 0 {
		hours = 24
	}

	username := strings.ToLower(s.adminCfg.Username)
	token, err := utils.GenerateToken(1, username, "admin", hours)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:    token,
		ExpireAt: time.Now().Add(time.Duration(hours) * time.Hour),
		Username: username,
		Role:     "admin",
	}, nil
}
