// internal/services/auth_service.go
package services

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/javajoker/digital-original/internal/config"
	"github.com/javajoker/digital-original/internal/ledger"
	"github.com/javajoker/digital-original/internal/utils"
)

type AuthService struct {
	roles *ledger.RoleBook
	cfg   *config.Config
}

type TokenResponse struct {
	Identity    string   `json:"identity"`
	Roles       []string `json:"roles"`
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int      `json:"expires_in"` // in seconds
}

func NewAuthService(roles *ledger.RoleBook, cfg *config.Config) *AuthService {
	return &AuthService{
		roles: roles,
		cfg:   cfg,
	}
}

// RolesOf lists the roles identity holds right now.
func (s *AuthService) RolesOf(identity common.Address) []string {
	var roles []string
	for _, role := range []ledger.Role{ledger.RoleOperator, ledger.RoleMinter} {
		if s.roles.Has(identity, role) {
			roles = append(roles, string(role))
		}
	}
	return roles
}

// IssueToken signs a caller token. Roles in the token are informational; the
// ledger checks the role book on every call.
func (s *AuthService) IssueToken(identity common.Address) (*TokenResponse, error) {
	roles := s.RolesOf(identity)
	token, err := utils.GenerateJWT(identity, roles, s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{
		Identity:    identity.Hex(),
		Roles:       roles,
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   s.cfg.JWT.AccessTokenTTL * 3600,
	}, nil
}
