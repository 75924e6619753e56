package handler

import (
	"testing"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/config"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/bitfantasy/nimo-mes/internal/mes/testutil"
	"github.com/bitfantasy/nimo-mes/internal/shared/qrimg"
	"gorm.io/gorm"
)

// newTestHandlers wires the full service/handler stack on a test database.
// The QR renderer runs without redis so no external services are needed.
func newTestHandlers(t *testing.T, db *gorm.DB) *Handlers {
	t.Helper()

	repos := repository.NewRepositories(db)
	renderer := qrimg.NewRenderer(nil)
	jwtCfg := config.JWTConfig{
		Secret:            testutil.JWTSecret,
		AccessTokenExpire: 24 * time.Hour,
		Issuer:            "nimo-mes",
	}
	svc := service.NewServices(repos, db, renderer, jwtCfg)
	return NewHandlers(svc)
}
