package component

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/crm/internal/config"
	"github.com/yanizio/crm/internal/form"
)

// Deps exposes shared resources to Components during Init.
type Deps struct {
	DB     *sqlx.DB
	Log    *zap.SugaredLogger
	Config *config.Config
	Tokens *form.Tokens
}
