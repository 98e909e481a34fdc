package app

import (
	"database/sql"
	"strings"

	"github.com/mbolis/survey-builder/config"
)

// App is what every handler needs: the database and the configuration.
type App struct {
	*sql.DB
	config.Config
}

// ShareUrl is the public address of the take page for a share token.
func (app App) ShareUrl(token string) string {
	return strings.TrimRight(app.PublicUrl, "/") + "/s/" + token
}
