package handlers

import (
	_ "embed"
	"html/template"
	"net/http"

	"keijiban/config"

	"github.com/gin-gonic/gin"
)

//go:embed templates/kanri.html.tmpl
var kanriTemplate string

// KanriTemplate parses the admin page for router.SetHTMLTemplate.
func KanriTemplate() *template.Template {
	return template.Must(template.New("kanri").Parse(kanriTemplate))
}

// KanriPage handles GET /kanri. The page adapts to the configured
// authorization mode: login form in role mode, key prompt in key mode.
func (h *Handler) KanriPage(c *gin.Context) {
	c.HTML(http.StatusOK, "kanri", gin.H{
		"KeyMode": h.Cfg.AuthMode == config.AuthModeKey,
	})
}
