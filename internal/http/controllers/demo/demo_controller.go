// Package demo contiene endpoints de prueba gated por rol. Sirven para
// verificar de punta a punta el gate de autenticación y la autorización
// por rol sin involucrar datos reales.
package demo

import (
	"fmt"
	"net/http"

	"github.com/dropDatabas3/gatekeeper/internal/http/helpers"
	"github.com/dropDatabas3/gatekeeper/internal/http/middlewares"
)

// Controller responde con el método y el recurso alcanzado; el valor está
// en QUÉ requests llegan hasta acá, no en el cuerpo.
type Controller struct {
	resource string
}

// New crea un controller demo para el recurso dado ("admin", "manager").
func New(resource string) *Controller {
	return &Controller{resource: resource}
}

// Handle responde a cualquier método con una confirmación plana.
func (c *Controller) Handle(w http.ResponseWriter, r *http.Request) {
	id := middlewares.GetIdentity(r.Context())
	email := ""
	if id != nil {
		email = id.Email
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("%s:: %s controller", r.Method, c.resource),
		"email":   email,
	})
}
