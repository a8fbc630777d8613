package chi

import (
	"fmt"
	"net/http"
	"strings"

	gochi "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/shortlist/internal/domain"
)

// pathID binds the {id} path parameter.
func pathID(r *http.Request) (string, error) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", gochi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath})
	if err != nil {
		return "", fmt.Errorf("%w: invalid format for parameter id: %w", domain.ErrInvalidRequest, err)
	}
	if strings.TrimSpace(id) == "" {
		return "", fmt.Errorf("%w: candidate id is required", domain.ErrInvalidRequest)
	}
	return id, nil
}

// queryParam binds an optional form-style query parameter into dest,
// leaving dest untouched when the parameter is absent.
func queryParam(r *http.Request, name string, dest any) error {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		return fmt.Errorf("%w: invalid format for parameter %s: %w", domain.ErrInvalidRequest, name, err)
	}
	return nil
}
