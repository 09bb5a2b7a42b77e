// Package greeting builds the personalized greeting shown on a guest's
// landing page and the link that carries it.
package greeting

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/viguzmanp/boda-consu-seba/internal/store"
)

const suffix = "cordialmente %s a celebrar con nosotros!"

// Text returns the greeting for name in the grammatical form of t. Unknown
// types fall back to the masculine singular form without a name.
func Text(name string, t store.Type) string {
	name = strings.TrimSpace(name)

	var verb, adjective string
	switch t {
	case store.TypeMale:
		verb, adjective = "estás", "invitado"
	case store.TypeFemale:
		verb, adjective = "estás", "invitada"
	case store.TypeCouple:
		verb, adjective = "están", "invitados"
	default:
		return "¡Estás " + fmt.Sprintf(suffix, "invitado")
	}

	if name == "" {
		return "¡" + strings.ToUpper(verb[:1]) + verb[1:] + " " + fmt.Sprintf(suffix, adjective)
	}
	return fmt.Sprintf("¡%s, %s ", name, verb) + fmt.Sprintf(suffix, adjective)
}

// Link returns baseURL with the name and type query parameters the landing
// page reads. An empty name is omitted.
func Link(baseURL, name string, t store.Type) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("base url %q must be absolute", baseURL)
	}

	q := url.Values{}
	if name = strings.TrimSpace(name); name != "" {
		q.Set("name", name)
	}
	q.Set("type", string(t))
	u.RawQuery = q.Encode()

	return u.String(), nil
}
