// internal/notify/template/resolver.go
package template

import (
	"context"
	"errors"

	"github.com/myster33/edlead-impact-sub001/internal/common/logger"
	"github.com/myster33/edlead-impact-sub001/internal/models"
)

// Resolver loads the active stored template for a triple and falls back to
// the compiled-in default on store miss, inactive row, or store failure.
// Resolve never fails; the fallback chain is the invariant, not an
// exception path.
type Resolver struct {
	store  Store
	logger logger.Logger
}

func NewResolver(store Store, log logger.Logger) *Resolver {
	return &Resolver{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "template-resolver"}),
	}
}

// Resolve returns renderable content for the triple. Worst case it returns
// the compiled-in default, which VerifyDefaults guarantees exists.
func (r *Resolver) Resolve(ctx context.Context, kind models.EventKind, ch Channel, aud Audience) Template {
	key := KeyForEvent(kind)

	if r.store != nil {
		stored, err := r.store.GetTemplate(ctx, key, ch, aud)
		switch {
		case err == nil && stored != nil && stored.Active && stored.Body != "":
			return *stored
		case errors.Is(err, ErrNotFound):
			// No admin override for this triple; the default applies.
		case err != nil:
			r.logger.Warn("template store unavailable, using default", map[string]interface{}{
				"templateKey": key,
				"channel":     string(ch),
				"audience":    string(aud),
				"error":       err.Error(),
			})
		}
	}

	def, ok := DefaultFor(kind, ch, aud)
	if !ok {
		// VerifyDefaults runs at startup, so this is unreachable in a
		// correctly built binary. Return an empty-but-valid template rather
		// than panic inside the fan-out.
		r.logger.Error("no default template for triple", map[string]interface{}{
			"templateKey": key,
			"channel":     string(ch),
			"audience":    string(aud),
		})
		return Template{Key: key, Channel: ch, Audience: aud, Body: "{{name}}: {{reference}} {{status}}", Active: true}
	}
	return def
}
