package resolver

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/sentiric/sentiric-contact-resolver/internal/l10n"
	"github.com/sentiric/sentiric-contact-resolver/internal/logger"
)

// guestDisplayName is the placeholder clients send for anonymous participants.
const guestDisplayName = "Guest"

// Name sources, used as metric labels.
const (
	nameSourceGuest     = "guest"
	nameSourceDisplay   = "display_name"
	nameSourceDirectory = "directory"
	nameSourceFallback  = "fallback"
)

// Participant is a call or room member as reported by the signalling layer.
type Participant struct {
	DisplayName string `json:"display_name,omitempty"`
	Account     string `json:"account,omitempty"`
}

// ParticipantName returns the name to show for p. It never fails: when the
// account cannot be resolved the participant's own display name is used, and
// a missing or "Guest" display name becomes the localized guest label.
//
// There is no deadline of its own; ctx bounds the directory lookup.
func (r *Resolver) ParticipantName(ctx context.Context, p Participant, loc l10n.Localizer) string {
	name, source := p.DisplayName, nameSourceDisplay
	if name == "" || name == guestDisplayName {
		name, source = guestTitle(loc), nameSourceGuest
	}

	if p.Account != "" {
		res, err := r.Find(ctx, ByIdentities(p.Account))
		if err == nil {
			if v, ok := PrimaryInfo(res.First()); ok {
				name, source = v, nameSourceDirectory
			}
		} else if source == nameSourceDisplay {
			source = nameSourceFallback
		}
	}

	if r.metrics != nil {
		r.metrics.IncrementParticipantNames(source)
	}
	l := logger.ContextLogger(ctx, r.log)
	l.Debug().
		Str("event", logger.EventParticipantName).
		Dict("attributes", zerolog.Dict().
			Str("source", source).
			Bool("has_account", p.Account != "")).
		Msg("Participant name resolved")
	return name
}

func guestTitle(loc l10n.Localizer) string {
	if loc == nil {
		return guestDisplayName
	}
	return loc.Get(l10n.KeyGuestTitle)
}
