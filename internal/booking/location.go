package booking

import "booking-widget/internal/calendly"

// LocationKind enumerates the meeting-location kinds the scheduling API is
// known to emit. The wire value stays an open string so new kinds degrade
// to an unstyled label instead of being rejected.
type LocationKind string

const (
	KindAskInvitee     LocationKind = "ask_invitee"
	KindCustom         LocationKind = "custom"
	KindGoogleMeet     LocationKind = "google_conference"
	KindGoToMeeting    LocationKind = "gotomeeting_conference"
	KindInboundCall    LocationKind = "inbound_call"
	KindMicrosoftTeams LocationKind = "microsoft_teams_conference"
	KindOutboundCall   LocationKind = "outbound_call"
	KindPhysical       LocationKind = "physical"
	KindWebex          LocationKind = "webex_conference"
	KindZoom           LocationKind = "zoom_conference"
)

// LocationCategory groups kinds for presentation (icon choice).
type LocationCategory int

const (
	CategoryCustom LocationCategory = iota
	CategoryVideoConference
	CategoryPhone
	CategoryPhysical
	CategoryAskInvitee
)

func (c LocationCategory) String() string {
	switch c {
	case CategoryVideoConference:
		return "video_conference"
	case CategoryPhone:
		return "phone"
	case CategoryPhysical:
		return "physical"
	case CategoryAskInvitee:
		return "ask_invitee"
	default:
		return "custom"
	}
}

// Category classifies a kind. Unknown kinds fall into the custom bucket.
func (k LocationKind) Category() LocationCategory {
	switch k {
	case KindGoogleMeet, KindMicrosoftTeams, KindZoom, KindWebex, KindGoToMeeting:
		return CategoryVideoConference
	case KindInboundCall, KindOutboundCall:
		return CategoryPhone
	case KindPhysical:
		return CategoryPhysical
	case KindAskInvitee:
		return CategoryAskInvitee
	case KindCustom:
		return CategoryCustom
	default:
		return CategoryCustom
	}
}

// LocationDisplayName renders the invitee-facing label for a configured
// location. Unknown kinds render their raw kind string.
func LocationDisplayName(loc calendly.LocationConfiguration) string {
	switch LocationKind(loc.Kind) {
	case KindAskInvitee:
		return "I will provide my location"
	case KindGoogleMeet:
		return "Google Meet"
	case KindGoToMeeting:
		return "GoToMeeting"
	case KindInboundCall:
		return "Phone call (I will call you)"
	case KindMicrosoftTeams:
		return "Microsoft Teams"
	case KindOutboundCall:
		return "Phone call"
	case KindWebex:
		return "Webex"
	case KindZoom:
		return "Zoom"
	case KindCustom:
		if loc.Location != "" {
			return loc.Location
		}
		return "Custom Location"
	case KindPhysical:
		if loc.Location != "" {
			return loc.Location
		}
		return "In-person meeting"
	default:
		return loc.Kind
	}
}

// LocationResolver tracks which of an event type's configured locations is
// active for the current booking attempt. At most one is active.
type LocationResolver struct {
	locations []calendly.LocationConfiguration
	index     int
}

func NewLocationResolver(locations []calendly.LocationConfiguration) *LocationResolver {
	return &LocationResolver{locations: locations}
}

// Select picks the active option by index. Out-of-range selections are
// ignored so a stale widget event cannot wedge the form.
func (r *LocationResolver) Select(i int) {
	if i >= 0 && i < len(r.locations) {
		r.index = i
	}
}

func (r *LocationResolver) SelectedIndex() int { return r.index }

// Active returns the active option, or nil when none are configured.
func (r *LocationResolver) Active() *calendly.LocationConfiguration {
	if len(r.locations) == 0 {
		return nil
	}
	return &r.locations[r.index]
}

func (r *LocationResolver) Options() []calendly.LocationConfiguration { return r.locations }

// HasMultiple reports whether a location choice should be offered at all.
func (r *LocationResolver) HasMultiple() bool { return len(r.locations) > 1 }

// RequiresPhoneNumber reports whether the active option needs an
// invitee-supplied phone number (the host calls the invitee).
func (r *LocationResolver) RequiresPhoneNumber() bool {
	loc := r.Active()
	return loc != nil && LocationKind(loc.Kind) == KindOutboundCall
}

// RequiresInviteeLocation reports whether the active option needs an
// invitee-supplied free-text location.
func (r *LocationResolver) RequiresInviteeLocation() bool {
	loc := r.Active()
	return loc != nil && LocationKind(loc.Kind) == KindAskInvitee
}
