// sentiric-contact-resolver/internal/logger/events.go
package logger

// SUTS v4.0 Standard Event IDs for contact-resolver
const (
	EventSystemStartup      = "SYSTEM_STARTUP"
	EventSystemShutdown     = "SYSTEM_SHUTDOWN"
	EventHttpRequest        = "HTTP_REQUEST_RECEIVED"
	EventContactLookup      = "CONTACT_LOOKUP"
	EventContactLookupFail  = "CONTACT_LOOKUP_FAILED"
	EventContactFallback    = "CONTACT_LOOKUP_FALLBACK"
	EventDirectoryQueryFail = "DIRECTORY_QUERY_FAILED"
	EventDirectoryMissing   = "DIRECTORY_UNAVAILABLE"
	EventParticipantName    = "PARTICIPANT_NAME_RESOLVED"
	EventCacheFailure       = "DIRECTORY_CACHE_FAILURE"
)
