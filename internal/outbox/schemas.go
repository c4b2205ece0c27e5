package outbox

import "example.com/octofit/internal/events"

const userUpdatedSchema = `{
  "type": "object",
  "title": "UserUpdated",
  "properties": {
    "event_id": {"type": "string"},
    "user_id": {"type": "string"},
    "name": {"type": "string"},
    "email": {"type": "string"},
    "team": {"type": "string"},
    "updated_by": {"type": "string"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["event_id", "user_id", "name", "email", "team", "occurred_at"],
  "additionalProperties": false
}`

// SchemaCatalogEntry maps an event type to its JSON schema.
type SchemaCatalogEntry struct {
	Schema string
}

var schemaCatalog = map[string]SchemaCatalogEntry{
	events.UserUpdatedType: {Schema: userUpdatedSchema},
}
