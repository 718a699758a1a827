package domain

import "encoding/json"

// Output contract tags. An AssistantConfig referencing one of these declares
// that the specialist's final answer is a structured record of that shape.
// The field layouts are data as far as orchestration is concerned; they are
// typed here so clients get a stable decode target.
const (
	ContractGmail    = "gmail"
	ContractCalendar = "calendar"
	ContractSlack    = "slack"
	ContractNotion   = "notion"
	ContractWhatsapp = "whatsapp"
)

// Gmail specialist output.

type GmailResponseType string

const (
	GmailDraftForApproval GmailResponseType = "draft_mail_for_approval"
	GmailEmailSummary     GmailResponseType = "email_summary"
	GmailOther            GmailResponseType = "other"
)

type EmailSummary struct {
	Summary   string `json:"summary"`
	Subject   string `json:"subject"`
	FromEmail string `json:"from_email"`
}

type DraftMail struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

type GmailOutput struct {
	ResponseType   GmailResponseType `json:"response_type"`
	EmailSummaries []EmailSummary    `json:"email_summaries,omitempty"`
	Draft          *DraftMail        `json:"draft_mail_for_approval,omitempty"`
	Other          string            `json:"other,omitempty"`
}

// Calendar specialist output.

type CalendarResponseType string

const (
	CalendarCreateEvent  CalendarResponseType = "create_event"
	CalendarEventSummary CalendarResponseType = "event_summary"
	CalendarOther        CalendarResponseType = "other"
)

type CalendarEvent struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	MeetingLink string `json:"meeting_link,omitempty"`
}

type CalendarOutput struct {
	ResponseType CalendarResponseType `json:"response_type"`
	CreateEvent  *CalendarEvent       `json:"create_event,omitempty"`
	EventSummary []CalendarEvent      `json:"event_summary,omitempty"`
	Other        string               `json:"other,omitempty"`
}

// Slack specialist output.

type SlackResponseType string

const (
	SlackDraftApproval SlackResponseType = "draft_message_approval"
	SlackOther         SlackResponseType = "other"
)

type SlackDraft struct {
	Message string `json:"message"`
	Channel string `json:"channel"`
}

type SlackOutput struct {
	ResponseType SlackResponseType `json:"response_type"`
	Draft        *SlackDraft       `json:"draft,omitempty"`
	Other        string            `json:"other,omitempty"`
}

// Notion specialist output.

type NotionOutput struct {
	ResponseType   string `json:"response_type"`
	NotionResponse string `json:"notion_response"`
	LinkToDocument string `json:"link_to_document,omitempty"`
}

// Whatsapp specialist output.

type WhatsappOutput struct {
	ResponseType     string `json:"response_type"`
	WhatsappResponse string `json:"whatsapp_response"`
}

// contractSchemas maps contract tags to their JSON Schemas. Validation
// against these happens in the orchestrator; the schemas themselves are
// static data shared read-only across requests.
var contractSchemas = map[string]json.RawMessage{
	ContractGmail: json.RawMessage(`{
		"type": "object",
		"properties": {
			"response_type": {"enum": ["draft_mail_for_approval", "email_summary", "other"]},
			"email_summaries": {"type": "array", "items": {
				"type": "object",
				"properties": {
					"summary": {"type": "string"},
					"subject": {"type": "string"},
					"from_email": {"type": "string"}
				},
				"required": ["summary", "subject", "from_email"]
			}},
			"draft_mail_for_approval": {
				"type": "object",
				"properties": {
					"to": {"type": "array", "items": {"type": "string"}},
					"subject": {"type": "string"},
					"body": {"type": "string"}
				},
				"required": ["to", "subject", "body"]
			},
			"other": {"type": "string"}
		},
		"required": ["response_type"]
	}`),
	ContractCalendar: json.RawMessage(`{
		"type": "object",
		"properties": {
			"response_type": {"enum": ["create_event", "event_summary", "other"]},
			"create_event": {"$ref": "#/$defs/event"},
			"event_summary": {"type": "array", "items": {"$ref": "#/$defs/event"}},
			"other": {"type": "string"}
		},
		"required": ["response_type"],
		"$defs": {
			"event": {
				"type": "object",
				"properties": {
					"title": {"type": "string"},
					"description": {"type": "string"},
					"start_date": {"type": "string"},
					"end_date": {"type": "string"},
					"meeting_link": {"type": "string"}
				},
				"required": ["title", "description", "start_date", "end_date"]
			}
		}
	}`),
	ContractSlack: json.RawMessage(`{
		"type": "object",
		"properties": {
			"response_type": {"enum": ["draft_message_approval", "other"]},
			"draft": {
				"type": "object",
				"properties": {
					"message": {"type": "string"},
					"channel": {"type": "string"}
				},
				"required": ["message", "channel"]
			},
			"other": {"type": "string"}
		},
		"required": ["response_type"]
	}`),
	ContractNotion: json.RawMessage(`{
		"type": "object",
		"properties": {
			"response_type": {"const": "notion_response"},
			"notion_response": {"type": "string"},
			"link_to_document": {"type": "string"}
		},
		"required": ["response_type", "notion_response"]
	}`),
	ContractWhatsapp: json.RawMessage(`{
		"type": "object",
		"properties": {
			"response_type": {"const": "whatsapp_response"},
			"whatsapp_response": {"type": "string"}
		},
		"required": ["response_type", "whatsapp_response"]
	}`),
}

// ContractSchema returns the JSON Schema for a contract tag.
func ContractSchema(tag string) (json.RawMessage, bool) {
	s, ok := contractSchemas[tag]
	return s, ok
}

// KnownContract reports whether tag names a registered output contract.
func KnownContract(tag string) bool {
	_, ok := contractSchemas[tag]
	return ok
}
