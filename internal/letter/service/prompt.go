package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/lexdraftlabs/lexdraft/internal/letter/domain"
)

// letterSchema is embedded verbatim in every prompt so the model returns
// one JSON object in a shape the extractor can persist.
const letterSchema = `{"type":"object","required":["schema_version","title","date","content"],"properties":{"schema_version":{"type":"string"},"title":{"type":"string"},"date":{"type":"string","pattern":"^\\d{4}-\\d{2}-\\d{2}$"},"sender_name":{"type":"string"},"sender_address":{"type":"string"},"attorney_name":{"type":"string"},"recipient_name":{"type":"string"},"matter":{"type":"string"},"resolution":{"type":"string"},"jurisdiction":{"type":"string"},"tone":{"type":"string"},"content":{"type":"string"},"summary":{"type":"string"},"action_deadline":{"type":"string"},"tags":{"type":"array","items":{"type":"string"}},"metadata":{"type":"object","properties":{"estimated_read_time_seconds":{"type":"number"},"structured_sections":{"type":"array","items":{"type":"object","properties":{"heading":{"type":"string"},"body":{"type":"string"}}}}}}}}`

const defaultTone = "firm but professional"

func buildPrompt(req domain.GenerateRequest, now time.Time) string {
	tone := strings.TrimSpace(req.Tone)
	if tone == "" {
		tone = defaultTone
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Legal Matter"
	}
	jurisdiction := strings.TrimSpace(req.Jurisdiction)
	if jurisdiction == "" {
		jurisdiction = "General"
	}
	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = now.UTC().Format("2006-01-02")
	}
	notes := strings.TrimSpace(req.ExtraNotes)
	if notes == "" {
		notes = "None"
	}

	systemPrompt := fmt.Sprintf(`You are a professional legal drafting assistant. Produce a single JSON object exactly matching the provided schema. No extra text, no explanation. Tone: %q Use YYYY-MM-DD dates.

JSON Schema: %s

Create a professional legal letter with the following structure:
1. Proper legal letterhead format
2. Date and recipient information
3. Clear statement of the matter
4. Professional but firm tone
5. Specific resolution demands
6. Appropriate legal language and formatting`, tone, letterSchema)

	userPrompt := fmt.Sprintf(`Create a legal letter with these details:
- Title: %s
- Sender: %s
- Sender Address: %s
- Attorney/Firm: %s
- Recipient: %s
- Matter: %s
- Desired Resolution: %s
- Jurisdiction: %s
- Tone: %s
- Date: %s

Additional Notes: %s

Produce the JSON now.`,
		title,
		req.SenderName,
		req.SenderAddress,
		req.AttorneyName,
		req.RecipientName,
		req.Matter,
		req.Resolution,
		jurisdiction,
		tone,
		date,
		notes,
	)

	return systemPrompt + "\n\n" + userPrompt
}
