package whatsapp

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Content is the closed set of inbound message shapes. Unrecognized carries the
// raw payload of any type this service does not model.
type Content interface {
	// summary returns the extracted text and media reference.
	summary() (text *string, mediaID *string)
}

type Text struct {
	Body *string
}

// Media covers image, audio, video, document and sticker messages.
type Media struct {
	Type     string
	ID       *string
	Caption  *string
	Filename *string
}

type Button struct {
	Text *string
}

type Interactive struct {
	ButtonReplyTitle *string
	ListReplyTitle   *string
}

type Location struct {
	Latitude  *float64
	Longitude *float64
	Name      *string
	Address   *string
}

type Contacts struct {
	FormattedName *string
	FirstName     *string
}

type Unrecognized struct {
	Type string
	Raw  json.RawMessage
}

func (c Text) summary() (*string, *string) { return c.Body, nil }

func (c Media) summary() (*string, *string) {
	switch c.Type {
	case "image", "video":
		return c.Caption, c.ID
	case "document":
		return firstOf(c.Caption, c.Filename), c.ID
	default:
		return nil, c.ID
	}
}

func (c Button) summary() (*string, *string) { return c.Text, nil }

func (c Interactive) summary() (*string, *string) {
	return firstOf(c.ButtonReplyTitle, c.ListReplyTitle, strPtr("[interactive]")), nil
}

func (c Location) summary() (*string, *string) {
	var parts []string
	if c.Name != nil && *c.Name != "" {
		parts = append(parts, *c.Name)
	}
	if c.Address != nil && *c.Address != "" {
		parts = append(parts, *c.Address)
	}
	if c.Latitude != nil && c.Longitude != nil {
		parts = append(parts, formatFloat(*c.Latitude)+","+formatFloat(*c.Longitude))
	}
	if len(parts) == 0 {
		return strPtr("[location]"), nil
	}
	return strPtr(strings.Join(parts, " | ")), nil
}

func (c Contacts) summary() (*string, *string) {
	if name := firstOf(c.FormattedName, c.FirstName); name != nil {
		return strPtr("contacts: " + *name), nil
	}
	return strPtr("contacts"), nil
}

func (c Unrecognized) summary() (*string, *string) {
	return strPtr("[" + c.Type + "]"), nil
}

// Summary is the normalized view of one inbound message.
type Summary struct {
	WaMessageID      string
	FromNumber       *string
	MessageType      string
	TextBody         *string
	MediaID          *string
	MessageTimestamp *time.Time
	Content          Content
}

// Summarize extracts a Summary from a raw message entry. ok is false when the entry
// is not an object or lacks an id or type.
func Summarize(raw json.RawMessage) (Summary, bool) {
	f, ok := objectOf(raw)
	if !ok {
		return Summary{}, false
	}

	id := f.str("id")
	msgType := f.str("type")
	if id == nil || *id == "" || msgType == nil || *msgType == "" {
		return Summary{}, false
	}

	content := contentOf(*msgType, f, raw)
	text, media := content.summary()

	return Summary{
		WaMessageID:      *id,
		FromNumber:       f.str("from"),
		MessageType:      *msgType,
		TextBody:         text,
		MediaID:          media,
		MessageTimestamp: f.unixSeconds("timestamp"),
		Content:          content,
	}, true
}

func contentOf(msgType string, f fields, raw json.RawMessage) Content {
	switch msgType {
	case "text":
		return Text{Body: f.obj("text").str("body")}
	case "image", "audio", "video", "document", "sticker":
		media := f.obj(msgType)
		return Media{
			Type:     msgType,
			ID:       media.str("id"),
			Caption:  media.str("caption"),
			Filename: media.str("filename"),
		}
	case "button":
		return Button{Text: f.obj("button").str("text")}
	case "interactive":
		interactive := f.obj("interactive")
		return Interactive{
			ButtonReplyTitle: interactive.obj("button_reply").str("title"),
			ListReplyTitle:   interactive.obj("list_reply").str("title"),
		}
	case "location":
		loc := f.obj("location")
		out := Location{Name: loc.str("name"), Address: loc.str("address")}
		if lat, ok := loc.num("latitude"); ok {
			out.Latitude = &lat
		}
		if lng, ok := loc.num("longitude"); ok {
			out.Longitude = &lng
		}
		return out
	case "contacts":
		var out Contacts
		if list := f.arr("contacts"); len(list) > 0 {
			first, _ := objectOf(list[0])
			name := first.obj("name")
			out.FormattedName = name.str("formatted_name")
			out.FirstName = name.str("first_name")
		}
		return out
	default:
		return Unrecognized{Type: msgType, Raw: raw}
	}
}

func firstOf(values ...*string) *string {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func strPtr(s string) *string { return &s }

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
