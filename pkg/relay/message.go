package relay

import (
	"time"

	"github.com/google/uuid"
)

// Message represents a single message flowing through the relay.
// The admission policy reads only the Author and Tags fields.
type Message struct {
	// ID uniquely identifies this message
	ID string

	// Author identifies the message's author (opaque to the policy)
	Author string

	// Tags is an ordered list of generic tags; each tag is an ordered list
	// of string fields. Location tags use the reserved marker "g" as their
	// first field.
	Tags [][]string

	// Content is the raw message body (immutable after creation)
	Content []byte

	// CreatedAt is when this message was created
	CreatedAt time.Time
}

// NewMessage creates a new Message with a generated ID.
// Content and tags are copied to ensure immutability.
func NewMessage(author string, content []byte, tags [][]string) *Message {
	contentCopy := make([]byte, len(content))
	copy(contentCopy, content)

	tagsCopy := make([][]string, len(tags))
	for i, tag := range tags {
		fields := make([]string, len(tag))
		copy(fields, tag)
		tagsCopy[i] = fields
	}

	return &Message{
		ID:        uuid.NewString(),
		Author:    author,
		Tags:      tagsCopy,
		Content:   contentCopy,
		CreatedAt: time.Now().UTC(),
	}
}

// Copy returns a deep copy of the Message.
func (m *Message) Copy() *Message {
	contentCopy := make([]byte, len(m.Content))
	copy(contentCopy, m.Content)

	tagsCopy := make([][]string, len(m.Tags))
	for i, tag := range m.Tags {
		fields := make([]string, len(tag))
		copy(fields, tag)
		tagsCopy[i] = fields
	}

	return &Message{
		ID:        m.ID,
		Author:    m.Author,
		Tags:      tagsCopy,
		Content:   contentCopy,
		CreatedAt: m.CreatedAt,
	}
}
