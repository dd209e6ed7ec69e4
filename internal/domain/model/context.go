// File: internal/domain/model/context.go
package model

// Field names used as ConversationContext keys. The caller echoes the whole
// map back each turn, so these names are part of the wire contract.
const (
	FieldSellerID    = "sellerId"
	FieldLanguage    = "language"
	FieldStoreName   = "storeName"
	FieldStoreSlug   = "storeSlug"
	FieldCategory    = "category"
	FieldDescription = "description"
	FieldPhone       = "phone"
)

// ConversationContext is the caller-echoed accumulation of validated
// answers. It is the entire state of a conversation; the server keeps
// nothing between turns.
type ConversationContext map[string]string

// Clone returns an independent copy. Transitions never mutate the input
// context so a failed validation leaves the caller's state untouched.
func (c ConversationContext) Clone() ConversationContext {
	out := make(ConversationContext, len(c)+1)
	for k, v := range c {
		out[k] = v
	}
	return out
}

// With returns a copy of the context with one field set.
func (c ConversationContext) With(key, value string) ConversationContext {
	out := c.Clone()
	out[key] = value
	return out
}

// Get returns the value for key, or "" when absent.
func (c ConversationContext) Get(key string) string {
	if c == nil {
		return ""
	}
	return c[key]
}
