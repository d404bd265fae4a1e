package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// NewID returns a fresh 12-byte ObjectID rendered as 24 lowercase hex chars.
// ObjectIDs are time-prefixed, so sorting ids sorts by creation time.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// ParseID validates a client supplied identifier and returns its canonical
// lowercase hex form.
func ParseID(s string) (string, error) {
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return "", &Error{Kind: KindInvalidID, Message: "invalid ID " + s, Err: err}
	}
	return oid.Hex(), nil
}

// AddToSet appends id unless ids already holds it.
func AddToSet(ids []string, id string) []string {
	for _, v := range ids {
		if v == id {
			return ids
		}
	}
	return append(ids, id)
}

// Pull removes every occurrence of id.
func Pull(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Contains reports whether ids holds id.
func Contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
