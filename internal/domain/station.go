package domain

// Station is a schemaless radio station document. The caller-supplied "id"
// field is the upsert key; "_id" belongs to the database.
type Station map[string]interface{}

const (
	StationKeyField = "id"
	objectIDField   = "_id"
)

// Key returns the caller-supplied id, if any. Only scalar ids count: an object
// or array would reach the Mongo filter as a query expression.
func (s Station) Key() (interface{}, bool) {
	switch v := s[StationKeyField].(type) {
	case nil, map[string]interface{}, Station, []interface{}:
		return nil, false
	case string:
		if v == "" {
			return nil, false
		}
		return v, true
	default:
		return v, true
	}
}

// Fields returns a copy of the document without the database _id, suitable for $set.
func (s Station) Fields() Station {
	out := make(Station, len(s))
	for k, v := range s {
		if k == objectIDField {
			continue
		}
		out[k] = v
	}
	return out
}
