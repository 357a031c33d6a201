package domain

// QueryVariant is one parameterization of a feed query (topic, country, outlet...).
type QueryVariant struct {
	Name    string
	Scanner string
	Params  map[string]string
}

// Param returns a parameter value or fallback when it is absent.
func (q QueryVariant) Param(key, fallback string) string {
	if v, ok := q.Params[key]; ok && v != "" {
		return v
	}
	return fallback
}
