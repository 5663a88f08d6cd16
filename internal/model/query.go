package model

// StoredQuery is a named saved query. ID is empty for rows written by
// servers that predate query ids; those cannot be deleted.
type StoredQuery struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Query string `json:"query"`
}
