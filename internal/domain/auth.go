package domain

// AuthPayload is the decoded claim set carried by a connect token.
type AuthPayload struct {
	Username   string   `json:"username"`
	Permission []string `json:"permission"`
}
