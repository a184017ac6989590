package model

// Data is the persisted snapshot of projects and tasks across all scopes.
type Data struct {
	Projects []Project `json:"projects"`
	Tasks    []Task    `json:"tasks"`
}

// Accounts is the persisted snapshot of registered users and their
// session credentials.
type Accounts struct {
	Users         []User         `json:"users"`
	RefreshTokens []RefreshToken `json:"refreshTokens"`
}
