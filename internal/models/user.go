package models

// User is a registered account. Users are stored as one JSON collection.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
	DisplayName  string `json:"displayName"`
	AvatarURL    string `json:"avatarUrl"`
}
