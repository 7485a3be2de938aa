package users

// User is the only entity of the record store. Field constraints, if any, belong to
// the backend.
type User struct {
	ID    int64  `json:"id"`    // Generated by the backend
	Name  string `json:"name"`  // Full name
	Email string `json:"email"` // Contact address
	Age   int    `json:"age"`
}

// Fields is the writable part of a User, as sent by clients on create and update.
type Fields struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age"`
}

// ToUser copies the writable fields into a new User with the given id.
func (f Fields) ToUser(id int64) *User {
	return &User{ID: id, Name: f.Name, Email: f.Email, Age: f.Age}
}
