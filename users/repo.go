package users

import "context"

// UserRepo is the record store gateway. Update and Delete return an error wrapping
// errors.ErrNotFound for an unknown id.
type UserRepo interface {
	List(ctx context.Context) ([]*User, error)
	Create(ctx context.Context, fields Fields) (*User, error)
	Update(ctx context.Context, id int64, fields Fields) (*User, error)
	Delete(ctx context.Context, id int64) error
}
