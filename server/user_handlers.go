package server

import (
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-calendar-gateway/users"
)

const userDeletedMessage = "Usuário deletado com sucesso"

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) ListUsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.services.Users.List(r.Context())
		if err != nil {
			writeFailure(w, "users.List", err)
			return
		}
		if list == nil {
			list = []*users.User{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func (s *Server) CreateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var fields users.Fields
		if err := decodeJSON(r, &fields); err != nil {
			writeInvalidBody(w, err)
			return
		}

		user, err := s.services.Users.Create(r.Context(), fields)
		if err != nil {
			writeFailure(w, "users.Create", err)
			return
		}
		writeJSON(w, http.StatusCreated, user)
	}
}

func (s *Server) UpdateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := userID(r)
		if err != nil {
			writeFailure(w, "users.Update", err)
			return
		}

		var fields users.Fields
		if err := decodeJSON(r, &fields); err != nil {
			writeInvalidBody(w, err)
			return
		}

		user, err := s.services.Users.Update(r.Context(), id, fields)
		if err != nil {
			writeFailure(w, "users.Update", err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func (s *Server) DeleteUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := userID(r)
		if err != nil {
			writeFailure(w, "users.Delete", err)
			return
		}

		if err := s.services.Users.Delete(r.Context(), id); err != nil {
			writeFailure(w, "users.Delete", err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: userDeletedMessage})
	}
}

// userID reads the {id} path segment. A non-numeric id is reported like any other
// store failure.
func userID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
