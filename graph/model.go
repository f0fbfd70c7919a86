// Package graph exposes users and posts over GraphQL.
package graph

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/satishbabariya/pgql/query/executor"
	"github.com/satishbabariya/pgql/query/filter"
	"github.com/satishbabariya/pgql/runtime/types"
)

// Users is the filter metadata of the users table. Field order fixes the order
// of compiled conditions.
var Users = &filter.Entity{
	Name:  "User",
	Table: "users",
	Fields: []filter.Field{
		{Name: "id", Column: "id", Kind: filter.KindInt},
		{Name: "name", Column: "name", Kind: filter.KindString},
		{Name: "age", Column: "age", Kind: filter.KindInt},
		{Name: "email", Column: "email", Kind: filter.KindString},
		{Name: "phone", Column: "phone", Kind: filter.KindString},
	},
}

// Posts is the filter metadata of the posts table.
var Posts = &filter.Entity{
	Name:  "Post",
	Table: "posts",
	Fields: []filter.Field{
		{Name: "id", Column: "id", Kind: filter.KindInt},
		{Name: "userId", Column: "user_id", Kind: filter.KindInt},
		{Name: "title", Column: "title", Kind: filter.KindString},
		{Name: "content", Column: "content", Kind: filter.KindString},
	},
}

// Entities lists every filterable entity.
var Entities = []*filter.Entity{Users, Posts}

// EntityByName finds an entity by name or table, case-insensitively.
func EntityByName(name string) (*filter.Entity, error) {
	for _, e := range Entities {
		if strings.EqualFold(e.Name, name) || strings.EqualFold(e.Table, name) {
			return e, nil
		}
	}
	return nil, fmt.Errorf("unknown entity %q", name)
}

var (
	userColumns = []string{"id", "name", "age", "email", "phone", "created_at", "updated_at"}
	postColumns = []string{"id", "user_id", "title", "content", "created_at", "updated_at"}
)

// User is a row of the users table
type User struct {
	ID        int32      `json:"id"`
	Name      *string    `json:"name"`
	Age       *int32     `json:"age"`
	Email     *string    `json:"email"`
	Phone     *string    `json:"phone"`
	CreatedAt *time.Time `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

// Post is a row of the posts table
type Post struct {
	ID        int32      `json:"id"`
	UserID    *int32     `json:"userId"`
	Title     *string    `json:"title"`
	Content   *string    `json:"content"`
	CreatedAt *time.Time `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

// Connection is one page of a list query
type Connection[T any] struct {
	Data       []T   `json:"data"`
	TotalCount int64 `json:"totalCount"`
}

func scanUser(row executor.RowScanner) (*User, error) {
	var (
		u                    User
		name, email, phone   sql.NullString
		age                  sql.NullInt32
		createdAt, updatedAt types.NullTime
	)
	if err := row.Scan(&u.ID, &name, &age, &email, &phone, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	u.Name = nullString(name)
	u.Age = nullInt32(age)
	u.Email = nullString(email)
	u.Phone = nullString(phone)
	u.CreatedAt = createdAt.Ptr()
	u.UpdatedAt = updatedAt.Ptr()
	return &u, nil
}

func scanPost(row executor.RowScanner) (*Post, error) {
	var (
		p                    Post
		userID               sql.NullInt32
		title, content       sql.NullString
		createdAt, updatedAt types.NullTime
	)
	if err := row.Scan(&p.ID, &userID, &title, &content, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.UserID = nullInt32(userID)
	p.Title = nullString(title)
	p.Content = nullString(content)
	p.CreatedAt = createdAt.Ptr()
	p.UpdatedAt = updatedAt.Ptr()
	return &p, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func nullInt32(n sql.NullInt32) *int32 {
	if !n.Valid {
		return nil
	}
	return &n.Int32
}
