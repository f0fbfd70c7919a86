package graph

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/graphql-go/graphql"

	"github.com/satishbabariya/pgql/query/executor"
	"github.com/satishbabariya/pgql/query/filter"
	"github.com/satishbabariya/pgql/query/sqlgen"
)

// Resolver resolves every root and relation field against one executor.
type Resolver struct {
	exec *executor.Executor
}

var (
	errEmptyTitle    = errors.New("Title cannot be empty")
	errNothingToDo   = errors.New("Nothing to update")
	usersOrder       = []sqlgen.OrderBy{{Column: "id"}}
	postsOrder       = []sqlgen.OrderBy{{Column: "created_at", Desc: true}, {Column: "id", Desc: true}}
	relatedPostOrder = []sqlgen.OrderBy{{Column: "id"}}
)

func (r *Resolver) users(p graphql.ResolveParams) (any, error) {
	return listPage(p, r.exec, Users, userColumns, usersOrder, scanUser)
}

func (r *Resolver) posts(p graphql.ResolveParams) (any, error) {
	return listPage(p, r.exec, Posts, postColumns, postsOrder, scanPost)
}

// listPage decodes the filters argument, compiles it once and runs the count and
// page queries with the resulting clause.
func listPage[T any](p graphql.ResolveParams, exec *executor.Executor, entity *filter.Entity, columns []string, order []sqlgen.OrderBy, scan executor.ScanFunc[T]) (any, error) {
	raw, err := inputMap(p.Args, "filters")
	if err != nil {
		return nil, err
	}
	node, err := entity.Decode(raw)
	if err != nil {
		return nil, err
	}

	page, err := executor.FindPage(p.Context, exec, executor.PageQuery{
		Table:   entity.Table,
		Columns: columns,
		Where:   exec.Compile(node),
		OrderBy: order,
		Limit:   intArg(p.Args, "limit"),
		Offset:  intArg(p.Args, "offset"),
	}, scan)
	if err != nil {
		return nil, err
	}
	return Connection[T]{Data: page.Data, TotalCount: page.TotalCount}, nil
}

func (r *Resolver) userPosts(p graphql.ResolveParams) (any, error) {
	u, ok := p.Source.(*User)
	if !ok {
		return nil, fmt.Errorf("posts: unexpected source %T", p.Source)
	}

	posts, err := executor.FindMany(p.Context, r.exec, sqlgen.Select{
		Table:   Posts.Table,
		Columns: postColumns,
		Where:   r.exec.Compile(filter.On("user_id", filter.IntFilter{Equals: filter.Int(u.ID)})),
		OrderBy: relatedPostOrder,
	}, scanPost)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*Post{}
	}
	return posts, nil
}

func (r *Resolver) postUser(p graphql.ResolveParams) (any, error) {
	post, ok := p.Source.(*Post)
	if !ok {
		return nil, fmt.Errorf("user: unexpected source %T", p.Source)
	}
	if post.UserID == nil {
		return nil, nil
	}

	u, err := executor.FindOne(p.Context, r.exec, sqlgen.Select{
		Table:   Users.Table,
		Columns: userColumns,
		Where:   r.exec.Compile(filter.On("id", filter.IntFilter{Equals: filter.Int(*post.UserID)})),
	}, scanUser)
	if executor.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *Resolver) createPost(p graphql.ResolveParams) (any, error) {
	input, err := inputMap(p.Args, "input")
	if err != nil {
		return nil, err
	}

	title, _ := input["title"].(string)
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errEmptyTitle
	}
	userID, _ := input["userId"].(int)

	post, err := executor.Insert(p.Context, r.exec, Posts.Table, []sqlgen.Assignment{
		{Column: "user_id", Value: int32(userID)},
		{Column: "title", Value: title},
		{Column: "content", Value: normalizeContent(input["content"])},
		{Column: "created_at", Value: sqlgen.Expr("CURRENT_TIMESTAMP")},
		{Column: "updated_at", Value: sqlgen.Expr("CURRENT_TIMESTAMP")},
	}, postColumns, scanPost)
	if err != nil {
		return nil, fmt.Errorf("Failed to create post: %w", err)
	}
	return post, nil
}

func (r *Resolver) updatePost(p graphql.ResolveParams) (any, error) {
	input, err := inputMap(p.Args, "input")
	if err != nil {
		return nil, err
	}

	title, hasTitle := input["title"].(string)
	content, hasContent := input["content"]
	hasContent = hasContent && content != nil
	if !hasTitle && !hasContent {
		return nil, errNothingToDo
	}

	var set []sqlgen.Assignment
	if hasTitle {
		set = append(set, sqlgen.Assignment{Column: "title", Value: title})
	}
	if hasContent {
		set = append(set, sqlgen.Assignment{Column: "content", Value: normalizeContent(content)})
	}
	set = append(set, sqlgen.Assignment{Column: "updated_at", Value: sqlgen.Expr("CURRENT_TIMESTAMP")})

	id, _ := input["id"].(int)
	post, err := executor.Update(p.Context, r.exec, Posts.Table, set,
		r.exec.Compile(filter.On("id", filter.IntFilter{Equals: filter.Int(int32(id))})),
		postColumns, scanPost)
	if err != nil {
		return nil, fmt.Errorf("Failed to update post: %w", err)
	}
	return post, nil
}

func (r *Resolver) deletePost(p graphql.ResolveParams) (any, error) {
	id, _ := p.Args["id"].(int)

	n, err := r.exec.Delete(p.Context, Posts.Table,
		r.exec.Compile(filter.On("id", filter.IntFilter{Equals: filter.Int(int32(id))})))
	if err != nil {
		return nil, fmt.Errorf("Failed to delete post: %w", err)
	}
	return n > 0, nil
}

// normalizeContent trims post content and stores blank content as NULL.
func normalizeContent(v any) any {
	s, ok := v.(string)
	if !ok {
		return sql.NullString{}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return sql.NullString{}
	}
	return s
}

func intArg(args map[string]any, key string) *int {
	v, ok := args[key].(int)
	if !ok {
		return nil
	}
	return &v
}
