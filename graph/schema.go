package graph

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/satishbabariya/pgql/query/executor"
	"github.com/satishbabariya/pgql/query/filter"
)

// schemaBuilder holds the types shared between the query and mutation roots.
type schemaBuilder struct {
	resolver *Resolver

	predicates map[filter.Kind]*graphql.InputObject
	userType   *graphql.Object
	postType   *graphql.Object
}

// NewSchema builds the GraphQL schema over exec.
func NewSchema(exec *executor.Executor) (graphql.Schema, error) {
	b := &schemaBuilder{
		resolver:   &Resolver{exec: exec},
		predicates: make(map[filter.Kind]*graphql.InputObject),
	}
	b.buildObjects()

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    b.queryRoot(),
		Mutation: b.mutationRoot(),
	})
}

// predicateInput returns the input type of one column kind, e.g. IntFilter.
func (b *schemaBuilder) predicateInput(kind filter.Kind) *graphql.InputObject {
	if in, ok := b.predicates[kind]; ok {
		return in
	}

	var fields graphql.InputObjectConfigFieldMap
	switch kind {
	case filter.KindInt, filter.KindFloat:
		scalar := graphql.Int
		if kind == filter.KindFloat {
			scalar = graphql.Float
		}
		fields = graphql.InputObjectConfigFieldMap{
			"equals": &graphql.InputObjectFieldConfig{Type: scalar},
			"gt":     &graphql.InputObjectFieldConfig{Type: scalar},
			"lt":     &graphql.InputObjectFieldConfig{Type: scalar},
			"gte":    &graphql.InputObjectFieldConfig{Type: scalar},
			"lte":    &graphql.InputObjectFieldConfig{Type: scalar},
		}
	case filter.KindString:
		fields = graphql.InputObjectConfigFieldMap{
			"equals":              &graphql.InputObjectFieldConfig{Type: graphql.String},
			"contains":            &graphql.InputObjectFieldConfig{Type: graphql.String},
			"startsWith":          &graphql.InputObjectFieldConfig{Type: graphql.String},
			"endsWith":            &graphql.InputObjectFieldConfig{Type: graphql.String},
			"containsInsensitive": &graphql.InputObjectFieldConfig{Type: graphql.String},
		}
	}

	in := graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   kind.String(),
		Fields: fields,
	})
	b.predicates[kind] = in
	return in
}

// filterInput builds the recursive XxxFilters input of an entity.
func (b *schemaBuilder) filterInput(e *filter.Entity) *graphql.InputObject {
	fields := graphql.InputObjectConfigFieldMap{}
	for _, f := range e.Fields {
		fields[f.Name] = &graphql.InputObjectFieldConfig{Type: b.predicateInput(f.Kind)}
	}

	var input *graphql.InputObject
	input = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: e.Name + "Filters",
		Fields: graphql.InputObjectConfigFieldMapThunk(func() graphql.InputObjectConfigFieldMap {
			fields["and"] = &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(input))}
			fields["or"] = &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(input))}
			return fields
		}),
	})
	return input
}

func (b *schemaBuilder) buildObjects() {
	b.userType = graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
				"name":      &graphql.Field{Type: graphql.String},
				"age":       &graphql.Field{Type: graphql.Int},
				"email":     &graphql.Field{Type: graphql.String},
				"phone":     &graphql.Field{Type: graphql.String},
				"createdAt": &graphql.Field{Type: graphql.DateTime},
				"updatedAt": &graphql.Field{Type: graphql.DateTime},
				"posts": &graphql.Field{
					Type:    graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(b.postType))),
					Resolve: b.resolver.userPosts,
				},
			}
		}),
	})

	b.postType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Post",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
				"userId":    &graphql.Field{Type: graphql.Int},
				"title":     &graphql.Field{Type: graphql.String},
				"content":   &graphql.Field{Type: graphql.String},
				"createdAt": &graphql.Field{Type: graphql.DateTime},
				"updatedAt": &graphql.Field{Type: graphql.DateTime},
				"user": &graphql.Field{
					Type:    b.userType,
					Resolve: b.resolver.postUser,
				},
			}
		}),
	})
}

func connectionType(name string, item *graphql.Object) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: name,
		Fields: graphql.Fields{
			"data":       &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(item)))},
			"totalCount": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		},
	})
}

func listArgs(filters *graphql.InputObject) graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"filters": &graphql.ArgumentConfig{Type: filters},
		"limit": &graphql.ArgumentConfig{
			Type:        graphql.Int,
			Description: "Page size, 10 by default and at most 200",
		},
		"offset": &graphql.ArgumentConfig{Type: graphql.Int},
	}
}

func (b *schemaBuilder) queryRoot() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"users": &graphql.Field{
				Type:    graphql.NewNonNull(connectionType("UsersConnection", b.userType)),
				Args:    listArgs(b.filterInput(Users)),
				Resolve: b.resolver.users,
			},
			"posts": &graphql.Field{
				Type:    graphql.NewNonNull(connectionType("PostsConnection", b.postType)),
				Args:    listArgs(b.filterInput(Posts)),
				Resolve: b.resolver.posts,
			},
		},
	})
}

func (b *schemaBuilder) mutationRoot() *graphql.Object {
	createInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CreatePostInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"userId":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
			"title":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"content": &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})
	updateInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UpdatePostInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"id":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
			"title":   &graphql.InputObjectFieldConfig{Type: graphql.String},
			"content": &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createPost": &graphql.Field{
				Type: graphql.NewNonNull(b.postType),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(createInput)},
				},
				Resolve: b.resolver.createPost,
			},
			"updatePost": &graphql.Field{
				Type: graphql.NewNonNull(b.postType),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(updateInput)},
				},
				Resolve: b.resolver.updatePost,
			},
			"deletePost": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: b.resolver.deletePost,
			},
		},
	})
}

// inputMap reads an optional input object argument.
func inputMap(args map[string]any, key string) (map[string]any, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("argument %s must be an object", key)
	}
	return m, nil
}
