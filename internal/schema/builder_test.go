package schema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	language "github.com/gqlexec/gqlexec/internal/language"
)

func buildSchema(t *testing.T, sdl string, res Resolvers) *Schema {
	t.Helper()
	doc, err := language.ParseSchema("test.graphql", sdl)
	require.NoError(t, err)
	s, err := FromSDL(doc, res)
	require.NoError(t, err)
	return s
}

func TestFromSDL_RootTypes(t *testing.T) {
	t.Run("default root names", func(t *testing.T) {
		s := buildSchema(t, `
			type Query { a: String }
			type Mutation { b: String }
		`, Resolvers{})
		require.Equal(t, "Query", s.QueryType)
		require.Equal(t, "Mutation", s.MutationType)
		require.Empty(t, s.SubscriptionType)
	})

	t.Run("schema block overrides", func(t *testing.T) {
		s := buildSchema(t, `
			schema { query: Root }
			type Root { a: String }
		`, Resolvers{})
		require.Equal(t, "Root", s.QueryType)
		require.NotNil(t, s.GetQueryType())
	})
}

func TestFromSDL_TypeGraph(t *testing.T) {
	s := buildSchema(t, `
		interface Node { id: ID! }
		type User implements Node { id: ID!, name(upper: Boolean = false): String }
		type Post implements Node { id: ID! }
		union Feed = User | Post
		enum Role { ADMIN, MEMBER }
		input Filter { role: Role = MEMBER, limit: Int! }
		type Query { node(id: ID!): Node, feed: [Feed!] }
	`, Resolvers{})

	node := s.Types["Node"]
	require.NotNil(t, node)
	require.True(t, node.IsAbstract())
	require.ElementsMatch(t, []string{"User", "Post"}, node.PossibleTypes)

	feed := s.Types["Feed"]
	require.Equal(t, TypeKindUnion, feed.Kind)
	require.Equal(t, []string{"User", "Post"}, feed.PossibleTypes)

	name := s.Types["User"].Field("name")
	require.NotNil(t, name)
	upper := name.Argument("upper")
	require.NotNil(t, upper)
	require.True(t, upper.HasDefault)
	require.Equal(t, false, upper.DefaultValue)

	filter := s.Types["Filter"]
	require.Equal(t, TypeKindInputObject, filter.Kind)
	role := filter.InputField("role")
	require.True(t, role.HasDefault)
	require.Equal(t, "MEMBER", role.DefaultValue) // enum default maps to its internal value
	require.True(t, filter.InputField("limit").Type.IsNonNull())

	feedRef := s.Types["Query"].Field("feed").Type
	require.Equal(t, "[Feed!]", feedRef.String())
	require.Equal(t, "Feed", feedRef.GetNamedType())
}

func TestFromSDL_BindResolvers(t *testing.T) {
	hello := func(ctx context.Context, src any, args map[string]any, info *ResolveInfo) (any, error) {
		return "hi", nil
	}

	t.Run("binds by Type.field key", func(t *testing.T) {
		s := buildSchema(t, `type Query { hello: String }`, Resolvers{
			Fields: map[string]ResolveFunc{"Query.hello": hello},
		})
		require.NotNil(t, s.Types["Query"].Field("hello").Resolve)
	})

	t.Run("rejects unknown field", func(t *testing.T) {
		doc, err := language.ParseSchema("test.graphql", `type Query { hello: String }`)
		require.NoError(t, err)
		_, err = FromSDL(doc, Resolvers{Fields: map[string]ResolveFunc{"Query.nope": hello}})
		require.Error(t, err)
	})

	t.Run("rejects type resolver on object type", func(t *testing.T) {
		doc, err := language.ParseSchema("test.graphql", `type Query { hello: String }`)
		require.NoError(t, err)
		_, err = FromSDL(doc, Resolvers{TypeResolvers: map[string]TypeResolveFunc{
			"Query": func(ctx context.Context, v any, info *ResolveInfo) string { return "" },
		}})
		require.Error(t, err)
	})

	t.Run("attaches scalar capabilities", func(t *testing.T) {
		s := buildSchema(t, `scalar Date
			type Query { today: Date }`, Resolvers{
			Scalars: map[string]ScalarCapabilities{
				"Date": {Serialize: func(v any) (any, error) { return v, nil }},
			},
		})
		require.NotNil(t, s.Types["Date"].Serialize)
	})
}

func TestFromSDL_ExtensionsMerge(t *testing.T) {
	s := buildSchema(t, `
		type Query { a: String }
		extend type Query { b: Int }
	`, Resolvers{})
	q := s.Types["Query"]
	require.NotNil(t, q.Field("a"))
	require.NotNil(t, q.Field("b"))
}

func TestLeafCoercion(t *testing.T) {
	episode := NewType("Episode", TypeKindEnum, "").
		AddEnumValue(NewEnumValue("NEWHOPE", "").SetValue(4)).
		AddEnumValue(NewEnumValue("EMPIRE", "").SetValue(5))

	got, err := episode.SerializeLeaf(5)
	require.NoError(t, err)
	require.Equal(t, "EMPIRE", got)

	got, err = episode.ParseLeafValue("NEWHOPE")
	require.NoError(t, err)
	require.Equal(t, 4, got)

	_, err = episode.ParseLeafValue("PHANTOM")
	require.Error(t, err)

	_, err = episode.SerializeLeaf(99)
	require.Error(t, err)
}

func TestTypeRefShapes(t *testing.T) {
	ref := NonNullType(ListType(NonNullType(NamedType("Episode"))))
	require.Equal(t, "[Episode!]!", ref.String())
	require.True(t, ref.IsNonNull())
	require.False(t, ref.IsList())
	require.True(t, ref.Unwrap().IsList())
	require.Equal(t, "Episode", ref.GetNamedType())
}
