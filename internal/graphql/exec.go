package graphql

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

//go:embed schema.graphqls
var schemaSDL string

var parsedSchema = gqlparser.MustLoadSchema(&ast.Source{Name: "schema.graphqls", Input: schemaSDL})

// Config configures NewExecutableSchema.
type Config struct {
	Resolvers *Resolver
}

// fieldFunc resolves one root field from its coerced arguments. The result is
// built from maps, slices and scalars and projected onto the selection set.
type fieldFunc func(ctx context.Context, args map[string]any) (any, error)

type executableSchema struct {
	fields map[string]fieldFunc
}

var _ graphql.ExecutableSchema = (*executableSchema)(nil)

// NewExecutableSchema binds the schema's root fields to cfg.Resolvers.
func NewExecutableSchema(cfg Config) graphql.ExecutableSchema {
	r := cfg.Resolvers

	return &executableSchema{fields: map[string]fieldFunc{
		"Query.path":               r.path,
		"Query.lookup":             r.lookup,
		"Query.document":           r.document,
		"Mutation.upsertDocuments": r.upsertDocuments,
	}}
}

func (e *executableSchema) Schema() *ast.Schema {
	return parsedSchema
}

// Complexity leaves every field at the default cost.
func (e *executableSchema) Complexity(context.Context, string, string, int, map[string]any) (int, bool) {
	return 0, false
}

func (e *executableSchema) Exec(ctx context.Context) graphql.ResponseHandler {
	opCtx := graphql.GetOperationContext(ctx)

	switch opCtx.Operation.Operation {
	case ast.Query:
		return graphql.OneShot(e.run(ctx, opCtx, "Query"))
	case ast.Mutation:
		return graphql.OneShot(e.run(ctx, opCtx, "Mutation"))
	default:
		return graphql.OneShot(graphql.ErrorResponse(ctx, "unsupported GraphQL operation"))
	}
}

// run resolves root fields in document order. A failed non-null field nulls
// the whole response data.
func (e *executableSchema) run(ctx context.Context, opCtx *graphql.OperationContext, root string) *graphql.Response {
	fields := graphql.CollectFields(opCtx, opCtx.Operation.SelectionSet, []string{root})
	out := make(object, 0, len(fields))

	var errs gqlerror.List

	for _, f := range fields {
		path := ast.Path{ast.PathName(f.Alias)}

		if f.Name == "__typename" {
			out = append(out, objectField{f.Alias, root})
			continue
		}

		resolve, ok := e.fields[root+"."+f.Name]
		if !ok {
			errs = append(errs, gqlErrWithCode(path, "field "+f.Name+" is not available", codeBadRequest))
			out = append(out, objectField{f.Alias, nil})

			continue
		}

		v, err := resolve(ctx, f.ArgumentMap(opCtx.Variables))
		if err != nil {
			errs = append(errs, gqlErr(path, err))

			if f.Definition != nil && f.Definition.Type.NonNull {
				return &graphql.Response{Data: json.RawMessage("null"), Errors: errs}
			}

			v = nil
		}

		out = append(out, objectField{f.Alias, project(opCtx, f.Selections, typeName(f.Field), v)})
	}

	data, err := json.Marshal(out)
	if err != nil {
		errs = append(errs, gqlErrWithCode(nil, "encoding response: "+err.Error(), codeInternalError))

		return &graphql.Response{Data: json.RawMessage("null"), Errors: errs}
	}

	return &graphql.Response{Data: data, Errors: errs}
}

func typeName(f *ast.Field) string {
	if f.Definition == nil || f.Definition.Type == nil {
		return ""
	}

	return f.Definition.Type.Name()
}

// project keeps the selected fields of object values, recursing through
// lists. Values without a selection set (scalars, JSON) pass through.
func project(opCtx *graphql.OperationContext, sel ast.SelectionSet, objType string, v any) any {
	if v == nil || len(sel) == 0 {
		return v
	}

	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, elem := range t {
			out[i] = project(opCtx, sel, objType, elem)
		}

		return out
	case map[string]any:
		fields := graphql.CollectFields(opCtx, sel, []string{objType})
		out := make(object, 0, len(fields))

		for _, f := range fields {
			if f.Name == "__typename" {
				out = append(out, objectField{f.Alias, objType})
				continue
			}

			out = append(out, objectField{f.Alias, project(opCtx, f.Selections, typeName(f.Field), t[f.Name])})
		}

		return out
	default:
		return v
	}
}

type objectField struct {
	name  string
	value any
}

// object is a JSON object that keeps the field order of the selection set.
type object []objectField

func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(f.name)
		if err != nil {
			return nil, err
		}

		val, err := json.Marshal(f.value)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}
