package graphql

import (
	"context"
	"strings"

	"github.com/persistorai/pathfinder/internal/models"
)

// path is the resolver for the path field.
func (r *Resolver) path(ctx context.Context, args map[string]any) (any, error) {
	req := models.PathRequest{
		Collection:         stringArg(args, "collection"),
		Start:              stringArg(args, "start"),
		End:                stringArg(args, "end"),
		AdjacencyField:     stringArg(args, "adjacencyField"),
		IDField:            stringArg(args, "idField"),
		WeightField:        stringArg(args, "weightField"),
		Algorithm:          models.Algorithm(strings.ToLower(stringArg(args, "algorithm"))),
		StopAtFirstMeeting: boolArg(args, "stopAtFirstMeeting"),
	}

	depth, err := intArg(args, "maxDepth")
	if err != nil {
		return nil, err
	}

	req.MaxDepth = depth

	p, err := r.Paths.FindPath(ctx, req)
	if err != nil {
		return nil, r.logInternal(ctx, err, "path")
	}

	return pathToGQL(p), nil
}

// lookup is the resolver for the lookup field.
func (r *Resolver) lookup(ctx context.Context, args map[string]any) (any, error) {
	stage, ok := args["stage"].(map[string]any)
	if !ok {
		return nil, models.InvalidArgument("stage must be an object")
	}

	docs, err := documentsArg(args, "documents")
	if err != nil {
		return nil, err
	}

	res, err := r.Lookup.Lookup(ctx, models.LookupRequest{Stage: stage, Documents: docs})
	if err != nil {
		return nil, r.logInternal(ctx, err, "lookup")
	}

	return map[string]any{"results": documentsToGQL(res.Results)}, nil
}

// document is the resolver for the document field.
func (r *Resolver) document(ctx context.Context, args map[string]any) (any, error) {
	doc, err := r.Documents.GetDocument(ctx, stringArg(args, "collection"), stringArg(args, "id"))
	if err != nil {
		return nil, r.logInternal(ctx, err, "document")
	}

	return doc, nil
}

// upsertDocuments is the resolver for the upsertDocuments field.
func (r *Resolver) upsertDocuments(ctx context.Context, args map[string]any) (any, error) {
	docs, err := documentsArg(args, "documents")
	if err != nil {
		return nil, err
	}

	res, err := r.Documents.UpsertDocuments(ctx, stringArg(args, "collection"), models.BulkDocumentsRequest{Documents: docs})
	if err != nil {
		return nil, r.logInternal(ctx, err, "upsertDocuments")
	}

	return map[string]any{"upserted": res.Upserted}, nil
}

// logInternal logs errors that gqlErr hides behind INTERNAL_ERROR.
func (r *Resolver) logInternal(ctx context.Context, err error, field string) error {
	if r.Log != nil && gqlErr(nil, err).Extensions["code"] == codeInternalError {
		r.Log.WithError(err).WithField("request_id", models.RequestIDFrom(ctx)).Error("graphql." + field)
	}

	return err
}
