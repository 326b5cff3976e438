// Package graphql serves path searches, lookups and documents over GraphQL,
// backed by the same domain services as the REST API.
package graphql

import (
	"net/http"

	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/handler/transport"
	"github.com/99designs/gqlgen/graphql/playground"
)

// NewHandler returns the GraphQL endpoint for r. Introspection is not served.
func NewHandler(r *Resolver) *handler.Server {
	srv := handler.New(NewExecutableSchema(Config{Resolvers: r}))
	srv.AddTransport(transport.Options{})
	srv.AddTransport(transport.GET{})
	srv.AddTransport(transport.POST{})

	return srv
}

// Playground returns the in-browser query editor pointed at endpoint.
func Playground(endpoint string) http.HandlerFunc {
	return playground.Handler("Pathfinder", endpoint)
}
