package graphql

import (
	"github.com/sirupsen/logrus"

	"github.com/persistorai/pathfinder/internal/domain"
)

// Resolver is the root resolver for the GraphQL API.
// All interfaces come from the domain package.
type Resolver struct {
	Paths     domain.PathService
	Lookup    domain.LookupService
	Documents domain.DocumentService
	Log       logrus.FieldLogger
}
