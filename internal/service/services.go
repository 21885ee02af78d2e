package service

import (
	"github.com/rs/zerolog"

	"github.com/menucost/engine/internal/auth"
	"github.com/menucost/engine/internal/config"
	"github.com/menucost/engine/internal/metrics"
)

// Dependencies centralises the dependencies shared by the entity
// services.
type Dependencies struct {
	Config       *config.Config
	Suppliers    SupplierStore
	Ingredients  IngredientStore
	Recipes      RecipeStore
	Cache        Invalidator
	Files        FileStore
	Logger       zerolog.Logger
	TokenManager *auth.Manager
	Metrics      *metrics.Registry
}

// Services exposes every entity-service use case the import pipeline
// and the CLI/HTTP layers call into.
type Services struct {
	Suppliers   *SupplierService
	Ingredients *IngredientService
	Recipes     *RecipeService
}

// NewServices builds the service layer from its dependencies.
func NewServices(deps Dependencies) *Services {
	log := deps.Logger

	return &Services{
		Suppliers:   NewSupplierService(deps.Suppliers, deps.Cache, deps.Files, log),
		Ingredients: NewIngredientService(deps.Ingredients, deps.Suppliers, deps.Cache, deps.Files, log),
		Recipes:     NewRecipeService(deps.Recipes, deps.Ingredients, deps.Cache, deps.Files, log),
	}
}

// Processors returns the dispatch table the import pipeline commits
// through, keyed by entity kind.
func (s *Services) Processors() map[string]Processor {
	return map[string]Processor{
		"supplier":   s.Suppliers.Processor,
		"ingredient": s.Ingredients.Processor,
		"recipe":     s.Recipes.Processor,
	}
}
