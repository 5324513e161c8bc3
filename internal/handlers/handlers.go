// Package handlers exposes the planner over HTTP.
package handlers

import (
	"github.com/despensa/planner-service/internal/consumption"
	"github.com/despensa/planner-service/internal/planner"
	"github.com/despensa/planner-service/internal/pricecache"
	"github.com/despensa/planner-service/internal/shoppinglist"
	"github.com/despensa/planner-service/internal/storage"
)

// Shared handler state (initialized by the application)
var (
	plannerSvc *planner.Planner
	priceCache *pricecache.Cache
	tracker    *consumption.Tracker
	generator  *shoppinglist.Generator
	docStore   storage.DocumentStore
)

// Init wires the handler package to its dependencies.
// Must be called during application startup, before routes are served.
func Init(p *planner.Planner, cache *pricecache.Cache, store storage.DocumentStore) {
	plannerSvc = p
	priceCache = cache
	docStore = store
	tracker = consumption.NewTracker(store)
	generator = shoppinglist.NewGenerator(store)
}
