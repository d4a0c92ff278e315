package source

// Recognized keys of the use-case document vocabulary. Keys outside this set
// are carried through as opaque metadata by the model builder.
const (
	// KeyCatalog marks a catalog document; its value is the catalog title.
	KeyCatalog = "UseCaseCatalog"
	// KeyScenarioSetFiles lists the scenario-set files a catalog links to.
	KeyScenarioSetFiles = "ScenarioSets"
	// KeyScenarioSet marks a scenario-set document; its value is the set title.
	KeyScenarioSet = "ScenarioSet"
	// KeyUpdateHistory maps update titles to their date and summary.
	KeyUpdateHistory = "UpdateHistory"

	KeyDescription     = "Description"
	KeyMainActor       = "MainActor"
	KeySecondaryActors = "SecondaryActors"
	KeyScenarios       = "Scenarios"

	KeyTitle         = "Title"
	KeySummary       = "Summary"
	KeyBaseScenario  = "BaseScenario"
	KeyPreconditions = "Preconditions"
	KeyActions       = "Actions"

	KeyOperation = "Operation"
	KeyResults   = "Results"

	KeyDate = "Date"
)
