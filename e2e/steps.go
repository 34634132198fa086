package e2e

import (
	"github.com/cucumber/godog"

	"selfid/e2e/steps/common"
	"selfid/e2e/steps/registry"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (responses and assertions)
	common.RegisterSteps(ctx, tc)

	// Register registry-specific steps
	registry.RegisterSteps(ctx, tc)
}
