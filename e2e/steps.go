//go:build e2e

package e2e

import (
	"github.com/cucumber/godog"

	"duediligence/e2e/steps/common"
	"duediligence/e2e/steps/onboarding"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	onboarding.RegisterSteps(ctx, tc)
}
