// Package scenario runs the multi-component, timing-sensitive
// dispatch scenarios as a ginkgo/gomega BDD suite: multi-slice
// aggregation, agent draining, and dispatch ordering are all
// easier to express with Eventually/Consistently than as a plain
// polling loop.
package scenario

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestScenarios(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Scheduler Scenarios Suite")
}
