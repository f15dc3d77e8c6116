package projects_controllers

import (
	"os"
	"testing"

	projects_testing "collabhub/internal/features/projects/testing"
)

func TestMain(m *testing.M) {
	projects_testing.SetupTestEnvironment()
	Setup()

	os.Exit(m.Run())
}
