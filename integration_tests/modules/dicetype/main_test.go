//go:build integration

package dicetype_integration_tests

import (
	"log"
	"os"
	"testing"

	"github.com/Black-And-White-Club/shared-dice/integration_tests/testutils"
)

var testEnv *testutils.TestEnvironment

func TestMain(m *testing.M) {
	env, err := testutils.NewTestEnvironment()
	if err != nil {
		log.Fatalf("failed to set up test environment: %v", err)
	}
	testEnv = env

	code := m.Run()
	env.Cleanup()
	os.Exit(code)
}

func resetDB(t *testing.T) {
	t.Helper()
	if err := testEnv.Reset(); err != nil {
		t.Fatalf("failed to reset database: %v", err)
	}
}
