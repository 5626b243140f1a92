package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"

	domainmocks "assetmaid.dev/pkg/assetmaid/internal/domain/mocks"
)

// installMockWorkflow replaces the workflow for the duration of the test.
func installMockWorkflow(t *testing.T) *domainmocks.MockWorkflow {
	t.Helper()

	mockWorkflow := domainmocks.NewMockWorkflow(t)

	originalWorkflow := workflow
	workflow = mockWorkflow
	t.Cleanup(func() { workflow = originalWorkflow })

	return mockWorkflow
}

// newTestRoot returns a root command with sub attached and its output captured.
func newTestRoot(sub *cobra.Command) (*cobra.Command, *bytes.Buffer) {
	cmd := newRootCmd()
	cmd.AddCommand(sub)

	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})

	return cmd, out
}
