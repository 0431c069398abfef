package cmd

import (
	"bytes"
	"strings"
	"testing"

	"upload-manager/core/reconcile"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfirmDestructiveAction(t *testing.T) {
	tests := []struct {
		name  string
		input string
		auto  bool
		want  bool
	}{
		{"AutoConfirm", "", true, true},
		{"Yes", "yes\n", false, true},
		{"YesWithoutNewline", "yes", false, true},
		{"PaddedYes", "  yes  \n", false, true},
		{"No", "no\n", false, false},
		{"Empty", "", false, false},
		{"Y", "y\n", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got := confirmDestructiveAction(strings.NewReader(tt.input), &out, tt.auto)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, out.String())
		})
	}
}

func TestPrintReconcileReport(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := zap.New(core)

	plan := &reconcile.Plan{Summary: reconcile.PlanSummary{TotalItems: 9, MissingDB: 7, PurgeActions: 7}}
	for i := 0; i < 7; i++ {
		plan.Actions = append(plan.Actions, reconcile.Action{Type: reconcile.ActionDeleteStorage, Key: "k", Reason: "missing in: database"})
	}

	printReconcileReport(l, plan)

	assert.Equal(t, 1, logs.FilterMessage("Reconciliation report").Len())
	assert.Equal(t, 5, logs.FilterMessage("Sample action").Len())
	more := logs.FilterMessage("Additional actions not shown").All()
	if assert.Len(t, more, 1) {
		assert.Equal(t, int64(2), more[0].ContextMap()["count"])
	}
}

func TestCommandsRegistered(t *testing.T) {
	for _, path := range [][]string{
		{"start"},
		{"migrate"},
		{"integrity"},
		{"integrity", "storage"},
		{"integrity", "schema"},
		{"storage", "ls"},
		{"storage", "exists"},
		{"storage", "get"},
		{"storage", "put"},
		{"storage", "cp"},
		{"storage", "rm"},
		{"storage", "upload-dir"},
	} {
		cmd, _, err := RootCmd.Find(path)
		if assert.NoError(t, err, path) {
			assert.Equal(t, path[len(path)-1], cmd.Name())
		}
	}
}
