package render

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/config"
	"github.com/trebuchet-org/sling/internal/domain/models"
	"github.com/trebuchet-org/sling/internal/usecase"
)

func init() {
	color.NoColor = true
}

var (
	managerAddr  = common.HexToAddress("0x1111111111111111111111111111111111111111")
	fallbackAddr = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func TestFormatStatus(t *testing.T) {
	tests := []struct {
		status models.StepStatus
		want   string
	}{
		{models.StepDeployed, "✓ Deployed"},
		{models.StepExisting, "= Existing"},
		{models.StepFailed, "✗ Failed"},
		{models.StepBlocked, "⊘ Blocked"},
		{models.StepCancelled, "○ Cancelled"},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, FormatStatus(tt.status))
		})
	}
}

func TestDeployRenderer_RenderRunResult(t *testing.T) {
	result := &models.RunResult{
		RunID:    "run-1",
		Pipeline: "gnosis-account",
		Networks: []*models.NetworkRun{{
			Network:     11155111,
			NetworkName: "sepolia",
			Outcomes: []*models.StepOutcome{
				{Step: "EIP4337Manager", Status: models.StepExisting, Record: &models.DeploymentRecord{
					Address: managerAddr,
					Marker:  models.DeploymentMarker{Existing: true},
				}},
				{Step: "EIP4337Fallback", Status: models.StepFailed, Error: "deployment reverted"},
				{Step: "GnosisSafeAccountFactory", Status: models.StepBlocked, BlockedBy: "EIP4337Fallback"},
			},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, NewDeployRenderer(&buf).RenderRunResult(result))

	out := buf.String()
	assert.Contains(t, out, "sepolia (chain 11155111)")
	assert.Contains(t, out, managerAddr.Hex())
	assert.Contains(t, out, "⊘ Blocked")
	assert.Contains(t, out, "gnosis-account did not complete")
	assert.Contains(t, out, "sepolia: 0 deployed, 1 existing, 1 failed, 1 blocked, 0 cancelled")
}

func TestDeployRenderer_RenderStepOutcome(t *testing.T) {
	var buf bytes.Buffer
	r := NewDeployRenderer(&buf)

	r.RenderStepOutcome("sepolia", 3, 3, &models.StepOutcome{
		Step:      "GnosisSafeAccountFactory",
		Status:    models.StepBlocked,
		BlockedBy: "EIP4337Fallback",
	})
	assert.Equal(t, "[sepolia 3/3] ⊘ Blocked GnosisSafeAccountFactory (blocked by EIP4337Fallback)\n", buf.String())
}

func TestDeployRenderer_RenderPlan(t *testing.T) {
	plan := &models.DeploymentPlan{
		Pipeline: "gnosis-account",
		Network:  1,
		Steps: []*models.PlannedStep{
			{
				Index:    0,
				Step:     &models.DeploymentStep{Name: "EIP4337Manager"},
				Artifact: &models.ContractArtifact{Name: "EIP4337Manager"},
				Args: []models.ResolvedArg{{
					Ref:      models.FromAddressBook("EntryPoint", "0.6.0"),
					Value:    managerAddr,
					Resolved: true,
				}},
			},
			{
				Index:     1,
				Step:      &models.DeploymentStep{Name: "Fallback"},
				Artifact:  &models.ContractArtifact{Name: "EIP4337Fallback"},
				Args:      []models.ResolvedArg{{Ref: models.FromStep("EIP4337Manager"), StepIndex: 0}},
				DependsOn: []int{0},
			},
		},
	}

	var buf bytes.Buffer
	NewDeployRenderer(&buf).RenderPlan("mainnet", plan)

	out := buf.String()
	assert.Contains(t, out, "Plan: 2 steps")
	assert.Contains(t, out, "addressbook:EntryPoint@0.6.0 = "+managerAddr.Hex())
	assert.Contains(t, out, "2. Fallback → EIP4337Fallback (depends on: EIP4337Manager)")
}

func TestPredictionRenderer(t *testing.T) {
	result := &usecase.PredictionResult{
		Pipeline: "gnosis-account",
		Network:  &config.Network{Name: "sepolia", ChainID: 11155111},
		Factory:  domain.DefaultFactory,
		Steps: []*usecase.PredictedStep{
			{Index: 0, Name: "EIP4337Manager", Artifact: "EIP4337Manager", Address: managerAddr, Status: usecase.PredictionRecorded},
			{Index: 1, Name: "EIP4337Fallback", Artifact: "EIP4337Fallback", Status: usecase.PredictionUnresolved, Err: errors.New("no registry entry")},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewPredictionRenderer(&buf, false).Render(result))

	out := buf.String()
	assert.Contains(t, out, managerAddr.Hex())
	assert.Contains(t, out, "recorded")
	assert.Contains(t, out, "unresolved")
	assert.Contains(t, out, "EIP4337Fallback: no registry entry")
}

func TestRecordsRenderer(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewRecordsRenderer(&buf).Render(&usecase.RecordListResult{}))
		assert.Equal(t, "No deployments found\n", buf.String())
	})

	t.Run("grouped", func(t *testing.T) {
		recs := []*models.DeploymentRecord{
			{Network: 1, Name: "EIP4337Manager", Address: managerAddr, RecordedAt: time.Now()},
			{Network: 10, Name: "EIP4337Fallback", Address: fallbackAddr, Marker: models.DeploymentMarker{TxHash: common.HexToHash("0xabcdef")}},
		}
		result := &usecase.RecordListResult{
			Records: recs,
			ByNetwork: map[domain.NetworkID][]*models.DeploymentRecord{
				1:  recs[:1],
				10: recs[1:],
			},
		}

		var buf bytes.Buffer
		require.NoError(t, NewRecordsRenderer(&buf).Render(result))

		out := buf.String()
		assert.Less(t, bytes.Index(buf.Bytes(), []byte("EIP4337Manager")), bytes.Index(buf.Bytes(), []byte("EIP4337Fallback")))
		assert.Contains(t, out, fallbackAddr.Hex())
		assert.Contains(t, out, "Total deployments: 2")
	})
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	err := NewJSONRenderer[*usecase.ResolvedAddress](&buf).Render(&usecase.ResolvedAddress{
		Family:  "EntryPoint",
		Network: &config.Network{Name: "mainnet", ChainID: 1},
		Address: managerAddr,
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"family": "EntryPoint"`)
	assert.Contains(t, buf.String(), `"address": "`+managerAddr.Hex()+`"`)
}
