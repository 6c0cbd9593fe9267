package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/taxroll/internal/models"
)

type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) Find(ctx context.Context, id int64) (*models.Municipality, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Municipality), args.Error(1)
}

func TestDecide(t *testing.T) {
	t.Run("existing municipality is reused", func(t *testing.T) {
		existing := &models.Municipality{MunicipalID: 3, MunicipalName: "Capital City"}

		res := Decide(3, existing)

		assert.Equal(t, ActionReuse, res.Action)
		assert.Equal(t, int64(3), res.MunicipalID)
		assert.Nil(t, res.Placeholder)
	})

	t.Run("unknown id stages a placeholder", func(t *testing.T) {
		res := Decide(7, nil)

		assert.Equal(t, ActionCreate, res.Action)
		assert.Equal(t, "create", res.Action.String())
		require.NotNil(t, res.Placeholder)
		assert.Equal(t, int64(7), res.Placeholder.MunicipalID)
		assert.Equal(t, "Unknown 7", res.Placeholder.MunicipalName)
		assert.True(t, res.Placeholder.MunicipalRate.Equal(decimal.Zero))
		assert.True(t, res.Placeholder.EducationRate.Equal(decimal.Zero))
	})
}

func TestPlanProperty(t *testing.T) {
	ctx := context.Background()

	t.Run("decimal-coerced id resolves to existing municipality", func(t *testing.T) {
		lookup := new(mockLookup)
		lookup.On("Find", ctx, int64(1)).Return(&models.Municipality{MunicipalID: 1}, nil)

		plan, err := PlanProperty(ctx, lookup, 2, map[string]string{
			ColAssessmentRollNumber: " A100 ",
			ColAssessmentValue:      "100,000",
			ColMunicipalID:          " 1.0 ",
		})

		require.NoError(t, err)
		assert.Equal(t, 2, plan.Line)
		assert.Equal(t, "A100", plan.Input.AssessmentRollNumber)
		assert.Equal(t, int64(100000), plan.Input.AssessmentValue)
		assert.Equal(t, int64(1), plan.Input.MunicipalID)
		assert.Equal(t, ActionReuse, plan.Municipal.Action)
		lookup.AssertExpectations(t)
	})

	t.Run("unknown id plans creation", func(t *testing.T) {
		lookup := new(mockLookup)
		lookup.On("Find", ctx, int64(7)).Return(nil, nil)

		plan, err := PlanProperty(ctx, lookup, 3, map[string]string{
			ColAssessmentRollNumber: "B200",
			ColAssessmentValue:      "5000",
			ColMunicipalID:          "7.0",
		})

		require.NoError(t, err)
		assert.Equal(t, ActionCreate, plan.Municipal.Action)
		assert.Equal(t, "Unknown 7", plan.Municipal.Placeholder.MunicipalName)
	})

	t.Run("malformed id fails without lookup", func(t *testing.T) {
		lookup := new(mockLookup)

		plan, err := PlanProperty(ctx, lookup, 4, map[string]string{
			ColAssessmentRollNumber: "C300",
			ColAssessmentValue:      "5000",
			ColMunicipalID:          "abc",
		})

		require.Error(t, err)
		assert.Nil(t, plan)
		assert.Contains(t, err.Error(), `invalid municipal_id "abc"`)
		lookup.AssertNotCalled(t, "Find", mock.Anything, mock.Anything)
	})

	t.Run("missing roll number", func(t *testing.T) {
		_, err := PlanProperty(ctx, new(mockLookup), 5, map[string]string{
			ColAssessmentValue: "5000",
			ColMunicipalID:     "1",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "assessment_roll_number is required")
	})

	t.Run("lookup failure", func(t *testing.T) {
		lookup := new(mockLookup)
		lookup.On("Find", ctx, int64(1)).Return(nil, errors.New("connection refused"))

		_, err := PlanProperty(ctx, lookup, 6, map[string]string{
			ColAssessmentRollNumber: "D400",
			ColAssessmentValue:      "1",
			ColMunicipalID:          "1",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}
