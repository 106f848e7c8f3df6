package wizard

import (
	"strconv"
	"testing"

	"business-directory/internal/common/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func yearString(y int) string { return strconv.Itoa(y) }

func TestSplitServices(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"mixed empties", "Hair Styling,  , Braiding,,Makeup ", []string{"Hair Styling", "Braiding", "Makeup"}},
		{"single", "Plumbing", []string{"Plumbing"}},
		{"blank", "   ", []string{}},
		{"only commas", ",,,", []string{}},
		{"order kept", "b, a, c", []string{"b", "a", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitServices(tt.in))
		})
	}
}

func TestBuildBusinessRecord(t *testing.T) {
	record := BuildBusinessRecord(Draft{
		FieldBusinessName: " Glow Salon ",
		FieldServices:     "Cuts,, Colour",
		FieldCity:         "Springfield",
		"instagram":       "@glow",
		"empty_custom":    "",
	})

	assert.Equal(t, "Glow Salon", record.BusinessName)
	assert.Equal(t, []string{"Cuts", "Colour"}, record.Services)
	assert.Equal(t, "Springfield", record.City)
	assert.Equal(t, map[string]string{"instagram": "@glow"}, record.Extra)
}

func TestDefaultRegistrationSteps_Layout(t *testing.T) {
	steps := DefaultRegistrationSteps()
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"identity", "contact", "location", "owner", "operations"}, names)
}

func TestStepsFromConfig(t *testing.T) {
	steps, err := StepsFromConfig([]config.StepConfig{
		{Name: "basics", Fields: []config.FieldConfig{
			{Name: "business_name", Label: "Name", Required: true},
			{Name: "email", Kind: "email"},
		}},
		{Name: "extra", Fields: []config.FieldConfig{
			{Name: "year_established", Kind: "year"},
			{Name: "services", Kind: "services", Required: true},
		}},
	})
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Len(t, steps[0].Fields[1].Validators, 1)
	assert.Len(t, steps[1].Fields[1].Validators, 1)
	assert.Equal(t, "List at least one service", steps[1].Fields[1].Validators[0](" , "))

	_, err = StepsFromConfig([]config.StepConfig{{Name: "x", Fields: []config.FieldConfig{{Name: "a", Kind: "colour"}}}})
	assert.ErrorIs(t, err, ErrInvalidStep)

	defaults, err := StepsFromConfig(nil)
	require.NoError(t, err)
	assert.Len(t, defaults, 5)
}
