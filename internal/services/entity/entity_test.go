package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_BudgetDollarPattern(t *testing.T) {
	q := Parse("looking for something under $25,000")
	require.NotNil(t, q.Budget)
	require.Equal(t, 25000.0, *q.Budget)
	require.True(t, q.HasStrongSignals)
}

func TestParse_BudgetKSuffix(t *testing.T) {
	q := Parse("budget is about 25k")
	require.NotNil(t, q.Budget)
	require.Equal(t, 25000.0, *q.Budget)
}

func TestParse_AroundPattern(t *testing.T) {
	q := Parse("around $18000 is my limit")
	require.NotNil(t, q.Budget)
	require.Equal(t, 18000.0, *q.Budget)
}

func TestParse_PriceRangeOfPattern(t *testing.T) {
	q := Parse("looking for a price range of $20000")
	require.NotNil(t, q.Budget)
	require.Equal(t, 20000.0, *q.Budget)
}

func TestParse_MakeAndModel(t *testing.T) {
	q := Parse("looking for a 2021 Camry under $25k")
	require.Equal(t, 2021, *q.Year)
	require.Equal(t, "camry", q.Model)
	require.True(t, q.HasStrongSignals)
}

func TestParse_BodyType(t *testing.T) {
	q := Parse("I want an SUV")
	require.Equal(t, "suv", q.BodyType)
	require.True(t, q.HasStrongSignals)
}

func TestParse_NoSignals(t *testing.T) {
	q := Parse("hey there, how are you?")
	require.False(t, q.HasStrongSignals)
	require.Nil(t, q.Budget)
}

func TestParse_Features(t *testing.T) {
	q := Parse("does it have a sunroof and leather seats")
	require.Contains(t, q.Features, "sunroof")
	require.Contains(t, q.Features, "leather")
}
