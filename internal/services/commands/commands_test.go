package commands

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_LeadCreationExtractsFieldsAndFlagsIncomplete(t *testing.T) {
	cmd := Parse("add a lead phone 555-123-4567 email jane@example.com name is Jane Doe")
	require.Equal(t, KindLeadCreation, cmd.Kind)
	require.NotNil(t, cmd.LeadCreation)
	require.Equal(t, "Jane Doe", cmd.LeadCreation.Name)
	require.Equal(t, "555-123-4567", cmd.LeadCreation.Phone)
	require.Equal(t, "jane@example.com", cmd.LeadCreation.Email)
	require.True(t, cmd.LeadCreation.Incomplete, "car_interest was never mentioned, so it falls back to the sentinel")
}

func TestParse_LeadCreationDefaultsMissingFieldsToSentinel(t *testing.T) {
	cmd := Parse("new lead, no other details yet")
	require.Equal(t, KindLeadCreation, cmd.Kind)
	require.Equal(t, sentinelUnknown, cmd.LeadCreation.Name)
	require.Equal(t, sentinelUnknown, cmd.LeadCreation.Phone)
	require.Equal(t, sentinelUnknown, cmd.LeadCreation.Email)
	require.True(t, cmd.LeadCreation.Incomplete)
}

func TestParse_InventoryUpdateDefaultsYearAndCondition(t *testing.T) {
	cmd := Parse("add car Honda Civic $24,500 stock #A1234")
	require.Equal(t, KindInventoryUpdate, cmd.Kind)
	require.Equal(t, "honda", cmd.InventoryUpdate.Make)
	require.Equal(t, "civic", cmd.InventoryUpdate.Model)
	require.Equal(t, 2020, cmd.InventoryUpdate.Year)
	require.Equal(t, 24500.0, cmd.InventoryUpdate.Price)
	require.Equal(t, "unknown", cmd.InventoryUpdate.Condition)
	require.Equal(t, "A1234", cmd.InventoryUpdate.StockNumber)
}

func TestParse_InventoryUpdateExtractsYearAndCondition(t *testing.T) {
	cmd := Parse("add a vehicle 2023 Toyota Camry brand new")
	require.Equal(t, 2023, cmd.InventoryUpdate.Year)
	require.Equal(t, "new", cmd.InventoryUpdate.Condition)
}

func TestParse_StatusUpdateExtractsStatusAndLeadPhone(t *testing.T) {
	cmd := Parse("mark as hot 555-987-6543")
	require.Equal(t, KindStatusUpdate, cmd.Kind)
	require.Equal(t, "hot", cmd.StatusUpdate.NewStatus)
	require.Equal(t, "555-987-6543", cmd.StatusUpdate.LeadIdentifier)
}

func TestParse_TestDriveScheduling(t *testing.T) {
	cmd := Parse("can we schedule test drive for tomorrow")
	require.Equal(t, KindTestDriveScheduling, cmd.Kind)
}

func TestParse_LeadInquiry(t *testing.T) {
	cmd := Parse("what's the status of lead 555-123-4567")
	require.Equal(t, KindLeadInquiry, cmd.Kind)
}

func TestParse_InventoryInquiry(t *testing.T) {
	cmd := Parse("how many Civics do we have")
	require.Equal(t, KindInventoryInquiry, cmd.Kind)
}

func TestParse_GeneralQuestionFallsBackOnTrailingQuestionMark(t *testing.T) {
	cmd := Parse("what time do we close?")
	require.Equal(t, KindGeneralQuestion, cmd.Kind)
}

func TestParse_UnknownWhenNothingMatches(t *testing.T) {
	cmd := Parse("ok thanks")
	require.Equal(t, KindUnknown, cmd.Kind)
}
